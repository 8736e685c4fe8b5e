package user_repo

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/internal/entity"
	app_error "github.com/xenn00/apibench/internal/errors"
	"github.com/xenn00/apibench/internal/utils"
)

// CachedUserRepo serves ListSorted from Redis. List keys carry a generation
// that every successful insert bumps, so a list read before an insert can only
// ever be written under a generation nobody reads again. Redis failures fall
// through to the inner repo.
type CachedUserRepo struct {
	Inner UserRepoContract
	Redis *redis.Client
	TTL   time.Duration
}

func NewCachedUserRepo(inner UserRepoContract, rdb *redis.Client, ttl time.Duration) *CachedUserRepo {
	return &CachedUserRepo{
		Inner: inner,
		Redis: rdb,
		TTL:   ttl,
	}
}

func listGenerationKey() string {
	return utils.CacheKey("users", "list", "generation")
}

func listCacheKey(generation int64, field entity.SortField, dir entity.SortDirection) string {
	return utils.CacheKey("users", "list", strconv.FormatInt(generation, 10), string(field), dir.String())
}

func (r *CachedUserRepo) generation(ctx context.Context) (int64, error) {
	gen, err := r.Redis.Get(ctx, listGenerationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (r *CachedUserRepo) EnsureSchema(ctx context.Context) *app_error.AppError {
	return r.Inner.EnsureSchema(ctx)
}

func (r *CachedUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, *app_error.AppError) {
	return r.Inner.FindByUsername(ctx, username)
}

func (r *CachedUserRepo) Insert(ctx context.Context, model entity.User) (string, *app_error.AppError) {
	id, err := r.Inner.Insert(ctx, model)
	if err != nil {
		return "", err
	}

	bg := context.WithoutCancel(ctx)
	gen, incrErr := r.Redis.Incr(bg, listGenerationKey()).Result()
	if incrErr != nil {
		log.Warn().Err(incrErr).Msg("failed to invalidate user list cache")
		return id, nil
	}

	// the previous generation is unreachable now, free it early
	stale := []string{
		listCacheKey(gen-1, entity.SortByCreatedAt, entity.Ascending),
		listCacheKey(gen-1, entity.SortByCreatedAt, entity.Descending),
	}
	if delErr := utils.DeleteCacheData(bg, r.Redis, stale...); delErr != nil {
		log.Debug().Err(delErr).Msg("failed to drop stale user lists")
	}

	return id, nil
}

func (r *CachedUserRepo) ListSorted(ctx context.Context, field entity.SortField, dir entity.SortDirection) ([]entity.User, *app_error.AppError) {
	gen, genErr := r.generation(ctx)
	if genErr != nil {
		log.Warn().Err(genErr).Msg("user list cache generation read failed")
		return r.Inner.ListSorted(ctx, field, dir)
	}
	key := listCacheKey(gen, field, dir)

	cached, cacheErr := utils.GetCacheData[[]entity.User](ctx, r.Redis, key)
	if cacheErr != nil {
		log.Warn().Err(cacheErr).Str("key", key).Msg("user list cache read failed")
	} else if cached != nil {
		return *cached, nil
	}

	users, err := r.Inner.ListSorted(ctx, field, dir)
	if err != nil {
		return nil, err
	}

	if r.TTL > 0 {
		if setErr := utils.SetCacheData(ctx, r.Redis, key, &users, r.TTL); setErr != nil {
			log.Warn().Err(setErr).Str("key", key).Msg("user list cache write failed")
		}
	}

	return users, nil
}
