package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CacheKey joins parts under the service namespace, e.g. apibench:users:list:asc.
func CacheKey(parts ...string) string {
	return "apibench:" + strings.Join(parts, ":")
}

// GetCacheData returns (nil, nil) on a cache miss.
func GetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string) (*T, error) {
	val, err := rdb.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", cacheKey, err)
	}

	var data T
	if err := json.Unmarshal(val, &data); err != nil {
		return nil, fmt.Errorf("decode cached %s: %w", cacheKey, err)
	}

	return &data, nil
}

func SetCacheData[T any](ctx context.Context, rdb *redis.Client, cacheKey string, data *T, expire time.Duration) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", cacheKey, err)
	}

	return rdb.Set(ctx, cacheKey, bytes, expire).Err()
}

func DeleteCacheData(ctx context.Context, rdb *redis.Client, cacheKeys ...string) error {
	if len(cacheKeys) == 0 {
		return nil
	}
	return rdb.Del(ctx, cacheKeys...).Err()
}
