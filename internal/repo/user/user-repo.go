package user_repo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/config"
	"github.com/xenn00/apibench/state"
)

// NewUserRepo builds the repo for the configured driver, wraps it with the
// Redis list cache when Redis is available and ensures the unique index.
func NewUserRepo(ctx context.Context, appState *state.AppState) (UserRepoContract, error) {
	var repo UserRepoContract

	switch appState.Config.DATABASE.Driver {
	case config.DriverMongo:
		if appState.Mongo == nil {
			return nil, fmt.Errorf("mongo driver selected but no client is open")
		}
		repo = NewMongoUserRepo(appState.MongoDatabase())
	case config.DriverPostgres:
		if appState.DB == nil {
			return nil, fmt.Errorf("postgres driver selected but no connection is open")
		}
		repo = NewGormUserRepo(appState.DB)
	case config.DriverMemory:
		repo = NewMemoryUserRepo()
	default:
		return nil, fmt.Errorf("unknown database driver %q", appState.Config.DATABASE.Driver)
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	if appState.Redis != nil && appState.Config.CacheTTL() > 0 {
		log.Info().Dur("ttl", appState.Config.CacheTTL()).Msg("user list cache enabled")
		repo = NewCachedUserRepo(repo, appState.Redis, appState.Config.CacheTTL())
	}

	return repo, nil
}
