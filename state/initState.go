package state

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"
)

type AppState struct {
	Ctx    context.Context
	Cancel context.CancelFunc
	Config *config.AppConfig
	DB     *gorm.DB
	Redis  *redis.Client
	Mongo  *mongo.Client
}

// InitAppState opens the backend selected by the config. Redis is optional
// and only dialled when an address is configured.
func InitAppState(ctx context.Context, cancel context.CancelFunc, cfg *config.AppConfig) (*AppState, error) {
	state := &AppState{
		Ctx:    ctx,
		Cancel: cancel,
		Config: cfg,
	}

	switch cfg.DATABASE.Driver {
	case config.DriverMongo:
		mongoClient, err := InitMongo(ctx, cfg.DATABASE.Mongo.Url)
		if err != nil {
			return nil, err
		}
		state.Mongo = mongoClient
	case config.DriverPostgres:
		db, _, err := InitPostgres(cfg.DATABASE.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		state.DB = db
	case config.DriverMemory:
		log.Warn().Msg("using in-memory user store, data is lost on restart")
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DATABASE.Driver)
	}

	if addr := cfg.DATABASE.Redis.Addr; addr != "" {
		rdb, err := InitRedis(addr, cfg.DATABASE.Redis.Password, cfg.DATABASE.Redis.DB)
		if err != nil {
			state.Close()
			return nil, err
		}
		state.Redis = rdb
	}

	return state, nil
}

// MongoDatabase returns the configured database, nil when Mongo is not in use.
func (a *AppState) MongoDatabase() *mongo.Database {
	if a.Mongo == nil {
		return nil
	}
	return a.Mongo.Database(a.Config.DATABASE.Mongo.Name)
}

// Ping checks every open backend and reports failures by name.
func (a *AppState) Ping(ctx context.Context) map[string]error {
	failures := map[string]error{}

	if a.Mongo != nil {
		if err := a.Mongo.Ping(ctx, nil); err != nil {
			failures["mongo"] = err
		}
	}

	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			failures["postgres"] = err
		}
	}

	if a.Redis != nil {
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			failures["redis"] = err
		}
	}

	return failures
}

func (a *AppState) Close() {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			log.Info().Msg("Closing PostgreSQL database connection...")
			sqlDB.Close()
		}
	}

	if a.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		log.Info().Msg("Closing MongoDB client...")
		defer cancel()
		if err := a.Mongo.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect MongoDB client")
		}
	}

	if a.Redis != nil {
		log.Info().Msg("Closing Redis client...")
		if err := a.Redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis client")
		}
	}
}
