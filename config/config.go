package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type AppConfig struct {
	App struct {
		Env             string `mapstructure:"ENV" validate:"oneof=development test production"`
		Name            string `mapstructure:"NAME" validate:"required"`
		Port            int    `mapstructure:"PORT" validate:"required,min=1,max=65535"`
		CloseGraceDelay int    `mapstructure:"CLOSE_GRACE_DELAY" validate:"min=0"`
	}

	Log struct {
		Level string `mapstructure:"LEVEL" validate:"required"`
	}

	DATABASE struct {
		Driver string `mapstructure:"DRIVER" validate:"oneof=mongo postgres memory"`
		Mongo  struct {
			Url  string `mapstructure:"URL"`
			Name string `mapstructure:"NAME"`
		}
		Postgres struct {
			DSN string `mapstructure:"URL"`
		}
		Redis struct {
			Addr     string `mapstructure:"ADDR"`
			Password string `mapstructure:"PASSWORD"`
			DB       int    `mapstructure:"DB" validate:"min=0"`
		}
	}

	Cache struct {
		TTL int `mapstructure:"TTL" validate:"min=0"`
	}

	Worker struct {
		Count int `mapstructure:"COUNT" validate:"min=1"`
	}
}

// envAliases binds each key to its environment variables, first match wins.
var envAliases = map[string][]string{
	"APP.ENV":                 {"APP_ENV", "NODE_ENV"},
	"APP.NAME":                {"APP_NAME", "APPLICATION_NAME"},
	"APP.PORT":                {"APP_PORT", "APPLICATION_PORT"},
	"APP.CLOSE_GRACE_DELAY":   {"APP_CLOSE_GRACE_DELAY", "CLOSE_GRACE_DELAY"},
	"LOG.LEVEL":               {"LOG_LEVEL"},
	"DATABASE.DRIVER":         {"DATABASE_DRIVER", "DB_DRIVER"},
	"DATABASE.MONGO.URL":      {"DATABASE_MONGO_URL", "DB_URL"},
	"DATABASE.MONGO.NAME":     {"DATABASE_MONGO_NAME", "DB_NAME"},
	"DATABASE.POSTGRES.URL":   {"DATABASE_POSTGRES_URL", "POSTGRES_URL"},
	"DATABASE.REDIS.ADDR":     {"DATABASE_REDIS_ADDR", "REDIS_ADDR"},
	"DATABASE.REDIS.PASSWORD": {"DATABASE_REDIS_PASSWORD", "REDIS_PASSWORD"},
	"DATABASE.REDIS.DB":       {"DATABASE_REDIS_DB", "REDIS_DB"},
	"CACHE.TTL":               {"CACHE_TTL"},
	"WORKER.COUNT":            {"WORKER_COUNT"},
}

// LoadConfig reads application.yaml from the given paths (the working
// directory when none) and overlays environment variables. A missing file is
// not an error.
func LoadConfig(paths ...string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("application")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetDefault("APP.ENV", EnvDevelopment)
	v.SetDefault("APP.CLOSE_GRACE_DELAY", 1000)
	v.SetDefault("LOG.LEVEL", "info")
	v.SetDefault("DATABASE.DRIVER", DriverMongo)
	v.SetDefault("DATABASE.REDIS.DB", 0)
	v.SetDefault("CACHE.TTL", 30)
	v.SetDefault("WORKER.COUNT", 2)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.Debug().Str("env", config.App.Env).Str("driver", config.DATABASE.Driver).Msg("configuration loaded...")
	return &config, nil
}

func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.DATABASE.Driver {
	case DriverMongo:
		if c.DATABASE.Mongo.Url == "" || c.DATABASE.Mongo.Name == "" {
			return fmt.Errorf("invalid configuration: mongo driver requires DB_URL and DB_NAME")
		}
	case DriverPostgres:
		if c.DATABASE.Postgres.DSN == "" {
			return fmt.Errorf("invalid configuration: postgres driver requires POSTGRES_URL")
		}
	}

	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.App.Env == EnvProduction
}

func (c *AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c *AppConfig) GraceDelay() time.Duration {
	return time.Duration(c.App.CloseGraceDelay) * time.Millisecond
}

func (c *AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}
