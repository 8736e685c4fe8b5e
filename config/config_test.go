package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("APPLICATION_NAME", "apibench")
	t.Setenv("APPLICATION_PORT", "3111")
	t.Setenv("DB_URL", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "apibench")
}

func TestLoadConfig_FromEnvAliases(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LOG_LEVEL", "silent")
	t.Setenv("NODE_ENV", "test")

	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "apibench", cfg.App.Name)
	assert.Equal(t, 3111, cfg.App.Port)
	assert.Equal(t, ":3111", cfg.Addr())
	assert.Equal(t, EnvTest, cfg.App.Env)
	assert.Equal(t, "silent", cfg.Log.Level)
	assert.Equal(t, DriverMongo, cfg.DATABASE.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.DATABASE.Mongo.Url)
	assert.Equal(t, "apibench", cfg.DATABASE.Mongo.Name)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, time.Second, cfg.GraceDelay())
	assert.Equal(t, 30*time.Second, cfg.CacheTTL())
	assert.Equal(t, 2, cfg.Worker.Count)
	assert.Empty(t, cfg.DATABASE.Redis.Addr)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
APP:
  NAME: from-file
  PORT: 8080
  ENV: production
DATABASE:
  DRIVER: memory
  REDIS:
    ADDR: localhost:6379
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yaml"), []byte(yaml), 0644))

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverMemory, cfg.DATABASE.Driver)
	assert.Equal(t, "localhost:6379", cfg.DATABASE.Redis.Addr)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "application.yaml"), []byte("APP:\n  NAME: from-file\n  PORT: 8080\nDATABASE:\n  DRIVER: memory\n"), 0644))
	t.Setenv("APP_NAME", "from-env")

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.App.Name)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	t.Setenv("DB_URL", "mongodb://localhost:27017")
	t.Setenv("DB_NAME", "apibench")

	cfg, err := LoadConfig(t.TempDir())

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APPLICATION_PORT", "70000")

	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfig_DriverRequirements(t *testing.T) {
	t.Setenv("APPLICATION_NAME", "apibench")
	t.Setenv("APPLICATION_PORT", "3111")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo driver requires")

	t.Setenv("DB_DRIVER", "postgres")
	_, err = LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres driver requires")

	t.Setenv("POSTGRES_URL", "postgres://localhost:5432/apibench")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DATABASE.Driver)
}
