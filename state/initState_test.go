package state

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenn00/apibench/config"
)

func memoryConfig() *config.AppConfig {
	cfg := &config.AppConfig{}
	cfg.App.Name = "apibench"
	cfg.App.Port = 3111
	cfg.DATABASE.Driver = config.DriverMemory
	return cfg
}

func TestInitAppState_MemoryWithRedis(t *testing.T) {
	mockRedis := miniredis.RunT(t)
	cfg := memoryConfig()
	cfg.DATABASE.Redis.Addr = mockRedis.Addr()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := InitAppState(ctx, cancel, cfg)
	require.NoError(t, err)
	defer st.Close()

	assert.Nil(t, st.Mongo)
	assert.Nil(t, st.DB)
	assert.Nil(t, st.MongoDatabase())
	require.NotNil(t, st.Redis)
	assert.Empty(t, st.Ping(ctx))

	mockRedis.Close()
	failures := st.Ping(ctx)
	assert.Contains(t, failures, "redis")
}

func TestInitAppState_RedisUnreachable(t *testing.T) {
	cfg := memoryConfig()
	cfg.DATABASE.Redis.Addr = "127.0.0.1:16379"

	st, err := InitAppState(context.Background(), func() {}, cfg)
	assert.Error(t, err)
	assert.Nil(t, st)
}

func TestInitAppState_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.DATABASE.Driver = "cassandra"

	st, err := InitAppState(context.Background(), func() {}, cfg)
	assert.Error(t, err)
	assert.Nil(t, st)
}
