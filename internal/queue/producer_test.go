package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestEnqueue_StoresJobByAvailableTime(t *testing.T) {
	rdb := newRedis(t)
	ctx := context.Background()
	producer := NewProducer(rdb)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	job, err := NewUserRegisteredJob(UserRegistered{UserID: "u-1", Username: "test-user", CreatedAt: now}, now)
	require.NoError(t, err)

	require.NoError(t, producer.Enqueue(ctx, job))

	members, err := rdb.ZRangeWithScores(ctx, PriorityQueueKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.InDelta(t, float64(now.Unix())-0.1, members[0].Score, 0.0001)

	var stored Job
	require.NoError(t, jsoniter.Unmarshal([]byte(members[0].Member.(string)), &stored))
	assert.Equal(t, JobUserRegistered, stored.Type)
	assert.Equal(t, job.ID, stored.ID)

	var event UserRegistered
	require.NoError(t, jsoniter.Unmarshal(stored.Payload, &event))
	assert.Equal(t, "u-1", event.UserID)
	assert.Equal(t, "test-user", event.Username)
}

func TestJobScore(t *testing.T) {
	early := Job{AvailableAt: 100, Priority: 0}
	late := Job{AvailableAt: 101, Priority: 9}
	urgent := Job{AvailableAt: 100, Priority: 5}
	legacy := Job{CreatedAt: 50}

	assert.Less(t, early.Score(), late.Score())
	assert.Less(t, urgent.Score(), early.Score())
	assert.Equal(t, float64(50), legacy.Score())
	assert.Equal(t, Job{AvailableAt: 10, Priority: 42}.Score(), Job{AvailableAt: 10, Priority: 9}.Score())
}

func TestMarshalPayload_UnencodableValue(t *testing.T) {
	payload, err := MarshalPayload(make(chan int))
	require.Error(t, err)
	assert.Nil(t, payload)
	assert.ErrorContains(t, err, "marshal job payload")
}

func TestMarshalPayload(t *testing.T) {
	payload, err := MarshalPayload(UserRegistered{UserID: "u-2"})
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"user_id":"u-2"`)
}
