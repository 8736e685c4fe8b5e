package queue

import (
	"context"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

type Producer interface {
	Enqueue(ctx context.Context, job Job) error
}

type RedisProducer struct {
	Redis *redis.Client
}

func NewProducer(redis *redis.Client) Producer {
	return &RedisProducer{Redis: redis}
}

func (p *RedisProducer) Enqueue(ctx context.Context, job Job) error {
	jobBytes, err := jsoniter.Marshal(job)
	if err != nil {
		return err
	}

	return p.Redis.ZAdd(ctx, PriorityQueueKey, redis.Z{
		Score:  job.Score(),
		Member: jobBytes,
	}).Err()
}
