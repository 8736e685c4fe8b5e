package worker_handler

import (
	"github.com/redis/go-redis/v9"
)

type WorkerHandler struct {
	Redis *redis.Client
}

func NewWorkerHandler(redis *redis.Client) *WorkerHandler {
	return &WorkerHandler{
		Redis: redis,
	}
}
