package worker_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/internal/queue"
	worker_service "github.com/xenn00/apibench/internal/worker/worker-service"
)

func (h *WorkerHandler) HandleUserRegistered(ctx context.Context, raw json.RawMessage) error {
	var payload queue.UserRegistered

	if err := jsoniter.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid user_registered payload: %w", err)
	}
	if payload.UserID == "" {
		return errors.New("invalid user_registered payload: missing user_id")
	}

	log.Info().
		Str("user_id", payload.UserID).
		Str("username", payload.Username).
		Time("created_at", payload.CreatedAt).
		Msg("audit: user registered")

	return worker_service.RecordRegistration(ctx, h.Redis, payload)
}
