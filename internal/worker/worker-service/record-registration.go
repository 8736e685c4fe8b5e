package worker_service

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/xenn00/apibench/internal/queue"
	"github.com/xenn00/apibench/internal/utils"
)

// AuditTrailSize caps the registration audit list.
const AuditTrailSize = 100

func RegistrationCounterKey(day string) string {
	return utils.CacheKey("stats", "registrations", day)
}

func AuditTrailKey() string {
	return utils.CacheKey("audit", "registrations")
}

// RecordRegistration bumps the per-day counter and prepends the event to the
// capped audit trail in a single round trip.
func RecordRegistration(ctx context.Context, rdb *redis.Client, event queue.UserRegistered) error {
	entry, err := jsoniter.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}

	day := event.CreatedAt.UTC().Format("2006-01-02")
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, RegistrationCounterKey(day))
		pipe.LPush(ctx, AuditTrailKey(), entry)
		pipe.LTrim(ctx, AuditTrailKey(), 0, AuditTrailSize-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record registration: %w", err)
	}

	return nil
}
