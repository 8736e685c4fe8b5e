package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/internal/entity"
	"github.com/xenn00/apibench/internal/queue"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const DeadLettersCollection = "dead_letters"

// DeadLetterStore archives jobs that failed permanently.
type DeadLetterStore interface {
	Save(ctx context.Context, job entity.DLQJob) error
}

type MongoDeadLetterStore struct {
	Collection *mongo.Collection
}

func NewMongoDeadLetterStore(db *mongo.Database) *MongoDeadLetterStore {
	return &MongoDeadLetterStore{Collection: db.Collection(DeadLettersCollection)}
}

func (s *MongoDeadLetterStore) Save(ctx context.Context, job entity.DLQJob) error {
	_, err := s.Collection.InsertOne(ctx, job)
	return err
}

func (wp *WorkerPool) StartDLQWorker(ctx context.Context) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()

		log.Info().Msg("DLQ worker started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("DLQ worker stopping")
				return
			default:
			}

			result, err := wp.Redis.BLPop(ctx, 5*time.Second, queue.DeadLetterKey).Result()
			if errors.Is(err, redis.Nil) {
				continue
			} else if err != nil {
				if ctx.Err() == nil {
					log.Error().Err(err).Msg("DLQWorker pop failed")
					wp.sleep(ctx)
				}
				continue
			}

			if err := wp.archive(ctx, result[1]); err != nil {
				log.Error().Err(err).Msg("DLQWorker archive failed")
				wp.sleep(ctx)
			}
		}
	}()
}

// archive logs a dead job and persists it when a store is configured. A
// failed save puts the payload back on the Redis list.
func (wp *WorkerPool) archive(ctx context.Context, payload string) error {
	var job queue.Job
	if err := jsoniter.UnmarshalFromString(payload, &job); err != nil {
		log.Warn().Err(err).Msg("DLQWorker invalid job payload")
		return nil
	}

	log.Error().
		Str("job_id", job.ID).
		Str("type", job.Type).
		Str("error", job.ErrorMsg).
		Msg("DLQ Job detected")

	if wp.DeadLetters == nil {
		return nil
	}

	now := wp.Now().UTC()
	doc := entity.DLQJob{
		JobID:              job.ID,
		Type:               job.Type,
		Payload:            job.Payload,
		Status:             entity.DLQStatusPending,
		OriginalRetryCount: job.Retry,
		ErrorMsg:           job.ErrorMsg,
		CreatedAt:          now,
		ExpireAt:           now.Add(7 * 24 * time.Hour),
	}

	if err := wp.DeadLetters.Save(ctx, doc); err != nil {
		if pushErr := wp.Redis.RPush(ctx, queue.DeadLetterKey, payload).Err(); pushErr != nil {
			return errors.Join(err, pushErr)
		}
		return fmt.Errorf("persist dead letter %s: %w", job.ID, err)
	}

	log.Info().Str("job_id", job.ID).Msg("DLQ job archived")
	return nil
}
