package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/xenn00/apibench/internal/queue"
	worker_handler "github.com/xenn00/apibench/internal/worker/worker-handler"
)

type JobHandler func(ctx context.Context, payload json.RawMessage) error

type WorkerPool struct {
	Redis        *redis.Client
	WorkerNum    int
	JobChannel   chan string
	Handlers     map[string]JobHandler
	DeadLetters  DeadLetterStore
	PollInterval time.Duration
	Now          func() time.Time
	wg           sync.WaitGroup
}

func NewWorkerPool(redis *redis.Client, workerNum int, deadLetters DeadLetterStore) *WorkerPool {
	if workerNum < 1 {
		workerNum = 1
	}
	workerHandler := worker_handler.NewWorkerHandler(redis)

	return &WorkerPool{
		Redis:      redis,
		WorkerNum:  workerNum,
		JobChannel: make(chan string, 100),
		Handlers: map[string]JobHandler{
			queue.JobUserRegistered: workerHandler.HandleUserRegistered,
		},
		DeadLetters:  deadLetters,
		PollInterval: time.Second,
		Now:          time.Now,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	log.Info().Msgf("Starting worker pool with %d workers", wp.WorkerNum)

	for i := 0; i < wp.WorkerNum; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}

	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		defer close(wp.JobChannel)
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping worker pool")
				return
			default:
			}

			payload, ok, err := wp.popDue(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Error().Err(err).Msg("Worker: failed to pop job")
					wp.sleep(ctx)
				}
				continue
			}
			if !ok {
				wp.sleep(ctx)
				continue
			}

			select {
			case wp.JobChannel <- payload:
			case <-ctx.Done():
				wp.putBack(payload)
				return
			}
		}
	}()
}

// popDue claims the earliest runnable job. Only the caller whose ZREM removed
// the member owns it.
func (wp *WorkerPool) popDue(ctx context.Context) (string, bool, error) {
	now := float64(wp.Now().Unix())
	result, err := wp.Redis.ZRangeByScore(ctx, queue.PriorityQueueKey, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    fmt.Sprintf("%f", now),
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	if len(result) == 0 {
		return "", false, nil
	}

	removed, err := wp.Redis.ZRem(ctx, queue.PriorityQueueKey, result[0]).Result()
	if err != nil {
		return "", false, err
	}
	if removed == 0 {
		return "", false, nil
	}
	return result[0], true, nil
}

func (wp *WorkerPool) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(wp.PollInterval):
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Debug().Msgf("Worker %d started", id)

	// the poller closes JobChannel, so buffered jobs are always drained
	for payload := range wp.JobChannel {
		if ctx.Err() != nil {
			wp.putBack(payload)
			continue
		}
		wp.process(ctx, payload)
	}
	log.Debug().Msgf("Worker %d stopping", id)
}

// putBack returns a claimed but unstarted job to the queue untouched so
// another instance can take it.
func (wp *WorkerPool) putBack(payload string) {
	var job queue.Job
	if err := jsoniter.UnmarshalFromString(payload, &job); err != nil {
		log.Warn().Err(err).Msg("Worker: dropping invalid job payload on shutdown")
		return
	}
	wp.requeue(context.Background(), job)
}

func (wp *WorkerPool) process(ctx context.Context, payload string) {
	var job queue.Job
	if err := jsoniter.UnmarshalFromString(payload, &job); err != nil {
		log.Warn().Err(err).Msg("Worker: failed to unmarshal job payload")
		return
	}

	if err := wp.HandleJob(ctx, job); err != nil {
		if ctx.Err() != nil {
			// interrupted by shutdown, not a real attempt
			wp.requeue(context.WithoutCancel(ctx), job)
			return
		}
		wp.fail(ctx, job, err)
	}
}

func (wp *WorkerPool) HandleJob(ctx context.Context, job queue.Job) error {
	handler, ok := wp.Handlers[job.Type]
	if !ok {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	return handler(ctx, job.Payload)
}

// fail schedules a retry with exponential backoff, or moves the job to the
// dead letter list once it ran out of retries or expired.
func (wp *WorkerPool) fail(ctx context.Context, job queue.Job, cause error) {
	ctx = context.WithoutCancel(ctx)
	job.Retry++
	job.ErrorMsg = cause.Error()

	now := wp.Now()
	if job.Retry >= job.MaxRetry || (job.ExpireAt > 0 && now.Unix() > job.ExpireAt) {
		log.Error().Str("job_id", job.ID).Str("type", job.Type).Msg("Job moved to DLQ")
		dlqBytes, _ := jsoniter.Marshal(job)
		if err := wp.Redis.RPush(ctx, queue.DeadLetterKey, dlqBytes).Err(); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("failed to push job to DLQ")
		}

		sendDLA(job)
		return
	}

	delay := time.Duration(5*(1<<job.Retry)) * time.Second
	job.AvailableAt = now.Add(delay).Unix()
	wp.requeue(ctx, job)
	log.Warn().Str("job_id", job.ID).Msgf("Retrying in %v seconds (%d/%d)", delay.Seconds(), job.Retry, job.MaxRetry)
}

func (wp *WorkerPool) requeue(ctx context.Context, job queue.Job) {
	jobBytes, _ := jsoniter.Marshal(job)
	if err := wp.Redis.ZAdd(ctx, queue.PriorityQueueKey, redis.Z{
		Score:  job.Score(),
		Member: jobBytes,
	}).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to requeue job")
	}
}

var dlaCache = make(map[string]time.Time)
var dlaMu sync.Mutex

// sendDLA raises at most one dead letter alert per job type every ten minutes.
func sendDLA(job queue.Job) bool {
	dlaMu.Lock()
	defer dlaMu.Unlock()

	now := time.Now()
	lastAlert, ok := dlaCache[job.Type]
	if ok && now.Sub(lastAlert) < 10*time.Minute {
		return false
	}

	log.Error().Str("job_id", job.ID).Str("type", job.Type).Str("error", job.ErrorMsg).Msg("Dead Letter Alert: Job failed permanently")

	dlaCache[job.Type] = now
	return true
}

func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
	log.Info().Msg("All workers have stopped")
}
