package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

const (
	PriorityQueueKey = "apibench:priority_queue"
	DeadLetterKey    = "apibench:priority_queue_dlq"

	JobUserRegistered = "user_registered"
)

type Job struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Priority    int             `json:"priority"`
	Retry       int             `json:"retry"`
	MaxRetry    int             `json:"max_retry"`
	ErrorMsg    string          `json:"error_msg,omitempty"`
	CreatedAt   int64           `json:"created_at"`
	AvailableAt int64           `json:"available_at"`
	ExpireAt    int64           `json:"expired_at"`
}

// UserRegistered is the payload of a JobUserRegistered job.
type UserRegistered struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func MarshalPayload(payload any) (json.RawMessage, error) {
	b, err := jsoniter.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal job payload: %w", err)
	}
	return b, nil
}

func NewUserRegisteredJob(event UserRegistered, now time.Time) (Job, error) {
	payload, err := MarshalPayload(event)
	if err != nil {
		return Job{}, err
	}

	return Job{
		ID:          uuid.New().String(),
		Type:        JobUserRegistered,
		Payload:     payload,
		Priority:    1,
		MaxRetry:    5,
		CreatedAt:   now.Unix(),
		AvailableAt: now.Unix(),
		ExpireAt:    now.Add(15 * time.Minute).Unix(),
	}, nil
}

// Score orders the queue by the time a job becomes runnable. Priority (0-9)
// only breaks ties inside the same second.
func (j Job) Score() float64 {
	p := j.Priority
	if p < 0 {
		p = 0
	}
	if p > 9 {
		p = 9
	}
	at := j.AvailableAt
	if at == 0 {
		at = j.CreatedAt
	}
	return float64(at) - float64(p)/10
}
