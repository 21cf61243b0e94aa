package queue

import (
	"context"
	"encoding/json"
	"time"

	"venueplanner/core/config"
	"venueplanner/core/constants"
	"venueplanner/core/logger"

	"github.com/hibiken/asynq"
)

// RecommendationPayload carries the event id of a recommendation:generate task
type RecommendationPayload struct {
	EventID string `json:"event_id"`
}

// Queue wraps the asynq client for task enqueueing
type Queue struct {
	client *asynq.Client
}

// IQueue defines queue operations available to services
type IQueue interface {
	EnqueueRecommendation(ctx context.Context, eventID string) error
	Close() error
}

// RedisOpt builds the asynq redis connection options from config
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
}

// NewQueue creates a new asynq-backed queue
func NewQueue(cfg *config.Config) *Queue {
	return &Queue{
		client: asynq.NewClient(RedisOpt(cfg)),
	}
}

// EnqueueRecommendation schedules background generation of venue options.
// Retries are left to asynq; the handler re-checks event state on each run.
func (q *Queue) EnqueueRecommendation(ctx context.Context, eventID string) error {
	payload, err := json.Marshal(RecommendationPayload{EventID: eventID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(constants.TaskRecommendationGenerate, payload)
	info, err := q.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(5),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(10*time.Minute),
	)
	if err != nil {
		logger.Error("Queue:EnqueueRecommendation", err)
		return err
	}

	logger.Info("Queue:EnqueueRecommendation",
		"task_id", info.ID,
		"queue", info.Queue,
		"event_id", eventID)
	return nil
}

// Close releases the underlying redis connection
func (q *Queue) Close() error {
	return q.client.Close()
}
