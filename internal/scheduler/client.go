// Package scheduler runs the periodic and on-demand background jobs over
// asynq: the ClickUp reconciliation, the re-engagement sweep and the pipeline
// digest email.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"dealflow_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues background jobs.
type Client struct {
	client *asynq.Client
	queue  string
}

// SyncEnqueuer is the slice of the client the webhook receiver uses.
type SyncEnqueuer interface {
	EnqueueSync(ctx context.Context, trigger string) error
}

// NewClient creates an enqueue-only scheduler client.
func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

// Close releases the underlying Redis connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueSync schedules an immediate reconciliation run. Tasks from repeated
// webhook deliveries collapse onto one pending run via a stable task ID.
func (c *Client) EnqueueSync(ctx context.Context, trigger string) error {
	task, err := NewSyncClickUpTask(SyncRunPayload{Trigger: trigger})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID("sync-clickup-pending"),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// EnqueueReengagement schedules an immediate re-engagement sweep.
func (c *Client) EnqueueReengagement(ctx context.Context, trigger string) error {
	task, err := NewSyncReengagementTask(SyncRunPayload{Trigger: trigger})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	return queue
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
