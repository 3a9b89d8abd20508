package scheduler

import (
	"context"
	"fmt"
	"time"

	syncer "dealflow_backend/internal/sync"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// DigestSender sends the pipeline digest email.
type DigestSender interface {
	SendPipelineDigest(ctx context.Context) error
}

// Worker consumes background jobs from the queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner *syncer.Runner
	digest DigestSender
	log    *logger.Logger
}

// NewWorker creates a job worker. digest may be nil when email is disabled;
// digest tasks are then dropped with a warning.
func NewWorker(cfg config.SchedulerConfig, runner *syncer.Runner, digest DigestSender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		runner: runner,
		digest: digest,
		log:    log,
	}

	w.mux.HandleFunc(TaskSyncClickUp, w.handleSyncClickUp)
	w.mux.HandleFunc(TaskSyncReengagement, w.handleSyncReengagement)
	w.mux.HandleFunc(TaskPipelineDigest, w.handlePipelineDigest)

	return w, nil
}

// Run starts the worker and blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func (w *Worker) handleSyncClickUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSyncRunPayload(task)
	if err != nil {
		return err
	}

	w.log.Info("reconciliation run starting", "trigger", payload.Trigger)
	result, err := w.runner.Reconcile(ctx, false)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	w.log.Info("reconciliation run finished",
		"trigger", payload.Trigger,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"failed", result.Failed,
	)
	return nil
}

func (w *Worker) handleSyncReengagement(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSyncRunPayload(task)
	if err != nil {
		return err
	}

	w.log.Info("re-engagement run starting", "trigger", payload.Trigger)
	result, err := w.runner.Reengage(ctx, false, time.Now())
	if err != nil {
		return fmt.Errorf("reengage: %w", err)
	}
	w.log.Info("re-engagement run finished",
		"trigger", payload.Trigger,
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
	)
	return nil
}

func (w *Worker) handlePipelineDigest(ctx context.Context, _ *asynq.Task) error {
	if w.digest == nil {
		w.log.Warn("pipeline digest task received but email is disabled")
		return nil
	}
	return w.digest.SendPipelineDigest(ctx)
}
