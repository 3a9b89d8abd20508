package scheduler

import (
	"fmt"

	"dealflow_backend/platform/config"
	"dealflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Cron fallbacks: hourly reconciliation, daily re-engagement sweep, weekly
// digest on Monday morning.
const (
	defaultSyncCron         = "0 * * * *"
	defaultReengagementCron = "30 6 * * *"
	defaultDigestCron       = "0 7 * * 1"
)

// Periodic registers the recurring jobs with asynq's cron scheduler.
type Periodic struct {
	scheduler *asynq.Scheduler
}

// NewPeriodic creates the cron scheduler and registers all recurring tasks.
func NewPeriodic(cfg config.SchedulerConfig, emailEnabled bool, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, nil)
	queue := asynq.Queue(queueName(cfg))

	syncTask, err := NewSyncClickUpTask(SyncRunPayload{Trigger: TriggerCron})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cronSpec(cfg.GetSyncCronSpec(), defaultSyncCron), syncTask, queue); err != nil {
		return nil, fmt.Errorf("register sync cron: %w", err)
	}

	reengTask, err := NewSyncReengagementTask(SyncRunPayload{Trigger: TriggerCron})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cronSpec(cfg.GetReengagementCronSpec(), defaultReengagementCron), reengTask, queue); err != nil {
		return nil, fmt.Errorf("register reengagement cron: %w", err)
	}

	if emailEnabled {
		digestTask, err := NewPipelineDigestTask()
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(cronSpec(cfg.GetDigestCronSpec(), defaultDigestCron), digestTask, queue); err != nil {
			return nil, fmt.Errorf("register digest cron: %w", err)
		}
	} else {
		log.Info("email disabled; pipeline digest not scheduled")
	}

	return &Periodic{scheduler: scheduler}, nil
}

// Run starts the cron scheduler and blocks until shutdown.
func (p *Periodic) Run() error {
	return p.scheduler.Run()
}

// Shutdown stops the cron scheduler.
func (p *Periodic) Shutdown() {
	p.scheduler.Shutdown()
}

func cronSpec(spec, fallback string) string {
	if spec == "" {
		return fallback
	}
	return spec
}
