package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSyncClickUp = "sync:clickup"

const TaskSyncReengagement = "sync:reengagement"

const TaskPipelineDigest = "digest:pipeline"

// SyncRunPayload records what caused a sync task, for log correlation.
type SyncRunPayload struct {
	Trigger string `json:"trigger"`
}

const (
	TriggerCron    = "cron"
	TriggerWebhook = "webhook"
	TriggerManual  = "manual"
)

func NewSyncClickUpTask(payload SyncRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncClickUp, data), nil
}

func NewSyncReengagementTask(payload SyncRunPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncReengagement, data), nil
}

func NewPipelineDigestTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskPipelineDigest, nil), nil
}

func ParseSyncRunPayload(task *asynq.Task) (SyncRunPayload, error) {
	if len(task.Payload()) == 0 {
		return SyncRunPayload{}, nil
	}
	var payload SyncRunPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SyncRunPayload{}, err
	}
	return payload, nil
}
