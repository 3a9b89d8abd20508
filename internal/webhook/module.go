package webhook

import (
	apphttp "dealflow_backend/internal/http"
	"dealflow_backend/internal/scheduler"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/logger"
)

// Module is the webhook module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates the webhook module.
func NewModule(cfg config.WebhookConfig, enqueuer scheduler.SyncEnqueuer, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(cfg, enqueuer, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the webhook receiver. Authentication is by request
// signature, not bearer token, so the route sits outside the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/webhooks"))
}

var _ apphttp.Module = (*Module)(nil)
