// Package auth provides the board authentication module.
package auth

import (
	"dealflow_backend/internal/auth/handler"
	"dealflow_backend/internal/auth/service"
	apphttp "dealflow_backend/internal/http"
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/logger"
	"dealflow_backend/platform/validator"
)

// Module is the auth module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the auth module.
func NewModule(cfg config.AuthConfig, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(cfg, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts the login route, unauthenticated but tightly rate
// limited.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/auth")
	group.Use(ctx.LoginRateLimiter)
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
