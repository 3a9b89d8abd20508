package http

import (
	"dealflow_backend/platform/config"
	"dealflow_backend/platform/logger"
)

// RouterConfig combines the config interfaces the router needs.
type RouterConfig interface {
	config.HTTPConfig
	config.AuthConfig
}

// App holds the fully initialized application dependencies. It is populated
// by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the HTTP and auth settings.
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness checks (DB ping).
	Health HealthChecker
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
