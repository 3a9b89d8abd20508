// Package deals provides the deal pipeline bounded context module.
package deals

import (
	"dealflow_backend/internal/deals/handler"
	"dealflow_backend/internal/deals/repository"
	"dealflow_backend/internal/deals/service"
	apphttp "dealflow_backend/internal/http"
	"dealflow_backend/platform/logger"
	"dealflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the deals bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates and initializes the deals module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc, repository: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "deals"
}

// Service returns the deals service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the deals repository for the batch processes that write
// through it directly.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes mounts deal routes on the provided router context. All deal
// routes require authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/deals"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
