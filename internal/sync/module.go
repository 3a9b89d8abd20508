package sync

import (
	"context"
	"net/http"

	apphttp "dealflow_backend/internal/http"
	"dealflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Enqueuer schedules background sync runs. Implemented by the scheduler
// client; declared here so the HTTP surface does not depend on the queue
// implementation.
type Enqueuer interface {
	EnqueueSync(ctx context.Context, trigger string) error
	EnqueueReengagement(ctx context.Context, trigger string) error
}

// Module exposes manual sync triggers over HTTP.
type Module struct {
	enqueuer Enqueuer
	log      *logger.Logger
}

// NewModule creates the sync trigger module. enqueuer may be nil when no
// queue is configured; triggers then report the feature unavailable.
func NewModule(enqueuer Enqueuer, log *logger.Logger) *Module {
	return &Module{enqueuer: enqueuer, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "sync"
}

// RegisterRoutes mounts the trigger endpoints behind authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/sync")
	group.POST("/clickup", m.triggerSync)
	group.POST("/reengagement", m.triggerReengagement)
}

func (m *Module) trigger(c *gin.Context, name string, enqueue func(context.Context) error) {
	if m.enqueuer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "background queue not configured"})
		return
	}
	if err := enqueue(c.Request.Context()); err != nil {
		m.log.Error("manual trigger failed", "job", name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not queue " + name})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": name})
}

func (m *Module) triggerSync(c *gin.Context) {
	m.trigger(c, "clickup sync", func(ctx context.Context) error {
		return m.enqueuer.EnqueueSync(ctx, "manual")
	})
}

func (m *Module) triggerReengagement(c *gin.Context) {
	m.trigger(c, "reengagement", func(ctx context.Context) error {
		return m.enqueuer.EnqueueReengagement(ctx, "manual")
	})
}

var _ apphttp.Module = (*Module)(nil)
