// Package router assembles the Gin engine: global middleware, health checks
// and module route registration.
package router

import (
	"net/http"
	"time"

	apphttp "dealflow_backend/internal/http"
	"dealflow_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// New builds the engine from the composition root's App.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))

	apiLimiter := httpkit.NewIPRateLimiter(rate.Every(time.Second/20), 40, app.Logger)
	engine.Use(apiLimiter.RateLimit())

	engine.GET("/api/health", func(c *gin.Context) {
		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")
	authMiddleware := httpkit.AuthMiddleware(app.Config)
	protected := v1.Group("")
	protected.Use(authMiddleware)

	// Login attempts get a much tighter budget than the rest of the API.
	loginLimiter := httpkit.NewIPRateLimiter(rate.Every(10*time.Second), 5, app.Logger)

	ctx := &apphttp.RouterContext{
		Engine:           engine,
		V1:               v1,
		Protected:        protected,
		Config:           app.Config,
		AuthMiddleware:   authMiddleware,
		LoginRateLimiter: loginLimiter.RateLimit(),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Info("registered module routes", "module", module.Name())
	}

	return engine
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: app.Config.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if app.Config.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = app.Config.GetCORSOrigins()
	}
	return cors.New(corsCfg)
}
