// Package httpapi wires the health server (Gin) to middleware and route
// handlers. The bot's primary interface is the Discord gateway; this server
// exposes liveness, operational status, and Prometheus metrics for the
// deployment environment.
//
// Middleware order matters:
//  1. otelgin: trace spans wrap the whole request
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Metrics
//  6. CORS
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/JonPark0/translate-bot/internal/config"
	"github.com/JonPark0/translate-bot/internal/http/handlers"
	"github.com/JonPark0/translate-bot/internal/http/middleware"
	"github.com/JonPark0/translate-bot/internal/services"
)

// RegisterRoutes attaches all middleware and endpoints to the given engine.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, registry *services.Registry, startedAt time.Time, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.Metrics())

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:   []string{"X-Request-ID", "Content-Length"},
			MaxAge:          12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowedOrigins,
			AllowMethods:  []string{"GET", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	h := handlers.New(db, registry, startedAt)

	r.GET("/healthz", h.Health)
	r.GET("/status", h.Status)
	r.GET("/status/guilds/:id", h.GuildStatus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
