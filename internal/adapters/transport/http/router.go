package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/middleware"
)

type RouterOptions struct {
	AllowedOrigins []string
	// Registry receives the HTTP metrics. Nil disables instrumentation.
	Registry *prometheus.Registry
	// ServeMetrics mounts /metrics on this router; off when a separate
	// metrics listener is configured.
	ServeMetrics bool
}

func NewRouter(h *Handler, log *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))

	if opts.Registry != nil {
		router.Use(middleware.NewMetrics(opts.Registry).Handler())
	}
	if opts.Registry != nil && opts.ServeMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{
				"Origin", "Content-Type", "Accept",
				"Authorization",
				middleware.RequestIDHeader,
			},
			ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	h.Mount(router)
	return router
}
