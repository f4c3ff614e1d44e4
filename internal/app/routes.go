package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sentrygin "github.com/getsentry/sentry-go/gin"

	"github.com/nvnfont/nvnfont-bot-go/internal/api"
	"github.com/nvnfont/nvnfont-bot-go/internal/buildinfo"
	"github.com/nvnfont/nvnfont-bot-go/internal/config"
	"github.com/nvnfont/nvnfont-bot-go/internal/webhook"
)

// newRouter configures middleware and every HTTP route.
func (a *Application) newRouter(wh *webhook.Handler, apiHandler *api.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	a.registerHealthRoutes(router)

	router.GET("/webhook", wh.Verify)
	router.POST("/webhook", wh.Handle)

	if a.limiter != nil {
		apiHandler.Register(router.Group("/", rateLimitMiddleware(a.limiter)))
	} else {
		apiHandler.Register(router)
	}

	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return router
}

func (a *Application) registerHealthRoutes(router gin.IRoutes) {
	router.GET("/", a.index)
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
}

func (a *Application) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "nvnfont-bot",
		"version": buildinfo.String(),
	})
}

// livenessCheck never touches dependencies.
func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheck)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	fonts, responses := a.catalog.Counts()
	admins, muted := a.state.Counts()
	body := gin.H{
		"status":   "ready",
		"database": "connected",
		"catalog": gin.H{
			"fonts":     fonts,
			"responses": responses,
		},
		"bot": gin.H{
			"enabled": a.state.BotEnabled(),
			"admins":  admins,
			"muted":   muted,
		},
		"features": gin.H{
			"snapshots":         a.snapshots != nil,
			"webhook_signature": a.cfg.AppSecret != "",
		},
	}
	if loaded := a.catalog.LoadedAt(); !loaded.IsZero() {
		body["catalog_loaded_at"] = loaded.UTC()
	}
	c.JSON(http.StatusOK, body)
}
