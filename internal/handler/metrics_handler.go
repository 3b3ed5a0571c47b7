package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/internal/service"
	"github.com/noah-isme/sma-odoo-sync/pkg/response"
)

type healthChecker interface {
	CheckServerHealth(ctx context.Context) models.ServerHealth
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	health  healthChecker
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, health healthChecker) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, health: health}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Summary godoc
// @Summary Cache, RPC and offline counters
// @Tags Observability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /metrics/summary [get]
func (h *MetricsHandler) Summary(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the Odoo server answers.
func (h *MetricsHandler) Ready(c *gin.Context) {
	health := h.health.CheckServerHealth(c.Request.Context())
	status := http.StatusOK
	label := "ready"
	if !health.OK {
		status = http.StatusServiceUnavailable
		label = "odoo_unreachable"
	}
	c.JSON(status, gin.H{"status": label, "odoo": health})
}
