// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/config"
	"label-service/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	catalog   *catalog.Registry
	config    *config.Config
	logger    *utils.ServiceLogger
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *catalog.Registry, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		catalog:   registry,
		config:    config,
		logger:    utils.NewServiceLogger(logger, "health-handler"),
		startedAt: time.Now(),
	}
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Service health including catalog state and printer configuration
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Service is unhealthy"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]CheckResult),
	}

	labels, models := len(h.catalog.Labels()), len(h.catalog.Models())
	if labels == 0 || models == 0 {
		health.Status = "unhealthy"
		health.Checks["catalog"] = CheckResult{
			Status:  "unhealthy",
			Message: "Catalog is empty",
		}
	} else {
		health.Checks["catalog"] = CheckResult{
			Status: "healthy",
			Data: map[string]interface{}{
				"labels": labels,
				"models": models,
			},
		}
	}

	// a missing printer only limits /print, conversion still works
	printer := CheckResult{
		Status: "healthy",
		Data: map[string]interface{}{
			"model": h.config.Printer.Model,
			"label": h.config.Printer.Label,
		},
	}
	if h.config.Printer.URI == "" {
		printer.Status = "degraded"
		printer.Message = "No printer URI configured"
	} else {
		printer.Data["uri"] = h.config.Printer.URI
	}
	health.Checks["printer"] = printer

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		h.logger.Warn("Health check failed", zap.Any("checks", health.Checks))
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// ReadinessCheck for Kubernetes readiness probe
// @Summary Readiness check
// @Tags Health
// @Produce json
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if len(h.catalog.Models()) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "catalog not loaded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck for Kubernetes liveness probe
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
