// internal/handler/discovery_handler.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"label-service/internal/service"
	"label-service/internal/utils"
)

// DiscoveryHandler handles printer discovery requests
type DiscoveryHandler struct {
	discoveryService *service.DiscoveryService
	logger           *utils.ServiceLogger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discoveryService *service.DiscoveryService, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryService: discoveryService,
		logger:           utils.NewServiceLogger(logger, "discovery-handler"),
	}
}

// ScanPrinters scans for reachable printers
// @Summary Scan for printers
// @Description Scan USB, serial and configured TCP hosts for Brother printers
// @Tags Discovery
// @Produce json
// @Param type query string false "Scan type" Enums(all, serial, usb, tcp) default(all)
// @Param timeout query string false "Scan timeout" default(30s)
// @Success 200 {object} utils.APIResponse "Printer scan completed"
// @Failure 400 {object} utils.APIResponse "Invalid scan parameters"
// @Router /discovery/scan [get]
func (h *DiscoveryHandler) ScanPrinters(c *gin.Context) {
	scanType := c.DefaultQuery("type", "all")
	timeout, err := time.ParseDuration(c.DefaultQuery("timeout", "30s"))
	if err != nil || timeout <= 0 {
		utils.ValidationErrorResponse(c, map[string]string{"timeout": "must be a positive duration such as 10s"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	printers, err := h.discoveryService.Scan(ctx, scanType)
	if err != nil {
		h.logger.Error("Failed to scan printers", zap.Error(err))
		utils.ErrorResponse(c, http.StatusBadRequest, "Failed to scan printers", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer scan completed", gin.H{
		"devices_found": len(printers),
		"devices":       printers,
	})
}

// GetScanners lists the scanner types usable on this host
// @Summary Available scanners
// @Tags Discovery
// @Produce json
// @Router /discovery/scanners [get]
func (h *DiscoveryHandler) GetScanners(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Scanners retrieved", gin.H{
		"scanners": h.discoveryService.AvailableScanners(),
	})
}
