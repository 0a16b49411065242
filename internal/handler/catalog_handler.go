// internal/handler/catalog_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/utils"
)

// CatalogHandler serves the label and printer model catalog
type CatalogHandler struct {
	catalog *catalog.Registry
	logger  *utils.ServiceLogger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(registry *catalog.Registry, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: registry,
		logger:  utils.NewServiceLogger(logger, "catalog-handler"),
	}
}

// ListLabels returns the label catalog
// @Summary List labels
// @Tags Catalog
// @Produce json
// @Param model query string false "Only labels usable on this model"
// @Param kind query string false "die_cut or endless"
// @Router /labels [get]
func (h *CatalogHandler) ListLabels(c *gin.Context) {
	var labels []catalog.LabelSpec

	switch c.Query("kind") {
	case "":
		labels = h.catalog.Labels()
	case "die_cut":
		labels = h.catalog.DieCutLabels()
	case "endless":
		labels = h.catalog.EndlessLabels()
	default:
		utils.ValidationErrorResponse(c, map[string]string{"kind": "must be die_cut or endless"})
		return
	}

	if modelID := c.Query("model"); modelID != "" {
		if _, err := h.catalog.Model(modelID); err != nil {
			respondError(c, "Unknown printer model", err)
			return
		}
		allowed := make(map[string]bool)
		for _, l := range h.catalog.LabelsForModel(modelID) {
			allowed[l.Identifier] = true
		}
		filtered := labels[:0]
		for _, l := range labels {
			if allowed[l.Identifier] {
				filtered = append(filtered, l)
			}
		}
		labels = filtered
	}

	utils.SuccessResponse(c, http.StatusOK, "Labels retrieved", gin.H{
		"count":  len(labels),
		"labels": labels,
	})
}

// GetLabel returns one label
// @Summary Get label
// @Tags Catalog
// @Produce json
// @Param label_id path string true "Label identifier"
// @Router /labels/{label_id} [get]
func (h *CatalogHandler) GetLabel(c *gin.Context) {
	label, err := h.catalog.Label(c.Param("label_id"))
	if err != nil {
		respondError(c, "Label not found", err)
		return
	}

	width, height := label.DotsPrintable()
	totalWidth, totalHeight := label.DotsTotal()
	utils.SuccessResponse(c, http.StatusOK, "Label retrieved", gin.H{
		"label":           label,
		"dots_printable":  []int{width, height},
		"dots_total":      []int{totalWidth, totalHeight},
		"media_type_byte": label.MediaType(),
	})
}

// ListModels returns the printer models
// @Summary List printer models
// @Tags Catalog
// @Produce json
// @Param capability query string false "two_color, compression or wide"
// @Router /models [get]
func (h *CatalogHandler) ListModels(c *gin.Context) {
	var models []catalog.PrinterModel

	switch c.Query("capability") {
	case "":
		models = h.catalog.Models()
	case "two_color":
		models = h.catalog.TwoColorModels()
	case "compression":
		models = h.catalog.CompressionModels()
	case "wide":
		models = h.catalog.WideFormatModels()
	default:
		utils.ValidationErrorResponse(c, map[string]string{"capability": "must be two_color, compression or wide"})
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer models retrieved", gin.H{
		"count":  len(models),
		"models": models,
	})
}

// GetModel returns one printer model with the labels it accepts
// @Summary Get printer model
// @Tags Catalog
// @Produce json
// @Param model_id path string true "Model name"
// @Router /models/{model_id} [get]
func (h *CatalogHandler) GetModel(c *gin.Context) {
	modelID := c.Param("model_id")
	model, err := h.catalog.Model(modelID)
	if err != nil {
		respondError(c, "Printer model not found", err)
		return
	}

	labels := h.catalog.LabelsForModel(modelID)
	ids := make([]string, len(labels))
	for i, l := range labels {
		ids[i] = l.Identifier
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer model retrieved", gin.H{
		"model":       model,
		"pixel_width": model.PixelWidth(),
		"labels":      ids,
	})
}
