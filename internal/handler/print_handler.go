// internal/handler/print_handler.go
package handler

import (
	"errors"
	"fmt"
	"image"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"label-service/internal/convert"
	"label-service/internal/imageio"
	"label-service/internal/imageproc"
	"label-service/internal/service"
	"label-service/internal/utils"
)

const (
	// imageField is the multipart field carrying one image per page
	imageField = "image"

	HeaderJobID    = "X-Label-Job-ID"
	HeaderPages    = "X-Label-Pages"
	HeaderWarnings = "X-Label-Warnings"
)

// PrintHandler handles conversion, printing and printer status requests
type PrintHandler struct {
	printService   *service.PrintService
	maxUploadBytes int64
	logger         *utils.ServiceLogger
}

// NewPrintHandler creates a new print handler
func NewPrintHandler(printService *service.PrintService, maxUploadBytes int64, logger *zap.Logger) *PrintHandler {
	return &PrintHandler{
		printService:   printService,
		maxUploadBytes: maxUploadBytes,
		logger:         utils.NewServiceLogger(logger, "print-handler"),
	}
}

// ConvertImages converts uploaded images into a raster instruction stream
// @Summary Convert images
// @Description Upload one image per page and receive the printer instructions
// @Tags Print
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param image formData file true "Image, repeat for more pages"
// @Param model formData string false "Printer model"
// @Param label formData string false "Label identifier"
// @Router /convert [post]
func (h *PrintHandler) ConvertImages(c *gin.Context) {
	req, err := h.bindRequest(c)
	if err != nil {
		respondError(c, "Invalid conversion request", err)
		return
	}

	job, data, err := h.printService.Convert(c.Request.Context(), req)
	if err != nil {
		h.requestLogger(c).Warn("Conversion failed", zap.Error(err))
		respondError(c, "Conversion failed", err)
		return
	}

	c.Header(HeaderJobID, job.ID.String())
	c.Header(HeaderPages, strconv.Itoa(job.Pages))
	c.Header(HeaderWarnings, strconv.Itoa(len(job.Warnings)))
	c.Header("Content-Disposition", `attachment; filename="label.bin"`)
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// PrintImages converts uploaded images and sends them to a printer
// @Summary Print images
// @Tags Print
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image, repeat for more pages"
// @Param uri formData string false "Printer URI, defaults to the configured printer"
// @Router /print [post]
func (h *PrintHandler) PrintImages(c *gin.Context) {
	req, err := h.bindRequest(c)
	if err != nil {
		respondError(c, "Invalid print request", err)
		return
	}
	req.URI = c.PostForm("uri")

	job, err := h.printService.Print(c.Request.Context(), req)
	if err != nil {
		utils.LogError(h.requestLogger(c), "Print failed", err, zap.String("uri", req.URI))
		respondError(c, "Print failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Label printed", job)
}

// PreviewImage renders the ink layers of the first uploaded image as PNG
// @Summary Preview separation
// @Tags Print
// @Accept multipart/form-data
// @Produce image/png
// @Router /preview [post]
func (h *PrintHandler) PreviewImage(c *gin.Context) {
	req, err := h.bindRequest(c)
	if err != nil {
		respondError(c, "Invalid preview request", err)
		return
	}

	img, warnings, err := h.printService.Preview(req)
	if err != nil {
		respondError(c, "Preview failed", err)
		return
	}

	c.Header(HeaderWarnings, strconv.Itoa(len(warnings)))
	c.Header("Content-Type", "image/png")
	c.Status(http.StatusOK)
	if err := imageio.WritePNG(c.Writer, img); err != nil {
		utils.LogError(h.requestLogger(c), "Failed to write preview", err)
	}
}

// GetPrinterStatus queries a printer for its status reply
// @Summary Printer status
// @Tags Print
// @Produce json
// @Param uri query string false "Printer URI, defaults to the configured printer"
// @Router /printer/status [get]
func (h *PrintHandler) GetPrinterStatus(c *gin.Context) {
	info, status, err := h.printService.Status(c.Request.Context(), c.Query("uri"))
	if err != nil {
		respondError(c, "Failed to read printer status", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer status retrieved", gin.H{
		"printer": info,
		"status":  status,
	})
}

func (h *PrintHandler) requestLogger(c *gin.Context) *zap.Logger {
	return utils.LoggerWithRequestID(h.logger.Logger, c.GetString("request_id"))
}

func (h *PrintHandler) bindRequest(c *gin.Context) (*service.PrintRequest, error) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, fmt.Errorf("%w: limit is %d bytes", errUploadTooLarge, h.maxUploadBytes)
		}
		return nil, fmt.Errorf("%w: %v", convert.ErrNoImages, err)
	}

	images, err := decodeImages(form.File[imageField])
	if err != nil {
		return nil, err
	}

	opts, err := h.printService.DefaultOptions()
	if err != nil {
		return nil, err
	}
	if err := applyFormOptions(c, &opts); err != nil {
		return nil, err
	}

	return &service.PrintRequest{
		Model:   c.PostForm("model"),
		Label:   c.PostForm("label"),
		Images:  images,
		Options: &opts,
	}, nil
}

func decodeImages(files []*multipart.FileHeader) ([]image.Image, error) {
	images := make([]image.Image, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
		}
		img, _, err := imageio.Decode(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		images = append(images, img)
	}
	return images, nil
}

// applyFormOptions overrides opts with the form fields that are present
func applyFormOptions(c *gin.Context, opts *convert.Options) error {
	flags := map[string]*bool{
		"cut":      &opts.Cut,
		"dither":   &opts.Dither,
		"compress": &opts.Compress,
		"red":      &opts.Red,
		"dpi_600":  &opts.DPI600,
		"hq":       &opts.HQ,
		"strict":   &opts.Strict,
	}
	for name, dst := range flags {
		raw, ok := c.GetPostForm(name)
		if !ok {
			continue
		}
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean", convert.ErrInvalidOptions, name)
		}
		*dst = v
	}

	if raw, ok := c.GetPostForm("rotate"); ok {
		r, err := imageproc.ParseRotation(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", convert.ErrInvalidOptions, err)
		}
		opts.Rotate = r
	}
	if raw, ok := c.GetPostForm("threshold"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("%w: threshold must be a number", convert.ErrInvalidOptions)
		}
		opts.ThresholdPercent = v
	}
	if raw, ok := c.GetPostForm("offset_x"); ok {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: offset_x must be an integer", convert.ErrInvalidOptions)
		}
		opts.OffsetX = v
	}
	return opts.Validate()
}
