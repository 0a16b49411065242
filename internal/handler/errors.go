// internal/handler/errors.go
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"label-service/internal/catalog"
	"label-service/internal/convert"
	"label-service/internal/imageio"
	"label-service/internal/imageproc"
	"label-service/internal/protocol"
	"label-service/internal/raster"
	"label-service/internal/service"
	"label-service/internal/utils"
)

var errUploadTooLarge = errors.New("upload exceeds size limit")

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrUnknownLabel), errors.Is(err, catalog.ErrUnknownModel):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrIncompatibleLabel):
		return http.StatusConflict
	case errors.Is(err, raster.ErrUnsupportedCommand),
		errors.Is(err, raster.ErrWidthMismatch),
		errors.Is(err, imageproc.ErrDimension),
		errors.Is(err, convert.ErrInvalidOptions):
		return http.StatusUnprocessableEntity
	case errors.Is(err, convert.ErrNoImages),
		errors.Is(err, imageio.ErrUnsupportedFormat),
		errors.Is(err, service.ErrNoPrinter),
		errors.Is(err, protocol.ErrInvalidURI):
		return http.StatusBadRequest
	case errors.Is(err, errUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrTransport):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, message string, err error) {
	utils.ErrorResponse(c, statusFor(err), message, err)
}
