// internal/convert/options.go
package convert

import (
	"fmt"

	"label-service/internal/config"
	"label-service/internal/imageproc"
)

// Options controls how images are turned into raster instructions
type Options struct {
	Cut              bool               `json:"cut"`
	Dither           bool               `json:"dither"`
	Compress         bool               `json:"compress"`
	Red              bool               `json:"red"`
	Rotate           imageproc.Rotation `json:"rotate"`
	DPI600           bool               `json:"dpi_600"`
	HQ               bool               `json:"hq"`
	ThresholdPercent float64            `json:"threshold"`
	OffsetX          int                `json:"offset_x"`

	// Strict turns tolerated capability errors into failures
	Strict bool `json:"strict"`
}

// DefaultOptions returns the stock conversion settings
func DefaultOptions() Options {
	return Options{
		Cut:              true,
		Rotate:           imageproc.RotateAuto,
		HQ:               true,
		ThresholdPercent: imageproc.DefaultThresholdPercent,
	}
}

// OptionsFromConfig builds options from the conversion config section
func OptionsFromConfig(cfg *config.ConversionConfig, strict bool) (Options, error) {
	rotate, err := imageproc.ParseRotation(cfg.Rotate)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Cut:              cfg.Cut,
		Dither:           cfg.Dither,
		Compress:         cfg.Compress,
		Red:              cfg.Red,
		Rotate:           rotate,
		DPI600:           cfg.DPI600,
		HQ:               cfg.HQ,
		ThresholdPercent: cfg.Threshold,
		OffsetX:          cfg.OffsetX,
		Strict:           strict,
	}
	return opts, opts.Validate()
}

// Validate checks option ranges
func (o Options) Validate() error {
	if o.ThresholdPercent < 0 || o.ThresholdPercent > 100 {
		return fmt.Errorf("%w: threshold %.1f must be between 0 and 100", ErrInvalidOptions, o.ThresholdPercent)
	}
	switch o.Rotate {
	case imageproc.RotateAuto, imageproc.Rotate0, imageproc.Rotate90, imageproc.Rotate180, imageproc.Rotate270:
	default:
		return fmt.Errorf("%w: rotate must be auto, 0, 90, 180 or 270", ErrInvalidOptions)
	}
	return nil
}

// Threshold returns the byte threshold used for binarization
func (o Options) Threshold() uint8 {
	return imageproc.ThresholdFromPercent(o.ThresholdPercent)
}
