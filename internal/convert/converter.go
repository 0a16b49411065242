// internal/convert/converter.go
package convert

import (
	"context"
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"label-service/internal/bitmap"
	"label-service/internal/catalog"
	"label-service/internal/imageproc"
	"label-service/internal/raster"
)

var (
	ErrNoImages       = errors.New("no images to convert")
	ErrInvalidOptions = errors.New("invalid conversion options")
)

// Request is one conversion job
type Request struct {
	Model   string
	Label   string
	Images  []image.Image
	Options Options
}

// Result is the outcome of a conversion
type Result struct {
	Data     []byte   `json:"-"`
	Bytes    int      `json:"bytes"`
	Pages    int      `json:"pages"`
	Rows     []int    `json:"rows"`
	Warnings []string `json:"warnings,omitempty"`
}

// Layers holds the separated ink bitmaps of one image
type Layers struct {
	Black *bitmap.Binary
	// Red is nil unless two-color printing was requested
	Red *bitmap.Binary
}

// Converter turns images into raster instruction streams
type Converter struct {
	catalog *catalog.Registry
	logger  *zap.Logger
}

// NewConverter creates a converter backed by a catalog
func NewConverter(registry *catalog.Registry, logger *zap.Logger) *Converter {
	return &Converter{
		catalog: registry,
		logger:  logger.With(zap.String("component", "converter")),
	}
}

// Convert runs a whole job and returns the finished instruction stream
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	label, model, opts, warnings, err := c.Prepare(req)
	if err != nil {
		return nil, err
	}

	enc := raster.NewEncoder(*model)
	result, err := c.Encode(ctx, enc, req.Images, label, opts)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(warnings, result.Warnings...)

	data, err := enc.Finish()
	if err != nil {
		return nil, err
	}
	result.Data = data
	result.Bytes = len(data)
	return result, nil
}

// Prepare resolves the catalog entries and checks the options against the
// model. Configuration errors and a two-color request on a single-color
// model always fail. Compression on a model without it is switched off
// with a warning.
func (c *Converter) Prepare(req Request) (*catalog.LabelSpec, *catalog.PrinterModel, Options, []string, error) {
	opts := req.Options
	if len(req.Images) == 0 {
		return nil, nil, opts, nil, ErrNoImages
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, opts, nil, err
	}

	label, model, err := c.catalog.Resolve(req.Label, req.Model)
	if err != nil {
		return nil, nil, opts, nil, err
	}

	if opts.Red && !model.HasTwoColor {
		return nil, nil, opts, nil, &raster.UnsupportedCommandError{
			Command: "two-color printing",
			Model:   model.Name,
		}
	}

	var warnings []string
	if opts.Compress && !model.HasCompression {
		msg := fmt.Sprintf("compression not supported by %s, sending uncompressed rows", model.Name)
		c.logger.Warn("Compression disabled", zap.String("model", model.Name))
		warnings = append(warnings, msg)
		opts.Compress = false
	}
	if opts.DPI600 && !model.Has600DPI {
		c.logger.Warn("600 dpi requested on a model without high resolution mode",
			zap.String("model", model.Name))
		warnings = append(warnings, fmt.Sprintf("600 dpi mode not listed for %s", model.Name))
	}
	return label, model, opts, warnings, nil
}

// Encode appends every image to enc as one page each. On error the pages
// already appended stay in enc.
func (c *Converter) Encode(ctx context.Context, enc *raster.Encoder, images []image.Image, label *catalog.LabelSpec, opts Options) (*Result, error) {
	result := &Result{}
	tolerate := func(err error) error {
		if err == nil {
			return nil
		}
		if raster.IsUnsupported(err) && !opts.Strict {
			c.logger.Warn("Skipping unsupported command",
				zap.String("model", enc.Model().Name),
				zap.Error(err),
			)
			result.Warnings = append(result.Warnings, err.Error())
			return nil
		}
		return err
	}

	if err := c.initialize(enc); err != nil {
		return result, err
	}

	model := enc.Model()
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		layers, err := c.Separate(img, label, &model, opts)
		if err != nil {
			return result, fmt.Errorf("image %d: %w", i+1, err)
		}

		rows := layers.Black.Height()
		if label.IsEndless() && model.MaxLengthDots > 0 && rows > model.MaxLengthDots {
			c.logger.Warn("Label longer than the printer maximum",
				zap.Int("rows", rows),
				zap.Int("max_length_dots", model.MaxLengthDots),
			)
		}

		last := i == len(images)-1
		if err := c.configureAndPrint(enc, label, layers, opts, last, tolerate); err != nil {
			return result, fmt.Errorf("image %d: %w", i+1, err)
		}
		result.Pages++
		result.Rows = append(result.Rows, rows)
	}
	return result, nil
}

// initialize clears the printer and switches it to raster mode. Models
// without mode setting simply skip the switch.
func (c *Converter) initialize(enc *raster.Encoder) error {
	steps := []func() error{
		enc.AddSwitchMode,
		enc.AddInvalidate,
		enc.AddInitialize,
		enc.AddSwitchMode,
	}
	for _, step := range steps {
		if err := step(); err != nil && !raster.IsUnsupported(err) {
			return err
		}
	}
	return nil
}

// Separate runs the image stages for one image and returns its ink layers
func (c *Converter) Separate(img image.Image, label *catalog.LabelSpec, model *catalog.PrinterModel, opts Options) (*Layers, error) {
	im := imageproc.Prepare(img, opts.Red)
	deviceWidth := model.PixelWidth()

	var override *int
	if pos, ok := model.StandardPosition(label.Identifier); ok {
		override = &pos
	}

	if label.IsEndless() {
		if opts.Rotate != imageproc.RotateAuto && opts.Rotate != imageproc.Rotate0 {
			im = imageproc.Rotate(im, opts.Rotate)
		}
		im = imageproc.Resize(im, label.PrintableWidth, opts.DPI600)
		if im.Bounds().Dx() < deviceWidth {
			im = imageproc.Position(im, imageproc.Placement{
				DeviceWidth:   deviceWidth,
				LabelHeight:   im.Bounds().Dy(),
				StandardWidth: label.PrintableWidth,
				RightMargin:   label.RightMarginDots,
				Override:      override,
				OffsetX:       opts.OffsetX,
			})
		}
	} else {
		width, height := label.DotsPrintable()
		im = imageproc.RotateToFit(im, opts.Rotate, width, height)
		if err := imageproc.ValidateDimensions(im, width, height, deviceWidth, true); err != nil {
			return nil, err
		}
		if opts.DPI600 {
			im = imageproc.ScaleWidth(im, im.Bounds().Dx()/2)
		}
		im = imageproc.Position(im, imageproc.Placement{
			DeviceWidth:   deviceWidth,
			LabelHeight:   height,
			StandardWidth: label.PrintableWidth,
			RightMargin:   label.RightMarginDots + model.AdditionalOffsetR,
			Override:      override,
			OffsetX:       opts.OffsetX,
		})
	}

	if opts.Red {
		black, red := imageproc.ToRedBlack(im, opts.Threshold())
		return &Layers{Black: black, Red: red}, nil
	}
	return &Layers{Black: imageproc.ToMonochrome(im, opts.Dither, opts.Threshold())}, nil
}

func (c *Converter) configureAndPrint(enc *raster.Encoder, label *catalog.LabelSpec, layers *Layers, opts Options, last bool, tolerate func(error) error) error {
	if err := enc.AddStatusRequest(); err != nil {
		return err
	}

	mediaType := raster.MediaType(label.MediaType())
	width := int(label.WidthMM)
	length := int(label.LengthMM())
	media := raster.Media{Type: &mediaType, Width: &width, Length: &length}
	if err := enc.AddMediaAndQuality(media, opts.HQ, layers.Black.Height()); err != nil {
		return err
	}

	if opts.Cut {
		if err := tolerate(enc.AddAutocut(true)); err != nil {
			return err
		}
		if err := tolerate(enc.AddCutEvery(1)); err != nil {
			return err
		}
	}

	if err := tolerate(enc.AddExpandedMode(opts.Cut, opts.DPI600, layers.Red != nil)); err != nil {
		return err
	}
	if err := enc.AddMargins(label.FeedMargin); err != nil {
		return err
	}
	if opts.Compress {
		if err := tolerate(enc.AddCompression(true)); err != nil {
			return err
		}
	}
	if err := enc.AddRaster(layers.Black, layers.Red); err != nil {
		return err
	}
	return enc.AddPrint(last)
}
