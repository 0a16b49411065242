// internal/imageproc/position.go
package imageproc

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"label-service/internal/bitmap"
)

// ErrDimension is matched by every DimensionError
var ErrDimension = errors.New("image dimensions do not fit label")

// DimensionError reports an image that does not fit the label geometry
type DimensionError struct {
	Axis     string
	Got      int
	Want     int
	Exceeded bool
}

func (e *DimensionError) Error() string {
	if e.Exceeded {
		return fmt.Sprintf("image %s %d exceeds device %s %d", e.Axis, e.Got, e.Axis, e.Want)
	}
	return fmt.Sprintf("image %s %d doesn't match label %s %d", e.Axis, e.Got, e.Axis, e.Want)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrDimension
}

// ValidateDimensions checks an image against the expected label size.
// The height must always match. With allowFullBleed the width may be
// anything up to deviceWidth, otherwise it must match exactly.
func ValidateDimensions(img image.Image, expectedWidth, expectedHeight, deviceWidth int, allowFullBleed bool) error {
	b := img.Bounds()
	if b.Dy() != expectedHeight {
		return &DimensionError{Axis: "height", Got: b.Dy(), Want: expectedHeight}
	}
	if allowFullBleed {
		if b.Dx() > deviceWidth {
			return &DimensionError{Axis: "width", Got: b.Dx(), Want: deviceWidth, Exceeded: true}
		}
		return nil
	}
	if b.Dx() != expectedWidth {
		return &DimensionError{Axis: "width", Got: b.Dx(), Want: expectedWidth}
	}
	return nil
}

// Placement describes where an image goes across the print head
type Placement struct {
	DeviceWidth   int
	LabelHeight   int
	StandardWidth int
	RightMargin   int
	// Override replaces the computed base position when set
	Override *int
	OffsetX  int
}

// CalculatePosition returns the x offset of an image of the given width.
// Oversized images are centered, others sit flush against the right
// margin. An override replaces that base, the user offset is added, and
// the result is clamped onto the device.
func CalculatePosition(imageWidth int, p Placement) int {
	var x int
	if imageWidth > p.StandardWidth {
		x = p.DeviceWidth/2 - imageWidth/2
	} else {
		x = p.DeviceWidth - imageWidth - p.RightMargin
	}
	if p.Override != nil {
		x = *p.Override
	}

	x += p.OffsetX

	if limit := p.DeviceWidth - imageWidth; x > limit {
		x = limit
	}
	if x < 0 {
		x = 0
	}
	return x
}

// Position places img on a canvas as wide as the print head. An image that
// already spans the device is returned as is.
func Position(img image.Image, p Placement) image.Image {
	b := img.Bounds()
	if b.Dx() == p.DeviceWidth {
		return img
	}

	x := CalculatePosition(b.Dx(), p)
	canvas := image.Rect(0, 0, p.DeviceWidth, p.LabelHeight)

	switch src := img.(type) {
	case *bitmap.Binary:
		out := bitmap.NewBinary(p.DeviceWidth, p.LabelHeight)
		out.Paste(src, x, 0)
		return out
	case *image.Gray, *image.Gray16:
		out := image.NewGray(canvas)
		draw.Draw(out, canvas, image.White, image.Point{}, draw.Src)
		draw.Draw(out, b.Sub(b.Min).Add(image.Pt(x, 0)), src, b.Min, draw.Src)
		return out
	default:
		out := image.NewRGBA(canvas)
		draw.Draw(out, canvas, image.White, image.Point{}, draw.Src)
		draw.Draw(out, b.Sub(b.Min).Add(image.Pt(x, 0)), src, b.Min, draw.Src)
		return out
	}
}
