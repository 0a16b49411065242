// internal/imageproc/transform.go
package imageproc

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"label-service/internal/bitmap"
)

// Rotation is a counter-clockwise angle in degrees, or RotateAuto
type Rotation int

const (
	RotateAuto Rotation = -1
	Rotate0    Rotation = 0
	Rotate90   Rotation = 90
	Rotate180  Rotation = 180
	Rotate270  Rotation = 270
)

// ParseRotation accepts "auto" or one of 0, 90, 180 and 270
func ParseRotation(s string) (Rotation, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "auto" {
		return RotateAuto, nil
	}
	deg, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid rotation %q: must be auto, 0, 90, 180 or 270", s)
	}
	switch r := Rotation(deg); r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return r, nil
	}
	return 0, fmt.Errorf("invalid rotation %d: must be auto, 0, 90, 180 or 270", deg)
}

func (r Rotation) String() string {
	if r == RotateAuto {
		return "auto"
	}
	return strconv.Itoa(int(r))
}

// Rotate turns img counter-clockwise by an explicit angle, growing the
// canvas to fit. RotateAuto and Rotate0 return img itself.
func Rotate(img image.Image, r Rotation) image.Image {
	var out image.Image
	switch r {
	case Rotate90:
		out = imaging.Rotate90(img)
	case Rotate180:
		out = imaging.Rotate180(img)
	case Rotate270:
		out = imaging.Rotate270(img)
	default:
		return img
	}
	return bitmap.Convert(out, bitmap.DepthOf(img))
}

// RotateToFit applies an explicit rotation, or in auto mode turns the image
// by 90 degrees when it is sideways relative to the expected size.
func RotateToFit(img image.Image, r Rotation, expectedWidth, expectedHeight int) image.Image {
	if r != RotateAuto {
		return Rotate(img, r)
	}
	b := img.Bounds()
	if b.Dx() == expectedHeight && b.Dy() == expectedWidth {
		return Rotate(img, Rotate90)
	}
	return img
}

// Resize scales img proportionally to targetWidth. In 600 dpi mode the
// image is first scaled to twice the target width, then squeezed back to
// the target width with its height kept, so each printed row carries two
// rows worth of vertical detail.
func Resize(img image.Image, targetWidth int, dpi600 bool) image.Image {
	depth := bitmap.DepthOf(img)
	working := targetWidth
	if dpi600 {
		working = targetWidth * 2
	}

	b := img.Bounds()
	out := img
	if b.Dx() != working {
		height := int(float64(b.Dy()) * float64(working) / float64(b.Dx()))
		if height < 1 {
			height = 1
		}
		out = imaging.Resize(img, working, height, imaging.Lanczos)
	}

	if dpi600 {
		out = imaging.Resize(out, working/2, out.Bounds().Dy(), imaging.Lanczos)
	}

	if out == img {
		return img
	}
	return bitmap.Convert(out, depth)
}

// ScaleWidth resamples img to the given width keeping its height
func ScaleWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if b.Dx() == width {
		return img
	}
	out := imaging.Resize(img, width, b.Dy(), imaging.Lanczos)
	return bitmap.Convert(out, bitmap.DepthOf(img))
}
