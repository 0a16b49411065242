// internal/imageproc/prepare.go
package imageproc

import (
	"image"

	"golang.org/x/image/draw"

	"label-service/internal/bitmap"
)

type opaquer interface {
	Opaque() bool
}

// Prepare normalizes the color depth of a decoded image. Transparent
// images are flattened onto white. Paletted and grayscale sources become
// color when wantsRed is set, since the red/black split needs hue.
// The result never shares pixel memory with src.
func Prepare(src image.Image, wantsRed bool) image.Image {
	if o, ok := src.(opaquer); ok && !o.Opaque() {
		return flattenOnWhite(src)
	}

	switch s := src.(type) {
	case *bitmap.Binary:
		if wantsRed {
			return bitmap.ToRGBA(s)
		}
		return s.Clone()
	case *image.Paletted, *image.Gray, *image.Gray16:
		if wantsRed {
			return bitmap.ToRGBA(src)
		}
		return bitmap.ToGray(src)
	default:
		return bitmap.ToRGBA(src)
	}
}

func flattenOnWhite(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}
