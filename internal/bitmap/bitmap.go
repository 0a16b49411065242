// internal/bitmap/bitmap.go
package bitmap

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Depth is the color depth of a working image
type Depth int

const (
	DepthBinary Depth = iota
	DepthGray
	DepthColor
)

func (d Depth) String() string {
	switch d {
	case DepthBinary:
		return "binary"
	case DepthGray:
		return "gray"
	default:
		return "color"
	}
}

// DepthOf classifies an image. Paletted images count as color until
// they are normalized.
func DepthOf(img image.Image) Depth {
	switch img.(type) {
	case *Binary:
		return DepthBinary
	case *image.Gray, *image.Gray16:
		return DepthGray
	default:
		return DepthColor
	}
}

// ToGray returns a new 8-bit grayscale copy anchored at the origin
func ToGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// ToRGBA returns a new color copy anchored at the origin
func ToRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Convert returns a fresh copy of src at the requested depth.
// Converting to DepthBinary keeps any pixel darker than mid-gray as ink.
func Convert(src image.Image, depth Depth) image.Image {
	switch depth {
	case DepthBinary:
		if b, ok := src.(*Binary); ok {
			return b.Clone()
		}
		g := ToGray(src)
		out := NewBinary(g.Rect.Dx(), g.Rect.Dy())
		for i, v := range g.Pix {
			if v < 128 {
				out.Pix[i] = 1
			}
		}
		return out
	case DepthGray:
		return ToGray(src)
	default:
		return ToRGBA(src)
	}
}

// Binary is a one-bit image. A set pixel means ink.
type Binary struct {
	// Pix holds one byte per pixel, 0 for background and 1 for ink
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// NewBinary returns an all-background bitmap
func NewBinary(width, height int) *Binary {
	return &Binary{
		Pix:    make([]uint8, width*height),
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
	}
}

var (
	inkColor        = color.Gray{Y: 0}
	backgroundColor = color.Gray{Y: 255}
)

func (b *Binary) ColorModel() color.Model { return color.GrayModel }

func (b *Binary) Bounds() image.Rectangle { return b.Rect }

// At renders ink as black so a bitmap can be previewed as a normal image
func (b *Binary) At(x, y int) color.Color {
	if b.Ink(x, y) {
		return inkColor
	}
	return backgroundColor
}

func (b *Binary) Opaque() bool { return true }

func (b *Binary) Width() int { return b.Rect.Dx() }

func (b *Binary) Height() int { return b.Rect.Dy() }

func (b *Binary) offset(x, y int) int {
	return (y-b.Rect.Min.Y)*b.Stride + (x - b.Rect.Min.X)
}

// Ink reports whether the pixel carries ink; out-of-range pixels do not
func (b *Binary) Ink(x, y int) bool {
	if !(image.Point{x, y}.In(b.Rect)) {
		return false
	}
	return b.Pix[b.offset(x, y)] != 0
}

// SetInk marks or clears a pixel
func (b *Binary) SetInk(x, y int, ink bool) {
	if !(image.Point{x, y}.In(b.Rect)) {
		return
	}
	var v uint8
	if ink {
		v = 1
	}
	b.Pix[b.offset(x, y)] = v
}

// InkCount returns the number of ink pixels
func (b *Binary) InkCount() int {
	n := 0
	for y := b.Rect.Min.Y; y < b.Rect.Max.Y; y++ {
		for x := b.Rect.Min.X; x < b.Rect.Max.X; x++ {
			if b.Pix[b.offset(x, y)] != 0 {
				n++
			}
		}
	}
	return n
}

// Clone returns an independent copy anchored at the origin
func (b *Binary) Clone() *Binary {
	out := NewBinary(b.Width(), b.Height())
	for y := 0; y < out.Rect.Dy(); y++ {
		src := b.offset(b.Rect.Min.X, b.Rect.Min.Y+y)
		copy(out.Pix[y*out.Stride:(y+1)*out.Stride], b.Pix[src:src+out.Stride])
	}
	return out
}

// Paste copies src onto b with its top-left corner at (x, y), clipping at
// the edges of b.
func (b *Binary) Paste(src *Binary, x, y int) {
	for sy := 0; sy < src.Height(); sy++ {
		for sx := 0; sx < src.Width(); sx++ {
			b.SetInk(x+sx, y+sy, src.Ink(src.Rect.Min.X+sx, src.Rect.Min.Y+sy))
		}
	}
}
