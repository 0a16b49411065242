// internal/imageproc/separate.go
package imageproc

import (
	"image"
	"image/color"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"

	"label-service/internal/bitmap"
)

// DefaultThresholdPercent is the default darkness cutoff in percent
const DefaultThresholdPercent = 70.0

// Red/black separation cutoffs on a 0-255 HSV scale. They were tuned
// against DK-22251 black/red stock and may need adjusting for other media.
const (
	RedHueLow         = 40
	RedHueHigh        = 210
	RedSaturationMin  = 100
	RedValueMin       = 80
	BlackValueMax     = 80
	backgroundLumaMax = 255
)

// ThresholdFromPercent maps a 0-100 darkness percentage onto the byte
// compared against inverted luminance. Higher percentages print more ink.
func ThresholdFromPercent(percent float64) uint8 {
	v := int((100 - percent) / 100 * 255)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// ToMonochrome converts img to a one-bit ink bitmap. Luminance is inverted
// so light pixels become background. Without dithering a pixel is ink when
// its inverted luminance reaches threshold.
func ToMonochrome(img image.Image, useDither bool, threshold uint8) *bitmap.Binary {
	gray := bitmap.ToGray(img)
	for i, v := range gray.Pix {
		gray.Pix[i] = backgroundLumaMax - v
	}

	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	out := bitmap.NewBinary(w, h)

	if useDither {
		d := dither.NewDitherer([]color.Color{color.Black, color.White})
		d.Matrix = dither.FloydSteinberg
		p := d.DitherPaletted(srgbEncoded(gray))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, _, _, _ := p.At(p.Rect.Min.X+x, p.Rect.Min.Y+y).RGBA()
				out.Pix[y*out.Stride+x] = inkBit(r > 0x7fff)
			}
		}
		return out
	}

	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for x, v := range row {
			out.Pix[y*out.Stride+x] = inkBit(v >= threshold)
		}
	}
	return out
}

// ToRedBlack splits a color image into black and red ink layers. A pixel is
// ink in at most one layer.
func ToRedBlack(img image.Image, threshold uint8) (black, red *bitmap.Binary) {
	src := bitmap.ToRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	black = bitmap.NewBinary(w, h)
	red = bitmap.NewBinary(w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*src.Stride + x*4
			r, g, b := src.Pix[i], src.Pix[i+1], src.Pix[i+2]
			hue, sat, val := rgbToHSV(r, g, b)
			ink := backgroundLumaMax-luma(r, g, b) >= int(threshold)

			isRed := (hue < RedHueLow || hue > RedHueHigh) && sat > RedSaturationMin && val > RedValueMin
			isBlack := val < BlackValueMax

			o := y*red.Stride + x
			red.Pix[o] = inkBit(isRed && ink)
			black.Pix[o] = inkBit(isBlack && ink && red.Pix[o] == 0)
		}
	}
	return black, red
}

// srgbEncode maps a linear ink level onto the sRGB curve. The ditherer
// linearizes its input, so pre-encoding keeps ink density proportional
// to the inverted luminance.
var srgbEncode = func() (t [256]uint16) {
	for i := range t {
		lin := float64(i) / 255
		var s float64
		if lin <= 0.0031308 {
			s = 12.92 * lin
		} else {
			s = 1.055*math.Pow(lin, 1/2.4) - 0.055
		}
		t[i] = uint16(math.Round(s * 0xffff))
	}
	return t
}()

func srgbEncoded(gray *image.Gray) *image.Gray16 {
	out := image.NewGray16(gray.Rect)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := srgbEncode[gray.Pix[y*gray.Stride+x]]
			o := y*out.Stride + x*2
			out.Pix[o] = uint8(v >> 8)
			out.Pix[o+1] = uint8(v)
		}
	}
	return out
}

func inkBit(ink bool) uint8 {
	if ink {
		return 1
	}
	return 0
}

// luma uses the ITU-R 601-2 weights, matching color.GrayModel
func luma(r, g, b uint8) int {
	return int((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}

// rgbToHSV returns hue, saturation and value each scaled to 0-255
func rgbToHSV(r, g, b uint8) (h, s, v int) {
	maxc := max(r, g, b)
	minc := min(r, g, b)
	v = int(maxc)
	if maxc == minc {
		return 0, 0, v
	}

	cr := float64(maxc) - float64(minc)
	s = int(cr / float64(maxc) * 255)

	rc := (float64(maxc) - float64(r)) / cr
	gc := (float64(maxc) - float64(g)) / cr
	bc := (float64(maxc) - float64(b)) / cr

	var hf float64
	switch maxc {
	case r:
		hf = bc - gc
	case g:
		hf = 2 + rc - bc
	default:
		hf = 4 + gc - rc
	}
	hf /= 6
	hf -= float64(int(hf))
	if hf < 0 {
		hf++
	}
	return int(hf * 255), s, v
}
