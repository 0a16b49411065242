// internal/imageio/imageio.go
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"label-service/internal/bitmap"
)

// ErrUnsupportedFormat is returned for data no registered decoder accepts
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decode reads one image and reports its format name
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// LoadFile decodes the image stored at path
func LoadFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Preview renders separated layers as they would print: black ink, red ink
// and white paper. Red wins where both layers carry ink.
func Preview(black, red *bitmap.Binary) *image.RGBA {
	b := black.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	inkRed := color.RGBA{R: 0xFF, A: 0xFF}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
			switch {
			case red != nil && red.Ink(b.Min.X+x, b.Min.Y+y):
				c = inkRed
			case black.Ink(b.Min.X+x, b.Min.Y+y):
				c = color.RGBA{A: 0xFF}
			}
			out.SetRGBA(x, y, c)
		}
	}
	return out
}

// WritePNG encodes img as PNG to w
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to path, creating parent directories as needed
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WritePNG(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
