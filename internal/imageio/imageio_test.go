package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"label-service/internal/bitmap"
)

func TestDecodePNG(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 3))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, format, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestDecodeRejectsUnknownData(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("definitely not an image")))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestPreview(t *testing.T) {
	black := bitmap.NewBinary(3, 1)
	red := bitmap.NewBinary(3, 1)
	black.SetInk(0, 0, true)
	red.SetInk(1, 0, true)

	img := Preview(black, red)
	want := []color.RGBA{
		{A: 0xFF},
		{R: 0xFF, A: 0xFF},
		{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	}
	for x, c := range want {
		if got := img.RGBAAt(x, 0); got != c {
			t.Errorf("pixel %d = %v, want %v", x, got, c)
		}
	}
}

func TestSavePNGRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "preview.png")
	black := bitmap.NewBinary(8, 2)
	black.SetInk(3, 1, true)

	if err := SavePNG(path, Preview(black, nil)); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	img, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	r, g, b, _ := img.At(3, 1).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("ink pixel decoded as %d,%d,%d", r, g, b)
	}
}
