package bitmap

import (
	"image"
	"image/color"
	"testing"
)

func TestDepthOf(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want Depth
	}{
		{"binary", NewBinary(2, 2), DepthBinary},
		{"gray", image.NewGray(image.Rect(0, 0, 2, 2)), DepthGray},
		{"rgba", image.NewRGBA(image.Rect(0, 0, 2, 2)), DepthColor},
		{"paletted", image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.White}), DepthColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DepthOf(tt.img); got != tt.want {
				t.Errorf("DepthOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBinaryInk(t *testing.T) {
	b := NewBinary(4, 3)
	b.SetInk(1, 2, true)
	b.SetInk(10, 10, true)

	if !b.Ink(1, 2) {
		t.Fatalf("Ink(1, 2) = false, want true")
	}
	if b.InkCount() != 1 {
		t.Fatalf("InkCount() = %d, want 1", b.InkCount())
	}
	if got := b.At(1, 2); got != inkColor {
		t.Errorf("At(ink) = %v, want black", got)
	}
	if got := b.At(0, 0); got != backgroundColor {
		t.Errorf("At(background) = %v, want white", got)
	}
}

func TestBinaryCloneIsIndependent(t *testing.T) {
	b := NewBinary(3, 3)
	b.SetInk(0, 0, true)

	c := b.Clone()
	c.SetInk(2, 2, true)

	if b.Ink(2, 2) {
		t.Fatalf("mutating the clone changed the original")
	}
	if !c.Ink(0, 0) {
		t.Fatalf("clone lost ink at (0, 0)")
	}
}

func TestBinaryPasteClips(t *testing.T) {
	dst := NewBinary(4, 2)
	src := NewBinary(3, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.SetInk(x, y, true)
		}
	}

	dst.Paste(src, 2, 0)

	if dst.InkCount() != 4 {
		t.Fatalf("InkCount() = %d, want 4", dst.InkCount())
	}
	if dst.Ink(1, 0) {
		t.Errorf("pixel left of the paste origin should stay background")
	}
}

func TestConvertToBinary(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.SetGray(0, 0, color.Gray{Y: 0})
	g.SetGray(1, 0, color.Gray{Y: 255})

	b := Convert(g, DepthBinary).(*Binary)
	if !b.Ink(0, 0) || b.Ink(1, 0) {
		t.Fatalf("Convert() ink = [%v %v], want [true false]", b.Ink(0, 0), b.Ink(1, 0))
	}
}
