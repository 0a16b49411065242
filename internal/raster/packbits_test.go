package raster

import (
	"bytes"
	"errors"
	"testing"
)

func TestPackBitsKnownOutput(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"empty", []byte{}, []byte{}},
		{"single", []byte{0x42}, []byte{0x00, 0x42}},
		{"zero row", make([]byte, 90), []byte{0xA7, 0x00}},
		{"literal", []byte{1, 2, 3}, []byte{0x02, 1, 2, 3}},
		{"run then literal", []byte{7, 7, 7, 1, 2}, []byte{0xFE, 7, 0x01, 1, 2}},
		{
			// the classic Apple example
			"mixed",
			[]byte{0xAA, 0xAA, 0xAA, 0x80, 0x00, 0x2A, 0xAA, 0xAA, 0xAA, 0xAA, 0x80, 0x00, 0x2A, 0x22, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA, 0xAA},
			[]byte{0xFE, 0xAA, 0x02, 0x80, 0x00, 0x2A, 0xFD, 0xAA, 0x03, 0x80, 0x00, 0x2A, 0x22, 0xF7, 0xAA},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackBits(tt.in); !bytes.Equal(got, tt.want) {
				t.Errorf("PackBits() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestPackBitsRoundTrip(t *testing.T) {
	alternating := make([]byte, 162)
	for i := range alternating {
		if i%2 == 0 {
			alternating[i] = 0xFF
		}
	}
	counting := make([]byte, 300)
	for i := range counting {
		counting[i] = byte(i)
	}
	longRun := bytes.Repeat([]byte{0x55}, 300)
	mixed := append(append(append([]byte{}, counting[:130]...), longRun[:129]...), 1, 2, 2)

	inputs := map[string][]byte{
		"all zero":    make([]byte, 90),
		"all ones":    bytes.Repeat([]byte{0xFF}, 90),
		"alternating": alternating,
		"counting":    counting,
		"long run":    longRun,
		"mixed":       mixed,
		"pair":        {9, 9},
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			out, err := UnpackBits(PackBits(in))
			if err != nil {
				t.Fatalf("UnpackBits() error = %v", err)
			}
			if !bytes.Equal(out, in) {
				t.Fatalf("round trip mismatch:\n got % x\nwant % x", out, in)
			}
		})
	}
}

func TestUnpackBitsTruncated(t *testing.T) {
	for _, in := range [][]byte{{0x05, 1, 2}, {0xFE}} {
		if _, err := UnpackBits(in); !errors.Is(err, ErrPackBitsTruncated) {
			t.Errorf("UnpackBits(% x) error = %v, want ErrPackBitsTruncated", in, err)
		}
	}
}
