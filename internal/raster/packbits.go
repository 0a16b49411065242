// internal/raster/packbits.go
package raster

import "errors"

// ErrPackBitsTruncated is returned when a PackBits stream ends mid-record
var ErrPackBitsTruncated = errors.New("packbits: truncated input")

const maxPackBitsRun = 127

// PackBits compresses data with the PackBits run-length scheme used by
// the raster row commands. A literal record is a header n (0..127) followed
// by n+1 bytes. A run record is a header 257-n (n = 2..128) followed by the
// repeated byte.
func PackBits(data []byte) []byte {
	switch len(data) {
	case 0:
		return []byte{}
	case 1:
		return []byte{0x00, data[0]}
	}

	out := make([]byte, 0, len(data)+len(data)/128+1)
	literal := make([]byte, 0, maxPackBitsRun)
	inRun := false
	repeat := 0

	flushLiteral := func() {
		if len(literal) == 0 {
			return
		}
		out = append(out, byte(len(literal)-1))
		out = append(out, literal...)
		literal = literal[:0]
	}
	flushRun := func(b byte) {
		out = append(out, byte(256-(repeat-1)), b)
	}

	pos := 0
	for ; pos < len(data)-1; pos++ {
		cur := data[pos]
		if cur == data[pos+1] {
			if !inRun {
				flushLiteral()
				inRun = true
				repeat = 1
				continue
			}
			if repeat == maxPackBitsRun {
				flushRun(cur)
				repeat = 0
			}
			repeat++
			continue
		}

		if inRun {
			repeat++
			flushRun(cur)
			inRun = false
			repeat = 0
			continue
		}
		if len(literal) == maxPackBitsRun {
			flushLiteral()
		}
		literal = append(literal, cur)
	}

	if inRun {
		repeat++
		flushRun(data[pos])
	} else {
		literal = append(literal, data[pos])
		flushLiteral()
	}
	return out
}

// UnpackBits reverses PackBits
func UnpackBits(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	for i := 0; i < len(data); {
		header := int8(data[i])
		i++
		switch {
		case header >= 0:
			n := int(header) + 1
			if i+n > len(data) {
				return nil, ErrPackBitsTruncated
			}
			out = append(out, data[i:i+n]...)
			i += n
		case header != -128:
			if i >= len(data) {
				return nil, ErrPackBitsTruncated
			}
			for n := 1 - int(header); n > 0; n-- {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out, nil
}
