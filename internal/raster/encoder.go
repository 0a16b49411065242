// internal/raster/encoder.go
package raster

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"label-service/internal/bitmap"
	"label-service/internal/catalog"
)

// Media describes the loaded media. Nil fields are sent as unset.
type Media struct {
	Type   *MediaType
	Width  *int
	Length *int
}

// Encoder builds the instruction stream for one print job. Each Add method
// appends to the stream in call order; the caller is responsible for
// issuing commands in the order the printer expects. Capability-gated
// commands return an *UnsupportedCommandError and append nothing when the
// model lacks the feature. Finish hands over the bytes and closes the
// encoder for good.
type Encoder struct {
	model catalog.PrinterModel
	buf   bytes.Buffer

	pageNumber  int
	compression bool
	twoColor    bool
	dpi600      bool
	cutAtEnd    bool
	finished    bool
}

// NewEncoder returns an empty encoder for the given model
func NewEncoder(model catalog.PrinterModel) *Encoder {
	return &Encoder{
		model:    model,
		cutAtEnd: true,
	}
}

// Model returns the model the encoder targets
func (e *Encoder) Model() catalog.PrinterModel {
	return e.model
}

// PageNumber returns the zero-based index of the page being built
func (e *Encoder) PageNumber() int {
	return e.pageNumber
}

// Len returns the number of bytes built so far
func (e *Encoder) Len() int {
	return e.buf.Len()
}

func (e *Encoder) check() error {
	if e.finished {
		return ErrJobFinished
	}
	return nil
}

func (e *Encoder) unsupported(command, reason string) error {
	return &UnsupportedCommandError{Command: command, Model: e.model.Name, Reason: reason}
}

func (e *Encoder) write(parts ...[]byte) {
	for _, p := range parts {
		e.buf.Write(p)
	}
}

// AddSwitchMode switches the printer into raster mode
func (e *Encoder) AddSwitchMode() error {
	if err := e.check(); err != nil {
		return err
	}
	if !e.model.HasModeSetting {
		return e.unsupported("switch mode", "")
	}
	e.write(RASTER_COMMANDS.SWITCH_MODE)
	return nil
}

// AddInvalidate clears whatever is left in the printer's command buffer
func (e *Encoder) AddInvalidate() error {
	if err := e.check(); err != nil {
		return err
	}
	e.write(make([]byte, InvalidateLength))
	return nil
}

// AddInitialize resets the printer and the page counter
func (e *Encoder) AddInitialize() error {
	if err := e.check(); err != nil {
		return err
	}
	e.pageNumber = 0
	e.write(RASTER_COMMANDS.INITIALIZE)
	return nil
}

// AddStatusRequest asks the printer to send its 32-byte status reply
func (e *Encoder) AddStatusRequest() error {
	if err := e.check(); err != nil {
		return err
	}
	e.write(RASTER_COMMANDS.STATUS_REQUEST)
	return nil
}

// AddMediaAndQuality describes the media, the print quality and the number
// of raster rows that follow.
func (e *Encoder) AddMediaAndQuality(media Media, highQuality bool, rows int) error {
	if err := e.check(); err != nil {
		return err
	}

	flags := byte(flagValid)
	values := [3]byte{}
	if media.Type != nil {
		flags |= flagType
		values[0] = byte(*media.Type)
	}
	if media.Width != nil {
		flags |= flagWidth
		values[1] = byte(*media.Width & 0xFF)
	}
	if media.Length != nil {
		flags |= flagLength
		values[2] = byte(*media.Length & 0xFF)
	}
	if highQuality {
		flags |= flagQuality
	}

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(rows))

	page := byte(0)
	if e.pageNumber != 0 {
		page = 1
	}

	e.write(RASTER_COMMANDS.MEDIA_QUALITY, []byte{flags}, values[:], count[:], []byte{page, 0x00})
	return nil
}

// AddAutocut toggles cutting after labels
func (e *Encoder) AddAutocut(enabled bool) error {
	if err := e.check(); err != nil {
		return err
	}
	if !e.model.HasCutting {
		return e.unsupported("autocut", "")
	}
	var flags byte
	if enabled {
		flags = autocutEnabled
	}
	e.write(RASTER_COMMANDS.AUTOCUT, []byte{flags})
	return nil
}

// AddCutEvery sets how many labels are printed between cuts
func (e *Encoder) AddCutEvery(n int) error {
	if err := e.check(); err != nil {
		return err
	}
	if !e.model.HasCutting {
		return e.unsupported("cut every", "")
	}
	e.write(RASTER_COMMANDS.CUT_EVERY, []byte{byte(n & 0xFF)})
	return nil
}

// AddExpandedMode sets cut-at-end, 600 dpi and two-color printing
func (e *Encoder) AddExpandedMode(cutAtEnd, dpi600, twoColor bool) error {
	if err := e.check(); err != nil {
		return err
	}
	if !e.model.HasExpandedMode {
		return e.unsupported("expanded mode", "")
	}
	if twoColor && !e.model.HasTwoColor {
		return e.unsupported("expanded mode", "two-color printing requested")
	}

	var flags byte
	if twoColor {
		flags |= expandedTwoColor
	}
	if cutAtEnd {
		flags |= expandedCutAtEnd
	}
	if dpi600 {
		flags |= expanded600DPI
	}

	e.cutAtEnd = cutAtEnd
	e.dpi600 = dpi600
	e.twoColor = twoColor
	e.write(RASTER_COMMANDS.EXPANDED_MODE, []byte{flags})
	return nil
}

// AddMargins sets the feed margin in dots
func (e *Encoder) AddMargins(dots int) error {
	if err := e.check(); err != nil {
		return err
	}
	var v [2]byte
	binary.LittleEndian.PutUint16(v[:], uint16(dots))
	e.write(RASTER_COMMANDS.MARGINS, v[:])
	return nil
}

// AddCompression toggles PackBits compression of the following raster rows
func (e *Encoder) AddCompression(enabled bool) error {
	if err := e.check(); err != nil {
		return err
	}
	if !e.model.HasCompression {
		return e.unsupported("compression", "")
	}
	var mode byte
	if enabled {
		mode = 0x02
	}
	e.compression = enabled
	e.write(RASTER_COMMANDS.COMPRESSION, []byte{mode})
	return nil
}

// AddRaster appends the rows of one or two ink layers. Every layer must be
// exactly as wide as the print head. With two layers the black and red
// rows are interleaved row by row.
func (e *Encoder) AddRaster(black *bitmap.Binary, red *bitmap.Binary) error {
	if err := e.check(); err != nil {
		return err
	}

	want := e.model.PixelWidth()
	if black.Width() != want {
		return fmt.Errorf("%w: %d, expected %d", ErrWidthMismatch, black.Width(), want)
	}
	layers := []*bitmap.Binary{black}
	if red != nil {
		if red.Width() != black.Width() || red.Height() != black.Height() {
			return fmt.Errorf("%w: %dx%d vs %dx%d", ErrLayerMismatch,
				black.Width(), black.Height(), red.Width(), red.Height())
		}
		layers = append(layers, red)
	}

	frames := make([][]byte, len(layers))
	for i, l := range layers {
		frames[i] = PackRows(l)
	}

	rowLen := e.model.BytesPerRow
	for start := 0; start+rowLen <= len(frames[0]); start += rowLen {
		for i, frame := range frames {
			row := frame[start : start+rowLen]
			if e.compression {
				row = PackBits(row)
			}
			e.writeRowHeader(i, len(layers) > 1, len(row))
			e.buf.Write(row)
		}
	}
	return nil
}

func (e *Encoder) writeRowHeader(layer int, twoLayers bool, length int) {
	switch {
	case e.model.IsPTouch():
		e.write(RASTER_COMMANDS.RASTER_ROW_TAPE, []byte{byte(length % 256), byte(length / 256)})
		return
	case twoLayers && layer == 0:
		e.write(RASTER_COMMANDS.RASTER_ROW_BLACK)
	case twoLayers:
		e.write(RASTER_COMMANDS.RASTER_ROW_RED)
	default:
		e.write(RASTER_COMMANDS.RASTER_ROW)
	}
	e.buf.WriteByte(byte(length))
}

// AddPrint ends the current page. The last page of a job ends with the
// end-of-job terminator, earlier pages with a form feed.
func (e *Encoder) AddPrint(lastPage bool) error {
	if err := e.check(); err != nil {
		return err
	}
	if lastPage {
		e.write(RASTER_COMMANDS.PRINT_LAST)
	} else {
		e.write(RASTER_COMMANDS.PRINT)
	}
	e.pageNumber++
	return nil
}

// Finish returns the instruction stream. It can be called once; any later
// call on the encoder fails with ErrJobFinished.
func (e *Encoder) Finish() ([]byte, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	e.finished = true
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	e.buf.Reset()
	return out, nil
}

// PackRows mirrors a bitmap horizontally, since the head prints right to
// left, and packs it eight pixels per byte with the leftmost pixel in the
// most significant bit.
func PackRows(b *bitmap.Binary) []byte {
	w, h := b.Width(), b.Height()
	rowBytes := (w + 7) / 8
	out := make([]byte, rowBytes*h)
	minX, minY := b.Rect.Min.X, b.Rect.Min.Y
	for y := 0; y < h; y++ {
		row := out[y*rowBytes : (y+1)*rowBytes]
		for x := 0; x < w; x++ {
			if b.Ink(minX+w-1-x, minY+y) {
				row[x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return out
}
