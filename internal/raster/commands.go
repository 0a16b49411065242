// internal/raster/commands.go
package raster

// RASTER_COMMANDS contains the Brother QL / PT raster command opcodes
var RASTER_COMMANDS = struct {
	// Job control
	INITIALIZE     []byte
	STATUS_REQUEST []byte
	SWITCH_MODE    []byte

	// Page setup
	MEDIA_QUALITY []byte // + flags, type, width, length, rows(4), page, 0
	AUTOCUT       []byte // + flags
	CUT_EVERY     []byte // + n
	EXPANDED_MODE []byte // + flags
	MARGINS       []byte // + dots(2)
	COMPRESSION   []byte // + mode

	// Raster rows
	RASTER_ROW       []byte // + length, row
	RASTER_ROW_BLACK []byte // + length, row
	RASTER_ROW_RED   []byte // + length, row
	RASTER_ROW_TAPE  []byte // + length(2), row

	// Printing
	PRINT      []byte
	PRINT_LAST []byte
}{
	INITIALIZE:     []byte{0x1B, 0x40},             // ESC @
	STATUS_REQUEST: []byte{0x1B, 0x69, 0x53},       // ESC i S
	SWITCH_MODE:    []byte{0x1B, 0x69, 0x61, 0x01}, // ESC i a 1 (raster)

	MEDIA_QUALITY: []byte{0x1B, 0x69, 0x7A}, // ESC i z
	AUTOCUT:       []byte{0x1B, 0x69, 0x4D}, // ESC i M
	CUT_EVERY:     []byte{0x1B, 0x69, 0x41}, // ESC i A
	EXPANDED_MODE: []byte{0x1B, 0x69, 0x4B}, // ESC i K
	MARGINS:       []byte{0x1B, 0x69, 0x64}, // ESC i d
	COMPRESSION:   []byte{0x4D},             // M

	RASTER_ROW:       []byte{0x67, 0x00}, // g
	RASTER_ROW_BLACK: []byte{0x77, 0x01}, // w 1
	RASTER_ROW_RED:   []byte{0x77, 0x02}, // w 2
	RASTER_ROW_TAPE:  []byte{0x47},       // G

	PRINT:      []byte{0x0C}, // FF
	PRINT_LAST: []byte{0x1A}, // SUB
}

// InvalidateLength is the number of zero bytes that flush the command buffer
const InvalidateLength = 200

// DefaultMarginDots is the feed margin used when none is configured
const DefaultMarginDots = 0x23

// MediaType is the media kind sent in the media and quality command
type MediaType uint8

const (
	MediaTapeEndless MediaType = 0x00
	MediaEndless     MediaType = 0x0A
	MediaDieCut      MediaType = 0x0B
)

// Media and quality flag bits
const (
	flagValid   = 0x80
	flagType    = 0x02
	flagWidth   = 0x04
	flagLength  = 0x08
	flagQuality = 0x40
)

// Expanded mode flag bits
const (
	expandedTwoColor = 0x01
	expandedCutAtEnd = 0x08
	expanded600DPI   = 0x40
)

const autocutEnabled = 0x40
