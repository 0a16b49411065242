// internal/raster/status.go
package raster

import (
	"errors"
	"fmt"
)

// StatusLength is the size of a status reply
const StatusLength = 32

var ErrInvalidStatus = errors.New("invalid status reply")

// StatusType tells why the printer sent a status reply
type StatusType uint8

const (
	StatusReply         StatusType = 0x00
	StatusPrintingDone  StatusType = 0x01
	StatusErrorOccurred StatusType = 0x02
	StatusTurnedOff     StatusType = 0x04
	StatusNotification  StatusType = 0x05
	StatusPhaseChange   StatusType = 0x06
)

func (s StatusType) String() string {
	switch s {
	case StatusReply:
		return "reply"
	case StatusPrintingDone:
		return "printing_completed"
	case StatusErrorOccurred:
		return "error_occurred"
	case StatusTurnedOff:
		return "turned_off"
	case StatusNotification:
		return "notification"
	case StatusPhaseChange:
		return "phase_change"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(s))
	}
}

// PhaseType is the printer's current phase
type PhaseType uint8

const (
	PhaseReceiving PhaseType = 0x00
	PhasePrinting  PhaseType = 0x01
)

var errorInfo1 = []struct {
	bit  byte
	name string
}{
	{0x01, "no media"},
	{0x02, "end of media"},
	{0x04, "cutter jam"},
	{0x08, "weak batteries"},
	{0x10, "printer in use"},
	{0x20, "printer turned off"},
	{0x40, "high-voltage adapter"},
	{0x80, "fan motor error"},
}

var errorInfo2 = []struct {
	bit  byte
	name string
}{
	{0x01, "replace media"},
	{0x02, "expansion buffer full"},
	{0x04, "communication error"},
	{0x08, "communication buffer full"},
	{0x10, "cover open"},
	{0x20, "overheating"},
	{0x40, "media cannot be fed"},
	{0x80, "system error"},
}

// Status is a decoded status reply
type Status struct {
	ModelCode     byte       `json:"model_code"`
	Errors        []string   `json:"errors,omitempty"`
	MediaWidthMM  int        `json:"media_width_mm"`
	MediaType     MediaType  `json:"media_type"`
	MediaLengthMM int        `json:"media_length_mm"`
	Type          StatusType `json:"-"`
	TypeName      string     `json:"status_type"`
	Phase         PhaseType  `json:"phase"`
	Notification  byte       `json:"notification"`
}

// Ready reports a printer with no error bits that is waiting for data
func (s *Status) Ready() bool {
	return len(s.Errors) == 0 && s.Phase == PhaseReceiving && s.Type != StatusErrorOccurred
}

// ParseStatus decodes the 32-byte reply to a status request
func ParseStatus(data []byte) (*Status, error) {
	if len(data) != StatusLength {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidStatus, len(data), StatusLength)
	}
	if data[0] != 0x80 || data[1] != 0x20 || data[2] != 'B' {
		return nil, fmt.Errorf("%w: bad header % x", ErrInvalidStatus, data[:3])
	}

	s := &Status{
		ModelCode:     data[4],
		MediaWidthMM:  int(data[10]),
		MediaType:     MediaType(data[11]),
		MediaLengthMM: int(data[17]),
		Type:          StatusType(data[18]),
		Phase:         PhaseType(data[19]),
		Notification:  data[22],
	}
	s.TypeName = s.Type.String()

	for _, e := range errorInfo1 {
		if data[8]&e.bit != 0 {
			s.Errors = append(s.Errors, e.name)
		}
	}
	for _, e := range errorInfo2 {
		if data[9]&e.bit != 0 {
			s.Errors = append(s.Errors, e.name)
		}
	}
	return s, nil
}
