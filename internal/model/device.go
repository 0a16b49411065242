// internal/model/device.go
package model

// ConnectionType represents how the printer is reached
type ConnectionType string

const (
	ConnectionTypeSerial ConnectionType = "SERIAL"
	ConnectionTypeUSB    ConnectionType = "USB"
	ConnectionTypeTCP    ConnectionType = "TCP"
	ConnectionTypeFile   ConnectionType = "FILE"
)

// PrinterState represents the last known state of a printer
type PrinterState string

const (
	PrinterStateReady   PrinterState = "READY"
	PrinterStateBusy    PrinterState = "BUSY"
	PrinterStateError   PrinterState = "ERROR"
	PrinterStateOffline PrinterState = "OFFLINE"
)

// PrinterInfo describes a configured printer and what it last reported
type PrinterInfo struct {
	Model          string         `json:"model"`
	URI            string         `json:"uri"`
	ConnectionType ConnectionType `json:"connection_type"`
	State          PrinterState   `json:"state"`
	MediaWidthMM   int            `json:"media_width_mm,omitempty"`
	MediaLengthMM  int            `json:"media_length_mm,omitempty"`
	Errors         []string       `json:"errors,omitempty"`
}

// IsReady reports whether the printer can take a job
func (p *PrinterInfo) IsReady() bool {
	return p.State == PrinterStateReady
}
