// internal/protocol/connection.go
package protocol

import "time"

// Brother USB identifiers and raster endpoints
const (
	BrotherVendorID = 0x04F9
	DefaultTCPPort  = 9100

	usbOutEndpoint = 2
	usbInEndpoint  = 1
)

// SerialConfig represents serial connection configuration
type SerialConfig struct {
	Port     string        `json:"port"`
	BaudRate int           `json:"baud_rate"`
	DataBits int           `json:"data_bits"`
	StopBits int           `json:"stop_bits"`
	Parity   string        `json:"parity"`
	Timeout  time.Duration `json:"timeout"`
}

// USBConfig represents USB connection configuration
type USBConfig struct {
	VendorID     string        `json:"vendor_id"`
	ProductID    string        `json:"product_id"`
	OutEndpoint  int           `json:"out_endpoint"`
	InEndpoint   int           `json:"in_endpoint"`
	SerialNumber string        `json:"serial_number"`
	Timeout      time.Duration `json:"timeout"`
}

// TCPConfig represents TCP connection configuration
type TCPConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	KeepAlive    bool          `json:"keep_alive"`
	Timeout      time.Duration `json:"timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
}

// FileConfig represents a device node or plain output file
type FileConfig struct {
	Path string `json:"path"`
}

// Timeouts groups the per-connection deadlines from the printer config
type Timeouts struct {
	Connect time.Duration
	Write   time.Duration
	Read    time.Duration
}
