// internal/protocol/factory.go
package protocol

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"label-service/internal/model"
)

// ErrInvalidURI is returned for printer URIs that cannot be parsed or
// configured
var ErrInvalidURI = errors.New("invalid printer URI")

// CreateProtocol creates a protocol based on connection type and configuration
func CreateProtocol(connectionType model.ConnectionType, config map[string]interface{}, logger *zap.Logger) (DeviceProtocol, error) {
	if err := ValidateConfig(connectionType, config); err != nil {
		return nil, err
	}

	switch connectionType {
	case model.ConnectionTypeSerial:
		return createSerialProtocol(config, logger), nil
	case model.ConnectionTypeUSB:
		return createUSBProtocol(config, logger), nil
	case model.ConnectionTypeTCP:
		return createTCPProtocol(config, logger), nil
	case model.ConnectionTypeFile:
		return NewFileConnection(&FileConfig{Path: config["path"].(string)}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported protocol type: %s", connectionType)
	}
}

// FromURI parses a printer URI and creates its protocol with the given
// timeouts applied
func FromURI(uri string, timeouts Timeouts, logger *zap.Logger) (DeviceProtocol, error) {
	connectionType, config, err := ParseURI(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	config["timeout"] = timeouts.Connect
	config["read_timeout"] = timeouts.Read
	config["write_timeout"] = timeouts.Write

	conn, err := CreateProtocol(connectionType, config, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	return conn, nil
}

// createSerialProtocol creates a serial protocol
func createSerialProtocol(config map[string]interface{}, logger *zap.Logger) DeviceProtocol {
	serialConfig := &SerialConfig{
		Port:     config["port"].(string),
		BaudRate: 9600,
		DataBits: 8,
		StopBits: 1,
		Parity:   "none",
		Timeout:  5 * time.Second,
	}

	if v, ok := intValue(config["baud_rate"]); ok {
		serialConfig.BaudRate = v
	}
	if v, ok := intValue(config["data_bits"]); ok {
		serialConfig.DataBits = v
	}
	if v, ok := intValue(config["stop_bits"]); ok {
		serialConfig.StopBits = v
	}
	if parity, ok := config["parity"].(string); ok {
		serialConfig.Parity = parity
	}
	if v, ok := durationValue(config["read_timeout"]); ok {
		serialConfig.Timeout = v
	}

	logger.Info("Creating serial protocol",
		zap.String("port", serialConfig.Port),
		zap.Int("baud_rate", serialConfig.BaudRate),
	)

	return NewSerialConnection(serialConfig, logger)
}

// createUSBProtocol creates a USB protocol
func createUSBProtocol(config map[string]interface{}, logger *zap.Logger) DeviceProtocol {
	usbConfig := &USBConfig{
		VendorID:    config["vendor_id"].(string),
		ProductID:   config["product_id"].(string),
		OutEndpoint: usbOutEndpoint,
		InEndpoint:  usbInEndpoint,
		Timeout:     5 * time.Second,
	}

	if v, ok := intValue(config["out_endpoint"]); ok {
		usbConfig.OutEndpoint = v
	}
	if v, ok := intValue(config["in_endpoint"]); ok {
		usbConfig.InEndpoint = v
	}
	if serialNumber, ok := config["serial_number"].(string); ok {
		usbConfig.SerialNumber = serialNumber
	}
	if v, ok := durationValue(config["write_timeout"]); ok {
		usbConfig.Timeout = v
	}

	logger.Info("Creating USB protocol",
		zap.String("vendor_id", usbConfig.VendorID),
		zap.String("product_id", usbConfig.ProductID),
	)

	return NewUSBConnection(usbConfig, logger)
}

// createTCPProtocol creates a TCP protocol
func createTCPProtocol(config map[string]interface{}, logger *zap.Logger) DeviceProtocol {
	tcpConfig := &TCPConfig{
		Host:         config["host"].(string),
		Port:         DefaultTCPPort,
		KeepAlive:    true,
		Timeout:      10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if v, ok := intValue(config["port"]); ok {
		tcpConfig.Port = v
	}
	if keepAlive, ok := config["keep_alive"].(bool); ok {
		tcpConfig.KeepAlive = keepAlive
	}
	if v, ok := durationValue(config["timeout"]); ok {
		tcpConfig.Timeout = v
	}
	if v, ok := durationValue(config["read_timeout"]); ok {
		tcpConfig.ReadTimeout = v
	}
	if v, ok := durationValue(config["write_timeout"]); ok {
		tcpConfig.WriteTimeout = v
	}

	logger.Info("Creating TCP protocol",
		zap.String("host", tcpConfig.Host),
		zap.Int("port", tcpConfig.Port),
	)

	return NewTCPConnection(tcpConfig, logger)
}

// ValidateConfig validates configuration for a specific protocol type
func ValidateConfig(connectionType model.ConnectionType, config map[string]interface{}) error {
	switch connectionType {
	case model.ConnectionTypeSerial:
		return validateSerialConfig(config)
	case model.ConnectionTypeUSB:
		return validateUSBConfig(config)
	case model.ConnectionTypeTCP:
		return validateTCPConfig(config)
	case model.ConnectionTypeFile:
		if path, ok := config["path"].(string); !ok || path == "" {
			return fmt.Errorf("file path is required")
		}
		return nil
	default:
		return fmt.Errorf("unsupported connection type: %s", connectionType)
	}
}

// validateSerialConfig validates serial configuration
func validateSerialConfig(config map[string]interface{}) error {
	if port, ok := config["port"].(string); !ok || port == "" {
		return fmt.Errorf("serial port is required")
	}

	if raw, ok := config["baud_rate"]; ok {
		rate, ok := intValue(raw)
		if !ok {
			return fmt.Errorf("invalid baud_rate type")
		}

		validRates := []int{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}
		for _, validRate := range validRates {
			if rate == validRate {
				return nil
			}
		}
		return fmt.Errorf("invalid baud rate: %d", rate)
	}

	return nil
}

// validateUSBConfig validates USB configuration
func validateUSBConfig(config map[string]interface{}) error {
	vendorID, ok := config["vendor_id"].(string)
	if !ok {
		return fmt.Errorf("USB vendor_id is required")
	}
	if _, err := ParseHexID(vendorID); err != nil {
		return fmt.Errorf("invalid USB vendor_id %q", vendorID)
	}

	productID, ok := config["product_id"].(string)
	if !ok {
		return fmt.Errorf("USB product_id is required")
	}
	if _, err := ParseHexID(productID); err != nil {
		return fmt.Errorf("invalid USB product_id %q", productID)
	}

	return nil
}

// validateTCPConfig validates TCP configuration
func validateTCPConfig(config map[string]interface{}) error {
	if host, ok := config["host"].(string); !ok || host == "" {
		return fmt.Errorf("TCP host is required")
	}

	if raw, ok := config["port"]; ok {
		portNum, ok := intValue(raw)
		if !ok {
			return fmt.Errorf("invalid port type")
		}
		if portNum < 1 || portNum > 65535 {
			return fmt.Errorf("invalid port number: %d", portNum)
		}
	}

	return nil
}

// intValue accepts the numeric shapes that come out of JSON and YAML
func intValue(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// durationValue accepts durations and duration strings; zero means unset
func durationValue(v interface{}) (time.Duration, bool) {
	switch d := v.(type) {
	case time.Duration:
		return d, d > 0
	case string:
		dur, err := time.ParseDuration(d)
		return dur, err == nil && dur > 0
	default:
		return 0, false
	}
}
