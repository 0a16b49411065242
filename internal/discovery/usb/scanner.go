// internal/discovery/usb/scanner.go
package usb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"label-service/internal/discovery"
	"label-service/internal/model"
)

// Scanner finds Brother printers on the USB bus
type Scanner struct {
	logger       *zap.Logger
	knownDevices *DeviceDatabase
	timeout      time.Duration
}

// NewScanner creates a new USB scanner
func NewScanner(logger *zap.Logger, timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scanner{
		logger:       logger.With(zap.String("scanner", "usb")),
		knownDevices: NewDeviceDatabase(),
		timeout:      timeout,
	}
}

// GetScannerType returns scanner type identifier
func (s *Scanner) GetScannerType() string {
	return "usb"
}

// IsAvailable checks that libusb can enumerate the bus
func (s *Scanner) IsAvailable() bool {
	ctx := gousb.NewContext()
	defer ctx.Close()

	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return false
	})
	if err != nil {
		s.logger.Debug("USB subsystem not accessible", zap.Error(err))
		return false
	}
	return true
}

// Scan enumerates Brother devices and identifies their models
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	startTime := time.Now()
	s.logger.Info("Starting USB device scan")

	scanCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	usbCtx := gousb.NewContext()
	defer func() {
		if err := usbCtx.Close(); err != nil {
			s.logger.Warn("Failed to close USB context", zap.Error(err))
		}
	}()

	devices, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return s.knownDevices.IsKnownVendor(desc.Vendor)
	})
	defer s.closeAllDevices(devices)
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	discovered := []*discovery.DiscoveredDevice{}
	for _, device := range devices {
		if err := scanCtx.Err(); err != nil {
			return discovered, err
		}
		if d := s.processDevice(device); d != nil {
			discovered = append(discovered, d)
		}
	}

	s.logger.Info("USB scan completed",
		zap.Int("devices_found", len(discovered)),
		zap.Duration("scan_duration", time.Since(startTime)),
	)
	return discovered, nil
}

// processDevice identifies one opened device
func (s *Scanner) processDevice(device *gousb.Device) *discovery.DiscoveredDevice {
	desc := device.Desc
	if desc == nil {
		return nil
	}

	s.logger.Debug("Processing USB device",
		zap.String("vendor_id", fmt.Sprintf("0x%04X", desc.Vendor)),
		zap.String("product_id", fmt.Sprintf("0x%04X", desc.Product)),
	)

	modelName := ""
	confidence := 0.5
	if info := s.knownDevices.GetProductInfo(desc.Product); info != nil {
		modelName = info.Model
		confidence = info.Confidence
	} else if product, err := device.Product(); err == nil {
		modelName = strings.TrimSpace(product)
	}

	serialNumber := s.getSerialNumber(device)
	return &discovery.DiscoveredDevice{
		ConnectionType: model.ConnectionTypeUSB,
		ConnectionInfo: map[string]interface{}{
			"vendor_id":  fmt.Sprintf("0x%04x", desc.Vendor),
			"product_id": fmt.Sprintf("0x%04x", desc.Product),
			"bus":        desc.Bus,
			"address":    desc.Address,
		},
		URI:          BuildURI(desc.Vendor, desc.Product, serialNumber),
		Model:        modelName,
		Confidence:   confidence,
		SerialNumber: serialNumber,
		Location:     fmt.Sprintf("USB-Bus%d-Port%d", desc.Bus, desc.Address),
	}
}

// BuildURI formats the printer URI of a USB device
func BuildURI(vendorID, productID gousb.ID, serialNumber string) string {
	uri := fmt.Sprintf("usb://0x%04x:0x%04x", uint16(vendorID), uint16(productID))
	if serialNumber != "" {
		uri += "/" + serialNumber
	}
	return uri
}

func (s *Scanner) getSerialNumber(device *gousb.Device) string {
	serialNumber, err := device.SerialNumber()
	if err != nil {
		s.logger.Debug("Failed to read serial number", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(serialNumber)
}

// closeAllDevices closes every device opened during a scan
func (s *Scanner) closeAllDevices(devices []*gousb.Device) {
	for i, device := range devices {
		if device == nil {
			continue
		}
		if err := device.Close(); err != nil {
			s.logger.Warn("Failed to close USB device",
				zap.Int("device_index", i),
				zap.Error(err),
			)
		}
	}
}
