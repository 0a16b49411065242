// internal/protocol/usb_connection.go
package protocol

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"label-service/internal/model"
	"label-service/internal/raster"
)

// USBConnection implements DeviceProtocol over libusb bulk endpoints
type USBConnection struct {
	config   *USBConfig
	ctx      *gousb.Context
	device   *gousb.Device
	release  func()
	outEndpt *gousb.OutEndpoint
	inEndpt  *gousb.InEndpoint
	logger   *zap.Logger
	mutex    sync.RWMutex
	isOpen   bool
	stats    ProtocolStats
}

// NewUSBConnection creates a new USB connection
func NewUSBConnection(config *USBConfig, logger *zap.Logger) DeviceProtocol {
	return &USBConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "usb"),
			zap.String("vendor_id", config.VendorID),
			zap.String("product_id", config.ProductID),
		),
	}
}

// Open opens the USB connection
func (uc *USBConnection) Open(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.isOpen {
		return nil
	}

	uc.logger.Info("Opening USB connection", zap.String("serial_number", uc.config.SerialNumber))

	vendorID, err := ParseHexID(uc.config.VendorID)
	if err != nil {
		return fmt.Errorf("invalid vendor ID: %w", err)
	}
	productID, err := ParseHexID(uc.config.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID: %w", err)
	}

	uc.ctx = gousb.NewContext()

	device, err := uc.findAndOpenDevice(vendorID, productID)
	if err != nil {
		uc.ctx.Close()
		uc.ctx = nil
		return fmt.Errorf("failed to find USB device: %w", err)
	}

	// the kernel printer driver holds the interface otherwise
	if err := device.SetAutoDetach(true); err != nil {
		uc.logger.Warn("Failed to enable kernel driver auto detach", zap.Error(err))
	}

	intf, done, err := device.DefaultInterface()
	if err != nil {
		device.Close()
		uc.ctx.Close()
		uc.ctx = nil
		return fmt.Errorf("failed to claim interface: %w", err)
	}

	outEndpt, err := intf.OutEndpoint(uc.config.OutEndpoint)
	if err != nil {
		done()
		device.Close()
		uc.ctx.Close()
		uc.ctx = nil
		return fmt.Errorf("failed to get out endpoint: %w", err)
	}

	inEndpt, err := intf.InEndpoint(uc.config.InEndpoint)
	if err != nil {
		uc.logger.Warn("No in endpoint found, status replies unavailable", zap.Error(err))
	}

	uc.device = device
	uc.release = done
	uc.outEndpt = outEndpt
	uc.inEndpt = inEndpt
	uc.isOpen = true
	uc.stats.IsConnected = true
	uc.stats.LastActivity = time.Now()

	uc.logger.Info("USB connection opened successfully")
	return nil
}

// Close closes the USB connection
func (uc *USBConnection) Close() error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen {
		return nil
	}

	if uc.release != nil {
		uc.release()
		uc.release = nil
	}
	if uc.device != nil {
		uc.device.Close()
		uc.device = nil
	}
	if uc.ctx != nil {
		uc.ctx.Close()
		uc.ctx = nil
	}

	uc.outEndpt = nil
	uc.inEndpt = nil
	uc.isOpen = false
	uc.stats.IsConnected = false

	uc.logger.Info("USB connection closed successfully")
	return nil
}

// IsOpen returns whether the connection is open
func (uc *USBConnection) IsOpen() bool {
	uc.mutex.RLock()
	defer uc.mutex.RUnlock()
	return uc.isOpen && uc.device != nil && uc.outEndpt != nil
}

// Write writes data to the bulk out endpoint
func (uc *USBConnection) Write(ctx context.Context, data []byte) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen || uc.outEndpt == nil {
		return fmt.Errorf("usb: %w", ErrNotOpen)
	}

	writeCtx := ctx
	if uc.config.Timeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(ctx, uc.config.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	n, err := uc.outEndpt.WriteContext(writeCtx, data)
	if err != nil {
		uc.stats.ErrorCount++
		uc.logger.Error("USB write failed", zap.Error(err))
		return fmt.Errorf("failed to write to USB device: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	uc.stats.recordWrite(n, time.Since(startTime))
	uc.logger.Debug("USB write completed", zap.Int("bytes", n))
	return nil
}

// Read reads data from the bulk in endpoint
func (uc *USBConnection) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if !uc.isOpen || uc.inEndpt == nil {
		return nil, fmt.Errorf("usb: %w or no in endpoint", ErrNotOpen)
	}

	readCtx := ctx
	if uc.config.Timeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, uc.config.Timeout)
		defer cancel()
	}

	buffer := make([]byte, maxBytes)
	n, err := uc.inEndpt.ReadContext(readCtx, buffer)
	if err != nil && n == 0 {
		uc.stats.ErrorCount++
		return nil, fmt.Errorf("failed to read from USB device: %w", err)
	}

	uc.stats.recordRead(n)
	return buffer[:n], nil
}

// GetProtocolType returns the protocol type
func (uc *USBConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeUSB
}

// Stats returns a snapshot of the connection statistics
func (uc *USBConnection) Stats() ProtocolStats {
	uc.mutex.RLock()
	defer uc.mutex.RUnlock()
	return uc.stats
}

// Ping sends a status request
func (uc *USBConnection) Ping(ctx context.Context) error {
	if !uc.IsOpen() {
		return fmt.Errorf("usb: %w", ErrNotOpen)
	}
	return uc.Write(ctx, raster.RASTER_COMMANDS.STATUS_REQUEST)
}

// ParseHexID parses a USB id written as 0x04f9 or 04f9
func ParseHexID(hexStr string) (gousb.ID, error) {
	hexStr = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(hexStr)), "0x")

	id, err := strconv.ParseUint(hexStr, 16, 16)
	if err != nil {
		return 0, err
	}
	return gousb.ID(id), nil
}

// findAndOpenDevice opens the first matching device, narrowed by serial
// number when one is configured
func (uc *USBConnection) findAndOpenDevice(vendorID, productID gousb.ID) (*gousb.Device, error) {
	devices, err := uc.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vendorID && desc.Product == productID
	})
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	var chosen *gousb.Device
	for _, d := range devices {
		if chosen == nil && uc.matchesSerial(d) {
			chosen = d
			continue
		}
		d.Close()
	}

	if chosen == nil {
		return nil, fmt.Errorf("USB device not found (VID: %04X, PID: %04X)", vendorID, productID)
	}
	if len(devices) > 1 && uc.config.SerialNumber == "" {
		uc.logger.Warn("Multiple matching USB devices found, using first one")
	}
	return chosen, nil
}

func (uc *USBConnection) matchesSerial(d *gousb.Device) bool {
	if uc.config.SerialNumber == "" {
		return true
	}
	serialNumber, err := d.SerialNumber()
	if err != nil {
		uc.logger.Debug("Failed to read USB serial number", zap.Error(err))
		return false
	}
	return strings.EqualFold(strings.TrimSpace(serialNumber), uc.config.SerialNumber)
}
