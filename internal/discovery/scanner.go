// internal/discovery/scanner.go
package discovery

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"label-service/internal/model"
)

// DeviceScanner finds printers reachable over one kind of connection
type DeviceScanner interface {
	Scan(ctx context.Context) ([]*DiscoveredDevice, error)
	GetScannerType() string
	IsAvailable() bool
}

// DiscoveredDevice represents a printer found by a scanner
type DiscoveredDevice struct {
	ConnectionType model.ConnectionType   `json:"connection_type"`
	ConnectionInfo map[string]interface{} `json:"connection_info"`
	URI            string                 `json:"uri"`
	Model          string                 `json:"model"`
	Confidence     float64                `json:"confidence"` // 0.0-1.0
	SerialNumber   string                 `json:"serial_number,omitempty"`
	Location       string                 `json:"location,omitempty"`
}

// ScannerManager runs the registered scanners
type ScannerManager struct {
	scanners map[string]DeviceScanner
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewScannerManager creates a new scanner manager
func NewScannerManager(logger *zap.Logger) *ScannerManager {
	return &ScannerManager{
		scanners: make(map[string]DeviceScanner),
		logger:   logger,
	}
}

// RegisterScanner registers a device scanner
func (sm *ScannerManager) RegisterScanner(scanner DeviceScanner) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	scannerType := scanner.GetScannerType()
	sm.scanners[scannerType] = scanner
	sm.logger.Info("Scanner registered", zap.String("type", scannerType))
}

// ScanAll runs every available scanner and returns the devices sorted by
// confidence. A failing scanner is logged and skipped.
func (sm *ScannerManager) ScanAll(ctx context.Context) ([]*DiscoveredDevice, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	allDevices := []*DiscoveredDevice{}
	for _, scannerType := range sm.sortedTypes() {
		scanner := sm.scanners[scannerType]
		if !scanner.IsAvailable() {
			sm.logger.Debug("Scanner not available, skipping", zap.String("type", scannerType))
			continue
		}

		devices, err := scanner.Scan(ctx)
		if err != nil {
			sm.logger.Error("Scanner failed", zap.String("type", scannerType), zap.Error(err))
			continue
		}

		allDevices = append(allDevices, devices...)
		sm.logger.Info("Scanner completed",
			zap.String("type", scannerType),
			zap.Int("devices_found", len(devices)),
		)
	}

	SortByConfidence(allDevices)
	return allDevices, nil
}

// ScanByType runs one scanner
func (sm *ScannerManager) ScanByType(ctx context.Context, scannerType string) ([]*DiscoveredDevice, error) {
	sm.mu.RLock()
	scanner, exists := sm.scanners[scannerType]
	sm.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("scanner type not found: %s", scannerType)
	}
	if !scanner.IsAvailable() {
		return nil, fmt.Errorf("scanner not available: %s", scannerType)
	}

	devices, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	SortByConfidence(devices)
	return devices, nil
}

// GetAvailableScanners returns the available scanner types in name order
func (sm *ScannerManager) GetAvailableScanners() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	available := []string{}
	for _, scannerType := range sm.sortedTypes() {
		if sm.scanners[scannerType].IsAvailable() {
			available = append(available, scannerType)
		}
	}
	return available
}

func (sm *ScannerManager) sortedTypes() []string {
	types := make([]string, 0, len(sm.scanners))
	for t := range sm.scanners {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// SortByConfidence orders devices from the most to the least certain match
func SortByConfidence(devices []*DiscoveredDevice) {
	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Confidence > devices[j].Confidence
	})
}
