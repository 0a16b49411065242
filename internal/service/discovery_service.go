// internal/service/discovery_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/config"
	"label-service/internal/discovery"
	"label-service/internal/discovery/serial"
	"label-service/internal/discovery/tcp"
	"label-service/internal/discovery/usb"
	"label-service/internal/utils"
)

// DiscoveredPrinter is a discovery result checked against the catalog
type DiscoveredPrinter struct {
	*discovery.DiscoveredDevice
	// Supported is true when the model is in the printer catalog
	Supported bool `json:"supported"`
}

// DiscoveryService finds printers reachable from this host
type DiscoveryService struct {
	scannerManager *discovery.ScannerManager
	catalog        *catalog.Registry
	config         *config.Config
	logger         *utils.ServiceLogger
}

// NewDiscoveryService creates a discovery service with the built-in scanners
func NewDiscoveryService(registry *catalog.Registry, cfg *config.Config, logger *zap.Logger) *DiscoveryService {
	ds := &DiscoveryService{
		scannerManager: discovery.NewScannerManager(logger),
		catalog:        registry,
		config:         cfg,
		logger:         utils.NewServiceLogger(logger, "discovery-service"),
	}
	ds.initializeScanners()
	return ds
}

// NewDiscoveryServiceWithScanners creates a discovery service around the
// given scanners
func NewDiscoveryServiceWithScanners(registry *catalog.Registry, cfg *config.Config, logger *zap.Logger, scanners ...discovery.DeviceScanner) *DiscoveryService {
	ds := &DiscoveryService{
		scannerManager: discovery.NewScannerManager(logger),
		catalog:        registry,
		config:         cfg,
		logger:         utils.NewServiceLogger(logger, "discovery-service"),
	}
	for _, s := range scanners {
		ds.scannerManager.RegisterScanner(s)
	}
	return ds
}

func (ds *DiscoveryService) initializeScanners() {
	ds.scannerManager.RegisterScanner(usb.NewScanner(ds.logger.Logger, ds.config.Discovery.Timeout))

	if serialScanner, err := serial.NewScanner(ds.logger.Logger, nil); err == nil {
		ds.scannerManager.RegisterScanner(serialScanner)
	} else {
		ds.logger.Warn("Serial scanner disabled", zap.Error(err))
	}

	ds.scannerManager.RegisterScanner(tcp.NewScanner(ds.logger.Logger, &tcp.Config{
		Hosts:       ds.config.Discovery.TCPHosts,
		Port:        ds.config.Discovery.TCPPort,
		ConnTimeout: ds.config.Discovery.Timeout,
	}))

	ds.logger.Info("Discovery scanners initialized",
		zap.Strings("available_scanners", ds.scannerManager.GetAvailableScanners()),
	)
}

// AvailableScanners returns the scanner types usable on this host
func (ds *DiscoveryService) AvailableScanners() []string {
	return ds.scannerManager.GetAvailableScanners()
}

// Scan runs one scanner type, or all of them for "all" or ""
func (ds *DiscoveryService) Scan(ctx context.Context, scanType string) ([]*DiscoveredPrinter, error) {
	ds.logger.Info("Starting printer scan", zap.String("type", scanType))

	var devices []*discovery.DiscoveredDevice
	var err error

	switch scanType {
	case "", "all":
		devices, err = ds.scannerManager.ScanAll(ctx)
	case "serial", "usb", "tcp":
		devices, err = ds.scannerManager.ScanByType(ctx, scanType)
	default:
		return nil, fmt.Errorf("unsupported scan type: %s", scanType)
	}
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	result := make([]*DiscoveredPrinter, len(devices))
	for i, device := range devices {
		_, lookupErr := ds.catalog.Model(device.Model)
		result[i] = &DiscoveredPrinter{
			DiscoveredDevice: device,
			Supported:        device.Model != "" && lookupErr == nil,
		}
	}

	ds.logger.Info("Printer scan completed",
		zap.Int("devices_found", len(result)),
		zap.String("scan_type", scanType),
	)
	return result, nil
}
