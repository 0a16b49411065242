// internal/discovery/serial/scanner.go
package serial

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"label-service/internal/discovery"
	"label-service/internal/model"
)

const brotherVendorID = "04F9"

// DefaultPortPatterns match Bluetooth SPP and USB serial ports
var DefaultPortPatterns = []string{
	`^/dev/rfcomm\d+$`,
	`^/dev/tty(USB|ACM)\d+$`,
	`^/dev/(tty|cu)\..*(Brother|QL|PT|Bluetooth|usbserial|usbmodem).*$`,
	`^COM\d+$`,
}

// Scanner lists serial ports that may lead to a printer
type Scanner struct {
	logger   *zap.Logger
	patterns []*regexp.Regexp
	list     func() ([]*enumerator.PortDetails, error)
}

// NewScanner creates a serial scanner; nil patterns select the defaults
func NewScanner(logger *zap.Logger, patterns []string) (*Scanner, error) {
	if len(patterns) == 0 {
		patterns = DefaultPortPatterns
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid port pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	return &Scanner{
		logger:   logger.With(zap.String("scanner", "serial")),
		patterns: compiled,
		list:     enumerator.GetDetailedPortsList,
	}, nil
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "serial"
}

// IsAvailable reports whether ports can be listed on this system
func (s *Scanner) IsAvailable() bool {
	_, err := s.list()
	return err == nil
}

// Scan lists matching ports. Ports that report the Brother USB vendor id
// are returned with high confidence, the rest as candidates.
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	s.logger.Info("Starting serial port scan")

	ports, err := s.list()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	discovered := []*discovery.DiscoveredDevice{}
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return discovered, ctx.Err()
		default:
		}

		if d := s.identify(port); d != nil {
			discovered = append(discovered, d)
		}
	}

	s.logger.Info("Serial scan completed", zap.Int("devices_found", len(discovered)))
	return discovered, nil
}

func (s *Scanner) identify(port *enumerator.PortDetails) *discovery.DiscoveredDevice {
	brother := port.IsUSB && strings.EqualFold(port.VID, brotherVendorID)
	if !brother && !s.matches(port.Name) {
		return nil
	}

	confidence := 0.3
	if brother {
		confidence = 0.8
	}

	info := map[string]interface{}{"port": port.Name}
	if port.IsUSB {
		info["vendor_id"] = "0x" + strings.ToLower(port.VID)
		info["product_id"] = "0x" + strings.ToLower(port.PID)
	}

	return &discovery.DiscoveredDevice{
		ConnectionType: model.ConnectionTypeSerial,
		ConnectionInfo: info,
		URI:            "serial://" + port.Name,
		Model:          port.Product,
		Confidence:     confidence,
		SerialNumber:   port.SerialNumber,
		Location:       port.Name,
	}
}

func (s *Scanner) matches(name string) bool {
	for _, re := range s.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
