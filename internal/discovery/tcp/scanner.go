// internal/discovery/tcp/scanner.go
package tcp

import (
	"context"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"label-service/internal/discovery"
	"label-service/internal/model"
	"label-service/internal/raster"
)

// Config for TCP scanner
type Config struct {
	Hosts       []string      `json:"hosts"`
	Port        int           `json:"port"`
	ConnTimeout time.Duration `json:"connection_timeout"`
	// MaxConcurrent bounds the number of hosts probed at once
	MaxConcurrent int `json:"max_concurrent"`
}

// Scanner probes configured hosts for a raw printing port
type Scanner struct {
	logger *zap.Logger
	config *Config
}

// NewScanner creates a new TCP scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config.Port == 0 {
		config.Port = 9100
	}
	if config.ConnTimeout <= 0 {
		config.ConnTimeout = 3 * time.Second
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 8
	}

	return &Scanner{
		logger: logger.With(zap.String("scanner", "tcp")),
		config: config,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "tcp"
}

// IsAvailable reports whether any host is configured
func (s *Scanner) IsAvailable() bool {
	return len(s.config.Hosts) > 0
}

// Scan probes every configured host concurrently
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	s.logger.Info("Starting TCP scan", zap.Int("hosts", len(s.config.Hosts)))

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		discovered = []*discovery.DiscoveredDevice{}
		sem        = make(chan struct{}, s.config.MaxConcurrent)
	)

	for _, host := range s.config.Hosts {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return discovered, ctx.Err()
		}

		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			defer func() { <-sem }()

			if d := s.probe(ctx, host); d != nil {
				mu.Lock()
				discovered = append(discovered, d)
				mu.Unlock()
			}
		}(host)
	}
	wg.Wait()

	s.logger.Info("TCP scan completed", zap.Int("devices_found", len(discovered)))
	return discovered, nil
}

// probe connects to host and asks for a status reply. An open port that
// does not answer is still reported with low confidence.
func (s *Scanner) probe(ctx context.Context, host string) *discovery.DiscoveredDevice {
	address := net.JoinHostPort(host, strconv.Itoa(s.config.Port))
	dialer := &net.Dialer{Timeout: s.config.ConnTimeout}

	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		s.logger.Debug("Host not reachable", zap.String("address", address), zap.Error(err))
		return nil
	}
	defer conn.Close()

	device := &discovery.DiscoveredDevice{
		ConnectionType: model.ConnectionTypeTCP,
		ConnectionInfo: map[string]interface{}{"host": host, "port": s.config.Port},
		URI:            "tcp://" + address,
		Confidence:     0.4,
		Location:       address,
	}

	conn.SetDeadline(time.Now().Add(s.config.ConnTimeout))
	if _, err := conn.Write(raster.RASTER_COMMANDS.STATUS_REQUEST); err != nil {
		return device
	}

	reply := make([]byte, raster.StatusLength)
	if _, err := io.ReadFull(conn, reply); err != nil {
		s.logger.Debug("No status reply", zap.String("address", address), zap.Error(err))
		return device
	}

	status, err := raster.ParseStatus(reply)
	if err != nil {
		return device
	}

	device.Confidence = 0.9
	device.ConnectionInfo["media_width_mm"] = status.MediaWidthMM
	device.ConnectionInfo["media_type"] = int(status.MediaType)
	if len(status.Errors) > 0 {
		device.ConnectionInfo["errors"] = status.Errors
	}
	return device
}
