// internal/protocol/protocol.go
package protocol

import (
	"context"
	"errors"
	"time"

	"label-service/internal/model"
)

// ErrNotOpen is returned by I/O on a closed connection
var ErrNotOpen = errors.New("connection not open")

// DeviceProtocol represents a byte transport to a printer
type DeviceProtocol interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Data communication
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context, maxBytes int) ([]byte, error)

	// Protocol information
	GetProtocolType() model.ConnectionType
	Stats() ProtocolStats

	// Health and diagnostics
	Ping(ctx context.Context) error
}

// ProtocolStats provides protocol-level statistics
type ProtocolStats struct {
	BytesWritten   int64         `json:"bytes_written"`
	BytesRead      int64         `json:"bytes_read"`
	OperationCount int64         `json:"operation_count"`
	ErrorCount     int64         `json:"error_count"`
	LastActivity   time.Time     `json:"last_activity"`
	AverageLatency time.Duration `json:"average_latency"`
	IsConnected    bool          `json:"is_connected"`
}

func (s *ProtocolStats) recordWrite(n int, latency time.Duration) {
	s.BytesWritten += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
	if s.AverageLatency == 0 {
		s.AverageLatency = latency
	} else {
		s.AverageLatency = (s.AverageLatency + latency) / 2
	}
}

func (s *ProtocolStats) recordRead(n int) {
	s.BytesRead += int64(n)
	s.OperationCount++
	s.LastActivity = time.Now()
}

type readResult struct {
	data []byte
	err  error
}

// readAsync runs a blocking read in the background so the caller can give
// up when ctx is done.
func readAsync(ctx context.Context, maxBytes int, read func([]byte) (int, error)) ([]byte, error) {
	done := make(chan readResult, 1)
	go func() {
		buffer := make([]byte, maxBytes)
		n, err := read(buffer)
		if err != nil && n == 0 {
			done <- readResult{err: err}
			return
		}
		done <- readResult{data: buffer[:n]}
	}()

	select {
	case result := <-done:
		return result.data, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
