// internal/protocol/file_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"label-service/internal/model"
	"label-service/internal/raster"
)

// FileConnection writes to a printer device node such as /dev/usb/lp0, or
// to a plain file that collects the instruction stream
type FileConnection struct {
	config   *FileConfig
	file     *os.File
	readable bool
	logger   *zap.Logger
	mutex    sync.RWMutex
	isOpen   bool
	stats    ProtocolStats
}

// NewFileConnection creates a new file connection
func NewFileConnection(config *FileConfig, logger *zap.Logger) DeviceProtocol {
	return &FileConnection{
		config: config,
		logger: logger.With(
			zap.String("protocol", "file"),
			zap.String("path", config.Path),
		),
	}
}

// Open opens the device node read-write, or creates and truncates a
// regular file for writing
func (fc *FileConnection) Open(ctx context.Context) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	if fc.isOpen {
		return nil
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	info, err := os.Stat(fc.config.Path)
	switch {
	case err == nil && info.Mode()&fs.ModeDevice != 0:
		flag = os.O_RDWR
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat %s: %w", fc.config.Path, err)
	}

	file, err := os.OpenFile(fc.config.Path, flag, 0644)
	if err != nil {
		fc.logger.Error("Failed to open file", zap.Error(err))
		return fmt.Errorf("failed to open %s: %w", fc.config.Path, err)
	}

	fc.file = file
	fc.readable = flag == os.O_RDWR
	fc.isOpen = true
	fc.stats.IsConnected = true
	fc.stats.LastActivity = time.Now()

	fc.logger.Debug("File opened", zap.Bool("device", fc.readable))
	return nil
}

// Close closes the file
func (fc *FileConnection) Close() error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	if !fc.isOpen || fc.file == nil {
		return nil
	}

	err := fc.file.Close()
	fc.file = nil
	fc.isOpen = false
	fc.stats.IsConnected = false
	if err != nil {
		return fmt.Errorf("failed to close %s: %w", fc.config.Path, err)
	}
	return nil
}

// IsOpen returns whether the file is open
func (fc *FileConnection) IsOpen() bool {
	fc.mutex.RLock()
	defer fc.mutex.RUnlock()
	return fc.isOpen && fc.file != nil
}

// Write appends data to the file
func (fc *FileConnection) Write(ctx context.Context, data []byte) error {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	if !fc.isOpen || fc.file == nil {
		return fmt.Errorf("file: %w", ErrNotOpen)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	startTime := time.Now()
	n, err := fc.file.Write(data)
	if err != nil {
		fc.stats.ErrorCount++
		return fmt.Errorf("failed to write to %s: %w", fc.config.Path, err)
	}

	fc.stats.recordWrite(n, time.Since(startTime))
	return nil
}

// Read reads a status reply from a device node. Plain files are write-only.
func (fc *FileConnection) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()

	if !fc.isOpen || fc.file == nil {
		return nil, fmt.Errorf("file: %w", ErrNotOpen)
	}
	if !fc.readable {
		return nil, fmt.Errorf("%s is not a device: %w", fc.config.Path, io.EOF)
	}

	data, err := readAsync(ctx, maxBytes, fc.file.Read)
	if err != nil {
		fc.stats.ErrorCount++
		return nil, fmt.Errorf("failed to read from %s: %w", fc.config.Path, err)
	}
	fc.stats.recordRead(len(data))
	return data, nil
}

// GetProtocolType returns the protocol type
func (fc *FileConnection) GetProtocolType() model.ConnectionType {
	return model.ConnectionTypeFile
}

// Stats returns a snapshot of the connection statistics
func (fc *FileConnection) Stats() ProtocolStats {
	fc.mutex.RLock()
	defer fc.mutex.RUnlock()
	return fc.stats
}

// Ping sends a status request to device nodes and is a no-op for files
func (fc *FileConnection) Ping(ctx context.Context) error {
	if !fc.IsOpen() {
		return fmt.Errorf("file: %w", ErrNotOpen)
	}
	if !fc.readable {
		return nil
	}
	return fc.Write(ctx, raster.RASTER_COMMANDS.STATUS_REQUEST)
}
