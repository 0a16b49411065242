// internal/raster/errors.go
package raster

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCommand is matched by every UnsupportedCommandError
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrWidthMismatch      = errors.New("wrong pixel width")
	ErrLayerMismatch      = errors.New("layers have different dimensions")
	ErrJobFinished        = errors.New("raster job already finished")
)

// UnsupportedCommandError is returned when the active model lacks the
// capability a command needs. Nothing is appended in that case, so callers
// may log it and carry on.
type UnsupportedCommandError struct {
	Command string
	Model   string
	Reason  string
}

func (e *UnsupportedCommandError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s not supported by %s: %s", e.Command, e.Model, e.Reason)
	}
	return fmt.Sprintf("%s not supported by %s", e.Command, e.Model)
}

func (e *UnsupportedCommandError) Is(target error) bool {
	return target == ErrUnsupportedCommand
}

// IsUnsupported reports whether err is a capability error
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedCommand)
}
