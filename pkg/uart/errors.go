package uart

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed indicates the Channel has been closed.
	ErrClosed = errors.New("channel closed")
	// ErrNoDevice indicates Open is called without a Device.
	ErrNoDevice = errors.New("no device")
)

// ConfigError reports an invalid FrameConfig field.
type ConfigError struct {
	Field string
	Value interface{}
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid frame config: %s=%v", e.Field, e.Value)
}

// BaudRateError reports a baud rate the clock can't reproduce within
// MaxBaudError.
type BaudRateError struct {
	Clock    uint32
	BaudRate uint32
	// Deviation is the best relative error found, negative if no divisor
	// fits the register at all.
	Deviation float64
}

// Error implements error.
func (e *BaudRateError) Error() string {
	if e.Deviation < 0 {
		return fmt.Sprintf("baud rate %d out of range for clock %d Hz", e.BaudRate, e.Clock)
	}
	return fmt.Sprintf("baud rate %d unachievable from clock %d Hz (error %.2f%%)",
		e.BaudRate, e.Clock, e.Deviation*100)
}

// LineError reports fault flags latched with a received byte.
type LineError struct {
	Status Status
}

// Error implements error.
func (e *LineError) Error() string {
	var faults []string
	if e.Framing() {
		faults = append(faults, "framing error")
	}
	if e.Parity() {
		faults = append(faults, "parity error")
	}
	if e.Overrun() {
		faults = append(faults, "data overrun")
	}
	return "line fault: " + strings.Join(faults, ", ")
}

// Framing indicates the stop bit was not found.
func (e *LineError) Framing() bool { return e.Status&StatusFE != 0 }

// Parity indicates the parity check failed.
func (e *LineError) Parity() bool { return e.Status&StatusPE != 0 }

// Overrun indicates bytes were lost before this one was read.
func (e *LineError) Overrun() bool { return e.Status&StatusDOR != 0 }
