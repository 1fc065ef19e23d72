// Package motor drives a DC motor through a two-pin H-bridge.
package motor

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
)

var (
	// ErrUnknownState indicates the state isn't one of the motor states.
	ErrUnknownState = errors.New("unknown motor state")
	// ErrNotInitialized indicates Rotate is called before Init.
	ErrNotInitialized = errors.New("motor not initialized")
)

// Pin is a digital output.
type Pin interface {
	// Configure sets the pin as an output.
	Configure() error
	// Set drives the pin high or low.
	Set(high bool) error
}

// Motor is the owned handle of one H-bridge channel. The commanded state
// is write-only, callers track it if needed.
type Motor struct {
	// Enable is optional, it's driven high by Init and the motor always
	// runs at full speed.
	Enable Pin
	// OnRotate is called after each successful Rotate.
	OnRotate func(State)

	in1, in2    Pin
	initialized bool
}

// New creates a Motor on the two direction pins.
func New(in1, in2 Pin) *Motor {
	return &Motor{in1: in1, in2: in2}
}

// Init configures the pins as outputs and stops the motor.
func (m *Motor) Init() error {
	pins := []Pin{m.in1, m.in2}
	if m.Enable != nil {
		pins = append(pins, m.Enable)
	}
	for n, pin := range pins {
		if err := pin.Configure(); err != nil {
			return fmt.Errorf("configure motor pin %d: %v", n+1, err)
		}
	}
	m.initialized = true
	if err := m.Rotate(Stopped); err != nil {
		return err
	}
	if m.Enable != nil {
		if err := m.Enable.Set(true); err != nil {
			return fmt.Errorf("enable motor: %v", err)
		}
	}
	glog.Info("motor initialized")
	return nil
}

// Rotate drives the direction pins into the pattern of the state.
func (m *Motor) Rotate(state State) error {
	in1, in2, ok := Pattern(state)
	if !ok {
		return ErrUnknownState
	}
	if !m.initialized {
		return ErrNotInitialized
	}
	// Release the active pin first so both pins are never high together.
	first, second := m.in1, m.in2
	firstLevel, secondLevel := in1, in2
	if in1 {
		first, second = m.in2, m.in1
		firstLevel, secondLevel = in2, in1
	}
	if err := first.Set(firstLevel); err != nil {
		return err
	}
	if err := second.Set(secondLevel); err != nil {
		return err
	}
	glog.V(2).Infof("motor %s", state)
	if m.OnRotate != nil {
		m.OnRotate(state)
	}
	return nil
}
