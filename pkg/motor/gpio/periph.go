package gpio

import (
	"fmt"
	"sync"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	hostOnce sync.Once
	hostErr  error
)

// InitHost loads the periph.io host drivers, once per process.
func InitHost() error {
	hostOnce.Do(func() {
		state, err := host.Init()
		if err != nil {
			hostErr = err
			return
		}
		glog.Infof("periph host ready: %d drivers loaded", len(state.Loaded))
		for _, failure := range state.Failed {
			glog.Warningf("periph driver %s", failure)
		}
	})
	return hostErr
}

// PeriphPin is a host GPIO looked up by name in the periph.io registry,
// e.g. "GPIO17".
type PeriphPin struct {
	Name string

	pin gpio.PinIO
}

// NewPeriphPin creates a PeriphPin.
func NewPeriphPin(name string) *PeriphPin {
	return &PeriphPin{Name: name}
}

// Configure implements motor.Pin.
func (p *PeriphPin) Configure() error {
	if err := InitHost(); err != nil {
		return fmt.Errorf("periph host init: %v", err)
	}
	pin := gpioreg.ByName(p.Name)
	if pin == nil {
		return fmt.Errorf("unknown GPIO %q", p.Name)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("GPIO %s output: %v", p.Name, err)
	}
	p.pin = pin
	return nil
}

// Set implements motor.Pin.
func (p *PeriphPin) Set(high bool) error {
	if p.pin == nil {
		return ErrNotOutput
	}
	level := gpio.Low
	if high {
		level = gpio.High
	}
	return p.pin.Out(level)
}

// String implements fmt.Stringer.
func (p *PeriphPin) String() string {
	return p.Name
}
