// Package gpio provides motor.Pin implementations.
package gpio

import (
	"errors"
	"sync"
)

// ErrNotOutput indicates the pin is driven before it's configured.
var ErrNotOutput = errors.New("pin not configured as output")

// MemPin is an in-memory pin which records every level written.
type MemPin struct {
	Name string
	// Fail makes Configure and Set fail when set.
	Fail error

	lock       sync.Mutex
	configured bool
	level      bool
	history    []bool
}

// NewMemPin creates a MemPin.
func NewMemPin(name string) *MemPin {
	return &MemPin{Name: name}
}

// Configure implements motor.Pin.
func (p *MemPin) Configure() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.Fail != nil {
		return p.Fail
	}
	p.configured = true
	return nil
}

// Set implements motor.Pin.
func (p *MemPin) Set(high bool) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.Fail != nil {
		return p.Fail
	}
	if !p.configured {
		return ErrNotOutput
	}
	p.level = high
	p.history = append(p.history, high)
	return nil
}

// Level returns the current level.
func (p *MemPin) Level() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.level
}

// Configured tells if Configure succeeded.
func (p *MemPin) Configured() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.configured
}

// History returns a copy of all levels written.
func (p *MemPin) History() []bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]bool(nil), p.history...)
}

// String implements fmt.Stringer.
func (p *MemPin) String() string {
	return p.Name
}
