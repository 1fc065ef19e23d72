// Package loopback provides in-memory serial lines for tests and simulation.
package loopback

import (
	"io"
	"sync"

	"github.com/robotalks/ecu.go/pkg/uart"
)

// Device is one end of an in-memory line and implements uart.Device.
type Device struct {
	in  *wire
	out *wire

	lock       sync.Mutex
	regs       uart.Registers
	configured bool
	closed     bool
}

type symbol struct {
	data byte
	regs uart.Registers
}

// wire carries symbols in one direction. depth models the bytes the
// line can hold (shift register plus receive buffer).
type wire struct {
	lock    sync.Mutex
	depth   int
	buf     []symbol
	overrun bool
}

func newWire(depth int) *wire {
	if depth <= 0 {
		depth = 1
	}
	return &wire{depth: depth}
}

// Pair creates two devices connected by a crossed line.
func Pair(depth int) (*Device, *Device) {
	ab, ba := newWire(depth), newWire(depth)
	return &Device{in: ba, out: ab}, &Device{in: ab, out: ba}
}

// Loop creates a device whose transmitter feeds its own receiver.
func Loop(depth int) *Device {
	w := newWire(depth)
	return &Device{in: w, out: w}
}

// Configure implements uart.Device.
func (d *Device) Configure(regs uart.Registers) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return io.ErrClosedPipe
	}
	d.regs, d.configured = regs, regs.Enabled()
	return nil
}

// Status implements uart.Device.
func (d *Device) Status() uart.Status {
	regs, ok := d.registers()
	if !ok {
		return 0
	}
	status := uart.Status(regs.UCSRA) & uart.StatusU2X

	d.out.lock.Lock()
	if n := len(d.out.buf); n < d.out.depth {
		status |= uart.StatusUDRE
		if n == 0 {
			status |= uart.StatusTXC
		}
	}
	d.out.lock.Unlock()

	d.in.lock.Lock()
	if len(d.in.buf) > 0 {
		status |= uart.StatusRXC
		if sender := d.in.buf[0].regs; !sender.Matches(regs) {
			if sender.UCSRC&0x30 != regs.UCSRC&0x30 {
				status |= uart.StatusPE
			} else {
				status |= uart.StatusFE
			}
		}
		if d.in.overrun {
			status |= uart.StatusDOR
		}
	}
	d.in.lock.Unlock()
	return status
}

// WriteData implements uart.Device. A byte written to a full line is
// lost and the receiver sees a data overrun.
func (d *Device) WriteData(b byte) {
	regs, ok := d.registers()
	if !ok {
		return
	}
	d.out.lock.Lock()
	defer d.out.lock.Unlock()
	if len(d.out.buf) >= d.out.depth {
		d.out.overrun = true
		return
	}
	bits := uart.Decode(regs, uart.DefaultClock).DataBits
	d.out.buf = append(d.out.buf, symbol{data: b & bits.Mask(), regs: regs})
}

// ReadData implements uart.Device.
func (d *Device) ReadData() byte {
	d.in.lock.Lock()
	defer d.in.lock.Unlock()
	if len(d.in.buf) == 0 {
		return 0
	}
	b := d.in.buf[0].data
	d.in.buf = d.in.buf[1:]
	d.in.overrun = false
	return b
}

// Err implements uart.Device.
func (d *Device) Err() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return io.ErrClosedPipe
	}
	return nil
}

// Close implements io.Closer.
func (d *Device) Close() error {
	d.lock.Lock()
	d.closed = true
	d.lock.Unlock()
	return nil
}

func (d *Device) registers() (uart.Registers, bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.regs, d.configured && !d.closed
}
