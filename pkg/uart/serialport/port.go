// Package serialport implements uart.Device on a host serial port.
package serialport

import (
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	"github.com/robotalks/ecu.go/pkg/uart"
)

// DefaultReadTimeout is how long a single port read waits, which is
// also the latency of noticing Close.
const DefaultReadTimeout = 100 * time.Millisecond

// OpenFunc opens the port described by the config.
type OpenFunc func(*serial.Config) (io.ReadWriteCloser, error)

// Device is a host serial port modeled as USART registers.
// The data registers are one-byte channels fed by background pumps.
type Device struct {
	Name        string
	Clock       uint32
	ReadTimeout time.Duration
	Open        OpenFunc

	port io.ReadWriteCloser
	rxCh chan byte
	txCh chan byte
	done chan struct{}
	wg   sync.WaitGroup

	lock   sync.Mutex
	err    error
	closed bool
}

// New creates a Device for the named port, e.g. /dev/ttyUSB0.
func New(name string) *Device {
	return &Device{
		Name:        name,
		Clock:       uart.DefaultClock,
		ReadTimeout: DefaultReadTimeout,
		Open:        openPort,
	}
}

func openPort(c *serial.Config) (io.ReadWriteCloser, error) {
	return serial.OpenPort(c)
}

// PortConfig maps register values to the host port settings. Host
// drivers only accept standard rates, so the rate the registers produce
// is snapped to the nearest one.
func PortConfig(name string, regs uart.Registers, clock uint32) *serial.Config {
	frame := uart.Decode(regs, clock)
	conf := &serial.Config{
		Name:     name,
		Baud:     int(uart.NearestStandardRate(regs.ActualBaud(clock))),
		Size:     byte(frame.DataBits),
		Parity:   serial.ParityNone,
		StopBits: serial.Stop1,
	}
	switch frame.Parity {
	case uart.ParityEven:
		conf.Parity = serial.ParityEven
	case uart.ParityOdd:
		conf.Parity = serial.ParityOdd
	}
	if frame.StopBits == uart.StopBits2 {
		conf.StopBits = serial.Stop2
	}
	return conf
}

// Configure implements uart.Device. The port is opened on the first call.
func (d *Device) Configure(regs uart.Registers) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return io.ErrClosedPipe
	}
	if d.port != nil {
		return nil
	}
	conf := PortConfig(d.Name, regs, d.Clock)
	conf.ReadTimeout = d.ReadTimeout
	open := d.Open
	if open == nil {
		open = openPort
	}
	port, err := open(conf)
	if err != nil {
		return err
	}
	glog.Infof("serial port %s opened: %d baud, %d%c%d",
		conf.Name, conf.Baud, conf.Size, conf.Parity, conf.StopBits)
	d.port = port
	d.rxCh, d.txCh = make(chan byte, 1), make(chan byte, 1)
	d.done = make(chan struct{})
	d.wg.Add(2)
	go d.readLoop(port, d.rxCh, d.done)
	go d.writeLoop(port, d.txCh, d.done)
	return nil
}

// pumps returns the data channels, nil before Configure or after Close.
func (d *Device) pumps() (rxCh, txCh chan byte) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.port == nil || d.closed {
		return nil, nil
	}
	return d.rxCh, d.txCh
}

// Status implements uart.Device.
func (d *Device) Status() (status uart.Status) {
	rxCh, txCh := d.pumps()
	if rxCh == nil {
		return 0
	}
	if len(txCh) == 0 {
		status |= uart.StatusUDRE | uart.StatusTXC
	}
	if len(rxCh) > 0 {
		status |= uart.StatusRXC
	}
	return
}

// WriteData implements uart.Device.
func (d *Device) WriteData(b byte) {
	_, txCh := d.pumps()
	if txCh == nil {
		return
	}
	select {
	case txCh <- b:
	default:
		glog.Warningf("serial port %s: transmit buffer full, byte dropped", d.Name)
	}
}

// ReadData implements uart.Device.
func (d *Device) ReadData() byte {
	rxCh, _ := d.pumps()
	select {
	case b := <-rxCh:
		return b
	default:
		return 0
	}
}

// Err implements uart.Device.
func (d *Device) Err() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.err == nil && d.closed {
		return io.ErrClosedPipe
	}
	return d.err
}

// Close implements io.Closer. It's safe to call while another goroutine
// polls the device.
func (d *Device) Close() error {
	d.lock.Lock()
	if d.closed || d.port == nil {
		d.closed = true
		d.lock.Unlock()
		return nil
	}
	d.closed = true
	port, done := d.port, d.done
	d.lock.Unlock()

	close(done)
	err := port.Close()
	d.wg.Wait()
	return err
}

func (d *Device) fail(err error) {
	d.lock.Lock()
	if d.err == nil {
		d.err = err
	}
	d.lock.Unlock()
}

func (d *Device) readLoop(port io.Reader, rxCh chan<- byte, done <-chan struct{}) {
	defer d.wg.Done()
	buf := make([]byte, 1)
	for {
		n, err := port.Read(buf)
		if err != nil {
			select {
			case <-done:
			default:
				glog.Errorf("serial port %s read error: %v", d.Name, err)
				d.fail(err)
			}
			return
		}
		if n == 0 {
			// read timeout
			select {
			case <-done:
				return
			default:
				continue
			}
		}
		select {
		case rxCh <- buf[0]:
		case <-done:
			return
		}
	}
}

func (d *Device) writeLoop(port io.Writer, txCh <-chan byte, done <-chan struct{}) {
	defer d.wg.Done()
	for {
		select {
		case <-done:
			return
		case b := <-txCh:
			if _, err := port.Write([]byte{b}); err != nil {
				glog.Errorf("serial port %s write error: %v", d.Name, err)
				d.fail(err)
				return
			}
		}
	}
}
