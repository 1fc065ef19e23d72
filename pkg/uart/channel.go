package uart

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// DefaultPollInterval is the default interval between status polls.
const DefaultPollInterval = 20 * time.Microsecond

// Channel is the owned handle of a configured Device.
type Channel struct {
	// Timeout bounds every SendByte/ReceiveByte call, 0 means no bound
	// other than the context.
	Timeout time.Duration
	// PollInterval is the interval between status polls.
	PollInterval time.Duration

	dev   Device
	clock uint32
	frame FrameConfig
	regs  Registers

	sendLock sync.Mutex
	recvLock sync.Mutex
	closed   int32
}

// Open validates the config, programs the device and enables both
// directions. The Channel owns dev afterwards.
func Open(dev Device, clock uint32, cfg FrameConfig) (*Channel, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	if clock == 0 {
		clock = DefaultClock
	}
	regs, err := Encode(cfg, clock)
	if err != nil {
		return nil, err
	}
	if err = dev.Configure(regs); err != nil {
		return nil, err
	}
	glog.V(2).Infof("uart: %s configured, %s, rate error %.2f%%",
		cfg, regs, BaudError(clock, regs, cfg.BaudRate)*100)
	return &Channel{
		PollInterval: DefaultPollInterval,
		dev:          dev,
		clock:        clock,
		frame:        cfg,
		regs:         regs,
	}, nil
}

// Frame returns the frame config.
func (c *Channel) Frame() FrameConfig {
	return c.frame
}

// Registers returns the register values applied to the device.
func (c *Channel) Registers() Registers {
	return c.regs
}

// SendByte waits for an empty transmit buffer and loads b. It returns
// once b is queued, not after it's clocked out.
func (c *Channel) SendByte(ctx context.Context, b byte) error {
	c.sendLock.Lock()
	defer c.sendLock.Unlock()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	if _, err := c.waitFor(ctx, StatusUDRE); err != nil {
		return err
	}
	c.dev.WriteData(b)
	return nil
}

// ReceiveByte waits until a byte is received and returns it.
// A *LineError is returned along with the byte if fault flags are set.
func (c *Channel) ReceiveByte(ctx context.Context) (byte, error) {
	c.recvLock.Lock()
	defer c.recvLock.Unlock()
	ctx, cancel := c.bound(ctx)
	defer cancel()
	status, err := c.waitFor(ctx, StatusRXC)
	if err != nil {
		return 0, err
	}
	b := c.dev.ReadData() & c.frame.DataBits.Mask()
	if faults := status.Faults(); faults != 0 {
		return b, &LineError{Status: faults}
	}
	return b, nil
}

// Close releases the device.
func (c *Channel) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if closer, ok := c.dev.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Channel) isClosed() bool {
	return atomic.LoadInt32(&c.closed) != 0
}

func (c *Channel) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(ctx, c.Timeout)
	}
	return ctx, func() {}
}

func (c *Channel) waitFor(ctx context.Context, flag Status) (Status, error) {
	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()
	for {
		if c.isClosed() {
			return 0, ErrClosed
		}
		if err := c.dev.Err(); err != nil {
			return 0, err
		}
		if status := c.dev.Status(); status&flag != 0 {
			return status, nil
		}
		if ticker == nil {
			interval := c.PollInterval
			if interval <= 0 {
				interval = DefaultPollInterval
			}
			ticker = time.NewTicker(interval)
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}
