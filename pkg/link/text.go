package link

import (
	"context"
	"errors"
	"strings"

	"github.com/robotalks/ecu.go/pkg/uart"
)

// Sentinel terminates a text message.
const Sentinel byte = '#'

// DefaultMaxLength is the default receive buffer of TextConn.
const DefaultMaxLength = 64

// ByteSender sends a single byte.
type ByteSender interface {
	SendByte(context.Context, byte) error
}

// ByteReceiver receives a single byte.
type ByteReceiver interface {
	ReceiveByte(context.Context) (byte, error)
}

// ByteTransport is implemented by uart.Channel.
type ByteTransport interface {
	ByteSender
	ByteReceiver
}

// Framed is implemented by transports which know their frame format,
// like uart.Channel.
type Framed interface {
	Frame() uart.FrameConfig
}

// checkWidth returns ErrByteTooWide if any byte of data is truncated by
// the frame of t. Transports without a frame are not checked.
func checkWidth(t interface{}, data []byte) error {
	f, ok := t.(Framed)
	if !ok {
		return nil
	}
	mask := f.Frame().DataBits.Mask()
	for _, b := range data {
		if b&mask != b {
			return ErrByteTooWide
		}
	}
	return nil
}

// SendString sends s followed by the Sentinel. A single trailing
// Sentinel in s is accepted as the terminator itself. Nothing is sent if
// the Sentinel or the payload doesn't fit the frame of t.
func SendString(ctx context.Context, t ByteSender, s string) error {
	payload := strings.TrimSuffix(s, string(Sentinel))
	if strings.IndexByte(payload, Sentinel) >= 0 {
		return ErrSentinelInPayload
	}
	if err := checkWidth(t, append([]byte(payload), Sentinel)); err != nil {
		return err
	}
	for i := 0; i < len(payload); i++ {
		if err := t.SendByte(ctx, payload[i]); err != nil {
			return err
		}
	}
	return t.SendByte(ctx, Sentinel)
}

// ReceiveString reads bytes into buf until the Sentinel, which is
// discarded, and returns the message length.
//
// When buf fills up first, the rest of the message is drained and
// ErrMessageTooLong is returned. Line faults don't stop the message;
// the first *uart.LineError is returned once the Sentinel arrives.
func ReceiveString(ctx context.Context, t ByteReceiver, buf []byte) (int, error) {
	var n int
	var overflow bool
	var lineErr error
	for {
		b, err := t.ReceiveByte(ctx)
		if err != nil {
			var le *uart.LineError
			if !errors.As(err, &le) {
				return n, err
			}
			if lineErr == nil {
				lineErr = err
			}
		}
		if b == Sentinel {
			if overflow {
				return n, ErrMessageTooLong
			}
			return n, lineErr
		}
		if n >= len(buf) {
			overflow = true
			continue
		}
		buf[n] = b
		n++
	}
}

// Messenger exchanges whole messages.
type Messenger interface {
	Send(ctx context.Context, msg []byte) error
	Receive(ctx context.Context) ([]byte, error)
}

// TextConn implements Messenger with text framing.
type TextConn struct {
	Transport ByteTransport
	MaxLength int
}

// NewTextConn creates a TextConn.
func NewTextConn(t ByteTransport) *TextConn {
	return &TextConn{Transport: t, MaxLength: DefaultMaxLength}
}

// Send implements Messenger.
func (c *TextConn) Send(ctx context.Context, msg []byte) error {
	return SendString(ctx, c.Transport, string(msg))
}

// Receive implements Messenger.
func (c *TextConn) Receive(ctx context.Context) ([]byte, error) {
	size := c.MaxLength
	if size <= 0 {
		size = DefaultMaxLength
	}
	buf := make([]byte, size)
	n, err := ReceiveString(ctx, c.Transport, buf)
	return buf[:n], err
}
