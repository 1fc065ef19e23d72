// Package hmi runs the HMI node: it relays operator commands to the
// control node over the serial link.
package hmi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ecu.go/pkg/ecu"
	"github.com/robotalks/ecu.go/pkg/link"
)

// DefaultTimeout is the default time to wait for a reply.
const DefaultTimeout = 500 * time.Millisecond

// ErrRejected indicates the control node replied NAK.
var ErrRejected = errors.New("command rejected")

// ReplyError is returned when the reply is neither ACK nor NAK.
type ReplyError struct {
	Reply string
}

// Error implements error.
func (e *ReplyError) Error() string {
	return fmt.Sprintf("unexpected reply %q", e.Reply)
}

// Relay sends commands and waits for replies, one exchange at a time.
type Relay struct {
	Conn link.Messenger
	// Timeout bounds each attempt to get a reply.
	Timeout time.Duration
	// Retries is the number of resends after a reply timed out.
	Retries int

	lock sync.Mutex
}

// NewRelay creates a Relay.
func NewRelay(conn link.Messenger) *Relay {
	return &Relay{Conn: conn, Timeout: DefaultTimeout}
}

// Do sends cmd and interprets the reply.
func (r *Relay) Do(ctx context.Context, cmd ecu.Command) error {
	if !cmd.IsValid() {
		return ecu.ErrUnknownCommand
	}
	reply, err := r.exchange(ctx, cmd.String(), r.Retries)
	if err != nil {
		return err
	}
	switch reply {
	case ecu.ReplyACK:
		glog.V(2).Infof("%s acknowledged", cmd)
		return nil
	case ecu.ReplyNAK:
		glog.Warningf("%s rejected", cmd)
		return ErrRejected
	}
	return &ReplyError{Reply: reply}
}

// SendRaw sends text as it is and returns the reply, without retries.
func (r *Relay) SendRaw(ctx context.Context, text string) (string, error) {
	return r.exchange(ctx, text, 0)
}

func (r *Relay) exchange(ctx context.Context, text string, retries int) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for attempt := 0; ; attempt++ {
		if err := r.Conn.Send(ctx, []byte(text)); err != nil {
			return "", err
		}
		reply, err := r.receive(ctx)
		if err == nil {
			return string(reply), nil
		}
		if err != context.DeadlineExceeded || ctx.Err() != nil || attempt >= retries {
			return "", err
		}
		glog.Warningf("no reply to %q, retry %d", text, attempt+1)
	}
}

func (r *Relay) receive(ctx context.Context) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return r.Conn.Receive(ctx)
}
