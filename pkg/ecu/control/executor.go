// Package control runs the control node: it receives commands over the
// serial link and drives the motor.
package control

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/ecu.go/pkg/ecu"
	"github.com/robotalks/ecu.go/pkg/ecu/events"
	"github.com/robotalks/ecu.go/pkg/link"
	"github.com/robotalks/ecu.go/pkg/motor"
	"github.com/robotalks/ecu.go/pkg/uart"
)

// Executor executes commands received from the HMI node.
type Executor struct {
	Conn  link.Messenger
	Motor *motor.Motor
	// Events is optional.
	Events events.Sink
	Node   string

	seq uint64
}

// NewExecutor creates an Executor.
func NewExecutor(conn link.Messenger, m *motor.Motor) *Executor {
	return &Executor{Conn: conn, Motor: m}
}

// Name implements framework.Named.
func (e *Executor) Name() string {
	return "control"
}

// Init initializes the motor, it's stopped afterwards.
func (e *Executor) Init() error {
	return e.Motor.Init()
}

// Run implements framework.Runnable. The motor is stopped when Run
// returns.
func (e *Executor) Run(ctx context.Context) error {
	defer func() {
		if err := e.Motor.Rotate(motor.Stopped); err != nil {
			glog.Errorf("stop motor: %v", err)
		}
	}()
	for {
		msg, err := e.Conn.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !recoverable(err) {
				return err
			}
			if err == context.DeadlineExceeded {
				// idle line
				continue
			}
			glog.Warningf("receive: %v", err)
			e.reply(ctx, ecu.ReplyNAK)
			continue
		}
		e.reply(ctx, e.Execute(string(msg)))
	}
}

// Execute runs a single command text and returns the reply.
func (e *Executor) Execute(text string) string {
	cmd, err := ecu.ParseCommand(text)
	if err != nil {
		glog.Warningf("command %q: %v", text, err)
		return ecu.ReplyNAK
	}
	if err = e.Motor.Rotate(cmd.State()); err != nil {
		glog.Errorf("command %s: %v", cmd, err)
		return ecu.ReplyNAK
	}
	glog.V(2).Infof("command %s executed", cmd)
	e.publish(cmd)
	return ecu.ReplyACK
}

func (e *Executor) reply(ctx context.Context, reply string) {
	if err := e.Conn.Send(ctx, []byte(reply)); err != nil && ctx.Err() == nil {
		glog.Warningf("reply %s: %v", reply, err)
	}
}

func (e *Executor) publish(cmd ecu.Command) {
	if e.Events == nil {
		return
	}
	ev := &events.MotorEvent{
		Node:      e.Node,
		Command:   cmd.String(),
		State:     uint32(cmd.State()),
		Timestamp: time.Now().UnixNano(),
		Seq:       atomic.AddUint64(&e.seq, 1),
	}
	if err := e.Events.PublishMotorEvent(ev); err != nil {
		glog.Warningf("publish motor event: %v", err)
	}
}

func recoverable(err error) bool {
	var lineErr *uart.LineError
	switch {
	case errors.As(err, &lineErr):
		return true
	case errors.Is(err, link.ErrMessageTooLong):
		return true
	case err == context.DeadlineExceeded:
		return true
	}
	return false
}
