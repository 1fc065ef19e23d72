package hmi

import (
	"context"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/ecu.go/pkg/ecu"
	"github.com/robotalks/ecu.go/pkg/ecu/events"
	"github.com/robotalks/ecu.go/pkg/mqtt"
)

// Bridge relays commands published on the command topic of the node
// and publishes the results on its reply topic.
type Bridge struct {
	Queue *mqtt.Queue
	Relay *Relay
	Node  string
}

// Name implements framework.Named.
func (b *Bridge) Name() string {
	return "mqtt-bridge"
}

// Run implements framework.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	reqs := make(chan string, 8)
	sub := b.Queue.Sub(events.CommandTopic(b.Node), func(topic string, payload []byte) {
		select {
		case reqs <- string(payload):
		default:
			glog.Warningf("bridge busy, drop %q", payload)
		}
	})
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text := <-reqs:
			b.Queue.Pub(events.ReplyTopic(b.Node), []byte(b.Handle(ctx, text)))
		}
	}
}

// Handle relays text as a command and returns the reply to publish.
func (b *Bridge) Handle(ctx context.Context, text string) string {
	cmd, err := ecu.ParseCommand(strings.TrimSuffix(text, "#"))
	if err != nil {
		return err.Error()
	}
	switch err = b.Relay.Do(ctx, cmd); err {
	case nil:
		return ecu.ReplyACK
	case ErrRejected:
		return ecu.ReplyNAK
	}
	return err.Error()
}
