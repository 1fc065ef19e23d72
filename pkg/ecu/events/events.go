// Package events carries ECU state changes to the MQTT broker.
package events

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/ecu.go/pkg/mqtt"
)

// Topic suffixes under the node ID.
const (
	CommandSuffix = "/cmd"
	ReplySuffix   = "/reply"
	EventSuffix   = "/event"
)

// CommandTopic is where remote commands for node are published.
func CommandTopic(node string) string { return node + CommandSuffix }

// ReplyTopic is where replies of remote commands are published.
func ReplyTopic(node string) string { return node + ReplySuffix }

// EventTopic is where motor events of node are published.
func EventTopic(node string) string { return node + EventSuffix }

// MotorEvent is published after the control node rotates the motor.
type MotorEvent struct {
	Node      string `protobuf:"bytes,1,opt,name=node,proto3" json:"node,omitempty"`
	Command   string `protobuf:"bytes,2,opt,name=command,proto3" json:"command,omitempty"`
	State     uint32 `protobuf:"varint,3,opt,name=state,proto3" json:"state,omitempty"`
	Timestamp int64  `protobuf:"varint,4,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
	Seq       uint64 `protobuf:"varint,5,opt,name=seq,proto3" json:"seq,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *MotorEvent) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MotorEvent) Reset() { *m = MotorEvent{} }

// String implements proto.Message.
func (m *MotorEvent) String() string { return proto.CompactTextString(m) }

// Time returns Timestamp as time.Time.
func (m *MotorEvent) Time() time.Time {
	return time.Unix(0, m.Timestamp)
}

// Decode parses an encoded MotorEvent.
func Decode(payload []byte) (*MotorEvent, error) {
	var ev MotorEvent
	if err := proto.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Sink receives motor events.
type Sink interface {
	PublishMotorEvent(*MotorEvent) error
}

// SinkFunc is the func form of Sink.
type SinkFunc func(*MotorEvent) error

// PublishMotorEvent implements Sink.
func (f SinkFunc) PublishMotorEvent(ev *MotorEvent) error {
	return f(ev)
}

// Publisher publishes motor events to the EventTopic of its node.
type Publisher struct {
	Queue *mqtt.Queue
	Node  string
}

// PublishMotorEvent implements Sink.
func (p *Publisher) PublishMotorEvent(ev *MotorEvent) error {
	if ev.Node == "" {
		ev.Node = p.Node
	}
	return p.Queue.PubProto(EventTopic(p.Node), ev)
}
