package link

import (
	"context"
	"errors"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/ecu.go/pkg/uart"
)

// PacketConn implements Messenger with packet framing.
type PacketConn struct {
	Transport ByteTransport

	seq      PacketSeq
	sendLock sync.Mutex
	parser   Parser
	recvLock sync.Mutex
}

// NewPacketConn creates a PacketConn.
func NewPacketConn(t ByteTransport) *PacketConn {
	return &PacketConn{Transport: t, seq: NewPacketSeq()}
}

// Send implements Messenger.
func (c *PacketConn) Send(ctx context.Context, msg []byte) error {
	c.sendLock.Lock()
	defer c.sendLock.Unlock()
	if !c.seq.IsValid() {
		c.seq = c.seq.Next()
	}
	pkt := Packet{Seq: c.seq, Data: msg}
	encoded, err := pkt.Encode()
	if err != nil {
		return err
	}
	if err = checkWidth(c.Transport, encoded); err != nil {
		return err
	}
	for _, b := range encoded {
		if err = c.Transport.SendByte(ctx, b); err != nil {
			return err
		}
	}
	glog.V(2).Infof("link: packet %d sent, %d bytes", pkt.Seq, len(msg))
	c.seq = c.seq.Next()
	return nil
}

// Receive implements Messenger. Frames damaged by line faults or failing
// the checksum are skipped.
func (c *PacketConn) Receive(ctx context.Context) ([]byte, error) {
	c.recvLock.Lock()
	defer c.recvLock.Unlock()
	for {
		b, err := c.Transport.ReceiveByte(ctx)
		if err != nil {
			var lineErr *uart.LineError
			if !errors.As(err, &lineErr) {
				return nil, err
			}
			glog.Warningf("link: %v, frame discarded", err)
			c.parser.Reset()
			continue
		}
		pr := c.parser.Parse(b)
		if pr.Err != nil {
			glog.Warningf("link: frame dropped: %v", pr.Err)
			continue
		}
		if pr.Packet != nil {
			glog.V(2).Infof("link: packet %d received, %d bytes", pr.Packet.Seq, len(pr.Packet.Data))
			if pr.Packet.Data == nil {
				return []byte{}, nil
			}
			return pr.Packet.Data, nil
		}
	}
}

// Dropped returns the number of frames dropped by the receiver.
func (c *PacketConn) Dropped() int {
	c.recvLock.Lock()
	defer c.recvLock.Unlock()
	return c.parser.Dropped
}
