package link

import (
	"context"
	"sync"

	"github.com/robotalks/ecu.go/pkg/uart"
)

// testTransport loops sent bytes back to the receiver. Receiving from an
// empty queue blocks until the context ends.
type testTransport struct {
	lock    sync.Mutex
	queue   []byte
	sent    []byte
	faults  map[int]uart.Status
	recvd   int
	sendErr error
	notify  chan struct{}
}

func newTestTransport() *testTransport {
	return &testTransport{faults: make(map[int]uart.Status), notify: make(chan struct{}, 1)}
}

func (t *testTransport) SendByte(ctx context.Context, b byte) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, b)
	t.queue = append(t.queue, b)
	select {
	case t.notify <- struct{}{}:
	default:
	}
	return nil
}

func (t *testTransport) ReceiveByte(ctx context.Context) (byte, error) {
	for {
		t.lock.Lock()
		if len(t.queue) > 0 {
			b := t.queue[0]
			t.queue = t.queue[1:]
			fault := t.faults[t.recvd]
			t.recvd++
			t.lock.Unlock()
			if fault != 0 {
				return b, &uart.LineError{Status: fault}
			}
			return b, nil
		}
		t.lock.Unlock()
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-t.notify:
		}
	}
}

func (t *testTransport) inject(p []byte) {
	t.lock.Lock()
	t.queue = append(t.queue, p...)
	t.lock.Unlock()
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

func (t *testTransport) sentBytes() []byte {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]byte(nil), t.sent...)
}
