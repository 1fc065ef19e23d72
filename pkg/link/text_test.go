package link

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ecu.go/pkg/uart"
	"github.com/robotalks/ecu.go/pkg/uart/loopback"
)

func TestSendString(t *testing.T) {
	testCases := []struct {
		name   string
		in     string
		expect string
		err    error
	}{
		{"plain", "OPEN", "OPEN#", nil},
		{"terminated", "OPEN#", "OPEN#", nil},
		{"empty", "", "#", nil},
		{"sentinel only", "#", "#", nil},
		{"embedded sentinel", "OP#EN", "", ErrSentinelInPayload},
		{"double sentinel", "OPEN##", "", ErrSentinelInPayload},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tr := newTestTransport()
			err := SendString(context.Background(), tr, tc.in)
			require.Equal(t, tc.err, err)
			require.Equal(t, tc.expect, string(tr.sentBytes()))
		})
	}
}

func TestSendStringTransportError(t *testing.T) {
	tr := newTestTransport()
	tr.sendErr = uart.ErrClosed
	require.Equal(t, uart.ErrClosed, SendString(context.Background(), tr, "STOP"))
}

func TestReceiveString(t *testing.T) {
	tr := newTestTransport()
	tr.inject([]byte("OPEN#CLOSE#"))
	buf := make([]byte, 16)

	n, err := ReceiveString(context.Background(), tr, buf)
	require.NoError(t, err)
	require.Equal(t, "OPEN", string(buf[:n]))

	n, err = ReceiveString(context.Background(), tr, buf)
	require.NoError(t, err)
	require.Equal(t, "CLOSE", string(buf[:n]))
}

func TestReceiveStringEmpty(t *testing.T) {
	tr := newTestTransport()
	tr.inject([]byte("#"))
	n, err := ReceiveString(context.Background(), tr, make([]byte, 4))
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestReceiveStringTruncatesAtSentinel(t *testing.T) {
	tr := newTestTransport()
	tr.inject([]byte("OP#EN#"))
	buf := make([]byte, 8)
	n, err := ReceiveString(context.Background(), tr, buf)
	require.NoError(t, err)
	require.Equal(t, "OP", string(buf[:n]))
	n, err = ReceiveString(context.Background(), tr, buf)
	require.NoError(t, err)
	require.Equal(t, "EN", string(buf[:n]))
}

func TestReceiveStringTooLong(t *testing.T) {
	tr := newTestTransport()
	tr.inject([]byte("ABCDEFGH#STOP#"))
	buf := make([]byte, 4)
	n, err := ReceiveString(context.Background(), tr, buf)
	require.Equal(t, ErrMessageTooLong, err)
	require.Equal(t, 4, n)
	require.Equal(t, "ABCD", string(buf))

	n, err = ReceiveString(context.Background(), tr, buf)
	require.NoError(t, err)
	require.Equal(t, "STOP", string(buf[:n]))
}

func TestReceiveStringLineError(t *testing.T) {
	tr := newTestTransport()
	tr.faults[1] = uart.StatusFE
	tr.inject([]byte("OPEN#STOP#"))
	buf := make([]byte, 8)
	n, err := ReceiveString(context.Background(), tr, buf)
	require.IsType(t, &uart.LineError{}, err)
	require.Equal(t, "OPEN", string(buf[:n]))

	n, err = ReceiveString(context.Background(), tr, buf)
	require.NoError(t, err)
	require.Equal(t, "STOP", string(buf[:n]))
}

func TestReceiveStringTimeout(t *testing.T) {
	tr := newTestTransport()
	tr.inject([]byte("OPE"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	buf := make([]byte, 8)
	n, err := ReceiveString(ctx, tr, buf)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Equal(t, 3, n)
}

func randomPayload(r *rand.Rand) string {
	b := make([]byte, r.Intn(48))
	for i := range b {
		for {
			b[i] = byte(r.Intn(256))
			if b[i] != Sentinel {
				break
			}
		}
	}
	return string(b)
}

func TestStringRoundTripOverLoopback(t *testing.T) {
	ch, err := uart.Open(loopback.Loop(64), uart.DefaultClock, uart.Frame8N1(9600))
	require.NoError(t, err)
	ch.PollInterval = time.Microsecond
	ctx := context.Background()

	payloads := []string{"", "OPEN", "CLOSE", "hello world", "\x00\x01\xff"}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		payloads = append(payloads, randomPayload(r))
	}
	buf := make([]byte, 64)
	for _, p := range payloads {
		require.NoError(t, SendString(ctx, ch, p))
		n, err := ReceiveString(ctx, ch, buf)
		require.NoError(t, err)
		require.Equal(t, p, string(buf[:n]))
	}
}

func TestTextConn(t *testing.T) {
	devA, devB := loopback.Pair(4)
	a, err := uart.Open(devA, uart.DefaultClock, uart.Frame8N1(9600))
	require.NoError(t, err)
	b, err := uart.Open(devB, uart.DefaultClock, uart.Frame8N1(9600))
	require.NoError(t, err)
	hmi, ctl := NewTextConn(a), NewTextConn(b)
	ctl.MaxLength = 8
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- hmi.Send(ctx, []byte("OPEN#"))
	}()
	msg, err := ctl.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, "OPEN", string(msg))
	require.NoError(t, <-errCh)

	go func() {
		errCh <- hmi.Send(ctx, []byte("0123456789"))
	}()
	_, err = ctl.Receive(ctx)
	require.Equal(t, ErrMessageTooLong, err)
	require.NoError(t, <-errCh)
}

func TestSendStringFrameWidth(t *testing.T) {
	testCases := []struct {
		name string
		bits uart.DataBits
		in   string
		err  error
	}{
		{"5 bits drops sentinel", uart.DataBits5, "STOP", ErrByteTooWide},
		{"5 bits empty", uart.DataBits5, "", ErrByteTooWide},
		{"6 bits upper case", uart.DataBits6, "STOP", ErrByteTooWide},
		{"7 bits ascii", uart.DataBits7, "STOP", nil},
		{"7 bits high byte", uart.DataBits7, "ST\xd0P", ErrByteTooWide},
		{"8 bits high byte", uart.DataBits8, "ST\xd0P", nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := uart.NewFrameConfig(tc.bits, uart.ParityNone, uart.StopBits1, 9600)
			require.NoError(t, err)
			dev := loopback.Loop(64)
			ch, err := uart.Open(dev, uart.DefaultClock, cfg)
			require.NoError(t, err)
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			require.Equal(t, tc.err, SendString(ctx, ch, tc.in))
			if tc.err != nil {
				// nothing is put on the line
				require.Zero(t, dev.Status()&uart.StatusRXC)
				return
			}
			buf := make([]byte, 16)
			n, err := ReceiveString(ctx, ch, buf)
			require.NoError(t, err)
			require.Equal(t, tc.in, string(buf[:n]))
		})
	}
}
