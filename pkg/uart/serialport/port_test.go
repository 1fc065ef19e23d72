package serialport

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tarm/serial"

	"github.com/robotalks/ecu.go/pkg/uart"
)

func TestPortConfig(t *testing.T) {
	regs, err := uart.Encode(uart.Frame8N1(9600), uart.DefaultClock)
	require.NoError(t, err)
	conf := PortConfig("/dev/ttyS0", regs, uart.DefaultClock)
	require.Equal(t, "/dev/ttyS0", conf.Name)
	require.Equal(t, 9600, conf.Baud)
	require.Equal(t, byte(8), conf.Size)
	require.Equal(t, serial.ParityNone, conf.Parity)
	require.Equal(t, serial.Stop1, conf.StopBits)

	cfg := uart.FrameConfig{DataBits: uart.DataBits7, Parity: uart.ParityOdd, StopBits: uart.StopBits2, BaudRate: 76800}
	regs, err = uart.Encode(cfg, uart.DefaultClock)
	require.NoError(t, err)
	conf = PortConfig("COM3", regs, uart.DefaultClock)
	require.Equal(t, 76800, conf.Baud)
	require.Equal(t, byte(7), conf.Size)
	require.Equal(t, serial.ParityOdd, conf.Parity)
	require.Equal(t, serial.Stop2, conf.StopBits)
}

func TestDeviceExchange(t *testing.T) {
	local, remote := net.Pipe()
	dev := New("pipe")
	var opened *serial.Config
	dev.Open = func(c *serial.Config) (io.ReadWriteCloser, error) {
		opened = c
		return local, nil
	}
	ch, err := uart.Open(dev, uart.DefaultClock, uart.Frame8N1(19200))
	require.NoError(t, err)
	defer ch.Close()
	require.NotNil(t, opened)
	require.Equal(t, 19200, opened.Baud)
	require.Equal(t, DefaultReadTimeout, opened.ReadTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go remote.Write([]byte("OK"))
	for _, expect := range []byte("OK") {
		b, err := ch.ReceiveByte(ctx)
		require.NoError(t, err)
		require.Equal(t, expect, b)
	}

	require.NoError(t, ch.SendByte(ctx, 'z'))
	buf := make([]byte, 1)
	_, err = io.ReadFull(remote, buf)
	require.NoError(t, err)
	require.Equal(t, byte('z'), buf[0])
}

func TestDeviceOpenError(t *testing.T) {
	dev := New("missing")
	dev.Open = func(c *serial.Config) (io.ReadWriteCloser, error) {
		return nil, errors.New("no such device")
	}
	_, err := uart.Open(dev, uart.DefaultClock, uart.Frame8N1(9600))
	require.EqualError(t, err, "no such device")
	require.Equal(t, uart.Status(0), dev.Status())
	require.NoError(t, dev.Close())
}

func TestDeviceReadFailure(t *testing.T) {
	local, remote := net.Pipe()
	dev := New("pipe")
	dev.Open = func(c *serial.Config) (io.ReadWriteCloser, error) {
		return local, nil
	}
	ch, err := uart.Open(dev, uart.DefaultClock, uart.Frame8N1(9600))
	require.NoError(t, err)
	remote.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = ch.ReceiveByte(ctx)
	require.Error(t, err)
	require.False(t, errors.Is(err, context.DeadlineExceeded))
	require.NoError(t, ch.Close())
}

func TestDeviceCloseWhileReceiving(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()
	dev := New("pipe")
	dev.Open = func(c *serial.Config) (io.ReadWriteCloser, error) {
		return local, nil
	}
	ch, err := uart.Open(dev, uart.DefaultClock, uart.Frame8N1(9600))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		_, err := ch.ReceiveByte(ctx)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ch.Close())

	err = <-errCh
	require.Error(t, err)
	require.False(t, errors.Is(err, context.DeadlineExceeded))
	require.Equal(t, uart.Status(0), dev.Status())
	require.Equal(t, io.ErrClosedPipe, dev.Err())
	dev.WriteData('x')
	require.Equal(t, byte(0), dev.ReadData())
	require.NoError(t, dev.Close())
}
