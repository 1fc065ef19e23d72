package config

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/ecu.go/pkg/motor"
	"github.com/robotalks/ecu.go/pkg/motor/gpio"
	"github.com/robotalks/ecu.go/pkg/mqtt"
	"github.com/robotalks/ecu.go/pkg/uart"
	"github.com/robotalks/ecu.go/pkg/uart/loopback"
	"github.com/robotalks/ecu.go/pkg/uart/serialport"
)

// simLineDepth is the number of bytes in flight on a simulated line.
const simLineDepth = 2

// OpenChannel opens the serial port.
func (c *Config) OpenChannel() (*uart.Channel, error) {
	frame, err := c.FrameConfig()
	if err != nil {
		return nil, err
	}
	dev := serialport.New(c.Device)
	dev.Clock = c.ClockHz()
	ch, err := uart.Open(dev, dev.Clock, frame)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", c.Device, err)
	}
	glog.Infof("serial port %s opened, %s", c.Device, frame)
	return ch, nil
}

// OpenSimChannels opens both ends of an in-process line, the HMI end
// first.
func (c *Config) OpenSimChannels() (*uart.Channel, *uart.Channel, error) {
	frame, err := c.FrameConfig()
	if err != nil {
		return nil, nil, err
	}
	hmiDev, ctlDev := loopback.Pair(simLineDepth)
	hmi, err := uart.Open(hmiDev, c.ClockHz(), frame)
	if err != nil {
		return nil, nil, err
	}
	ctl, err := uart.Open(ctlDev, c.ClockHz(), frame)
	if err != nil {
		hmi.Close()
		return nil, nil, err
	}
	glog.Infof("simulated line opened, %s", frame)
	return hmi, ctl, nil
}

// NewMotor creates the motor on the configured pins, in-memory pins
// when simulating.
func (c *Config) NewMotor() *motor.Motor {
	newPin := func(name string) motor.Pin {
		if c.Simulate {
			return gpio.NewMemPin(name)
		}
		return gpio.NewPeriphPin(name)
	}
	m := motor.New(newPin(c.PinIn1), newPin(c.PinIn2))
	if c.PinEnable != "" {
		m.Enable = newPin(c.PinEnable)
	}
	return m
}

// ConnectQueue connects the MQTT broker, nil is returned when no broker
// is configured.
func (c *Config) ConnectQueue(ctx context.Context) (*mqtt.Queue, error) {
	if c.MQTTBrokerURL == "" {
		return nil, nil
	}
	q, err := mqtt.NewQueueFromURL(c.MQTTBrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT broker URL: %v", err)
	}
	if err = q.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect MQTT broker: %v", err)
	}
	return q, nil
}
