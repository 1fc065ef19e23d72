// Package config provides the options shared by the ECU binaries.
package config

import (
	"flag"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"

	ecuenv "github.com/robotalks/ecu.go/pkg/ecu/env"
	"github.com/robotalks/ecu.go/pkg/link"
	"github.com/robotalks/ecu.go/pkg/uart"
)

// Framing modes.
const (
	FramingText   = "text"
	FramingPacket = "packet"
)

// Config defines the options of an ECU node.
type Config struct {
	// Device is the serial port, e.g. /dev/ttyUSB0.
	Device string `yaml:"device" env:"ECU_DEVICE"`
	// Frame is the frame format, e.g. 8N1@9600.
	Frame string `yaml:"frame" env:"ECU_FRAME"`
	// Clock is the reference clock of the baud generator in Hz.
	Clock   uint   `yaml:"clock" env:"ECU_CLOCK"`
	Framing string `yaml:"framing" env:"ECU_FRAMING"`

	Timeout   time.Duration `yaml:"timeout" env:"ECU_TIMEOUT"`
	Retries   int           `yaml:"retries" env:"ECU_RETRIES"`
	MaxLength int           `yaml:"max_length" env:"ECU_MAX_LENGTH"`

	PinIn1    string `yaml:"pin_in1" env:"ECU_PIN_IN1"`
	PinIn2    string `yaml:"pin_in2" env:"ECU_PIN_IN2"`
	PinEnable string `yaml:"pin_enable" env:"ECU_PIN_ENABLE"`

	Simulate bool `yaml:"simulate" env:"ECU_SIMULATE"`

	// MQTTBrokerURL enables the MQTT bridge when not empty.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt" env:"ECU_MQTT_URL"`
	NodeID        string `yaml:"node" env:"ECU_NODE"`
}

var (
	builtinConfig = Config{
		Device:    "/dev/ttyUSB0",
		Frame:     "8N1@9600",
		Clock:     uint(uart.DefaultClock),
		Framing:   FramingText,
		Timeout:   500 * time.Millisecond,
		Retries:   2,
		MaxLength: link.DefaultMaxLength,
		PinIn1:    "GPIO17",
		PinIn2:    "GPIO27",
	}

	defaultConfig = builtinConfig
	configFile    string
)

func init() {
	defaultConfig.NodeID = ecuenv.MachineID()
	builtinConfig.NodeID = defaultConfig.NodeID
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file.")
	defaultConfig.SetupFlagSet(flag.CommandLine)
}

// SetupFlagSet binds the options of c to fs.
func (c *Config) SetupFlagSet(fs *flag.FlagSet) {
	fs.StringVar(&c.Device, "device", c.Device, "Serial device.")
	fs.StringVar(&c.Frame, "frame", c.Frame, "Frame format, e.g. 8N1@9600.")
	fs.UintVar(&c.Clock, "clock", c.Clock, "Baud generator clock in Hz.")
	fs.StringVar(&c.Framing, "framing", c.Framing, "Message framing: text or packet.")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Reply timeout.")
	fs.IntVar(&c.Retries, "retries", c.Retries, "Resends after a reply timeout.")
	fs.IntVar(&c.MaxLength, "max-length", c.MaxLength, "Max text message length.")
	fs.StringVar(&c.PinIn1, "pin-in1", c.PinIn1, "GPIO of H-bridge input 1.")
	fs.StringVar(&c.PinIn2, "pin-in2", c.PinIn2, "GPIO of H-bridge input 2.")
	fs.StringVar(&c.PinEnable, "pin-enable", c.PinEnable, "GPIO of H-bridge enable, optional.")
	fs.BoolVar(&c.Simulate, "sim", c.Simulate, "Run both nodes in process over a loopback line.")
	fs.StringVar(&c.MQTTBrokerURL, "mqtt", c.MQTTBrokerURL, "MQTT broker URL.")
	fs.StringVar(&c.NodeID, "id", c.NodeID, "Node ID.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load resolves the default config after flag.Parse.
func Load() (*Config, error) {
	if err := defaultConfig.Load(flag.CommandLine, configFile, nil); err != nil {
		return nil, err
	}
	return NewConfig(), nil
}

// Load rebuilds c from the built-in defaults, the YAML file, the
// environment and the flags explicitly set on fs, later ones win.
// fs must be bound to c. A nil environ means the process environment.
func (c *Config) Load(fs *flag.FlagSet, file string, environ map[string]string) error {
	explicit := make(map[string]string)
	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			explicit[f.Name] = f.Value.String()
		})
	}
	conf := builtinConfig
	if file != "" {
		if err := LoadFile(file, &conf); err != nil {
			return err
		}
	}
	opts := env.Options{Environment: environ}
	if err := env.Parse(&conf, opts); err != nil {
		return fmt.Errorf("config from environment: %v", err)
	}
	*c = conf
	for name, val := range explicit {
		if err := fs.Set(name, val); err != nil {
			return err
		}
	}
	return c.Validate()
}

// LoadFile merges a YAML file into c.
func LoadFile(file string, c *Config) error {
	content, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}
	if err = yaml.UnmarshalStrict(content, c); err != nil {
		return fmt.Errorf("config file %s: %v", file, err)
	}
	return nil
}

// Validate checks the options.
func (c *Config) Validate() error {
	frame, err := c.FrameConfig()
	if err != nil {
		return err
	}
	if _, err = uart.Encode(frame, c.ClockHz()); err != nil {
		return err
	}
	switch c.Framing {
	case FramingText:
		// commands are ASCII
		if frame.DataBits < uart.DataBits7 {
			return fmt.Errorf("text framing needs 7 or 8 data bits, got %s", frame)
		}
	case FramingPacket:
		if frame.DataBits != uart.DataBits8 {
			return fmt.Errorf("packet framing needs 8 data bits, got %s", frame)
		}
	default:
		return fmt.Errorf("unknown framing %q", c.Framing)
	}
	if c.Retries < 0 {
		return fmt.Errorf("invalid retries %d", c.Retries)
	}
	if c.NodeID == "" {
		return fmt.Errorf("node id required")
	}
	return nil
}

// ClockHz returns Clock, or uart.DefaultClock when it's not set.
func (c *Config) ClockHz() uint32 {
	if c.Clock == 0 {
		return uart.DefaultClock
	}
	return uint32(c.Clock)
}

// FrameConfig parses Frame.
func (c *Config) FrameConfig() (uart.FrameConfig, error) {
	return uart.ParseFrameConfig(c.Frame)
}

// NewMessenger creates the Messenger of the configured framing on t.
func (c *Config) NewMessenger(t link.ByteTransport) link.Messenger {
	if c.Framing == FramingPacket {
		return link.NewPacketConn(t)
	}
	conn := link.NewTextConn(t)
	if c.MaxLength > 0 {
		conn.MaxLength = c.MaxLength
	}
	return conn
}
