package uart

import (
	"fmt"
	"strconv"
	"strings"
)

// DataBits is the number of data bits in a frame.
type DataBits uint8

// Supported data bits.
const (
	DataBits5 DataBits = 5
	DataBits6 DataBits = 6
	DataBits7 DataBits = 7
	DataBits8 DataBits = 8
)

// IsValid checks if the width is supported.
func (b DataBits) IsValid() bool {
	return b >= DataBits5 && b <= DataBits8
}

// Mask returns the bits of a byte which fit in the frame.
func (b DataBits) Mask() byte {
	return byte(0xff >> (8 - b))
}

// Parity selects the parity bit. The values are those of the UPM1:0 field.
type Parity uint8

// Supported parity modes.
const (
	ParityNone Parity = 0
	ParityEven Parity = 2
	ParityOdd  Parity = 3
)

// IsValid checks if the parity mode is supported.
func (p Parity) IsValid() bool {
	return p == ParityNone || p == ParityEven || p == ParityOdd
}

// String returns the single letter used in frame notation.
func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "N"
	case ParityEven:
		return "E"
	case ParityOdd:
		return "O"
	}
	return "?"
}

// StopBits is the number of stop bits.
type StopBits uint8

// Supported stop bits.
const (
	StopBits1 StopBits = 1
	StopBits2 StopBits = 2
)

// IsValid checks if the number of stop bits is supported.
func (s StopBits) IsValid() bool {
	return s == StopBits1 || s == StopBits2
}

// FrameConfig describes the framing of one link.
type FrameConfig struct {
	DataBits DataBits
	Parity   Parity
	StopBits StopBits
	BaudRate uint32
}

// NewFrameConfig creates a validated FrameConfig.
func NewFrameConfig(bits DataBits, parity Parity, stop StopBits, baud uint32) (FrameConfig, error) {
	cfg := FrameConfig{DataBits: bits, Parity: parity, StopBits: stop, BaudRate: baud}
	if err := cfg.Validate(); err != nil {
		return FrameConfig{}, err
	}
	return cfg, nil
}

// Frame8N1 is the common 8 data bits, no parity, 1 stop bit frame.
func Frame8N1(baud uint32) FrameConfig {
	return FrameConfig{DataBits: DataBits8, Parity: ParityNone, StopBits: StopBits1, BaudRate: baud}
}

// Validate checks all fields are set to supported values.
func (c FrameConfig) Validate() error {
	if !c.DataBits.IsValid() {
		return &ConfigError{Field: "DataBits", Value: c.DataBits}
	}
	if !c.Parity.IsValid() {
		return &ConfigError{Field: "Parity", Value: uint8(c.Parity)}
	}
	if !c.StopBits.IsValid() {
		return &ConfigError{Field: "StopBits", Value: c.StopBits}
	}
	if c.BaudRate == 0 {
		return &ConfigError{Field: "BaudRate", Value: c.BaudRate}
	}
	return nil
}

// String formats the config like "8N1@9600".
func (c FrameConfig) String() string {
	return fmt.Sprintf("%d%s%d@%d", c.DataBits, c.Parity, c.StopBits, c.BaudRate)
}

// ParseFrameConfig parses the "8N1@9600" notation.
func ParseFrameConfig(s string) (FrameConfig, error) {
	var cfg FrameConfig
	items := strings.SplitN(strings.TrimSpace(s), "@", 2)
	if len(items) != 2 || len(items[0]) != 3 {
		return cfg, fmt.Errorf("invalid frame %q, expect format like 8N1@9600", s)
	}
	format := strings.ToUpper(items[0])
	cfg.DataBits = DataBits(format[0] - '0')
	switch format[1] {
	case 'N':
		cfg.Parity = ParityNone
	case 'E':
		cfg.Parity = ParityEven
	case 'O':
		cfg.Parity = ParityOdd
	default:
		return cfg, &ConfigError{Field: "Parity", Value: string(format[1])}
	}
	cfg.StopBits = StopBits(format[2] - '0')
	baud, err := strconv.ParseUint(items[1], 10, 32)
	if err != nil {
		return cfg, fmt.Errorf("invalid baud rate %q: %v", items[1], err)
	}
	cfg.BaudRate = uint32(baud)
	return cfg, cfg.Validate()
}
