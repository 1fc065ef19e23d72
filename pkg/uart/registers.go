package uart

import (
	"fmt"
	"math"
)

// Status is the value of the status register (UCSRA).
type Status byte

// Status flags.
const (
	StatusRXC  Status = 1 << 7 // receive complete
	StatusTXC  Status = 1 << 6 // transmit complete
	StatusUDRE Status = 1 << 5 // data register empty
	StatusFE   Status = 1 << 4 // framing error
	StatusDOR  Status = 1 << 3 // data overrun
	StatusPE   Status = 1 << 2 // parity error
	StatusU2X  Status = 1 << 1 // double speed
)

// Faults keeps only the error flags.
func (s Status) Faults() Status {
	return s & (StatusFE | StatusDOR | StatusPE)
}

// Control register bits.
const (
	bitRXEN  byte = 1 << 4 // UCSRB
	bitTXEN  byte = 1 << 3 // UCSRB
	bitURSEL byte = 1 << 7 // UCSRC

	shiftUPM  = 4
	shiftUSBS = 3
	shiftUCSZ = 1
)

// Registers holds the values written to configure a USART.
type Registers struct {
	UCSRA byte
	UCSRB byte
	UCSRC byte
	UBRR  uint16
}

// Encode translates a FrameConfig into register values for the clock.
func Encode(cfg FrameConfig, clock uint32) (Registers, error) {
	var regs Registers
	if err := cfg.Validate(); err != nil {
		return regs, err
	}
	ubrr, double, err := divisor(clock, cfg.BaudRate)
	if err != nil {
		return regs, err
	}
	if double {
		regs.UCSRA = byte(StatusU2X)
	}
	regs.UCSRB = bitRXEN | bitTXEN
	regs.UCSRC = bitURSEL |
		byte(cfg.Parity)<<shiftUPM |
		byte(cfg.StopBits-1)<<shiftUSBS |
		byte(cfg.DataBits-DataBits5)<<shiftUCSZ
	regs.UBRR = ubrr
	return regs, nil
}

// Decode recovers the FrameConfig from register values. BaudRate is the
// rate actually produced, rounded to an integer.
func Decode(regs Registers, clock uint32) FrameConfig {
	return FrameConfig{
		DataBits: DataBits5 + DataBits((regs.UCSRC>>shiftUCSZ)&3),
		Parity:   Parity((regs.UCSRC >> shiftUPM) & 3),
		StopBits: StopBits1 + StopBits((regs.UCSRC>>shiftUSBS)&1),
		BaudRate: uint32(math.Round(regs.ActualBaud(clock))),
	}
}

// DoubleSpeed indicates the U2X mode.
func (r Registers) DoubleSpeed() bool {
	return Status(r.UCSRA)&StatusU2X != 0
}

// Enabled indicates both receiver and transmitter are on.
func (r Registers) Enabled() bool {
	return r.UCSRB&(bitRXEN|bitTXEN) == bitRXEN|bitTXEN
}

// ActualBaud computes the rate the registers produce.
func (r Registers) ActualBaud(clock uint32) float64 {
	div := 16.0
	if r.DoubleSpeed() {
		div = 8
	}
	return float64(clock) / (div * float64(uint32(r.UBRR)+1))
}

// Matches checks both ends of a line use the same frame and timing.
func (r Registers) Matches(o Registers) bool {
	return r.UCSRC == o.UCSRC && r.UBRR == o.UBRR && r.DoubleSpeed() == o.DoubleSpeed()
}

// String implements fmt.Stringer.
func (r Registers) String() string {
	return fmt.Sprintf("UCSRA=%02x UCSRB=%02x UCSRC=%02x UBRR=%d", r.UCSRA, r.UCSRB, r.UCSRC, r.UBRR)
}
