package uart

import "math"

const (
	// DefaultClock is the system clock of the ECU boards.
	DefaultClock uint32 = 8000000
	// MaxBaudError is the largest relative rate error accepted.
	MaxBaudError = 0.02

	maxUBRR = 0x0fff
)

// StandardRates are the rates host serial ports commonly accept.
var StandardRates = []uint32{
	1200, 2400, 4800, 9600, 14400, 19200, 28800, 38400,
	57600, 76800, 115200, 230400, 250000, 500000, 1000000,
}

// divisor picks UBRR and the speed mode for the baud rate.
// Both normal (16x) and double speed (8x) sampling are evaluated and the
// smaller rate error wins, normal mode on a tie.
func divisor(clock, baud uint32) (ubrr uint16, double bool, err error) {
	best := -1.0
	for _, dbl := range []bool{false, true} {
		div := uint64(16)
		if dbl {
			div = 8
		}
		scale := div * uint64(baud)
		n := (uint64(clock) + scale/2) / scale
		if n == 0 || n-1 > maxUBRR {
			continue
		}
		actual := float64(clock) / float64(div*n)
		dev := math.Abs(actual-float64(baud)) / float64(baud)
		if best < 0 || dev < best {
			best, ubrr, double = dev, uint16(n-1), dbl
		}
	}
	if best < 0 || best > MaxBaudError {
		return 0, false, &BaudRateError{Clock: clock, BaudRate: baud, Deviation: best}
	}
	return
}

// BaudError returns the relative error of the rate the registers
// produce against the requested rate.
func BaudError(clock uint32, regs Registers, baud uint32) float64 {
	return math.Abs(regs.ActualBaud(clock)-float64(baud)) / float64(baud)
}

// NearestStandardRate snaps a rate to the closest StandardRates entry.
func NearestStandardRate(rate float64) uint32 {
	nearest, best := StandardRates[0], math.Inf(1)
	for _, r := range StandardRates {
		if d := math.Abs(float64(r) - rate); d < best {
			nearest, best = r, d
		}
	}
	return nearest
}
