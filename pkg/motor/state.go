package motor

// State is the commanded direction of a DC motor.
type State uint8

// Motor states, the values are those used on the wire.
const (
	Clockwise State = iota
	CounterClockwise
	Stopped
)

// IsValid checks if the state is known.
func (s State) IsValid() bool {
	return s <= Stopped
}

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counter-clockwise"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Pattern returns the levels of the two direction pins for the state.
func Pattern(s State) (in1, in2 bool, ok bool) {
	switch s {
	case Clockwise:
		return true, false, true
	case CounterClockwise:
		return false, true, true
	case Stopped:
		return false, false, true
	}
	return false, false, false
}
