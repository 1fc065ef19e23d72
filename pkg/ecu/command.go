// Package ecu defines the command set exchanged between the HMI node and
// the control node.
package ecu

import (
	"errors"
	"strings"

	"github.com/robotalks/ecu.go/pkg/motor"
)

// Command is a motor command sent by the HMI node.
type Command uint8

// Commands, each maps to one motor state.
const (
	Open Command = iota
	Close
	Stop
)

// Replies sent back by the control node.
const (
	ReplyACK = "ACK"
	ReplyNAK = "NAK"
)

// ErrUnknownCommand indicates the text isn't a known command.
var ErrUnknownCommand = errors.New("unknown command")

var commandNames = [...]string{
	Open:  "OPEN",
	Close: "CLOSE",
	Stop:  "STOP",
}

var commandStates = [...]motor.State{
	Open:  motor.Clockwise,
	Close: motor.CounterClockwise,
	Stop:  motor.Stopped,
}

// ParseCommand parses the text of a command, case-insensitive.
func ParseCommand(s string) (Command, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for n, name := range commandNames {
		if s == name {
			return Command(n), nil
		}
	}
	return 0, ErrUnknownCommand
}

// CommandFor returns the command which drives the motor into state.
func CommandFor(state motor.State) (Command, bool) {
	for n, s := range commandStates {
		if s == state {
			return Command(n), true
		}
	}
	return 0, false
}

// IsValid checks if the command is known.
func (c Command) IsValid() bool {
	return int(c) < len(commandNames)
}

// String returns the wire text of the command.
func (c Command) String() string {
	if !c.IsValid() {
		return "UNKNOWN"
	}
	return commandNames[c]
}

// State returns the motor state the command asks for.
func (c Command) State() motor.State {
	if !c.IsValid() {
		return motor.State(0xff)
	}
	return commandStates[c]
}
