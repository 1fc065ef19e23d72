package motor_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/ecu.go/pkg/motor"
	"github.com/robotalks/ecu.go/pkg/motor/gpio"
)

func newTestMotor(t *testing.T) (*motor.Motor, *gpio.MemPin, *gpio.MemPin) {
	in1, in2 := gpio.NewMemPin("in1"), gpio.NewMemPin("in2")
	m := motor.New(in1, in2)
	require.NoError(t, m.Init())
	return m, in1, in2
}

func levels(in1, in2 *gpio.MemPin) [2]bool {
	return [2]bool{in1.Level(), in2.Level()}
}

func TestPatterns(t *testing.T) {
	testCases := []struct {
		state    motor.State
		in1, in2 bool
	}{
		{motor.Clockwise, true, false},
		{motor.CounterClockwise, false, true},
		{motor.Stopped, false, false},
	}
	seen := make(map[[2]bool]motor.State)
	for _, tc := range testCases {
		t.Run(tc.state.String(), func(t *testing.T) {
			in1, in2, ok := motor.Pattern(tc.state)
			require.True(t, ok)
			require.Equal(t, tc.in1, in1)
			require.Equal(t, tc.in2, in2)
			_, dup := seen[[2]bool{in1, in2}]
			require.False(t, dup)
			seen[[2]bool{in1, in2}] = tc.state
		})
	}
	_, _, ok := motor.Pattern(motor.State(3))
	require.False(t, ok)
}

func TestInitStops(t *testing.T) {
	in1, in2 := gpio.NewMemPin("in1"), gpio.NewMemPin("in2")
	en := gpio.NewMemPin("en")
	m := motor.New(in1, in2)
	m.Enable = en
	require.NoError(t, m.Init())
	require.True(t, in1.Configured())
	require.True(t, in2.Configured())
	require.Equal(t, [2]bool{false, false}, levels(in1, in2))
	require.True(t, en.Level())
}

func TestInitPinFailure(t *testing.T) {
	in1, in2 := gpio.NewMemPin("in1"), gpio.NewMemPin("in2")
	in2.Fail = errors.New("busy")
	m := motor.New(in1, in2)
	require.Error(t, m.Init())
	require.Equal(t, motor.ErrNotInitialized, m.Rotate(motor.Stopped))
}

func TestRotateBeforeInit(t *testing.T) {
	in1, in2 := gpio.NewMemPin("in1"), gpio.NewMemPin("in2")
	m := motor.New(in1, in2)
	require.Equal(t, motor.ErrNotInitialized, m.Rotate(motor.Clockwise))
	require.Empty(t, in1.History())
	require.Empty(t, in2.History())
}

func TestRotateUnknownState(t *testing.T) {
	m, in1, in2 := newTestMotor(t)
	require.NoError(t, m.Rotate(motor.Clockwise))
	before1, before2 := len(in1.History()), len(in2.History())
	require.Equal(t, motor.ErrUnknownState, m.Rotate(motor.State(7)))
	require.Len(t, in1.History(), before1)
	require.Len(t, in2.History(), before2)
	require.Equal(t, [2]bool{true, false}, levels(in1, in2))
}

func TestRotateStoppedIdempotent(t *testing.T) {
	m, in1, in2 := newTestMotor(t)
	require.NoError(t, m.Rotate(motor.Clockwise))
	require.NoError(t, m.Rotate(motor.Stopped))
	once := levels(in1, in2)
	require.NoError(t, m.Rotate(motor.Stopped))
	require.Equal(t, once, levels(in1, in2))
	require.Equal(t, [2]bool{false, false}, once)
}

func TestRotateAnyTransition(t *testing.T) {
	states := []motor.State{motor.Clockwise, motor.CounterClockwise, motor.Stopped}
	for _, from := range states {
		for _, to := range states {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				m, in1, in2 := newTestMotor(t)
				require.NoError(t, m.Rotate(from))
				require.NoError(t, m.Rotate(to))
				p1, p2, _ := motor.Pattern(to)
				require.Equal(t, [2]bool{p1, p2}, levels(in1, in2))
			})
		}
	}
}

type bridge struct {
	levels [2]bool
	shorts int
}

type bridgePin struct {
	b   *bridge
	idx int
}

func (p *bridgePin) Configure() error { return nil }

func (p *bridgePin) Set(high bool) error {
	p.b.levels[p.idx] = high
	if p.b.levels[0] && p.b.levels[1] {
		p.b.shorts++
	}
	return nil
}

func TestRotateNeverShorts(t *testing.T) {
	b := &bridge{}
	m := motor.New(&bridgePin{b: b, idx: 0}, &bridgePin{b: b, idx: 1})
	require.NoError(t, m.Init())
	for _, s := range []motor.State{motor.Clockwise, motor.CounterClockwise, motor.Clockwise, motor.Stopped, motor.CounterClockwise} {
		require.NoError(t, m.Rotate(s))
	}
	require.Zero(t, b.shorts)
	require.Equal(t, [2]bool{false, true}, b.levels)
}

func TestOnRotate(t *testing.T) {
	m, _, _ := newTestMotor(t)
	var got []motor.State
	m.OnRotate = func(s motor.State) { got = append(got, s) }
	require.NoError(t, m.Rotate(motor.CounterClockwise))
	require.Error(t, m.Rotate(motor.State(9)))
	require.NoError(t, m.Rotate(motor.Stopped))
	require.Equal(t, []motor.State{motor.CounterClockwise, motor.Stopped}, got)
}

func TestStateString(t *testing.T) {
	require.Equal(t, "clockwise", motor.Clockwise.String())
	require.Equal(t, "unknown", motor.State(5).String())
	require.True(t, motor.Stopped.IsValid())
	require.False(t, motor.State(3).IsValid())
}
