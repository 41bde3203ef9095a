// Package firmware implements the button-toggled output latch: a GPIO
// initializer, a pure per-sample transition function and the polling loop
// that samples the input port, writes the output latch and waits out the
// debounce delay.
package firmware

import "latchfw/errcode"

// InitialLatch is the output latch at boot: every line high (inactive).
const InitialLatch uint8 = 0xFF

// HardwareState is the register file the transition function works on.
type HardwareState struct {
	Latch  uint8 // output latch (PORTB)
	Input  uint8 // last input sample (PIND)
	DirOut uint8 // output port direction (DDRB)
	DirIn  uint8 // input port direction (DDRD)
}

// ButtonState is the single-bit flip-flop b0.
type ButtonState uint8

const (
	Released ButtonState = iota // b0 = 0
	Pressed                     // b0 = 1
)

func (s ButtonState) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "released"
}

// Mode selects the transition rule.
type Mode uint8

const (
	// ModeLiteral flips the state on every pressed sample, so a held
	// button oscillates at the delay cadence.
	ModeLiteral Mode = iota
	// ModeEdge flips the state only on a released→pressed pin edge.
	ModeEdge
)

func (m Mode) String() string {
	if m == ModeEdge {
		return "edge"
	}
	return "literal"
}

// ParseMode accepts "literal" (or "") and "edge".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "literal":
		return ModeLiteral, nil
	case "edge":
		return ModeEdge, nil
	default:
		return ModeLiteral, errcode.InvalidParams
	}
}

// TransitionKind reports what a Step did.
type TransitionKind uint8

const (
	None TransitionKind = iota
	ToPressed
	ToReleased
)

func (k TransitionKind) String() string {
	switch k {
	case ToPressed:
		return "pressed"
	case ToReleased:
		return "released"
	default:
		return "none"
	}
}

type Transition struct {
	Kind  TransitionKind
	Latch uint8 // latch after the step
}

// Machine holds the button flip-flop for one bit. The same bit index is
// sampled on the input port and toggled on the output latch.
type Machine struct {
	bit  uint8
	mask uint8
	mode Mode

	state       ButtonState
	lastPressed bool // previous sample, edge mode only
}

func NewMachine(bit uint8, mode Mode) *Machine {
	bit &= 7
	return &Machine{bit: bit, mask: 1 << bit, mode: mode}
}

func (m *Machine) Bit() uint8            { return m.bit }
func (m *Machine) State() ButtonState    { return m.state }
func (m *Machine) Pressed(in uint8) bool { return in&m.mask == 0 }

// Step applies one input sample (hw.Input) to the flip-flop and the latch.
// Active-low: a 0 on the button bit means pressed. A released sample never
// changes anything. Only the button bit of hw.Latch is ever modified.
func (m *Machine) Step(hw *HardwareState) Transition {
	pressed := m.Pressed(hw.Input)
	fresh := pressed && !m.lastPressed
	m.lastPressed = pressed

	if !pressed || (m.mode == ModeEdge && !fresh) {
		return Transition{Kind: None, Latch: hw.Latch}
	}
	if m.state == Released {
		m.state = Pressed
		hw.Latch &^= m.mask
		return Transition{Kind: ToPressed, Latch: hw.Latch}
	}
	m.state = Released
	hw.Latch |= m.mask
	return Transition{Kind: ToReleased, Latch: hw.Latch}
}
