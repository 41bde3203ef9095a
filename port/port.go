// Package port presents 8-bit I/O ports (a direction register, an output
// latch and an input register) over different backends.
package port

// Direction masks: a set bit configures that line as an output.
const (
	AllOutputs uint8 = 0xFF
	AllInputs  uint8 = 0x00
)

// Port is one 8-bit GPIO port.
//
// SetDirection writes the data-direction register. Read samples the pin
// register: input lines report the external level, output lines report the
// level being driven. Write replaces the output latch.
type Port interface {
	SetDirection(mask uint8) error
	Read() (uint8, error)
	Write(v uint8) error
}
