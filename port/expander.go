package port

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pcf8574"

	"latchfw/errcode"
)

// Expander is a PCF8574 I²C I/O expander used as one 8-bit port.
//
// The PCF8574 has no direction register: its lines are quasi-bidirectional
// and only read back an external level while driven high. Input lines are
// therefore always written high and the direction mask is kept here.
type Expander struct {
	dev    *pcf8574.Device
	dir    uint8
	latch  uint8
	driven uint8 // levels last written to the chip
	fresh  bool  // no line written yet
}

// NewExpander binds a PCF8574 at the driver's default address on bus.
func NewExpander(bus drivers.I2C) *Expander {
	dev := pcf8574.New(bus)
	dev.Configure(pcf8574.Config{})
	return &Expander{dev: dev, latch: 0xFF, fresh: true}
}

func (e *Expander) SetDirection(mask uint8) error {
	e.dir = mask
	return e.flush(e.latch)
}

func (e *Expander) Read() (uint8, error) {
	s, err := e.dev.Read()
	if err != nil {
		return 0, errcode.Wrap(errcode.MapDriverErr(err), "pcf8574.read", err)
	}
	var v uint8
	for i := uint8(0); i < 8; i++ {
		if s.Pin(i) {
			v |= 1 << i
		}
	}
	return v, nil
}

func (e *Expander) Write(v uint8) error {
	return e.flush(v)
}

// flush drives output lines from v and input lines high, touching only the
// lines whose level changes.
func (e *Expander) flush(v uint8) error {
	want := v | ^e.dir
	for i := uint8(0); i < 8; i++ {
		bit := uint8(1) << i
		if !e.fresh && want&bit == e.driven&bit {
			continue
		}
		if err := e.dev.SetPin(i, want&bit != 0); err != nil {
			return errcode.Wrap(errcode.MapDriverErr(err), "pcf8574.set", err)
		}
		e.driven = e.driven&^bit | want&bit
	}
	e.fresh = false
	e.latch = v
	return nil
}
