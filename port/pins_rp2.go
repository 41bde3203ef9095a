//go:build rp2040 || rp2350

package port

import (
	"machine"

	"latchfw/errcode"
)

// PinGroup presents up to eight GPIOs as one port. Bit i maps to pins[i];
// a negative entry leaves that bit unconnected (reads high, ignores writes).
type PinGroup struct {
	pins  [8]machine.Pin
	dir   uint8
	latch uint8
}

func NewPinGroup(nums []int) (*PinGroup, error) {
	if len(nums) == 0 || len(nums) > 8 {
		return nil, errcode.InvalidParams
	}
	g := &PinGroup{latch: 0xFF}
	for i := range g.pins {
		g.pins[i] = machine.NoPin
	}
	for i, n := range nums {
		if n < 0 {
			continue
		}
		// RP2 user GPIOs are GP0..GP28.
		if n > 28 {
			return nil, errcode.UnknownPin
		}
		g.pins[i] = machine.Pin(n)
	}
	return g, nil
}

func (g *PinGroup) SetDirection(mask uint8) error {
	g.dir = mask
	for i, p := range g.pins {
		if p == machine.NoPin {
			continue
		}
		if mask&(1<<i) != 0 {
			p.Configure(machine.PinConfig{Mode: machine.PinOutput})
			p.Set(g.latch&(1<<i) != 0)
		} else {
			p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		}
	}
	return nil
}

func (g *PinGroup) Read() (uint8, error) {
	var v uint8
	for i, p := range g.pins {
		if p == machine.NoPin || p.Get() {
			v |= 1 << i
		}
	}
	return v, nil
}

func (g *PinGroup) Write(v uint8) error {
	g.latch = v
	for i, p := range g.pins {
		if p == machine.NoPin || g.dir&(1<<i) == 0 {
			continue
		}
		p.Set(v&(1<<i) != 0)
	}
	return nil
}
