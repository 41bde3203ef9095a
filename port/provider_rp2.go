//go:build rp2040 || rp2350

package port

import (
	"machine"

	"tinygo.org/x/drivers"

	"latchfw/errcode"
	"latchfw/types"
	"latchfw/x/strx"
)

// Board names the embedded configuration used on this platform.
func Board() string { return "pico" }

// DefaultProvider returns the RP2 provider. I²C buses are configured on
// first use at 400 kHz on the board-default pins.
func DefaultProvider() Provider {
	return &rp2Provider{buses: map[string]drivers.I2C{}}
}

type rp2Provider struct {
	buses map[string]drivers.I2C
}

func (p *rp2Provider) Open(ref types.PortRef) (Port, error) {
	switch strx.Coalesce(ref.Type, types.PortPins) {
	case types.PortPins:
		return NewPinGroup(ref.Pins)
	case types.PortPCF8574:
		b, err := p.bus(strx.Coalesce(ref.Bus, defaultBus))
		if err != nil {
			return nil, err
		}
		return NewExpander(b), nil
	case types.PortMem:
		return NewMem(), nil
	default:
		return nil, errcode.InvalidParams
	}
}

func (p *rp2Provider) bus(id string) (drivers.I2C, error) {
	if b, ok := p.buses[id]; ok {
		return b, nil
	}
	var (
		hw       *machine.I2C
		sda, scl machine.Pin
	)
	switch id {
	case "i2c0":
		hw, sda, scl = machine.I2C0, machine.I2C0_SDA_PIN, machine.I2C0_SCL_PIN
	case "i2c1":
		hw, sda, scl = machine.I2C1, machine.I2C1_SDA_PIN, machine.I2C1_SCL_PIN
	default:
		return nil, errcode.UnknownBus
	}
	if err := hw.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       sda,
		SCL:       scl,
	}); err != nil {
		return nil, errcode.Wrap(errcode.UnknownBus, "i2c.configure", err)
	}
	p.buses[id] = hw
	return hw, nil
}
