//go:build !rp2040 && !rp2350

package port

import (
	"sync"

	"tinygo.org/x/drivers"

	"latchfw/errcode"
	"latchfw/types"
	"latchfw/x/strx"
)

// Board names the embedded configuration used on this platform.
func Board() string { return "host" }

// DefaultProvider serves in-memory ports, host GPIO groups and PCF8574
// expanders on two emulated I²C buses.
func DefaultProvider() Provider { return NewHostProvider() }

// HostProvider is the host-side Provider.
type HostProvider struct {
	buses map[string]*HostI2C
}

func NewHostProvider() *HostProvider {
	return &HostProvider{
		buses: map[string]*HostI2C{
			"i2c0": NewHostI2C(),
			"i2c1": NewHostI2C(),
		},
	}
}

// Bus returns the emulated bus with the given id.
func (p *HostProvider) Bus(id string) (*HostI2C, bool) {
	b, ok := p.buses[id]
	return b, ok
}

func (p *HostProvider) Open(ref types.PortRef) (Port, error) {
	switch strx.Coalesce(ref.Type, types.PortMem) {
	case types.PortMem:
		return NewMem(), nil
	case types.PortPCF8574:
		b, ok := p.buses[strx.Coalesce(ref.Bus, defaultBus)]
		if !ok {
			return nil, errcode.UnknownBus
		}
		return NewExpander(b), nil
	case types.PortPins:
		return NewPinGroup(ref.Pins)
	default:
		return nil, errcode.InvalidParams
	}
}

// ----------------------------- I²C (host) ------------------------------------

// HostI2C implements drivers.I2C and behaves like a single PCF8574: writes
// set the output byte, reads return the output byte ANDed with the external
// levels (a line driven low always reads low).
type HostI2C struct {
	mu  sync.Mutex
	out uint8
	ext uint8
	txs int
}

var _ drivers.I2C = (*HostI2C)(nil)

func NewHostI2C() *HostI2C { return &HostI2C{out: 0xFF, ext: 0xFF} }

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.txs++
	if len(w) > 0 {
		h.out = w[len(w)-1]
	}
	for i := range r {
		r[i] = h.out & h.ext
	}
	return nil
}

// SetExternal sets the levels the outside world presents on the lines.
func (h *HostI2C) SetExternal(v uint8) {
	h.mu.Lock()
	h.ext = v
	h.mu.Unlock()
}

// Output returns the last byte written by the controller.
func (h *HostI2C) Output() uint8 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.out
}

func (h *HostI2C) Transactions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.txs
}
