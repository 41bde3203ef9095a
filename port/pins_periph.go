//go:build !rp2040 && !rp2350

package port

import (
	"strconv"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"latchfw/errcode"
)

var (
	hostOnce sync.Once
	hostErr  error
)

func initHost() error {
	hostOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			hostErr = errcode.Wrap(errcode.Unsupported, "gpio.host_init", err)
		}
	})
	return hostErr
}

// PinGroup presents up to eight host GPIOs (GPIO<n> in the periph registry)
// as one port. A negative entry leaves that bit unconnected.
type PinGroup struct {
	mu    sync.Mutex
	pins  [8]gpio.PinIO
	dir   uint8
	latch uint8
}

func NewPinGroup(nums []int) (*PinGroup, error) {
	if len(nums) == 0 || len(nums) > 8 {
		return nil, errcode.InvalidParams
	}
	if err := initHost(); err != nil {
		return nil, err
	}
	g := &PinGroup{latch: 0xFF}
	for i, n := range nums {
		if n < 0 {
			continue
		}
		p := gpioreg.ByName("GPIO" + strconv.Itoa(n))
		if p == nil {
			return nil, &errcode.E{C: errcode.UnknownPin, Op: "gpio.lookup", Msg: "GPIO" + strconv.Itoa(n)}
		}
		g.pins[i] = p
	}
	return g, nil
}

func (g *PinGroup) SetDirection(mask uint8) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dir = mask
	for i, p := range g.pins {
		if p == nil {
			continue
		}
		var err error
		if mask&(1<<i) != 0 {
			err = p.Out(gpio.Level(g.latch&(1<<i) != 0))
		} else {
			err = p.In(gpio.PullUp, gpio.NoEdge)
		}
		if err != nil {
			return errcode.Wrap(errcode.IOError, "gpio."+p.Name(), err)
		}
	}
	return nil
}

func (g *PinGroup) Read() (uint8, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var v uint8
	for i, p := range g.pins {
		if p == nil || p.Read() == gpio.High {
			v |= 1 << i
		}
	}
	return v, nil
}

func (g *PinGroup) Write(v uint8) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latch = v
	for i, p := range g.pins {
		if p == nil || g.dir&(1<<i) == 0 {
			continue
		}
		if err := p.Out(gpio.Level(v&(1<<i) != 0)); err != nil {
			return errcode.Wrap(errcode.IOError, "gpio."+p.Name(), err)
		}
	}
	return nil
}
