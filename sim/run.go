// Package sim runs the firmware loop against a scripted button on virtual
// time, so behaviour that depends on the debounce delay can be checked
// without waiting for it.
package sim

import (
	"context"
	"errors"
	"time"

	"latchfw/errcode"
	"latchfw/firmware"
	"latchfw/port"
)

// Record is one transition seen on the output latch.
type Record struct {
	At     time.Duration
	Sample int
	Kind   firmware.TransitionKind
	State  firmware.ButtonState
	Latch  uint8
}

// Trace is the outcome of a run.
type Trace struct {
	Name    string
	Initial uint8 // latch written at init, before any sampling
	Records []Record
	Errors  []error
	Samples uint64
	Final   uint8 // output port latch at the end
	End     time.Duration
	Writes  int // output port writes, init included
}

// States lists the button state after each transition.
func (t *Trace) States() []firmware.ButtonState {
	out := make([]firmware.ButtonState, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.State
	}
	return out
}

// Latches lists the output latch after each transition.
func (t *Trace) Latches() []uint8 {
	out := make([]uint8, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Latch
	}
	return out
}

// Run plays a scenario.
func Run(ctx context.Context, sc Scenario) (*Trace, error) {
	sig, err := sc.Signal()
	if err != nil {
		return nil, err
	}
	cfg, err := sc.LoopConfig()
	if err != nil {
		return nil, err
	}
	cost, err := sc.Cost()
	if err != nil {
		return nil, err
	}
	tr, err := Simulate(ctx, cfg, sig, Options{SampleCost: cost, NoDelay: sc.NoDelay})
	if tr != nil {
		tr.Name = sc.Name
	}
	return tr, err
}

// Options tune a simulation.
type Options struct {
	SampleCost time.Duration // virtual time per input read
	NoDelay    bool          // wrap the clock in firmware.NoDelay
}

// Simulate runs the loop until src is exhausted or ctx is done.
func Simulate(ctx context.Context, cfg firmware.Config, src Source, opt Options) (*Trace, error) {
	if src == nil {
		return nil, errcode.InvalidParams
	}
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clk := NewVirtualClock()
	out := port.NewMem()
	in := &stimPort{Mem: port.NewMem(), clk: clk, src: src, cost: opt.SampleCost, bit: cfg.Bit & 7, done: cancel}

	var fc firmware.Clock = clk
	if opt.NoDelay {
		fc = firmware.NoDelay{Clock: clk}
	}

	tr := &Trace{}
	em := firmware.EmitterFunc(func(ev firmware.Event) bool {
		switch ev.Kind {
		case firmware.EventInit:
			tr.Initial = ev.Latch
		case firmware.EventTransition:
			tr.Records = append(tr.Records, Record{
				At:     clk.Since(ev.At),
				Sample: in.n - 1,
				Kind:   ev.Transition,
				State:  ev.State,
				Latch:  ev.Latch,
			})
		case firmware.EventError:
			if rctx.Err() == nil {
				tr.Errors = append(tr.Errors, ev.Err)
			}
		}
		return true
	})

	loop := firmware.NewLoop(cfg, out, in, fc, em)
	err := loop.Run(rctx)

	tr.Samples = loop.Samples()
	tr.Final = out.Latch()
	tr.Writes = out.Writes()
	tr.End = clk.Elapsed()

	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() == nil {
		err = nil
	}
	return tr, err
}

// stimPort is an input port whose external button line follows a Source.
// Each read costs virtual time; reading past the end of the source stops
// the run.
type stimPort struct {
	*port.Mem
	clk  *VirtualClock
	src  Source
	cost time.Duration
	bit  uint8
	n    int
	done context.CancelFunc
}

func (p *stimPort) Read() (uint8, error) {
	p.clk.Advance(p.cost)
	at, n := p.clk.Elapsed(), p.n
	if p.src.Done(at, n) {
		p.done()
		return 0, context.Canceled
	}
	p.n++
	p.Mem.SetLine(p.bit, !p.src.Pressed(at, n))
	return p.Mem.Read()
}
