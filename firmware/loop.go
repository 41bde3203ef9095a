package firmware

import (
	"context"
	"runtime"
	"time"

	"latchfw/errcode"
	"latchfw/port"
)

// Config parameterises a Loop.
type Config struct {
	Bit            uint8
	Mode           Mode
	Delay          time.Duration // debounce wait after each toggle
	InputDirection uint8         // written to the input port at init

	// Poll is the idle wait between released samples. Zero yields the
	// processor once per sample instead.
	Poll time.Duration

	ReplicateSeed bool
	Seed          int64 // 0 = BootSeed
}

// EventKind classifies what the loop reports.
type EventKind uint8

const (
	EventInit EventKind = iota
	EventTransition
	EventError
)

// Event is one loop report: boot (latch written), a transition, or an
// I/O error.
type Event struct {
	Kind       EventKind
	Transition TransitionKind
	State      ButtonState
	Bit        uint8
	Latch      uint8
	Input      uint8
	At         time.Time
	Err        error
}

// Emitter receives loop events. Emit must not block; false means dropped.
type Emitter interface {
	Emit(ev Event) bool
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ev Event) bool

func (f EmitterFunc) Emit(ev Event) bool { return f(ev) }

// Loop is the polling firmware bound to its ports and clock.
type Loop struct {
	cfg   Config
	out   port.Port
	in    port.Port
	clock Clock
	em    Emitter

	hw      HardwareState
	machine *Machine
	samples uint64
	myNum   uint8 // boot generator draw; never read
}

func NewLoop(cfg Config, out, in port.Port, clock Clock, em Emitter) *Loop {
	if clock == nil {
		clock = SleepClock{}
	}
	if em == nil {
		em = EmitterFunc(func(Event) bool { return true })
	}
	return &Loop{
		cfg:     cfg,
		out:     out,
		in:      in,
		clock:   clock,
		em:      em,
		machine: NewMachine(cfg.Bit, cfg.Mode),
	}
}

// Run initialises the ports and polls until ctx is done. On hardware ctx is
// never cancelled and Run does not return. Initialisation errors are
// returned; sampling and write errors are reported and the loop carries on.
func (l *Loop) Run(ctx context.Context) error {
	hw, err := Initialize(l.out, l.in, l.cfg.InputDirection)
	l.hw = hw
	if err != nil {
		l.emitErr(err)
		return err
	}
	if l.cfg.ReplicateSeed {
		seed := l.cfg.Seed
		if seed == 0 {
			seed = BootSeed
		}
		l.myNum = DeadSeed(seed)
	}
	l.em.Emit(Event{
		Kind:  EventInit,
		State: l.machine.State(),
		Bit:   l.machine.Bit(),
		Latch: l.hw.Latch,
		At:    l.clock.Now(),
	})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		in, err := l.in.Read()
		if err != nil {
			l.emitErr(errcode.Wrap(errcode.MapDriverErr(err), "sample", err))
			if err := l.clock.Delay(ctx, l.cfg.Delay); err != nil {
				return err
			}
			continue
		}
		l.samples++
		l.hw.Input = in

		tr := l.machine.Step(&l.hw)
		if tr.Kind == None {
			if err := l.idle(ctx); err != nil {
				return err
			}
			continue
		}

		if err := l.out.Write(l.hw.Latch); err != nil {
			l.emitErr(errcode.Wrap(errcode.MapDriverErr(err), "latch", err))
		}
		l.em.Emit(Event{
			Kind:       EventTransition,
			Transition: tr.Kind,
			State:      l.machine.State(),
			Bit:        l.machine.Bit(),
			Latch:      l.hw.Latch,
			Input:      in,
			At:         l.clock.Now(),
		})
		if err := l.clock.Delay(ctx, l.cfg.Delay); err != nil {
			return err
		}
	}
}

func (l *Loop) idle(ctx context.Context) error {
	if l.cfg.Poll > 0 {
		return l.clock.Delay(ctx, l.cfg.Poll)
	}
	runtime.Gosched()
	return nil
}

func (l *Loop) emitErr(err error) {
	l.em.Emit(Event{
		Kind:  EventError,
		Bit:   l.machine.Bit(),
		Latch: l.hw.Latch,
		At:    l.clock.Now(),
		Err:   err,
	})
}

// Samples counts successful input reads. Only safe to call when Run is
// not executing.
func (l *Loop) Samples() uint64 { return l.samples }

// State returns the button flip-flop. Same caveat as Samples.
func (l *Loop) State() ButtonState { return l.machine.State() }
