// Package latch runs the button/latch firmware as a bus service: it takes
// its configuration from config/firmware, owns the two ports while the loop
// runs and publishes the latch, button events and its own state under fw/.
package latch

import (
	"context"
	"errors"

	"latchfw/bus"
	"latchfw/errcode"
	"latchfw/firmware"
	"latchfw/port"
	"latchfw/types"
	"latchfw/x/conv"
	"latchfw/x/timex"
)

const (
	owner         = "latch"
	eventQueueLen = 16
)

// ClockFactory chooses the loop's clock for a configuration and the loop
// settings validated from it.
type ClockFactory func(types.FirmwareConfig, firmware.Config) firmware.Clock

type Service struct {
	conn  *bus.Connection
	reg   *port.Registry
	clock ClockFactory

	// Loop → service; all bus publication happens on the service goroutine.
	evCh   chan firmware.Event
	exitCh chan loopExit

	cfg   types.FirmwareConfig
	ready bool
	run   *runner
	last  types.LatchValue
}

// loopExit carries a loop's terminal error with the runner that produced it,
// so an exit from a loop that has since been replaced is ignored.
type loopExit struct {
	r   *runner
	err error
}

type runner struct {
	cancel  context.CancelFunc
	done    chan struct{}
	out, in string
}

func New(conn *bus.Connection, reg *port.Registry) *Service {
	return &Service{
		conn:   conn,
		reg:    reg,
		clock:  clockFor,
		evCh:   make(chan firmware.Event, eventQueueLen),
		exitCh: make(chan loopExit, 1),
	}
}

// WithClock overrides how the loop's clock is chosen.
func (s *Service) WithClock(f ClockFactory) *Service {
	if f != nil {
		s.clock = f
	}
	return s
}

func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig())
	ctrlSub := s.conn.Subscribe(ctrlWildcard())
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.pubState("idle", "awaiting_config")

	for {
		select {
		case <-ctx.Done():
			s.stop()
			s.pubState("stopped", "context_cancelled")
			return

		case msg := <-cfgSub.Channel():
			if msg.Payload == nil {
				continue
			}
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				println("[latch] config decode failed:", err.Error())
				s.pubState("error", string(errcode.Of(err)))
				continue
			}
			if err := s.start(ctx, cfg); err != nil {
				println("[latch] start failed:", err.Error())
				s.pubState("error", string(errcode.Of(err)))
				continue
			}
			s.pubState("ready", "configured")

		case m := <-ctrlSub.Channel():
			s.handleControl(ctx, m)

		case ev := <-s.evCh:
			s.handleEvent(ev)

		case ex := <-s.exitCh:
			if ex.r != s.run {
				continue
			}
			println("[latch] loop exited:", ex.err.Error())
			s.ready = false
			s.pubState("error", string(errcode.Of(ex.err)))
		}
	}
}

// Emit hands a loop event to the service goroutine. Non-blocking.
func (s *Service) Emit(ev firmware.Event) bool {
	select {
	case s.evCh <- ev:
		return true
	default:
		return false
	}
}

// start (re)binds the ports and launches the loop for cfg.
func (s *Service) start(ctx context.Context, cfg types.FirmwareConfig) error {
	lc, err := loopConfig(cfg)
	if err != nil {
		return err
	}
	s.stop()

	out, err := s.reg.Claim(owner, cfg.Output)
	if err != nil {
		return errcode.Wrap(errcode.Of(err), "claim."+cfg.Output.Name, err)
	}
	in, err := s.reg.Claim(owner, cfg.Input)
	if err != nil {
		s.reg.Release(owner, cfg.Output.Name)
		return errcode.Wrap(errcode.Of(err), "claim."+cfg.Input.Name, err)
	}

	rctx, cancel := context.WithCancel(ctx)
	r := &runner{cancel: cancel, done: make(chan struct{}), out: cfg.Output.Name, in: cfg.Input.Name}
	loop := firmware.NewLoop(lc, out, in, s.clock(cfg, lc), s)
	go func() {
		defer close(r.done)
		err := loop.Run(rctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}
		select {
		case s.exitCh <- loopExit{r: r, err: err}:
		default:
		}
	}()

	s.cfg = cfg
	s.run = r
	s.ready = true
	return nil
}

// stop cancels the running loop, waits for it and releases its ports.
func (s *Service) stop() {
	r := s.run
	if r == nil {
		return
	}
	r.cancel()
	<-r.done
	s.reg.Release(owner, r.out)
	s.reg.Release(owner, r.in)
	s.run = nil
	s.ready = false

	// Drop events and any exit from the stopped loop.
	for {
		select {
		case <-s.evCh:
		case <-s.exitCh:
		default:
			return
		}
	}
}

func (s *Service) handleControl(ctx context.Context, m *bus.Message) {
	// fw/control/<verb>
	if m.Topic.Len() != 3 {
		s.replyErr(m, errcode.InvalidTopic)
		return
	}
	verb, _ := m.Topic.At(2).(string)
	if !s.ready {
		s.replyErr(m, errcode.NotReady)
		return
	}
	switch verb {
	case "read":
		if m.CanReply() {
			s.conn.Reply(m, s.last, false)
		}
	case "restart":
		if err := s.start(ctx, s.cfg); err != nil {
			s.pubState("error", string(errcode.Of(err)))
			s.replyErr(m, errcode.Of(err))
			return
		}
		s.pubState("ready", "restarted")
		s.replyOK(m)
	default:
		s.replyErr(m, errcode.Unsupported)
	}
}

func (s *Service) handleEvent(ev firmware.Event) {
	ts := timex.NowMs()
	if !ev.At.IsZero() {
		ts = ev.At.UnixMilli()
	}

	if ev.Kind == firmware.EventError {
		code := errcode.Of(ev.Err)
		println("[latch] io error:", ev.Err.Error())
		s.conn.Publish(s.conn.NewMessage(
			topicStatus(),
			types.PortStatus{Link: types.LinkDegraded, TS: ts, Error: string(code)},
			true,
		))
		return
	}

	s.last = types.LatchValue{Latch: ev.Latch, Bits: conv.Bits8(ev.Latch), TS: ts}
	s.conn.Publish(s.conn.NewMessage(topicLatch(), s.last, true))

	if ev.Kind == firmware.EventTransition {
		s.conn.Publish(s.conn.NewMessage(
			topicButtonEvent(ev.Bit, ev.Transition.String()),
			types.ButtonEvent{Bit: ev.Bit, Pressed: ev.State == firmware.Pressed, Latch: ev.Latch, TS: ts},
			false,
		))
	}

	s.conn.Publish(s.conn.NewMessage(
		topicStatus(),
		types.PortStatus{Link: types.LinkUp, TS: ts},
		true,
	))
}

func (s *Service) pubState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(
		topicState(),
		types.FirmwareState{Level: level, Status: status, TS: timex.NowMs()},
		true,
	))
}

func (s *Service) replyOK(m *bus.Message) {
	if m.CanReply() {
		s.conn.Reply(m, types.OKReply{OK: true}, false)
	}
}

func (s *Service) replyErr(m *bus.Message, code errcode.Code) {
	if !m.CanReply() {
		return
	}
	if code == "" {
		code = errcode.Error
	}
	s.conn.Reply(m, types.ErrorReply{OK: false, Error: string(code)}, false)
}
