//go:build !rp2040 && !rp2350

package latch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"latchfw/bus"
	"latchfw/errcode"
	"latchfw/firmware"
	"latchfw/port"
	"latchfw/types"
)

func memConfig(mode string) types.FirmwareConfig {
	return types.FirmwareConfig{
		Output:  types.PortRef{Name: "portb", Type: types.PortMem},
		Input:   types.PortRef{Name: "portd", Type: types.PortMem},
		DelayMs: 5,
		PollMs:  1,
		Mode:    mode,
	}
}

type harness struct {
	b    *bus.Bus
	ui   *bus.Connection
	reg  *port.Registry
	stop context.CancelFunc
	done chan struct{}
}

func startService(t *testing.T) *harness {
	return startServiceWith(t, port.NewHostProvider(), nil)
}

func startServiceWith(t *testing.T, prov port.Provider, clock ClockFactory) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	b := bus.NewBus(32)
	reg := port.NewRegistry(prov)
	h := &harness{b: b, ui: b.NewConnection("ui"), reg: reg, stop: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		New(b.NewConnection("latch"), reg).WithClock(clock).Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-h.done
	})
	return h
}

func (h *harness) configure(t *testing.T, cfg types.FirmwareConfig) {
	t.Helper()
	st := h.ui.Subscribe(StateTopic())
	defer h.ui.Unsubscribe(st)
	h.ui.Publish(h.ui.NewMessage(ConfigTopic(), cfg, true))
	waitState(t, st, "ready")
}

func (h *harness) input(t *testing.T) *port.Mem {
	t.Helper()
	p, ok := h.reg.Lookup("portd")
	if !ok {
		t.Fatal("input port not opened")
	}
	return p.(*port.Mem)
}

func waitState(t *testing.T, sub *bus.Subscription, level string) types.FirmwareState {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-sub.Channel():
			st := m.Payload.(types.FirmwareState)
			if st.Level == level {
				return st
			}
		case <-deadline:
			t.Fatalf("timeout waiting for state %q", level)
		}
	}
}

func nextButton(t *testing.T, sub *bus.Subscription) (string, types.ButtonEvent) {
	t.Helper()
	select {
	case m := <-sub.Channel():
		return m.Topic.At(4).(string), m.Payload.(types.ButtonEvent)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for button event")
	}
	return "", types.ButtonEvent{}
}

func request(t *testing.T, c *bus.Connection, verb string) any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := c.RequestWait(ctx, c.NewMessage(ControlTopic(verb), nil, false))
	if err != nil {
		t.Fatalf("%s: %v", verb, err)
	}
	return reply.Payload
}

func TestControlBeforeConfig(t *testing.T) {
	h := startService(t)
	st := h.ui.Subscribe(StateTopic())
	waitState(t, st, "idle")

	got := request(t, h.ui, "read")
	if r, ok := got.(types.ErrorReply); !ok || r.Error != string(errcode.NotReady) {
		t.Fatalf("reply = %#v, want not_ready", got)
	}
}

func TestEdgeModePressRelease(t *testing.T) {
	h := startService(t)
	btn := h.ui.Subscribe(ButtonEvents(0))
	h.configure(t, memConfig(types.ModeEdge))

	in := h.input(t)

	in.SetLine(0, false)
	tag, ev := nextButton(t, btn)
	if tag != "pressed" || !ev.Pressed || ev.Latch != 0xFE {
		t.Fatalf("first event %s %+v", tag, ev)
	}
	time.Sleep(20 * time.Millisecond)
	in.SetLine(0, true)
	time.Sleep(20 * time.Millisecond)
	in.SetLine(0, false)

	tag, ev = nextButton(t, btn)
	if tag != "released" || ev.Pressed || ev.Latch != 0xFF {
		t.Fatalf("second event %s %+v", tag, ev)
	}

	got := request(t, h.ui, "read")
	lv, ok := got.(types.LatchValue)
	if !ok || lv.Latch != 0xFF || lv.Bits != "11111111" {
		t.Fatalf("read reply = %#v", got)
	}
}

func TestLiteralModeOscillatesWhileHeld(t *testing.T) {
	h := startService(t)
	btn := h.ui.Subscribe(ButtonEvents(0))
	h.configure(t, memConfig(types.ModeLiteral))

	h.input(t).SetLine(0, false)
	want := []string{"pressed", "released", "pressed", "released"}
	for i, w := range want {
		tag, ev := nextButton(t, btn)
		if tag != w {
			t.Fatalf("event %d = %s, want %s", i, tag, w)
		}
		if ev.Latch|0x01 != 0xFF {
			t.Fatalf("bits 1-7 changed: %08b", ev.Latch)
		}
	}
}

func TestLatchValueRetainedAfterInit(t *testing.T) {
	h := startService(t)
	h.configure(t, memConfig(""))

	sub := h.ui.Subscribe(LatchTopic())
	select {
	case m := <-sub.Channel():
		if lv := m.Payload.(types.LatchValue); lv.Latch != 0xFF {
			t.Fatalf("initial latch = %08b", lv.Latch)
		}
	case <-time.After(time.Second):
		t.Fatal("no retained latch value")
	}
	out, _ := h.reg.Lookup("portb")
	if out.(*port.Mem).Latch() != 0xFF {
		t.Fatal("output port not initialised")
	}
}

func TestInvalidConfig(t *testing.T) {
	h := startService(t)
	st := h.ui.Subscribe(StateTopic())

	cfg := memConfig("")
	cfg.Input.Name = "portb"
	h.ui.Publish(h.ui.NewMessage(ConfigTopic(), cfg, false))
	if s := waitState(t, st, "error"); s.Status != string(errcode.InvalidParams) {
		t.Fatalf("status = %q", s.Status)
	}

	h.ui.Publish(h.ui.NewMessage(ConfigTopic(), map[string]any{"bit": "zero"}, false))
	if s := waitState(t, st, "error"); s.Status != string(errcode.InvalidPayload) {
		t.Fatalf("status = %q", s.Status)
	}
}

func TestRestartAndUnsupported(t *testing.T) {
	h := startService(t)
	h.configure(t, memConfig(types.ModeEdge))

	if r, ok := request(t, h.ui, "restart").(types.OKReply); !ok || !r.OK {
		t.Fatal("restart should reply ok")
	}
	if r, ok := request(t, h.ui, "explode").(types.ErrorReply); !ok || r.Error != string(errcode.Unsupported) {
		t.Fatal("unknown verb should reply unsupported")
	}
	// Ports are still owned by the service after the restart.
	if _, err := h.reg.Claim("intruder", memConfig("").Output); err != errcode.PortInUse {
		t.Fatalf("claim err = %v, want port_in_use", err)
	}
}

func TestStopReleasesPorts(t *testing.T) {
	h := startService(t)
	h.configure(t, memConfig(types.ModeEdge))

	st := h.ui.Subscribe(StateTopic())
	h.stop()
	waitState(t, st, "stopped")
	<-h.done

	if _, err := h.reg.Claim("next", memConfig("").Output); err != nil {
		t.Fatalf("port not released: %v", err)
	}
}

// stuckDirPort is a memory port whose direction register can be made to
// fail, as a detached expander would.
type stuckDirPort struct {
	*port.Mem
	fail *atomic.Bool
}

func (p stuckDirPort) SetDirection(mask uint8) error {
	if p.fail.Load() {
		return errcode.IOError
	}
	return p.Mem.SetDirection(mask)
}

type stuckDirProvider struct {
	fail atomic.Bool
}

func (p *stuckDirProvider) Open(ref types.PortRef) (port.Port, error) {
	return stuckDirPort{Mem: port.NewMem(), fail: &p.fail}, nil
}

func TestLoopInitFailureThenRecovery(t *testing.T) {
	prov := &stuckDirProvider{}
	prov.fail.Store(true)
	h := startServiceWith(t, prov, nil)
	st := h.ui.Subscribe(StateTopic())

	h.ui.Publish(h.ui.NewMessage(ConfigTopic(), memConfig(types.ModeEdge), false))
	if s := waitState(t, st, "error"); s.Status != string(errcode.IOError) {
		t.Fatalf("status = %q, want io_error", s.Status)
	}
	if r, ok := request(t, h.ui, "read").(types.ErrorReply); !ok || r.Error != string(errcode.NotReady) {
		t.Fatal("read after a failed loop should reply not_ready")
	}

	prov.fail.Store(false)
	h.ui.Publish(h.ui.NewMessage(ConfigTopic(), memConfig(types.ModeEdge), false))
	waitState(t, st, "ready")

	// The earlier loop's exit must not knock the new one over.
	deadline := time.After(50 * time.Millisecond)
	for done := false; !done; {
		select {
		case m := <-st.Channel():
			if s := m.Payload.(types.FirmwareState); s.Level != "ready" {
				t.Fatalf("state after recovery = %+v", s)
			}
		case <-deadline:
			done = true
		}
	}
	if _, ok := request(t, h.ui, "read").(types.LatchValue); !ok {
		t.Fatal("read after recovery should return the latch value")
	}
}

func TestBusyClockUsesValidatedDelay(t *testing.T) {
	got := make(chan time.Duration, 1)
	h := startServiceWith(t, port.NewHostProvider(), func(c types.FirmwareConfig, lc firmware.Config) firmware.Clock {
		select {
		case got <- lc.Delay:
		default:
		}
		return clockFor(c, lc)
	})

	cfg := memConfig(types.ModeEdge)
	cfg.DelayMs = 60_000
	cfg.Busy = true
	h.configure(t, cfg)

	select {
	case d := <-got:
		if d != maxDelayMs*time.Millisecond {
			t.Fatalf("clock saw delay %v, want %v", d, maxDelayMs*time.Millisecond)
		}
	case <-time.After(time.Second):
		t.Fatal("clock factory not called")
	}
}

func TestLoopConfigRejectsCPUHz(t *testing.T) {
	cfg := memConfig("")
	cfg.CPUHz = 4_000_000_000
	if _, err := loopConfig(cfg); err != errcode.InvalidParams {
		t.Fatalf("cpu_hz 4e9: err = %v, want invalid_params", err)
	}
	cfg.CPUHz = 16_000_000
	if _, err := loopConfig(cfg); err != nil {
		t.Fatalf("cpu_hz 16e6: %v", err)
	}
}
