package heartbeat

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"latchfw/bus"
	"latchfw/types"
)

type syncBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (w *syncBuf) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.Write(p)
}

func (w *syncBuf) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

func TestHeartbeatReportsLatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bus.NewBus(8)
	conn := b.NewConnection("fw")
	conn.Publish(conn.NewMessage(bus.T("fw", "latch", "value"), types.LatchValue{Latch: 0xFE, Bits: "11111110"}, true))
	conn.Publish(conn.NewMessage(bus.T("config", "heartbeat"), map[string]any{"interval_s": 1.0}, true))

	out := &syncBuf{}
	(&Service{Out: out}).Start(ctx, b.NewConnection("heartbeat"))

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), "heartbeat latch=11111110") {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	s := out.String()
	if !strings.Contains(s, "heartbeat interval set to 1s") {
		t.Fatalf("missing interval line in %q", s)
	}
	if !strings.Contains(s, "heartbeat latch=11111110") {
		t.Fatalf("missing latch line in %q", s)
	}
}
