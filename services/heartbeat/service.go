package heartbeat

import (
	"context"
	"io"
	"time"

	"latchfw/bus"
	"latchfw/types"
	"latchfw/x/jsonx"
	"latchfw/x/mathx"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	topicLatch           = bus.T("fw", "latch", "value")
)

const defaultInterval = time.Second

// Service prints a periodic liveness line with the latest output latch.
// Lines go to Out when set, otherwise to the runtime console via println.
type Service struct {
	Out io.Writer
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	latchSub := conn.Subscribe(topicLatch)
	defer conn.Unsubscribe(cfgSub)
	defer conn.Unsubscribe(latchSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	bits := "--------"
	for {
		select {
		case <-ctx.Done():
			s.line("Info: heartbeat service stopping")
			return
		case t := <-tick.C:
			s.line("Info: " + t.Format("15:04:05") + " heartbeat latch=" + bits)
		case msg := <-latchSub.Channel():
			if lv, ok := msg.Payload.(types.LatchValue); ok {
				bits = lv.Bits
			}
		case msg := <-cfgSub.Channel():
			var c types.HeartbeatConfig
			if err := jsonx.Decode(msg.Payload, &c); err != nil || c.IntervalS == 0 {
				continue
			}
			iv := time.Duration(mathx.Clamp(c.IntervalS, 1, 3600)) * time.Second
			tick.Reset(iv)
			s.line("Info: heartbeat interval set to " + iv.String())
		}
	}
}

func (s *Service) line(text string) {
	if s.Out == nil {
		println(text)
		return
	}
	_, _ = io.WriteString(s.Out, text+"\r\n")
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
