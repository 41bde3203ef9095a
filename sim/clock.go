package sim

import (
	"context"
	"sync"
	"time"
)

// VirtualClock is a firmware.Clock on simulated time. Delays advance the
// clock instantly.
type VirtualClock struct {
	mu    sync.Mutex
	epoch time.Time
	now   time.Duration
}

func NewVirtualClock() *VirtualClock {
	return &VirtualClock{epoch: time.Unix(0, 0).UTC()}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch.Add(c.now)
}

// Elapsed is the simulated time since the clock was created.
func (c *VirtualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Since converts an absolute clock reading into elapsed simulated time.
func (c *VirtualClock) Since(t time.Time) time.Duration { return t.Sub(c.epoch) }

func (c *VirtualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

func (c *VirtualClock) Delay(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.Advance(d)
	return nil
}
