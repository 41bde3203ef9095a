package firmware

import (
	"context"
	"math"
	"math/bits"
	"time"

	"latchfw/x/mathx"
)

const (
	// CPUHz is the core clock the busy-wait delay is calibrated for.
	CPUHz uint32 = 8_000_000
	// DefaultDelay is the debounce wait after each toggle.
	DefaultDelay = 60 * time.Millisecond
)

// Clock supplies time and the post-toggle delay.
type Clock interface {
	Now() time.Time
	// Delay blocks for d or until ctx is done, returning ctx.Err() then.
	Delay(ctx context.Context, d time.Duration) error
}

// DelayCycles is the number of CPU cycles a busy-wait of d spends at cpuHz,
// rounded up. The 128-bit product keeps any 32-bit rate exact; counts past
// the uint64 range saturate.
func DelayCycles(cpuHz uint32, d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(cpuHz), uint64(d))
	if hi >= uint64(time.Second) {
		return math.MaxUint64
	}
	q, r := bits.Div64(hi, lo, uint64(time.Second))
	if r != 0 {
		q++
	}
	return q
}

// CyclesDuration converts a cycle count back to wall time at cpuHz,
// saturating at the largest Duration.
func CyclesDuration(cpuHz uint32, cycles uint64) time.Duration {
	if cpuHz == 0 {
		return 0
	}
	hi, lo := bits.Mul64(cycles, uint64(time.Second))
	if hi >= uint64(cpuHz) {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, uint64(cpuHz))
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(q)
}

// SleepClock waits with a timer, letting other goroutines run.
type SleepClock struct{}

func (SleepClock) Now() time.Time { return time.Now() }

func (SleepClock) Delay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// BusyClock spins for the cycle-equivalent of the delay without yielding,
// the way a software delay loop does. Nothing else is sampled meanwhile.
type BusyClock struct {
	CPUHz uint32
}

func (BusyClock) Now() time.Time { return time.Now() }

func (c BusyClock) Delay(ctx context.Context, d time.Duration) error {
	hz := mathx.OrDefault(c.CPUHz, CPUHz)
	deadline := time.Now().Add(CyclesDuration(hz, DelayCycles(hz, d)))
	for n := 0; time.Now().Before(deadline); n++ {
		if n&0x3FF == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return ctx.Err()
}

// NoDelay wraps a clock and drops every delay. Only timing changes; the
// sequence of states visited is the same.
type NoDelay struct {
	Clock
}

func (n NoDelay) Delay(ctx context.Context, _ time.Duration) error { return ctx.Err() }
