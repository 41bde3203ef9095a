package firmware

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestDelayCycles(t *testing.T) {
	cases := []struct {
		hz   uint32
		d    time.Duration
		want uint64
	}{
		{CPUHz, DefaultDelay, 480_000},
		{CPUHz, 80 * time.Millisecond, 640_000},
		{CPUHz, 0, 0},
		{1_000_000, time.Nanosecond, 1}, // rounds up
		{2_000_000_000, 10 * time.Second, 20_000_000_000},
		{3_000_000_000, 10 * time.Second, 30_000_000_000},
		{4_000_000_000, 10 * time.Second, 40_000_000_000},
		{math.MaxUint32, time.Second, math.MaxUint32},
		{math.MaxUint32, math.MaxInt64, math.MaxUint64}, // saturates
	}
	for _, c := range cases {
		if got := DelayCycles(c.hz, c.d); got != c.want {
			t.Fatalf("DelayCycles(%d, %v) = %d, want %d", c.hz, c.d, got, c.want)
		}
	}
	if got := CyclesDuration(CPUHz, 480_000); got != DefaultDelay {
		t.Fatalf("CyclesDuration = %v", got)
	}
	if CyclesDuration(0, 10) != 0 {
		t.Fatal("zero frequency should yield zero duration")
	}
	if got := CyclesDuration(4_000_000_000, 40_000_000_000); got != 10*time.Second {
		t.Fatalf("CyclesDuration at 4GHz = %v", got)
	}
	if got := CyclesDuration(1, math.MaxUint64); got != math.MaxInt64 {
		t.Fatalf("CyclesDuration should saturate, got %v", got)
	}
}

func TestBusyClockCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	start := time.Now()
	if err := (BusyClock{}).Delay(ctx, time.Second); err != context.Canceled {
		t.Fatalf("Delay err = %v", err)
	}
	if el := time.Since(start); el > 500*time.Millisecond {
		t.Fatalf("cancelled busy delay returned after %v", el)
	}
}

func TestSleepClockCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := (SleepClock{}).Delay(ctx, time.Hour); err != context.Canceled {
		t.Fatalf("Delay err = %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("cancelled delay should return promptly")
	}
}

func TestBusyClockWaits(t *testing.T) {
	start := time.Now()
	if err := (BusyClock{}).Delay(context.Background(), 5*time.Millisecond); err != nil {
		t.Fatalf("Delay: %v", err)
	}
	if el := time.Since(start); el < 5*time.Millisecond {
		t.Fatalf("busy delay returned after %v", el)
	}
}

func TestNoDelay(t *testing.T) {
	c := NoDelay{Clock: SleepClock{}}
	start := time.Now()
	if err := c.Delay(context.Background(), time.Hour); err != nil {
		t.Fatalf("Delay: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("NoDelay should not wait")
	}
}
