package sim

import (
	"strconv"
	"time"

	"github.com/google/shlex"

	"latchfw/errcode"
)

// Source decides the button level seen by each input sample.
type Source interface {
	// Pressed reports the level for sample n taken at simulated time at.
	Pressed(at time.Duration, n int) bool
	// Done reports whether the stimulus is exhausted.
	Done(at time.Duration, n int) bool
}

// Segment holds the button at one level for a while.
type Segment struct {
	Pressed bool
	For     time.Duration
}

// Signal is a piecewise-constant button level over simulated time.
type Signal []Segment

func (s Signal) Duration() time.Duration {
	var d time.Duration
	for _, seg := range s {
		d += seg.For
	}
	return d
}

// Pressed returns the level at time at; past the end the button is released.
func (s Signal) Pressed(at time.Duration, _ int) bool {
	var t time.Duration
	for _, seg := range s {
		t += seg.For
		if at < t {
			return seg.Pressed
		}
	}
	return false
}

func (s Signal) Done(at time.Duration, _ int) bool { return at >= s.Duration() }

// Samples gives the level of each input sample by index, independent of
// time.
type Samples []bool

func (s Samples) Pressed(_ time.Duration, n int) bool { return n < len(s) && s[n] }
func (s Samples) Done(_ time.Duration, n int) bool    { return n >= len(s) }

// ParseStep parses one stimulus line:
//
//	press <duration>
//	release <duration>
//	tap <pressed> <released> [count]
func ParseStep(line string) ([]Segment, error) {
	f, err := shlex.Split(line)
	if err != nil {
		return nil, errcode.Wrap(errcode.InvalidParams, "step", err)
	}
	if len(f) == 0 {
		return nil, nil
	}
	bad := &errcode.E{C: errcode.InvalidParams, Op: "step", Msg: line}
	switch f[0] {
	case "press", "hold", "low":
		if len(f) != 2 {
			return nil, bad
		}
		d, err := parseDuration(f[1])
		if err != nil {
			return nil, bad
		}
		return []Segment{{Pressed: true, For: d}}, nil
	case "release", "idle", "high":
		if len(f) != 2 {
			return nil, bad
		}
		d, err := parseDuration(f[1])
		if err != nil {
			return nil, bad
		}
		return []Segment{{Pressed: false, For: d}}, nil
	case "tap":
		if len(f) != 3 && len(f) != 4 {
			return nil, bad
		}
		on, err1 := parseDuration(f[1])
		off, err2 := parseDuration(f[2])
		if err1 != nil || err2 != nil {
			return nil, bad
		}
		n := 1
		if len(f) == 4 {
			if n, err = strconv.Atoi(f[3]); err != nil || n < 1 {
				return nil, bad
			}
		}
		out := make([]Segment, 0, 2*n)
		for i := 0; i < n; i++ {
			out = append(out, Segment{Pressed: true, For: on}, Segment{Pressed: false, For: off})
		}
		return out, nil
	default:
		return nil, bad
	}
}

// ParseSignal concatenates the segments of each step line.
func ParseSignal(lines []string) (Signal, error) {
	var sig Signal
	for _, l := range lines {
		segs, err := ParseStep(l)
		if err != nil {
			return nil, err
		}
		sig = append(sig, segs...)
	}
	return sig, nil
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errcode.InvalidParams
	}
	return d, nil
}
