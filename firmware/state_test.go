package firmware

import "testing"

const (
	up   uint8 = 0xFF // button released
	down uint8 = 0xFE // button on bit 0 pressed
)

func stepAll(m *Machine, hw *HardwareState, samples ...uint8) []TransitionKind {
	var out []TransitionKind
	for _, s := range samples {
		hw.Input = s
		out = append(out, m.Step(hw).Kind)
	}
	return out
}

func TestStepLiteral(t *testing.T) {
	cases := []struct {
		name      string
		samples   []uint8
		want      []TransitionKind
		wantLatch uint8
		wantState ButtonState
	}{
		{
			name:      "released never toggles",
			samples:   []uint8{up, up, up},
			want:      []TransitionKind{None, None, None},
			wantLatch: 0xFF,
			wantState: Released,
		},
		{
			name:      "single short press clears bit 0",
			samples:   []uint8{up, down, up, up},
			want:      []TransitionKind{None, ToPressed, None, None},
			wantLatch: 0xFE,
			wantState: Pressed,
		},
		{
			name:      "second press sets bit 0 again",
			samples:   []uint8{down, up, down, up},
			want:      []TransitionKind{ToPressed, None, ToReleased, None},
			wantLatch: 0xFF,
			wantState: Released,
		},
		{
			name:      "held press oscillates every sample",
			samples:   []uint8{down, down, down, down, down},
			want:      []TransitionKind{ToPressed, ToReleased, ToPressed, ToReleased, ToPressed},
			wantLatch: 0xFE,
			wantState: Pressed,
		},
		{
			name:      "other input bits are ignored",
			samples:   []uint8{0x01, 0x00},
			want:      []TransitionKind{None, ToPressed},
			wantLatch: 0xFE,
			wantState: Pressed,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := NewMachine(0, ModeLiteral)
			hw := HardwareState{Latch: InitialLatch}
			got := stepAll(m, &hw, c.samples...)
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Fatalf("step %d: got %v, want %v (all=%v)", i, got[i], c.want[i], got)
				}
			}
			if hw.Latch != c.wantLatch {
				t.Fatalf("latch = %08b, want %08b", hw.Latch, c.wantLatch)
			}
			if m.State() != c.wantState {
				t.Fatalf("state = %v, want %v", m.State(), c.wantState)
			}
		})
	}
}

func TestStepEdgeModeTogglesOncePerPress(t *testing.T) {
	m := NewMachine(0, ModeEdge)
	hw := HardwareState{Latch: InitialLatch}

	got := stepAll(m, &hw, down, down, down, up, down, down, up)
	want := []TransitionKind{ToPressed, None, None, None, ToReleased, None, None}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if hw.Latch != 0xFF {
		t.Fatalf("latch = %08b", hw.Latch)
	}
}

func TestStepOnlyTouchesButtonBit(t *testing.T) {
	for bit := uint8(0); bit < 8; bit++ {
		mask := uint8(1) << bit
		for _, mode := range []Mode{ModeLiteral, ModeEdge} {
			m := NewMachine(bit, mode)
			hw := HardwareState{Latch: InitialLatch}
			// Walk every input byte twice; any pattern of presses.
			for i := 0; i < 512; i++ {
				hw.Input = uint8(i * 37)
				m.Step(&hw)
				if hw.Latch|mask != 0xFF {
					t.Fatalf("bit %d mode %v: latch %08b touched other bits", bit, mode, hw.Latch)
				}
				wantBit := m.State() == Released
				if (hw.Latch&mask != 0) != wantBit {
					t.Fatalf("bit %d: latch %08b disagrees with state %v", bit, hw.Latch, m.State())
				}
			}
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeLiteral, "literal": ModeLiteral, "edge": ModeEdge} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("level"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestNewMachineMasksBit(t *testing.T) {
	if m := NewMachine(9, ModeLiteral); m.Bit() != 1 {
		t.Fatalf("Bit = %d, want 1", m.Bit())
	}
}
