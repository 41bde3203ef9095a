package types

// ---- Firmware state (retained) ----

type FirmwareState struct {
	Level  string `json:"level"`  // e.g. "idle", "ready", "error", "stopped"
	Status string `json:"status"` // freeform short code
	TS     int64  `json:"ts_ms"`
}

// Link is the link/state reported for the port pair.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded"
)

type PortStatus struct {
	Link  Link   `json:"link"`
	TS    int64  `json:"ts_ms"`
	Error string `json:"error,omitempty"`
}

// ---- Latch + button payloads ----

// LatchValue is the full output latch as last written to the output port.
type LatchValue struct {
	Latch uint8  `json:"latch"`
	Bits  string `json:"bits"` // MSB first, e.g. "11111110"
	TS    int64  `json:"ts_ms"`
}

// ButtonEvent is published on every toggle of the button state.
type ButtonEvent struct {
	Bit     uint8 `json:"bit"`
	Pressed bool  `json:"pressed"`
	Latch   uint8 `json:"latch"`
	TS      int64 `json:"ts_ms"`
}

// ---- Generic replies ----

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
