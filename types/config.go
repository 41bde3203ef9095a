package types

// ---- Firmware configuration (config/firmware) ----

// Port kinds understood by the port providers.
const (
	PortMem     = "mem"     // in-memory register model (host, tests)
	PortPins    = "pins"    // eight MCU GPIOs grouped as one port
	PortPCF8574 = "pcf8574" // I²C 8-bit I/O expander
)

// Toggle modes.
const (
	ModeLiteral = "literal" // toggle on every pressed sample after the delay
	ModeEdge    = "edge"    // toggle once per released→pressed edge (deviation)
)

// PortRef names and locates one 8-bit port.
type PortRef struct {
	Name string `json:"name"`           // registry key, e.g. "portb"
	Type string `json:"type"`           // PortMem | PortPins | PortPCF8574
	Pins []int  `json:"pins,omitempty"` // PortPins: bit i -> GPIO number, -1 = unused
	Bus  string `json:"bus,omitempty"`  // PortPCF8574: "i2c0" | "i2c1"
}

type FirmwareConfig struct {
	Output PortRef `json:"output"`
	Input  PortRef `json:"input"`

	// Bit is the button bit on the input port and the toggled bit on the
	// output latch.
	Bit uint8 `json:"bit"`

	// InputDirection is written to the input port's direction register
	// (1 = output). 0x00 makes every line an input.
	InputDirection uint8 `json:"input_direction"`

	DelayMs uint16 `json:"delay_ms"` // debounce busy-wait after each toggle
	PollMs  uint16 `json:"poll_ms"`  // idle wait between released samples, 0 = yield only
	CPUHz   uint32 `json:"cpu_hz"`   // parameterises the busy-wait
	Busy    bool   `json:"busy"`     // spin instead of sleeping
	Mode    string `json:"mode"`     // ModeLiteral (default) | ModeEdge

	// ReplicateSeed reproduces the unused pseudo-random seeding at boot.
	ReplicateSeed bool `json:"replicate_seed,omitempty"`
}

type HeartbeatConfig struct {
	IntervalS uint16 `json:"interval_s"`
}
