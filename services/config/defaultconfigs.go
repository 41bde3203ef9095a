package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board name (same value placed in ctx via WithDevice)
// Val: raw JSON bytes for that board
// -----------------------------------------------------------------------------

// Pico: LED bar on GP8..GP15 as port B, button on GP16 (active-low, pulled
// up) as bit 0 of port D.
const cfgPico = `{
  "firmware": {
    "output": {"name": "portb", "type": "pins", "pins": [8, 9, 10, 11, 12, 13, 14, 15]},
    "input":  {"name": "portd", "type": "pins", "pins": [16, -1, -1, -1, -1, -1, -1, -1]},
    "bit": 0,
    "input_direction": 0,
    "delay_ms": 60,
    "cpu_hz": 8000000,
    "busy": true,
    "mode": "literal"
  },
  "heartbeat": {
    "interval_s": 2
  }
}`

// Pico with a PCF8574 expander board: outputs on the expander at i2c0,
// button on GP16.
const cfgPicoExpander = `{
  "firmware": {
    "output": {"name": "portb", "type": "pcf8574", "bus": "i2c0"},
    "input":  {"name": "portd", "type": "pins", "pins": [16]},
    "delay_ms": 60,
    "poll_ms": 1,
    "mode": "literal"
  },
  "heartbeat": {
    "interval_s": 5
  }
}`

// Host: in-memory ports; nothing presses the button unless a test or tool
// drives the input port.
const cfgHost = `{
  "firmware": {
    "output": {"name": "portb", "type": "mem"},
    "input":  {"name": "portd", "type": "mem"},
    "delay_ms": 60,
    "poll_ms": 1,
    "mode": "literal",
    "replicate_seed": true
  },
  "heartbeat": {
    "interval_s": 1
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico":          []byte(cfgPico),
	"pico-expander": []byte(cfgPicoExpander),
	"host":          []byte(cfgHost),
}
