package latch

import (
	"time"

	"latchfw/errcode"
	"latchfw/firmware"
	"latchfw/port"
	"latchfw/types"
	"latchfw/x/conv"
	"latchfw/x/jsonx"
	"latchfw/x/mathx"
	"latchfw/x/timex"
)

const (
	maxDelayMs = 10_000
	maxPollMs  = 1_000
	maxCPUHz   = 1_000_000_000
)

func decodeConfig(payload any) (types.FirmwareConfig, error) {
	var c types.FirmwareConfig
	if err := jsonx.Decode(payload, &c); err != nil {
		return c, errcode.Wrap(errcode.InvalidPayload, "config.decode", err)
	}
	return c, nil
}

// loopConfig validates c and fills defaults.
func loopConfig(c types.FirmwareConfig) (firmware.Config, error) {
	if c.Bit > 7 {
		return firmware.Config{}, errcode.InvalidParams
	}
	if c.Output.Name == "" || c.Input.Name == "" || c.Output.Name == c.Input.Name {
		return firmware.Config{}, errcode.InvalidParams
	}
	if c.CPUHz > maxCPUHz {
		return firmware.Config{}, errcode.InvalidParams
	}
	mode, err := firmware.ParseMode(c.Mode)
	if err != nil {
		return firmware.Config{}, err
	}
	delay := mathx.Clamp(mathx.OrDefault(c.DelayMs, uint16(firmware.DefaultDelay/time.Millisecond)), 1, maxDelayMs)

	if mode == firmware.ModeEdge {
		println("[latch] deviation: edge toggle mode (one toggle per press)")
	}
	if c.InputDirection != port.AllInputs {
		var b [2]byte
		println("[latch] note: input direction 0x" + string(conv.U8Hex(b[:], c.InputDirection)) + " drives input lines")
	}

	return firmware.Config{
		Bit:            c.Bit,
		Mode:           mode,
		Delay:          timex.Ms(delay),
		InputDirection: c.InputDirection,
		Poll:           timex.Ms(mathx.Clamp(c.PollMs, 0, maxPollMs)),
		ReplicateSeed:  c.ReplicateSeed,
	}, nil
}

// clockFor picks the delay implementation for c. lc is c after loopConfig.
func clockFor(c types.FirmwareConfig, lc firmware.Config) firmware.Clock {
	if c.Busy {
		hz := mathx.OrDefault(c.CPUHz, firmware.CPUHz)
		n := firmware.DelayCycles(hz, lc.Delay)
		println("[latch] busy delay:", string(conv.AppendUint(nil, n)), "cycles")
		return firmware.BusyClock{CPUHz: hz}
	}
	return firmware.SleepClock{}
}
