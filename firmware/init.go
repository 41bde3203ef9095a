package firmware

import (
	"latchfw/errcode"
	"latchfw/port"
)

// Initialize configures the ports once at boot: the output port as all
// outputs, the input port's direction register to dirIn, then the latch to
// InitialLatch. Direction registers are not written again afterwards.
//
// Boards normally pass port.AllInputs. Passing port.AllOutputs leaves a
// port whose button line reads back its own latch.
func Initialize(out, in port.Port, dirIn uint8) (HardwareState, error) {
	hw := HardwareState{
		Latch:  InitialLatch,
		DirOut: port.AllOutputs,
		DirIn:  dirIn,
	}
	if err := out.SetDirection(hw.DirOut); err != nil {
		return hw, errcode.Wrap(errcode.MapDriverErr(err), "init.dir_out", err)
	}
	if err := in.SetDirection(hw.DirIn); err != nil {
		return hw, errcode.Wrap(errcode.MapDriverErr(err), "init.dir_in", err)
	}
	if err := out.Write(hw.Latch); err != nil {
		return hw, errcode.Wrap(errcode.MapDriverErr(err), "init.latch", err)
	}
	return hw, nil
}
