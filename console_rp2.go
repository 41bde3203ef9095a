//go:build rp2040 || rp2350

package main

import (
	"io"
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"
)

const consoleBaud = 115200

// consoleOutput mirrors heartbeat lines on UART0. Falls back to the USB
// console if the UART cannot be configured.
func consoleOutput() io.Writer {
	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: consoleBaud,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	}); err != nil {
		println("[main] uart0 configure failed:", err.Error())
		return nil
	}
	return u
}
