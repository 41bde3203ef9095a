// Command latchsim plays button scenarios against the latch firmware on
// virtual time and prints the transitions it produces.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
