//go:build !rp2040 && !rp2350

package main

import (
	"io"
	"os"
)

func consoleOutput() io.Writer { return os.Stdout }
