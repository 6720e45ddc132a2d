//go:build windows

package main

import "os"

// SIGTERM is not delivered on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
