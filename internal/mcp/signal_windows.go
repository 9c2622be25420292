//go:build windows

package mcp

import "os"

// shutdownSignals stop a running server. Windows has no SIGTERM.
var shutdownSignals = []os.Signal{os.Interrupt}
