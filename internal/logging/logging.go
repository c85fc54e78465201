// Package logging provides the injectable logging seam used across the
// emulator core. Components never call fmt/os directly on the hot path;
// they hold a Logger and call it only on exceptional paths (faults,
// unsupported opcodes, loader errors).
package logging

import (
	"log"
	"os"
)

// Logger is satisfied by *log.Logger and by NopLogger. Components accept
// this interface rather than a concrete type so callers can redirect
// diagnostics (or silence them entirely) without touching core code.
type Logger interface {
	Printf(format string, args ...any)
}

// StdLogger wraps the standard library logger, writing to stderr with a
// microsecond timestamp prefix.
func StdLogger() Logger {
	return log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
}

// NopLogger discards everything. It is the default for tests and for
// embedders that don't want diagnostic output.
type NopLogger struct{}

func (NopLogger) Printf(string, ...any) {}
