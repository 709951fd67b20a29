// Package logging provides level-based ambient logging for gateway
// operational diagnostics (connects, disconnects, shutdown). It is
// distinct from a sandbox execution's own logs buffer, which never passes
// through here.
package logging

import (
	"io"
	"log"
	"os"
)

// Logger wraps the standard library logger with an info/debug/error split.
type Logger struct {
	debugEnabled bool
	out          *log.Logger
}

var global *Logger

// Initialize sets up the process-wide logger.
func Initialize(debugMode bool) {
	var output io.Writer = os.Stderr
	global = &Logger{
		debugEnabled: debugMode,
		out:          log.New(output, "", log.LstdFlags),
	}
}

func ensure() {
	if global == nil {
		Initialize(false)
	}
}

// Info logs an informational message, always shown.
func Info(format string, args ...interface{}) {
	ensure()
	global.out.Printf(format, args...)
}

// Debug logs a debug message, shown only when debug mode is enabled.
func Debug(format string, args ...interface{}) {
	ensure()
	if global.debugEnabled {
		global.out.Printf("DEBUG: "+format, args...)
	}
}

// Error logs an error message, always shown.
func Error(format string, args ...interface{}) {
	ensure()
	global.out.Printf("ERROR: "+format, args...)
}

// IsDebugEnabled reports whether debug logging is active.
func IsDebugEnabled() bool {
	ensure()
	return global.debugEnabled
}
