package logutil

import "log"

// Logf is the package-level diagnostic logger shared by the synthesis and
// statistics packages. It defaults to log.Printf; SetLogger replaces it,
// typically to mute output in tests or route it into a service logger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger installs f as the package logger. A nil f installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
