//go:build !windows

// Package console detects how padmap was launched and wires Ctrl+C handling.
// On non-Windows platforms both are trivial: there is always a console and
// Go's standard signal handling works.
package console

// IsRunningFromConsole always reports true off Windows.
func IsRunningFromConsole() bool {
	return true
}

// SetupConsoleHandler is a no-op off Windows.
func SetupConsoleHandler(shutdownChan chan struct{}) func() {
	return func() {}
}
