// Package terminal provides helpers for the console notification sink.
package terminal

import (
	"os"

	"golang.org/x/term"
)

const DefaultWidth = 80

// IsInteractive reports whether stderr is attached to a terminal.
// The console sink only emits color codes when this is true.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Width returns the current terminal width, used to truncate long
// notification lines. Falls back to DefaultWidth when the size cannot
// be determined (e.g. output is piped).
func Width() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}
