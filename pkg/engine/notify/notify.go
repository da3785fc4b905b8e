// Package notify is the user-facing notifications surface of the host.
// The menu module reports permission denials, targeting problems and
// adapter failures through it; it never panics and never blocks.
package notify

import (
	"sync"

	"github.com/gookit/color"

	"tokencontextmenu/pkg/engine/terminal"
)

// Sink receives user-visible notifications. The host swaps in its own
// implementation (e.g. on-screen toasts); the default prints to the console.
type Sink interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

var (
	mu      sync.Mutex
	current Sink = &consoleSink{}
)

// SetSink replaces the active notification sink. Passing nil restores
// the console sink.
func SetSink(s Sink) {
	mu.Lock()
	defer mu.Unlock()
	if s == nil {
		current = &consoleSink{}
		return
	}
	current = s
}

// Info surfaces an informational notification.
func Info(msg string) {
	mu.Lock()
	s := current
	mu.Unlock()
	s.Info(msg)
}

// Warn surfaces a warning notification.
func Warn(msg string) {
	mu.Lock()
	s := current
	mu.Unlock()
	s.Warn(msg)
}

// Error surfaces an error notification.
func Error(msg string) {
	mu.Lock()
	s := current
	mu.Unlock()
	s.Error(msg)
}

type consoleSink struct{}

var (
	styleInfo  = color.Style{color.FgCyan}
	styleWarn  = color.Style{color.FgYellow, color.OpBold}
	styleError = color.Style{color.FgRed, color.OpBold}
)

func (c *consoleSink) Info(msg string)  { c.emit(styleInfo, msg) }
func (c *consoleSink) Warn(msg string)  { c.emit(styleWarn, msg) }
func (c *consoleSink) Error(msg string) { c.emit(styleError, msg) }

func (c *consoleSink) emit(style color.Style, msg string) {
	if w := terminal.Width(); len(msg) > w && w > 3 {
		msg = msg[:w-3] + "..."
	}
	if terminal.IsInteractive() {
		style.Println(msg)
		return
	}
	color.Println(msg)
}
