// Package logging configures the module-wide structured logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

var root zerolog.Logger

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	root = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()
}

// SetDebug switches between debug and info level. The level lives in
// zerolog's global state so loggers handed out at package init, which
// is most of them, follow the switch.
func SetDebug(enabled bool) {
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// For returns a logger scoped to the given component name.
func For(component string) zerolog.Logger {
	return root.With().Str("component", component).Logger()
}
