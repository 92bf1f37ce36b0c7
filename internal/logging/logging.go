// Package logging configures the process-wide zerolog logger and hands
// out component-tagged child loggers.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global zerolog logger to console-writer output in debug
// mode, JSON otherwise, matching the teacher's dev/prod split.
func Init(debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Caller().Logger()
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// For returns a logger tagged with a component name, e.g. "tuner", "eas".
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
