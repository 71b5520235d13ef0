// Package log builds the application logger.
package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger. Verbose mode lowers the level to
// debug.
func New(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	logger := zerolog.New(output).With().
		Timestamp().
		Logger()

	if verbose {
		return logger.Level(zerolog.DebugLevel)
	}
	return logger.Level(zerolog.InfoLevel)
}
