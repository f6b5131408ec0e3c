package logger

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "tutor-server"

var (
	globalLogger zerolog.Logger
	once         sync.Once
)

// GetLogger returns the global logger, initialising a console logger at info
// level when New has not been called yet.
func GetLogger() zerolog.Logger {
	once.Do(func() {
		globalLogger = build(consoleWriter(), zerolog.InfoLevel)
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})
	return globalLogger
}

// New constructs the service logger from level and format configuration and
// installs it as the global logger. Format is "console" or "json".
func New(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, err
	}

	var out io.Writer
	switch strings.ToLower(format) {
	case "json":
		out = os.Stdout
	case "console":
		out = consoleWriter()
	default:
		return zerolog.Logger{}, errors.New("unsupported log format")
	}

	zerolog.SetGlobalLevel(lvl)
	globalLogger = build(out, lvl)
	return globalLogger, nil
}

// build stamps every event with the service name so the tutor server's lines
// stay identifiable in a shared log pipeline.
func build(out io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Logger().
		Level(lvl)
}

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
}
