package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Level is the logging level.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var (
	globalLogger = zerolog.Nop()
	logFileOut   *os.File
)

// Init initializes the logger. Console output is human readable; file output is JSON lines.
// A log file left open by a previous Init is closed.
func Init(enabled bool, levelStr, logFile string, console bool) error {
	if err := Close(); err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	var writers []io.Writer
	if logFile != "" {
		dir := filepath.Dir(logFile)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFileOut = f
		writers = append(writers, f)
	}

	if console || len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"})
	}

	globalLogger = New(io.MultiWriter(writers...), parseLevel(levelStr))
	return nil
}

// Close closes the log file, if any, and resets the logger to a no-op.
func Close() error {
	globalLogger = zerolog.Nop()
	if logFileOut == nil {
		return nil
	}
	err := logFileOut.Close()
	logFileOut = nil
	return err
}

// New builds a timestamped logger at the given level.
func New(w io.Writer, level Level) zerolog.Logger {
	return zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
}

// SetOutput replaces the global logger, mainly for tests.
func SetOutput(w io.Writer, level Level) {
	globalLogger = New(w, level)
}

func parseLevel(levelStr string) Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case Debug:
		return zerolog.DebugLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debugf logs a debug message.
func Debugf(format string, args ...interface{}) {
	globalLogger.Debug().Msgf(format, args...)
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	globalLogger.Info().Msgf(format, args...)
}

// Warnf logs a warning.
func Warnf(format string, args ...interface{}) {
	globalLogger.Warn().Msgf(format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	globalLogger.Error().Msgf(format, args...)
}
