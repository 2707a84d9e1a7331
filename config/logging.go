package config

import (
	"io"
	"os"

	"github.com/phuslu/log"
)

// NewLogger creates a logger writing to stderr, either human readable or
// JSON lines depending on cfg.Format.
func NewLogger(cfg LoggingConfig) *log.Logger {
	var w log.Writer
	switch cfg.Format {
	case "json":
		w = &log.IOWriter{Writer: os.Stderr}
	default:
		w = &log.ConsoleWriter{Writer: os.Stderr}
	}
	return &log.Logger{
		Level:      parseLevel(cfg.Level),
		TimeFormat: "15:04:05",
		Writer:     w,
	}
}

// NewLoggerWithOutput creates a JSON logger writing to out.
func NewLoggerWithOutput(level string, out io.Writer) *log.Logger {
	return &log.Logger{
		Level:  parseLevel(level),
		Writer: &log.IOWriter{Writer: out},
	}
}

// SilentLogger creates a logger that discards all output.
func SilentLogger() *log.Logger {
	return &log.Logger{
		Level:  log.PanicLevel,
		Writer: &log.IOWriter{Writer: io.Discard},
	}
}

func parseLevel(level string) log.Level {
	if level == "" {
		return log.InfoLevel
	}
	return log.ParseLevel(level)
}
