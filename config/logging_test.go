package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerWithOutput_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Str("ticker", "PETR4").Msg("hidden")
	logger.Warn().Str("ticker", "VALE3").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, `"ticker":"VALE3"`)
}

func TestSilentLogger(t *testing.T) {
	logger := SilentLogger()
	// must not panic nor write anywhere.
	logger.Error().Str("k", "v").Msg("discarded")
}
