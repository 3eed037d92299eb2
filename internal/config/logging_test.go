package config

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerTaggedWithService(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, LoggingConfig{Level: "debug", Format: "json"})

	logger.Info().Msg("ready")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "meridian-cal", line["service"])
	require.Equal(t, "ready", line["message"])
	require.NotEmpty(t, line["time"])
}

func TestNewLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, LoggingConfig{Level: "noisy", Format: "json"})

	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["message"])
}

func TestNewLoggerConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, LoggingConfig{Level: "info", Format: "console"})

	logger.Info().Msg("pretty")

	require.Contains(t, buf.String(), "pretty")
	require.False(t, json.Valid(buf.Bytes()))
}
