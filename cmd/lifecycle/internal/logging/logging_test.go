package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	rt := DefaultConfig(ProfileRuntime)
	require.Equal(t, zerolog.InfoLevel, rt.Level)
	require.True(t, rt.Timestamp)

	tc := DefaultConfig(ProfileTest)
	require.Equal(t, zerolog.DebugLevel, tc.Level)
	require.False(t, tc.Timestamp)
	require.True(t, tc.NoColor)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "warning")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "1")
	t.Setenv(EnvLogJSON, "true")

	cfg := DefaultConfig(ProfileRuntime)
	ApplyEnvOverrides(&cfg)

	require.Equal(t, zerolog.WarnLevel, cfg.Level)
	require.False(t, cfg.Timestamp)
	require.True(t, cfg.NoColor)
	require.True(t, cfg.JSON)
}

func TestApplyEnvOverrides_IgnoresInvalid(t *testing.T) {
	t.Setenv(EnvLogLevel, "loud")
	t.Setenv(EnvLogNoColor, "maybe")

	cfg := DefaultConfig(ProfileRuntime)
	ApplyEnvOverrides(&cfg)

	require.Equal(t, zerolog.InfoLevel, cfg.Level)
	require.False(t, cfg.NoColor)
}

func TestNew_JSON(t *testing.T) {
	t.Setenv(EnvLogJSON, "true")
	var buf bytes.Buffer
	cfg := DefaultConfig(ProfileTest)
	cfg.Out = &buf

	logger := New("demo", cfg)
	logger.Debug().Str("scenario", "admin").Msg("starting")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "demo", entry["app"])
	require.Equal(t, "admin", entry["scenario"])
	require.Equal(t, "starting", entry["message"])
	require.Equal(t, "debug", entry["level"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig(ProfileTest)
	cfg.Out = &buf
	cfg.Level = zerolog.WarnLevel

	logger := New("demo", cfg)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	out := buf.String()
	require.False(t, strings.Contains(out, "hidden"))
	require.Contains(t, out, "shown")
	require.Contains(t, out, "app=demo")
}
