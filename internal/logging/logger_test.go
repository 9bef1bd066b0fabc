package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToExplicitWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")
	require.NotNil(t, log)

	log.Info().Str("key", "assistloop.enabled").Msg("param read")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "param read", line["message"])
	assert.Equal(t, "assistloop.enabled", line["key"])
	assert.Contains(t, line, "time")
}

func TestNewStyled_NilWriter(t *testing.T) {
	assert.NotNil(t, NewStyled(nil, "info", StylePretty))
	assert.NotNil(t, NewStyled(nil, "info", StyleJSON))
}

func TestSubAndWith(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug").Sub("bridge").With("path", "render")

	log.Debug().Msg("loaded")
	out := buf.String()
	assert.Contains(t, out, `"subsystem":"bridge"`)
	assert.Contains(t, out, `"path":"render"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Debug().Msg("debug msg")
	log.Info().Msg("info msg")
	assert.Empty(t, buf.String())

	log.Warn().Msg("warn msg")
	assert.Contains(t, buf.String(), "warn msg")
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error().Msg("dropped")
	assert.Equal(t, zerolog.Disabled, log.Zerolog().GetLevel())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"silent", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}
