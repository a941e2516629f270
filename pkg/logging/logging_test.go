package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "WARNING", want: slog.LevelWarn},
		{input: " Error ", want: slog.LevelError},
		{input: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "json", want: FormatJSON},
		{input: "JSON", want: FormatJSON},
		{input: "text", want: FormatText},
		{input: "", want: FormatText},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromSettings(t *testing.T) {
	var buf bytes.Buffer
	logger, err := FromSettings("info", "json", &buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("bridge active", "path", "/__devtools")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "bridge active", entry["msg"])
	assert.Equal(t, "/__devtools", entry["path"])

	_, err = FromSettings("loud", "json", &buf)
	assert.ErrorIs(t, err, ErrUnknownLevel)
	_, err = FromSettings("info", "xml", &buf)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(Config{Format: FormatText, Output: &buf}), "relay")
	logger.Info("sent")
	assert.Contains(t, buf.String(), "component=relay")

	assert.NotPanics(t, func() { Component(nil, "relay").Info("discarded") })
}
