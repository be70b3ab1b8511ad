package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/settler/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: " WARN ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.in)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.New(&buf, "warn", "json")
	logger.Info("dropped")
	logger.Warn("skipping merchant without financial terms", "merchant_id", "m-1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "m-1", entry["merchant_id"])
	assert.NotEmpty(t, entry["time"])
}

func TestNew_TextWithInvalidLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.New(&buf, "loud", "text")
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "invalid LOG_LEVEL")
	assert.NotContains(t, out, "hidden")
}
