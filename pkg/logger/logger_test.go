package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", "json", &buf).Component("fans")

	log.Info().Uint("fan_id", 7).Int("amount", 60).Msg("Points earned")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fans", entry["component"])
	assert.Equal(t, float64(7), entry["fan_id"])
	assert.Equal(t, float64(60), entry["amount"])
	assert.Equal(t, "Points earned", entry["message"])
}

func TestForOperation(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", "json", &buf).ForOperation(3, "redeem_reward")

	log.Debug().Msg("Ledger operation rejected")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(3), entry["fan_id"])
	assert.Equal(t, "redeem_reward", entry["operation"])
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", "json", &buf)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNop(t *testing.T) {
	// must not panic
	Nop().Error().Str("k", "v").Msg("discarded")
}
