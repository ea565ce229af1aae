package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"chatty":  zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestSetup_JSONAndLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer
	Setup(Options{Level: "warn", Out: &buf})

	log.Info().Msg("hidden")
	log.Warn().Str("resource", "Ada").Msg("over-allocated")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Ada", entry["resource"])
	assert.Equal(t, "over-allocated", entry["message"])
}

func TestSetup_ReadsEnv(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Setenv(EnvLogLevel, "debug")
	var buf bytes.Buffer
	Setup(Options{Out: &buf})
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
