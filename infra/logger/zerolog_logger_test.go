package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerJSONFields(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "scheduler")
	l.Infof("solved %d matches", 6)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "scheduler", entry["component"])
	assert.Equal(t, "solved 6 matches", entry["message"])
}

func TestZerologLoggerLevelFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "WARN")
	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "x")
	l.Debugw("hidden", map[string]any{"a": 1})
	l.Infof("hidden")
	l.Warnf("shown")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "shown")
}

func TestLevelFromEnvFallback(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	assert.Equal(t, "info", levelFromEnv().String())
	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, "debug", levelFromEnv().String())
}
