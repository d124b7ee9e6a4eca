package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, LevelWarn)

	log.Info("hidden %d", 1)
	log.Warn("shown %d", 2)
	log.Error("shown %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 2")
	assert.Contains(t, out, "[ERROR] shown 3")
}

func TestTemporalAdapter_FormatsKeyvals(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewTemporalAdapter(NewWithWriter(&buf, LevelDebug))

	adapter.Info("Started Worker", "Namespace", "default", "TaskQueue", "booking-reconciliation")
	adapter.Error("odd", "dangling")

	out := buf.String()
	assert.Contains(t, out, "[INFO] temporal: Started Worker Namespace=default TaskQueue=booking-reconciliation")
	assert.Contains(t, out, "[ERROR] temporal: odd dangling")
}
