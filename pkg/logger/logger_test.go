package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WritesTypedFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf)

	l.Info("cycle done",
		String("symbol", "SOLUSDT"),
		Int("points", 96),
		Float64("score", 0.132),
		Duration("took", 1500*time.Millisecond),
		Bool("fallback", false),
		Error(errors.New("boom")))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "info", got["level"])
	assert.Equal(t, "cycle done", got["message"])
	assert.Equal(t, "SOLUSDT", got["symbol"])
	assert.Equal(t, 96.0, got["points"])
	assert.Equal(t, 0.132, got["score"])
	assert.Equal(t, 1500.0, got["took"])
	assert.Equal(t, false, got["fallback"])
	assert.Equal(t, "boom", got["error"])
}

func TestLogger_WithAddsContext(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("component", "scheduler"))

	l.Warn("tick skipped")

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "scheduler", got["component"])
	assert.Equal(t, "warn", got["level"])
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}

func TestNop_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("ignored", String("k", "v")) })
}
