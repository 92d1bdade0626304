package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONIncludesFieldsAndCorrelation(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", ServiceName: "pcbot", Output: &buf})

	ctx := WithCorrelationID(context.Background(), "msg-42")
	log.WithFields(map[string]interface{}{"component": "test"}).
		Error(ctx, "save failed", errors.New("disk full"), map[string]interface{}{"collection": "warnings"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "save failed", line["msg"])
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "pcbot", line["service"])
	assert.Equal(t, "test", line["component"])
	assert.Equal(t, "warnings", line["collection"])
	assert.Equal(t, "msg-42", line["correlation_id"])
	assert.Equal(t, "disk full", line["error"])
	assert.Contains(t, line["caller"], "logger_test.go")
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf})

	log.Info(context.Background(), "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_WithFieldsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Format: "json", Output: &buf})
	_ = base.WithFields(map[string]interface{}{"child": true})

	base.Info(context.Background(), "parent", nil)
	assert.NotContains(t, buf.String(), "child")
}

func TestCorrelationID_Missing(t *testing.T) {
	assert.Empty(t, CorrelationID(context.Background()))
}

func TestLogPerformance(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	LogPerformance(context.Background(), log, "collection.update", 1500*time.Millisecond, map[string]interface{}{"collection": "ratings"})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "collection.update", line["operation"])
	assert.Equal(t, float64(1500), line["duration_ms"])
	assert.Equal(t, "ratings", line["collection"])
	assert.Equal(t, "debug", line["level"])
}
