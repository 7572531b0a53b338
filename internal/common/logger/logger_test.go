package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, expected := range tests {
		assert.Equal(t, expected, ParseLevel(in), in)
	}
}

func TestZapWrapper_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).
		WithFields(map[string]interface{}{"taskType": "accept-assignment"}).
		WithError(errors.New("boom"))

	log.Info("processing job", map[string]interface{}{"jobKey": int64(7), "cause": errors.New("inner")})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "processing job", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "accept-assignment", ctx["taskType"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "inner", ctx["cause"])
	assert.Equal(t, int64(7), ctx["jobKey"])
}

func TestNew_LevelFilters(t *testing.T) {
	l := New("error", "json")
	assert.False(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))

	NewNoOpLogger().Info("dropped", nil)
	NewTestLogger(t).Debug("visible in -v", map[string]interface{}{"k": "v"})
}
