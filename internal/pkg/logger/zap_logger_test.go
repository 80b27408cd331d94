package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerAddsModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Info("STORE", "kpis fetched", map[string]interface{}{"session_id": "abc123"})
	l.Warn("STORE", "no details", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "kpis fetched", entries[0].Message)
	assert.Equal(t, "STORE", first["module"])
	assert.Equal(t, map[string]interface{}{"session_id": "abc123"}, first["details"])

	second := entries[1].ContextMap()
	assert.Equal(t, map[string]interface{}{}, second["details"])
}

func TestZapLoggerErrorCarriesErrorRef(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Error("HTTP", "request failed", map[string]interface{}{"error": "boom"})

	entries := logs.FilterField(zap.Any("error_ref", "boom")).All()
	assert.Len(t, entries, 1)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Debug("X", "ignored", nil)
	assert.NoError(t, l.Sync())
}
