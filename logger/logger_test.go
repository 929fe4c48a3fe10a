package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestGetLoggerInitializesOnDemand(t *testing.T) {
	l := GetLogger()
	require.NotNil(t, l)

	// Initialization is once-only; repeated calls return the same logger.
	assert.Same(t, l, GetLogger())

	InitLogger(Options{Level: "debug"})
	assert.Same(t, l, GetLogger())
}

func TestSyncDoesNotPanic(t *testing.T) {
	GetLogger().Info("sync test")
	assert.NotPanics(t, func() { Sync() })
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zap.InfoLevel, parseLevel("info"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zap.ErrorLevel, parseLevel("error"))

	// Unknown and empty levels fall back to info.
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}
