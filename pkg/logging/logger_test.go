package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugfRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	Warnf("warn %s", "x")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, "shown 2", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	With("file", "app.py").Infow("scanned", "issues", 3)

	entries := logs.FilterField(zap.String("file", "app.py")).All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "scanned", entries[0].Message)
}

func TestInitSetsLevelFromDebugFlag(t *testing.T) {
	t.Cleanup(func() { Set(zap.NewNop()) })

	assert.NoError(t, Init(true))
	assert.True(t, L().Desugar().Core().Enabled(zapcore.DebugLevel))

	assert.NoError(t, Init(false))
	assert.False(t, L().Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, L().Desugar().Core().Enabled(zapcore.InfoLevel))
}
