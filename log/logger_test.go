package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_SplitsByLevel(t *testing.T) {
	var info, errs bytes.Buffer
	l := New(DefaultOptions().WithWriters(&info, &errs).WithLevel(DebugLevel).WithNamed("queue"))

	l.Debugw("scheduled", "value", 1)
	l.Infow("started")
	l.Warnw("rejected", "value", 2)
	l.Error("boom")

	assert.Contains(t, info.String(), "scheduled")
	assert.Contains(t, info.String(), "started")
	assert.Contains(t, info.String(), "[queue]")
	assert.NotContains(t, info.String(), "rejected")
	assert.Contains(t, errs.String(), "rejected")
	assert.Contains(t, errs.String(), "boom")
	assert.Contains(t, errs.String(), "[WARN]")
}

func TestNew_LevelFilter(t *testing.T) {
	var info, errs bytes.Buffer
	l := New(DefaultOptions().WithWriters(&info, &errs).WithLevel(WarnLevel).WithOutputEncoder(ConsoleOutputEncoder))

	l.Info("hidden")
	l.Warn("shown")

	assert.Empty(t, info.String())
	assert.Contains(t, errs.String(), "shown")
}

func TestNew_EncoderOptions(t *testing.T) {
	var info, errs bytes.Buffer
	l := New(DefaultOptions().WithWriters(&info, &errs).
		WithLevelEncoder(CapitalLevelEncoder).
		WithCallerEncoder(ShortCallerEncoder).
		WithTimeLayout("2006").
		WithStacktrace(true))

	l.Infow("started")
	l.Warnw("rejected")

	assert.Contains(t, info.String(), `"level":"INFO"`)
	assert.Contains(t, info.String(), "logger_test.go")
	assert.Contains(t, info.String(), `"ts":"`+time.Now().Format("2006")+`"`)
	assert.NotContains(t, info.String(), "stacktrace")
	assert.Contains(t, errs.String(), `"stacktrace"`)
}

func TestNew_LowercaseLevelWithoutCaller(t *testing.T) {
	var info, errs bytes.Buffer
	l := New(DefaultOptions().WithWriters(&info, &errs).WithLevelEncoder(LowercaseLevelEncoder))

	l.Info("started")

	assert.Contains(t, info.String(), `"level":"info"`)
	assert.NotContains(t, info.String(), "caller")
}

func TestParseLevelEncoder(t *testing.T) {
	for _, text := range []string{"bracket", "Capital", "lowercase"} {
		encoder, err := ParseLevelEncoder(text)
		assert.NoError(t, err)
		assert.NotNil(t, encoder)
	}
	_, err := ParseLevelEncoder("shouting")
	assert.Error(t, err)
}

func TestParseCallerEncoder(t *testing.T) {
	encoder, err := ParseCallerEncoder("")
	assert.NoError(t, err)
	assert.Nil(t, encoder)

	encoder, err = ParseCallerEncoder("full")
	assert.NoError(t, err)
	assert.NotNil(t, encoder)

	_, err = ParseCallerEncoder("sideways")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, level)

	level, err = ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, ErrorLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestParseOutputEncoder(t *testing.T) {
	_, err := ParseOutputEncoder("console")
	assert.NoError(t, err)
	_, err = ParseOutputEncoder("JSON")
	assert.NoError(t, err)
	_, err = ParseOutputEncoder("xml")
	assert.Error(t, err)
}

func TestWrap_NamedAndWith(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := Wrap(zap.New(core)).Named("worker").With("queue", "q1")

	l.Infow("dispatched", "value", 3)

	entries := logs.FilterMessage("dispatched").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "worker", entries[0].LoggerName)
	assert.Equal(t, "q1", entries[0].ContextMap()["queue"])
	assert.EqualValues(t, 3, entries[0].ContextMap()["value"])
}

func TestGlobal_NopBeforeSetup(t *testing.T) {
	assert.NotNil(t, Global())
	Global().Info("dropped")
}
