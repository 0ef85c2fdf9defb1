package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "application.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  caller: short
  stacktrace: true
  time_layout: "15:04:05"
metrics:
  listen: ":9090"
queue:
  dispatch: detached
  max_sleep: 5s
run_for: 3s
events:
  - value: first
    after: 1s
  - value: second
    after: 1500ms
`)
	application, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", application.Log.Level)
	assert.Equal(t, "console", application.Log.Encoder)
	assert.Equal(t, "bracket", application.Log.LevelEncoder)
	assert.Equal(t, "short", application.Log.Caller)
	assert.True(t, application.Log.Stacktrace)
	assert.Equal(t, "15:04:05", application.Log.TimeLayout)
	assert.Equal(t, ":9090", application.Metrics.Listen)
	assert.Equal(t, "timedq", application.Metrics.Prefix)
	assert.Equal(t, time.Second, application.Metrics.ReportInterval)
	assert.Equal(t, "detached", application.Queue.Dispatch)
	assert.Equal(t, 5*time.Second, application.Queue.MaxSleep)
	assert.Equal(t, 3*time.Second, application.RunFor)
	assert.Equal(t, []Event{{Value: "first", After: time.Second}, {Value: "second", After: 1500 * time.Millisecond}}, application.Events)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv("TIMEDQ_LOG_LEVEL", "warn")

	application, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", application.Log.Level)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	application, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", application.Log.Level)
	assert.Equal(t, "bracket", application.Log.LevelEncoder)
	assert.Empty(t, application.Log.Caller)
	assert.False(t, application.Log.Stacktrace)
	assert.Equal(t, "02/Jan/2006:15:04:05 -0700", application.Log.TimeLayout)
	assert.Equal(t, "locked", application.Queue.Dispatch)
	assert.Equal(t, time.Minute, application.Queue.MaxSleep)
	assert.Empty(t, application.Events)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "queue:\n  dispatch: sideways\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "events:\n  - value: a\n    after: 1s\n  - value: a\n    after: 2s\n"))
	assert.Error(t, err)
}

func TestValidate_TimestampScheduledTwice(t *testing.T) {
	application := Application{
		Queue: Queue{Dispatch: "locked"},
		Events: []Event{
			{Value: "a", After: 20 * time.Millisecond},
			{Value: "b", After: 20 * time.Millisecond},
		},
	}
	err := application.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduled twice")

	application.Events[1].After = 21 * time.Millisecond
	assert.NoError(t, application.Validate())

	_, err = Load(writeConfig(t, "events:\n  - value: a\n    after: 1s\n  - value: b\n    after: 1000ms\n"))
	assert.Error(t, err)
}
