package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RuiFG/timedqueue/clock"
	"github.com/RuiFG/timedqueue/config"
	"github.com/RuiFG/timedqueue/log"
	"github.com/RuiFG/timedqueue/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemo_OnlyUpdatedValueExpires(t *testing.T) {
	var (
		mutex  sync.Mutex
		values []int
	)
	handler := queue.HandlerFunc[int](func(_ clock.Timestamp, value int) {
		mutex.Lock()
		values = append(values, value)
		mutex.Unlock()
	})

	require.NoError(t, demo(20*time.Millisecond, handler, queue.WithLogger(log.Nop())))

	mutex.Lock()
	defer mutex.Unlock()
	assert.Equal(t, []int{5}, values)
}

func TestRun_PrintsConfiguredEvents(t *testing.T) {
	var out bytes.Buffer
	application := config.Application{
		Log:     config.Log{Level: "error", Encoder: "console"},
		Metrics: config.Metrics{Listen: "127.0.0.1:0", Prefix: "timedq", ReportInterval: 10 * time.Millisecond},
		Queue:   config.Queue{Name: "test", MaxSleep: time.Second, Dispatch: "locked"},
		RunFor:  300 * time.Millisecond,
		Events: []config.Event{
			{Value: "late", After: 60 * time.Millisecond},
			{Value: "early", After: 20 * time.Millisecond},
			{Value: "never", After: time.Hour},
		},
	}

	require.NoError(t, run(context.Background(), application, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "with value: early")
	assert.Contains(t, lines[1], "with value: late")
}

func TestRun_StopsWhenContextDone(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	application := config.Application{
		Log:    config.Log{Level: "error", Encoder: "json"},
		Queue:  config.Queue{Name: "test", Dispatch: "detached"},
		RunFor: time.Hour,
		Events: []config.Event{{Value: "a", After: time.Hour}},
	}

	done := make(chan error, 1)
	go func() { done <- run(ctx, application, &out) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	assert.Empty(t, out.String())
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := run(context.Background(), config.Application{
		Log:   config.Log{Level: "loud", Encoder: "json"},
		Queue: config.Queue{Dispatch: "locked"},
	}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestRun_RejectsTimestampScheduledTwice(t *testing.T) {
	var out bytes.Buffer
	application := config.Application{
		Log:     config.Log{Level: "error", Encoder: "console"},
		Metrics: config.Metrics{Listen: "127.0.0.1:0", Prefix: "timedq", ReportInterval: 10 * time.Millisecond},
		Queue:   config.Queue{Name: "test", Dispatch: "locked"},
		RunFor:  time.Hour,
		Events: []config.Event{
			{Value: "a", After: 20 * time.Millisecond},
			{Value: "b", After: 20 * time.Millisecond},
		},
	}

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), application, &out) }()
	select {
	case err := <-done:
		assert.ErrorContains(t, err, "scheduled twice")
	case <-time.After(2 * time.Second):
		t.Fatal("run started the queue with an invalid config")
	}
	assert.Empty(t, out.String())
}

func TestLogOptions(t *testing.T) {
	_, err := logOptions(config.Log{Level: "info", Encoder: "json", LevelEncoder: "capital", Caller: "short",
		Stacktrace: true, TimeLayout: "15:04:05"})
	assert.NoError(t, err)

	_, err = logOptions(config.Log{Level: "info", Encoder: "json"})
	assert.NoError(t, err)

	_, err = logOptions(config.Log{Level: "info", Encoder: "json", LevelEncoder: "shouting"})
	assert.ErrorContains(t, err, "level encoder")

	_, err = logOptions(config.Log{Level: "info", Encoder: "json", Caller: "sideways"})
	assert.ErrorContains(t, err, "caller encoder")
}

func TestPrinter_WritesElapsedOffset(t *testing.T) {
	var out bytes.Buffer
	printer[string]{out: &out}.OnTimestampExpire(clock.Timestamp(1500*time.Millisecond), "a")
	assert.Equal(t, "timestamp expired: +1.500000s with value: a\n", out.String())
}
