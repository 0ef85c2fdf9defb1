package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/RuiFG/timedqueue/clock"
	"github.com/RuiFG/timedqueue/config"
	"github.com/RuiFG/timedqueue/log"
	"github.com/RuiFG/timedqueue/queue"
)

func setupLogger(conf config.Log) (log.Logger, error) {
	options, err := logOptions(conf)
	if err != nil {
		return nil, err
	}
	log.Setup(options)
	return log.Global(), nil
}

func logOptions(conf config.Log) (*log.Options, error) {
	level, err := log.ParseLevel(conf.Level)
	if err != nil {
		return nil, err
	}
	encoder, err := log.ParseOutputEncoder(conf.Encoder)
	if err != nil {
		return nil, err
	}
	options := log.DefaultOptions().WithLevel(level).WithOutputEncoder(encoder).
		WithStacktrace(conf.Stacktrace).WithNamed("timedq")
	if conf.LevelEncoder != "" {
		levelEncoder, err := log.ParseLevelEncoder(conf.LevelEncoder)
		if err != nil {
			return nil, err
		}
		options.WithLevelEncoder(levelEncoder)
	}
	callerEncoder, err := log.ParseCallerEncoder(conf.Caller)
	if err != nil {
		return nil, err
	}
	options.WithCallerEncoder(callerEncoder)
	if conf.TimeLayout != "" {
		options.WithTimeLayout(conf.TimeLayout)
	}
	return options, nil
}

func queueOptions(conf config.Queue, logger log.Logger) []queue.Option {
	mode := queue.LockedDispatch
	if strings.EqualFold(conf.Dispatch, queue.DetachedDispatch.String()) {
		mode = queue.DetachedDispatch
	}
	return []queue.Option{
		queue.WithName(conf.Name),
		queue.WithLogger(logger),
		queue.WithMaxSleep(conf.MaxSleep),
		queue.WithDispatchMode(mode),
	}
}

// printer writes one line per expired event.
type printer[T comparable] struct {
	out io.Writer
}

func (p printer[T]) OnTimestampExpire(timestamp clock.Timestamp, value T) {
	_, _ = fmt.Fprintf(p.out, "timestamp expired: %s with value: %v\n", timestamp, value)
}
