package main

import (
	"context"
	"io"
	"net"
	"net/http"

	"github.com/RuiFG/timedqueue/clock"
	"github.com/RuiFG/timedqueue/config"
	"github.com/RuiFG/timedqueue/metrics"
	"github.com/RuiFG/timedqueue/queue"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	Command.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "schedule the configured events and print each one as it expires",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return run(cmd.Context(), application, cmd.OutOrStdout())
		},
	})
}

// run schedules application.Events relative to now and stops the queue after
// application.RunFor, or earlier when ctx is done.
func run(ctx context.Context, application config.Application, out io.Writer) error {
	if err := application.Validate(); err != nil {
		return err
	}
	logger, err := setupLogger(application.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	options := queueOptions(application.Queue, logger)

	if application.Metrics.Listen != "" {
		prometheus := metrics.NewPrometheus(application.Metrics.Prefix, application.Metrics.ReportInterval)
		defer func() { _ = prometheus.Close() }()
		options = append(options, queue.WithMetrics(prometheus.Scope))

		listener, err := net.Listen("tcp", application.Metrics.Listen)
		if err != nil {
			return errors.WithMessagef(err, "failed to listen on %s", application.Metrics.Listen)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", prometheus.Handler)
		server := &http.Server{Handler: mux}
		go func() {
			if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorw("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = server.Close() }()
		logger.Infow("serving metrics", "addr", listener.Addr().String())
	}

	ctx, cancel := context.WithTimeout(ctx, application.RunFor)
	defer cancel()
	q := queue.NewWithContext[string](ctx, printer[string]{out: out}, options...)
	defer q.Stop()

	start := clock.Now()
	for _, event := range application.Events {
		if err := q.Add(start.Add(event.After), event.Value); err != nil {
			if errors.Is(err, queue.ErrClosed) && ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	<-ctx.Done()
	return nil
}
