package main

import (
	"time"

	"github.com/RuiFG/timedqueue/clock"
	"github.com/RuiFG/timedqueue/config"
	"github.com/RuiFG/timedqueue/queue"
	"github.com/spf13/cobra"
)

func init() {
	var unit time.Duration
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "walk through add, remove and update on a live queue",
		Long: `demo schedules values 1..4 at 3, 1, 2 and 4 units, removes 2 by value and the
event at 2 units by timestamp, swaps the value at 4 units to 5, moves 1 to 10 units,
waits 6 units and stops. Only 5 expires.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := setupLogger(application.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			return demo(unit, printer[int]{out: cmd.OutOrStdout()}, queueOptions(application.Queue, logger)...)
		},
	}
	cmd.Flags().DurationVar(&unit, "unit", time.Second, "length of one demo time unit")
	Command.AddCommand(cmd)
}

func demo(unit time.Duration, handler queue.Handler[int], opts ...queue.Option) error {
	q := queue.New[int](handler, opts...)
	defer q.Stop()

	now := clock.Now()
	at := func(n int) clock.Timestamp {
		return now.Add(time.Duration(n) * unit)
	}
	for _, event := range []struct{ units, value int }{{3, 1}, {1, 2}, {2, 3}, {4, 4}} {
		if err := q.Add(at(event.units), event.value); err != nil {
			return err
		}
	}
	q.RemoveByValue(2)
	q.RemoveByTimestamp(at(2))
	if _, err := q.UpdateValue(at(4), 5); err != nil {
		return err
	}
	if _, err := q.UpdateTimestamp(at(10), 1); err != nil {
		return err
	}
	time.Sleep(6 * unit)
	// 1 now expires at 10 units, after the stop
	q.Stop()
	return nil
}
