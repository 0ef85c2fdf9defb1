package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

// Command is the timedq root command.
var Command = &cobra.Command{
	Use:           "timedq",
	Short:         "fire timestamp-keyed events in order as they expire",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	Command.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./application.yml or ./config/application.yml)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Command.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		stop()
		os.Exit(1)
	}
}
