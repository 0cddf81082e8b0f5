package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssh-vom/mangashelf/internal/config"
)

type app struct {
	cfg     config.Config
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	state := &app{}

	rootCmd := &cobra.Command{
		Use:           "mangashelf",
		Short:         "Browse MangaDex from a web page or the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if state.verbose {
				cfg.Verbose = true
			}
			state.cfg = cfg
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&state.verbose, "verbose", "v", false, "show debug logs")

	rootCmd.AddCommand(
		newServeCmd(state),
		newTUICmd(state),
		newLatestCmd(state),
		newSearchCmd(state),
		newTopCmd(state),
		newConfigureCmd(state),
	)
	return rootCmd
}
