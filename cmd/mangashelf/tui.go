package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/ssh-vom/mangashelf/internal/logging"
	"github.com/ssh-vom/mangashelf/internal/ui"
)

func newTUICmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the featured carousel in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.cfg

			sink := ui.NewLogSink(200)
			var logOutput io.Writer = io.Discard
			if cfg.Verbose {
				logOutput = sink
			}
			logger := logging.New(logOutput, logging.FormatText, cfg.Verbose)

			service, err := buildService(cfg, logger)
			if err != nil {
				return err
			}

			return ui.Run(cmd.Context(), service, ui.Options{
				Interval:       cfg.CarouselInterval(),
				RequestTimeout: 2 * cfg.HTTPTimeout(),
				Verbose:        cfg.Verbose,
				Logs:           sink,
			})
		},
	}
}
