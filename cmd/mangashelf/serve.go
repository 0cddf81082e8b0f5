package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssh-vom/mangashelf/internal/logging"
	"github.com/ssh-vom/mangashelf/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(state *app) *cobra.Command {
	var addr string
	var logFormat string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the featured carousel and the JSON feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.cfg
			if addr != "" {
				cfg.ListenAddr = addr
			}

			logger := logging.New(os.Stderr, logFormat, cfg.Verbose)
			service, err := buildService(cfg, logger)
			if err != nil {
				return err
			}

			server, err := web.NewServer(service, web.Options{
				Addr:             cfg.ListenAddr,
				CarouselInterval: cfg.CarouselInterval(),
				Logger:           logger,
			})
			if err != nil {
				return err
			}

			serveErr := make(chan error, 1)
			go func() {
				serveErr <- server.ListenAndServe()
			}()

			select {
			case err := <-serveErr:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
			}

			logger.Info("server shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				logger.Error("shutdown failed", slog.Any("error", err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the config")
	cmd.Flags().StringVar(&logFormat, "log-format", logging.FormatJSON, "log format: json or text")
	return cmd
}
