package main

import (
	"fmt"
	"log/slog"

	"github.com/ssh-vom/mangashelf/internal/config"
	"github.com/ssh-vom/mangashelf/internal/feed"
	"github.com/ssh-vom/mangashelf/internal/network"
	"github.com/ssh-vom/mangashelf/internal/providers/manga/mangadex"
)

func buildService(cfg config.Config, logger *slog.Logger) (*feed.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient, err := network.NewHTTPClient(cfg.HTTPTimeout(), cfg.Providers.SOCKSProxy)
	if err != nil {
		return nil, err
	}

	provider := mangadex.New(httpClient, mangadex.Options{
		BaseURL:           cfg.Providers.BaseURL,
		CoverBaseURL:      cfg.Providers.CoverBaseURL,
		APIKey:            cfg.Providers.APIKey,
		UserAgent:         cfg.Providers.UserAgent,
		RequestsPerSecond: cfg.Providers.RequestsPerSecond,
		Logger:            logger,
	})

	return feed.New(provider, feed.Options{
		Languages:           cfg.Languages,
		CarouselOffsetRange: cfg.CarouselOffsetRange,
		CoverConcurrency:    cfg.CoverConcurrency,
		Logger:              logger,
	}), nil
}
