package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ssh-vom/mangashelf/internal/config"
)

// settingsForm holds the editable config values as text for the huh form.
type settingsForm struct {
	APIKey              string
	ListenAddr          string
	Languages           string
	CarouselInterval    string
	CarouselOffsetRange string
	RequestsPerSecond   string
	SOCKSProxy          string
	Verbose             bool
}

func newSettingsForm(cfg config.Config) settingsForm {
	return settingsForm{
		APIKey:              cfg.Providers.APIKey,
		ListenAddr:          cfg.ListenAddr,
		Languages:           strings.Join(cfg.Languages, ","),
		CarouselInterval:    strconv.Itoa(cfg.CarouselIntervalSec),
		CarouselOffsetRange: strconv.Itoa(cfg.CarouselOffsetRange),
		RequestsPerSecond:   strconv.FormatFloat(cfg.Providers.RequestsPerSecond, 'f', -1, 64),
		SOCKSProxy:          cfg.Providers.SOCKSProxy,
		Verbose:             cfg.Verbose,
	}
}

func (form settingsForm) apply(cfg config.Config) (config.Config, error) {
	interval, err := strconv.Atoi(strings.TrimSpace(form.CarouselInterval))
	if err != nil {
		return cfg, fmt.Errorf("carousel interval must be a whole number of seconds: %w", err)
	}
	offsetRange, err := strconv.Atoi(strings.TrimSpace(form.CarouselOffsetRange))
	if err != nil {
		return cfg, fmt.Errorf("carousel offset range must be a whole number: %w", err)
	}
	rps, err := strconv.ParseFloat(strings.TrimSpace(form.RequestsPerSecond), 64)
	if err != nil {
		return cfg, fmt.Errorf("requests per second must be a number: %w", err)
	}

	languages := []string{}
	for _, language := range strings.Split(form.Languages, ",") {
		if language = strings.TrimSpace(language); language != "" {
			languages = append(languages, language)
		}
	}
	if len(languages) == 0 {
		return cfg, errors.New("at least one language is required")
	}

	cfg.Providers.APIKey = strings.TrimSpace(form.APIKey)
	cfg.Providers.SOCKSProxy = strings.TrimSpace(form.SOCKSProxy)
	cfg.Providers.RequestsPerSecond = rps
	cfg.ListenAddr = strings.TrimSpace(form.ListenAddr)
	cfg.Languages = languages
	cfg.CarouselIntervalSec = interval
	cfg.CarouselOffsetRange = offsetRange
	cfg.Verbose = form.Verbose

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newConfigureCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Edit the config file interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stat, err := os.Stdin.Stat()
			if err != nil {
				return fmt.Errorf("inspect stdin: %w", err)
			}
			if stat.Mode()&os.ModeCharDevice == 0 {
				return errors.New("configure requires a terminal")
			}

			form := newSettingsForm(state.cfg)
			err = huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("MangaDex API key").
						Description("Optional personal client key").
						EchoMode(huh.EchoModePassword).
						Value(&form.APIKey),
					huh.NewInput().
						Title("SOCKS5 proxy").
						Description("host:port, empty for a direct connection").
						Value(&form.SOCKSProxy),
					huh.NewInput().
						Title("Requests per second").
						Value(&form.RequestsPerSecond),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("Listen address").
						Value(&form.ListenAddr),
					huh.NewInput().
						Title("Preferred title languages").
						Description("Comma separated, most preferred first").
						Value(&form.Languages),
					huh.NewInput().
						Title("Carousel interval (seconds)").
						Value(&form.CarouselInterval),
					huh.NewInput().
						Title("Carousel offset range").
						Value(&form.CarouselOffsetRange),
					huh.NewConfirm().
						Title("Verbose logging").
						Value(&form.Verbose),
				),
			).Run()
			if err != nil {
				return fmt.Errorf("run config form: %w", err)
			}

			cfg, err := form.apply(state.cfg)
			if err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}

			path, _ := config.ConfigPath()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return err
		},
	}
}
