package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	configDirName  = "mangashelf"
	configFileName = "config.json"
	envFileName    = ".env"
	envPrefix      = "MANGASHELF_"
)

type ProviderConfig struct {
	BaseURL           string  `json:"base_url" env:"API_BASE_URL"`
	CoverBaseURL      string  `json:"cover_base_url" env:"COVER_BASE_URL"`
	APIKey            string  `json:"api_key,omitempty" env:"MANGADEX_API_KEY"`
	UserAgent         string  `json:"user_agent" env:"USER_AGENT"`
	RequestsPerSecond float64 `json:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	SOCKSProxy        string  `json:"socks_proxy,omitempty" env:"SOCKS_PROXY"`
}

type Config struct {
	ListenAddr          string         `json:"listen_addr" env:"LISTEN_ADDR"`
	HTTPTimeoutSeconds  int            `json:"http_timeout_seconds" env:"HTTP_TIMEOUT_SECONDS"`
	Languages           []string       `json:"languages" env:"LANGUAGES"`
	CarouselIntervalSec int            `json:"carousel_interval_seconds" env:"CAROUSEL_INTERVAL_SECONDS"`
	CarouselOffsetRange int            `json:"carousel_offset_range" env:"CAROUSEL_OFFSET_RANGE"`
	CoverConcurrency    int            `json:"cover_concurrency" env:"COVER_CONCURRENCY"`
	Verbose             bool           `json:"verbose" env:"VERBOSE"`
	Providers           ProviderConfig `json:"providers"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:          "127.0.0.1:8080",
		HTTPTimeoutSeconds:  30,
		Languages:           []string{"en", "ja-ro", "ja"},
		CarouselIntervalSec: 5,
		CarouselOffsetRange: 100,
		Providers: ProviderConfig{
			BaseURL:           "https://api.mangadex.org",
			CoverBaseURL:      "https://uploads.mangadex.org",
			UserAgent:         "mangashelf/0.1",
			RequestsPerSecond: 5,
		},
	}
}

func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("unable to resolve config dir: %w", err)
	}

	return filepath.Join(configDir, configDirName), nil
}

func ConfigPath() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, configFileName), nil
}

func EnvPath() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, envFileName), nil
}

// LoadEnv copies the config dir's .env into the process environment without
// overriding variables that are already set.
func LoadEnv() error {
	envPath, err := EnvPath()
	if err != nil {
		return err
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("unable to read env file: %w", err)
	}

	for key, value := range values {
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}

	return nil
}

// LoadConfig layers defaults, the JSON config file and MANGASHELF_* env vars,
// later layers winning.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := LoadEnv(); err != nil {
		return cfg, err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("unable to read config: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("unable to parse config: %w", err)
		}
	}

	return ApplyEnv(cfg)
}

func ApplyEnv(cfg Config) (Config, error) {
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("unable to parse environment: %w", err)
	}
	return cfg, nil
}

func SaveConfig(cfg Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("unable to write config: %w", err)
	}

	return nil
}

func (cfg Config) HTTPTimeout() time.Duration {
	return time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
}

func (cfg Config) CarouselInterval() time.Duration {
	return time.Duration(cfg.CarouselIntervalSec) * time.Second
}

func (cfg Config) Validate() error {
	var errs []error
	if err := validateHTTPURL("api base url", cfg.Providers.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateHTTPURL("cover base url", cfg.Providers.CoverBaseURL); err != nil {
		errs = append(errs, err)
	}
	if cfg.Providers.SOCKSProxy != "" {
		if _, _, err := net.SplitHostPort(cfg.Providers.SOCKSProxy); err != nil {
			errs = append(errs, fmt.Errorf("socks proxy must be host:port: %w", err))
		}
	}
	if _, _, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
		errs = append(errs, fmt.Errorf("listen addr must be host:port: %w", err))
	}
	if cfg.HTTPTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	if cfg.CarouselIntervalSec <= 0 {
		errs = append(errs, errors.New("carousel interval must be positive"))
	}
	if cfg.CarouselOffsetRange < 0 || cfg.CoverConcurrency < 0 || cfg.Providers.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("carousel offset range, cover concurrency and requests per second cannot be negative"))
	}
	return errors.Join(errs...)
}

func validateHTTPURL(name, rawURL string) error {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return fmt.Errorf("%s is empty", name)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", name)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s missing host", name)
	}
	return nil
}
