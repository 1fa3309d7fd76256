// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment variable that overrides a config
// value.
const EnvPrefix = "HUDDLE_"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment" env:"ENVIRONMENT"`

	// API configures the authenticated request client.
	API APIConfig `yaml:"api" envPrefix:"API_"`

	// Gateway configures event decoding and the protocol manifest.
	Gateway GatewayConfig `yaml:"gateway" envPrefix:"GATEWAY_"`

	// Preview configures the attachment preview cache.
	Preview PreviewConfig `yaml:"preview" envPrefix:"PREVIEW_"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log" envPrefix:"LOG_"`
}

// APIConfig configures the request client and session refresh.
type APIConfig struct {
	// BaseURL is the API origin. Required by binaries that fetch.
	BaseURL string `yaml:"base_url" env:"BASE_URL"`

	// TokenURL is the OAuth 2.0 token endpoint used to refresh
	// sessions. Empty disables refresh.
	TokenURL string `yaml:"token_url" env:"TOKEN_URL"`

	// ClientID identifies this client at the token endpoint.
	ClientID string `yaml:"client_id" env:"CLIENT_ID"`
}

// GatewayConfig configures gateway event handling.
type GatewayConfig struct {
	// ManifestPath replaces the embedded protocol manifest. Empty uses
	// the embedded one.
	ManifestPath string `yaml:"manifest_path" env:"MANIFEST_PATH"`

	// Encoding is the envelope encoding of replayed streams: "json"
	// (one envelope per line) or "cbor" (a sequence of CBOR items).
	Encoding string `yaml:"encoding" env:"ENCODING"`
}

// PreviewConfig tunes the attachment preview cache.
type PreviewConfig struct {
	// InitialDelay debounces the first fetch of a newly visible
	// attachment. Default: 150ms
	InitialDelay time.Duration `yaml:"initial_delay" env:"INITIAL_DELAY"`

	// BackoffInitial is the delay before the first retry. Default: 1s
	BackoffInitial time.Duration `yaml:"backoff_initial" env:"BACKOFF_INITIAL"`

	// BackoffMax caps retry delays. Default: 30s
	BackoffMax time.Duration `yaml:"backoff_max" env:"BACKOFF_MAX"`

	// BackoffMultiplier grows the delay per retry. Default: 2
	BackoffMultiplier float64 `yaml:"backoff_multiplier" env:"BACKOFF_MULTIPLIER"`

	// Jitter spreads retry delays by ±Jitter of their value. Default: 0
	Jitter float64 `yaml:"jitter" env:"JITTER"`

	// MaxRetries is the number of retries after the first attempt
	// before an attachment fails. Default: 3
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`

	// FetchTimeout bounds each request. Default: 15s
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT"`

	// MaxBytes is the largest attachment previewed. Default: 10 MiB
	MaxBytes int64 `yaml:"max_bytes" env:"MAX_BYTES"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: info
	Level string `yaml:"level" env:"LEVEL"`

	// Format is "text", "json", or "auto" (text on a terminal, json
	// otherwise). Empty selects json in production and auto elsewhere.
	Format string `yaml:"format" env:"FORMAT"`
}

// Default returns the default configuration. Load starts from these
// values before applying the file and environment.
func Default() *Config {
	return &Config{
		Environment: Development,
		Gateway: GatewayConfig{
			Encoding: "json",
		},
		Preview: PreviewConfig{
			InitialDelay:      150 * time.Millisecond,
			BackoffInitial:    time.Second,
			BackoffMax:        30 * time.Second,
			BackoffMultiplier: 2,
			MaxRetries:        3,
			FetchTimeout:      15 * time.Second,
			MaxBytes:          10 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the file named by HUDDLE_CONFIG.
// There is no fallback: if HUDDLE_CONFIG is not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvPrefix + "CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("HUDDLE_CONFIG environment variable not set; " +
			"set it to the path of your huddle.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, then
// applies HUDDLE_* environment overrides and validates the result.
func LoadFile(path string) (*Config, error) {
	return load(path, nil)
}

// load reads path and applies overrides from environ, or from the
// process environment when environ is nil.
func load(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnvironment(environ); err != nil {
		return nil, err
	}
	cfg.expandVariables(environ)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironment overrides fields from HUDDLE_* variables. Unset
// variables leave the file's values alone.
func (c *Config) applyEnvironment(environ map[string]string) error {
	options := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		options.Environment = environ
	}
	if err := env.ParseWithOptions(c, options); err != nil {
		return fmt.Errorf("applying environment overrides: %w", err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// path fields.
func (c *Config) expandVariables(environ map[string]string) {
	lookup := os.Getenv
	if environ != nil {
		lookup = func(name string) string { return environ[name] }
	}
	c.Gateway.ManifestPath = expandVars(c.Gateway.ManifestPath, lookup)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, lookup func(string) string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := lookup(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// LogFormat returns the configured log format, resolving the empty
// default by environment.
func (c *Config) LogFormat() string {
	if c.Log.Format != "" {
		return c.Log.Format
	}
	if c.Environment == Production {
		return "json"
	}
	return "auto"
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.API.BaseURL != "" {
		if err := validateHTTPURL(c.API.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("api.base_url: %w", err))
		}
	}
	if c.API.TokenURL != "" {
		if err := validateHTTPURL(c.API.TokenURL); err != nil {
			errs = append(errs, fmt.Errorf("api.token_url: %w", err))
		}
		if c.API.ClientID == "" {
			errs = append(errs, fmt.Errorf("api.client_id is required when api.token_url is set"))
		}
	}

	encodings := []string{"json", "cbor"}
	if !slices.Contains(encodings, c.Gateway.Encoding) {
		errs = append(errs, fmt.Errorf("gateway.encoding must be one of: %v", encodings))
	}

	p := c.Preview
	if p.InitialDelay <= 0 {
		errs = append(errs, fmt.Errorf("preview.initial_delay must be positive"))
	}
	if p.BackoffInitial <= 0 {
		errs = append(errs, fmt.Errorf("preview.backoff_initial must be positive"))
	}
	if p.BackoffMax < p.BackoffInitial {
		errs = append(errs, fmt.Errorf("preview.backoff_max must be at least preview.backoff_initial"))
	}
	if p.BackoffMultiplier < 1 {
		errs = append(errs, fmt.Errorf("preview.backoff_multiplier must be at least 1"))
	}
	if p.Jitter < 0 || p.Jitter >= 1 {
		errs = append(errs, fmt.Errorf("preview.jitter must be in [0, 1)"))
	}
	if p.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("preview.max_retries must not be negative"))
	}
	if p.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("preview.fetch_timeout must be positive"))
	}
	if p.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("preview.max_bytes must be positive"))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levels))
	}
	formats := []string{"", "text", "json", "auto"}
	if !slices.Contains(formats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formats[1:]))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%q must be an http or https URL", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
