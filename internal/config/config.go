package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from file, env and flags.
const (
	DefaultEndpoint    = "https://192.168.3.254"
	DefaultTokenEnv    = "UNIFI_API_TOKEN"
	DefaultInterval    = 5 * time.Minute
	DefaultTimeout     = 10 * time.Second
	DefaultConcurrency = 4
	DefaultListen      = ":8080"
)

// Environment variables consulted between file values and flag overrides.
const (
	EnvEndpoint = "UNIFI_API_ENDPOINT"
	EnvInterval = "UNIFI_POLL_INTERVAL"
	EnvListen   = "UNIFI_LISTEN_ADDRESS"
)

// Config is the full exporter configuration. Fields map 1:1 to
// config.example.yaml.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Poll       PollConfig       `yaml:"poll"`
	Listen     ListenConfig     `yaml:"listen"`
}

// ControllerConfig holds everything needed to reach the controller.
type ControllerConfig struct {
	// Endpoint is the controller base URL, e.g. "https://192.168.3.254".
	Endpoint string `yaml:"endpoint"`

	// TokenEnv is the name of the environment variable holding the API
	// token. The token value itself never lives in the config file.
	TokenEnv string `yaml:"token_env"`

	// InsecureSkipVerify disables TLS certificate verification. Defaults
	// to true — on-prem controllers ship with self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// Timeout bounds each request to the controller.
	Timeout time.Duration `yaml:"timeout"`

	// APIToken is the resolved token. Populated by Resolve, never parsed
	// from YAML and never logged.
	APIToken string `yaml:"-"`
}

// PollConfig holds the background refresh settings.
type PollConfig struct {
	// Interval is the pause between poll cycles.
	Interval time.Duration `yaml:"interval"`

	// Concurrency bounds the per-cycle device statistics fan-out.
	// 1 fetches sequentially.
	Concurrency int `yaml:"concurrency"`
}

// ListenConfig holds the serving boundary settings.
type ListenConfig struct {
	// Address is the host:port the scrape endpoint binds to.
	Address string `yaml:"address"`
}

// Flags are the command-line overrides. Zero values mean "not given".
type Flags struct {
	Endpoint string
	Token    string
	Listen   string
	Interval time.Duration
}

// Resolve builds the effective configuration. Precedence, lowest to
// highest: hardcoded defaults, YAML file (path may be empty), environment
// variables, command-line flags. The resolved config is validated; a
// missing API token is a hard failure.
func Resolve(path string, fl Flags) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	applyEnv(cfg)
	applyFlags(cfg, fl)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Controller: ControllerConfig{
			Endpoint:           DefaultEndpoint,
			TokenEnv:           DefaultTokenEnv,
			InsecureSkipVerify: true,
			Timeout:            DefaultTimeout,
		},
		Poll: PollConfig{
			Interval:    DefaultInterval,
			Concurrency: DefaultConcurrency,
		},
		Listen: ListenConfig{
			Address: DefaultListen,
		},
	}
}

// applyEnv layers environment variables over the file values. The token is
// always env-sourced at this stage (via TokenEnv indirection); the flag can
// still override it afterwards.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvEndpoint); v != "" {
		cfg.Controller.Endpoint = v
	}
	if v := os.Getenv(cfg.Controller.TokenEnv); v != "" {
		cfg.Controller.APIToken = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		cfg.Listen.Address = v
	}
	if v := os.Getenv(EnvInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			// A malformed env interval is ignored rather than fatal; the
			// validated file/flag/default value still applies.
			return
		}
		cfg.Poll.Interval = d
	}
}

// applyFlags layers explicit command-line flags over everything else.
func applyFlags(cfg *Config, fl Flags) {
	if fl.Endpoint != "" {
		cfg.Controller.Endpoint = fl.Endpoint
	}
	if fl.Token != "" {
		cfg.Controller.APIToken = fl.Token
	}
	if fl.Listen != "" {
		cfg.Listen.Address = fl.Listen
	}
	if fl.Interval > 0 {
		cfg.Poll.Interval = fl.Interval
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Controller.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("controller.endpoint %q is not a valid http(s) URL", cfg.Controller.Endpoint)
	}
	if cfg.Controller.APIToken == "" {
		return fmt.Errorf("API token is required: pass -token or set %s", cfg.Controller.TokenEnv)
	}
	if cfg.Controller.Timeout <= 0 {
		return fmt.Errorf("controller.timeout must be positive")
	}
	if cfg.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive")
	}
	if cfg.Poll.Concurrency < 1 {
		return fmt.Errorf("poll.concurrency must be at least 1")
	}
	if cfg.Listen.Address == "" {
		return fmt.Errorf("listen.address is required")
	}
	return nil
}
