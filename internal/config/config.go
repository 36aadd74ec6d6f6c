package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/BurntSushi/toml"
)

const (
	DefaultServerURL      = "http://localhost:5000"
	DefaultLogLevel       = "info"
	DefaultRequestTimeout = 10 * time.Second
	DefaultMaxImageBytes  = 5 << 20
)

// Config represents the global ~/.chatterm/config.toml.
type Config struct {
	DefaultProfile string        `toml:"default_profile"`
	ServerURL      string        `toml:"server_url"`
	LiveURL        string        `toml:"live_url"`
	LogLevel       string        `toml:"log_level"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MaxImageBytes  int64         `toml:"max_image_bytes"`
}

// Default returns a config pointing at a backend on localhost.
func Default() *Config {
	cfg := &Config{}
	cfg.fill()
	return cfg
}

// Load reads config from the given path. Returns nil and error if file missing.
// Fields left empty in the file are filled with defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	cfg.fill()
	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return nil, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// envOverrides lists the CHATTERM_* variables that win over the file.
type envOverrides struct {
	Profile        string `env:"CHATTERM_PROFILE"`
	ServerURL      string `env:"CHATTERM_SERVER_URL"`
	LiveURL        string `env:"CHATTERM_LIVE_URL"`
	LogLevel       string `env:"CHATTERM_LOG_LEVEL"`
	RequestTimeout string `env:"CHATTERM_REQUEST_TIMEOUT"`
	MaxImageBytes  string `env:"CHATTERM_MAX_IMAGE_BYTES"`
}

// ApplyEnv overlays CHATTERM_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if _, err := env.UnmarshalFromEnviron(&o); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if o.Profile != "" {
		cfg.DefaultProfile = o.Profile
	}
	if o.ServerURL != "" {
		cfg.ServerURL = o.ServerURL
		if o.LiveURL == "" {
			cfg.LiveURL = ""
		}
	}
	if o.LiveURL != "" {
		cfg.LiveURL = o.LiveURL
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.RequestTimeout != "" {
		d, err := time.ParseDuration(o.RequestTimeout)
		if err != nil {
			return fmt.Errorf("CHATTERM_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if o.MaxImageBytes != "" {
		n, err := strconv.ParseInt(o.MaxImageBytes, 10, 64)
		if err != nil {
			return fmt.Errorf("CHATTERM_MAX_IMAGE_BYTES: %w", err)
		}
		cfg.MaxImageBytes = n
	}
	cfg.fill()
	return nil
}

func (c *Config) fill() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.LiveURL == "" {
		c.LiveURL = LiveURLFor(c.ServerURL)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = DefaultMaxImageBytes
	}
}

// LiveURLFor derives the websocket endpoint served next to the REST API.
func LiveURLFor(serverURL string) string {
	base := strings.TrimRight(serverURL, "/")
	if rest, ok := strings.CutPrefix(base, "https://"); ok {
		return "wss://" + rest + "/ws"
	}
	if rest, ok := strings.CutPrefix(base, "http://"); ok {
		return "ws://" + rest + "/ws"
	}
	return base + "/ws"
}
