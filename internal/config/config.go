package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Defaults. The 5 minute inactivity window and 24 hour session lifetime are
// fixed policy inherited from the deployed application; the rest are knobs.
const (
	DefaultSessionTTL       = 24 * time.Hour
	DefaultInactivityWindow = 5 * time.Minute
	DefaultRequestTimeout   = 30 * time.Second
	DefaultProbeInterval    = 15 * time.Second
)

// Config holds everything the field client needs to run.
type Config struct {
	// BaseURL is the root of the waste-management backend, e.g.
	// https://api.wastewatch.example.
	BaseURL string

	// WebSocketURL is the live route-monitoring feed. Empty disables the feed.
	WebSocketURL string

	// DataDir holds the durable session store and the offline queue database.
	DataDir string

	SessionTTL       time.Duration
	InactivityWindow time.Duration
	RequestTimeout   time.Duration
	ProbeInterval    time.Duration
}

// fileConfig is the YAML shape. Durations are strings ("5m", "24h") so config
// files stay readable.
type fileConfig struct {
	BaseURL          string `yaml:"base_url"`
	WebSocketURL     string `yaml:"websocket_url"`
	DataDir          string `yaml:"data_dir"`
	SessionTTL       string `yaml:"session_ttl"`
	InactivityWindow string `yaml:"inactivity_window"`
	RequestTimeout   string `yaml:"request_timeout"`
	ProbeInterval    string `yaml:"probe_interval"`
}

// Load builds a Config from defaults, then the YAML file at path (skipped if
// path is empty or the file does not exist), then environment variables.
// Environment wins, matching how the rest of the deployment is configured.
func Load(path string) (Config, error) {
	cfg := Config{
		SessionTTL:       DefaultSessionTTL,
		InactivityWindow: DefaultInactivityWindow,
		RequestTimeout:   DefaultRequestTimeout,
		ProbeInterval:    DefaultProbeInterval,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			if err := fc.apply(&cfg); err != nil {
				return Config{}, fmt.Errorf("config %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = home + "/.wastewatch"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (fc fileConfig) apply(cfg *Config) error {
	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.WebSocketURL != "" {
		cfg.WebSocketURL = fc.WebSocketURL
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}
	for _, d := range []struct {
		raw  string
		name string
		dst  *time.Duration
	}{
		{fc.SessionTTL, "session_ttl", &cfg.SessionTTL},
		{fc.InactivityWindow, "inactivity_window", &cfg.InactivityWindow},
		{fc.RequestTimeout, "request_timeout", &cfg.RequestTimeout},
		{fc.ProbeInterval, "probe_interval", &cfg.ProbeInterval},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.raw, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WW_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("WW_WEBSOCKET_URL"); v != "" {
		cfg.WebSocketURL = v
	}
	if v := os.Getenv("WW_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("WW_INACTIVITY_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.InactivityWindow = d
		}
	}
	if v := os.Getenv("WW_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTTL = d
		}
	}
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL is required (WW_BASE_URL or base_url)")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.InactivityWindow <= 0 {
		return errors.New("inactivity_window must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if c.ProbeInterval <= 0 {
		return errors.New("probe_interval must be positive")
	}
	return nil
}
