package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/WasteWatch/WW-Client/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wastewatch.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoadDefaults verifies a minimal file leaves the policy durations at
// their deployed defaults.
func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "base_url: https://api.example.com\ndata_dir: "+t.TempDir()+"\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com" {
		t.Errorf("base url: %q", cfg.BaseURL)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl default: %v", cfg.SessionTTL)
	}
	if cfg.InactivityWindow != 5*time.Minute {
		t.Errorf("inactivity window default: %v", cfg.InactivityWindow)
	}
	if cfg.ProbeInterval != 15*time.Second {
		t.Errorf("probe interval default: %v", cfg.ProbeInterval)
	}
}

// TestLoadFileDurations verifies duration strings in the file are parsed.
func TestLoadFileDurations(t *testing.T) {
	path := writeConfig(t, `base_url: https://api.example.com
data_dir: `+t.TempDir()+`
session_ttl: 1h
inactivity_window: 2m
probe_interval: 5s
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("session ttl: %v", cfg.SessionTTL)
	}
	if cfg.InactivityWindow != 2*time.Minute {
		t.Errorf("inactivity window: %v", cfg.InactivityWindow)
	}
	if cfg.ProbeInterval != 5*time.Second {
		t.Errorf("probe interval: %v", cfg.ProbeInterval)
	}
}

// TestEnvOverridesFile verifies environment variables win over the file.
func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `base_url: https://file.example.com
data_dir: `+t.TempDir()+`
inactivity_window: 10m
`)
	t.Setenv("WW_BASE_URL", "https://env.example.com")
	t.Setenv("WW_INACTIVITY_WINDOW", "90s")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://env.example.com" {
		t.Errorf("expected env base url to win, got %q", cfg.BaseURL)
	}
	if cfg.InactivityWindow != 90*time.Second {
		t.Errorf("expected env inactivity window to win, got %v", cfg.InactivityWindow)
	}
}

// TestMissingFileFallsThroughToEnv verifies a nonexistent config path is not
// an error as long as the environment completes the config.
func TestMissingFileFallsThroughToEnv(t *testing.T) {
	t.Setenv("WW_BASE_URL", "https://env.example.com")
	t.Setenv("WW_DATA_DIR", t.TempDir())

	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://env.example.com" {
		t.Errorf("base url: %q", cfg.BaseURL)
	}
}

// TestMissingBaseURLRejected verifies validation catches an unconfigured
// backend.
func TestMissingBaseURLRejected(t *testing.T) {
	path := writeConfig(t, "data_dir: "+t.TempDir()+"\n")

	if _, err := config.Load(path); err == nil {
		t.Fatal("expected an error for a missing base URL")
	}
}

// TestBadDurationRejected verifies an unparseable duration fails loading
// instead of silently using a default.
func TestBadDurationRejected(t *testing.T) {
	path := writeConfig(t, `base_url: https://api.example.com
inactivity_window: five minutes
`)

	if _, err := config.Load(path); err == nil {
		t.Fatal("expected an error for a malformed duration")
	}
}
