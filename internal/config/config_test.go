package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := &Config{DefaultProfile: "work", ServerURL: "https://chat.example.com", RequestTimeout: 3 * time.Second}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "work")
	}
	if loaded.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v, want 3s", loaded.RequestTimeout)
	}
	if loaded.LiveURL != "wss://chat.example.com/ws" {
		t.Errorf("LiveURL = %q, want derived wss URL", loaded.LiveURL)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefaultMissing(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.ServerURL != DefaultServerURL {
		t.Errorf("ServerURL = %q, want %q", cfg.ServerURL, DefaultServerURL)
	}
	if cfg.MaxImageBytes != DefaultMaxImageBytes {
		t.Errorf("MaxImageBytes = %d, want %d", cfg.MaxImageBytes, DefaultMaxImageBytes)
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, &Config{DefaultProfile: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CHATTERM_SERVER_URL", "http://10.0.0.2:5000")
	t.Setenv("CHATTERM_REQUEST_TIMEOUT", "250ms")
	t.Setenv("CHATTERM_PROFILE", "alt")

	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.ServerURL != "http://10.0.0.2:5000" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.LiveURL != "ws://10.0.0.2:5000/ws" {
		t.Errorf("LiveURL = %q, want re-derived from server URL", cfg.LiveURL)
	}
	if cfg.RequestTimeout != 250*time.Millisecond {
		t.Errorf("RequestTimeout = %v, want 250ms", cfg.RequestTimeout)
	}
	if cfg.DefaultProfile != "alt" {
		t.Errorf("DefaultProfile = %q, want alt", cfg.DefaultProfile)
	}
}

func TestApplyEnvBadDuration(t *testing.T) {
	t.Setenv("CHATTERM_REQUEST_TIMEOUT", "soon")
	if err := ApplyEnv(Default()); err == nil {
		t.Error("ApplyEnv() expected error for bad duration")
	}
}

func TestLiveURLFor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://localhost:5000", "ws://localhost:5000/ws"},
		{"https://chat.example.com/", "wss://chat.example.com/ws"},
		{"localhost:5000", "localhost:5000/ws"},
	}
	for _, tt := range tests {
		if got := LiveURLFor(tt.in); got != tt.want {
			t.Errorf("LiveURLFor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
