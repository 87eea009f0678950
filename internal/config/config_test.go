package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != defaultBaseURL {
		t.Fatalf("BaseURL = %q, want %q", cfg.API.BaseURL, defaultBaseURL)
	}
	if cfg.API.PerPage != defaultPerPage {
		t.Fatalf("PerPage = %d, want %d", cfg.API.PerPage, defaultPerPage)
	}
	if cfg.Cache.TTL != 5*time.Minute || cfg.Cache.MaxSize != 50 {
		t.Fatalf("Cache = %+v, want 5m/50", cfg.Cache)
	}
	if cfg.Cache.LeadsTTL != 2*time.Minute || cfg.Cache.LeadsMaxSize != 20 {
		t.Fatalf("lead cache = %v/%d, want 2m/20", cfg.Cache.LeadsTTL, cfg.Cache.LeadsMaxSize)
	}

	wantDB, err := ExpandPath(defaultStateDB)
	if err != nil {
		t.Fatalf("ExpandPath(defaultStateDB) returned error: %v", err)
	}
	if cfg.Storage.StateDB != wantDB {
		t.Fatalf("StateDB = %q, want %q", cfg.Storage.StateDB, wantDB)
	}
	if !strings.HasPrefix(cfg.Log.File, home) {
		t.Fatalf("Log.File = %q, want it under HOME %q", cfg.Log.File, home)
	}
	if cfg.Metrics.Listen != "" {
		t.Fatalf("Metrics.Listen = %q, want empty", cfg.Metrics.Listen)
	}
}

func TestLoad_EmptyPathUsesDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "leaddesk")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[api]\nper_page = 40\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.PerPage != 40 {
		t.Fatalf("PerPage = %d, want 40", cfg.API.PerPage)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
[api]
base_url = "  https://crm.example.com/api  "
timeout = " 3s "
per_page = 10

[cache]
ttl = "1m"
max_size = 5
leads_ttl = "30s"
leads_max_size = 3

[storage]
state_db = "  ~/.leaddesk/state.db  "

[refresh]
interval = "2m"
min_gap = "1s"

[log]
level = " DEBUG "

[metrics]
listen = " 127.0.0.1:9464 "
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://crm.example.com/api" {
		t.Fatalf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v, want 3s", cfg.API.Timeout)
	}
	if cfg.API.PerPage != 10 {
		t.Fatalf("PerPage = %d, want 10", cfg.API.PerPage)
	}
	if cfg.Cache.TTL != time.Minute || cfg.Cache.MaxSize != 5 {
		t.Fatalf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.LeadsTTL != 30*time.Second || cfg.Cache.LeadsMaxSize != 3 {
		t.Fatalf("lead cache = %v/%d", cfg.Cache.LeadsTTL, cfg.Cache.LeadsMaxSize)
	}
	if cfg.Storage.StateDB != filepath.Join(home, ".leaddesk", "state.db") {
		t.Fatalf("StateDB = %q", cfg.Storage.StateDB)
	}
	if cfg.Refresh.Interval != 2*time.Minute || cfg.Refresh.MinGap != time.Second {
		t.Fatalf("Refresh = %+v", cfg.Refresh)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Metrics.Listen != "127.0.0.1:9464" {
		t.Fatalf("Metrics.Listen = %q", cfg.Metrics.Listen)
	}
}

func TestLoad_ClampsPerPageAndInterval(t *testing.T) {
	path := writeConfig(t, `
[api]
per_page = 5000

[refresh]
interval = "1s"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.PerPage != maxPerPage {
		t.Fatalf("PerPage = %d, want %d", cfg.API.PerPage, maxPerPage)
	}
	if cfg.Refresh.Interval != minRefreshInterval {
		t.Fatalf("Interval = %v, want %v", cfg.Refresh.Interval, minRefreshInterval)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed toml", "[api\n", "parse config"},
		{"bad duration", "[cache]\nttl = \"soon\"\n", "cache.ttl"},
		{"negative duration", "[api]\ntimeout = \"-1s\"\n", "must be positive"},
		{"unknown level", "[log]\nlevel = \"loud\"\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("Load returned nil error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/data")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "data") {
		t.Fatalf("ExpandPath = %q, want %q", got, filepath.Join(home, "data"))
	}

	if _, err := ExpandPath("   "); err == nil {
		t.Fatalf("ExpandPath(blank) returned nil error")
	}
}
