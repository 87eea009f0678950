package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds every setting leaddesk reads at startup.
type Config struct {
	API     APIConfig
	Cache   CacheConfig
	Storage StorageConfig
	Refresh RefreshConfig
	Log     LogConfig
	Metrics MetricsConfig
}

// APIConfig locates the CRM API.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	PerPage   int
	UserAgent string
}

// CacheConfig sizes the list caches. The lead list has its own, shorter
// settings because leads change more often than tasks.
type CacheConfig struct {
	TTL          time.Duration
	MaxSize      int
	LeadsTTL     time.Duration
	LeadsMaxSize int
}

// StorageConfig locates durable state.
type StorageConfig struct {
	StateDB string
}

// RefreshConfig controls background refresh.
type RefreshConfig struct {
	Interval time.Duration
	MinGap   time.Duration
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string
	Level string
}

// MetricsConfig optionally exposes Prometheus metrics. Empty Listen disables
// the endpoint.
type MetricsConfig struct {
	Listen string
}

const (
	defaultConfigPath  = "~/.config/leaddesk/config.toml"
	defaultBaseURL     = "http://127.0.0.1:8080/api"
	defaultTimeout     = 10 * time.Second
	defaultPerPage     = 25
	defaultUserAgent   = "leaddesk/0.1"
	defaultCacheTTL    = 5 * time.Minute
	defaultCacheMax    = 50
	defaultLeadsTTL    = 2 * time.Minute
	defaultLeadsMax    = 20
	defaultStateDB     = "~/.local/share/leaddesk/state.db"
	defaultInterval    = 60 * time.Second
	defaultMinGap      = 5 * time.Second
	defaultLogFile     = "~/.local/state/leaddesk/leaddesk.log"
	defaultLogLevel    = "info"
	maxPerPage         = 200
	minRefreshInterval = 5 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:   defaultBaseURL,
			Timeout:   defaultTimeout,
			PerPage:   defaultPerPage,
			UserAgent: defaultUserAgent,
		},
		Cache: CacheConfig{
			TTL:          defaultCacheTTL,
			MaxSize:      defaultCacheMax,
			LeadsTTL:     defaultLeadsTTL,
			LeadsMaxSize: defaultLeadsMax,
		},
		Storage: StorageConfig{StateDB: mustExpand(defaultStateDB)},
		Refresh: RefreshConfig{Interval: defaultInterval, MinGap: defaultMinGap},
		Log:     LogConfig{File: mustExpand(defaultLogFile), Level: defaultLogLevel},
	}
}

// Load locates and parses the config file, falling back to defaults when it is
// missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		API struct {
			BaseURL   string `toml:"base_url"`
			Timeout   string `toml:"timeout"`
			PerPage   int    `toml:"per_page"`
			UserAgent string `toml:"user_agent"`
		} `toml:"api"`
		Cache struct {
			TTL          string `toml:"ttl"`
			MaxSize      int    `toml:"max_size"`
			LeadsTTL     string `toml:"leads_ttl"`
			LeadsMaxSize int    `toml:"leads_max_size"`
		} `toml:"cache"`
		Storage struct {
			StateDB string `toml:"state_db"`
		} `toml:"storage"`
		Refresh struct {
			Interval string `toml:"interval"`
			MinGap   string `toml:"min_gap"`
		} `toml:"refresh"`
		Log struct {
			File  string `toml:"file"`
			Level string `toml:"level"`
		} `toml:"log"`
		Metrics struct {
			Listen string `toml:"listen"`
		} `toml:"metrics"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.API.BaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(raw.API.UserAgent); v != "" {
		cfg.API.UserAgent = v
	}
	if raw.API.PerPage > 0 {
		cfg.API.PerPage = min(raw.API.PerPage, maxPerPage)
	}
	if raw.Cache.MaxSize > 0 {
		cfg.Cache.MaxSize = raw.Cache.MaxSize
	}
	if raw.Cache.LeadsMaxSize > 0 {
		cfg.Cache.LeadsMaxSize = raw.Cache.LeadsMaxSize
	}

	durations := []struct {
		key   string
		value string
		dest  *time.Duration
	}{
		{"api.timeout", raw.API.Timeout, &cfg.API.Timeout},
		{"cache.ttl", raw.Cache.TTL, &cfg.Cache.TTL},
		{"cache.leads_ttl", raw.Cache.LeadsTTL, &cfg.Cache.LeadsTTL},
		{"refresh.interval", raw.Refresh.Interval, &cfg.Refresh.Interval},
		{"refresh.min_gap", raw.Refresh.MinGap, &cfg.Refresh.MinGap},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.value, d.dest); err != nil {
			return Config{}, err
		}
	}
	if cfg.Refresh.Interval < minRefreshInterval {
		cfg.Refresh.Interval = minRefreshInterval
	}

	if v := strings.TrimSpace(raw.Storage.StateDB); v != "" {
		cfg.Storage.StateDB = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Log.File); v != "" {
		cfg.Log.File = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Log.Level)); v != "" {
		switch v {
		case "debug", "info", "warn", "error":
			cfg.Log.Level = v
		default:
			return Config{}, fmt.Errorf("parse config: log.level %q: want debug, info, warn or error", raw.Log.Level)
		}
	}
	cfg.Metrics.Listen = strings.TrimSpace(raw.Metrics.Listen)

	return cfg, nil
}

// parseDuration leaves dest untouched for empty values.
func parseDuration(key, value string, dest *time.Duration) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse config: %s must be positive, got %s", key, value)
	}
	*dest = d
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ to the home directory and returns an
// absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
