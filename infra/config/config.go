package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds application-level configuration.
type Config struct {
	APIURL       string // e.g. "http://localhost:8000/api"
	DataDir      string // Client storage and logs
	Store        string // StoreFile or StoreSQLite
	LogLevel     string
	LogFile      string
	TelemetryDSN string

	// Engagement timing overrides. Zero keeps the built-in defaults.
	HeartbeatInterval time.Duration
	ViewDwell         time.Duration
	ScrollThreshold   float64 // Percent of the article seen
	PendingTTL        time.Duration
}

// fileConfig mirrors Config in the optional TOML file.
type fileConfig struct {
	APIURL       string `toml:"api_url"`
	DataDir      string `toml:"data_dir"`
	Store        string `toml:"store"`
	LogLevel     string `toml:"log_level"`
	LogFile      string `toml:"log_file"`
	TelemetryDSN string `toml:"telemetry_dsn"`

	HeartbeatInterval string  `toml:"heartbeat_interval"`
	ViewDwell         string  `toml:"view_dwell"`
	ScrollThreshold   float64 `toml:"scroll_threshold"`
	PendingTTL        string  `toml:"pending_ttl"`
}

// DefaultPath returns ~/.config/journalterm/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "journalterm", "config.toml"), nil
}

// Load reads the TOML file at path (a missing file is fine), then applies
// environment variables on top:
//
//	JOURNALTERM_API_URL       API base URL (default: http://localhost:8000/api)
//	JOURNALTERM_DATA_DIR      data directory (default: ~/.config/journalterm)
//	JOURNALTERM_STORE         "file" or "sqlite" (default: file)
//	JOURNALTERM_LOG_LEVEL     debug|info|warn|error (default: info)
//	JOURNALTERM_LOG_FILE      log file (default: <data dir>/journalterm.log)
//	JOURNALTERM_TELEMETRY_DSN error telemetry DSN (optional)
//
// and the engagement timing overrides, all optional:
//
//	JOURNALTERM_HEARTBEAT_INTERVAL  presence signal period, e.g. "15s"
//	JOURNALTERM_VIEW_DWELL          dwell before a view counts, e.g. "15s"
//	JOURNALTERM_SCROLL_THRESHOLD    scroll percent that counts as a view
//	JOURNALTERM_PENDING_TTL         how long a deferred follow stays valid
func Load(path string) (Config, error) {
	var fc fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("parsing %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	cfg := Config{
		APIURL:       pick("JOURNALTERM_API_URL", fc.APIURL, "http://localhost:8000/api"),
		DataDir:      pick("JOURNALTERM_DATA_DIR", fc.DataDir, ""),
		Store:        pick("JOURNALTERM_STORE", fc.Store, StoreFile),
		LogLevel:     pick("JOURNALTERM_LOG_LEVEL", fc.LogLevel, "info"),
		LogFile:      pick("JOURNALTERM_LOG_FILE", fc.LogFile, ""),
		TelemetryDSN: pick("JOURNALTERM_TELEMETRY_DSN", fc.TelemetryDSN, ""),
	}

	parsed, err := url.Parse(cfg.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, fmt.Errorf("invalid JOURNALTERM_API_URL: must be an absolute URL")
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return Config{}, fmt.Errorf("invalid JOURNALTERM_API_URL: only http and https are allowed")
	}
	cfg.APIURL = strings.TrimRight(parsed.String(), "/")

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".config", "journalterm")
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "journalterm.log")
	}

	switch cfg.Store {
	case StoreFile, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("invalid JOURNALTERM_STORE %q: want %q or %q", cfg.Store, StoreFile, StoreSQLite)
	}

	if cfg.HeartbeatInterval, err = pickDuration("JOURNALTERM_HEARTBEAT_INTERVAL", fc.HeartbeatInterval); err != nil {
		return Config{}, err
	}
	if cfg.ViewDwell, err = pickDuration("JOURNALTERM_VIEW_DWELL", fc.ViewDwell); err != nil {
		return Config{}, err
	}
	if cfg.PendingTTL, err = pickDuration("JOURNALTERM_PENDING_TTL", fc.PendingTTL); err != nil {
		return Config{}, err
	}

	threshold := ""
	if fc.ScrollThreshold != 0 {
		threshold = strconv.FormatFloat(fc.ScrollThreshold, 'f', -1, 64)
	}
	if raw := pick("JOURNALTERM_SCROLL_THRESHOLD", threshold, ""); raw != "" {
		pct, err := strconv.ParseFloat(raw, 64)
		if err != nil || pct <= 0 || pct > 100 {
			return Config{}, fmt.Errorf("invalid JOURNALTERM_SCROLL_THRESHOLD %q: want a percent in (0, 100]", raw)
		}
		cfg.ScrollThreshold = pct
	}

	return cfg, nil
}

// StorePath returns the client storage location for the configured backend.
func (c Config) StorePath() string {
	if c.Store == StoreSQLite {
		return filepath.Join(c.DataDir, "store.db")
	}
	return filepath.Join(c.DataDir, "store.json")
}

// pickDuration reads an optional positive duration. Unset yields zero.
func pickDuration(env, fromFile string) (time.Duration, error) {
	raw := pick(env, fromFile, "")
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: want a positive duration such as \"15s\"", env, raw)
	}
	return d, nil
}

func pick(env, fromFile, def string) string {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fromFile); v != "" {
		return v
	}
	return def
}
