package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config is the root configuration for focus25, stored in
// ~/.focus25/config.json. The file supports single-line // comments.
type Config struct {
	Database DatabaseConfig `json:"database"`
	Sync     SyncConfig     `json:"sync"`
	Log      LogConfig      `json:"log"`
	Stats    StatsConfig    `json:"stats"`
}

type DatabaseConfig struct {
	// Path is the SQLite file. Empty = ~/.focus25/focus25.db.
	Path string `json:"path"`
}

// SyncConfig holds the remote record store and OAuth2 settings.
type SyncConfig struct {
	// Endpoint is the base URL of the remote store, or "memory" for an
	// in-process store that is discarded on exit.
	Endpoint string `json:"endpoint"`
	// DeviceAuthURL and TokenURL are the OAuth2 device flow endpoints.
	DeviceAuthURL string   `json:"device_auth_url"`
	TokenURL      string   `json:"token_url"`
	ClientID      string   `json:"client_id"`
	Scopes        []string `json:"scopes"`
	// TimeoutSeconds bounds one sync pass.
	TimeoutSeconds int `json:"timeout_seconds"`
	// TokenFile overrides ~/.focus25/auth/tokens.json.
	TokenFile string `json:"token_file"`
}

// Timeout returns the pass deadline as a duration.
func (s SyncConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// LogConfig controls where sync logs go. An empty File logs to stderr.
type LogConfig struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

type StatsConfig struct {
	// Timezone is the IANA zone for day boundaries. Empty = system local.
	Timezone string `json:"timezone"`
}

// Location resolves Timezone.
func (s StatsConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid stats timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

const (
	// DefaultEndpoint is the hosted focus25 record store.
	DefaultEndpoint       = "https://api.focus25.app/v1"
	DefaultDeviceAuthURL  = "https://auth.focus25.app/oauth2/device"
	DefaultTokenURL       = "https://auth.focus25.app/oauth2/token"
	DefaultClientID       = "focus25-cli"
	DefaultTimeoutSeconds = 30
	DefaultLogMaxSizeMB   = 10
	DefaultLogMaxBackups  = 3
	// MemoryEndpoint selects the in-process remote store.
	MemoryEndpoint = "memory"
)

// Environment variables that override the file.
const (
	EnvDB           = "FOCUS25_DB"
	EnvSyncEndpoint = "FOCUS25_SYNC_ENDPOINT"
	EnvLogFile      = "FOCUS25_LOG_FILE"
	EnvSyncTimeout  = "FOCUS25_SYNC_TIMEOUT"
)

var defaultScopes = []string{"records.readwrite", "offline_access"}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Sync: SyncConfig{
			Endpoint:       DefaultEndpoint,
			DeviceAuthURL:  DefaultDeviceAuthURL,
			TokenURL:       DefaultTokenURL,
			ClientID:       DefaultClientID,
			Scopes:         defaultScopes,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Log: LogConfig{
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing.
const configTemplate = `// focus25 configuration – ~/.focus25/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Environment variables FOCUS25_DB, FOCUS25_SYNC_ENDPOINT,
// FOCUS25_SYNC_TIMEOUT and FOCUS25_LOG_FILE (also read from a .env file in
// the working directory) override the values in this file.
{
  // ── Local database ───────────────────────────────────────────────────────
  "database": {
    // SQLite file. Leave empty for ~/.focus25/focus25.db
    "path": ""
  },

  // ── Remote sync ──────────────────────────────────────────────────────────
  "sync": {
    // Base URL of the remote record store.
    // Use "memory" to sync against a throwaway in-process store.
    "endpoint": "https://api.focus25.app/v1",

    // OAuth2 device code flow used by: focus25 login
    "device_auth_url": "https://auth.focus25.app/oauth2/device",
    "token_url": "https://auth.focus25.app/oauth2/token",
    "client_id": "focus25-cli",
    "scopes": ["records.readwrite", "offline_access"],

    // Upper bound for one sync pass, in seconds.
    "timeout_seconds": 30,

    // Token cache. Leave empty for ~/.focus25/auth/tokens.json
    "token_file": ""
  },

  // ── Sync log ─────────────────────────────────────────────────────────────
  "log": {
    // Rotating log file for sync activity. Leave empty to log to stderr.
    "file": "",
    "max_size_mb": 10,
    "max_backups": 3
  },

  // ── Statistics ───────────────────────────────────────────────────────────
  "stats": {
    // IANA timezone for day boundaries, e.g. "Europe/Berlin".
    // Leave empty to use the system timezone. Override with --tz.
    "timezone": ""
  }
}
`

// Dir returns ~/.focus25
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".focus25"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.focus25/config.json, creating it with annotated defaults on
// first run, and applies environment overrides.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return applyEnv(defaultConfig()), err
	}
	return LoadFile(filepath.Join(dir, "config.json"))
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return applyEnv(defaultConfig()), nil
	}
	if err != nil {
		return applyEnv(defaultConfig()), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return applyEnv(defaultConfig()), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	fillDefaults(&cfg)
	return applyEnv(cfg), nil
}

// fillDefaults replaces zero-value fields so callers always get a usable
// Config even if the file is only partially filled in.
func fillDefaults(cfg *Config) {
	def := defaultConfig()
	if cfg.Sync.Endpoint == "" {
		cfg.Sync.Endpoint = def.Sync.Endpoint
	}
	if cfg.Sync.DeviceAuthURL == "" {
		cfg.Sync.DeviceAuthURL = def.Sync.DeviceAuthURL
	}
	if cfg.Sync.TokenURL == "" {
		cfg.Sync.TokenURL = def.Sync.TokenURL
	}
	if cfg.Sync.ClientID == "" {
		cfg.Sync.ClientID = def.Sync.ClientID
	}
	if len(cfg.Sync.Scopes) == 0 {
		cfg.Sync.Scopes = def.Sync.Scopes
	}
	if cfg.Sync.TimeoutSeconds <= 0 {
		cfg.Sync.TimeoutSeconds = def.Sync.TimeoutSeconds
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = def.Log.MaxSizeMB
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = def.Log.MaxBackups
	}
}

// applyEnv lets environment variables override file settings.
func applyEnv(cfg Config) Config {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(EnvSyncEndpoint); v != "" {
		cfg.Sync.Endpoint = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv(EnvSyncTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Sync.TimeoutSeconds = n
		} else {
			fmt.Fprintf(os.Stderr, "Warning: ignoring invalid %s=%q\n", EnvSyncTimeout, v)
		}
	}
	return cfg
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
