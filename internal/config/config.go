// Package config loads application configuration from flags, environment
// variables and an optional YAML file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. DETECTPANEL_API_BASE.
const EnvPrefix = "DETECTPANEL"

// Configuration keys. Flags are bound under the same names with "-" instead
// of "_".
const (
	KeyConfigFile  = "config"
	KeyAPIBase     = "api_base"
	KeyDBPath      = "db_path"
	KeySecretKey   = "secret_key"
	KeyHTTPTimeout = "http_timeout"
	KeyHTTPCache   = "http_cache"
	KeyLogLevel    = "log_level"
	KeyLogFormat   = "log_format"
)

// Config holds the validated application configuration.
type Config struct {
	APIBase     string
	DBPath      string
	SecretKey   []byte // 32-byte AES-256 key; nil when not configured.
	HTTPTimeout time.Duration
	HTTPCache   bool
	LogLevel    string
	LogFormat   string
}

// HasSecretKey reports whether session values will be encrypted at rest.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) > 0
}

// Defaults returns the built-in default for every key.
func Defaults() map[string]any {
	return map[string]any{
		KeyAPIBase:     "http://localhost:8000",
		KeyDBPath:      defaultDBPath(),
		KeyHTTPTimeout: "0s",
		KeyHTTPCache:   true,
		KeyLogLevel:    "warn",
		KeyLogFormat:   "text",
	}
}

// defaultDBPath places the session database in the user config directory,
// falling back to the working directory.
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "detectpanel.db"
	}
	return filepath.Join(dir, "detectpanel", "session.db")
}

// Load reads configuration from v, which the caller may already have bound
// to command-line flags. Precedence, highest first: flags, DETECTPANEL_*
// environment variables, the YAML file named by the "config" key, defaults.
// Invalid values fail fast.
func Load(v *viper.Viper) (*Config, error) {
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path := v.GetString(KeyConfigFile); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
	}

	apiBase := strings.TrimSpace(v.GetString(KeyAPIBase))
	u, err := url.Parse(apiBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%s_API_BASE has invalid URL %q", EnvPrefix, apiBase)
	}

	timeoutRaw := v.GetString(KeyHTTPTimeout)
	timeout, err := time.ParseDuration(timeoutRaw)
	if err != nil {
		return nil, fmt.Errorf("%s_HTTP_TIMEOUT has invalid duration %q: %w", EnvPrefix, timeoutRaw, err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("%s_HTTP_TIMEOUT must not be negative, got %s", EnvPrefix, timeout)
	}

	secretKey, err := parseSecretKey(v.GetString(KeySecretKey))
	if err != nil {
		return nil, err
	}

	dbPath := strings.TrimSpace(v.GetString(KeyDBPath))
	if dbPath == "" {
		return nil, errors.New(EnvPrefix + "_DB_PATH must not be empty")
	}

	return &Config{
		APIBase:     apiBase,
		DBPath:      dbPath,
		SecretKey:   secretKey,
		HTTPTimeout: timeout,
		HTTPCache:   v.GetBool(KeyHTTPCache),
		LogLevel:    v.GetString(KeyLogLevel),
		LogFormat:   v.GetString(KeyLogFormat),
	}, nil
}

// parseSecretKey decodes a 64-character hex string into a 32-byte key.
// An empty string means no key.
func parseSecretKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s_SECRET_KEY is not valid hex: %w", EnvPrefix, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%s_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", EnvPrefix, len(key))
	}
	return key, nil
}
