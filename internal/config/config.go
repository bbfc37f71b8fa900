// Package config loads the server configuration from a TOML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment override names.
const (
	EnvListenAddr  = "TRC_LISTEN_ADDR"
	EnvDatabase    = "TRC_DATABASE"
	EnvLuaDir      = "TRC_LUA_DIR"
	EnvLogLevel    = "TRC_LOG_LEVEL"
	EnvIdleTimeout = "TRC_IDLE_TIMEOUT_SECONDS"
)

// Config is the full server configuration.
type Config struct {
	ListenAddr  string   `toml:"listen_addr"`
	Database    string   `toml:"database"`
	LuaDir      string   `toml:"lua_dir"`
	CORSOrigins []string `toml:"cors_origins"`
	LogLevel    string   `toml:"log_level"`
	// IdleTimeoutSeconds closes sockets that stay silent this long.
	// Zero disables the check.
	IdleTimeoutSeconds int `toml:"idle_timeout_seconds"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr:         ":8080",
		Database:           "trc.db",
		CORSOrigins:        []string{"*"},
		LogLevel:           "info",
		IdleTimeoutSeconds: 300,
	}
}

// Load reads the TOML file at path (when path is non-empty) over the
// defaults and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// IdleTimeout returns the idle timeout as a duration; zero means disabled.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv(EnvLuaDir); v != "" {
		cfg.LuaDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvIdleTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.IdleTimeoutSeconds = n
		}
	}
}
