package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/prr-network/prr/internal/logging"
)

// ConfigEnv names the environment variable that points at the config file.
const ConfigEnv = "PRR_CONFIG"

// Ledger backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config is the daemon configuration, read from a TOML file.
type Config struct {
	API     APIConfig     `toml:"api"`
	Network NetworkConfig `toml:"network"`
	Ledger  LedgerConfig  `toml:"ledger"`
	Metrics MetricsConfig `toml:"metrics"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NetworkConfig holds the network-wide rules.
type NetworkConfig struct {
	MaxTerminals int `toml:"max_terminals"` // per client, 0 = unbounded
}

// LedgerConfig selects and configures the ledger backend.
type LedgerConfig struct {
	Backend       string `toml:"backend"`
	SQLiteDir     string `toml:"sqlite_dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8642,
		},
		Network: NetworkConfig{
			MaxTerminals: 0,
		},
		Ledger: LedgerConfig{
			Backend:     BackendMemory,
			SQLiteDir:   "~/.prr",
			RedisAddr:   "127.0.0.1:6379",
			RedisPrefix: "prr:ledger:",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigPath resolves the config file: the explicit flag wins, then
// PRR_CONFIG. An empty result means defaults only.
func ConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(ConfigEnv)
}

// Load decodes path over DefaultConfig and validates the result. An empty
// or missing path yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the daemon cannot start with.
func (c Config) Validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Network.MaxTerminals < 0 {
		return fmt.Errorf("network.max_terminals must not be negative")
	}
	switch c.Ledger.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Ledger.SQLiteDir == "" {
			return fmt.Errorf("ledger.sqlite_dir is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Ledger.RedisAddr == "" {
			return fmt.Errorf("ledger.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown ledger.backend %q", c.Ledger.Backend)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
