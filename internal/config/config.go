// Package config loads runtime settings from a .env file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/jwulff/inventory-go/internal/logger"
	"github.com/jwulff/inventory-go/internal/storage/sqlite"
)

// Environment variables.
const (
	EnvDBPath         = "INVENTORY_DB"
	EnvPort           = "INVENTORY_PORT"
	EnvMaxConns       = "INVENTORY_MAX_CONNS"
	EnvAcquireTimeout = "INVENTORY_ACQUIRE_TIMEOUT"
	EnvLogLevel       = "INVENTORY_LOG_LEVEL"
)

// Config holds runtime settings shared by every front end.
type Config struct {
	DBPath         string
	Port           int
	MaxConns       int
	AcquireTimeout time.Duration
	LogLevel       string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DBPath:         "inventory.db",
		Port:           9090,
		MaxConns:       sqlite.DefaultMaxConns,
		AcquireTimeout: sqlite.DefaultAcquireTimeout,
		LogLevel:       "info",
	}
}

// LoadDotEnv reads KEY=value pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// Load builds a Config from defaults, the environment looked up with getenv,
// and args parsed as flags. It returns the remaining positional arguments.
// A --help request surfaces as pflag.ErrHelp.
func Load(name string, args []string, getenv func(string) string) (Config, []string, error) {
	cfg, err := FromEnv(Default(), getenv)
	if err != nil {
		return Config{}, nil, err
	}

	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	cfg.AddFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return Config{}, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	return cfg, flagSet.Args(), nil
}

// FromEnv overlays environment settings on cfg.
func FromEnv(cfg Config, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: invalid port %q: %w", EnvPort, v, err)
		}
		cfg.Port = port
	}
	if v := getenv(EnvMaxConns); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: invalid connection count %q: %w", EnvMaxConns, v, err)
		}
		cfg.MaxConns = n
	}
	if v := getenv(EnvAcquireTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: invalid duration %q: %w", EnvAcquireTimeout, v, err)
		}
		cfg.AcquireTimeout = d
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}

// AddFlags registers flags bound to the fields of c, using the current
// values as defaults.
func (c *Config) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&c.DBPath, "db", c.DBPath, "path to the SQLite database file")
	flagSet.IntVarP(&c.Port, "port", "p", c.Port, "port for the web server")
	flagSet.IntVar(&c.MaxConns, "max-conns", c.MaxConns, "maximum open database connections")
	flagSet.DurationVar(&c.AcquireTimeout, "acquire-timeout", c.AcquireTimeout, "how long to wait for a free database connection")
	flagSet.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn or error")
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("database path must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", c.Port)
	}
	if c.MaxConns < 1 {
		return fmt.Errorf("max connections must be positive, got %d", c.MaxConns)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Addr is the loopback listen address for the web server.
func (c Config) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// PoolConfig converts the database settings for sqlite.OpenPool.
func (c Config) PoolConfig() sqlite.PoolConfig {
	return sqlite.PoolConfig{
		Path:           c.DBPath,
		MaxConns:       c.MaxConns,
		AcquireTimeout: c.AcquireTimeout,
	}
}
