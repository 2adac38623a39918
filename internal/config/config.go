// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DefaultListID is the watchlist scraped when none is configured.
const DefaultListID = "ur146714887"

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	Watchlist WatchlistConfig `mapstructure:"watchlist"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Store     StoreConfig     `mapstructure:"store"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// TMDBConfig holds the metadata API credential and endpoint.
type TMDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// WatchlistConfig identifies the scraped watchlist page.
type WatchlistConfig struct {
	ListID    string `mapstructure:"list_id"`
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// HTTPConfig configures outbound HTTP calls.
type HTTPConfig struct {
	// TimeoutSeconds of zero disables the timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// StoreConfig selects and configures the movie cache backend.
type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WATCHREC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("watchlist.list_id", DefaultListID)
	v.SetDefault("watchlist.base_url", "https://www.imdb.com")
	v.SetDefault("watchlist.user_agent", "Mozilla/5.0")
	v.SetDefault("http.timeout_seconds", 0)
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.path", "movies.db")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.table", "movies")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("logging.development", true)
}

// bindLegacyEnv accepts the unprefixed variable names used by earlier deployments.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"tmdb.api_key":      {"WATCHREC_TMDB_API_KEY", "TMDB_API_KEY"},
		"watchlist.list_id": {"WATCHREC_WATCHLIST_LIST_ID", "IMDB_LIST_ID"},
		"server.port":       {"WATCHREC_SERVER_PORT", "PORT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeout_seconds must be >= 0")
	}
	if c.Watchlist.ListID == "" {
		return fmt.Errorf("watchlist.list_id must be set")
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path must be set for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}

// OutboundTimeout converts http.timeout_seconds to a duration. Zero means none.
func (c Config) OutboundTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
