// Package config loads the service configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. TODOLIST_SERVER_PORT
const EnvPrefix = "TODOLIST"

// DefaultConfigPaths are tried when Load is called without paths
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./configs/config.yaml",
}

// Config is the root configuration
type Config struct {
	Environment string        `mapstructure:"environment"`
	Server      ServerConfig  `mapstructure:"server"`
	Store       StoreConfig   `mapstructure:"store"`
	Log         LogConfig     `mapstructure:"log"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
	Tracing     TracingConfig `mapstructure:"tracing"`

	warnings []string
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig selects and tunes the document store
type StoreConfig struct {
	URI             string        `mapstructure:"uri"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration. Later sources win: defaults, config files in
// order, then environment variables.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		paths = DefaultConfigPaths
	}
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg.warnings = legacyEnvWarnings(&cfg)
	return &cfg, nil
}

// Warnings lists configuration problems that do not stop startup but leave
// the service degraded. Load fills it; main logs each entry.
func (c *Config) Warnings() []string {
	return c.warnings
}

// legacyEnvWarnings flags a MONGODB_URI left over from earlier deployments
// that still points at MongoDB, which no store backend accepts.
func legacyEnvWarnings(c *Config) []string {
	legacy := strings.TrimSpace(os.Getenv("MONGODB_URI"))
	if legacy == "" || c.Store.URI != legacy {
		return nil
	}
	if !strings.HasPrefix(strings.ToLower(legacy), "mongodb") {
		return nil
	}
	return []string{
		"store.uri comes from MONGODB_URI and points at MongoDB, which is not supported; " +
			"set TODOLIST_STORE_URI to a sqlite, postgres, badger or redis uri",
	}
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Store.URI) == "" {
		return fmt.Errorf("store.uri is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("store.uri", "sqlite://todolist.db")
	v.SetDefault("store.connect_timeout", 10*time.Second)
	v.SetDefault("store.max_open_conns", 10)
	v.SetDefault("store.max_idle_conns", 5)
	v.SetDefault("store.conn_max_lifetime", time.Hour)
	v.SetDefault("store.key_prefix", "todolist:")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "todolist")
}

// bindLegacyEnv keeps the variable names of earlier deployments working.
// The prefixed name is checked first.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"server.port": {"PORT"},
		"store.uri":   {"MONGODB_URI", "DATABASE_URL"},
		"log.level":   {"LOG_LEVEL"},
	}
	for key, legacy := range bindings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		args := append([]string{key, prefixed}, legacy...)
		if err := v.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}
