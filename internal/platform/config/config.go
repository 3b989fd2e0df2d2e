// Package config loads service settings from defaults, an optional config
// file and ANALYTICS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "ANALYTICS"

const (
	DriverMemory     = "memory"
	DriverPostgres   = "postgres"
	DriverSQLite     = "sqlite"
	DriverClickHouse = "clickhouse"
)

type Config struct {
	Server ServerConfig
	Source SourceConfig
	Alerts AlertsConfig
	Log    LogConfig
}

type ServerConfig struct {
	Address         string
	ShutdownTimeout time.Duration
}

type SourceConfig struct {
	Driver          string
	// DSN is the connection string; for the memory driver it is an optional
	// seed file path.
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AlertsConfig struct {
	// File holds YAML alert definitions registered at startup.
	File string
}

type LogConfig struct {
	Level       string
	Development bool
}

// New returns a viper instance with the env binding and defaults applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", "5s")

	v.SetDefault("source.driver", DriverMemory)
	v.SetDefault("source.dsn", "")
	v.SetDefault("source.max_open_conns", 20)
	v.SetDefault("source.max_idle_conns", 10)
	v.SetDefault("source.conn_max_lifetime", "30m")

	v.SetDefault("alerts.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	return v
}

// Load reads path into v when set and returns the validated settings.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Source: SourceConfig{
			Driver:          strings.ToLower(v.GetString("source.driver")),
			DSN:             v.GetString("source.dsn"),
			MaxOpenConns:    v.GetInt("source.max_open_conns"),
			MaxIdleConns:    v.GetInt("source.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("source.conn_max_lifetime"),
		},
		Alerts: AlertsConfig{
			File: v.GetString("alerts.file"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Server.Address == "" {
		errs = append(errs, errors.New("server.address is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	switch c.Source.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite, DriverClickHouse:
		if c.Source.DSN == "" {
			errs = append(errs, fmt.Errorf("source.dsn is required for driver %q", c.Source.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source.driver %q", c.Source.Driver))
	}
	if c.Source.MaxOpenConns < 0 || c.Source.MaxIdleConns < 0 {
		errs = append(errs, errors.New("source connection limits must not be negative"))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}
