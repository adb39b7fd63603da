// Package config loads dbanalyser settings from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/dbanalyser/internal/database"
	"github.com/koustreak/dbanalyser/internal/errs"
	"github.com/koustreak/dbanalyser/internal/filestore"
	"github.com/koustreak/dbanalyser/internal/logger"
)

// Environment variables that take precedence over the file.
const (
	EnvDSN      = "DBANALYSER_DSN"
	EnvLogLevel = "DBANALYSER_LOG_LEVEL"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig describes the analysed MySQL database.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	QueryTimeout    time.Duration `yaml:"query_timeout"` // bounds one whole analysis
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// StoreConfig enables the analysis archive in MinIO.
type StoreConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	Region    string `yaml:"region,omitempty"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Default returns a Config populated with defaults. The DSN is left empty.
func Default() *Config {
	db := database.DefaultConfig("")
	return &Config{
		Database: DatabaseConfig{
			MaxConns:        db.MaxConns,
			MinConns:        db.MinConns,
			MaxConnLifetime: db.MaxConnLifetime,
			MaxConnIdleTime: db.MaxConnIdleTime,
			ConnectTimeout:  db.ConnectTimeout,
			QueryTimeout:    db.QueryTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Bucket: "dbanalyser",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
	}
}

// Load reads the YAML file at path over Default and applies environment
// overrides. An empty path or a missing file yields the defaults.
// The result is not validated; call Validate before use.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("parse config %s", path), err)
			}
		case os.IsNotExist(err):
		default:
			return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("read config %s", path), err)
		}
	}

	if dsn := os.Getenv(EnvDSN); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = level
	}
	return cfg, nil
}

// Validate reports the first setting that prevents startup.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return errs.Newf(errs.ErrKindInvalidInput, "database.dsn is required (or set %s)", EnvDSN)
	}
	if c.Database.MaxConns < 1 {
		return errs.New(errs.ErrKindInvalidInput, "database.max_conns must be at least 1")
	}
	if c.Store.Enabled {
		if c.Store.Endpoint == "" {
			return errs.New(errs.ErrKindInvalidInput, "store.endpoint is required when the store is enabled")
		}
		if c.Store.Bucket == "" {
			return errs.New(errs.ErrKindInvalidInput, "store.bucket is required when the store is enabled")
		}
	}
	return nil
}

// DatabaseConfig converts the database section for the MySQL driver.
func (c *Config) DatabaseConfig() *database.Config {
	return &database.Config{
		DSN:             c.Database.DSN,
		MaxConns:        c.Database.MaxConns,
		MinConns:        c.Database.MinConns,
		MaxConnLifetime: c.Database.MaxConnLifetime,
		MaxConnIdleTime: c.Database.MaxConnIdleTime,
		ConnectTimeout:  c.Database.ConnectTimeout,
		QueryTimeout:    c.Database.QueryTimeout,
	}
}

// LoggerConfig converts the log section. Output defaults to stderr.
func (c *Config) LoggerConfig() *logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	return lc
}

// FilestoreConfig converts the store section.
func (c *Config) FilestoreConfig() *filestore.Config {
	fc := filestore.DefaultConfig(c.Store.Endpoint, c.Store.AccessKey, c.Store.SecretKey, c.Store.Bucket)
	fc.UseSSL = c.Store.UseSSL
	fc.Region = c.Store.Region
	return fc
}
