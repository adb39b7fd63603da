package database

import "time"

// Config holds all settings needed to connect to and pool a database.
type Config struct {
	// DSN is the go-sql-driver data source name.
	// Example: "user:pass@tcp(localhost:3306)/shop"
	DSN string

	// Pool tuning
	MaxConns        int32         // maximum number of open connections
	MinConns        int32         // idle connections kept alive
	MaxConnLifetime time.Duration // maximum time a connection may be reused
	MaxConnIdleTime time.Duration // maximum time a connection may sit idle

	// Timeouts
	ConnectTimeout time.Duration // time limit for the initial ping
	QueryTimeout   time.Duration // per-analysis deadline (applied by callers)
}

// DefaultConfig returns pool settings suited to catalog analysis: a handful
// of sequential metadata queries, so the pool is kept small.
func DefaultConfig(dsn string) *Config {
	return &Config{
		DSN:             dsn,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    2 * time.Minute,
	}
}
