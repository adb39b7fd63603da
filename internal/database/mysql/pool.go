package mysql

import (
	"database/sql"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/dbanalyser/internal/database"
	"github.com/koustreak/dbanalyser/internal/errs"
)

const (
	defaultMaxOpenConns    = 4
	defaultMaxIdleConns    = 1
	defaultConnMaxLifetime = 30 * time.Minute
	defaultConnMaxIdleTime = 10 * time.Minute
	defaultConnectTimeout  = 10 * time.Second
)

// normalizeDSN parses the DSN and forces the options the analyser relies on:
// parseTime so DATETIME/TIMESTAMP catalog columns scan as time.Time (stable
// content hashes), and UTC so those times are not shifted by the client zone.
// It returns the rewritten DSN and the database name it is bound to.
func normalizeDSN(dsn string) (string, string, error) {
	cfg, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", "", errs.Wrap(errs.ErrKindInvalidInput, "invalid DSN", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), cfg.DBName, nil
}

// buildPool configures and returns a *sql.DB with pool settings
func buildPool(dsn string, cfg *database.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to open mysql", err)
	}

	maxOpen := int(cfg.MaxConns)
	if maxOpen == 0 {
		maxOpen = defaultMaxOpenConns
	}
	maxIdle := int(cfg.MinConns)
	if maxIdle == 0 {
		maxIdle = defaultMaxIdleConns
	}
	lifetime := cfg.MaxConnLifetime
	if lifetime == 0 {
		lifetime = defaultConnMaxLifetime
	}
	idle := cfg.MaxConnIdleTime
	if idle == 0 {
		idle = defaultConnMaxIdleTime
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(lifetime)
	db.SetConnMaxIdleTime(idle)

	return db, nil
}
