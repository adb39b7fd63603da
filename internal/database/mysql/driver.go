package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver

	"github.com/koustreak/dbanalyser/internal/database"
	"github.com/koustreak/dbanalyser/internal/errs"
)

// Driver is a MySQL implementation of database.DB backed by database/sql.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	db     *sql.DB
	dbName string
}

// New opens a MySQL connection pool using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning. When the DSN
// names no database, the server's current database is used.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	dsn, dbName, err := normalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := buildPool(dsn, cfg)
	if err != nil {
		return nil, err
	}

	d := &Driver{db: db, dbName: dbName}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout(cfg))
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if d.dbName == "" {
		name, err := d.currentDatabase(ctx)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		d.dbName = name
	}

	return d, nil
}

func connectTimeout(cfg *database.Config) time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return defaultConnectTimeout
}

// --- database.DB implementation ---

var _ database.DB = (*Driver)(nil)

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

func (d *Driver) DatabaseName() string {
	return d.dbName
}

func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return &mysqlRows{rows: rows}, nil
}

func (d *Driver) QueryRow(ctx context.Context, query string, args ...any) (database.Row, error) {
	row := d.db.QueryRowContext(ctx, query, args...)
	return &mysqlRow{row: row}, nil
}

func (d *Driver) currentDatabase(ctx context.Context) (string, error) {
	row, err := d.QueryRow(ctx, "SELECT DATABASE() AS name")
	if err != nil {
		return "", err
	}
	res, err := database.ScanRow(row, []string{"name"})
	if err != nil {
		return "", err
	}
	switch v := res["name"].(type) {
	case []byte:
		return string(v), nil
	case string:
		return v, nil
	case nil:
		return "", errs.New(errs.ErrKindInvalidInput, "no database selected: name one in the DSN")
	default:
		return fmt.Sprint(v), nil
	}
}

// --- sql.DB type wrappers ---

type mysqlRows struct {
	rows *sql.Rows
}

func (r *mysqlRows) Next() bool { return r.rows.Next() }
func (r *mysqlRows) Scan(dest ...any) error {
	return mapError(r.rows.Scan(dest...), "failed to scan row")
}
func (r *mysqlRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *mysqlRows) Close()                     { _ = r.rows.Close() }
func (r *mysqlRows) Err() error {
	return mapError(r.rows.Err(), "error iterating rows")
}

type mysqlRow struct {
	row *sql.Row
}

func (r *mysqlRow) Scan(dest ...any) error {
	return mapError(r.row.Scan(dest...), "failed to scan row")
}
