// Package dbtest provides an in-memory database.Querier for tests.
package dbtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/koustreak/dbanalyser/internal/database"
)

// Result is a canned result set: column names plus row values in column order.
type Result struct {
	Columns []string
	Rows    [][]any
	Err     error // returned by Query instead of the rows
}

// Rowset builds a Result from map rows, keeping the given column order.
func Rowset(columns []string, rows ...map[string]any) Result {
	res := Result{Columns: columns}
	for _, r := range rows {
		vals := make([]any, len(columns))
		for i, c := range columns {
			vals[i] = r[c]
		}
		res.Rows = append(res.Rows, vals)
	}
	return res
}

// Failure builds a Result whose Query call fails with err.
func Failure(err error) Result {
	return Result{Err: err}
}

// Querier answers queries by exact SQL text.
type Querier struct {
	mu        sync.Mutex
	responses map[string]Result
	queries   []string
}

// New returns an empty Querier; unknown statements fail.
func New() *Querier {
	return &Querier{responses: make(map[string]Result)}
}

// On registers the result returned for sql.
func (q *Querier) On(sql string, res Result) *Querier {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.responses[sql] = res
	return q
}

// Queries returns the statements issued so far, in order.
func (q *Querier) Queries() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.queries...)
}

// Query implements database.Querier.
func (q *Querier) Query(ctx context.Context, sql string, _ ...any) (database.Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries = append(q.queries, sql)

	res, ok := q.responses[sql]
	if !ok {
		return nil, fmt.Errorf("dbtest: unexpected query %q", sql)
	}
	if res.Err != nil {
		return nil, res.Err
	}
	return &rows{columns: res.Columns, data: res.Rows, pos: -1}, nil
}

type rows struct {
	columns []string
	data    [][]any
	pos     int
	closed  bool
}

func (r *rows) Next() bool {
	if r.closed || r.pos+1 >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *rows) Scan(dest ...any) error {
	if r.pos < 0 || r.pos >= len(r.data) {
		return errors.New("dbtest: scan outside of a row")
	}
	if len(dest) != len(r.columns) {
		return fmt.Errorf("dbtest: expected %d scan targets, got %d", len(r.columns), len(dest))
	}
	for i, d := range dest {
		p, ok := d.(*any)
		if !ok {
			return fmt.Errorf("dbtest: scan target %d is %T, want *any", i, d)
		}
		*p = r.data[r.pos][i]
	}
	return nil
}

func (r *rows) Columns() ([]string, error) { return r.columns, nil }
func (r *rows) Close()                     { r.closed = true }
func (r *rows) Err() error                 { return nil }
