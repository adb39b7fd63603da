package analyser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/koustreak/dbanalyser/internal/database"
	"github.com/koustreak/dbanalyser/internal/errs"
	"github.com/koustreak/dbanalyser/internal/logger"
)

// gateway issues named catalog queries against one database.
type gateway struct {
	db      database.Querier
	dialect Dialect
	dbName  string
	log     *logger.Logger
}

// sql resolves a template and substitutes the database name. The name is
// escaped as the body of a single-quoted SQL string literal.
func (g *gateway) sql(name string) (string, error) {
	tmpl, ok := g.dialect.Template(name)
	if !ok {
		return "", errs.Newf(errs.ErrKindInvalidInput, "unknown catalog query %q", name)
	}
	return strings.ReplaceAll(tmpl, DatabasePlaceholder, quoteLiteral(g.dbName)), nil
}

func quoteLiteral(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `''`).Replace(s)
}

// rows runs one query and buffers its whole result set.
func (g *gateway) rows(ctx context.Context, name string) ([]rawRow, error) {
	text, err := g.sql(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rs, err := g.db.Query(ctx, text)
	if err != nil {
		return nil, err
	}
	maps, err := database.ScanRows(rs)
	if err != nil {
		return nil, err
	}

	g.log.DebugWith("catalog query done", map[string]interface{}{
		"query":    name,
		"rows":     len(maps),
		"duration": time.Since(start).String(),
	})

	out := make([]rawRow, len(maps))
	for i, m := range maps {
		out[i] = rawRow(m)
	}
	return out, nil
}

// strict runs a query whose failure aborts the caller.
func strict[T any](ctx context.Context, g *gateway, name string, decode func(rawRow) (T, error)) ([]T, error) {
	rows, err := g.rows(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	out, err := decodeAll(rows, decode)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return out, nil
}

// tolerant runs a query that may be unsupported on the server. Execution
// and decoding failures are logged and yield an empty result; only a
// missing template is reported, as that is a programming error.
func tolerant[T any](ctx context.Context, g *gateway, name string, decode func(rawRow) (T, error)) ([]T, error) {
	if _, err := g.sql(name); err != nil {
		return nil, err
	}
	rows, err := g.rows(ctx, name)
	if err == nil {
		var out []T
		if out, err = decodeAll(rows, decode); err == nil {
			return out, nil
		}
	}
	g.log.WarnWith("catalog query failed, section left empty", err, map[string]interface{}{
		"query":    name,
		"database": g.dbName,
	})
	return []T{}, nil
}

func decodeAll[T any](rows []rawRow, decode func(rawRow) (T, error)) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
