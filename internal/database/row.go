package database

import "github.com/koustreak/dbanalyser/internal/errs"

// ScanRows buffers a whole result set as maps keyed by column name, holding
// whatever the driver produced for each value. It always closes rows and
// returns a non-nil slice on success.
func ScanRows(rows Rows) ([]map[string]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	result := make([]map[string]any, 0)
	for rows.Next() {
		row, err := scanMap(rows.Scan, columns)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}
	return result, nil
}

// ScanRow reads a single row whose columns are known in advance.
func ScanRow(row Row, columns []string) (map[string]any, error) {
	return scanMap(row.Scan, columns)
}

func scanMap(scan func(dest ...any) error, columns []string) (map[string]any, error) {
	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}
	if err := scan(targets...); err != nil {
		return nil, err
	}

	m := make(map[string]any, len(columns))
	for i, col := range columns {
		m[col] = values[i]
	}
	return m, nil
}
