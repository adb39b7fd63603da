package analyser

import (
	"fmt"
	"strconv"
	"time"

	"github.com/koustreak/dbanalyser/internal/errs"
)

// rawRow is one buffered catalog row keyed by column alias.
type rawRow map[string]any

// str returns the value as text. NULL and missing columns yield "".
func (r rawRow) str(key string) string {
	s, _ := r.optStr(key)
	return s
}

// optStr returns the value as text and whether it was present and non-NULL.
func (r rawRow) optStr(key string) (string, bool) {
	switch v := r[key].(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	default:
		return fmt.Sprint(v), true
	}
}

// optInt returns numeric values (including numeric text) as int64.
// Absent, NULL or non-numeric values yield nil.
func (r rawRow) optInt(key string) *int64 {
	var n int64
	switch v := r[key].(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case uint64:
		n = int64(v)
	case uint32:
		n = int64(v)
	case float64:
		n = int64(v)
	case bool:
		if v {
			n = 1
		}
	case []byte:
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return nil
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

// required returns the text value of key or an error naming the query.
func (r rawRow) required(query, key string) (string, error) {
	s, ok := r.optStr(key)
	if !ok || s == "" {
		return "", errs.Newf(errs.ErrKindInvalidInput, "%s: catalog row without %s", query, key)
	}
	return s, nil
}

func truthy(n *int64) bool {
	return n != nil && *n != 0
}

// --- typed records, one per catalog query ---

type tableRow struct {
	PureName      string
	TableRowCount *int64
	ModifyDate    any
}

func decodeTableRow(r rawRow) (tableRow, error) {
	name, err := r.required(QueryTables, "pureName")
	if err != nil {
		return tableRow{}, err
	}
	return tableRow{PureName: name, TableRowCount: r.optInt("tableRowCount"), ModifyDate: r["modifyDate"]}, nil
}

// columnRow mirrors the columns query. Pointer fields are nullable.
type columnRow struct {
	PureName         string
	ColumnName       string
	IsNullable       *string
	Extra            *string
	DataType         string
	CharMaxLength    *int64
	NumericPrecision *int64
	NumericScale     *int64
	DefaultValue     *string
	ColumnComment    string
	ColumnType       *string
}

func decodeColumnRow(r rawRow) (columnRow, error) {
	owner, err := r.required(QueryColumns, "pureName")
	if err != nil {
		return columnRow{}, err
	}
	return columnRow{
		PureName:         owner,
		ColumnName:       r.str("columnName"),
		IsNullable:       optional(r, "isNullable"),
		Extra:            optional(r, "extra"),
		DataType:         r.str("dataType"),
		CharMaxLength:    r.optInt("charMaxLength"),
		NumericPrecision: r.optInt("numericPrecision"),
		NumericScale:     r.optInt("numericScale"),
		DefaultValue:     optional(r, "defaultValue"),
		ColumnComment:    r.str("columnComment"),
		ColumnType:       optional(r, "columnType"),
	}, nil
}

func optional(r rawRow, key string) *string {
	s, ok := r.optStr(key)
	if !ok {
		return nil
	}
	return &s
}

type primaryKeyRow struct {
	ConstraintName string
	PureName       string
	ColumnName     string
}

func decodePrimaryKeyRow(r rawRow) (primaryKeyRow, error) {
	owner, err := r.required(QueryPrimaryKeys, "pureName")
	if err != nil {
		return primaryKeyRow{}, err
	}
	return primaryKeyRow{ConstraintName: r.str("constraintName"), PureName: owner, ColumnName: r.str("columnName")}, nil
}

type foreignKeyRow struct {
	ConstraintName string
	PureName       string
	ColumnName     string
	RefTableName   string
	RefColumnName  string
	UpdateAction   string
	DeleteAction   string
}

func decodeForeignKeyRow(r rawRow) (foreignKeyRow, error) {
	owner, err := r.required(QueryForeignKeys, "pureName")
	if err != nil {
		return foreignKeyRow{}, err
	}
	return foreignKeyRow{
		ConstraintName: r.str("constraintName"),
		PureName:       owner,
		ColumnName:     r.str("columnName"),
		RefTableName:   r.str("refTableName"),
		RefColumnName:  r.str("refColumnName"),
		UpdateAction:   r.str("updateAction"),
		DeleteAction:   r.str("deleteAction"),
	}, nil
}

type viewRow struct {
	PureName   string
	ModifyDate any
}

func decodeViewRow(r rawRow) (viewRow, error) {
	name, err := r.required(QueryViews, "pureName")
	if err != nil {
		return viewRow{}, err
	}
	return viewRow{PureName: name, ModifyDate: r["modifyDate"]}, nil
}

type viewTextRow struct {
	PureName       string
	ViewDefinition string
}

func decodeViewTextRow(r rawRow) (viewTextRow, error) {
	name, err := r.required(QueryViewTexts, "pureName")
	if err != nil {
		return viewTextRow{}, err
	}
	return viewTextRow{PureName: name, ViewDefinition: r.str("viewDefinition")}, nil
}

// programmableRow covers procedures and functions; ObjectType tells them apart.
type programmableRow struct {
	PureName          string
	ObjectType        string
	ModifyDate        any
	RoutineDefinition string
	ReturnDataType    string
	IsDeterministic   string
}

func decodeProgrammableRow(r rawRow) (programmableRow, error) {
	name, err := r.required(QueryProgrammables, "pureName")
	if err != nil {
		return programmableRow{}, err
	}
	return programmableRow{
		PureName:          name,
		ObjectType:        r.str("objectType"),
		ModifyDate:        r["modifyDate"],
		RoutineDefinition: r.str("routineDefinition"),
		ReturnDataType:    r.str("returnDataType"),
		IsDeterministic:   r.str("isDeterministic"),
	}, nil
}

type indexRow struct {
	ConstraintName string
	TableName      string
	ColumnName     string
	IndexType      string
	NonUnique      bool
}

func decodeIndexRow(r rawRow) (indexRow, error) {
	table, err := r.required(QueryIndexes, "tableName")
	if err != nil {
		return indexRow{}, err
	}
	return indexRow{
		ConstraintName: r.str("constraintName"),
		TableName:      table,
		ColumnName:     r.str("columnName"),
		IndexType:      r.str("indexType"),
		NonUnique:      truthy(r.optInt("nonUnique")),
	}, nil
}

type uniqueNameRow struct {
	ConstraintName string
}

func decodeUniqueNameRow(r rawRow) (uniqueNameRow, error) {
	return uniqueNameRow{ConstraintName: r.str("constraintName")}, nil
}

type modificationRow struct {
	PureName      string
	ObjectType    string
	ModifyDate    any
	TableRowCount *int64
}

func decodeModificationRow(r rawRow) (modificationRow, error) {
	name, err := r.required(QueryTableModifications, "pureName")
	if err != nil {
		return modificationRow{}, err
	}
	return modificationRow{
		PureName:      name,
		ObjectType:    r.str("objectType"),
		ModifyDate:    r["modifyDate"],
		TableRowCount: r.optInt("tableRowCount"),
	}, nil
}

// routineStatusRow is a row of SHOW PROCEDURE/FUNCTION STATUS.
type routineStatusRow struct {
	Name     string
	Modified any
}

func decodeRoutineStatusRow(r rawRow) (routineStatusRow, error) {
	name, err := r.required("routine status", "Name")
	if err != nil {
		return routineStatusRow{}, err
	}
	return routineStatusRow{Name: name, Modified: r["Modified"]}, nil
}
