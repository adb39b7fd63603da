// Package mysql provides the MySQL catalog dialect for the analyser:
// information_schema query templates and the column type classifier.
package mysql

import "strings"

// Dialect implements analyser.Dialect for MySQL and MariaDB.
type Dialect struct{}

// New returns the MySQL dialect.
func New() Dialect {
	return Dialect{}
}

// Template returns the catalog query registered under name.
func (Dialect) Template(name string) (string, bool) {
	q, ok := templates[name]
	return q, ok
}

// IsStringType reports whether a length suffix applies to dataType.
func (Dialect) IsStringType(dataType string) bool {
	t := strings.ToLower(dataType)
	return strings.Contains(t, "char") || strings.Contains(t, "binary")
}

// IsNumericType reports whether a precision/scale suffix applies to dataType.
func (Dialect) IsNumericType(dataType string) bool {
	t := strings.ToLower(dataType)
	return strings.Contains(t, "decimal") || strings.Contains(t, "numeric")
}
