package analyser

import (
	"fmt"
	"strings"
)

// normalizeColumn converts one columns-query row into a Column.
// It never fails: missing metadata simply skips the matching derivation.
func normalizeColumn(r columnRow, types TypeClassifier) Column {
	var tokens []string
	if r.ColumnType != nil {
		for _, tok := range strings.Fields(*r.ColumnType) {
			tokens = append(tokens, strings.ToLower(tok))
		}
	}

	dataType := r.DataType
	switch {
	case truthy(r.CharMaxLength) && types.IsStringType(r.DataType):
		dataType = fmt.Sprintf("%s(%d)", r.DataType, *r.CharMaxLength)
	case truthy(r.NumericPrecision) && truthy(r.NumericScale) && types.IsNumericType(r.DataType):
		dataType = fmt.Sprintf("%s(%d,%d)", r.DataType, *r.NumericPrecision, *r.NumericScale)
	}

	return Column{
		ColumnName:    r.ColumnName,
		DataType:      dataType,
		NotNull:       r.IsNullable == nil || *r.IsNullable == "" || strings.EqualFold(*r.IsNullable, "no"),
		AutoIncrement: r.Extra != nil && strings.Contains(strings.ToLower(*r.Extra), "auto_increment"),
		DefaultValue:  r.DefaultValue,
		ColumnComment: r.ColumnComment,
		IsUnsigned:    contains(tokens, "unsigned"),
		IsZerofill:    contains(tokens, "zerofill"),
	}
}

func contains(tokens []string, want string) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}
