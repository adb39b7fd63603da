package analyser

// Names of the catalog query templates a Dialect must provide.
const (
	QueryTables                 = "tables"
	QueryColumns                = "columns"
	QueryPrimaryKeys            = "primaryKeys"
	QueryForeignKeys            = "foreignKeys"
	QueryViews                  = "views"
	QueryProgrammables          = "programmables"
	QueryViewTexts              = "viewTexts"
	QueryIndexes                = "indexes"
	QueryUniqueNames            = "uniqueNames"
	QueryTableModifications     = "tableModifications"
	QueryProcedureModifications = "procedureModifications"
	QueryFunctionModifications  = "functionModifications"
)

// CatalogQueries lists every template name the analyser may request.
var CatalogQueries = []string{
	QueryTables,
	QueryColumns,
	QueryPrimaryKeys,
	QueryForeignKeys,
	QueryViews,
	QueryProgrammables,
	QueryViewTexts,
	QueryIndexes,
	QueryUniqueNames,
	QueryTableModifications,
	QueryProcedureModifications,
	QueryFunctionModifications,
}

// DatabasePlaceholder is replaced by the analysed database name in every template.
const DatabasePlaceholder = "#DATABASE#"

// TypeClassifier decides which raw type names take a length or a
// precision/scale suffix.
type TypeClassifier interface {
	IsStringType(dataType string) bool
	IsNumericType(dataType string) bool
}

// Dialect supplies the engine-specific parts of an analysis: catalog query
// templates keyed by name and the type classifier.
type Dialect interface {
	TypeClassifier

	// Template returns the SQL text for a catalog query name.
	Template(name string) (string, bool)
}
