package analyser

// ObjectKind names the bucket an object lives in. Object ids are unique
// within a kind only, so callers key objects by (kind, id).
type ObjectKind string

const (
	KindTable     ObjectKind = "tables"
	KindView      ObjectKind = "views"
	KindProcedure ObjectKind = "procedures"
	KindFunction  ObjectKind = "functions"
)

// ObjectInfo is the identity shared by every analysed object.
type ObjectInfo struct {
	ObjectID    string `json:"objectId"`
	PureName    string `json:"pureName"`
	ContentHash string `json:"contentHash"`
	CreateSQL   string `json:"createSql,omitempty"`
}

// Column is a normalised table or view column.
type Column struct {
	ColumnName    string  `json:"columnName"`
	DataType      string  `json:"dataType"`
	NotNull       bool    `json:"notNull"`
	AutoIncrement bool    `json:"autoIncrement"`
	DefaultValue  *string `json:"defaultValue,omitempty"`
	ColumnComment string  `json:"columnComment,omitempty"`
	IsUnsigned    bool    `json:"isUnsigned"`
	IsZerofill    bool    `json:"isZerofill"`
}

// ColumnRef names one column of a key or index.
type ColumnRef struct {
	ColumnName string `json:"columnName"`
}

// PrimaryKey is a named, ordered set of columns.
type PrimaryKey struct {
	ConstraintName string      `json:"constraintName"`
	PureName       string      `json:"pureName"`
	Columns        []ColumnRef `json:"columns"`
}

// ForeignKeyColumn pairs a local column with the column it references.
type ForeignKeyColumn struct {
	ColumnName    string `json:"columnName"`
	RefColumnName string `json:"refColumnName"`
}

// ForeignKey references RefTableName through ordered column pairs.
type ForeignKey struct {
	ConstraintName string             `json:"constraintName"`
	PureName       string             `json:"pureName"`
	RefTableName   string             `json:"refTableName"`
	UpdateAction   string             `json:"updateAction,omitempty"`
	DeleteAction   string             `json:"deleteAction,omitempty"`
	Columns        []ForeignKeyColumn `json:"columns"`
}

// Index is a secondary index that does not back a unique constraint.
type Index struct {
	ConstraintName string      `json:"constraintName"`
	IndexType      string      `json:"indexType,omitempty"`
	IsUnique       bool        `json:"isUnique"`
	Columns        []ColumnRef `json:"columns"`
}

// Unique is an index backing a unique constraint.
type Unique struct {
	ConstraintName string      `json:"constraintName"`
	Columns        []ColumnRef `json:"columns"`
}

type Table struct {
	ObjectInfo
	Columns     []Column     `json:"columns"`
	PrimaryKey  *PrimaryKey  `json:"primaryKey,omitempty"`
	ForeignKeys []ForeignKey `json:"foreignKeys"`
	Indexes     []Index      `json:"indexes"`
	Uniques     []Unique     `json:"uniques"`

	// TableRowCount is the engine's estimate; advisory only.
	TableRowCount *int64 `json:"tableRowCount,omitempty"`
}

type View struct {
	ObjectInfo
	Columns []Column `json:"columns"`

	// RequiresFormat asks consumers to pretty-print CreateSQL before display.
	RequiresFormat bool `json:"requiresFormat"`
}

type Procedure struct {
	ObjectInfo
	RoutineDefinition string `json:"routineDefinition,omitempty"`
}

type Function struct {
	ObjectInfo
	RoutineDefinition string `json:"routineDefinition,omitempty"`
	ReturnDataType    string `json:"returnDataType"`
	IsDeterministic   bool   `json:"isDeterministic"`
}

// DatabaseInfo is the result of a full analysis.
type DatabaseInfo struct {
	Tables     []Table     `json:"tables"`
	Views      []View      `json:"views"`
	Procedures []Procedure `json:"procedures"`
	Functions  []Function  `json:"functions"`
}

// SnapshotEntry carries only what is needed to tell whether an object changed.
type SnapshotEntry struct {
	ObjectID      string `json:"objectId"`
	PureName      string `json:"pureName"`
	ContentHash   string `json:"contentHash"`
	TableRowCount *int64 `json:"tableRowCount,omitempty"`
}

// FastSnapshot is the result of GetFastSnapshot. It is a diff key only and
// is never merged into a DatabaseInfo.
type FastSnapshot struct {
	Tables     []SnapshotEntry `json:"tables"`
	Views      []SnapshotEntry `json:"views"`
	Procedures []SnapshotEntry `json:"procedures"`
	Functions  []SnapshotEntry `json:"functions"`
}
