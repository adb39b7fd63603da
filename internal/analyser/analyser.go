// Package analyser reads a database catalog and assembles a normalised
// schema model (tables, views, procedures, functions), each object tagged
// with a stable id and a content hash for incremental diffing.
//
// Engine specifics come from a Dialect; see package analyser/mysql.
package analyser

import (
	"context"
	"fmt"

	"github.com/koustreak/dbanalyser/internal/database"
	"github.com/koustreak/dbanalyser/internal/logger"
)

// SchemaAnalyser is the capability exposed to callers.
type SchemaAnalyser interface {
	RunFullAnalysis(ctx context.Context) (*DatabaseInfo, error)
	GetFastSnapshot(ctx context.Context) (*FastSnapshot, error)
}

// Analyser runs catalog analyses of one database. Each run issues its
// queries sequentially and keeps no state between runs, so concurrent runs
// are safe as long as the Querier hands each query its own session (as a
// database/sql pool does).
type Analyser struct {
	gw       *gateway
	dialect  Dialect
	progress Progress
	log      *logger.Logger
}

// Option configures an Analyser.
type Option func(*Analyser)

// WithProgress installs a progress observer.
func WithProgress(p Progress) Option {
	return func(a *Analyser) { a.progress = p }
}

// WithLogger sets the logger used for query diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(a *Analyser) { a.log = l }
}

// New returns an Analyser for database dbName reachable through db.
func New(db database.Querier, dialect Dialect, dbName string, opts ...Option) *Analyser {
	a := &Analyser{
		dialect:  dialect,
		progress: NopProgress{},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With().Str("database", dbName).Logger()
	a.gw = &gateway{db: db, dialect: dialect, dbName: dbName, log: a.log}
	return a
}

var _ SchemaAnalyser = (*Analyser)(nil)

// RunFullAnalysis scans the whole catalog. A failure of the tables, columns
// or programmables query aborts the run; failures of the other queries
// leave the matching model sections empty.
func (a *Analyser) RunFullAnalysis(ctx context.Context) (*DatabaseInfo, error) {
	g := a.gw

	a.progress.Analysing(StageTables)
	tables, err := strict(ctx, g, QueryTables, decodeTableRow)
	if err != nil {
		return nil, err
	}
	a.progress.Analysing(StageColumns)
	columns, err := strict(ctx, g, QueryColumns, decodeColumnRow)
	if err != nil {
		return nil, err
	}
	a.progress.Analysing(StagePrimaryKeys)
	pkRows, err := tolerant(ctx, g, QueryPrimaryKeys, decodePrimaryKeyRow)
	if err != nil {
		return nil, err
	}
	a.progress.Analysing(StageForeignKeys)
	fkRows, err := tolerant(ctx, g, QueryForeignKeys, decodeForeignKeyRow)
	if err != nil {
		return nil, err
	}
	a.progress.Analysing(StageViews)
	views, err := tolerant(ctx, g, QueryViews, decodeViewRow)
	if err != nil {
		return nil, err
	}
	a.progress.Analysing(StageProgrammables)
	programmables, err := strict(ctx, g, QueryProgrammables, decodeProgrammableRow)
	if err != nil {
		return nil, err
	}
	a.progress.Analysing(StageViewTexts)
	viewTexts, err := tolerant(ctx, g, QueryViewTexts, decodeViewTextRow)
	if err != nil {
		return nil, err
	}
	a.progress.Analysing(StageIndexes)
	indexRows, err := tolerant(ctx, g, QueryIndexes, decodeIndexRow)
	if err != nil {
		return nil, err
	}
	a.progress.Analysing(StageUniques)
	uniqueRows, err := tolerant(ctx, g, QueryUniqueNames, decodeUniqueNameRow)
	if err != nil {
		return nil, err
	}
	a.progress.Analysing(StageFinalizing)

	columnsByOwner := make(map[string][]Column)
	for _, c := range columns {
		columnsByOwner[c.PureName] = append(columnsByOwner[c.PureName], normalizeColumn(c, a.dialect))
	}
	uniqueNames := make(map[string]struct{}, len(uniqueRows))
	for _, u := range uniqueRows {
		uniqueNames[u.ConstraintName] = struct{}{}
	}
	indexesByTable := groupIndexes(indexRows)

	res := &DatabaseInfo{
		Tables:     make([]Table, 0, len(tables)),
		Views:      make([]View, 0, len(views)),
		Procedures: make([]Procedure, 0),
		Functions:  make([]Function, 0),
	}

	for _, t := range tables {
		indexes, uniques := indexesByTable[t.PureName].split(uniqueNames)
		res.Tables = append(res.Tables, Table{
			ObjectInfo:    objectInfo(t.PureName, t.ModifyDate),
			Columns:       ownedColumns(columnsByOwner, t.PureName),
			PrimaryKey:    extractPrimaryKey(t.PureName, pkRows),
			ForeignKeys:   extractForeignKeys(t.PureName, fkRows),
			Indexes:       indexes,
			Uniques:       uniques,
			TableRowCount: t.TableRowCount,
		})
	}

	texts := make(map[string]string, len(viewTexts))
	for _, vt := range viewTexts {
		texts[vt.PureName] = fmt.Sprintf("CREATE VIEW `%s` AS %s", vt.PureName, vt.ViewDefinition)
	}
	for _, v := range views {
		info := objectInfo(v.PureName, v.ModifyDate)
		info.CreateSQL = texts[v.PureName]
		res.Views = append(res.Views, View{
			ObjectInfo:     info,
			Columns:        ownedColumns(columnsByOwner, v.PureName),
			RequiresFormat: true,
		})
	}

	for _, p := range programmables {
		info := objectInfo(p.PureName, p.ModifyDate)
		switch p.ObjectType {
		case "PROCEDURE":
			info.CreateSQL = procedureSQL(p)
			res.Procedures = append(res.Procedures, Procedure{
				ObjectInfo:        info,
				RoutineDefinition: p.RoutineDefinition,
			})
		case "FUNCTION":
			info.CreateSQL = functionSQL(p)
			res.Functions = append(res.Functions, Function{
				ObjectInfo:        info,
				RoutineDefinition: p.RoutineDefinition,
				ReturnDataType:    p.ReturnDataType,
				IsDeterministic:   p.IsDeterministic == "YES",
			})
		}
	}

	a.progress.Analysing(StageNone)
	a.log.InfoWith("full analysis done", map[string]interface{}{
		"tables":     len(res.Tables),
		"views":      len(res.Views),
		"procedures": len(res.Procedures),
		"functions":  len(res.Functions),
	})
	return res, nil
}

// GetFastSnapshot reads only names and modification markers.
func (a *Analyser) GetFastSnapshot(ctx context.Context) (*FastSnapshot, error) {
	g := a.gw

	mods, err := strict(ctx, g, QueryTableModifications, decodeModificationRow)
	if err != nil {
		return nil, err
	}
	procs, err := strict(ctx, g, QueryProcedureModifications, decodeRoutineStatusRow)
	if err != nil {
		return nil, err
	}
	funcs, err := strict(ctx, g, QueryFunctionModifications, decodeRoutineStatusRow)
	if err != nil {
		return nil, err
	}

	snap := &FastSnapshot{
		Tables:     make([]SnapshotEntry, 0),
		Views:      make([]SnapshotEntry, 0),
		Procedures: make([]SnapshotEntry, 0, len(procs)),
		Functions:  make([]SnapshotEntry, 0, len(funcs)),
	}
	for _, m := range mods {
		entry := SnapshotEntry{ObjectID: m.PureName, PureName: m.PureName, ContentHash: contentHash(m.ModifyDate)}
		switch m.ObjectType {
		case "BASE TABLE":
			entry.TableRowCount = m.TableRowCount
			snap.Tables = append(snap.Tables, entry)
		case "VIEW":
			snap.Views = append(snap.Views, entry)
		}
	}
	for _, p := range procs {
		snap.Procedures = append(snap.Procedures, routineEntry(p))
	}
	for _, f := range funcs {
		snap.Functions = append(snap.Functions, routineEntry(f))
	}
	return snap, nil
}

func objectInfo(name string, modified any) ObjectInfo {
	return ObjectInfo{ObjectID: name, PureName: name, ContentHash: contentHash(modified)}
}

func routineEntry(r routineStatusRow) SnapshotEntry {
	return SnapshotEntry{ObjectID: r.Name, PureName: r.Name, ContentHash: contentHash(r.Modified)}
}

func ownedColumns(byOwner map[string][]Column, owner string) []Column {
	if cols, ok := byOwner[owner]; ok {
		return cols
	}
	return make([]Column, 0)
}

func procedureSQL(p programmableRow) string {
	return fmt.Sprintf("DELIMITER //\n\nCREATE PROCEDURE `%s`()\n%s\n\nDELIMITER ;\n", p.PureName, p.RoutineDefinition)
}

func functionSQL(p programmableRow) string {
	determinism := "NOT DETERMINISTIC"
	if p.IsDeterministic == "YES" {
		determinism = "DETERMINISTIC"
	}
	return fmt.Sprintf("CREATE FUNCTION `%s`()\nRETURNS %s %s\n%s", p.PureName, p.ReturnDataType, determinism, p.RoutineDefinition)
}
