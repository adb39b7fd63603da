package analyser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbanalyser/internal/database/dbtest"
	"github.com/koustreak/dbanalyser/internal/errs"
)

type testDialect struct {
	testTypes
	missing string
}

func (d testDialect) Template(name string) (string, bool) {
	if name == d.missing {
		return "", false
	}
	return name + " @ " + DatabasePlaceholder, true
}

const testDB = "shop"

func q(name string) string { return name + " @ " + testDB }

var (
	ordersCreated  = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	itemsCreated   = time.Date(2024, 2, 11, 9, 30, 0, 0, time.UTC)
	viewCreated    = time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	routineAltered = time.Date(2024, 4, 13, 11, 15, 0, 0, time.UTC)
)

// catalog returns a querier answering every full-analysis query for a small
// shop schema, shaped like go-sql-driver output (text as []byte).
func catalog() *dbtest.Querier {
	return dbtest.New().
		On(q(QueryTables), dbtest.Rowset([]string{"pureName", "tableRowCount", "modifyDate"},
			map[string]any{"pureName": []byte("orders"), "tableRowCount": int64(120), "modifyDate": ordersCreated},
			map[string]any{"pureName": []byte("order_items"), "tableRowCount": []byte("480"), "modifyDate": itemsCreated},
		)).
		On(q(QueryColumns), dbtest.Rowset(
			[]string{"pureName", "columnName", "isNullable", "dataType", "charMaxLength", "numericPrecision", "numericScale", "defaultValue", "columnComment", "columnType", "extra"},
			map[string]any{"pureName": []byte("orders"), "columnName": []byte("id"), "isNullable": []byte("NO"), "dataType": []byte("int"), "numericPrecision": int64(10), "numericScale": int64(0), "columnType": []byte("int unsigned"), "extra": []byte("auto_increment")},
			map[string]any{"pureName": []byte("order_items"), "columnName": []byte("order_id"), "isNullable": []byte("NO"), "dataType": []byte("int"), "columnType": []byte("int unsigned")},
			map[string]any{"pureName": []byte("orders"), "columnName": []byte("code"), "isNullable": []byte("NO"), "dataType": []byte("varchar"), "charMaxLength": int64(32), "columnType": []byte("varchar(32)")},
			map[string]any{"pureName": []byte("orders"), "columnName": []byte("total"), "isNullable": []byte("YES"), "dataType": []byte("decimal"), "numericPrecision": int64(12), "numericScale": int64(2), "defaultValue": []byte("0.00"), "columnType": []byte("decimal(12,2)")},
			map[string]any{"pureName": []byte("order_items"), "columnName": []byte("sku"), "isNullable": []byte("NO"), "dataType": []byte("char"), "charMaxLength": int64(8), "columnType": []byte("char(8)")},
			map[string]any{"pureName": []byte("order_totals"), "columnName": []byte("code"), "isNullable": []byte("NO"), "dataType": []byte("varchar"), "charMaxLength": int64(32), "columnType": []byte("varchar(32)")},
		)).
		On(q(QueryPrimaryKeys), dbtest.Rowset([]string{"constraintName", "pureName", "columnName"},
			map[string]any{"constraintName": []byte("PRIMARY"), "pureName": []byte("orders"), "columnName": []byte("id")},
			map[string]any{"constraintName": []byte("PRIMARY"), "pureName": []byte("order_items"), "columnName": []byte("order_id")},
			map[string]any{"constraintName": []byte("PRIMARY"), "pureName": []byte("order_items"), "columnName": []byte("sku")},
		)).
		On(q(QueryForeignKeys), dbtest.Rowset([]string{"constraintName", "pureName", "columnName", "refTableName", "refColumnName", "updateAction", "deleteAction"},
			map[string]any{"constraintName": []byte("fk_items_order"), "pureName": []byte("order_items"), "columnName": []byte("order_id"), "refTableName": []byte("orders"), "refColumnName": []byte("id"), "updateAction": []byte("RESTRICT"), "deleteAction": []byte("CASCADE")},
		)).
		On(q(QueryViews), dbtest.Rowset([]string{"pureName", "modifyDate"},
			map[string]any{"pureName": []byte("order_totals"), "modifyDate": viewCreated},
		)).
		On(q(QueryProgrammables), dbtest.Rowset([]string{"pureName", "objectType", "modifyDate", "returnDataType", "routineDefinition", "isDeterministic"},
			map[string]any{"pureName": []byte("archive_orders"), "objectType": []byte("PROCEDURE"), "modifyDate": routineAltered, "routineDefinition": []byte("BEGIN DELETE FROM orders; END")},
			map[string]any{"pureName": []byte("order_tax"), "objectType": []byte("FUNCTION"), "modifyDate": routineAltered, "returnDataType": []byte("decimal"), "routineDefinition": []byte("RETURN 0.2"), "isDeterministic": []byte("YES")},
			map[string]any{"pureName": []byte("next_code"), "objectType": []byte("FUNCTION"), "modifyDate": routineAltered, "returnDataType": []byte("varchar"), "routineDefinition": []byte("RETURN UUID()"), "isDeterministic": []byte("NO")},
		)).
		On(q(QueryViewTexts), dbtest.Rowset([]string{"pureName", "viewDefinition"},
			map[string]any{"pureName": []byte("order_totals"), "viewDefinition": []byte("select code from orders")},
		)).
		On(q(QueryIndexes), dbtest.Rowset([]string{"constraintName", "tableName", "columnName", "indexType", "nonUnique"},
			map[string]any{"constraintName": []byte("idx_total_code"), "tableName": []byte("orders"), "columnName": []byte("total"), "indexType": []byte("BTREE"), "nonUnique": int64(1)},
			map[string]any{"constraintName": []byte("uq_code"), "tableName": []byte("orders"), "columnName": []byte("code"), "indexType": []byte("BTREE"), "nonUnique": int64(0)},
			map[string]any{"constraintName": []byte("idx_total_code"), "tableName": []byte("orders"), "columnName": []byte("code"), "indexType": []byte("BTREE"), "nonUnique": int64(1)},
			map[string]any{"constraintName": []byte("idx_sku"), "tableName": []byte("order_items"), "columnName": []byte("sku"), "indexType": []byte("HASH"), "nonUnique": []byte("0")},
		)).
		On(q(QueryUniqueNames), dbtest.Rowset([]string{"constraintName"},
			map[string]any{"constraintName": []byte("uq_code")},
		))
}

func newTestAnalyser(db *dbtest.Querier, opts ...Option) *Analyser {
	return New(db, testDialect{}, testDB, opts...)
}

func TestRunFullAnalysis_Tables(t *testing.T) {
	info, err := newTestAnalyser(catalog()).RunFullAnalysis(context.Background())
	require.NoError(t, err)
	require.Len(t, info.Tables, 2)

	orders := info.Tables[0]
	assert.Equal(t, "orders", orders.ObjectID)
	assert.Equal(t, "orders", orders.PureName)
	assert.Equal(t, "2024-01-10T08:00:00.000Z", orders.ContentHash)
	require.NotNil(t, orders.TableRowCount)
	assert.Equal(t, int64(120), *orders.TableRowCount)

	require.Len(t, orders.Columns, 3)
	assert.Equal(t, "id", orders.Columns[0].ColumnName)
	assert.Equal(t, "int", orders.Columns[0].DataType)
	assert.True(t, orders.Columns[0].AutoIncrement)
	assert.True(t, orders.Columns[0].IsUnsigned)
	assert.Equal(t, "varchar(32)", orders.Columns[1].DataType)
	assert.Equal(t, "decimal(12,2)", orders.Columns[2].DataType)
	assert.False(t, orders.Columns[2].NotNull)
	require.NotNil(t, orders.Columns[2].DefaultValue)
	assert.Equal(t, "0.00", *orders.Columns[2].DefaultValue)

	require.NotNil(t, orders.PrimaryKey)
	assert.Equal(t, []ColumnRef{{ColumnName: "id"}}, orders.PrimaryKey.Columns)
	assert.Empty(t, orders.ForeignKeys)

	require.Len(t, orders.Indexes, 1)
	assert.Equal(t, Index{
		ConstraintName: "idx_total_code",
		IndexType:      "BTREE",
		IsUnique:       false,
		Columns:        []ColumnRef{{ColumnName: "total"}, {ColumnName: "code"}},
	}, orders.Indexes[0])
	assert.Equal(t, []Unique{{ConstraintName: "uq_code", Columns: []ColumnRef{{ColumnName: "code"}}}}, orders.Uniques)

	items := info.Tables[1]
	assert.Equal(t, int64(480), *items.TableRowCount)
	assert.Equal(t, []string{"order_id", "sku"}, columnNames(items.Columns))
	assert.Equal(t, "char(8)", items.Columns[1].DataType)
	assert.Equal(t, []ColumnRef{{ColumnName: "order_id"}, {ColumnName: "sku"}}, items.PrimaryKey.Columns)
	require.Len(t, items.ForeignKeys, 1)
	assert.Equal(t, "orders", items.ForeignKeys[0].RefTableName)
	require.Len(t, items.Indexes, 1)
	assert.True(t, items.Indexes[0].IsUnique, "non-unique flag 0 means unique")
	assert.Empty(t, items.Uniques)
}

func TestRunFullAnalysis_IndexPartitionIsDisjointCover(t *testing.T) {
	info, err := newTestAnalyser(catalog()).RunFullAnalysis(context.Background())
	require.NoError(t, err)

	raw := map[string][]string{
		"orders":      {"idx_total_code", "uq_code"},
		"order_items": {"idx_sku"},
	}
	for _, table := range info.Tables {
		seen := map[string]int{}
		for _, idx := range table.Indexes {
			seen[idx.ConstraintName]++
		}
		for _, u := range table.Uniques {
			seen[u.ConstraintName]++
		}
		for _, name := range raw[table.PureName] {
			assert.Equal(t, 1, seen[name], "%s.%s", table.PureName, name)
		}
		assert.Len(t, seen, len(raw[table.PureName]))
	}
}

func TestRunFullAnalysis_ViewsAndRoutines(t *testing.T) {
	info, err := newTestAnalyser(catalog()).RunFullAnalysis(context.Background())
	require.NoError(t, err)

	require.Len(t, info.Views, 1)
	view := info.Views[0]
	assert.Equal(t, "order_totals", view.ObjectID)
	assert.Equal(t, "2024-03-12T10:00:00.000Z", view.ContentHash)
	assert.Equal(t, "CREATE VIEW `order_totals` AS select code from orders", view.CreateSQL)
	assert.True(t, view.RequiresFormat)
	assert.Equal(t, []string{"code"}, columnNames(view.Columns))

	require.Len(t, info.Procedures, 1)
	proc := info.Procedures[0]
	assert.Equal(t, "archive_orders", proc.ObjectID)
	assert.Equal(t, "2024-04-13T11:15:00.000Z", proc.ContentHash)
	assert.Equal(t, "DELIMITER //\n\nCREATE PROCEDURE `archive_orders`()\nBEGIN DELETE FROM orders; END\n\nDELIMITER ;\n", proc.CreateSQL)

	require.Len(t, info.Functions, 2)
	assert.Equal(t, "CREATE FUNCTION `order_tax`()\nRETURNS decimal DETERMINISTIC\nRETURN 0.2", info.Functions[0].CreateSQL)
	assert.Equal(t, "decimal", info.Functions[0].ReturnDataType)
	assert.True(t, info.Functions[0].IsDeterministic)
	assert.Equal(t, "CREATE FUNCTION `next_code`()\nRETURNS varchar NOT DETERMINISTIC\nRETURN UUID()", info.Functions[1].CreateSQL)
	assert.False(t, info.Functions[1].IsDeterministic)
}

func TestRunFullAnalysis_ViewWithoutText(t *testing.T) {
	db := catalog().On(q(QueryViewTexts), dbtest.Rowset([]string{"pureName", "viewDefinition"}))

	info, err := newTestAnalyser(db).RunFullAnalysis(context.Background())
	require.NoError(t, err)
	require.Len(t, info.Views, 1)
	assert.Empty(t, info.Views[0].CreateSQL)
	assert.True(t, info.Views[0].RequiresFormat)
}

func TestRunFullAnalysis_TolerantFailureDegrades(t *testing.T) {
	unsupported := errs.New(errs.ErrKindQueryFailed, "Unknown table 'STATISTICS'")
	db := catalog().
		On(q(QueryIndexes), dbtest.Failure(unsupported)).
		On(q(QueryForeignKeys), dbtest.Failure(unsupported)).
		On(q(QueryViews), dbtest.Failure(unsupported))

	info, err := newTestAnalyser(db).RunFullAnalysis(context.Background())
	require.NoError(t, err)

	for _, table := range info.Tables {
		assert.NotNil(t, table.Indexes)
		assert.Empty(t, table.Indexes)
		assert.NotNil(t, table.Uniques)
		assert.Empty(t, table.Uniques)
		assert.Empty(t, table.ForeignKeys)
		assert.NotEmpty(t, table.Columns)
	}
	assert.Empty(t, info.Views)
	assert.NotEmpty(t, info.Functions)
}

func TestRunFullAnalysis_MalformedTolerantRowsDegrade(t *testing.T) {
	db := catalog().On(q(QueryIndexes), dbtest.Rowset([]string{"constraintName"},
		map[string]any{"constraintName": []byte("idx_orphan")},
	))

	info, err := newTestAnalyser(db).RunFullAnalysis(context.Background())
	require.NoError(t, err)
	for _, table := range info.Tables {
		assert.Empty(t, table.Indexes)
	}
}

func TestRunFullAnalysis_StrictFailureAborts(t *testing.T) {
	for _, name := range []string{QueryTables, QueryColumns, QueryProgrammables} {
		t.Run(name, func(t *testing.T) {
			cause := errs.New(errs.ErrKindPermissionDenied, "SELECT command denied")
			db := catalog().On(q(name), dbtest.Failure(cause))

			info, err := newTestAnalyser(db).RunFullAnalysis(context.Background())
			require.Error(t, err)
			assert.Nil(t, info)
			assert.ErrorIs(t, err, cause)
			assert.True(t, errs.IsPermissionDenied(err))
			assert.Contains(t, err.Error(), "load "+name)
		})
	}
}

func TestRunFullAnalysis_MalformedStrictRowAborts(t *testing.T) {
	db := catalog().On(q(QueryTables), dbtest.Rowset([]string{"tableRowCount"},
		map[string]any{"tableRowCount": int64(1)},
	))

	_, err := newTestAnalyser(db).RunFullAnalysis(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestRunFullAnalysis_UnknownTemplate(t *testing.T) {
	a := New(catalog(), testDialect{missing: QueryIndexes}, testDB)

	_, err := a.RunFullAnalysis(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestRunFullAnalysis_ProgressAndQueryOrder(t *testing.T) {
	db := catalog()
	var stages []Stage
	a := newTestAnalyser(db, WithProgress(ProgressFunc(func(s Stage) { stages = append(stages, s) })))

	_, err := a.RunFullAnalysis(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Stage{
		StageTables, StageColumns, StagePrimaryKeys, StageForeignKeys, StageViews,
		StageProgrammables, StageViewTexts, StageIndexes, StageUniques, StageFinalizing, StageNone,
	}, stages)
	assert.Equal(t, []string{
		q(QueryTables), q(QueryColumns), q(QueryPrimaryKeys), q(QueryForeignKeys), q(QueryViews),
		q(QueryProgrammables), q(QueryViewTexts), q(QueryIndexes), q(QueryUniqueNames),
	}, db.Queries())
}

func TestRunFullAnalysis_Idempotent(t *testing.T) {
	a := newTestAnalyser(catalog())

	first, err := a.RunFullAnalysis(context.Background())
	require.NoError(t, err)
	second, err := a.RunFullAnalysis(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunFullAnalysis_EmptyDatabase(t *testing.T) {
	db := dbtest.New()
	for _, name := range CatalogQueries {
		db.On(q(name), dbtest.Rowset([]string{"pureName"}))
	}

	info, err := newTestAnalyser(db).RunFullAnalysis(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, info.Tables)
	assert.NotNil(t, info.Views)
	assert.NotNil(t, info.Procedures)
	assert.NotNil(t, info.Functions)
	assert.Empty(t, info.Tables)
}

func TestRunFullAnalysis_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAnalyser(catalog()).RunFullAnalysis(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func snapshotCatalog() *dbtest.Querier {
	return catalog().
		On(q(QueryTableModifications), dbtest.Rowset([]string{"pureName", "objectType", "tableRowCount", "modifyDate"},
			map[string]any{"pureName": []byte("orders"), "objectType": []byte("BASE TABLE"), "tableRowCount": int64(120), "modifyDate": ordersCreated},
			map[string]any{"pureName": []byte("order_items"), "objectType": []byte("BASE TABLE"), "tableRowCount": int64(480), "modifyDate": itemsCreated},
			map[string]any{"pureName": []byte("order_totals"), "objectType": []byte("VIEW"), "modifyDate": viewCreated},
			map[string]any{"pureName": []byte("tmp"), "objectType": []byte("SYSTEM VIEW"), "modifyDate": viewCreated},
		)).
		On(q(QueryProcedureModifications), dbtest.Rowset([]string{"Db", "Name", "Type", "Modified"},
			map[string]any{"Db": []byte(testDB), "Name": []byte("archive_orders"), "Type": []byte("PROCEDURE"), "Modified": routineAltered},
		)).
		On(q(QueryFunctionModifications), dbtest.Rowset([]string{"Db", "Name", "Type", "Modified"},
			map[string]any{"Db": []byte(testDB), "Name": []byte("order_tax"), "Type": []byte("FUNCTION"), "Modified": routineAltered},
			map[string]any{"Db": []byte(testDB), "Name": []byte("next_code"), "Type": []byte("FUNCTION"), "Modified": routineAltered},
		))
}

func TestGetFastSnapshot(t *testing.T) {
	db := snapshotCatalog()
	snap, err := newTestAnalyser(db).GetFastSnapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Tables, 2)
	assert.Equal(t, "orders", snap.Tables[0].ObjectID)
	assert.Equal(t, "2024-01-10T08:00:00.000Z", snap.Tables[0].ContentHash)
	assert.Equal(t, int64(120), *snap.Tables[0].TableRowCount)

	require.Len(t, snap.Views, 1)
	assert.Equal(t, "order_totals", snap.Views[0].PureName)
	assert.Nil(t, snap.Views[0].TableRowCount)

	require.Len(t, snap.Procedures, 1)
	assert.Equal(t, SnapshotEntry{ObjectID: "archive_orders", PureName: "archive_orders", ContentHash: "2024-04-13T11:15:00.000Z"}, snap.Procedures[0])
	require.Len(t, snap.Functions, 2)

	assert.Equal(t, []string{q(QueryTableModifications), q(QueryProcedureModifications), q(QueryFunctionModifications)}, db.Queries())
}

func TestGetFastSnapshot_OpaqueRoutineToken(t *testing.T) {
	db := snapshotCatalog().On(q(QueryProcedureModifications), dbtest.Rowset([]string{"Name", "Modified"},
		map[string]any{"Name": []byte("archive_orders"), "Modified": []byte("2024-04-13 11:15:00")},
	))

	snap, err := newTestAnalyser(db).GetFastSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-04-13 11:15:00", snap.Procedures[0].ContentHash)
}

func TestGetFastSnapshot_FailureAborts(t *testing.T) {
	cause := errors.New("connection reset")
	db := snapshotCatalog().On(q(QueryFunctionModifications), dbtest.Failure(cause))

	snap, err := newTestAnalyser(db).GetFastSnapshot(context.Background())
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, cause)
}

func TestFastSnapshotAgreesWithFullAnalysis(t *testing.T) {
	a := newTestAnalyser(snapshotCatalog())

	info, err := a.RunFullAnalysis(context.Background())
	require.NoError(t, err)
	snap, err := a.GetFastSnapshot(context.Background())
	require.NoError(t, err)

	assert.Empty(t, Changes(info, snap))

	type key struct{ id, hash string }
	var full, fast []key
	for _, tbl := range info.Tables {
		full = append(full, key{tbl.ObjectID, tbl.ContentHash})
	}
	for _, e := range snap.Tables {
		fast = append(fast, key{e.ObjectID, e.ContentHash})
	}
	assert.Equal(t, full, fast)
}

func TestGateway_QuotesDatabaseName(t *testing.T) {
	g := &gateway{dialect: testDialect{}, dbName: `o'brien\db`}

	text, err := g.sql(QueryTables)
	require.NoError(t, err)
	assert.Equal(t, `tables @ o''brien\\db`, text)
}

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.ColumnName
	}
	return names
}
