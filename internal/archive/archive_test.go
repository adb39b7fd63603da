package archive

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbanalyser/internal/analyser"
	"github.com/koustreak/dbanalyser/internal/errs"
	"github.com/koustreak/dbanalyser/internal/filestore/filestoretest"
)

func sampleInfo(hash string) *analyser.DatabaseInfo {
	rows := int64(42)
	return &analyser.DatabaseInfo{
		Tables: []analyser.Table{{
			ObjectInfo:    analyser.ObjectInfo{ObjectID: "orders", PureName: "orders", ContentHash: hash},
			Columns:       []analyser.Column{{ColumnName: "id", DataType: "int", NotNull: true, AutoIncrement: true}},
			PrimaryKey:    &analyser.PrimaryKey{ConstraintName: "PRIMARY", PureName: "orders", Columns: []analyser.ColumnRef{{ColumnName: "id"}}},
			ForeignKeys:   []analyser.ForeignKey{},
			Indexes:       []analyser.Index{},
			Uniques:       []analyser.Unique{},
			TableRowCount: &rows,
		}},
		Views:      []analyser.View{},
		Procedures: []analyser.Procedure{},
		Functions:  []analyser.Function{},
	}
}

func clock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestSave_WritesHistoryAndLatest(t *testing.T) {
	store := filestoretest.New()
	a := New(store, nil)
	a.now = clock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	entry, err := a.Save(context.Background(), "shop", sampleInfo("h1"))
	require.NoError(t, err)

	assert.Equal(t, "shop/analyses/2024-05-01T12:00:00.000Z.json", entry.Key)
	assert.Equal(t, []string{"shop/analyses/2024-05-01T12:00:00.000Z.json", "shop/latest.json"}, store.Keys())
	assert.Positive(t, entry.Size)
}

func TestLatest_RoundTrip(t *testing.T) {
	store := filestoretest.New()
	a := New(store, nil)
	a.now = clock(
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	)

	_, err := a.Save(context.Background(), "shop", sampleInfo("h1"))
	require.NoError(t, err)
	_, err = a.Save(context.Background(), "shop", sampleInfo("h2"))
	require.NoError(t, err)

	rec, err := a.Latest(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, "shop/latest.json", rec.Key)
	assert.Equal(t, sampleInfo("h2"), rec.Info)
}

func TestLatest_NothingArchived(t *testing.T) {
	a := New(filestoretest.New(), nil)

	_, err := a.Latest(context.Background(), "shop")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Contains(t, err.Error(), `"shop"`)
}

func TestLatest_CorruptDocument(t *testing.T) {
	store := filestoretest.New()
	doc := []byte("{not json")
	require.NoError(t, store.PutObject(context.Background(), "shop/latest.json", bytes.NewReader(doc), int64(len(doc)), contentType))

	_, err := New(store, nil).Latest(context.Background(), "shop")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestHistory_NewestFirst(t *testing.T) {
	store := filestoretest.New()
	a := New(store, nil)
	a.now = clock(
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	)
	for i := 0; i < 3; i++ {
		_, err := a.Save(context.Background(), "shop", sampleInfo("h"))
		require.NoError(t, err)
	}
	_, err := a.Save(context.Background(), "crm", sampleInfo("h"))
	require.NoError(t, err)

	stray := []byte("x")
	require.NoError(t, store.PutObject(context.Background(), "shop/analyses/notes.txt", bytes.NewReader(stray), 1, "text/plain"))

	entries, err := a.History(context.Background(), "shop")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC), entries[0].SavedAt)
	assert.Equal(t, time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC), entries[1].SavedAt)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), entries[2].SavedAt)
}

func TestHistory_Empty(t *testing.T) {
	entries, err := New(filestoretest.New(), nil).History(context.Background(), "shop")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestInvalidDatabaseName(t *testing.T) {
	a := New(filestoretest.New(), nil)
	for _, name := range []string{"", "a/b"} {
		_, err := a.Save(context.Background(), name, sampleInfo("h"))
		assert.True(t, errs.IsInvalidInput(err), "save %q", name)
		_, err = a.Latest(context.Background(), name)
		assert.True(t, errs.IsInvalidInput(err), "latest %q", name)
		_, err = a.History(context.Background(), name)
		assert.True(t, errs.IsInvalidInput(err), "history %q", name)
	}
}

func TestSave_StoreFailure(t *testing.T) {
	store := filestoretest.New()
	store.PutErr = errs.Wrap(errs.ErrKindPermissionDenied, "failed to put object", errors.New("AccessDenied"))

	_, err := New(store, nil).Save(context.Background(), "shop", sampleInfo("h"))
	require.Error(t, err)
	assert.True(t, errs.IsPermissionDenied(err))
	assert.Empty(t, store.Keys())
}

func TestSave_NilInfo(t *testing.T) {
	_, err := New(filestoretest.New(), nil).Save(context.Background(), "shop", nil)
	assert.True(t, errs.IsInvalidInput(err))
}
