package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbanalyser/internal/database"
	"github.com/koustreak/dbanalyser/internal/database/dbtest"
)

func TestScanRows_PreservesOrderAndTypes(t *testing.T) {
	modified := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	q := dbtest.New().On("SELECT 1", dbtest.Rowset(
		[]string{"pureName", "modifyDate", "tableRowCount"},
		map[string]any{"pureName": []byte("orders"), "modifyDate": modified, "tableRowCount": int64(10)},
		map[string]any{"pureName": []byte("customers"), "modifyDate": nil, "tableRowCount": int64(0)},
	))

	rows, err := q.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)

	got, err := database.ScanRows(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []byte("orders"), got[0]["pureName"])
	assert.Equal(t, modified, got[0]["modifyDate"])
	assert.Nil(t, got[1]["modifyDate"])
	assert.Equal(t, int64(0), got[1]["tableRowCount"])
}

func TestScanRows_EmptyIsNonNil(t *testing.T) {
	q := dbtest.New().On("SELECT 1", dbtest.Rowset([]string{"a"}))

	rows, err := q.Query(context.Background(), "SELECT 1")
	require.NoError(t, err)

	got, err := database.ScanRows(rows)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func TestScanRow(t *testing.T) {
	row := rowFunc(func(dest ...any) error {
		*(dest[0].(*any)) = []byte("shop")
		return nil
	})

	got, err := database.ScanRow(row, []string{"name"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": []byte("shop")}, got)
}
