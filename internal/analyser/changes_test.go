package analyser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChanges(t *testing.T) {
	prev := &DatabaseInfo{
		Tables: []Table{
			{ObjectInfo: ObjectInfo{ObjectID: "orders", ContentHash: "h1"}},
			{ObjectInfo: ObjectInfo{ObjectID: "customers", ContentHash: "h2"}},
			{ObjectInfo: ObjectInfo{ObjectID: "audit", ContentHash: "h3"}},
		},
		Views:     []View{{ObjectInfo: ObjectInfo{ObjectID: "order_totals", ContentHash: "v1"}}},
		Functions: []Function{{ObjectInfo: ObjectInfo{ObjectID: "order_tax", ContentHash: "f1"}}},
	}
	snap := &FastSnapshot{
		Tables: []SnapshotEntry{
			{ObjectID: "orders", ContentHash: "h1"},
			{ObjectID: "customers", ContentHash: "h2-altered"},
			{ObjectID: "invoices", ContentHash: "h4"},
		},
		Views:      []SnapshotEntry{{ObjectID: "order_totals", ContentHash: "v1"}},
		Procedures: []SnapshotEntry{{ObjectID: "archive_orders", ContentHash: "p1"}},
		Functions:  []SnapshotEntry{},
	}

	assert.Equal(t, []Change{
		{Kind: KindTable, ObjectID: "audit", Action: ChangeRemoved},
		{Kind: KindTable, ObjectID: "customers", Action: ChangeChanged},
		{Kind: KindTable, ObjectID: "invoices", Action: ChangeAdded},
		{Kind: KindProcedure, ObjectID: "archive_orders", Action: ChangeAdded},
		{Kind: KindFunction, ObjectID: "order_tax", Action: ChangeRemoved},
	}, Changes(prev, snap))
}

func TestChanges_NoPrevious(t *testing.T) {
	snap := &FastSnapshot{
		Tables: []SnapshotEntry{{ObjectID: "b"}, {ObjectID: "a"}},
		Views:  []SnapshotEntry{{ObjectID: "v"}},
	}

	assert.Equal(t, []Change{
		{Kind: KindTable, ObjectID: "a", Action: ChangeAdded},
		{Kind: KindTable, ObjectID: "b", Action: ChangeAdded},
		{Kind: KindView, ObjectID: "v", Action: ChangeAdded},
	}, Changes(nil, snap))
}

func TestChanges_SameNameDifferentKind(t *testing.T) {
	prev := &DatabaseInfo{Views: []View{{ObjectInfo: ObjectInfo{ObjectID: "report", ContentHash: "x"}}}}
	snap := &FastSnapshot{Tables: []SnapshotEntry{{ObjectID: "report", ContentHash: "x"}}}

	assert.Equal(t, []Change{
		{Kind: KindTable, ObjectID: "report", Action: ChangeAdded},
		{Kind: KindView, ObjectID: "report", Action: ChangeRemoved},
	}, Changes(prev, snap))
}

func TestChanges_Unchanged(t *testing.T) {
	prev := &DatabaseInfo{Tables: []Table{{ObjectInfo: ObjectInfo{ObjectID: "orders", ContentHash: "h"}}}}
	snap := &FastSnapshot{Tables: []SnapshotEntry{{ObjectID: "orders", ContentHash: "h"}}}

	changes := Changes(prev, snap)
	assert.NotNil(t, changes)
	assert.Empty(t, changes)
}
