package analyser

import "sort"

// ChangeAction says how an object differs from the previous analysis.
type ChangeAction string

const (
	ChangeAdded   ChangeAction = "added"
	ChangeChanged ChangeAction = "changed"
	ChangeRemoved ChangeAction = "removed"
)

// Change marks one object that needs a fresh analysis.
type Change struct {
	Kind     ObjectKind   `json:"kind"`
	ObjectID string       `json:"objectId"`
	Action   ChangeAction `json:"action"`
}

var kindOrder = []ObjectKind{KindTable, KindView, KindProcedure, KindFunction}

// Changes compares a fast snapshot with a previous full analysis by
// (kind, object id) and content hash. A nil prev reports every snapshot
// object as added. The result is ordered by kind, then object id.
func Changes(prev *DatabaseInfo, snap *FastSnapshot) []Change {
	before := make(map[ObjectKind]map[string]string, len(kindOrder))
	for _, k := range kindOrder {
		before[k] = make(map[string]string)
	}
	if prev != nil {
		for _, t := range prev.Tables {
			before[KindTable][t.ObjectID] = t.ContentHash
		}
		for _, v := range prev.Views {
			before[KindView][v.ObjectID] = v.ContentHash
		}
		for _, p := range prev.Procedures {
			before[KindProcedure][p.ObjectID] = p.ContentHash
		}
		for _, f := range prev.Functions {
			before[KindFunction][f.ObjectID] = f.ContentHash
		}
	}

	now := map[ObjectKind][]SnapshotEntry{}
	if snap != nil {
		now[KindTable] = snap.Tables
		now[KindView] = snap.Views
		now[KindProcedure] = snap.Procedures
		now[KindFunction] = snap.Functions
	}

	changes := make([]Change, 0)
	for _, kind := range kindOrder {
		var bucket []Change
		seen := make(map[string]struct{}, len(now[kind]))
		for _, e := range now[kind] {
			seen[e.ObjectID] = struct{}{}
			hash, existed := before[kind][e.ObjectID]
			switch {
			case !existed:
				bucket = append(bucket, Change{Kind: kind, ObjectID: e.ObjectID, Action: ChangeAdded})
			case hash != e.ContentHash:
				bucket = append(bucket, Change{Kind: kind, ObjectID: e.ObjectID, Action: ChangeChanged})
			}
		}
		for id := range before[kind] {
			if _, ok := seen[id]; !ok {
				bucket = append(bucket, Change{Kind: kind, ObjectID: id, Action: ChangeRemoved})
			}
		}
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].ObjectID < bucket[j].ObjectID })
		changes = append(changes, bucket...)
	}
	return changes
}
