package analyser

// indexSet holds the index rows of one table grouped by constraint name.
type indexSet struct {
	order  []string
	first  map[string]indexRow
	column map[string][]ColumnRef
}

// groupIndexes splits the index rows by owning table, then by constraint
// name in order of first appearance. Column order follows the rows.
func groupIndexes(rows []indexRow) map[string]*indexSet {
	byTable := make(map[string]*indexSet)
	for _, r := range rows {
		set, ok := byTable[r.TableName]
		if !ok {
			set = &indexSet{first: make(map[string]indexRow), column: make(map[string][]ColumnRef)}
			byTable[r.TableName] = set
		}
		if _, seen := set.first[r.ConstraintName]; !seen {
			set.first[r.ConstraintName] = r
			set.order = append(set.order, r.ConstraintName)
		}
		set.column[r.ConstraintName] = append(set.column[r.ConstraintName], ColumnRef{ColumnName: r.ColumnName})
	}
	return byTable
}

// split partitions the table's indexes: names in uniqueNames become
// Uniques, every other name becomes an Index. Each name lands in exactly one.
func (s *indexSet) split(uniqueNames map[string]struct{}) ([]Index, []Unique) {
	indexes := make([]Index, 0)
	uniques := make([]Unique, 0)
	if s == nil {
		return indexes, uniques
	}
	for _, name := range s.order {
		cols := s.column[name]
		if _, isUnique := uniqueNames[name]; isUnique {
			uniques = append(uniques, Unique{ConstraintName: name, Columns: cols})
			continue
		}
		first := s.first[name]
		indexes = append(indexes, Index{
			ConstraintName: name,
			IndexType:      first.IndexType,
			IsUnique:       !first.NonUnique,
			Columns:        cols,
		})
	}
	return indexes, uniques
}
