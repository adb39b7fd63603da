package analyser

// extractPrimaryKey binds the primary key rows of one table. Rows are
// expected in key column order. It returns nil when the table has none.
func extractPrimaryKey(table string, rows []primaryKeyRow) *PrimaryKey {
	var pk *PrimaryKey
	for _, r := range rows {
		if r.PureName != table {
			continue
		}
		if pk == nil {
			pk = &PrimaryKey{ConstraintName: r.ConstraintName, PureName: table}
		}
		pk.Columns = append(pk.Columns, ColumnRef{ColumnName: r.ColumnName})
	}
	return pk
}

// extractForeignKeys groups the foreign key rows of one table by constraint
// name, in order of first appearance, keeping column pairs in row order.
func extractForeignKeys(table string, rows []foreignKeyRow) []ForeignKey {
	fks := make([]ForeignKey, 0)
	pos := make(map[string]int)
	for _, r := range rows {
		if r.PureName != table {
			continue
		}
		i, ok := pos[r.ConstraintName]
		if !ok {
			i = len(fks)
			pos[r.ConstraintName] = i
			fks = append(fks, ForeignKey{
				ConstraintName: r.ConstraintName,
				PureName:       table,
				RefTableName:   r.RefTableName,
				UpdateAction:   r.UpdateAction,
				DeleteAction:   r.DeleteAction,
			})
		}
		fks[i].Columns = append(fks[i].Columns, ForeignKeyColumn{
			ColumnName:    r.ColumnName,
			RefColumnName: r.RefColumnName,
		})
	}
	return fks
}
