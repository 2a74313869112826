package postgres

import (
	"github.com/mvp-joe/graphport/internal/metadata"
)

// Column is one column as reported by information_schema.
type Column struct {
	Name     string
	DataType string
	Nullable bool
}

// ForeignKey is one referencing column of a foreign key constraint.
type ForeignKey struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// TableInfo is the catalog description of one table.
type TableInfo struct {
	Name        string
	Columns     []Column
	PrimaryKeys []string
	ForeignKeys []ForeignKey
}

// Assemble converts catalog descriptions into the schema description model.
// Columns keep their ordinal order. A column taking part in any foreign key
// becomes a foreign-key column with one reference per distinct target.
func Assemble(infos []TableInfo) []metadata.TableMetadata {
	out := make([]metadata.TableMetadata, 0, len(infos))

	for _, info := range infos {
		pk := make(map[string]bool, len(info.PrimaryKeys))
		for _, c := range info.PrimaryKeys {
			pk[c] = true
		}

		refs := make(map[string][]metadata.ForeignKeyRef)
		for _, fk := range info.ForeignKeys {
			ref := metadata.ForeignKeyRef{ReferencedTable: fk.ReferencedTable, ReferencedColumn: fk.ReferencedColumn}
			if !containsRef(refs[fk.Column], ref) {
				refs[fk.Column] = append(refs[fk.Column], ref)
			}
		}

		table := metadata.TableMetadata{Name: info.Name}
		for _, col := range info.Columns {
			if r, ok := refs[col.Name]; ok {
				table.Columns = append(table.Columns, metadata.NewForeignKeyColumn(col.Name, col.DataType, r...))
				continue
			}
			table.Columns = append(table.Columns, metadata.NewPlainColumn(col.Name, col.DataType, pk[col.Name], col.Nullable))
		}
		out = append(out, table)
	}

	return out
}

func containsRef(refs []metadata.ForeignKeyRef, ref metadata.ForeignKeyRef) bool {
	for _, r := range refs {
		if r == ref {
			return true
		}
	}
	return false
}
