package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type wireTable struct {
	TableName string       `json:"table_name"`
	Columns   []wireColumn `json:"columns"`
}

type wireColumn struct {
	ColumnName string          `json:"column_name"`
	DataType   string          `json:"data_type"`
	PrimaryKey bool            `json:"primary_key"`
	IsNullable string          `json:"is_nullable"`
	ForeignKey []ForeignKeyRef `json:"foreign_key"`
}

// Marshal encodes tables in the same format Parse reads.
func Marshal(tables []TableMetadata) ([]byte, error) {
	out := make([]wireTable, 0, len(tables))
	for _, t := range tables {
		wt := wireTable{TableName: t.Name, Columns: make([]wireColumn, 0, len(t.Columns))}
		for _, c := range t.Columns {
			wc := wireColumn{ColumnName: c.Name, IsNullable: "YES"}
			switch r := c.Role.(type) {
			case Plain:
				wc.DataType = r.DataType
				wc.PrimaryKey = r.PrimaryKey
				if !r.Nullable {
					wc.IsNullable = "NO"
				}
			case ForeignKey:
				wc.DataType = r.DataType
				wc.ForeignKey = r.References
			default:
				return nil, fmt.Errorf("column %s.%s has no role", t.Name, c.Name)
			}
			wt.Columns = append(wt.Columns, wc)
		}
		out = append(out, wt)
	}
	return json.MarshalIndent(out, "", "  ")
}

// Save writes tables to path, creating parent directories.
func Save(path string, tables []TableMetadata) error {
	data, err := Marshal(tables)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema file %s: %w", path, err)
	}
	return nil
}
