package schema

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/graphport/internal/metadata"
	"github.com/mvp-joe/graphport/internal/typemap"
)

// CompileError wraps a column-level failure, typically a
// *typemap.UnsupportedTypeError.
type CompileError struct {
	Label  string
	Column string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s.%s: %v", e.Label, e.Column, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Compile derives the graph schema of tables. It fails on the first
// structural problem; nothing is partially compiled.
func Compile(tables []metadata.TableMetadata) (*CompiledSchema, error) {
	s := &CompiledSchema{
		Labels:  make([]*LabelSchema, 0, len(tables)),
		byLabel: make(map[string]*LabelSchema, len(tables)),
	}
	relTypes := make(map[string]string)

	for i, table := range tables {
		label := Label(table.Name)
		if label == "" {
			return nil, &metadata.ParseError{Table: fmt.Sprintf("#%d", i), Field: "table_name", Msg: "field is missing"}
		}
		if prev, ok := s.byLabel[label]; ok {
			return nil, &metadata.ParseError{
				Table: table.Name,
				Field: "table_name",
				Msg:   fmt.Sprintf("label %s is already used by table %s", label, prev.Table),
			}
		}

		ls, err := compileTable(label, table)
		if err != nil {
			return nil, err
		}

		for _, rel := range ls.Relationships {
			if owner, ok := relTypes[rel.Type]; ok {
				return nil, &metadata.ParseError{
					Table:  table.Name,
					Column: rel.SourceColumn,
					Msg:    fmt.Sprintf("relationship type %s is already derived from %s", rel.Type, owner),
				}
			}
			relTypes[rel.Type] = label + "." + rel.SourceColumn
		}

		s.Labels = append(s.Labels, ls)
		s.byLabel[label] = ls
		s.Relationships = append(s.Relationships, ls.Relationships...)
	}

	// Node and relationship files share one directory.
	for relType, owner := range relTypes {
		if _, ok := s.byLabel[relType]; ok {
			return nil, &metadata.ParseError{
				Table: s.byLabel[relType].Table,
				Field: "table_name",
				Msg:   fmt.Sprintf("label %s collides with the relationship type derived from %s", relType, owner),
			}
		}
	}

	return s, nil
}

func compileTable(label string, table metadata.TableMetadata) (*LabelSchema, error) {
	ls := &LabelSchema{Label: label, Table: table.Name}
	seen := make(map[string]bool, len(table.Columns))

	for i, col := range table.Columns {
		if strings.TrimSpace(col.Name) == "" {
			return nil, &metadata.ParseError{Table: table.Name, Column: fmt.Sprintf("#%d", i), Field: "column_name", Msg: "field is missing"}
		}
		if seen[col.Name] {
			return nil, &metadata.ParseError{Table: table.Name, Column: col.Name, Field: "column_name", Msg: "duplicate column"}
		}
		seen[col.Name] = true

		switch role := col.Role.(type) {
		case metadata.Plain:
			if strings.TrimSpace(role.DataType) == "" {
				return nil, &metadata.ParseError{Table: table.Name, Column: col.Name, Field: "data_type", Msg: "field is missing"}
			}
			destType, err := typemap.Map(role.DataType)
			if err != nil {
				return nil, &CompileError{Label: label, Column: col.Name, Err: err}
			}

			if role.PrimaryKey {
				ls.Constraints = append(ls.Constraints, Constraint{Kind: ConstraintUnique, Label: label, Property: col.Name})
			}
			if !role.Nullable {
				ls.Constraints = append(ls.Constraints, Constraint{Kind: ConstraintNotNull, Label: label, Property: col.Name})
			}
			ls.Validations = append(ls.Validations, ValidationRule{Label: label, Property: col.Name, Type: destType})
			ls.Properties = append(ls.Properties, Property{Name: col.Name, Type: destType})

		case metadata.ForeignKey:
			if len(role.References) == 0 {
				return nil, &metadata.ParseError{Table: table.Name, Column: col.Name, Field: "foreign_key", Msg: "array must not be empty"}
			}
			baseType := RelationshipType(label, col.Name)
			for j, ref := range role.References {
				if strings.TrimSpace(ref.ReferencedTable) == "" {
					return nil, &metadata.ParseError{Table: table.Name, Column: col.Name, Field: "referenced_table", Msg: "field is missing"}
				}
				if strings.TrimSpace(ref.ReferencedColumn) == "" {
					return nil, &metadata.ParseError{Table: table.Name, Column: col.Name, Field: "referenced_column", Msg: "field is missing"}
				}
				target := Label(ref.ReferencedTable)
				relType := baseType
				if j > 0 {
					// additional targets of the same column get the target label appended
					relType = baseType + "_" + target
				}
				ls.Relationships = append(ls.Relationships, RelationshipDescriptor{
					Type:         relType,
					SourceLabel:  label,
					SourceColumn: col.Name,
					TargetLabel:  target,
					TargetColumn: ref.ReferencedColumn,
				})
			}

		default:
			return nil, &metadata.ParseError{Table: table.Name, Column: col.Name, Msg: "column has neither a data_type nor a foreign_key"}
		}
	}

	return ls, nil
}
