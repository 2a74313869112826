// Package metadata models the relational schema description consumed by the
// graph materialization pipeline.
//
// The input is a JSON array of tables. Each table carries an ordered list of
// columns; a column is either a plain value column or a foreign-key column
// that references one or more columns of other tables:
//
//	[
//	  {
//	    "table_name": "users",
//	    "columns": [
//	      {"column_name": "id", "data_type": "integer", "primary_key": true, "is_nullable": "NO", "foreign_key": null},
//	      {"column_name": "dept_id", "data_type": "integer", "foreign_key": [
//	        {"referenced_table": "dept", "referenced_column": "id"}
//	      ]}
//	    ]
//	  }
//	]
package metadata

// TableMetadata describes one source table.
type TableMetadata struct {
	Name    string
	Columns []ColumnMetadata
}

// ColumnMetadata describes one source column. Role decides whether the column
// becomes a node property or a relationship.
type ColumnMetadata struct {
	Name string
	Role ColumnRole
}

// ForeignKeyRef points at the column a foreign key references.
type ForeignKeyRef struct {
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
}

// ColumnRole is either Plain or ForeignKey.
type ColumnRole interface {
	isColumnRole()
}

// Plain is a value column that maps to a node property.
type Plain struct {
	DataType   string
	PrimaryKey bool
	Nullable   bool
}

// ForeignKey is a column whose values reference rows of other tables.
// References is never empty.
type ForeignKey struct {
	DataType   string
	References []ForeignKeyRef
}

func (Plain) isColumnRole()      {}
func (ForeignKey) isColumnRole() {}

// NewPlainColumn builds a plain column.
func NewPlainColumn(name, dataType string, primaryKey, nullable bool) ColumnMetadata {
	return ColumnMetadata{
		Name: name,
		Role: Plain{DataType: dataType, PrimaryKey: primaryKey, Nullable: nullable},
	}
}

// NewForeignKeyColumn builds a foreign-key column.
func NewForeignKeyColumn(name, dataType string, refs ...ForeignKeyRef) ColumnMetadata {
	return ColumnMetadata{
		Name: name,
		Role: ForeignKey{DataType: dataType, References: refs},
	}
}

// DataType returns the source type of the column regardless of its role.
func (c ColumnMetadata) DataType() string {
	switch r := c.Role.(type) {
	case Plain:
		return r.DataType
	case ForeignKey:
		return r.DataType
	default:
		return ""
	}
}

// IsForeignKey reports whether the column references another table.
func (c ColumnMetadata) IsForeignKey() bool {
	_, ok := c.Role.(ForeignKey)
	return ok
}
