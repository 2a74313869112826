package postgres

// Test Plan for Catalog Assembly:
// - Assemble() keeps column order and maps primary keys and nullability
// - Assemble() turns foreign-key columns into references, deduplicated
// - Assemble() output compiles through the schema description model
// - CopyStatement() quotes schema and table identifiers

import (
	"testing"

	"github.com/mvp-joe/graphport/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	infos := []TableInfo{
		{
			Name: "user",
			Columns: []Column{
				{Name: "id", DataType: "integer", Nullable: false},
				{Name: "email", DataType: "character varying", Nullable: true},
				{Name: "dept_id", DataType: "integer", Nullable: true},
			},
			PrimaryKeys: []string{"id"},
			ForeignKeys: []ForeignKey{
				{Column: "dept_id", ReferencedTable: "dept", ReferencedColumn: "id"},
				{Column: "dept_id", ReferencedTable: "dept", ReferencedColumn: "id"},
			},
		},
		{
			Name:        "dept",
			Columns:     []Column{{Name: "id", DataType: "integer"}},
			PrimaryKeys: []string{"id"},
		},
	}

	tables := Assemble(infos)
	require.Len(t, tables, 2)

	assert.Equal(t, metadata.TableMetadata{
		Name: "user",
		Columns: []metadata.ColumnMetadata{
			metadata.NewPlainColumn("id", "integer", true, false),
			metadata.NewPlainColumn("email", "character varying", false, true),
			metadata.NewForeignKeyColumn("dept_id", "integer", metadata.ForeignKeyRef{ReferencedTable: "dept", ReferencedColumn: "id"}),
		},
	}, tables[0])
	assert.Equal(t, "dept", tables[1].Name)
}

func TestAssemble_ParsesBack(t *testing.T) {
	tables := Assemble([]TableInfo{{
		Name:        "t",
		Columns:     []Column{{Name: "id", DataType: "bigint"}, {Name: "p", DataType: "bigint", Nullable: true}},
		PrimaryKeys: []string{"id"},
		ForeignKeys: []ForeignKey{{Column: "p", ReferencedTable: "t", ReferencedColumn: "id"}},
	}})

	data, err := metadata.Marshal(tables)
	require.NoError(t, err)
	parsed, err := metadata.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, tables, parsed)
}

func TestCopyStatement(t *testing.T) {
	assert.Equal(t,
		`COPY "public"."user" TO STDOUT WITH (FORMAT csv, HEADER true)`,
		CopyStatement("public", "user"))
	assert.Equal(t,
		`COPY "s"."odd""name" TO STDOUT WITH (FORMAT csv, HEADER true)`,
		CopyStatement("s", `odd"name`))
}
