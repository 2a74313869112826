package materialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// companySchema has USER -> DEPT through dept_id and DEPT -> DEPT through
// parent_id.
const companySchema = `[
  {
    "table_name": "user",
    "columns": [
      {"column_name": "id", "data_type": "INTEGER", "primary_key": true, "is_nullable": "NO"},
      {"column_name": "name", "data_type": "varchar", "is_nullable": "YES"},
      {"column_name": "dept_id", "data_type": "INTEGER", "foreign_key": [{"referenced_table": "dept", "referenced_column": "id"}]}
    ]
  },
  {
    "table_name": "dept",
    "columns": [
      {"column_name": "id", "data_type": "INTEGER", "primary_key": true, "is_nullable": "NO"},
      {"column_name": "title", "data_type": "text", "is_nullable": "YES"},
      {"column_name": "parent_id", "data_type": "INTEGER", "foreign_key": [{"referenced_table": "dept", "referenced_column": "id"}]}
    ]
  }
]`

const (
	userRows = "id,name,dept_id,extra\n1,ann,10,x\n2,\"bob; jr\",20,y\n3,cy,,z\n4,dee,10,w\n"
	deptRows = "id,title,parent_id\n10,eng,\n20,ops,10\n30,hr,10\n"
)

// testProject lays out a schema file and raw tables under a temp dir and
// returns a Config pointing at it.
func testProject(t *testing.T, schemaJSON string, raw map[string]string) Config {
	t.Helper()
	root := t.TempDir()

	schemaFile := filepath.Join(root, "data", "schema.json")
	writeFile(t, schemaFile, schemaJSON)

	tablesDir := filepath.Join(root, "data", "tables")
	require.NoError(t, os.MkdirAll(tablesDir, 0755))
	for name, content := range raw {
		writeFile(t, filepath.Join(tablesDir, name), content)
	}

	return Config{
		SchemaFile:      schemaFile,
		TablesDir:       tablesDir,
		IncludePatterns: []string{"*.csv"},
		Delimiter:       ',',
		ImportDir:       filepath.Join(root, "import"),
		ScriptsDir:      filepath.Join(root, "scripts"),
		ManifestFile:    filepath.Join(root, "import", "manifest.yaml"),
		JoinStrategy:    JoinHash,
		Workers:         1,
		CacheRows:       1000,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
