package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

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
      {"column_name": "title", "data_type": "text", "is_nullable": "YES"}
    ]
  }
]`

// setupProject lays out a project with the default path configuration and
// returns its root.
func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "schema.json"), companySchema)
	writeFile(t, filepath.Join(root, "data", "tables", "user.csv"), "id,name,dept_id\n1,ann,10\n2,bob,20\n3,cy,10\n")
	writeFile(t, filepath.Join(root, "data", "tables", "dept.csv"), "id,title\n10,eng\n20,ops\n")
	return root
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

// fakeTool writes an executable shell script that appends its arguments,
// one per line, to logFile.
func fakeTool(t *testing.T, dir, name, logFile string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" >> '" + logFile + "'\necho ok\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// resetFlags restores every command flag variable to its default.
func resetFlags() {
	cfgFile, dirFlag, quietFlag, verbose = "", "", false, false
	joinStrategyFlag, workersFlag, noManifestFlag = "", 0, false
	manifestFlag, skipScriptsFlag, scriptsOnlyFlag = "", false, false
	describeScriptsFlag, describeLabelFlag = false, ""
	dsnFlag, pgSchemaFlag, extractTables, extractNoRowFlag = "", "", nil, false
	recoverFileFlag = ""
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
