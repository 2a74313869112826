package neo4j

// Test Plan for Neo4j Tools:
// - Shell.ScriptArgs() passes address, user, password, database and -f path
// - Shell.RunScript() invokes the binary with an absolute script path
// - Shell.RunQuery() requests plain output
// - A failing tool yields CommandError with exit code, stderr and no password
// - A tool exceeding the timeout yields context.DeadlineExceeded
// - ApplyScripts() stops at the first failing script
// - Admin.ImportArgs() builds a full import with ';' and ',' delimiters
// - Admin.Import() resolves files to absolute paths and requires node files
// - Admin.Recover() writes a header-only RECOVERY file and imports it
// - Config resolves tools under Home/bin
// - ParseDirectories() reads home and import from plain output
// - Configure() writes apoc.conf into the reported home

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool writes an executable shell script that records its arguments one
// per line in argsFile, then runs body.
func fakeTool(t *testing.T, body string) (binary string, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.txt")
	binary = filepath.Join(dir, "tool")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > '" + argsFile + "'\n" + body + "\n"
	require.NoError(t, os.WriteFile(binary, []byte(script), 0755))
	return binary, argsFile
}

func recordedArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func testConfig(binary string) Config {
	return Config{
		URI:         "neo4j://localhost:7687",
		Username:    "neo4j",
		Password:    "s3cret",
		Database:    "graph",
		CypherShell: binary,
		Admin:       binary,
		Timeout:     10 * time.Second,
	}
}

func TestShell_ScriptArgs(t *testing.T) {
	s := NewShell(testConfig("cypher-shell"))
	assert.Equal(t,
		[]string{"-a", "neo4j://localhost:7687", "-u", "neo4j", "-p", "s3cret", "-d", "graph", "-f", "/tmp/c.cypher"},
		s.ScriptArgs("/tmp/c.cypher"))

	bare := NewShell(Config{})
	assert.Equal(t, []string{"-f", "x"}, bare.ScriptArgs("x"))
}

func TestShell_RunScript(t *testing.T) {
	binary, argsFile := fakeTool(t, "echo 0 rows")
	s := NewShell(testConfig(binary))

	dir := t.TempDir()
	script := filepath.Join(dir, "constraints.cypher")
	require.NoError(t, os.WriteFile(script, []byte("RETURN 1;\n"), 0644))

	out, err := s.RunScript(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, "0 rows\n", out.Stdout)

	args := recordedArgs(t, argsFile)
	assert.Equal(t, []string{"-f", script}, args[len(args)-2:])
}

func TestShell_RunQuery(t *testing.T) {
	binary, argsFile := fakeTool(t, "")
	s := NewShell(testConfig(binary))

	_, err := s.RunQuery(context.Background(), "RETURN 1;")
	require.NoError(t, err)

	args := recordedArgs(t, argsFile)
	assert.Equal(t, []string{"--format", "plain", "RETURN 1;"}, args[len(args)-3:])
}

func TestRun_CommandError(t *testing.T) {
	binary, _ := fakeTool(t, "echo 'Invalid input' >&2\nexit 3")
	s := NewShell(testConfig(binary))

	_, err := s.RunQuery(context.Background(), "RETURN;")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Contains(t, cmdErr.Error(), "Invalid input")
	assert.NotContains(t, cmdErr.Error(), "s3cret")
	assert.Contains(t, cmdErr.Args, "****")
}

func TestRun_Timeout(t *testing.T) {
	binary, _ := fakeTool(t, "exec sleep 5")
	cfg := testConfig(binary)
	cfg.Timeout = 100 * time.Millisecond

	_, err := NewShell(cfg).RunQuery(context.Background(), "RETURN 1;")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type fakeRunner struct {
	ran  []string
	fail string
}

func (f *fakeRunner) RunScript(_ context.Context, path string) (*Output, error) {
	f.ran = append(f.ran, path)
	if path == f.fail {
		return nil, errors.New("rejected")
	}
	return &Output{}, nil
}

func TestApplyScripts(t *testing.T) {
	r := &fakeRunner{fail: "b"}
	err := ApplyScripts(context.Background(), r, "a", "b", "c")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply b")
	assert.Equal(t, []string{"a", "b"}, r.ran)

	r = &fakeRunner{}
	require.NoError(t, ApplyScripts(context.Background(), r, "a", "b"))
	assert.Equal(t, []string{"a", "b"}, r.ran)
}

func TestAdmin_ImportArgs(t *testing.T) {
	a := NewAdmin(Config{Database: "graph"})
	assert.Equal(t, []string{
		"database", "import", "full", "graph",
		"--nodes=/i/USER.csv", "--nodes=/i/DEPT.csv",
		"--relationships=/i/USER_REF_DEPT_ID.csv",
		"--delimiter=;", "--array-delimiter=,", "--overwrite-destination", "--verbose",
	}, a.ImportArgs([]string{"/i/USER.csv", "/i/DEPT.csv"}, []string{"/i/USER_REF_DEPT_ID.csv"}))

	assert.Equal(t, "neo4j", NewAdmin(Config{}).ImportArgs(nil, nil)[3])
}

func TestAdmin_Import(t *testing.T) {
	binary, argsFile := fakeTool(t, "echo IMPORT DONE")
	a := NewAdmin(testConfig(binary))

	_, err := a.Import(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNothingToImport)

	out, err := a.Import(context.Background(), []string{"USER.csv"}, []string{"R.csv"})
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, "IMPORT DONE")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	args := recordedArgs(t, argsFile)
	assert.Contains(t, args, "--nodes="+filepath.Join(cwd, "USER.csv"))
	assert.Contains(t, args, "--relationships="+filepath.Join(cwd, "R.csv"))
}

func TestAdmin_Recover(t *testing.T) {
	binary, argsFile := fakeTool(t, "")
	a := NewAdmin(testConfig(binary))

	path := filepath.Join(t.TempDir(), "RECOVERY.csv")
	_, err := a.Recover(context.Background(), path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":ID;:LABEL\n", string(data))
	assert.Contains(t, recordedArgs(t, argsFile), "--nodes="+path)
}

func TestConfig_ToolPaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix tool names")
	}
	assert.Equal(t, "cypher-shell", Config{}.cypherShellPath())
	assert.Equal(t, "neo4j-admin", Config{}.adminPath())
	assert.Equal(t, filepath.Join("/opt/neo4j", "bin", "neo4j-admin"), Config{Home: "/opt/neo4j"}.adminPath())
	assert.Equal(t, "/usr/local/bin/cs", Config{Home: "/opt/neo4j", CypherShell: "/usr/local/bin/cs"}.cypherShellPath())
}

const listConfigOutput = `name, value
"server.directories.import", "/var/lib/neo4j/import"
"server.directories.logs", "/var/log/neo4j"
"server.directories.neo4j_home", "/var/lib/neo4j"
`

func TestParseDirectories(t *testing.T) {
	dirs, err := ParseDirectories(listConfigOutput)
	require.NoError(t, err)
	assert.Equal(t, Directories{Home: "/var/lib/neo4j", Import: "/var/lib/neo4j/import"}, dirs)

	_, err = ParseDirectories("name, value\n")
	assert.ErrorIs(t, err, ErrHomeNotFound)
}

type fakeQuery struct {
	output string
	query  string
}

func (f *fakeQuery) RunQuery(_ context.Context, query string) (*Output, error) {
	f.query = query
	return &Output{Stdout: f.output}, nil
}

func TestConfigure(t *testing.T) {
	home := t.TempDir()
	q := &fakeQuery{output: "name, value\n\"server.directories.neo4j_home\", \"" + home + "\"\n\"server.directories.import\", \"" + home + "/import\"\n"}

	dirs, path, err := Configure(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, ListDirectoriesQuery, q.query)
	assert.Equal(t, home+"/import", dirs.Import)
	assert.Equal(t, filepath.Join(home, "conf", "apoc.conf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "apoc.trigger.enabled=true\napoc.import.file.enabled=true\napoc.export.file.enabled=true\n", string(data))
}
