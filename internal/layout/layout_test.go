package layout

// Test Plan for Import Layout:
// - path helpers follow the <dir>/<NAME>.csv convention
// - New() defaults the FK file into the scripts directory
// - Clean() removes only .csv files and creates a missing directory
// - WriteFile() replaces content and leaves no temp files behind
// - WriteHeader() writes a single ';'-joined line
// - OpenAppend() refuses to create missing files
// - RecordWriter appends after the header and quotes fields that need it
// - LockDir() is exclusive until released

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_Paths(t *testing.T) {
	l := New("/imp", "/scripts", "")

	assert.Equal(t, filepath.Join("/imp", "USER.csv"), l.NodeFile("USER"))
	assert.Equal(t, filepath.Join("/imp", "USER_REF_DEPT_ID.csv"), l.RelationshipFile("USER_REF_DEPT_ID"))
	assert.Equal(t, filepath.Join("/scripts", "constraints.cypher"), l.ConstraintScript())
	assert.Equal(t, filepath.Join("/scripts", "triggers.cypher"), l.TriggerScript())
	assert.Equal(t, filepath.Join("/scripts", "FK.csv"), l.FKFile)
	assert.Equal(t, filepath.Join("/imp", "RECOVERY.csv"), l.RecoveryFile())

	assert.Equal(t, "/elsewhere/fk.csv", New("/imp", "/scripts", "/elsewhere/fk.csv").FKFile)
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"A.csv", "B.CSV", "notes.txt", ".graphport.lock"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))

	removed, err := Clean(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"notes.txt", ".graphport.lock", "sub.csv"}, names)
}

func TestClean_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "import")

	removed, err := Clean(dir)
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.DirExists(t, dir)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "script.cypher")

	require.NoError(t, WriteFile(path, "first"))
	require.NoError(t, WriteFile(path, "second"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must be renamed away")
}

func TestRecordWriter_AppendsAfterHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "USER.csv")
	require.NoError(t, WriteHeader(path, []string{":ID", "name:STRING", ":LABEL"}))

	w, err := OpenAppend(path)
	require.NoError(t, err)
	require.NoError(t, w.Write([]string{"USER0", "plain", "USER"}))
	require.NoError(t, w.Write([]string{"USER1", "semi;colon", "USER"}))
	require.NoError(t, w.Write([]string{"USER2", "a,b", "USER"}))
	assert.Equal(t, 3, w.Rows())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":ID;name:STRING;:LABEL\nUSER0;plain;USER\nUSER1;\"semi;colon\";USER\nUSER2;a,b;USER\n", string(data))
}

func TestOpenAppend_RequiresExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	_, err := OpenAppend(path)
	require.Error(t, err)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, path, ioErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.NoFileExists(t, path)
}

func TestLockDir_Exclusive(t *testing.T) {
	dir := t.TempDir()

	first, err := LockDir(dir)
	require.NoError(t, err)

	_, err = LockDir(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))

	require.NoError(t, first.Release())

	again, err := LockDir(dir)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}
