package tables

// Test Plan for Raw Tables:
// - Read() assigns ids <label>0..<label>N-1 in file order
// - Read() strips a UTF-8 byte order mark from the header
// - Read() honours a custom delimiter and quoted fields
// - Read() rejects files without a header and duplicate header columns
// - Read() wraps failures in layout.IOError
// - Discover() maps upper-cased base names to paths and applies ignore patterns
// - Discover() rejects two files mapping to one label
// - Store.Table() returns the same ids on repeated and concurrent loads
// - Store.Table() reports a missing raw file as IOError wrapping os.ErrNotExist
// - Store works with caching disabled

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mvp-joe/graphport/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRaw(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRead_AssignsPositionalIDs(t *testing.T) {
	path := writeRaw(t, t.TempDir(), "user.csv", "id,name\n1,ann\n2,bob\n3,cy\n")

	tbl, err := Read(path, "USER", ',')
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, tbl.Columns)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"USER0", "USER1", "USER2"}, tbl.IDs)
	assert.Equal(t, []string{"2", "bob"}, tbl.Rows[1])
	assert.Equal(t, path, tbl.Path)

	col, ok := tbl.Column("name")
	require.True(t, ok)
	assert.Equal(t, 1, col)
	_, ok = tbl.Column("missing")
	assert.False(t, ok)
}

func TestRead_StripsBOM(t *testing.T) {
	path := writeRaw(t, t.TempDir(), "t.csv", "\uFEFFid,v\n1,a\n")

	tbl, err := Read(path, "T", ',')
	require.NoError(t, err)
	_, ok := tbl.Column("id")
	assert.True(t, ok)
}

func TestRead_DelimiterAndQuotes(t *testing.T) {
	path := writeRaw(t, t.TempDir(), "t.csv", "id|note\n1|\"a|b\"\n2|\n")

	tbl, err := Read(path, "T", '|')
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "a|b"}, {"2", ""}}, tbl.Rows)
}

func TestRead_EmptyTable(t *testing.T) {
	path := writeRaw(t, t.TempDir(), "t.csv", "id,v\n")

	tbl, err := Read(path, "T", ',')
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.IDs)
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"no header", ""},
		{"duplicate column", "id,id\n1,2\n"},
		{"ragged row", "id,v\n1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRaw(t, dir, tt.name+".csv", tt.content)
			_, err := Read(path, "T", ',')
			require.Error(t, err)

			var ioErr *layout.IOError
			require.True(t, errors.As(err, &ioErr))
			assert.Equal(t, path, ioErr.Path)
		})
	}

	_, err := Read(filepath.Join(dir, "absent.csv"), "T", ',')
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	user := writeRaw(t, dir, "user.csv", "id\n")
	dept := writeRaw(t, dir, "nested/Dept.csv", "id\n")
	writeRaw(t, dir, "notes.txt", "x")
	writeRaw(t, dir, "tmp/scratch.csv", "id\n")

	d, err := NewDiscovery(dir, []string{"**/*.csv"}, []string{"tmp/**"})
	require.NoError(t, err)

	found, err := d.Discover()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"USER": user, "DEPT": dept}, found)
}

func TestDiscover_DuplicateLabel(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "user.csv", "id\n")
	writeRaw(t, dir, "b/USER.csv", "id\n")

	d, err := NewDiscovery(dir, []string{"**/*.csv"}, nil)
	require.NoError(t, err)

	_, err = d.Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USER")
}

func TestNewDiscovery_InvalidPattern(t *testing.T) {
	_, err := NewDiscovery(t.TempDir(), []string{"[a"}, nil)
	assert.Error(t, err)
}

func TestStore_StableIDs(t *testing.T) {
	dir := t.TempDir()
	path := writeRaw(t, dir, "user.csv", "id\n1\n2\n")

	for _, budget := range []int{0, 1, 1000} {
		s, err := NewStore(StoreOptions{Dir: dir, Paths: map[string]string{"USER": path}, RowBudget: budget})
		require.NoError(t, err)

		first, err := s.Table("USER")
		require.NoError(t, err)
		second, err := s.Table("USER")
		require.NoError(t, err)
		assert.Equal(t, first.IDs, second.IDs)
		assert.Equal(t, []string{"USER0", "USER1"}, second.IDs)
		s.Close()
	}
}

func TestStore_ConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	path := writeRaw(t, dir, "user.csv", "id\n1\n2\n3\n")

	s, err := NewStore(StoreOptions{Dir: dir, Paths: map[string]string{"USER": path}, RowBudget: 100})
	require.NoError(t, err)
	defer s.Close()

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := s.Table("USER")
			if err == nil {
				results[i] = tbl.IDs
			}
		}(i)
	}
	wg.Wait()

	for _, ids := range results {
		assert.Equal(t, []string{"USER0", "USER1", "USER2"}, ids)
	}
}

func TestStore_MissingTable(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(StoreOptions{Dir: dir, Paths: map[string]string{}})
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.Has("DEPT"))
	_, err = s.Table("DEPT")
	require.Error(t, err)

	var ioErr *layout.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, filepath.Join(dir, "DEPT.csv"), ioErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
