// Package tables reads the raw per-table row exports that feed
// materialization. A raw table is a delimited file with a header row naming
// the source columns; each row gets its surrogate id exactly once, when the
// file is read.
package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mvp-joe/graphport/internal/layout"
)

const bom = "\uFEFF"

// Table is one raw table held in memory. Rows keep file order and IDs[i] is
// the surrogate id of Rows[i].
type Table struct {
	Label   string
	Path    string
	Columns []string
	Rows    [][]string
	IDs     []string

	index map[string]int
}

// SurrogateID returns the id of the row at zero-based position i of a label.
func SurrogateID(label string, i int) string {
	return label + strconv.Itoa(i)
}

// Column returns the position of a column in each row.
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Read loads the raw table at path. Fields are separated by delim; the first
// record is the header.
func Read(path, label string, delim rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &layout.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	t, err := decode(f, label, delim)
	if err != nil {
		return nil, &layout.IOError{Op: "read", Path: path, Err: err}
	}
	t.Path = path
	return t, nil
}

func decode(r io.Reader, label string, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, err
	}
	header[0] = strings.TrimPrefix(header[0], bom)

	t := &Table{
		Label:   label,
		Columns: header,
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q in header", name)
		}
		t.index[name] = i
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t.IDs = append(t.IDs, SurrogateID(label, len(t.Rows)))
		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}
