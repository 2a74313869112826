package materialize

import (
	"fmt"

	"github.com/mvp-joe/graphport/internal/layout"
	"github.com/mvp-joe/graphport/internal/schema"
	"github.com/mvp-joe/graphport/internal/tables"
)

// MaterializeNodes appends one row per raw row to the node file at path:
// the surrogate id, the header properties in header order, then the label.
// Raw columns outside the header are dropped. The file must already hold its
// header.
func MaterializeNodes(ls *schema.LabelSchema, tbl *tables.Table, path string) (int, error) {
	fail := func(err error) (int, error) {
		return 0, &MaterializationError{Stage: StageMaterializingNodes, Subject: ls.Label, Err: err}
	}

	projection := make([]int, len(ls.Properties))
	for i, p := range ls.Properties {
		col, ok := tbl.Column(p.Name)
		if !ok {
			return fail(fmt.Errorf("%w: %s not in %s", ErrMissingColumn, p.Name, tbl.Path))
		}
		projection[i] = col
	}

	w, err := layout.OpenAppend(path)
	if err != nil {
		return fail(err)
	}

	record := make([]string, len(projection)+2)
	for i, row := range tbl.Rows {
		record[0] = tbl.IDs[i]
		for j, col := range projection {
			record[j+1] = row[col]
		}
		record[len(record)-1] = ls.Label

		if err := w.Write(record); err != nil {
			w.Close()
			return fail(err)
		}
	}

	if err := w.Close(); err != nil {
		return fail(err)
	}
	return w.Rows(), nil
}
