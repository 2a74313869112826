package materialize

import (
	"context"

	"github.com/mvp-joe/graphport/internal/layout"
	"github.com/mvp-joe/graphport/internal/schema"
	"github.com/mvp-joe/graphport/internal/tables"
)

// TableSource hands out loaded raw tables by label.
type TableSource interface {
	Table(label string) (*tables.Table, error)
}

// RelationshipMaterializer resolves relationship descriptors into edge rows.
type RelationshipMaterializer struct {
	graph  *schema.LabelGraph
	source TableSource
	joiner Joiner
}

// NewRelationshipMaterializer creates a materializer. Labels are checked
// against graph before any raw table is read.
func NewRelationshipMaterializer(graph *schema.LabelGraph, source TableSource, joiner Joiner) *RelationshipMaterializer {
	return &RelationshipMaterializer{graph: graph, source: source, joiner: joiner}
}

// Materialize joins the source and target raw tables of d and appends one
// (start id, end id, type) row per match to the relationship file at path.
// Unmatched rows on either side produce no edge.
func (m *RelationshipMaterializer) Materialize(ctx context.Context, d schema.RelationshipDescriptor, path string) (int, error) {
	fail := func(err error) (int, error) {
		return 0, &MaterializationError{Stage: StageMaterializingRelationships, Subject: d.Type, Err: err}
	}

	source, sourceCol, err := m.resolve(d.Type, d.SourceLabel, d.SourceColumn)
	if err != nil {
		return fail(err)
	}
	target, targetCol, err := m.resolve(d.Type, d.TargetLabel, d.TargetColumn)
	if err != nil {
		return fail(err)
	}

	w, err := layout.OpenAppend(path)
	if err != nil {
		return fail(err)
	}

	record := make([]string, 3)
	err = m.joiner.Join(ctx, source, sourceCol, target, targetCol, func(s, t int) error {
		record[0] = source.IDs[s]
		record[1] = target.IDs[t]
		record[2] = d.Type
		return w.Write(record)
	})
	if err != nil {
		w.Close()
		return fail(err)
	}

	if err := w.Close(); err != nil {
		return fail(err)
	}
	return w.Rows(), nil
}

func (m *RelationshipMaterializer) resolve(relType, label, column string) (*tables.Table, int, error) {
	if !m.graph.HasLabel(label) {
		return nil, 0, &JoinResolutionError{Relationship: relType, Label: label, Err: ErrLabelNotFound}
	}

	tbl, err := m.source.Table(label)
	if err != nil {
		return nil, 0, &JoinResolutionError{Relationship: relType, Label: label, Err: err}
	}

	col, ok := tbl.Column(column)
	if !ok {
		return nil, 0, &JoinResolutionError{Relationship: relType, Label: label, Column: column, Err: ErrColumnNotFound}
	}
	return tbl, col, nil
}
