package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
)

// LabelGraph is the label-level view of a compiled schema: one vertex per
// label and one directed edge per referencing/referenced label pair.
// Self references and reference cycles are allowed.
type LabelGraph struct {
	g        graph.Graph[string, string]
	dangling []RelationshipDescriptor
}

// Reference is an outgoing edge of a label.
type Reference struct {
	Target string
	Types  []string
}

// NewLabelGraph builds the label graph of s. Relationships whose target
// label is not part of s are kept aside and reported by Dangling.
func NewLabelGraph(s *CompiledSchema) (*LabelGraph, error) {
	lg := &LabelGraph{g: graph.New(graph.StringHash, graph.Directed())}

	for _, l := range s.Labels {
		if err := lg.g.AddVertex(l.Label); err != nil {
			return nil, fmt.Errorf("failed to add label %s: %w", l.Label, err)
		}
	}

	type pair struct{ from, to string }
	var order []pair
	types := make(map[pair][]string)
	for _, rel := range s.Relationships {
		if _, ok := s.Label(rel.TargetLabel); !ok {
			lg.dangling = append(lg.dangling, rel)
			continue
		}
		p := pair{rel.SourceLabel, rel.TargetLabel}
		if _, ok := types[p]; !ok {
			order = append(order, p)
		}
		types[p] = append(types[p], rel.Type)
	}

	for _, p := range order {
		err := lg.g.AddEdge(p.from, p.to, graph.EdgeData(types[p]))
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return nil, fmt.Errorf("failed to add reference %s -> %s: %w", p.from, p.to, err)
		}
	}

	return lg, nil
}

// HasLabel reports whether label is a vertex of the graph.
func (lg *LabelGraph) HasLabel(label string) bool {
	_, err := lg.g.Vertex(label)
	return err == nil
}

// Outgoing lists the labels referenced by label, sorted by target.
func (lg *LabelGraph) Outgoing(label string) ([]Reference, error) {
	adjacency, err := lg.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	targets, ok := adjacency[label]
	if !ok {
		return nil, fmt.Errorf("unknown label %s: %w", label, graph.ErrVertexNotFound)
	}

	refs := make([]Reference, 0, len(targets))
	for target, edge := range targets {
		relTypes, _ := edge.Properties.Data.([]string)
		refs = append(refs, Reference{Target: target, Types: relTypes})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Target < refs[j].Target })
	return refs, nil
}

// ReferencedBy lists the labels that reference label, sorted.
func (lg *LabelGraph) ReferencedBy(label string) ([]string, error) {
	predecessors, err := lg.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	sources, ok := predecessors[label]
	if !ok {
		return nil, fmt.Errorf("unknown label %s: %w", label, graph.ErrVertexNotFound)
	}

	labels := make([]string, 0, len(sources))
	for source := range sources {
		labels = append(labels, source)
	}
	sort.Strings(labels)
	return labels, nil
}

// Dangling returns relationships whose target label is not in the schema.
func (lg *LabelGraph) Dangling() []RelationshipDescriptor {
	return lg.dangling
}
