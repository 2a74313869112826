package schema

import (
	"bytes"
	"fmt"

	"github.com/mvp-joe/graphport/internal/layout"
)

// Artifacts lists the files Emit created.
type Artifacts struct {
	NodeFiles         []string
	RelationshipFiles []string
	ConstraintScript  string
	TriggerScript     string
	ForeignKeyFile    string
}

// Emit writes the header-only node and relationship files, the constraint and
// trigger scripts, and the foreign-key descriptor file. Output is a pure
// function of s, so emitting the same schema twice yields identical bytes.
func Emit(s *CompiledSchema, l layout.Layout) (*Artifacts, error) {
	a := &Artifacts{
		ConstraintScript: l.ConstraintScript(),
		TriggerScript:    l.TriggerScript(),
		ForeignKeyFile:   l.FKFile,
	}

	for _, ls := range s.Labels {
		path := l.NodeFile(ls.Label)
		if err := layout.WriteHeader(path, ls.Header()); err != nil {
			return nil, fmt.Errorf("failed to write node header for %s: %w", ls.Label, err)
		}
		a.NodeFiles = append(a.NodeFiles, path)
	}

	for _, rel := range s.Relationships {
		path := l.RelationshipFile(rel.Type)
		if err := layout.WriteHeader(path, RelationshipHeader); err != nil {
			return nil, fmt.Errorf("failed to write relationship header for %s: %w", rel.Type, err)
		}
		a.RelationshipFiles = append(a.RelationshipFiles, path)
	}

	if err := layout.WriteFile(a.ConstraintScript, s.ConstraintScript()); err != nil {
		return nil, err
	}
	if err := layout.WriteFile(a.TriggerScript, s.ValidationScript()); err != nil {
		return nil, err
	}

	var fk bytes.Buffer
	if err := WriteDescriptors(&fk, s.Relationships); err != nil {
		return nil, fmt.Errorf("failed to encode foreign key descriptors: %w", err)
	}
	if err := layout.WriteFile(a.ForeignKeyFile, fk.String()); err != nil {
		return nil, err
	}

	return a, nil
}
