package neo4j

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mvp-joe/graphport/internal/layout"
)

// ErrNothingToImport is returned by Import when no node file is given.
var ErrNothingToImport = errors.New("no node files to import")

// recoveryHeader is a node file without rows; importing it empties the
// database.
const recoveryHeader = ":ID;:LABEL\n"

// BulkImporter loads a complete node and relationship file set.
type BulkImporter interface {
	Import(ctx context.Context, nodeFiles, relationshipFiles []string) (*Output, error)
}

// Admin runs neo4j-admin offline imports.
type Admin struct {
	cfg Config
}

// NewAdmin creates an Admin.
func NewAdmin(cfg Config) *Admin {
	return &Admin{cfg: cfg}
}

// ImportArgs builds the neo4j-admin arguments of a full import that replaces
// the configured database.
func (a *Admin) ImportArgs(nodeFiles, relationshipFiles []string) []string {
	database := a.cfg.Database
	if database == "" {
		database = "neo4j"
	}

	args := []string{"database", "import", "full", database}
	for _, f := range nodeFiles {
		args = append(args, "--nodes="+f)
	}
	for _, f := range relationshipFiles {
		args = append(args, "--relationships="+f)
	}
	return append(args,
		"--delimiter="+string(layout.Delimiter),
		"--array-delimiter="+string(layout.ArrayDelimiter),
		"--overwrite-destination",
		"--verbose",
	)
}

// Import runs a full import of the given files. Paths are made absolute.
func (a *Admin) Import(ctx context.Context, nodeFiles, relationshipFiles []string) (*Output, error) {
	if len(nodeFiles) == 0 {
		return nil, ErrNothingToImport
	}

	nodes, err := absPaths(nodeFiles)
	if err != nil {
		return nil, err
	}
	rels, err := absPaths(relationshipFiles)
	if err != nil {
		return nil, err
	}

	return run(ctx, a.cfg.timeout(), a.cfg.adminPath(), a.ImportArgs(nodes, rels), "")
}

// Recover writes an empty recovery node file to path and imports it,
// replacing a database left inconsistent by a failed import.
func (a *Admin) Recover(ctx context.Context, path string) (*Output, error) {
	if err := WriteRecoveryFile(path); err != nil {
		return nil, err
	}
	return a.Import(ctx, []string{path}, nil)
}

// WriteRecoveryFile writes the header-only recovery node file.
func WriteRecoveryFile(path string) error {
	return layout.WriteFile(path, recoveryHeader)
}

func absPaths(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		out[i] = abs
	}
	return out, nil
}
