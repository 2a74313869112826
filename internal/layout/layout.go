// Package layout owns the on-disk artifact layout of an import: where node,
// relationship and script files live, and how they are written.
//
// Node and relationship files are ';'-delimited so that array properties can
// use ',' as their element delimiter.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Delimiter separates fields in node and relationship files.
	Delimiter = ';'

	// ArrayDelimiter separates elements of array-typed properties.
	ArrayDelimiter = ','

	fileExt = ".csv"
)

// IOError wraps a failed file operation with the path involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Layout resolves artifact paths.
type Layout struct {
	ImportDir  string
	ScriptsDir string
	FKFile     string
}

// New creates a Layout. An empty fkFile defaults to FK.csv in scriptsDir.
func New(importDir, scriptsDir, fkFile string) Layout {
	if fkFile == "" {
		fkFile = filepath.Join(scriptsDir, "FK.csv")
	}
	return Layout{ImportDir: importDir, ScriptsDir: scriptsDir, FKFile: fkFile}
}

// NodeFile is the node file of a label.
func (l Layout) NodeFile(label string) string {
	return filepath.Join(l.ImportDir, label+fileExt)
}

// RelationshipFile is the edge file of a relationship type.
func (l Layout) RelationshipFile(relType string) string {
	return filepath.Join(l.ImportDir, relType+fileExt)
}

// ConstraintScript is the generated constraint script.
func (l Layout) ConstraintScript() string {
	return filepath.Join(l.ScriptsDir, "constraints.cypher")
}

// TriggerScript is the generated type-validation trigger script.
func (l Layout) TriggerScript() string {
	return filepath.Join(l.ScriptsDir, "triggers.cypher")
}

// RecoveryFile is the single-node file used to reset a broken database.
func (l Layout) RecoveryFile() string {
	return filepath.Join(l.ImportDir, "RECOVERY"+fileExt)
}

// Clean deletes every generated .csv file directly inside dir and returns how
// many were removed. Subdirectories and other files are left alone. A missing
// dir is created.
func Clean(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return 0, &IOError{Op: "create directory", Path: dir, Err: err}
			}
			return 0, nil
		}
		return 0, &IOError{Op: "list directory", Path: dir, Err: err}
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), fileExt) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			return removed, &IOError{Op: "remove", Path: path, Err: err}
		}
		removed++
	}
	return removed, nil
}

// WriteFile replaces path with content using a temp file and rename, so
// readers never observe a half-written header or script.
func WriteFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "create directory", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return &IOError{Op: "create temp file for", Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "rename temp file to", Path: path, Err: err}
	}
	return nil
}

// WriteHeader creates path containing only the given header fields.
func WriteHeader(path string, fields []string) error {
	return WriteFile(path, strings.Join(fields, string(Delimiter))+"\n")
}
