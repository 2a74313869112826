package materialize

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mvp-joe/graphport/internal/layout"
	"gopkg.in/yaml.v3"
)

// FileEntry describes one materialized file.
type FileEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	Rows int    `yaml:"rows"`
}

// Manifest records the artifact set of a successful run. The import command
// reads it to build the bulk loader arguments.
type Manifest struct {
	RunID            string      `yaml:"run_id"`
	GeneratedAt      time.Time   `yaml:"generated_at"`
	SchemaFile       string      `yaml:"schema_file"`
	ImportDir        string      `yaml:"import_dir"`
	JoinStrategy     string      `yaml:"join_strategy"`
	Nodes            []FileEntry `yaml:"nodes"`
	Relationships    []FileEntry `yaml:"relationships"`
	ConstraintScript string      `yaml:"constraint_script"`
	TriggerScript    string      `yaml:"trigger_script"`
	ForeignKeyFile   string      `yaml:"foreign_key_file"`
}

// NodeFiles returns the node file paths in manifest order.
func (m *Manifest) NodeFiles() []string {
	return entryPaths(m.Nodes)
}

// RelationshipFiles returns the relationship file paths in manifest order.
func (m *Manifest) RelationshipFiles() []string {
	return entryPaths(m.Relationships)
}

func entryPaths(entries []FileEntry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}

// WriteManifest writes m to path as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return layout.WriteFile(path, string(data))
}

// ReadManifest loads the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &layout.IOError{Op: "read manifest", Path: path, Err: err}
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// RemoveManifest deletes the manifest at path. A missing manifest is not an
// error.
func RemoveManifest(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &layout.IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}
