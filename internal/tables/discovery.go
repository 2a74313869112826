package tables

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/graphport/internal/schema"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery locates raw table files under a directory.
type Discovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewDiscovery creates a discovery over rootDir. Paths are matched relative
// to rootDir with '/' separators.
func NewDiscovery(rootDir string, include, ignore []string) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		d.includePatterns = append(d.includePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	for _, pattern := range ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		d.ignorePatterns = append(d.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return d, nil
}

// Discover walks the directory and maps each label to its raw file. The label
// of a file is its upper-cased base name without extension. Two files mapping
// to the same label is an error.
func (d *Discovery) Discover() (map[string]string, error) {
	found := make(map[string]string)

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if matchesAny(relPath, d.ignorePatterns) || !matchesAny(relPath, d.includePatterns) {
			return nil
		}

		base := filepath.Base(path)
		label := schema.Label(strings.TrimSuffix(base, filepath.Ext(base)))
		if prev, ok := found[label]; ok {
			return fmt.Errorf("raw files %s and %s both map to label %s", prev, path, label)
		}
		found[label] = path
		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

// matchesAny also lets "**/x" patterns match files in the root directory.
func matchesAny(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/')
			if err == nil && simplified.Match(path) {
				return true
			}
		}
	}

	return false
}
