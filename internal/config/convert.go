package config

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/graphport/internal/materialize"
	"github.com/mvp-joe/graphport/internal/neo4j"
)

// ToMaterializeConfig converts a Config to a materialize.Config.
// Relative paths are resolved against rootDir.
func (c *Config) ToMaterializeConfig(rootDir string) materialize.Config {
	delim, _ := utf8.DecodeRuneInString(c.Tables.Delimiter)

	return materialize.Config{
		SchemaFile:      c.resolve(rootDir, c.Paths.SchemaFile),
		TablesDir:       c.resolve(rootDir, c.Paths.TablesDir),
		IncludePatterns: c.Tables.Include,
		IgnorePatterns:  c.Tables.Ignore,
		Delimiter:       delim,
		ImportDir:       c.resolve(rootDir, c.Paths.ImportDir),
		ScriptsDir:      c.resolve(rootDir, c.Paths.ScriptsDir),
		FKFile:          c.resolve(rootDir, c.Paths.FKFile),
		ManifestFile:    c.resolve(rootDir, c.Paths.ManifestFile),
		JoinStrategy:    strings.ToLower(c.Materialize.JoinStrategy),
		Workers:         c.Materialize.Workers,
		CacheRows:       c.Materialize.CacheRows,
	}
}

// ToNeo4jConfig converts a Config to a neo4j.Config.
func (c *Config) ToNeo4jConfig() neo4j.Config {
	return neo4j.Config{
		URI:         c.Neo4j.URI,
		Username:    c.Neo4j.Username,
		Password:    c.Neo4j.Password,
		Database:    c.Neo4j.Database,
		Home:        c.Neo4j.Home,
		CypherShell: c.Neo4j.CypherShell,
		Admin:       c.Neo4j.Admin,
		Timeout:     c.Neo4j.Timeout,
	}
}

// resolve joins a relative path onto rootDir. Empty paths stay empty.
func (c *Config) resolve(rootDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}
