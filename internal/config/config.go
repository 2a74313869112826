// Package config loads the graphport project configuration.
//
// A project keeps its settings in .graphport/config.yml (or config.yaml)
// under the project root. Credentials usually live in a .env file next to
// it. Values are resolved with the following priority, highest first:
//
//  1. Environment variables (GRAPHPORT_*, nested keys joined with '_')
//  2. .env file in the project root
//  3. Config file
//  4. Built-in defaults
//
// The loaded Config is a plain value: nothing in the program reads settings
// from anywhere else.
package config

import (
	"time"
)

// Config represents the complete graphport configuration.
type Config struct {
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Tables      TablesConfig      `yaml:"tables" mapstructure:"tables"`
	Materialize MaterializeConfig `yaml:"materialize" mapstructure:"materialize"`
	Neo4j       Neo4jConfig       `yaml:"neo4j" mapstructure:"neo4j"`
	Postgres    PostgresConfig    `yaml:"postgres" mapstructure:"postgres"`

	// File is the config file that was read, empty when none was found.
	File string `yaml:"-" mapstructure:"-"`
}

// PathsConfig locates the inputs and outputs of a run. Relative paths are
// resolved against the project root.
type PathsConfig struct {
	SchemaFile   string `yaml:"schema_file" mapstructure:"schema_file"`     // schema description JSON
	TablesDir    string `yaml:"tables_dir" mapstructure:"tables_dir"`       // raw per-table exports
	ImportDir    string `yaml:"import_dir" mapstructure:"import_dir"`       // node and relationship files
	ScriptsDir   string `yaml:"scripts_dir" mapstructure:"scripts_dir"`     // constraint script
	FKFile       string `yaml:"fk_file" mapstructure:"fk_file"`             // relationship descriptor file
	ManifestFile string `yaml:"manifest_file" mapstructure:"manifest_file"` // run manifest, empty disables it
}

// TablesConfig selects the raw files of a run.
type TablesConfig struct {
	Include   []string `yaml:"include" mapstructure:"include"`     // glob patterns relative to tables_dir
	Ignore    []string `yaml:"ignore" mapstructure:"ignore"`       // glob patterns to skip
	Delimiter string   `yaml:"delimiter" mapstructure:"delimiter"` // single character
}

// MaterializeConfig tunes the materialization stages.
type MaterializeConfig struct {
	JoinStrategy string `yaml:"join_strategy" mapstructure:"join_strategy"` // "hash" or "sqlite"
	Workers      int    `yaml:"workers" mapstructure:"workers"`             // parallel node files
	CacheRows    int    `yaml:"cache_rows" mapstructure:"cache_rows"`       // raw rows kept in memory, 0 disables caching
}

// Neo4jConfig locates the destination database and its tools.
type Neo4jConfig struct {
	URI         string        `yaml:"uri" mapstructure:"uri"`
	Username    string        `yaml:"username" mapstructure:"username"`
	Password    string        `yaml:"password" mapstructure:"password"`
	Database    string        `yaml:"database" mapstructure:"database"`
	Home        string        `yaml:"home" mapstructure:"home"`                 // installation directory containing bin/
	CypherShell string        `yaml:"cypher_shell" mapstructure:"cypher_shell"` // empty resolves under home, then PATH
	Admin       string        `yaml:"admin" mapstructure:"admin"`               // neo4j-admin, resolved like cypher_shell
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PostgresConfig locates the source database of the extract command.
type PostgresConfig struct {
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
	Schema string `yaml:"schema" mapstructure:"schema"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			SchemaFile:   "data/schema.json",
			TablesDir:    "data/tables",
			ImportDir:    "import",
			ScriptsDir:   "scripts",
			FKFile:       "scripts/FK.csv",
			ManifestFile: "import/manifest.yaml",
		},
		Tables: TablesConfig{
			Include:   []string{"*.csv"},
			Ignore:    []string{},
			Delimiter: ",",
		},
		Materialize: MaterializeConfig{
			JoinStrategy: "hash",
			Workers:      1,
			CacheRows:    1_000_000,
		},
		Neo4j: Neo4jConfig{
			URI:      "neo4j://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
			Timeout:  30 * time.Minute,
		},
		Postgres: PostgresConfig{
			Schema: "public",
		},
	}
}
