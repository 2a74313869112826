package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ConfigDirName is the per-project configuration directory.
	ConfigDirName = ".graphport"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "GRAPHPORT"

	// DotEnvFile holds credentials in the project root.
	DotEnvFile = ".env"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → .env → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads configFile instead of searching
// the project configuration directory. A missing configFile is an error.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (GRAPHPORT_*)
// 2. .env file in the project root
// 3. Config file (.graphport/config.yml or .graphport/config.yaml)
// 4. Default values
func (l *loader) Load() (*Config, error) {
	// godotenv never overrides variables that are already set
	dotEnv := filepath.Join(l.rootDir, DotEnvFile)
	if err := godotenv.Load(dotEnv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnv, err)
	}

	v := viper.New()

	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ConfigDirName))
	}

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., GRAPHPORT_NEO4J_PASSWORD)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Paths
	v.BindEnv("paths.schema_file")
	v.BindEnv("paths.tables_dir")
	v.BindEnv("paths.import_dir")
	v.BindEnv("paths.scripts_dir")
	v.BindEnv("paths.fk_file")
	v.BindEnv("paths.manifest_file")

	// Tables
	v.BindEnv("tables.delimiter")

	// Materialization
	v.BindEnv("materialize.join_strategy")
	v.BindEnv("materialize.workers")
	v.BindEnv("materialize.cache_rows")

	// Destination
	v.BindEnv("neo4j.uri")
	v.BindEnv("neo4j.username")
	v.BindEnv("neo4j.password")
	v.BindEnv("neo4j.database")
	v.BindEnv("neo4j.home")
	v.BindEnv("neo4j.cypher_shell")
	v.BindEnv("neo4j.admin")
	v.BindEnv("neo4j.timeout")

	// Source
	v.BindEnv("postgres.dsn")
	v.BindEnv("postgres.schema")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.schema_file", defaults.Paths.SchemaFile)
	v.SetDefault("paths.tables_dir", defaults.Paths.TablesDir)
	v.SetDefault("paths.import_dir", defaults.Paths.ImportDir)
	v.SetDefault("paths.scripts_dir", defaults.Paths.ScriptsDir)
	v.SetDefault("paths.fk_file", defaults.Paths.FKFile)
	v.SetDefault("paths.manifest_file", defaults.Paths.ManifestFile)

	v.SetDefault("tables.include", defaults.Tables.Include)
	v.SetDefault("tables.ignore", defaults.Tables.Ignore)
	v.SetDefault("tables.delimiter", defaults.Tables.Delimiter)

	v.SetDefault("materialize.join_strategy", defaults.Materialize.JoinStrategy)
	v.SetDefault("materialize.workers", defaults.Materialize.Workers)
	v.SetDefault("materialize.cache_rows", defaults.Materialize.CacheRows)

	v.SetDefault("neo4j.uri", defaults.Neo4j.URI)
	v.SetDefault("neo4j.username", defaults.Neo4j.Username)
	v.SetDefault("neo4j.password", defaults.Neo4j.Password)
	v.SetDefault("neo4j.database", defaults.Neo4j.Database)
	v.SetDefault("neo4j.home", defaults.Neo4j.Home)
	v.SetDefault("neo4j.cypher_shell", defaults.Neo4j.CypherShell)
	v.SetDefault("neo4j.admin", defaults.Neo4j.Admin)
	v.SetDefault("neo4j.timeout", defaults.Neo4j.Timeout)

	v.SetDefault("postgres.dsn", defaults.Postgres.DSN)
	v.SetDefault("postgres.schema", defaults.Postgres.Schema)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
