package neo4j

import (
	"context"
	"fmt"
	"path/filepath"
)

// ScriptRunner executes a script of Cypher statements.
type ScriptRunner interface {
	RunScript(ctx context.Context, path string) (*Output, error)
}

// QueryRunner executes a single Cypher query.
type QueryRunner interface {
	RunQuery(ctx context.Context, query string) (*Output, error)
}

// Shell runs cypher-shell against the configured database.
type Shell struct {
	cfg Config
}

// NewShell creates a Shell.
func NewShell(cfg Config) *Shell {
	return &Shell{cfg: cfg}
}

// ScriptArgs builds the cypher-shell arguments that run the script at path.
func (s *Shell) ScriptArgs(path string) []string {
	return append(s.connectionArgs(), "-f", path)
}

// QueryArgs builds the cypher-shell arguments that run query with plain
// output.
func (s *Shell) QueryArgs(query string) []string {
	return append(s.connectionArgs(), "--format", "plain", query)
}

func (s *Shell) connectionArgs() []string {
	var args []string
	if s.cfg.URI != "" {
		args = append(args, "-a", s.cfg.URI)
	}
	if s.cfg.Username != "" {
		args = append(args, "-u", s.cfg.Username)
	}
	if s.cfg.Password != "" {
		args = append(args, "-p", s.cfg.Password)
	}
	if s.cfg.Database != "" {
		args = append(args, "-d", s.cfg.Database)
	}
	return args
}

// RunScript runs the script at path. Relative paths are made absolute first.
func (s *Shell) RunScript(ctx context.Context, path string) (*Output, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve script path %s: %w", path, err)
	}
	return run(ctx, s.cfg.timeout(), s.cfg.cypherShellPath(), s.ScriptArgs(abs), s.cfg.Password)
}

// RunQuery runs a single query.
func (s *Shell) RunQuery(ctx context.Context, query string) (*Output, error) {
	return run(ctx, s.cfg.timeout(), s.cfg.cypherShellPath(), s.QueryArgs(query), s.cfg.Password)
}

// ApplyScripts runs each script in order and stops at the first failure.
func ApplyScripts(ctx context.Context, runner ScriptRunner, paths ...string) error {
	for _, p := range paths {
		if _, err := runner.RunScript(ctx, p); err != nil {
			return fmt.Errorf("failed to apply %s: %w", p, err)
		}
	}
	return nil
}
