// Package neo4j drives the destination database tools: cypher-shell for
// scripts and queries, neo4j-admin for bulk imports.
package neo4j

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds one tool invocation when Config.Timeout is zero.
	DefaultTimeout = 30 * time.Minute

	defaultCypherShell = "cypher-shell"
	defaultAdmin       = "neo4j-admin"
)

// Config locates the database and its tools.
type Config struct {
	URI      string
	Username string
	Password string
	Database string

	// Home is the installation directory holding bin/. When empty the tools
	// are looked up on PATH.
	Home string
	// CypherShell overrides the cypher-shell binary.
	CypherShell string
	// Admin overrides the neo4j-admin binary.
	Admin string

	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) cypherShellPath() string {
	if c.CypherShell != "" {
		return c.CypherShell
	}
	return c.tool(defaultCypherShell)
}

func (c Config) adminPath() string {
	if c.Admin != "" {
		return c.Admin
	}
	return c.tool(defaultAdmin)
}

func (c Config) tool(name string) string {
	if c.Home == "" {
		return name
	}
	if runtime.GOOS == "windows" {
		name += ".bat"
	}
	return filepath.Join(c.Home, "bin", name)
}

// Output is what a tool printed.
type Output struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// CommandError reports a failed tool invocation. Args never contain the
// password.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s %s failed", filepath.Base(e.Command), strings.Join(e.Args, " "))
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" with exit code %d", e.ExitCode)
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		return msg + ": " + stderr
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// run executes a tool with the configured timeout and captures its output.
func run(ctx context.Context, timeout time.Duration, binary string, args []string, secret string) (*Output, error) {
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startTime := time.Now()
	err := cmd.Run()
	out := &Output{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(startTime)}

	if err != nil {
		cmdErr := &CommandError{
			Command: binary,
			Args:    redact(args, secret),
			Stderr:  out.Stderr,
			Err:     err,
		}
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			cmdErr.Err = fmt.Errorf("timed out after %s: %w", timeout, context.DeadlineExceeded)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return out, cmdErr
	}

	return out, nil
}

func redact(args []string, secret string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if secret != "" && a == secret {
			a = "****"
		}
		out[i] = a
	}
	return out
}
