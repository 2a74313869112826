package neo4j

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/graphport/internal/layout"
)

const (
	homeSetting   = "server.directories.neo4j_home"
	importSetting = "server.directories.import"

	// ListDirectoriesQuery returns the directory settings of the server.
	ListDirectoriesQuery = "CALL dbms.listConfig() YIELD name, value WHERE name STARTS WITH 'server.directories' RETURN name, value;"
)

// apocSettings enables the APOC features the generated trigger script and
// file based tooling rely on.
var apocSettings = []string{
	"apoc.trigger.enabled=true",
	"apoc.import.file.enabled=true",
	"apoc.export.file.enabled=true",
}

// ErrHomeNotFound is returned when the server does not report its home.
var ErrHomeNotFound = errors.New("server did not report " + homeSetting)

// Directories are the server directories relevant to an import.
type Directories struct {
	Home   string
	Import string
}

// ParseDirectories reads the plain output of ListDirectoriesQuery: one
// "name", "value" pair per line.
func ParseDirectories(output string) (Directories, error) {
	var dirs Directories

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		name, value, ok := strings.Cut(scanner.Text(), ",")
		if !ok {
			continue
		}
		name = unquote(name)
		value = unquote(value)

		switch name {
		case homeSetting:
			dirs.Home = value
		case importSetting:
			dirs.Import = value
		}
	}
	if err := scanner.Err(); err != nil {
		return dirs, err
	}
	if dirs.Home == "" {
		return dirs, ErrHomeNotFound
	}
	return dirs, nil
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// APOCConfigPath is the apoc.conf file of an installation.
func APOCConfigPath(home string) string {
	return filepath.Join(home, "conf", "apoc.conf")
}

// WriteAPOCConfig replaces the apoc.conf of the installation at home and
// returns its path.
func WriteAPOCConfig(home string) (string, error) {
	path := APOCConfigPath(home)
	if err := layout.WriteFile(path, strings.Join(apocSettings, "\n")+"\n"); err != nil {
		return "", err
	}
	return path, nil
}

// Configure asks the server for its directories and writes apoc.conf into
// its home. The server must be restarted to pick up the new settings.
func Configure(ctx context.Context, q QueryRunner) (Directories, string, error) {
	out, err := q.RunQuery(ctx, ListDirectoriesQuery)
	if err != nil {
		return Directories{}, "", fmt.Errorf("failed to list server directories: %w", err)
	}

	dirs, err := ParseDirectories(out.Stdout)
	if err != nil {
		return dirs, "", err
	}

	path, err := WriteAPOCConfig(dirs.Home)
	if err != nil {
		return dirs, "", err
	}
	return dirs, path, nil
}
