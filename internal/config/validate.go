package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidJoinStrategy indicates an unsupported join strategy
	ErrInvalidJoinStrategy = errors.New("invalid join strategy")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrEmptyPath indicates a required path is missing
	ErrEmptyPath = errors.New("empty path")

	// ErrInvalidDelimiter indicates a raw file delimiter that is not a single usable character
	ErrInvalidDelimiter = errors.New("invalid delimiter")

	// ErrInvalidCacheSize indicates a negative cache budget
	ErrInvalidCacheSize = errors.New("invalid cache size")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateTables(&cfg.Tables); err != nil {
		errs = append(errs, err)
	}

	if err := validateMaterialize(&cfg.Materialize); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	// manifest_file may be empty to disable the manifest
	required := []struct {
		key   string
		value string
	}{
		{"schema_file", cfg.SchemaFile},
		{"tables_dir", cfg.TablesDir},
		{"import_dir", cfg.ImportDir},
		{"scripts_dir", cfg.ScriptsDir},
		{"fk_file", cfg.FKFile},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%w: %s is required", ErrEmptyPath, r.key))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateTables(cfg *TablesConfig) error {
	if utf8.RuneCountInString(cfg.Delimiter) != 1 {
		return fmt.Errorf("%w: delimiter must be a single character, got %q", ErrInvalidDelimiter, cfg.Delimiter)
	}

	switch r, _ := utf8.DecodeRuneInString(cfg.Delimiter); r {
	case '"', '\r', '\n', utf8.RuneError:
		return fmt.Errorf("%w: %q cannot separate fields", ErrInvalidDelimiter, cfg.Delimiter)
	}

	return nil
}

func validateMaterialize(cfg *MaterializeConfig) error {
	var errs []error

	strategy := strings.ToLower(cfg.JoinStrategy)
	if strategy != "hash" && strategy != "sqlite" {
		errs = append(errs, fmt.Errorf("%w: must be 'hash' or 'sqlite', got '%s'", ErrInvalidJoinStrategy, cfg.JoinStrategy))
	}

	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	// Zero disables the cache
	if cfg.CacheRows < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_rows cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheRows))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// Every joined error stays reachable with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &validationError{msg: "validation failed:\n  - " + strings.Join(msgs, "\n  - "), errs: errs}
}

type validationError struct {
	msg  string
	errs []error
}

func (e *validationError) Error() string   { return e.msg }
func (e *validationError) Unwrap() []error { return e.errs }
