package materialize

import (
	"errors"
	"fmt"
)

// Stage is a state of a materialization run. Stages advance strictly in
// declaration order; any failure moves the run to StageFailed.
type Stage string

const (
	StageCompilingSchema            Stage = "compiling_schema"
	StageMaterializingNodes         Stage = "materializing_nodes"
	StageMaterializingRelationships Stage = "materializing_relationships"
	StageDone                       Stage = "done"
	StageFailed                     Stage = "failed"
)

var (
	// ErrMissingColumn means a raw table lacks a column the node header needs.
	ErrMissingColumn = errors.New("raw table is missing a required column")

	// ErrLabelNotFound means a relationship refers to a label the schema does
	// not define.
	ErrLabelNotFound = errors.New("label is not part of the compiled schema")

	// ErrColumnNotFound means a join column is absent from a raw table.
	ErrColumnNotFound = errors.New("join column not found in raw table")

	// ErrUnknownJoinStrategy is returned for join strategies other than hash
	// and sqlite.
	ErrUnknownJoinStrategy = errors.New("unknown join strategy")
)

// MaterializationError wraps the failure of one stage. Subject names the
// label, relationship type or file being processed.
type MaterializationError struct {
	Stage   Stage
	Subject string
	Err     error
}

func (e *MaterializationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Subject, e.Err)
}

func (e *MaterializationError) Unwrap() error { return e.Err }

// JoinResolutionError reports a relationship whose join cannot be set up: a
// missing label, raw file or join column.
type JoinResolutionError struct {
	Relationship string
	Label        string
	Column       string
	Err          error
}

func (e *JoinResolutionError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("cannot resolve %s: %s.%s: %v", e.Relationship, e.Label, e.Column, e.Err)
	}
	return fmt.Sprintf("cannot resolve %s: %s: %v", e.Relationship, e.Label, e.Err)
}

func (e *JoinResolutionError) Unwrap() error { return e.Err }
