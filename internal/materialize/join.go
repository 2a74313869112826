package materialize

import (
	"context"
	"fmt"

	"github.com/mvp-joe/graphport/internal/tables"
)

// Join strategy names accepted by NewJoiner.
const (
	JoinHash   = "hash"
	JoinSQLite = "sqlite"
)

// EmitFunc receives one matched pair of row positions.
type EmitFunc func(sourceRow, targetRow int) error

// Joiner performs the equality inner join behind a relationship type.
// Matches are emitted ordered by source row, then target row. Empty keys
// never match.
type Joiner interface {
	Join(ctx context.Context, source *tables.Table, sourceCol int, target *tables.Table, targetCol int, emit EmitFunc) error
}

// NewJoiner returns the joiner for a strategy name. An empty name selects
// the hash join.
func NewJoiner(strategy string) (Joiner, error) {
	switch strategy {
	case "", JoinHash:
		return HashJoiner{}, nil
	case JoinSQLite:
		return SQLiteJoiner{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJoinStrategy, strategy)
	}
}

// HashJoiner builds an in-memory index of the target keys.
type HashJoiner struct{}

const cancelCheckInterval = 4096

func (HashJoiner) Join(ctx context.Context, source *tables.Table, sourceCol int, target *tables.Table, targetCol int, emit EmitFunc) error {
	index := make(map[string][]int, target.Len())
	for i, row := range target.Rows {
		key := row[targetCol]
		if key == "" {
			continue
		}
		index[key] = append(index[key], i)
	}

	for i, row := range source.Rows {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		key := row[sourceCol]
		if key == "" {
			continue
		}
		for _, j := range index[key] {
			if err := emit(i, j); err != nil {
				return err
			}
		}
	}
	return nil
}
