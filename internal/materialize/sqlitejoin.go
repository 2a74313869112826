package materialize

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mvp-joe/graphport/internal/tables"
)

// insertBatchRows keeps each insert well under SQLite's bound-variable limit.
const insertBatchRows = 400

const joinSchema = `
CREATE TABLE src (ord INTEGER PRIMARY KEY, k TEXT);
CREATE TABLE tgt (ord INTEGER PRIMARY KEY, k TEXT);
CREATE INDEX idx_tgt_k ON tgt(k);
`

// SQLiteJoiner loads both key columns into a private in-memory SQLite
// database and lets SQLite run the join. Empty keys are stored as NULL so
// they never compare equal.
type SQLiteJoiner struct{}

func (SQLiteJoiner) Join(ctx context.Context, source *tables.Table, sourceCol int, target *tables.Table, targetCol int, emit EmitFunc) error {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open join database: %w", err)
	}
	defer db.Close()

	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, joinSchema); err != nil {
		return fmt.Errorf("failed to create join tables: %w", err)
	}

	if err := loadKeys(ctx, db, "src", source, sourceCol); err != nil {
		return err
	}
	if err := loadKeys(ctx, db, "tgt", target, targetCol); err != nil {
		return err
	}

	rows, err := sq.Select("s.ord", "t.ord").
		From("src s").
		Join("tgt t ON s.k = t.k").
		OrderBy("s.ord", "t.ord").
		RunWith(db).
		QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to run join: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s, t int
		if err := rows.Scan(&s, &t); err != nil {
			return fmt.Errorf("failed to scan join row: %w", err)
		}
		if err := emit(s, t); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating join rows: %w", err)
	}
	return nil
}

func loadKeys(ctx context.Context, db *sql.DB, table string, tbl *tables.Table, col int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < tbl.Len(); start += insertBatchRows {
		end := min(start+insertBatchRows, tbl.Len())

		insert := sq.Insert(table).Columns("ord", "k")
		for i := start; i < end; i++ {
			insert = insert.Values(i, nullableKey(tbl.Rows[i][col]))
		}
		if _, err := insert.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to load %s keys of %s: %w", table, tbl.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullableKey(k string) interface{} {
	if k == "" {
		return nil
	}
	return k
}
