// Package postgres extracts the inputs of a materialization run from a
// PostgreSQL schema: the schema description and one CSV export per table.
package postgres

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mvp-joe/graphport/internal/layout"
	"github.com/mvp-joe/graphport/internal/metadata"
)

// DefaultSchema is used when no schema name is configured.
const DefaultSchema = "public"

// Connect opens a connection pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Extractor reads one schema of a database.
type Extractor struct {
	pool   *pgxpool.Pool
	schema string
}

// NewExtractor creates an extractor over schema. An empty schema selects
// DefaultSchema.
func NewExtractor(pool *pgxpool.Pool, schema string) *Extractor {
	if schema == "" {
		schema = DefaultSchema
	}
	return &Extractor{pool: pool, schema: schema}
}

// Tables returns the base tables of the schema ordered by name.
func (e *Extractor) Tables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.pool.Query(ctx, query, e.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return tables, nil
}

// Describe reads the columns, primary key and foreign keys of table.
func (e *Extractor) Describe(ctx context.Context, table string) (TableInfo, error) {
	info := TableInfo{Name: table}

	columns, err := e.columns(ctx, table)
	if err != nil {
		return info, err
	}
	info.Columns = columns

	info.PrimaryKeys, err = e.primaryKeys(ctx, table)
	if err != nil {
		return info, err
	}

	info.ForeignKeys, err = e.foreignKeys(ctx, table)
	if err != nil {
		return info, err
	}
	return info, nil
}

func (e *Extractor) columns(ctx context.Context, table string) ([]Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := e.pool.Query(ctx, query, e.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var col Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	return columns, nil
}

func (e *Extractor) primaryKeys(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := e.pool.Query(ctx, query, e.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list primary key of %s: %w", table, err)
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var pk string
		if err := rows.Scan(&pk); err != nil {
			return nil, fmt.Errorf("failed to scan primary key of %s: %w", table, err)
		}
		pks = append(pks, pk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating primary key of %s: %w", table, err)
	}
	return pks, nil
}

func (e *Extractor) foreignKeys(ctx context.Context, table string) ([]ForeignKey, error) {
	query := `
		SELECT
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position
	`

	rows, err := e.pool.Query(ctx, query, e.schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys of %s: %w", table, err)
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key of %s: %w", table, err)
		}
		fks = append(fks, fk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating foreign keys of %s: %w", table, err)
	}
	return fks, nil
}

// Metadata describes every table of the schema in the schema description
// model.
func (e *Extractor) Metadata(ctx context.Context, tables []string) ([]metadata.TableMetadata, error) {
	infos := make([]TableInfo, 0, len(tables))
	for _, table := range tables {
		info, err := e.Describe(ctx, table)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return Assemble(infos), nil
}

// CopyStatement is the COPY command exporting table as CSV with a header row.
func CopyStatement(schema, table string) string {
	return fmt.Sprintf("COPY %s TO STDOUT WITH (FORMAT csv, HEADER true)", pgx.Identifier{schema, table}.Sanitize())
}

// ExportTable streams table to w as CSV with a header row, in the order the
// server returns rows. It returns the number of rows copied.
func (e *Extractor) ExportTable(ctx context.Context, table string, w io.Writer) (int64, error) {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Conn().PgConn().CopyTo(ctx, w, CopyStatement(e.schema, table))
	if err != nil {
		return 0, fmt.Errorf("failed to export %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// ExportAll writes <dir>/<table>.csv for each table and returns the row
// count per table.
func (e *Extractor) ExportAll(ctx context.Context, dir string, tables []string) (map[string]int64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &layout.IOError{Op: "create directory", Path: dir, Err: err}
	}

	counts := make(map[string]int64, len(tables))
	for _, table := range tables {
		path := filepath.Join(dir, table+".csv")
		n, err := e.exportFile(ctx, table, path)
		if err != nil {
			return counts, err
		}
		counts[table] = n
		log.Printf("Exported %d rows of %s to %s\n", n, table, path)
	}
	return counts, nil
}

func (e *Extractor) exportFile(ctx context.Context, table, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, &layout.IOError{Op: "create", Path: path, Err: err}
	}

	n, err := e.ExportTable(ctx, table, f)
	if err != nil {
		f.Close()
		os.Remove(path)
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, &layout.IOError{Op: "close", Path: path, Err: err}
	}
	return n, nil
}
