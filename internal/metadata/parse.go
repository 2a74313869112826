package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mvp-joe/graphport/internal/layout"
)

// ParseError reports a missing or malformed field in the schema description.
// It is always fatal: the whole schema is rejected.
type ParseError struct {
	Table  string // table name, or "#<index>" when the name itself is unusable
	Column string
	Field  string
	Msg    string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("schema parse error")
	if e.Table != "" {
		fmt.Fprintf(&b, " in table %s", e.Table)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %s", e.Column)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field '%s'", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

// Load reads and parses a schema description file.
func Load(path string) ([]TableMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &layout.IOError{Op: "read schema file", Path: path, Err: err}
	}
	tables, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}

// Parse decodes a schema description. Any missing table_name, column_name,
// data_type, referenced_table or referenced_column aborts parsing.
func Parse(data []byte) ([]TableMetadata, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, &ParseError{Msg: fmt.Sprintf("expected a JSON array of tables but found %s", preview(raw))}
	}

	tables := make([]TableMetadata, 0, len(items))
	for i, item := range items {
		table, err := parseTable(i, item)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func parseTable(index int, data json.RawMessage) (TableMetadata, error) {
	pos := fmt.Sprintf("#%d", index)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return TableMetadata{}, &ParseError{Table: pos, Msg: fmt.Sprintf("expected an object but found %s", preview(data))}
	}

	name, err := requireString(obj, "table_name")
	if err != nil {
		return TableMetadata{}, &ParseError{Table: pos, Field: "table_name", Msg: err.Error()}
	}

	rawColumns, ok := obj["columns"]
	if !ok || isNull(rawColumns) {
		return TableMetadata{}, &ParseError{Table: name, Field: "columns", Msg: "field is missing"}
	}
	var columns []json.RawMessage
	if err := json.Unmarshal(rawColumns, &columns); err != nil {
		return TableMetadata{}, &ParseError{Table: name, Field: "columns", Msg: fmt.Sprintf("expected an array but found %s", preview(rawColumns))}
	}

	table := TableMetadata{Name: name, Columns: make([]ColumnMetadata, 0, len(columns))}
	for i, c := range columns {
		col, err := parseColumn(name, i, c)
		if err != nil {
			return TableMetadata{}, err
		}
		table.Columns = append(table.Columns, col)
	}
	return table, nil
}

func parseColumn(table string, index int, data json.RawMessage) (ColumnMetadata, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return ColumnMetadata{}, &ParseError{Table: table, Column: fmt.Sprintf("#%d", index), Msg: fmt.Sprintf("expected an object but found %s", preview(data))}
	}

	name, err := requireString(obj, "column_name")
	if err != nil {
		return ColumnMetadata{}, &ParseError{Table: table, Column: fmt.Sprintf("#%d", index), Field: "column_name", Msg: err.Error()}
	}

	fail := func(field string, err error) (ColumnMetadata, error) {
		return ColumnMetadata{}, &ParseError{Table: table, Column: name, Field: field, Msg: err.Error()}
	}

	fk, hasFK := obj["foreign_key"]
	if hasFK && !isNull(fk) {
		var items []json.RawMessage
		if err := json.Unmarshal(fk, &items); err != nil {
			return fail("foreign_key", fmt.Errorf("expected null or an array but found %s", preview(fk)))
		}
		if len(items) == 0 {
			return fail("foreign_key", fmt.Errorf("array must not be empty"))
		}
		refs := make([]ForeignKeyRef, 0, len(items))
		for _, item := range items {
			var ref map[string]json.RawMessage
			if err := json.Unmarshal(item, &ref); err != nil || ref == nil {
				return fail("foreign_key", fmt.Errorf("expected an object but found %s", preview(item)))
			}
			refTable, err := requireString(ref, "referenced_table")
			if err != nil {
				return fail("referenced_table", err)
			}
			refColumn, err := requireString(ref, "referenced_column")
			if err != nil {
				return fail("referenced_column", err)
			}
			refs = append(refs, ForeignKeyRef{ReferencedTable: refTable, ReferencedColumn: refColumn})
		}
		// data_type is informational for foreign keys
		dataType, _ := optionalString(obj, "data_type")
		return NewForeignKeyColumn(name, dataType, refs...), nil
	}

	dataType, err := requireString(obj, "data_type")
	if err != nil {
		return fail("data_type", err)
	}

	primaryKey := false
	for _, field := range []string{"primary_key", "is_primary_key"} {
		v, ok := obj[field]
		if !ok {
			continue
		}
		b, err := parseFlag(v, false)
		if err != nil {
			return fail(field, err)
		}
		primaryKey = primaryKey || b
	}

	nullable := true
	if v, ok := obj["is_nullable"]; ok {
		if nullable, err = parseFlag(v, true); err != nil {
			return fail("is_nullable", err)
		}
	}

	return NewPlainColumn(name, dataType, primaryKey, nullable), nil
}

// requireString returns a non-empty string field.
func requireString(obj map[string]json.RawMessage, field string) (string, error) {
	v, ok := obj[field]
	if !ok || isNull(v) {
		return "", fmt.Errorf("field is missing")
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("expected a string but found %s", preview(v))
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("must not be empty")
	}
	return s, nil
}

func optionalString(obj map[string]json.RawMessage, field string) (string, bool) {
	v, ok := obj[field]
	if !ok || isNull(v) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

// parseFlag accepts JSON booleans and the information_schema spellings
// "YES"/"NO". null yields def.
func parseFlag(v json.RawMessage, def bool) (bool, error) {
	if isNull(v) {
		return def, nil
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return false, fmt.Errorf("expected a boolean or YES/NO but found %s", preview(v))
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "TRUE", "Y", "T":
		return true, nil
	case "NO", "FALSE", "N", "F":
		return false, nil
	default:
		return false, fmt.Errorf("expected a boolean or YES/NO but found %q", s)
	}
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func preview(v json.RawMessage) string {
	s := strings.TrimSpace(string(v))
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}
