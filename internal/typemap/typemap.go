// Package typemap converts source column types into the property types the
// bulk loader understands.
package typemap

import (
	"fmt"
	"sort"
	"strings"
)

// DestinationType is a bulk-loader property type as it appears in node file
// headers (e.g. "name:STRING").
type DestinationType string

const (
	Long        DestinationType = "LONG"
	Double      DestinationType = "DOUBLE"
	String      DestinationType = "STRING"
	Boolean     DestinationType = "BOOLEAN"
	Date        DestinationType = "DATE"
	StringArray DestinationType = "STRING[]"
	LongArray   DestinationType = "LONG[]"
)

// UnsupportedTypeError is returned for source types that have no mapping.
type UnsupportedTypeError struct {
	TypeName string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported source type '%s': no destination property type", e.TypeName)
}

// mappings is keyed by upper-cased source type.
// Zoned date/time variants map to STRING: the loader has no zoned DATE type.
var mappings = map[string]DestinationType{
	"SMALLINT":    Long,
	"INT":         Long,
	"INTEGER":     Long,
	"BIGINT":      Long,
	"SMALLSERIAL": Long,
	"SERIAL":      Long,
	"BIGSERIAL":   Long,

	"REAL":             Double,
	"DOUBLE":           Double,
	"DOUBLE PRECISION": Double,
	"PRECISION":        Double,
	"FLOAT8":           Double,
	"DECIMAL":          Double,
	"NUMERIC":          Double,

	"VARCHAR":           String,
	"CHARACTER VARYING": String,
	"CHAR":              String,
	"CHARACTER":         String,
	"BPCHAR":            String,
	"TEXT":              String,

	"BOOLEAN": Boolean,

	"DATE":      Date,
	"TIME":      Date,
	"TIMESTAMP": Date,

	"TIMESTAMP WITHOUT TIME ZONE": String,
	"TIMESTAMP WITH TIME ZONE":    String,
	"TIME WITHOUT TIME ZONE":      String,
	"TIME WITH TIME ZONE":         String,

	"JSON":     String,
	"JSONB":    String,
	"XML":      String,
	"INTERVAL": String,
	"UUID":     String,
	"MONEY":    String,
	"BYTEA":    String,
	"ENUM":     String,

	"BIT":         String,
	"BIT VARYING": String,

	"POINT":   String,
	"LINE":    String,
	"LSEG":    String,
	"PATH":    String,
	"POLYGON": String,
	"CIRCLE":  String,

	"CIDR":     String,
	"INET":     String,
	"MACADDR":  String,
	"MACADDR8": String,

	"ARRAY":    StringArray,
	"TSVECTOR": StringArray,
	"TSQUERY":  StringArray,

	"BIGINT[]": LongArray,
}

// Map returns the destination type of a source type. Matching is
// case-insensitive and ignores surrounding whitespace.
func Map(sourceType string) (DestinationType, error) {
	key := strings.ToUpper(strings.TrimSpace(sourceType))
	if t, ok := mappings[key]; ok {
		return t, nil
	}
	return "", &UnsupportedTypeError{TypeName: key}
}

// Supported returns every accepted source type, sorted.
func Supported() []string {
	types := make([]string, 0, len(mappings))
	for k := range mappings {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// IsArray reports whether values of this type are array-delimited.
func (t DestinationType) IsArray() bool {
	return strings.HasSuffix(string(t), "[]")
}

// CypherType returns the Cypher type-predicate name matching values loaded
// with this type, e.g. `n.age IS :: INTEGER`.
func (t DestinationType) CypherType() string {
	switch t {
	case Long:
		return "INTEGER"
	case Double:
		return "FLOAT"
	case String:
		return "STRING"
	case Boolean:
		return "BOOLEAN"
	case Date:
		return "DATE"
	case StringArray:
		return "LIST<STRING NOT NULL>"
	case LongArray:
		return "LIST<INTEGER NOT NULL>"
	default:
		return "ANY"
	}
}
