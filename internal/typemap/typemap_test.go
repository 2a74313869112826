package typemap

// Test Plan for Type Mapping:
// - Map() resolves each type family to its destination type
// - Map() is case-insensitive and trims whitespace
// - Map() is total and deterministic over Supported()
// - Map() returns UnsupportedTypeError for unknown types
// - CypherType() and IsArray() describe every destination type

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_Families(t *testing.T) {
	tests := []struct {
		source   string
		expected DestinationType
	}{
		{"integer", Long},
		{"BIGSERIAL", Long},
		{"numeric", Double},
		{"double precision", Double},
		{"character varying", String},
		{"text", String},
		{"boolean", Boolean},
		{"date", Date},
		{"timestamp", Date},
		{"timestamp with time zone", String},
		{"time without time zone", String},
		{"jsonb", String},
		{"uuid", String},
		{"money", String},
		{"polygon", String},
		{"macaddr8", String},
		{"ARRAY", StringArray},
		{"tsvector", StringArray},
		{"bigint[]", LongArray},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got, err := Map(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMap_CaseInsensitive(t *testing.T) {
	for _, input := range []string{"Integer", "INTEGER", "integer", "  integer  "} {
		got, err := Map(input)
		require.NoError(t, err)
		assert.Equal(t, Long, got)
	}
}

func TestMap_TotalOverSupported(t *testing.T) {
	supported := Supported()
	require.NotEmpty(t, supported)

	for _, source := range supported {
		first, err := Map(source)
		require.NoError(t, err, source)
		second, err := Map(strings.ToLower(source))
		require.NoError(t, err, source)
		assert.Equal(t, first, second, source)
	}
}

func TestMap_Unsupported(t *testing.T) {
	for _, input := range []string{"geography", "USER-DEFINED", "", "int[]"} {
		_, err := Map(input)
		require.Error(t, err)

		var typeErr *UnsupportedTypeError
		require.True(t, errors.As(err, &typeErr))
		assert.Equal(t, strings.ToUpper(strings.TrimSpace(input)), typeErr.TypeName)
	}
}

func TestDestinationType_Describers(t *testing.T) {
	assert.Equal(t, "INTEGER", Long.CypherType())
	assert.Equal(t, "FLOAT", Double.CypherType())
	assert.Equal(t, "LIST<STRING NOT NULL>", StringArray.CypherType())
	assert.Equal(t, "LIST<INTEGER NOT NULL>", LongArray.CypherType())
	assert.True(t, StringArray.IsArray())
	assert.True(t, LongArray.IsArray())
	assert.False(t, String.IsArray())
}
