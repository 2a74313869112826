// Package schema compiles relational table metadata into a graph schema:
// one label per table, typed node properties, integrity constraints,
// property type validation rules and the relationship types that resolve
// foreign keys.
package schema

import (
	"strings"

	"github.com/mvp-joe/graphport/internal/typemap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// IDField is the node file header field holding the surrogate id.
	IDField = ":ID"
	// LabelField is the trailing node file header field holding the label.
	LabelField = ":LABEL"

	StartIDField = ":START_ID"
	EndIDField   = ":END_ID"
	TypeField    = ":TYPE"

	relationshipInfix = "_REF_"
)

// RelationshipHeader is the header of every relationship file.
var RelationshipHeader = []string{StartIDField, EndIDField, TypeField}

var upper = cases.Upper(language.Und)

// Label returns the label derived from a table name.
func Label(table string) string {
	return upper.String(strings.TrimSpace(table))
}

// RelationshipType returns the relationship type of a foreign-key column,
// e.g. USER + dept_id -> USER_REF_DEPT_ID.
func RelationshipType(label, column string) string {
	return label + relationshipInfix + upper.String(column)
}

// Property is one typed node property.
type Property struct {
	Name string
	Type typemap.DestinationType
}

// HeaderField renders the property as a node file header field.
func (p Property) HeaderField() string {
	return p.Name + ":" + string(p.Type)
}

// ConstraintKind distinguishes constraint statements.
type ConstraintKind string

const (
	ConstraintUnique  ConstraintKind = "unique"
	ConstraintNotNull ConstraintKind = "nonull"
)

// Constraint is a uniqueness or existence constraint on a label property.
type Constraint struct {
	Kind     ConstraintKind
	Label    string
	Property string
}

// Name is the constraint name used in the generated statement.
func (c Constraint) Name() string {
	return string(c.Kind) + "_" + statementSuffix(c.Label, c.Property)
}

// ValidationRule asserts that non-null values of a property have Type.
type ValidationRule struct {
	Label    string
	Property string
	Type     typemap.DestinationType
}

// Name is the trigger name used in the generated statement.
func (v ValidationRule) Name() string {
	return "type_" + statementSuffix(v.Label, v.Property)
}

func statementSuffix(label, property string) string {
	return strings.ToLower(label) + "_" + property
}

// RelationshipDescriptor describes how one foreign key becomes edges:
// rows of SourceLabel whose SourceColumn equals TargetColumn of rows of
// TargetLabel are linked with an edge of Type.
type RelationshipDescriptor struct {
	Type         string
	SourceLabel  string
	SourceColumn string
	TargetLabel  string
	TargetColumn string
}

// LabelSchema is the compiled form of one table.
type LabelSchema struct {
	Label         string
	Table         string
	Properties    []Property
	Constraints   []Constraint
	Validations   []ValidationRule
	Relationships []RelationshipDescriptor
}

// Header returns the node file header fields:
// :ID, one name:TYPE per property in column order, :LABEL.
func (l *LabelSchema) Header() []string {
	fields := make([]string, 0, len(l.Properties)+2)
	fields = append(fields, IDField)
	for _, p := range l.Properties {
		fields = append(fields, p.HeaderField())
	}
	return append(fields, LabelField)
}

// PropertyNames returns property names in header order.
func (l *LabelSchema) PropertyNames() []string {
	names := make([]string, len(l.Properties))
	for i, p := range l.Properties {
		names[i] = p.Name
	}
	return names
}

// CompiledSchema is the output of Compile. Labels keep input table order.
type CompiledSchema struct {
	Labels        []*LabelSchema
	Relationships []RelationshipDescriptor

	byLabel map[string]*LabelSchema
}

// Label looks up a compiled label.
func (s *CompiledSchema) Label(name string) (*LabelSchema, bool) {
	l, ok := s.byLabel[name]
	return l, ok
}

// LabelNames returns labels in compilation order.
func (s *CompiledSchema) LabelNames() []string {
	names := make([]string, len(s.Labels))
	for i, l := range s.Labels {
		names[i] = l.Label
	}
	return names
}

// RelationshipTypes returns relationship types in compilation order.
func (s *CompiledSchema) RelationshipTypes() []string {
	types := make([]string, len(s.Relationships))
	for i, r := range s.Relationships {
		types[i] = r.Type
	}
	return types
}
