package schema

import (
	"fmt"
	"regexp"
	"strings"
)

var plainIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// quoteIdent backtick-quotes identifiers that are not plain Cypher names.
func quoteIdent(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Statement renders the constraint as a Cypher statement.
func (c Constraint) Statement() string {
	var requirement string
	switch c.Kind {
	case ConstraintUnique:
		requirement = "IS UNIQUE"
	case ConstraintNotNull:
		requirement = "IS NOT NULL"
	}
	return fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (n:%s) REQUIRE n.%s %s;",
		quoteIdent(c.Name()), quoteIdent(c.Label), quoteIdent(c.Property), requirement)
}

// Statement renders the rule as an APOC trigger that rejects any write
// leaving a non-null property of the wrong type.
func (v ValidationRule) Statement() string {
	prop := "m." + quoteIdent(v.Property)
	message := fmt.Sprintf("ERROR : The type of the field %s needs to be a %s.", v.Property, v.Type)
	query := fmt.Sprintf("MATCH (m:%s) WHERE %s IS NOT NULL AND NOT %s IS :: %s CALL apoc.util.validate(true, '%s', []) RETURN m",
		quoteIdent(v.Label), prop, prop, v.Type.CypherType(), escapeSingle(message))
	return fmt.Sprintf("CALL apoc.trigger.add('%s', \"%s\", {phase: 'before'});",
		escapeSingle(v.Name()), escapeDouble(query))
}

func escapeSingle(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `'`, `\'`)
}

// escapeDouble escapes s for a double-quoted literal. Backslashes are doubled
// so that single-quoted literals nested in s survive the outer unescaping.
func escapeDouble(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`)
}

// ConstraintScript renders every constraint, one statement per line, in
// label then column order.
func (s *CompiledSchema) ConstraintScript() string {
	var b strings.Builder
	for _, l := range s.Labels {
		for _, c := range l.Constraints {
			b.WriteString(c.Statement())
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// ValidationScript renders every type validation trigger.
func (s *CompiledSchema) ValidationScript() string {
	var b strings.Builder
	for _, l := range s.Labels {
		for _, v := range l.Validations {
			b.WriteString(v.Statement())
			b.WriteByte('\n')
		}
	}
	return b.String()
}
