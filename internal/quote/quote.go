// Package quote is the injection boundary of the generators.
//
// Identifiers are defended by rejection: anything outside the safe pattern
// fails validation before a generator emits text. Values are defended by
// quoting: string literals are always single-quoted with embedded quotes
// doubled. Every caller-controlled name or value that reaches generated SQL
// passes through this package.
package quote

import (
	"regexp"
	"strings"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// validIdentifier is the identifier-safety predicate.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// bareExpressions are the only strings formatted without quotes.
var bareExpressions = []string{"NOW()", "CURRENT_TIMESTAMP", "UUID()"}

// Identifier quotes name with the dialect's identifier quote, doubling any
// embedded quote character. It does not validate; see SafeIdentifier.
func Identifier(name string, d dialect.Traits) string {
	q := string(d.IdentQuote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// ValidateIdentifier checks name against the identifier-safety predicate and
// the dialect's length limit. field names the IR field for the error.
func ValidateIdentifier(name, field string, d dialect.Traits) error {
	if name == "" {
		return sqlerr.Validationf(field, "identifier is required")
	}
	if !validIdentifier.MatchString(name) {
		return sqlerr.Validationf(field, "invalid identifier %q: must match %s", name, validIdentifier)
	}
	if d.MaxIdentLen > 0 && len(name) > d.MaxIdentLen {
		return sqlerr.Validationf(field, "identifier %q exceeds %d characters for %s", name, d.MaxIdentLen, d.ID)
	}
	return nil
}

// SafeIdentifier validates and quotes a single identifier.
func SafeIdentifier(name, field string, d dialect.Traits) (string, error) {
	if err := ValidateIdentifier(name, field, d); err != nil {
		return "", err
	}
	return Identifier(name, d), nil
}

// Qualified validates and quotes a dotted reference such as "schema.table"
// or "t.col", quoting each segment separately.
func Qualified(name, field string, d dialect.Traits) (string, error) {
	if name == "" {
		return "", sqlerr.Validationf(field, "identifier is required")
	}
	parts := strings.Split(name, ".")
	if len(parts) > 3 {
		return "", sqlerr.Validationf(field, "invalid reference %q: too many segments", name)
	}
	for i, p := range parts {
		q, err := SafeIdentifier(p, field, d)
		if err != nil {
			return "", err
		}
		parts[i] = q
	}
	return strings.Join(parts, "."), nil
}

// IdentifierList validates and quotes names, comma-joined.
func IdentifierList(names []string, field string, d dialect.Traits) (string, error) {
	if len(names) == 0 {
		return "", sqlerr.Validationf(field, "at least one column is required")
	}
	quoted := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if seen[n] {
			return "", sqlerr.Validationf(field, "duplicate column %q", n)
		}
		seen[n] = true

		q, err := SafeIdentifier(n, field, d)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return strings.Join(quoted, ", "), nil
}

// StringLiteral single-quotes value, doubling embedded single quotes. For
// dialects that treat backslash as an escape character backslashes are
// doubled too, so the literal can never terminate early.
func StringLiteral(value string, d dialect.Traits) string {
	if d.BackslashEscapes {
		value = strings.ReplaceAll(value, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// IsBareExpression reports whether s is one of the allowed unquoted SQL
// expressions. Matching is exact and case-insensitive.
func IsBareExpression(s string) bool {
	for _, e := range bareExpressions {
		if strings.EqualFold(s, e) {
			return true
		}
	}
	return false
}

// Scalar formats a literal value:
//   - nil, Null  -> NULL
//   - Bool       -> the dialect's boolean literal
//   - Number     -> plain digits
//   - String     -> quoted, unless it is an allowed bare expression
//   - Raw        -> verbatim
//
// List is only meaningful on the right-hand side of IN and is rejected here.
func Scalar(v ir.Value, d dialect.Traits) (string, error) {
	switch val := v.(type) {
	case nil, ir.Null:
		return "NULL", nil
	case ir.Bool:
		if val {
			return d.True, nil
		}
		return d.False, nil
	case ir.Number:
		return val.String(), nil
	case ir.String:
		if IsBareExpression(string(val)) {
			return string(val), nil
		}
		return StringLiteral(string(val), d), nil
	case ir.Raw:
		if strings.TrimSpace(string(val)) == "" {
			return "", sqlerr.Validationf("value", "raw expression is empty")
		}
		return string(val), nil
	case ir.List:
		return "", sqlerr.Validationf("value", "a list is only valid as the operand of IN")
	default:
		return "", sqlerr.Validationf("value", "unsupported value type %T", v)
	}
}

// KeywordOption validates a value that lands in a keyword position, such as
// a storage engine or charset name. Such values cannot be quoted, so they
// must pass the identifier predicate.
func KeywordOption(value, field string) error {
	if !validIdentifier.MatchString(value) {
		return sqlerr.Validationf(field, "invalid option value %q: must match %s", value, validIdentifier)
	}
	return nil
}
