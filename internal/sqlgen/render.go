package sqlgen

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/querysql"
	"github.com/roach88/sqlir/internal/quote"
	"github.com/roach88/sqlir/internal/sqlerr"
	"github.com/roach88/sqlir/internal/typemap"
)

// renderer bundles the quoting, type mapping and condition helpers for one
// dialect. It holds no mutable state.
type renderer struct {
	d dialect.Traits
	q *querysql.Compiler
}

func newRenderer(d dialect.Traits) *renderer {
	return &renderer{d: d, q: querysql.NewCompiler(d)}
}

func (r *renderer) ident(name, field string) (string, error) {
	return quote.SafeIdentifier(name, field, r.d)
}

func (r *renderer) qualified(name, field string) (string, error) {
	return quote.Qualified(name, field, r.d)
}

func (r *renderer) identList(names []string, field string) (string, error) {
	return quote.IdentifierList(names, field, r.d)
}

func (r *renderer) value(v ir.Value) (string, error) {
	return quote.Scalar(v, r.d)
}

func (r *renderer) str(s string) string {
	return quote.StringLiteral(s, r.d)
}

// keyword validates a value that is emitted unquoted in a keyword position.
func (r *renderer) keyword(value, field string) (string, error) {
	if err := quote.KeywordOption(value, field); err != nil {
		return "", err
	}
	return value, nil
}

// typ validates and maps an abstract type.
func (r *renderer) typ(t ir.AbstractType, field string) (string, error) {
	if strings.TrimSpace(t.BaseType) == "" {
		return "", sqlerr.Validationf(field, "type is required")
	}
	if !typemap.SafeBaseType(t.BaseType) {
		return "", sqlerr.Validationf(field, "invalid type name %q", t.BaseType)
	}
	if t.Length < 0 || t.Precision < 0 || (t.Scale != nil && *t.Scale < 0) {
		return "", sqlerr.Validationf(field, "type modifiers must not be negative")
	}
	if t.Scale != nil && t.Precision > 0 && *t.Scale > t.Precision {
		return "", sqlerr.Validationf(field, "scale %d exceeds precision %d", *t.Scale, t.Precision)
	}
	return typemap.Map(t, r.d.ID), nil
}

func (r *renderer) cond(c ir.Condition, path string) (string, error) {
	return r.q.ConditionAt(c, path)
}

// unsupported builds the error for an operation or option this dialect does
// not implement.
func (r *renderer) unsupported(stmt ir.Statement, detail string) error {
	return &sqlerr.UnsupportedOperationError{
		Dialect:   string(r.d.ID),
		Category:  string(stmt.Category()),
		Operation: string(stmt.Operation()),
		Detail:    detail,
	}
}

// required reports a missing required string field.
func required(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return sqlerr.Validationf(field, "is required")
	}
	return nil
}

// ifNotExists returns the clause when flag is set.
func ifNotExists(flag bool) string {
	if flag {
		return "IF NOT EXISTS "
	}
	return ""
}

func ifExists(flag bool) string {
	if flag {
		return "IF EXISTS "
	}
	return ""
}

// body trims a trusted routine body and rejects an empty one.
func body(s, field string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", sqlerr.Validationf(field, "body is required")
	}
	return trimmed, nil
}

// terminate appends a semicolon unless s already ends with one.
func terminate(s string) string {
	if strings.HasSuffix(s, ";") {
		return s
	}
	return s + ";"
}

func indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
