// Package typemap maps abstract column types onto dialect type syntax.
package typemap

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
)

// Default modifiers applied when the abstract type leaves them unset.
const (
	DefaultPrecision = 10
	DefaultScale     = 2
	DefaultVarchar   = 255
	DefaultChar      = 1
)

// baseTypeName admits words separated by single spaces, e.g. "double precision".
var baseTypeName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*( [A-Za-z_][A-Za-z0-9_]*)*$`)

// SafeBaseType reports whether name may be emitted as a type keyword. Callers
// check it before Map, because the fallback emits the name unquoted.
func SafeBaseType(name string) bool {
	return baseTypeName.MatchString(strings.TrimSpace(name))
}

// Map returns the dialect type for t. It never fails: an unknown base type
// falls back to its upper-cased name so dialect-specific types (GEOMETRY,
// INET, ...) can be spelled directly.
func Map(t ir.AbstractType, d dialect.ID) string {
	base := cases.Lower(language.Und).String(strings.TrimSpace(t.BaseType))

	switch d {
	case dialect.MySQL:
		return mapMySQL(base, t)
	case dialect.Postgres:
		return mapPostgres(base, t)
	case dialect.SQLite:
		return mapSQLite(base, t)
	default:
		return fallback(t)
	}
}

func mapMySQL(base string, t ir.AbstractType) string {
	switch base {
	case "uuid":
		return "CHAR(36)"
	case "json":
		return "JSON"
	case "int", "integer":
		if t.Unsigned {
			return "INT UNSIGNED"
		}
		return "INT"
	case "decimal":
		p, s := precisionScale(t)
		return fmt.Sprintf("DECIMAL(%d,%d)", p, s)
	case "varchar":
		return fmt.Sprintf("VARCHAR(%d)", length(t, DefaultVarchar))
	case "char":
		return fmt.Sprintf("CHAR(%d)", length(t, DefaultChar))
	case "text":
		return "TEXT"
	case "boolean":
		return "TINYINT(1)"
	case "datetime":
		return "DATETIME"
	default:
		return fallback(t)
	}
}

func mapPostgres(base string, t ir.AbstractType) string {
	switch base {
	case "uuid":
		return "UUID"
	case "json":
		return "JSONB"
	case "int", "integer":
		return "INTEGER"
	case "decimal":
		p, s := precisionScale(t)
		return fmt.Sprintf("NUMERIC(%d,%d)", p, s)
	case "varchar":
		return fmt.Sprintf("VARCHAR(%d)", length(t, DefaultVarchar))
	case "char":
		return fmt.Sprintf("CHAR(%d)", length(t, DefaultChar))
	case "text":
		return "TEXT"
	case "boolean":
		return "BOOLEAN"
	case "datetime":
		if t.TimeZone {
			return "TIMESTAMP WITH TIME ZONE"
		}
		return "TIMESTAMP"
	default:
		return fallback(t)
	}
}

func mapSQLite(base string, t ir.AbstractType) string {
	switch base {
	case "uuid", "json", "varchar", "char", "text", "datetime":
		return "TEXT"
	case "int", "integer", "boolean":
		return "INTEGER"
	case "decimal", "float", "double":
		return "REAL"
	default:
		return fallback(t)
	}
}

// fallback upper-cases the base name. Casers are not safe for concurrent use,
// so one is built per call.
func fallback(t ir.AbstractType) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(t.BaseType))
}

func precisionScale(t ir.AbstractType) (int, int) {
	p, s := DefaultPrecision, DefaultScale
	if t.Precision > 0 {
		p = t.Precision
	}
	if t.Scale != nil {
		s = *t.Scale
	}
	return p, s
}

func length(t ir.AbstractType, def int) int {
	if t.Length > 0 {
		return t.Length
	}
	return def
}
