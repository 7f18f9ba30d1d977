package sqlgen

import (
	"strings"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// DML and SELECT are identical across dialects apart from quoting and the
// RETURNING trait, so every generator table shares these.

func genInsert(r *renderer, s *ir.Insert) (string, error) {
	table, err := r.qualified(s.Table, "table")
	if err != nil {
		return "", err
	}
	returning, err := r.q.Returning(s.Returning, s.Category(), s.Operation())
	if err != nil {
		return "", err
	}

	if len(s.Values) == 0 {
		if r.d.ID == dialect.MySQL {
			return "INSERT INTO " + table + " () VALUES ()" + returning + ";", nil
		}
		return "INSERT INTO " + table + " DEFAULT VALUES" + returning + ";", nil
	}

	// Both lists come from the same ordered slice, so position i of one
	// always matches position i of the other.
	cols, err := r.identList(s.Values.Columns(), "values")
	if err != nil {
		return "", err
	}
	vals := make([]string, len(s.Values))
	for i, a := range s.Values {
		v, err := r.value(a.Value)
		if err != nil {
			return "", prefixField(err, "values."+a.Column)
		}
		vals[i] = v
	}

	return "INSERT INTO " + table + " (" + cols + ") VALUES (" + strings.Join(vals, ", ") + ")" + returning + ";", nil
}

func genUpdate(r *renderer, s *ir.Update) (string, error) {
	table, err := r.qualified(s.Table, "table")
	if err != nil {
		return "", err
	}
	if len(s.Set) == 0 {
		return "", sqlerr.Validationf("set", "at least one assignment is required")
	}
	// Validates names and rejects duplicates.
	if _, err := r.identList(s.Set.Columns(), "set"); err != nil {
		return "", err
	}

	sets := make([]string, len(s.Set))
	for i, a := range s.Set {
		col, err := r.ident(a.Column, "set")
		if err != nil {
			return "", err
		}
		v, err := r.value(a.Value)
		if err != nil {
			return "", prefixField(err, "set."+a.Column)
		}
		sets[i] = col + " = " + v
	}

	where, err := r.where(s.Where)
	if err != nil {
		return "", err
	}
	returning, err := r.q.Returning(s.Returning, s.Category(), s.Operation())
	if err != nil {
		return "", err
	}

	return "UPDATE " + table + " SET " + strings.Join(sets, ", ") + where + returning + ";", nil
}

func genDelete(r *renderer, s *ir.Delete) (string, error) {
	table, err := r.qualified(s.Table, "table")
	if err != nil {
		return "", err
	}
	where, err := r.where(s.Where)
	if err != nil {
		return "", err
	}
	returning, err := r.q.Returning(s.Returning, s.Category(), s.Operation())
	if err != nil {
		return "", err
	}
	return "DELETE FROM " + table + where + returning + ";", nil
}

func genSelect(r *renderer, s *ir.Select) (string, error) {
	sql, err := r.q.Select(s)
	if err != nil {
		return "", err
	}
	return sql + ";", nil
}

// where renders " WHERE cond", or "" when c is nil.
func (r *renderer) where(c ir.Condition) (string, error) {
	if c == nil {
		return "", nil
	}
	sql, err := r.cond(c, "where")
	if err != nil {
		return "", err
	}
	return " WHERE " + sql, nil
}

// prefixField points a value validation error at the column it came from.
func prefixField(err error, field string) error {
	if ve, ok := err.(*sqlerr.ValidationError); ok {
		return &sqlerr.ValidationError{Field: field, Message: ve.Message}
	}
	return err
}
