// Package sqlgen turns IR statements into SQL text for a target dialect.
//
// Generate is the entry point. It is a pure function: no I/O, no shared
// mutable state, and the same (statement, dialect) pair always yields the
// same bytes. Either SQL text or an error is returned, never both.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// Generate renders stmt for dialect d.
//
// Resolution order:
//  1. a nil statement is a ValidationError
//  2. a statement with RawSQL set returns that text verbatim; this is the
//     one path that skips every quoting and validation rule
//  3. an unknown dialect is an UnsupportedDialectError
//  4. a dialect without a generator for the operation is an
//     UnsupportedOperationError
func Generate(stmt ir.Statement, d dialect.ID) (string, error) {
	if stmt == nil || isNilStatement(stmt) {
		return "", sqlerr.Validationf("statement", "statement is required")
	}
	if raw := stmt.RawSQL(); raw != "" {
		return raw, nil
	}

	e, ok := catalog[d]
	if !ok {
		return "", &sqlerr.UnsupportedDialectError{Dialect: string(d)}
	}

	sql, err := dispatch(e, stmt)
	if err != nil {
		return "", err
	}
	return sql, nil
}

// dispatch routes stmt to its generator. The switch is exhaustive over the
// sealed statement set.
func dispatch(e entry, stmt ir.Statement) (string, error) {
	r, g := e.r, e.g

	switch s := stmt.(type) {
	case *ir.CreateTable:
		return call(r, g.createTable, s)
	case *ir.CreateIndex:
		return call(r, g.createIndex, s)
	case *ir.CreateView:
		return call(r, g.createView, s)
	case *ir.CreateDatabase:
		return call(r, g.createDatabase, s)
	case *ir.CreateSchema:
		return call(r, g.createSchema, s)
	case *ir.CreateSequence:
		return call(r, g.createSequence, s)
	case *ir.CreateTrigger:
		return call(r, g.createTrigger, s)
	case *ir.CreateProcedure:
		return call(r, g.createProcedure, s)
	case *ir.CreateFunction:
		return call(r, g.createFunction, s)
	case *ir.CreateRole:
		return call(r, g.createRole, s)
	case *ir.CreateUser:
		return call(r, g.createUser, s)
	case *ir.CreateEvent:
		return call(r, g.createEvent, s)
	case *ir.AlterTable:
		return call(r, g.alterTable, s)
	case *ir.Drop:
		return call(r, g.drop, s)
	case *ir.Truncate:
		return call(r, g.truncate, s)
	case *ir.Insert:
		return call(r, g.insert, s)
	case *ir.Update:
		return call(r, g.update, s)
	case *ir.Delete:
		return call(r, g.delete, s)
	case *ir.Select:
		return call(r, g.selectQuery, s)
	case *ir.Grant:
		return call(r, g.grant, s)
	case *ir.Revoke:
		return call(r, g.revoke, s)
	case *ir.Begin:
		return call(r, g.begin, s)
	case *ir.Commit:
		return call(r, g.commit, s)
	case *ir.Rollback:
		return call(r, g.rollback, s)
	case *ir.Savepoint:
		return call(r, g.savepoint, s)
	case *ir.ReleaseSavepoint:
		return call(r, g.releaseSavepoint, s)
	case *ir.SetTransaction:
		return call(r, g.setTransaction, s)
	default:
		return "", &sqlerr.UnsupportedOperationError{
			Dialect:   string(r.d.ID),
			Category:  string(stmt.Category()),
			Operation: string(stmt.Operation()),
		}
	}
}

// call invokes gen, or reports the operation as unsupported when the dialect
// has no generator.
func call[S ir.Statement](r *renderer, gen func(*renderer, S) (string, error), s S) (string, error) {
	if gen == nil {
		return "", r.unsupported(s, "")
	}
	return gen(r, s)
}

func isNilStatement(s ir.Statement) bool {
	switch v := s.(type) {
	case *ir.CreateTable:
		return v == nil
	case *ir.CreateIndex:
		return v == nil
	case *ir.CreateView:
		return v == nil
	case *ir.CreateDatabase:
		return v == nil
	case *ir.CreateSchema:
		return v == nil
	case *ir.CreateSequence:
		return v == nil
	case *ir.CreateTrigger:
		return v == nil
	case *ir.CreateProcedure:
		return v == nil
	case *ir.CreateFunction:
		return v == nil
	case *ir.CreateRole:
		return v == nil
	case *ir.CreateUser:
		return v == nil
	case *ir.CreateEvent:
		return v == nil
	case *ir.AlterTable:
		return v == nil
	case *ir.Drop:
		return v == nil
	case *ir.Truncate:
		return v == nil
	case *ir.Insert:
		return v == nil
	case *ir.Update:
		return v == nil
	case *ir.Delete:
		return v == nil
	case *ir.Select:
		return v == nil
	case *ir.Grant:
		return v == nil
	case *ir.Revoke:
		return v == nil
	case *ir.Begin:
		return v == nil
	case *ir.Commit:
		return v == nil
	case *ir.Rollback:
		return v == nil
	case *ir.Savepoint:
		return v == nil
	case *ir.ReleaseSavepoint:
		return v == nil
	case *ir.SetTransaction:
		return v == nil
	}
	return false
}

// ScriptError reports which statement of a script failed.
type ScriptError struct {
	Index int
	Err   error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("statement %d: %v", e.Index, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// GenerateScript renders every statement and joins them with newlines. It is
// all-or-nothing: the first failure discards everything generated so far.
func GenerateScript(stmts []ir.Statement, d dialect.ID) (string, error) {
	parts := make([]string, 0, len(stmts))
	for i, stmt := range stmts {
		sql, err := Generate(stmt, d)
		if err != nil {
			return "", &ScriptError{Index: i, Err: err}
		}
		parts = append(parts, sql)
	}
	return strings.Join(parts, "\n"), nil
}
