package sqlgen

import (
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/quote"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// tableDefinition renders CREATE TABLE up to and including the closing
// parenthesis. Dialects append their table options and the terminator.
func (r *renderer) tableDefinition(s *ir.CreateTable) (string, error) {
	name, err := r.qualified(s.Name, "name")
	if err != nil {
		return "", err
	}
	if len(s.Columns) == 0 {
		return "", sqlerr.Validationf("columns", "at least one column is required")
	}

	clauses := make([]string, 0, len(s.Columns)+len(s.Constraints))
	seen := make(map[string]bool, len(s.Columns))
	primaryKeys := 0
	for i, c := range s.Columns {
		field := indexed("columns", i)
		if seen[c.Name] {
			return "", sqlerr.Validationf(field, "duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		if c.PrimaryKey {
			primaryKeys++
		}

		clause, err := r.column(s, c, field)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	for i, c := range s.Constraints {
		field := indexed("constraints", i)
		if isPrimaryKey(c) {
			primaryKeys++
		}

		clause, err := r.constraint(c, field)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	if primaryKeys > 1 {
		return "", sqlerr.Validationf("columns", "a table can have only one primary key; use a PRIMARY_KEY constraint for composite keys")
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	if s.Temporary {
		b.WriteString("TEMPORARY ")
	}
	b.WriteString("TABLE ")
	b.WriteString(ifNotExists(s.IfNotExists))
	b.WriteString(name)
	b.WriteString(" (\n  ")
	b.WriteString(strings.Join(clauses, ",\n  "))
	b.WriteString("\n)")
	return b.String(), nil
}

// column renders one column clause. stmt is the enclosing statement and is
// only used to describe unsupported options.
//
// Clause order: name, type, GENERATED ALWAYS AS, NOT NULL, DEFAULT,
// ON UPDATE, auto-increment, PRIMARY KEY, UNIQUE, COMMENT.
func (r *renderer) column(stmt ir.Statement, c ir.Column, field string) (string, error) {
	name, err := r.ident(c.Name, field+".name")
	if err != nil {
		return "", err
	}
	typ, err := r.typ(c.Type, field+".type")
	if err != nil {
		return "", err
	}
	parts := []string{name, typ}

	if g := c.Generated; g != nil {
		expr := strings.TrimSpace(g.Expression)
		switch {
		case expr == "":
			return "", sqlerr.Validationf(field+".generated.expression", "is required")
		case c.Default != nil:
			return "", sqlerr.Validationf(field+".default", "a generated column cannot have a default")
		case c.AutoIncrement:
			return "", sqlerr.Validationf(field+".auto_increment", "a generated column cannot auto-increment")
		case !g.Stored && r.d.ID == dialect.Postgres:
			return "", r.unsupported(stmt, "VIRTUAL generated column")
		}
		storage := "VIRTUAL"
		if g.Stored {
			storage = "STORED"
		}
		parts = append(parts, "GENERATED ALWAYS AS ("+expr+") "+storage)
	}

	if c.NotNull {
		parts = append(parts, "NOT NULL")
	}

	if c.Default != nil {
		if c.AutoIncrement {
			return "", sqlerr.Validationf(field+".default", "an auto-increment column cannot have a default")
		}
		v, err := r.columnDefault(c, field+".default")
		if err != nil {
			return "", err
		}
		parts = append(parts, "DEFAULT "+v)
	}

	if c.OnUpdate != nil {
		if r.d.ID != dialect.MySQL {
			return "", r.unsupported(stmt, "ON UPDATE")
		}
		v, err := r.value(c.OnUpdate)
		if err != nil {
			return "", err
		}
		parts = append(parts, "ON UPDATE "+v)
	}

	if c.AutoIncrement {
		switch r.d.ID {
		case dialect.MySQL:
			parts = append(parts, "AUTO_INCREMENT")
		case dialect.Postgres:
			parts = append(parts, "GENERATED BY DEFAULT AS IDENTITY")
		case dialect.SQLite:
			if !c.PrimaryKey || typ != "INTEGER" {
				return "", sqlerr.Validationf(field+".auto_increment", "sqlite AUTOINCREMENT requires an INTEGER PRIMARY KEY column")
			}
		}
	}

	if c.PrimaryKey {
		parts = append(parts, "PRIMARY KEY")
		if c.AutoIncrement && r.d.ID == dialect.SQLite {
			parts = append(parts, "AUTOINCREMENT")
		}
	}
	if c.Unique {
		parts = append(parts, "UNIQUE")
	}

	if c.Comment != "" {
		switch r.d.ID {
		case dialect.MySQL:
			parts = append(parts, "COMMENT "+r.str(c.Comment))
		case dialect.Postgres:
			// Emitted as COMMENT ON COLUMN after the statement.
		default:
			return "", r.unsupported(stmt, "column COMMENT")
		}
	}

	return strings.Join(parts, " "), nil
}

// columnDefault formats a DEFAULT value. String defaults of uuid columns
// must be UUIDs unless they are a bare expression such as UUID().
func (r *renderer) columnDefault(c ir.Column, field string) (string, error) {
	if s, ok := c.Default.(ir.String); ok && strings.EqualFold(c.Type.BaseType, "uuid") && !quote.IsBareExpression(string(s)) {
		if _, err := uuid.Parse(string(s)); err != nil {
			return "", sqlerr.Validationf(field, "invalid uuid default %q", string(s))
		}
	}
	return r.value(c.Default)
}

func isPrimaryKey(c ir.Constraint) bool {
	switch c.(type) {
	case ir.PrimaryKeyConstraint, *ir.PrimaryKeyConstraint:
		return true
	}
	return false
}

// constraint renders a table constraint clause.
func (r *renderer) constraint(c ir.Constraint, field string) (string, error) {
	if c == nil {
		return "", sqlerr.Validationf(field, "constraint is required")
	}
	c = derefConstraint(c)
	if c == nil {
		return "", sqlerr.Validationf(field, "constraint is required")
	}

	var prefix string
	if n := c.ConstraintName(); n != "" {
		q, err := r.ident(n, field+".name")
		if err != nil {
			return "", err
		}
		prefix = "CONSTRAINT " + q + " "
	}

	switch k := c.(type) {
	case ir.PrimaryKeyConstraint:
		cols, err := r.identList(k.Columns, field+".columns")
		if err != nil {
			return "", err
		}
		return prefix + "PRIMARY KEY (" + cols + ")", nil

	case ir.UniqueConstraint:
		cols, err := r.identList(k.Columns, field+".columns")
		if err != nil {
			return "", err
		}
		return prefix + "UNIQUE (" + cols + ")", nil

	case ir.ForeignKeyConstraint:
		return r.foreignKey(prefix, k, field)

	case ir.CheckConstraint:
		expr := strings.TrimSpace(k.Expression)
		if expr == "" {
			return "", sqlerr.Validationf(field+".expression", "is required")
		}
		return prefix + "CHECK (" + expr + ")", nil
	}
	return "", sqlerr.Validationf(field, "unsupported constraint type %T", c)
}

func (r *renderer) foreignKey(prefix string, k ir.ForeignKeyConstraint, field string) (string, error) {
	cols, err := r.identList(k.Columns, field+".columns")
	if err != nil {
		return "", err
	}
	ref, err := r.qualified(k.RefTable, field+".ref_table")
	if err != nil {
		return "", err
	}
	refCols, err := r.identList(k.RefColumns, field+".ref_columns")
	if err != nil {
		return "", err
	}
	if len(k.Columns) != len(k.RefColumns) {
		return "", sqlerr.Validationf(field+".ref_columns", "%d columns reference %d columns", len(k.Columns), len(k.RefColumns))
	}

	out := prefix + "FOREIGN KEY (" + cols + ") REFERENCES " + ref + " (" + refCols + ")"
	for _, a := range []struct {
		clause string
		action ir.ReferentialAction
		field  string
	}{
		{"ON DELETE", k.OnDelete, field + ".on_delete"},
		{"ON UPDATE", k.OnUpdate, field + ".on_update"},
	} {
		if a.action == "" {
			continue
		}
		if !a.action.Valid() {
			return "", sqlerr.Validationf(a.field, "unknown referential action %q", a.action)
		}
		out += " " + a.clause + " " + string(a.action)
	}
	return out, nil
}

func derefConstraint(c ir.Constraint) ir.Constraint {
	switch k := c.(type) {
	case *ir.PrimaryKeyConstraint:
		if k == nil {
			return nil
		}
		return *k
	case *ir.UniqueConstraint:
		if k == nil {
			return nil
		}
		return *k
	case *ir.ForeignKeyConstraint:
		if k == nil {
			return nil
		}
		return *k
	case *ir.CheckConstraint:
		if k == nil {
			return nil
		}
		return *k
	}
	return c
}

// alterClauses renders each ALTER TABLE action to its clause text, without
// the ALTER TABLE prefix.
func (r *renderer) alterClauses(s *ir.AlterTable) ([]string, error) {
	if len(s.Actions) == 0 {
		return nil, sqlerr.Validationf("actions", "at least one action is required")
	}

	clauses := make([]string, 0, len(s.Actions))
	for i, a := range s.Actions {
		field := indexed("actions", i)
		clause, err := r.alterClause(s, a, field)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

func (r *renderer) alterClause(s *ir.AlterTable, a ir.AlterAction, field string) (string, error) {
	switch act := derefAction(a).(type) {
	case ir.AddColumn:
		if r.d.ID == dialect.SQLite && (act.Column.PrimaryKey || act.Column.Unique) {
			return "", r.unsupported(s, "ADD COLUMN with PRIMARY KEY or UNIQUE")
		}
		col, err := r.column(s, act.Column, field+".column")
		if err != nil {
			return "", err
		}
		return "ADD COLUMN " + col, nil

	case ir.DropColumn:
		name, err := r.ident(act.Name, field+".name")
		if err != nil {
			return "", err
		}
		return "DROP COLUMN " + name, nil

	case ir.RenameColumn:
		from, err := r.ident(act.From, field+".from")
		if err != nil {
			return "", err
		}
		to, err := r.ident(act.To, field+".to")
		if err != nil {
			return "", err
		}
		return "RENAME COLUMN " + from + " TO " + to, nil

	case ir.RenameTable:
		to, err := r.ident(act.To, field+".to")
		if err != nil {
			return "", err
		}
		return "RENAME TO " + to, nil

	case nil:
		return "", sqlerr.Validationf(field, "action is required")
	}
	return "", sqlerr.Validationf(field, "unsupported alter action %T", a)
}

func derefAction(a ir.AlterAction) ir.AlterAction {
	switch act := a.(type) {
	case *ir.AddColumn:
		if act == nil {
			return nil
		}
		return *act
	case *ir.DropColumn:
		if act == nil {
			return nil
		}
		return *act
	case *ir.RenameColumn:
		if act == nil {
			return nil
		}
		return *act
	case *ir.RenameTable:
		if act == nil {
			return nil
		}
		return *act
	}
	return a
}

func isRename(a ir.AlterAction) bool {
	switch derefAction(a).(type) {
	case ir.RenameColumn, ir.RenameTable:
		return true
	}
	return false
}

// alterTable renders ALTER TABLE. When combine is true every action goes
// into one statement; otherwise each action is its own statement and the
// statements are joined by newlines.
func (r *renderer) alterTable(s *ir.AlterTable, combine bool) (string, error) {
	table, err := r.qualified(s.Table, "table")
	if err != nil {
		return "", err
	}
	clauses, err := r.alterClauses(s)
	if err != nil {
		return "", err
	}

	prefix := "ALTER TABLE " + table + " "
	if combine {
		return prefix + strings.Join(clauses, ", ") + ";", nil
	}
	stmts := make([]string, len(clauses))
	for i, c := range clauses {
		stmts[i] = prefix + c + ";"
	}
	return strings.Join(stmts, "\n"), nil
}
