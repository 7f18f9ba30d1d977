package sqlgen

import (
	"strconv"
	"strings"

	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// postgresGenerators covers PostgreSQL 14 and later. It has no events.
func postgresGenerators() *generators {
	return &generators{
		createTable:     postgresCreateTable,
		createIndex:     postgresCreateIndex,
		createView:      postgresCreateView,
		createDatabase:  postgresCreateDatabase,
		createSchema:    postgresCreateSchema,
		createSequence:  postgresCreateSequence,
		createTrigger:   postgresCreateTrigger,
		createProcedure: postgresCreateProcedure,
		createFunction:  postgresCreateFunction,
		createRole:      postgresCreateRole,
		createUser:      postgresCreateUser,
		alterTable:      postgresAlterTable,
		drop: dropWith(map[ir.ObjectType]dropRule{
			ir.ObjectTable:     {ifExists: true, cascade: true},
			ir.ObjectIndex:     {ifExists: true, cascade: true},
			ir.ObjectView:      {ifExists: true, cascade: true},
			ir.ObjectDatabase:  {ifExists: true},
			ir.ObjectSchema:    {ifExists: true, cascade: true},
			ir.ObjectSequence:  {ifExists: true, cascade: true},
			ir.ObjectTrigger:   {table: true, ifExists: true, cascade: true},
			ir.ObjectProcedure: {ifExists: true, cascade: true},
			ir.ObjectFunction:  {ifExists: true, cascade: true},
		}),
		truncate: genTruncate,

		insert: genInsert,
		update: genUpdate,
		delete: genDelete,

		selectQuery: genSelect,

		grant:  postgresGrant,
		revoke: postgresRevoke,

		begin:            beginWith("BEGIN"),
		commit:           genCommit,
		rollback:         genRollback,
		savepoint:        genSavepoint,
		releaseSavepoint: genReleaseSavepoint,
		setTransaction:   genSetTransaction,
	}
}

// postgresComments renders the COMMENT ON statements that follow a table
// definition, one per line, each prefixed with a newline.
func postgresComments(r *renderer, table, comment string, cols []ir.Column) (string, error) {
	var b strings.Builder
	if comment != "" {
		b.WriteString("\nCOMMENT ON TABLE " + table + " IS " + r.str(comment) + ";")
	}
	for i, c := range cols {
		if c.Comment == "" {
			continue
		}
		col, err := r.ident(c.Name, indexed("columns", i)+".name")
		if err != nil {
			return "", err
		}
		b.WriteString("\nCOMMENT ON COLUMN " + table + "." + col + " IS " + r.str(c.Comment) + ";")
	}
	return b.String(), nil
}

func postgresCreateTable(r *renderer, s *ir.CreateTable) (string, error) {
	o := s.Options
	switch {
	case o.Engine != "":
		return "", r.unsupported(s, "ENGINE")
	case o.Charset != "":
		return "", r.unsupported(s, "CHARSET")
	case o.Collation != "":
		return "", r.unsupported(s, "table COLLATE")
	case o.WithoutRowID:
		return "", r.unsupported(s, "WITHOUT ROWID")
	case o.Strict:
		return "", r.unsupported(s, "STRICT")
	}

	def, err := r.tableDefinition(s)
	if err != nil {
		return "", err
	}
	table, err := r.qualified(s.Name, "name")
	if err != nil {
		return "", err
	}
	comments, err := postgresComments(r, table, o.Comment, s.Columns)
	if err != nil {
		return "", err
	}
	return def + ";" + comments, nil
}

// postgresIndexMethods are the built-in access methods.
var postgresIndexMethods = map[string]bool{
	"btree": true, "hash": true, "gin": true, "gist": true, "spgist": true, "brin": true,
}

func postgresCreateIndex(r *renderer, s *ir.CreateIndex) (string, error) {
	if s.Kind != "" {
		return "", r.unsupported(s, string(s.Kind)+" index")
	}

	name, err := r.ident(s.Name, "name")
	if err != nil {
		return "", err
	}
	table, err := r.qualified(s.Table, "table")
	if err != nil {
		return "", err
	}
	cols, err := r.identList(s.Columns, "columns")
	if err != nil {
		return "", err
	}

	var using string
	if s.Method != "" {
		method := strings.ToLower(s.Method)
		if !postgresIndexMethods[method] {
			return "", sqlerr.Validationf("method", "unknown index method %q", s.Method)
		}
		using = "USING " + method + " "
	}
	where, err := r.where(s.Where)
	if err != nil {
		return "", err
	}

	out := "CREATE "
	if s.Unique {
		out += "UNIQUE "
	}
	return out + "INDEX " + ifNotExists(s.IfNotExists) + name + " ON " + table + " " + using + "(" + cols + ")" + where + ";", nil
}

func postgresCreateView(r *renderer, s *ir.CreateView) (string, error) {
	if s.IfNotExists {
		return "", r.unsupported(s, "IF NOT EXISTS")
	}

	head, err := r.viewHead(s)
	if err != nil {
		return "", err
	}
	query, err := r.viewBody(s)
	if err != nil {
		return "", err
	}
	check, err := checkOption(s.CheckOption)
	if err != nil {
		return "", err
	}

	out := "CREATE "
	if s.OrReplace {
		out += "OR REPLACE "
	}
	if s.Temporary {
		out += "TEMPORARY "
	}
	return out + "VIEW " + head + " AS " + query + check + ";", nil
}

func postgresCreateDatabase(r *renderer, s *ir.CreateDatabase) (string, error) {
	if s.IfNotExists {
		return "", r.unsupported(s, "IF NOT EXISTS")
	}
	name, err := r.ident(s.Name, "name")
	if err != nil {
		return "", err
	}

	out := "CREATE DATABASE " + name
	if s.Charset != "" {
		out += " ENCODING " + r.str(s.Charset)
	}
	if s.Collation != "" {
		out += " LC_COLLATE " + r.str(s.Collation)
	}
	return out + ";", nil
}

func postgresCreateSchema(r *renderer, s *ir.CreateSchema) (string, error) {
	name, err := r.ident(s.Name, "name")
	if err != nil {
		return "", err
	}
	out := "CREATE SCHEMA " + ifNotExists(s.IfNotExists) + name
	if s.Authorization != "" {
		role, err := r.ident(s.Authorization, "authorization")
		if err != nil {
			return "", err
		}
		out += " AUTHORIZATION " + role
	}
	return out + ";", nil
}

func postgresCreateSequence(r *renderer, s *ir.CreateSequence) (string, error) {
	name, err := r.qualified(s.Name, "name")
	if err != nil {
		return "", err
	}

	switch {
	case s.Increment != nil && *s.Increment == 0:
		return "", sqlerr.Validationf("increment", "must not be zero")
	case s.Cache != nil && *s.Cache < 1:
		return "", sqlerr.Validationf("cache", "must be at least 1")
	case s.MinValue != nil && s.MaxValue != nil && *s.MinValue > *s.MaxValue:
		return "", sqlerr.Validationf("min_value", "%d exceeds max_value %d", *s.MinValue, *s.MaxValue)
	case s.Start != nil && s.MinValue != nil && *s.Start < *s.MinValue:
		return "", sqlerr.Validationf("start", "%d is below min_value %d", *s.Start, *s.MinValue)
	case s.Start != nil && s.MaxValue != nil && *s.Start > *s.MaxValue:
		return "", sqlerr.Validationf("start", "%d is above max_value %d", *s.Start, *s.MaxValue)
	}

	out := "CREATE SEQUENCE " + ifNotExists(s.IfNotExists) + name
	for _, opt := range []struct {
		clause string
		value  *int64
	}{
		{"INCREMENT BY", s.Increment},
		{"MINVALUE", s.MinValue},
		{"MAXVALUE", s.MaxValue},
		{"START WITH", s.Start},
		{"CACHE", s.Cache},
	} {
		if opt.value != nil {
			out += " " + opt.clause + " " + strconv.FormatInt(*opt.value, 10)
		}
	}
	if s.Cycle {
		out += " CYCLE"
	}
	return out + ";", nil
}

func postgresCreateTrigger(r *renderer, s *ir.CreateTrigger) (string, error) {
	t, err := r.triggerParts(s)
	if err != nil {
		return "", err
	}
	switch {
	case s.IfNotExists:
		return "", r.unsupported(s, "IF NOT EXISTS")
	case s.Body != "":
		return "", r.unsupported(s, "inline trigger body")
	}
	fn, err := r.qualified(s.Function, "function")
	if err != nil {
		return "", err
	}
	when, err := r.whenClause(s.When)
	if err != nil {
		return "", err
	}

	out := "CREATE "
	if s.OrReplace {
		out += "OR REPLACE "
	}
	return out + "TRIGGER " + t.name + " " + string(t.timing) + " " + string(t.event) + " ON " + t.table +
		" FOR EACH " + string(t.scope) + when + " EXECUTE FUNCTION " + fn + "();", nil
}

// postgresLanguage returns the routine language, defaulting to plpgsql.
func postgresLanguage(r *renderer, lang string) (string, error) {
	if lang == "" {
		return "plpgsql", nil
	}
	l, err := r.keyword(lang, "language")
	if err != nil {
		return "", err
	}
	return strings.ToLower(l), nil
}

// postgresRoutineBody renders LANGUAGE and the dollar-quoted AS clause.
// plpgsql bodies are wrapped in BEGIN ... END unless they open a block
// themselves.
func postgresRoutineBody(lang, b string, attrs ...string) string {
	if lang == "plpgsql" {
		b = beginEnd(b, "BEGIN", "DECLARE")
	} else {
		b = terminate(b)
	}
	lines := append([]string{"LANGUAGE " + lang}, attrs...)
	return strings.Join(lines, "\n") + "\nAS " + dollarQuote(b) + ";"
}

func postgresCreateProcedure(r *renderer, s *ir.CreateProcedure) (string, error) {
	name, err := r.qualified(s.Name, "name")
	if err != nil {
		return "", err
	}
	params, err := r.parameters(s.Parameters, true)
	if err != nil {
		return "", err
	}
	lang, err := postgresLanguage(r, s.Language)
	if err != nil {
		return "", err
	}
	b, err := body(s.Body, "body")
	if err != nil {
		return "", err
	}

	out := "CREATE "
	if s.OrReplace {
		out += "OR REPLACE "
	}
	return out + "PROCEDURE " + name + "(" + params + ")\n" + postgresRoutineBody(lang, b), nil
}

func postgresCreateFunction(r *renderer, s *ir.CreateFunction) (string, error) {
	name, err := r.qualified(s.Name, "name")
	if err != nil {
		return "", err
	}
	params, err := r.parameters(s.Parameters, true)
	if err != nil {
		return "", err
	}
	returns, err := r.typ(s.Returns, "returns")
	if err != nil {
		return "", err
	}
	lang, err := postgresLanguage(r, s.Language)
	if err != nil {
		return "", err
	}
	b, err := body(s.Body, "body")
	if err != nil {
		return "", err
	}

	var attrs []string
	if s.Deterministic {
		attrs = append(attrs, "IMMUTABLE")
	}

	out := "CREATE "
	if s.OrReplace {
		out += "OR REPLACE "
	}
	return out + "FUNCTION " + name + "(" + params + ") RETURNS " + returns + "\n" + postgresRoutineBody(lang, b, attrs...), nil
}

func postgresCreateRole(r *renderer, s *ir.CreateRole) (string, error) {
	if s.IfNotExists {
		return "", r.unsupported(s, "IF NOT EXISTS")
	}
	name, err := r.ident(s.Name, "name")
	if err != nil {
		return "", err
	}
	out := "CREATE ROLE " + name
	if s.Login {
		out += " WITH LOGIN"
	}
	return out + ";", nil
}

func postgresCreateUser(r *renderer, s *ir.CreateUser) (string, error) {
	switch {
	case s.IfNotExists:
		return "", r.unsupported(s, "IF NOT EXISTS")
	case s.Host != "":
		return "", r.unsupported(s, "account host")
	}
	name, err := r.ident(s.Name, "name")
	if err != nil {
		return "", err
	}
	out := "CREATE USER " + name
	if s.Password != "" {
		out += " WITH PASSWORD " + r.str(s.Password)
	}
	return out + ";", nil
}

// postgresAlterTable combines actions into one statement unless a rename is
// present; PostgreSQL does not allow RENAME alongside other actions.
func postgresAlterTable(r *renderer, s *ir.AlterTable) (string, error) {
	combine := true
	for _, a := range s.Actions {
		if isRename(a) {
			combine = false
			break
		}
	}
	sql, err := r.alterTable(s, combine)
	if err != nil {
		return "", err
	}

	// Comments run after every action, so they address the final table name.
	target := s.Table
	var added []ir.Column
	for _, a := range s.Actions {
		switch act := derefAction(a).(type) {
		case ir.AddColumn:
			added = append(added, act.Column)
		case ir.RenameTable:
			target = act.To
			if i := strings.LastIndex(s.Table, "."); i >= 0 {
				target = s.Table[:i+1] + act.To
			}
		}
	}
	if len(added) == 0 {
		return sql, nil
	}
	table, err := r.qualified(target, "table")
	if err != nil {
		return "", err
	}
	comments, err := postgresComments(r, table, "", added)
	if err != nil {
		return "", err
	}
	return sql + comments, nil
}

func postgresPrivilegeParts(r *renderer, spec ir.PrivilegeSpec) (privs, on, principal string, err error) {
	if spec.Host != "" {
		return "", "", "", sqlerr.Validationf("host", "account hosts are a MySQL feature")
	}
	if privs, err = r.privileges(spec); err != nil {
		return "", "", "", err
	}
	if on, err = r.qualified(spec.On, "on"); err != nil {
		return "", "", "", err
	}
	// Roles are identifiers in PostgreSQL, so the principal is double-quoted
	// like a table name. MySQL's 'user'@'host' literal form is a syntax error.
	if principal, err = r.ident(spec.To, "to"); err != nil {
		return "", "", "", err
	}
	return privs, on, principal, nil
}

func postgresGrant(r *renderer, s *ir.Grant) (string, error) {
	privs, on, to, err := postgresPrivilegeParts(r, s.PrivilegeSpec)
	if err != nil {
		return "", err
	}
	out := "GRANT " + privs + " ON " + on + " TO " + to
	if s.WithGrantOption {
		out += " WITH GRANT OPTION"
	}
	return out + ";", nil
}

func postgresRevoke(r *renderer, s *ir.Revoke) (string, error) {
	privs, on, from, err := postgresPrivilegeParts(r, s.PrivilegeSpec)
	if err != nil {
		return "", err
	}
	return "REVOKE " + privs + " ON " + on + " FROM " + from + ";", nil
}
