package sqlgen

import (
	"strconv"
	"strings"

	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// mysqlGenerators covers MySQL 8. It has no sequences.
func mysqlGenerators() *generators {
	return &generators{
		createTable:     mysqlCreateTable,
		createIndex:     mysqlCreateIndex,
		createView:      mysqlCreateView,
		createDatabase:  mysqlCreateDatabase,
		createSchema:    mysqlCreateSchema,
		createTrigger:   mysqlCreateTrigger,
		createProcedure: mysqlCreateProcedure,
		createFunction:  mysqlCreateFunction,
		createRole:      mysqlCreateRole,
		createUser:      mysqlCreateUser,
		createEvent:     mysqlCreateEvent,
		alterTable: func(r *renderer, s *ir.AlterTable) (string, error) {
			return r.alterTable(s, true)
		},
		drop: dropWith(map[ir.ObjectType]dropRule{
			ir.ObjectTable:     {ifExists: true},
			ir.ObjectIndex:     {table: true},
			ir.ObjectView:      {ifExists: true},
			ir.ObjectDatabase:  {ifExists: true},
			ir.ObjectSchema:    {ifExists: true},
			ir.ObjectTrigger:   {ifExists: true},
			ir.ObjectProcedure: {ifExists: true},
			ir.ObjectFunction:  {ifExists: true},
			ir.ObjectEvent:     {ifExists: true},
		}),
		truncate: genTruncate,

		insert: genInsert,
		update: genUpdate,
		delete: genDelete,

		selectQuery: genSelect,

		grant:  mysqlGrant,
		revoke: mysqlRevoke,

		begin:            beginWith("START TRANSACTION"),
		commit:           genCommit,
		rollback:         genRollback,
		savepoint:        genSavepoint,
		releaseSavepoint: genReleaseSavepoint,
		setTransaction:   genSetTransaction,
	}
}

func mysqlCreateTable(r *renderer, s *ir.CreateTable) (string, error) {
	o := s.Options
	switch {
	case o.WithoutRowID:
		return "", r.unsupported(s, "WITHOUT ROWID")
	case o.Strict:
		return "", r.unsupported(s, "STRICT")
	}

	def, err := r.tableDefinition(s)
	if err != nil {
		return "", err
	}

	var opts []string
	for _, kv := range []struct{ prefix, value, field string }{
		{"ENGINE=", o.Engine, "options.engine"},
		{"DEFAULT CHARSET=", o.Charset, "options.charset"},
		{"COLLATE=", o.Collation, "options.collation"},
	} {
		if kv.value == "" {
			continue
		}
		v, err := r.keyword(kv.value, kv.field)
		if err != nil {
			return "", err
		}
		opts = append(opts, kv.prefix+v)
	}
	if o.Comment != "" {
		opts = append(opts, "COMMENT="+r.str(o.Comment))
	}

	if len(opts) > 0 {
		def += " " + strings.Join(opts, " ")
	}
	return def + ";", nil
}

func mysqlCreateIndex(r *renderer, s *ir.CreateIndex) (string, error) {
	switch {
	case s.IfNotExists:
		return "", r.unsupported(s, "IF NOT EXISTS")
	case s.Where != nil:
		return "", r.unsupported(s, "partial index WHERE")
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

	var prefix string
	switch kind := ir.IndexKind(strings.ToUpper(string(s.Kind))); kind {
	case "":
		if s.Unique {
			prefix = "UNIQUE "
		}
	case ir.IndexFulltext, ir.IndexSpatial:
		if s.Unique {
			return "", sqlerr.Validationf("kind", "a %s index cannot be UNIQUE", kind)
		}
		prefix = string(kind) + " "
	default:
		return "", sqlerr.Validationf("kind", "unknown index kind %q", s.Kind)
	}

	var using string
	switch method := strings.ToUpper(s.Method); method {
	case "":
	case "BTREE", "HASH":
		using = " USING " + method
	default:
		return "", sqlerr.Validationf("method", "mysql index method must be BTREE or HASH, got %q", s.Method)
	}

	return "CREATE " + prefix + "INDEX " + name + using + " ON " + table + " (" + cols + ");", nil
}

func mysqlCreateView(r *renderer, s *ir.CreateView) (string, error) {
	switch {
	case s.Temporary:
		return "", r.unsupported(s, "TEMPORARY")
	case s.IfNotExists:
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
	return out + "VIEW " + head + " AS " + query + check + ";", nil
}

func mysqlCreateDatabase(r *renderer, s *ir.CreateDatabase) (string, error) {
	name, err := r.ident(s.Name, "name")
	if err != nil {
		return "", err
	}

	out := "CREATE DATABASE " + ifNotExists(s.IfNotExists) + name
	if s.Charset != "" {
		cs, err := r.keyword(s.Charset, "charset")
		if err != nil {
			return "", err
		}
		out += " DEFAULT CHARACTER SET " + cs
	}
	if s.Collation != "" {
		co, err := r.keyword(s.Collation, "collation")
		if err != nil {
			return "", err
		}
		out += " COLLATE " + co
	}
	return out + ";", nil
}

func mysqlCreateSchema(r *renderer, s *ir.CreateSchema) (string, error) {
	if s.Authorization != "" {
		return "", r.unsupported(s, "AUTHORIZATION")
	}
	name, err := r.ident(s.Name, "name")
	if err != nil {
		return "", err
	}
	return "CREATE SCHEMA " + ifNotExists(s.IfNotExists) + name + ";", nil
}

func mysqlCreateTrigger(r *renderer, s *ir.CreateTrigger) (string, error) {
	t, err := r.triggerParts(s)
	if err != nil {
		return "", err
	}
	switch {
	case t.timing == ir.TimingInsteadOf:
		return "", r.unsupported(s, "INSTEAD OF")
	case t.scope == ir.ForEachStatement:
		return "", r.unsupported(s, "FOR EACH STATEMENT")
	case s.When != nil:
		return "", r.unsupported(s, "WHEN")
	case s.OrReplace:
		return "", r.unsupported(s, "OR REPLACE")
	case s.Function != "":
		return "", r.unsupported(s, "EXECUTE FUNCTION")
	}
	b, err := body(s.Body, "body")
	if err != nil {
		return "", err
	}

	return "CREATE TRIGGER " + ifNotExists(s.IfNotExists) + t.name + " " + string(t.timing) + " " + string(t.event) +
		" ON " + t.table + " FOR EACH ROW\n" + beginEnd(b, "BEGIN"), nil
}

// mysqlLanguage rejects any routine language other than SQL.
func mysqlLanguage(r *renderer, stmt ir.Statement, lang string) error {
	if lang != "" && !strings.EqualFold(lang, "sql") {
		return r.unsupported(stmt, "LANGUAGE "+lang)
	}
	return nil
}

func mysqlCreateProcedure(r *renderer, s *ir.CreateProcedure) (string, error) {
	if s.OrReplace {
		return "", r.unsupported(s, "OR REPLACE")
	}
	if err := mysqlLanguage(r, s, s.Language); err != nil {
		return "", err
	}
	name, err := r.qualified(s.Name, "name")
	if err != nil {
		return "", err
	}
	params, err := r.parameters(s.Parameters, true)
	if err != nil {
		return "", err
	}
	b, err := body(s.Body, "body")
	if err != nil {
		return "", err
	}

	return "CREATE PROCEDURE " + name + "(" + params + ")\n" + beginEnd(b, "BEGIN"), nil
}

func mysqlCreateFunction(r *renderer, s *ir.CreateFunction) (string, error) {
	if s.OrReplace {
		return "", r.unsupported(s, "OR REPLACE")
	}
	if err := mysqlLanguage(r, s, s.Language); err != nil {
		return "", err
	}
	name, err := r.qualified(s.Name, "name")
	if err != nil {
		return "", err
	}
	params, err := r.parameters(s.Parameters, false)
	if err != nil {
		return "", err
	}
	returns, err := r.typ(s.Returns, "returns")
	if err != nil {
		return "", err
	}
	b, err := body(s.Body, "body")
	if err != nil {
		return "", err
	}

	out := "CREATE FUNCTION " + name + "(" + params + ") RETURNS " + returns + "\n"
	if s.Deterministic {
		out += "DETERMINISTIC\n"
	}
	return out + beginEnd(b, "BEGIN"), nil
}

func mysqlCreateRole(r *renderer, s *ir.CreateRole) (string, error) {
	if s.Login {
		return "", r.unsupported(s, "LOGIN")
	}
	role, err := r.account(s.Name, "", "name", false)
	if err != nil {
		return "", err
	}
	return "CREATE ROLE " + ifNotExists(s.IfNotExists) + role + ";", nil
}

func mysqlCreateUser(r *renderer, s *ir.CreateUser) (string, error) {
	user, err := r.account(s.Name, s.Host, "name", true)
	if err != nil {
		return "", err
	}
	out := "CREATE USER " + ifNotExists(s.IfNotExists) + user
	if s.Password != "" {
		out += " IDENTIFIED BY " + r.str(s.Password)
	}
	return out + ";", nil
}

// mysqlSchedule renders the ON SCHEDULE clause.
func mysqlSchedule(r *renderer, sc ir.Schedule) (string, error) {
	at := strings.TrimSpace(sc.At)
	switch {
	case at != "" && sc.Every != 0:
		return "", sqlerr.Validationf("schedule", "set either at or every, not both")
	case at != "":
		if sc.Starts != "" || sc.Ends != "" {
			return "", sqlerr.Validationf("schedule", "starts and ends apply only to recurring schedules")
		}
		return "ON SCHEDULE AT " + r.str(at), nil
	case sc.Every < 0:
		return "", sqlerr.Validationf("schedule.every", "must be positive")
	case sc.Every == 0:
		return "", sqlerr.Validationf("schedule", "at or every is required")
	}

	unit := ir.IntervalUnit(strings.ToUpper(string(sc.Unit)))
	if !unit.Valid() {
		return "", sqlerr.Validationf("schedule.unit", "unknown interval unit %q", sc.Unit)
	}
	out := "ON SCHEDULE EVERY " + strconv.Itoa(sc.Every) + " " + string(unit)
	if sc.Starts != "" {
		out += " STARTS " + r.str(sc.Starts)
	}
	if sc.Ends != "" {
		out += " ENDS " + r.str(sc.Ends)
	}
	return out, nil
}

func mysqlCreateEvent(r *renderer, s *ir.CreateEvent) (string, error) {
	name, err := r.qualified(s.Name, "name")
	if err != nil {
		return "", err
	}
	schedule, err := mysqlSchedule(r, s.Schedule)
	if err != nil {
		return "", err
	}
	b, err := body(s.Body, "body")
	if err != nil {
		return "", err
	}

	lines := []string{
		"CREATE EVENT " + ifNotExists(s.IfNotExists) + name,
		schedule,
	}
	if s.Preserve {
		lines = append(lines, "ON COMPLETION PRESERVE")
	} else {
		lines = append(lines, "ON COMPLETION NOT PRESERVE")
	}
	if s.Disabled {
		lines = append(lines, "DISABLE")
	} else {
		lines = append(lines, "ENABLE")
	}
	if s.Comment != "" {
		lines = append(lines, "COMMENT "+r.str(s.Comment))
	}
	lines = append(lines, "DO", beginEnd(b, "BEGIN"))
	return strings.Join(lines, "\n"), nil
}

// mysqlObject renders the ON target of GRANT/REVOKE. MySQL also accepts
// "*", "*.*" and "db.*".
func mysqlObject(r *renderer, on string) (string, error) {
	switch {
	case on == "*" || on == "*.*":
		return on, nil
	case strings.HasSuffix(on, ".*"):
		db, err := r.ident(strings.TrimSuffix(on, ".*"), "on")
		if err != nil {
			return "", err
		}
		return db + ".*", nil
	}
	return r.qualified(on, "on")
}

func mysqlPrivilegeParts(r *renderer, spec ir.PrivilegeSpec) (privs, on, principal string, err error) {
	if privs, err = r.privileges(spec); err != nil {
		return "", "", "", err
	}
	if on, err = mysqlObject(r, spec.On); err != nil {
		return "", "", "", err
	}
	if principal, err = r.account(spec.To, spec.Host, "to", false); err != nil {
		return "", "", "", err
	}
	return privs, on, principal, nil
}

func mysqlGrant(r *renderer, s *ir.Grant) (string, error) {
	privs, on, to, err := mysqlPrivilegeParts(r, s.PrivilegeSpec)
	if err != nil {
		return "", err
	}
	out := "GRANT " + privs + " ON " + on + " TO " + to
	if s.WithGrantOption {
		out += " WITH GRANT OPTION"
	}
	return out + ";", nil
}

func mysqlRevoke(r *renderer, s *ir.Revoke) (string, error) {
	privs, on, from, err := mysqlPrivilegeParts(r, s.PrivilegeSpec)
	if err != nil {
		return "", err
	}
	return "REVOKE " + privs + " ON " + on + " FROM " + from + ";", nil
}
