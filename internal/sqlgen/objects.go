package sqlgen

import (
	"strconv"
	"strings"

	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// viewHead renders the quoted view name and its optional column list.
func (r *renderer) viewHead(s *ir.CreateView) (string, error) {
	name, err := r.qualified(s.Name, "name")
	if err != nil {
		return "", err
	}
	if len(s.Columns) == 0 {
		return name, nil
	}
	cols, err := r.identList(s.Columns, "columns")
	if err != nil {
		return "", err
	}
	return name + " (" + cols + ")", nil
}

// viewBody renders the query of a view: a nested SELECT, or a trusted
// definition with any trailing semicolon removed.
func (r *renderer) viewBody(s *ir.CreateView) (string, error) {
	switch {
	case s.Query != nil && s.Definition != "":
		return "", sqlerr.Validationf("query", "set either query or definition, not both")
	case s.Query != nil:
		return r.q.Select(s.Query)
	}

	def := strings.TrimSpace(s.Definition)
	def = strings.TrimSpace(strings.TrimRight(def, ";"))
	if def == "" {
		return "", sqlerr.Validationf("query", "a query or definition is required")
	}
	return def, nil
}

// checkOption renders the WITH ... CHECK OPTION suffix.
func checkOption(opt ir.CheckOption) (string, error) {
	switch ir.CheckOption(strings.ToUpper(string(opt))) {
	case ir.CheckNone:
		return "", nil
	case ir.CheckDefault:
		return " WITH CHECK OPTION", nil
	case ir.CheckLocal:
		return " WITH LOCAL CHECK OPTION", nil
	case ir.CheckCascaded:
		return " WITH CASCADED CHECK OPTION", nil
	}
	return "", sqlerr.Validationf("check_option", "unknown check option %q", opt)
}

// trigger holds the validated, dialect-neutral parts of CREATE TRIGGER.
type trigger struct {
	name   string
	table  string
	timing ir.TriggerTiming
	event  ir.TriggerEvent
	scope  ir.TriggerScope
}

func (r *renderer) triggerParts(s *ir.CreateTrigger) (trigger, error) {
	name, err := r.ident(s.Name, "name")
	if err != nil {
		return trigger{}, err
	}
	table, err := r.qualified(s.Table, "table")
	if err != nil {
		return trigger{}, err
	}

	t := trigger{name: name, table: table, timing: s.Timing, event: s.Event, scope: s.ForEach}
	switch t.timing {
	case ir.TimingBefore, ir.TimingAfter, ir.TimingInsteadOf:
	default:
		return trigger{}, sqlerr.Validationf("timing", "timing must be BEFORE, AFTER or INSTEAD OF, got %q", s.Timing)
	}
	switch t.event {
	case ir.EventInsert, ir.EventUpdate, ir.EventDelete:
	default:
		return trigger{}, sqlerr.Validationf("event", "event must be INSERT, UPDATE or DELETE, got %q", s.Event)
	}
	switch t.scope {
	case "":
		t.scope = ir.ForEachRow
	case ir.ForEachRow, ir.ForEachStatement:
	default:
		return trigger{}, sqlerr.Validationf("for_each", "for_each must be ROW or STATEMENT, got %q", s.ForEach)
	}
	return t, nil
}

// whenClause renders " WHEN (cond)". And and Or already carry their own
// parentheses.
func (r *renderer) whenClause(c ir.Condition) (string, error) {
	if c == nil {
		return "", nil
	}
	sql, err := r.cond(c, "when")
	if err != nil {
		return "", err
	}
	switch c.(type) {
	case ir.And, *ir.And, ir.Or, *ir.Or:
		return " WHEN " + sql, nil
	}
	return " WHEN (" + sql + ")", nil
}

// beginEnd wraps a trusted body in BEGIN ... END. A body that already opens
// with one of the given keywords is emitted as it is.
func beginEnd(s string, opens ...string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		first := strings.ToUpper(fields[0])
		for _, kw := range opens {
			if first == kw {
				return terminate(s)
			}
		}
	}
	return "BEGIN\n" + terminate(s) + "\nEND;"
}

// parameters renders a routine parameter list without the parentheses.
// allowMode reports whether IN/OUT/INOUT may be written.
func (r *renderer) parameters(params []ir.Parameter, allowMode bool) (string, error) {
	parts := make([]string, len(params))
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		field := indexed("parameters", i)
		if seen[p.Name] {
			return "", sqlerr.Validationf(field+".name", "duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true

		name, err := r.ident(p.Name, field+".name")
		if err != nil {
			return "", err
		}
		typ, err := r.typ(p.Type, field+".type")
		if err != nil {
			return "", err
		}

		mode := ir.ParamMode(strings.ToUpper(string(p.Mode)))
		switch mode {
		case "":
			parts[i] = name + " " + typ
			continue
		case ir.ParamIn, ir.ParamOut, ir.ParamInOut:
		default:
			return "", sqlerr.Validationf(field+".mode", "mode must be IN, OUT or INOUT, got %q", p.Mode)
		}
		if !allowMode {
			return "", sqlerr.Validationf(field+".mode", "function parameters take no mode")
		}
		parts[i] = string(mode) + " " + name + " " + typ
	}
	return strings.Join(parts, ", "), nil
}

// dollarQuote wraps body in a dollar-quoted string whose tag does not occur
// in the body.
func dollarQuote(body string) string {
	tag := "$$"
	for n := 0; strings.Contains(body, tag); n++ {
		if n == 0 {
			tag = "$body$"
		} else {
			tag = "$body" + strconv.Itoa(n) + "$"
		}
	}
	return tag + "\n" + body + "\n" + tag
}

// account renders a MySQL account name, 'user' or 'user'@'host'. The name
// must pass the identifier predicate and is then quoted as a string literal.
func (r *renderer) account(name, host, field string, defaultHost bool) (string, error) {
	if err := r.validIdent(name, field); err != nil {
		return "", err
	}
	if host == "" && defaultHost {
		host = "%"
	}
	if host == "" {
		return r.str(name), nil
	}
	return r.str(name) + "@" + r.str(host), nil
}

func (r *renderer) validIdent(name, field string) error {
	_, err := r.ident(name, field)
	return err
}

// privileges renders the privilege list of GRANT or REVOKE. Column-level
// privileges become "PRIV (cols)".
func (r *renderer) privileges(spec ir.PrivilegeSpec) (string, error) {
	if len(spec.Privileges) == 0 {
		return "", sqlerr.Validationf("privileges", "at least one privilege is required")
	}

	var cols string
	if len(spec.Columns) > 0 {
		var err error
		if cols, err = r.identList(spec.Columns, "columns"); err != nil {
			return "", err
		}
		cols = " (" + cols + ")"
	}

	parts := make([]string, len(spec.Privileges))
	seen := make(map[ir.Privilege]bool, len(spec.Privileges))
	for i, p := range spec.Privileges {
		field := indexed("privileges", i)
		if !p.Valid() {
			return "", sqlerr.Validationf(field, "unknown privilege %q", p)
		}
		if seen[p] {
			return "", sqlerr.Validationf(field, "duplicate privilege %q", p)
		}
		seen[p] = true
		if cols != "" && p == ir.PrivDelete {
			return "", sqlerr.Validationf(field, "DELETE cannot be granted on columns")
		}
		parts[i] = string(p) + cols
	}
	return strings.Join(parts, ", "), nil
}

// setTransaction normalises the isolation level and renders the
// characteristic list.
func setTransaction(s *ir.SetTransaction) (string, error) {
	var parts []string
	if s.Isolation != "" {
		level := ir.IsolationLevel(strings.ToUpper(strings.ReplaceAll(string(s.Isolation), "_", " ")))
		if !level.Valid() {
			return "", sqlerr.Validationf("isolation", "unknown isolation level %q", s.Isolation)
		}
		parts = append(parts, "ISOLATION LEVEL "+string(level))
	}
	if s.ReadOnly {
		parts = append(parts, "READ ONLY")
	}
	if len(parts) == 0 {
		return "", sqlerr.Validationf("isolation", "an isolation level or read_only is required")
	}
	return "SET TRANSACTION " + strings.Join(parts, ", ") + ";", nil
}

func genCommit(*renderer, *ir.Commit) (string, error) { return "COMMIT;", nil }

func genRollback(r *renderer, s *ir.Rollback) (string, error) {
	if s.ToSavepoint == "" {
		return "ROLLBACK;", nil
	}
	name, err := r.ident(s.ToSavepoint, "to_savepoint")
	if err != nil {
		return "", err
	}
	return "ROLLBACK TO SAVEPOINT " + name + ";", nil
}

func genSavepoint(r *renderer, s *ir.Savepoint) (string, error) {
	name, err := r.ident(s.Name, "name")
	if err != nil {
		return "", err
	}
	return "SAVEPOINT " + name + ";", nil
}

func genReleaseSavepoint(r *renderer, s *ir.ReleaseSavepoint) (string, error) {
	name, err := r.ident(s.Name, "name")
	if err != nil {
		return "", err
	}
	return "RELEASE SAVEPOINT " + name + ";", nil
}

func genSetTransaction(_ *renderer, s *ir.SetTransaction) (string, error) {
	return setTransaction(s)
}

// beginWith returns a BEGIN generator emitting the given keyword.
func beginWith(keyword string) func(*renderer, *ir.Begin) (string, error) {
	return func(*renderer, *ir.Begin) (string, error) { return keyword + ";", nil }
}

// genTruncate is shared by the dialects that have TRUNCATE TABLE.
func genTruncate(r *renderer, s *ir.Truncate) (string, error) {
	table, err := r.qualified(s.Table, "table")
	if err != nil {
		return "", err
	}
	return "TRUNCATE TABLE " + table + ";", nil
}

// dropRule is one object type a dialect can drop.
type dropRule struct {
	table    bool // requires "ON table"
	ifExists bool
	cascade  bool
}

// dropWith returns a DROP generator over the given per-object rules. Object
// types missing from rules are unsupported.
func dropWith(rules map[ir.ObjectType]dropRule) func(*renderer, *ir.Drop) (string, error) {
	return func(r *renderer, s *ir.Drop) (string, error) {
		obj := ir.ObjectType(strings.ToUpper(string(s.Object)))
		if obj == "" {
			return "", sqlerr.Validationf("object", "is required")
		}
		rule, ok := rules[obj]
		if !ok {
			return "", r.unsupported(s, "")
		}

		name, err := r.qualified(s.Name, "name")
		if err != nil {
			return "", err
		}
		if s.IfExists && !rule.ifExists {
			return "", r.unsupported(s, "IF EXISTS")
		}
		if s.Cascade && !rule.cascade {
			return "", r.unsupported(s, "CASCADE")
		}

		var on string
		switch {
		case rule.table:
			table, err := r.qualified(s.Table, "table")
			if err != nil {
				return "", err
			}
			on = " ON " + table
		case s.Table != "":
			return "", sqlerr.Validationf("table", "DROP %s takes no table on %s", obj, r.d.ID)
		}

		out := "DROP " + string(obj) + " " + ifExists(s.IfExists) + name + on
		if s.Cascade {
			out += " CASCADE"
		}
		return out + ";", nil
	}
}
