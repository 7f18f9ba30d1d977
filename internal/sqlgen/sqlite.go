package sqlgen

import (
	"strings"

	"github.com/roach88/sqlir/internal/ir"
)

// sqliteGenerators covers SQLite 3.35 and later. SQLite has no databases,
// schemas, sequences, routines, accounts, events, TRUNCATE or DCL; those
// entries stay nil.
func sqliteGenerators() *generators {
	return &generators{
		createTable:   sqliteCreateTable,
		createIndex:   sqliteCreateIndex,
		createView:    sqliteCreateView,
		createTrigger: sqliteCreateTrigger,
		alterTable: func(r *renderer, s *ir.AlterTable) (string, error) {
			// One action per ALTER TABLE.
			return r.alterTable(s, false)
		},
		drop: dropWith(map[ir.ObjectType]dropRule{
			ir.ObjectTable:   {ifExists: true},
			ir.ObjectIndex:   {ifExists: true},
			ir.ObjectView:    {ifExists: true},
			ir.ObjectTrigger: {ifExists: true},
		}),

		insert: genInsert,
		update: genUpdate,
		delete: genDelete,

		selectQuery: genSelect,

		begin:            beginWith("BEGIN TRANSACTION"),
		commit:           genCommit,
		rollback:         genRollback,
		savepoint:        genSavepoint,
		releaseSavepoint: genReleaseSavepoint,
	}
}

func sqliteCreateTable(r *renderer, s *ir.CreateTable) (string, error) {
	o := s.Options
	switch {
	case o.Engine != "":
		return "", r.unsupported(s, "ENGINE")
	case o.Charset != "":
		return "", r.unsupported(s, "CHARSET")
	case o.Collation != "":
		return "", r.unsupported(s, "table COLLATE")
	case o.Comment != "":
		return "", r.unsupported(s, "table COMMENT")
	}

	def, err := r.tableDefinition(s)
	if err != nil {
		return "", err
	}

	var opts []string
	if o.WithoutRowID {
		opts = append(opts, "WITHOUT ROWID")
	}
	if o.Strict {
		opts = append(opts, "STRICT")
	}
	if len(opts) > 0 {
		def += " " + strings.Join(opts, ", ")
	}
	return def + ";", nil
}

func sqliteCreateIndex(r *renderer, s *ir.CreateIndex) (string, error) {
	switch {
	case s.Kind != "":
		return "", r.unsupported(s, string(s.Kind)+" index")
	case s.Method != "":
		return "", r.unsupported(s, "USING "+s.Method)
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
	where, err := r.where(s.Where)
	if err != nil {
		return "", err
	}

	out := "CREATE "
	if s.Unique {
		out += "UNIQUE "
	}
	return out + "INDEX " + ifNotExists(s.IfNotExists) + name + " ON " + table + " (" + cols + ")" + where + ";", nil
}

func sqliteCreateView(r *renderer, s *ir.CreateView) (string, error) {
	switch {
	case s.OrReplace:
		return "", r.unsupported(s, "OR REPLACE")
	case s.CheckOption != ir.CheckNone:
		return "", r.unsupported(s, "CHECK OPTION")
	}

	head, err := r.viewHead(s)
	if err != nil {
		return "", err
	}
	query, err := r.viewBody(s)
	if err != nil {
		return "", err
	}

	out := "CREATE "
	if s.Temporary {
		out += "TEMPORARY "
	}
	return out + "VIEW " + ifNotExists(s.IfNotExists) + head + " AS " + query + ";", nil
}

func sqliteCreateTrigger(r *renderer, s *ir.CreateTrigger) (string, error) {
	t, err := r.triggerParts(s)
	if err != nil {
		return "", err
	}
	switch {
	case t.scope == ir.ForEachStatement:
		return "", r.unsupported(s, "FOR EACH STATEMENT")
	case s.OrReplace:
		return "", r.unsupported(s, "OR REPLACE")
	case s.Function != "":
		return "", r.unsupported(s, "EXECUTE FUNCTION")
	}
	when, err := r.whenClause(s.When)
	if err != nil {
		return "", err
	}
	b, err := body(s.Body, "body")
	if err != nil {
		return "", err
	}

	return "CREATE TRIGGER " + ifNotExists(s.IfNotExists) + t.name + " " + string(t.timing) + " " + string(t.event) +
		" ON " + t.table + " FOR EACH ROW" + when + "\n" + beginEnd(b, "BEGIN"), nil
}
