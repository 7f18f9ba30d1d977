package sqlgen

import (
	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
)

// generators is one dialect's table of statement generators. A nil entry
// means the dialect does not implement that operation; the dispatcher then
// fails with UnsupportedOperationError rather than borrowing another
// dialect's output.
type generators struct {
	createTable     func(*renderer, *ir.CreateTable) (string, error)
	createIndex     func(*renderer, *ir.CreateIndex) (string, error)
	createView      func(*renderer, *ir.CreateView) (string, error)
	createDatabase  func(*renderer, *ir.CreateDatabase) (string, error)
	createSchema    func(*renderer, *ir.CreateSchema) (string, error)
	createSequence  func(*renderer, *ir.CreateSequence) (string, error)
	createTrigger   func(*renderer, *ir.CreateTrigger) (string, error)
	createProcedure func(*renderer, *ir.CreateProcedure) (string, error)
	createFunction  func(*renderer, *ir.CreateFunction) (string, error)
	createRole      func(*renderer, *ir.CreateRole) (string, error)
	createUser      func(*renderer, *ir.CreateUser) (string, error)
	createEvent     func(*renderer, *ir.CreateEvent) (string, error)
	alterTable      func(*renderer, *ir.AlterTable) (string, error)
	drop            func(*renderer, *ir.Drop) (string, error)
	truncate        func(*renderer, *ir.Truncate) (string, error)

	insert func(*renderer, *ir.Insert) (string, error)
	update func(*renderer, *ir.Update) (string, error)
	delete func(*renderer, *ir.Delete) (string, error)

	selectQuery func(*renderer, *ir.Select) (string, error)

	grant  func(*renderer, *ir.Grant) (string, error)
	revoke func(*renderer, *ir.Revoke) (string, error)

	begin            func(*renderer, *ir.Begin) (string, error)
	commit           func(*renderer, *ir.Commit) (string, error)
	rollback         func(*renderer, *ir.Rollback) (string, error)
	savepoint        func(*renderer, *ir.Savepoint) (string, error)
	releaseSavepoint func(*renderer, *ir.ReleaseSavepoint) (string, error)
	setTransaction   func(*renderer, *ir.SetTransaction) (string, error)
}

// entry pairs a dialect's renderer with its generator table.
type entry struct {
	r *renderer
	g *generators
}

// catalog is built once at package initialisation and only read afterwards,
// so concurrent Generate calls need no locking.
var catalog = buildCatalog()

func buildCatalog() map[dialect.ID]entry {
	tables := map[dialect.ID]*generators{
		dialect.MySQL:    mysqlGenerators(),
		dialect.Postgres: postgresGenerators(),
		dialect.SQLite:   sqliteGenerators(),
	}

	c := make(map[dialect.ID]entry, len(tables))
	for id, g := range tables {
		traits, ok := dialect.Lookup(id)
		if !ok {
			panic("sqlgen: no traits for dialect " + string(id))
		}
		c[id] = entry{r: newRenderer(traits), g: g}
	}
	return c
}

// Dialects returns every dialect with a catalog entry, in a fixed order.
func Dialects() []dialect.ID {
	var out []dialect.ID
	for _, id := range dialect.All() {
		if _, ok := catalog[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Capability is one catalog row: an operation and whether a dialect has a
// generator for it.
type Capability struct {
	Category  ir.Category  `json:"category"`
	Operation ir.Operation `json:"operation"`
	Supported bool         `json:"supported"`
}

// Capabilities lists the catalog rows for id, or nil for an unknown dialect.
// DROP is reported once; per-object support is decided by the generator.
func Capabilities(id dialect.ID) []Capability {
	e, ok := catalog[id]
	if !ok {
		return nil
	}
	g := e.g

	row := func(c ir.Category, op ir.Operation, supported bool) Capability {
		return Capability{Category: c, Operation: op, Supported: supported}
	}
	return []Capability{
		row(ir.DDL, ir.OpCreateTable, g.createTable != nil),
		row(ir.DDL, ir.OpCreateIndex, g.createIndex != nil),
		row(ir.DDL, ir.OpCreateView, g.createView != nil),
		row(ir.DDL, ir.OpCreateDatabase, g.createDatabase != nil),
		row(ir.DDL, ir.OpCreateSchema, g.createSchema != nil),
		row(ir.DDL, ir.OpCreateSequence, g.createSequence != nil),
		row(ir.DDL, ir.OpCreateTrigger, g.createTrigger != nil),
		row(ir.DDL, ir.OpCreateProcedure, g.createProcedure != nil),
		row(ir.DDL, ir.OpCreateFunction, g.createFunction != nil),
		row(ir.DDL, ir.OpCreateRole, g.createRole != nil),
		row(ir.DDL, ir.OpCreateUser, g.createUser != nil),
		row(ir.DDL, ir.OpCreateEvent, g.createEvent != nil),
		row(ir.DDL, ir.OpAlterTable, g.alterTable != nil),
		row(ir.DDL, ir.OpDrop, g.drop != nil),
		row(ir.DDL, ir.OpTruncate, g.truncate != nil),
		row(ir.DML, ir.OpInsert, g.insert != nil),
		row(ir.DML, ir.OpUpdate, g.update != nil),
		row(ir.DML, ir.OpDelete, g.delete != nil),
		row(ir.DQL, ir.OpSelect, g.selectQuery != nil),
		row(ir.DCL, ir.OpGrant, g.grant != nil),
		row(ir.DCL, ir.OpRevoke, g.revoke != nil),
		row(ir.TCL, ir.OpBegin, g.begin != nil),
		row(ir.TCL, ir.OpCommit, g.commit != nil),
		row(ir.TCL, ir.OpRollback, g.rollback != nil),
		row(ir.TCL, ir.OpSavepoint, g.savepoint != nil),
		row(ir.TCL, ir.OpReleaseSavepoint, g.releaseSavepoint != nil),
		row(ir.TCL, ir.OpSetTransaction, g.setTransaction != nil),
	}
}
