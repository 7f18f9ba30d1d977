package sqlgen

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/sqlerr"
)

func usersTable() *ir.CreateTable {
	return &ir.CreateTable{
		Name: "users",
		Columns: []ir.Column{
			{Name: "id", Type: ir.AbstractType{BaseType: "int"}, PrimaryKey: true, AutoIncrement: true},
			{Name: "email", Type: ir.AbstractType{BaseType: "varchar", Length: 100}, Unique: true},
		},
	}
}

func TestGenerate_UsersTable(t *testing.T) {
	got, err := Generate(usersTable(), dialect.MySQL)
	require.NoError(t, err)

	assert.Equal(t, "CREATE TABLE `users` (\n  `id` INT AUTO_INCREMENT PRIMARY KEY,\n  `email` VARCHAR(100) UNIQUE\n);", got)
	assert.Less(t, strings.Index(got, "AUTO_INCREMENT"), strings.Index(got, "UNIQUE"))
}

func TestGenerate_UsersTableAllDialects(t *testing.T) {
	tests := []struct {
		id   dialect.ID
		want string
	}{
		{dialect.MySQL, "CREATE TABLE `users` (\n  `id` INT AUTO_INCREMENT PRIMARY KEY,\n  `email` VARCHAR(100) UNIQUE\n);"},
		{dialect.Postgres, "CREATE TABLE \"users\" (\n  \"id\" INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,\n  \"email\" VARCHAR(100) UNIQUE\n);"},
		{dialect.SQLite, "CREATE TABLE `users` (\n  `id` INTEGER PRIMARY KEY AUTOINCREMENT,\n  `email` TEXT UNIQUE\n);"},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			got, err := Generate(usersTable(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerate_RawSQLPassthrough(t *testing.T) {
	raw := "SELECT `weird` FROM t WHERE x = 'unescaped ' OR 1=1"

	// Other fields are invalid on purpose; the passthrough ignores them.
	stmt := &ir.Select{Meta: ir.Meta{Raw: raw}, From: "bad name;"}

	for _, id := range []dialect.ID{dialect.MySQL, dialect.Postgres, dialect.SQLite, "oracle"} {
		got, err := Generate(stmt, id)
		require.NoError(t, err, id)
		assert.Equal(t, raw, got, id)
	}
}

func TestGenerate_UnsupportedDialect(t *testing.T) {
	got, err := Generate(&ir.Commit{}, "oracle")
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, sqlerr.IsUnsupportedDialect(err))

	var de *sqlerr.UnsupportedDialectError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "oracle", de.Dialect)
}

func TestGenerate_UnsupportedOperation(t *testing.T) {
	tests := []struct {
		name string
		stmt ir.Statement
		id   dialect.ID
		op   string
	}{
		{"mysql sequence", &ir.CreateSequence{Name: "s"}, dialect.MySQL, "CREATE SEQUENCE"},
		{"postgres event", &ir.CreateEvent{Name: "e", Body: "SELECT 1"}, dialect.Postgres, "CREATE EVENT"},
		{"sqlite grant", &ir.Grant{PrivilegeSpec: ir.PrivilegeSpec{Privileges: []ir.Privilege{ir.PrivSelect}, On: "t", To: "u"}}, dialect.SQLite, "GRANT"},
		{"sqlite database", &ir.CreateDatabase{Name: "app"}, dialect.SQLite, "CREATE DATABASE"},
		{"sqlite truncate", &ir.Truncate{Table: "t"}, dialect.SQLite, "TRUNCATE"},
		{"sqlite set transaction", &ir.SetTransaction{ReadOnly: true}, dialect.SQLite, "SET TRANSACTION"},
		{"mysql drop sequence", &ir.Drop{Object: ir.ObjectSequence, Name: "s"}, dialect.MySQL, "DROP SEQUENCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.stmt, tt.id)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.True(t, sqlerr.IsUnsupportedOperation(err), err.Error())

			var oe *sqlerr.UnsupportedOperationError
			require.ErrorAs(t, err, &oe)
			assert.Equal(t, string(tt.id), oe.Dialect)
			assert.Equal(t, tt.op, oe.Operation)
		})
	}
}

func TestGenerate_NilStatement(t *testing.T) {
	var nilInsert *ir.Insert

	for _, stmt := range []ir.Statement{nil, nilInsert} {
		got, err := Generate(stmt, dialect.MySQL)
		require.Error(t, err)
		assert.Empty(t, got)
		assert.True(t, sqlerr.IsValidation(err))
	}
}

func TestGenerate_TypedNilBeforeDialect(t *testing.T) {
	tests := []struct {
		name string
		stmt ir.Statement
		id   dialect.ID
	}{
		{"create_table", (*ir.CreateTable)(nil), dialect.MySQL},
		{"drop_unknown_dialect", (*ir.Drop)(nil), dialect.ID("oracle")},
		{"select_sqlite", (*ir.Select)(nil), dialect.SQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			var err error
			require.NotPanics(t, func() { got, err = Generate(tt.stmt, tt.id) })
			assert.Empty(t, got)
			assert.Equal(t, sqlerr.KindValidation, sqlerr.KindOf(err))
		})
	}
}

func TestGenerate_InsertAlignment(t *testing.T) {
	stmt := &ir.Insert{
		Table:  "t",
		Values: ir.Assignments{ir.Set("a", ir.Int(1)), ir.Set("b", ir.String("x"))},
	}

	got, err := Generate(stmt, dialect.MySQL)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `t` (`a`, `b`) VALUES (1, 'x');", got)

	got, err = Generate(stmt, dialect.Postgres)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "t" ("a", "b") VALUES (1, 'x');`, got)
}

func TestGenerate_ValidationLeavesNoText(t *testing.T) {
	stmts := []ir.Statement{
		&ir.CreateTable{Name: "users; DROP TABLE users", Columns: usersTable().Columns},
		&ir.Insert{Table: "t", Values: ir.Assignments{ir.Set("a b", ir.Int(1))}},
		&ir.Delete{Table: "t", Where: ir.Eq("a", ir.List{ir.Int(1)})},
		&ir.Savepoint{},
	}

	for i, stmt := range stmts {
		for _, id := range Dialects() {
			got, err := Generate(stmt, id)
			require.Error(t, err, "stmt %d on %s", i, id)
			assert.Empty(t, got)
			assert.True(t, sqlerr.IsValidation(err), err.Error())
		}
	}
}

func TestGenerate_ConditionErrorsSurface(t *testing.T) {
	stmt := &ir.Delete{Table: "t", Where: ir.Compare{Field: "a", Operator: "===", Value: ir.Int(1)}}

	got, err := Generate(stmt, dialect.Postgres)
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, sqlerr.IsUnsupportedCondition(err))
}

func TestGenerate_Deterministic(t *testing.T) {
	stmts := []ir.Statement{
		usersTable(),
		&ir.Insert{Table: "t", Values: ir.Assignments{ir.Set("z", ir.Int(1)), ir.Set("a", ir.Int(2)), ir.Set("m", ir.Null{})}},
		&ir.Select{
			From:    "orders",
			Where:   ir.AllOf(ir.Eq("status", ir.String("paid")), ir.In("region", ir.Strings("eu", "us"))),
			OrderBy: []ir.OrderBy{{Column: "id"}},
		},
	}

	want := make(map[string]string)
	for _, id := range Dialects() {
		for i, stmt := range stmts {
			sql, err := Generate(stmt, id)
			require.NoError(t, err)
			want[fmt.Sprintf("%s/%d", id, i)] = sql
		}
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, id := range Dialects() {
				for i, stmt := range stmts {
					key := fmt.Sprintf("%s/%d", id, i)
					sql, err := Generate(stmt, id)
					if err != nil || sql != want[key] {
						errs <- key
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for key := range errs {
		t.Errorf("output for %s changed under concurrent generation", key)
	}
}

func TestGenerateScript(t *testing.T) {
	stmts := []ir.Statement{
		&ir.Begin{},
		&ir.Insert{Table: "t", Values: ir.Assignments{ir.Set("a", ir.Int(1))}},
		&ir.Commit{},
	}

	got, err := GenerateScript(stmts, dialect.SQLite)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN TRANSACTION;\nINSERT INTO `t` (`a`) VALUES (1);\nCOMMIT;", got)
}

func TestGenerateScript_AllOrNothing(t *testing.T) {
	stmts := []ir.Statement{
		&ir.Begin{},
		&ir.Insert{Table: "bad-name"},
		&ir.Commit{},
	}

	got, err := GenerateScript(stmts, dialect.MySQL)
	require.Error(t, err)
	assert.Empty(t, got)
	assert.True(t, sqlerr.IsValidation(err))

	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Index)
}

func TestDialectsAndCapabilities(t *testing.T) {
	assert.Equal(t, []dialect.ID{dialect.MySQL, dialect.Postgres, dialect.SQLite}, Dialects())
	assert.Nil(t, Capabilities("oracle"))

	supported := func(id dialect.ID, op ir.Operation) bool {
		for _, c := range Capabilities(id) {
			if c.Operation == op {
				return c.Supported
			}
		}
		t.Fatalf("operation %s missing from capabilities", op)
		return false
	}

	assert.True(t, supported(dialect.Postgres, ir.OpCreateSequence))
	assert.False(t, supported(dialect.MySQL, ir.OpCreateSequence))
	assert.True(t, supported(dialect.MySQL, ir.OpCreateEvent))
	assert.False(t, supported(dialect.SQLite, ir.OpGrant))
	assert.True(t, supported(dialect.SQLite, ir.OpSelect))
}
