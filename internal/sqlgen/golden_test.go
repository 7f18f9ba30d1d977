package sqlgen

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
)

func i64(n int64) *int64 { return &n }

// blogScript is a small schema plus a unit of work touching most statement
// categories.
func blogScript() []ir.Statement {
	integer := ir.AbstractType{BaseType: "int"}
	varchar := func(n int) ir.AbstractType { return ir.AbstractType{BaseType: "varchar", Length: n} }

	return []ir.Statement{
		&ir.CreateTable{
			Name: "authors",
			Columns: []ir.Column{
				{Name: "id", Type: integer, PrimaryKey: true, AutoIncrement: true},
				{Name: "name", Type: varchar(100), NotNull: true},
				{Name: "email", Type: varchar(255), NotNull: true, Unique: true},
				{Name: "active", Type: ir.AbstractType{BaseType: "boolean"}, NotNull: true, Default: ir.Bool(true)},
				{Name: "created_at", Type: ir.AbstractType{BaseType: "datetime"}, NotNull: true, Default: ir.String("CURRENT_TIMESTAMP")},
			},
		},
		&ir.CreateTable{
			Name: "posts",
			Columns: []ir.Column{
				{Name: "id", Type: integer, PrimaryKey: true, AutoIncrement: true},
				{Name: "author_id", Type: integer, NotNull: true},
				{Name: "title", Type: varchar(200), NotNull: true},
				{Name: "body", Type: ir.AbstractType{BaseType: "text"}},
			},
			Constraints: []ir.Constraint{
				ir.ForeignKeyConstraint{
					Name:       "fk_posts_author",
					Columns:    []string{"author_id"},
					RefTable:   "authors",
					RefColumns: []string{"id"},
					OnDelete:   ir.ActionCascade,
				},
				ir.UniqueConstraint{Name: "uq_posts_title", Columns: []string{"author_id", "title"}},
			},
		},
		&ir.CreateIndex{Name: "idx_posts_author", Table: "posts", Columns: []string{"author_id"}},
		&ir.CreateView{
			Name: "active_authors",
			Query: &ir.Select{
				Columns: []ir.SelectColumn{ir.Col("id"), ir.Col("name")},
				From:    "authors",
				Where:   ir.Eq("active", ir.Bool(true)),
			},
		},
		&ir.Begin{},
		&ir.Insert{
			Table: "authors",
			Values: ir.Assignments{
				ir.Set("name", ir.String("O'Brien")),
				ir.Set("email", ir.String("ob@example.com")),
			},
		},
		&ir.Savepoint{Name: "before_posts"},
		&ir.Insert{
			Table: "posts",
			Values: ir.Assignments{
				ir.Set("author_id", ir.Int(1)),
				ir.Set("title", ir.String("draft: hello")),
			},
		},
		&ir.Update{
			Table: "posts",
			Set:   ir.Assignments{ir.Set("title", ir.String("Hello"))},
			Where: ir.Eq("id", ir.Int(1)),
		},
		&ir.ReleaseSavepoint{Name: "before_posts"},
		&ir.Delete{
			Table: "posts",
			Where: ir.AllOf(
				ir.In("author_id", ir.Ints(1, 2)),
				ir.Not{Inner: ir.Compare{Field: "title", Operator: ir.OpLike, Value: ir.String("draft%")}},
			),
		},
		&ir.Commit{},
		&ir.Select{
			Columns: []ir.SelectColumn{
				ir.Col("a.name"),
				{Name: "p.id", Aggregate: ir.AggCount, Alias: "posts"},
			},
			From:  "authors",
			Alias: "a",
			Joins: []ir.Join{{
				Type:  ir.JoinLeft,
				Table: "posts",
				Alias: "p",
				On:    ir.Eq("p.author_id", ir.Raw("a.id")),
			}},
			GroupBy: []string{"a.name"},
			OrderBy: []ir.OrderBy{{Column: "posts", Direction: ir.Desc}},
			Limit:   i64(10),
		},
	}
}

func TestGolden_BlogScript(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, id := range Dialects() {
		t.Run(string(id), func(t *testing.T) {
			sql, err := GenerateScript(blogScript(), id)
			require.NoError(t, err)
			g.Assert(t, "blog_"+string(id), []byte(sql+"\n"))
		})
	}
}

func TestGolden_Routines(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	stmts := []ir.Statement{
		&ir.CreateProcedure{
			Name: "archive_posts",
			Parameters: []ir.Parameter{
				{Mode: ir.ParamIn, Name: "cutoff", Type: ir.AbstractType{BaseType: "datetime"}},
			},
			Body: "DELETE FROM posts WHERE created_at < cutoff",
		},
		&ir.CreateFunction{
			Name: "add_tax",
			Parameters: []ir.Parameter{
				{Name: "amount", Type: ir.AbstractType{BaseType: "decimal", Precision: 10, Scale: intp(2)}},
			},
			Returns:       ir.AbstractType{BaseType: "decimal", Precision: 10, Scale: intp(2)},
			Body:          "RETURN amount * 1.2",
			Deterministic: true,
		},
	}

	for _, id := range []dialect.ID{dialect.MySQL, dialect.Postgres} {
		t.Run(string(id), func(t *testing.T) {
			sql, err := GenerateScript(stmts, id)
			require.NoError(t, err)
			g.Assert(t, "routines_"+string(id), []byte(sql+"\n"))
		})
	}
}

func intp(n int) *int { return &n }
