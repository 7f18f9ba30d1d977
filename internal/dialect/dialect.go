// Package dialect names the supported SQL dialects and the lexical traits
// that differ between them.
package dialect

import "strings"

// ID identifies a SQL dialect.
type ID string

const (
	MySQL    ID = "mysql"
	Postgres ID = "postgres"
	SQLite   ID = "sqlite"
)

// Traits holds the lexical rules of one dialect. Traits values are plain data
// and safe to share.
type Traits struct {
	ID ID

	// IdentQuote opens and closes a quoted identifier.
	IdentQuote byte

	// BackslashEscapes is set when the server treats '\' inside string
	// literals as an escape character.
	BackslashEscapes bool

	// True and False are boolean literals.
	True, False string

	// MaxIdentLen is the longest identifier the server accepts; 0 means no limit.
	MaxIdentLen int

	// OffsetOnlyLimit is the LIMIT emitted when a query has OFFSET but no
	// LIMIT. Empty means OFFSET may stand alone.
	OffsetOnlyLimit string

	// FullJoin is set when FULL [OUTER] JOIN is available.
	FullJoin bool

	// Returning is set when INSERT/UPDATE/DELETE accept a RETURNING clause.
	Returning bool
}

var traits = map[ID]Traits{
	MySQL: {
		ID:               MySQL,
		IdentQuote:       '`',
		BackslashEscapes: true,
		True:             "TRUE",
		False:            "FALSE",
		MaxIdentLen:      64,
		OffsetOnlyLimit:  "18446744073709551615",
	},
	Postgres: {
		ID:          Postgres,
		IdentQuote:  '"',
		True:        "TRUE",
		False:       "FALSE",
		MaxIdentLen: 63,
		FullJoin:    true,
		Returning:   true,
	},
	SQLite: {
		ID:              SQLite,
		IdentQuote:      '`',
		True:            "1",
		False:           "0",
		OffsetOnlyLimit: "-1",
		FullJoin:        true,
		Returning:       true,
	},
}

// aliases maps accepted spellings onto canonical identifiers.
var aliases = map[string]ID{
	"mysql":      MySQL,
	"mariadb":    MySQL,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pg":         Postgres,
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
}

// Parse normalises a user-supplied dialect name. The second result is false
// when the name is unknown; the returned ID is then the input unchanged so
// callers can report it.
func Parse(name string) (ID, bool) {
	id, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ID(name), false
	}
	return id, true
}

// Lookup returns the traits for id.
func Lookup(id ID) (Traits, bool) {
	t, ok := traits[id]
	return t, ok
}

// All returns every known dialect in a fixed order.
func All() []ID {
	return []ID{MySQL, Postgres, SQLite}
}

func (id ID) String() string { return string(id) }
