package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/roach88/sqlir/internal/sqlerr"
)

// statementKinds maps the "kind" discriminator of the JSON contract onto a
// constructor for the concrete statement.
var statementKinds = map[string]func() Statement{
	"create_table":      func() Statement { return &CreateTable{} },
	"create_index":      func() Statement { return &CreateIndex{} },
	"create_view":       func() Statement { return &CreateView{} },
	"create_database":   func() Statement { return &CreateDatabase{} },
	"create_schema":     func() Statement { return &CreateSchema{} },
	"create_sequence":   func() Statement { return &CreateSequence{} },
	"create_trigger":    func() Statement { return &CreateTrigger{} },
	"create_procedure":  func() Statement { return &CreateProcedure{} },
	"create_function":   func() Statement { return &CreateFunction{} },
	"create_role":       func() Statement { return &CreateRole{} },
	"create_user":       func() Statement { return &CreateUser{} },
	"create_event":      func() Statement { return &CreateEvent{} },
	"alter_table":       func() Statement { return &AlterTable{} },
	"drop":              func() Statement { return &Drop{} },
	"truncate":          func() Statement { return &Truncate{} },
	"insert":            func() Statement { return &Insert{} },
	"update":            func() Statement { return &Update{} },
	"delete":            func() Statement { return &Delete{} },
	"select":            func() Statement { return &Select{} },
	"grant":             func() Statement { return &Grant{} },
	"revoke":            func() Statement { return &Revoke{} },
	"begin":             func() Statement { return &Begin{} },
	"commit":            func() Statement { return &Commit{} },
	"rollback":          func() Statement { return &Rollback{} },
	"savepoint":         func() Statement { return &Savepoint{} },
	"release_savepoint": func() Statement { return &ReleaseSavepoint{} },
	"set_transaction":   func() Statement { return &SetTransaction{} },
}

// Kinds returns every statement kind of the JSON contract, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(statementKinds))
	for k := range statementKinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// DecodeError reports a statement that could not be decoded. It classifies as
// a sqlerr.ValidationError unless Err already carries a kind of its own, such
// as an UnsupportedConditionError from a where clause.
type DecodeError struct {
	Index   int    // position inside a document, -1 for a single statement
	Kind    string // statement kind if it was readable
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	prefix := "statement"
	if e.Index >= 0 {
		prefix = fmt.Sprintf("statements[%d]", e.Index)
	}
	if e.Kind != "" {
		prefix += " (" + e.Kind + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *DecodeError) Unwrap() []error {
	field := "statement"
	if e.Index >= 0 {
		field = fmt.Sprintf("statements[%d]", e.Index)
	}
	ve := &sqlerr.ValidationError{Field: field, Message: e.Message}
	switch {
	case e.Err == nil:
		return []error{ve}
	case sqlerr.KindOf(e.Err) != sqlerr.KindOther:
		return []error{e.Err}
	default:
		return []error{e.Err, ve}
	}
}

type envelope struct {
	Version string `json:"version"`
	Kind    string `json:"kind"`
}

// DecodeStatement decodes one statement object of the JSON contract.
func DecodeStatement(data []byte) (Statement, error) {
	return decodeStatement(data, -1)
}

func decodeStatement(data []byte, index int) (Statement, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Index: index, Message: "invalid statement object", Err: err}
	}
	if env.Version != "" && env.Version != IRVersion {
		return nil, &DecodeError{Index: index, Kind: env.Kind,
			Message: fmt.Sprintf("unsupported IR version %q (want %q)", env.Version, IRVersion)}
	}
	if env.Kind == "" {
		return nil, &DecodeError{Index: index, Message: `missing "kind"`}
	}

	ctor, ok := statementKinds[env.Kind]
	if !ok {
		return nil, &DecodeError{Index: index, Kind: env.Kind, Message: "unknown statement kind"}
	}

	stmt := ctor()
	if err := json.Unmarshal(data, stmt); err != nil {
		return nil, &DecodeError{Index: index, Kind: env.Kind, Message: "invalid payload", Err: err}
	}
	return stmt, nil
}

// DecodeDocument decodes a document holding one statement, an array of
// statements, or an object {"statements": [...]}.
func DecodeDocument(data []byte) ([]Statement, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &DecodeError{Index: -1, Message: "empty document"}
	}

	var items []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, &DecodeError{Index: -1, Message: "invalid statement array", Err: err}
		}
	case '{':
		var wrapper struct {
			Version    string            `json:"version"`
			Statements []json.RawMessage `json:"statements"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, &DecodeError{Index: -1, Message: "invalid document", Err: err}
		}
		if wrapper.Statements == nil {
			stmt, err := decodeStatement(data, -1)
			if err != nil {
				return nil, err
			}
			return []Statement{stmt}, nil
		}
		if wrapper.Version != "" && wrapper.Version != IRVersion {
			return nil, &DecodeError{Index: -1,
				Message: fmt.Sprintf("unsupported IR version %q (want %q)", wrapper.Version, IRVersion)}
		}
		items = wrapper.Statements
	default:
		return nil, &DecodeError{Index: -1, Message: "document must be an object or an array"}
	}

	stmts := make([]Statement, 0, len(items))
	for i, item := range items {
		stmt, err := decodeStatement(item, i)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}
