package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Assignment is one column = value pair.
type Assignment struct {
	Column string
	Value  Value
}

// Assignments is an ordered column/value list. Column lists and value lists
// of INSERT and UPDATE are both derived from it, so they stay aligned.
//
// In JSON it is an object; key order is preserved.
type Assignments []Assignment

// Set builds an Assignment.
func Set(column string, v Value) Assignment {
	return Assignment{Column: column, Value: v}
}

// Columns returns the column names in order.
func (a Assignments) Columns() []string {
	cols := make([]string, len(a))
	for i, as := range a {
		cols[i] = as.Column
	}
	return cols
}

// UnmarshalJSON reads an object token by token so declaration order survives.
// Duplicate keys are rejected.
func (a *Assignments) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("assignments must be an object")
	}

	out := Assignments{}
	seen := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		if seen[key] {
			return fmt.Errorf("duplicate column %q", key)
		}
		seen[key] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		v, err := DecodeValue(raw)
		if err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		out = append(out, Assignment{Column: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*a = out
	return nil
}

// Insert describes INSERT INTO ... VALUES.
type Insert struct {
	Meta
	Table     string      `json:"table"`
	Values    Assignments `json:"values"`
	Returning []string    `json:"returning,omitempty"` // PostgreSQL, SQLite
}

// Update describes UPDATE ... SET.
type Update struct {
	Meta
	Table     string      `json:"table"`
	Set       Assignments `json:"set"`
	Where     Condition   `json:"-"`
	Returning []string    `json:"returning,omitempty"`
}

// UnmarshalJSON decodes the WHERE condition.
func (x *Update) UnmarshalJSON(data []byte) error {
	type alias Update
	aux := struct {
		*alias
		Where json.RawMessage `json:"where"`
	}{alias: (*alias)(x)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if x.Where, err = decodeOptionalCondition(aux.Where); err != nil {
		return fmt.Errorf("where: %w", err)
	}
	return nil
}

// Delete describes DELETE FROM.
type Delete struct {
	Meta
	Table     string    `json:"table"`
	Where     Condition `json:"-"`
	Returning []string  `json:"returning,omitempty"`
}

// UnmarshalJSON decodes the WHERE condition.
func (x *Delete) UnmarshalJSON(data []byte) error {
	type alias Delete
	aux := struct {
		*alias
		Where json.RawMessage `json:"where"`
	}{alias: (*alias)(x)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if x.Where, err = decodeOptionalCondition(aux.Where); err != nil {
		return fmt.Errorf("where: %w", err)
	}
	return nil
}

func (*Insert) Category() Category { return DML }
func (*Update) Category() Category { return DML }
func (*Delete) Category() Category { return DML }

func (*Insert) Operation() Operation { return OpInsert }
func (*Update) Operation() Operation { return OpUpdate }
func (*Delete) Operation() Operation { return OpDelete }

func (*Insert) statement() {}
func (*Update) statement() {}
func (*Delete) statement() {}
