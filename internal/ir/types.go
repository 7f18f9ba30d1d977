package ir

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AbstractType is a dialect-independent column type. The type mapper turns it
// into dialect syntax; zero-valued modifiers mean "use the default".
type AbstractType struct {
	BaseType  string `json:"base_type"`
	Length    int    `json:"length,omitempty"`    // varchar(n), char(n)
	Precision int    `json:"precision,omitempty"` // decimal(p, s)
	Scale     *int   `json:"scale,omitempty"`     // nil means default; 0 is a real scale
	Unsigned  bool   `json:"unsigned,omitempty"`
	TimeZone  bool   `json:"time_zone,omitempty"`
}

// typeShorthand matches "varchar(100)" or "decimal(12, 4)".
var typeShorthand = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_ ]*?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)

// ParseType parses the shorthand form of an abstract type: "int",
// "varchar(100)", "decimal(12,4)". A single argument is a length for
// character types and a precision for everything else.
func ParseType(s string) (AbstractType, error) {
	m := typeShorthand.FindStringSubmatch(s)
	if m == nil {
		return AbstractType{}, fmt.Errorf("invalid type %q", s)
	}

	t := AbstractType{BaseType: m[1]}
	if base, ok := strings.CutSuffix(strings.ToLower(t.BaseType), " unsigned"); ok {
		t.BaseType = base
		t.Unsigned = true
	}
	if m[2] == "" {
		return t, nil
	}

	first, _ := strconv.Atoi(m[2])
	switch strings.ToLower(t.BaseType) {
	case "varchar", "char":
		if m[3] != "" {
			return AbstractType{}, fmt.Errorf("invalid type %q: %s takes a single length", s, t.BaseType)
		}
		t.Length = first
	default:
		t.Precision = first
		if m[3] != "" {
			scale, _ := strconv.Atoi(m[3])
			t.Scale = &scale
		}
	}
	return t, nil
}

// UnmarshalJSON accepts either the object form or the shorthand string form.
func (t *AbstractType) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseType(s)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	type alias AbstractType
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*t = AbstractType(a)
	return nil
}

// Column is one column definition of a CREATE TABLE or ALTER TABLE ADD COLUMN.
type Column struct {
	Name          string       `json:"name"`
	Type          AbstractType `json:"type"`
	NotNull       bool         `json:"not_null,omitempty"`
	Default       Value        `json:"-"` // nil means no DEFAULT clause
	AutoIncrement bool         `json:"auto_increment,omitempty"`
	PrimaryKey    bool         `json:"primary_key,omitempty"`
	Unique        bool         `json:"unique,omitempty"`
	Generated     *Generated   `json:"generated,omitempty"`
	OnUpdate      Value        `json:"-"` // MySQL only
	Comment       string       `json:"comment,omitempty"`
}

// Generated describes a generated (computed) column. Expression is trusted
// SQL and is emitted verbatim.
type Generated struct {
	Expression string `json:"expression"`
	Stored     bool   `json:"stored,omitempty"`
}

// UnmarshalJSON decodes the Value-typed fields through DecodeValue.
func (c *Column) UnmarshalJSON(data []byte) error {
	type alias Column
	aux := struct {
		*alias
		Default  json.RawMessage `json:"default"`
		OnUpdate json.RawMessage `json:"on_update"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if c.Default, err = decodeOptionalValue(aux.Default); err != nil {
		return fmt.Errorf("column %q default: %w", c.Name, err)
	}
	if c.OnUpdate, err = decodeOptionalValue(aux.OnUpdate); err != nil {
		return fmt.Errorf("column %q on_update: %w", c.Name, err)
	}
	return nil
}

// ReferentialAction is the closed set of foreign-key actions.
type ReferentialAction string

const (
	ActionCascade    ReferentialAction = "CASCADE"
	ActionSetNull    ReferentialAction = "SET NULL"
	ActionSetDefault ReferentialAction = "SET DEFAULT"
	ActionRestrict   ReferentialAction = "RESTRICT"
	ActionNoAction   ReferentialAction = "NO ACTION"
)

// Valid reports whether a is one of the known actions.
func (a ReferentialAction) Valid() bool {
	switch a {
	case ActionCascade, ActionSetNull, ActionSetDefault, ActionRestrict, ActionNoAction:
		return true
	}
	return false
}

// Constraint is a sealed interface for table constraints.
type Constraint interface {
	constraint()
	// ConstraintName returns the optional constraint name.
	ConstraintName() string
}

// PrimaryKeyConstraint is a table-level PRIMARY KEY.
type PrimaryKeyConstraint struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
}

// UniqueConstraint is a table-level UNIQUE.
type UniqueConstraint struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
}

// ForeignKeyConstraint is a FOREIGN KEY ... REFERENCES clause.
type ForeignKeyConstraint struct {
	Name       string            `json:"name,omitempty"`
	Columns    []string          `json:"columns"`
	RefTable   string            `json:"ref_table"`
	RefColumns []string          `json:"ref_columns"`
	OnDelete   ReferentialAction `json:"on_delete,omitempty"`
	OnUpdate   ReferentialAction `json:"on_update,omitempty"`
}

// CheckConstraint is a CHECK clause. Expression is trusted SQL.
type CheckConstraint struct {
	Name       string `json:"name,omitempty"`
	Expression string `json:"expression"`
}

func (PrimaryKeyConstraint) constraint() {}
func (UniqueConstraint) constraint()     {}
func (ForeignKeyConstraint) constraint() {}
func (CheckConstraint) constraint()      {}

func (c PrimaryKeyConstraint) ConstraintName() string { return c.Name }
func (c UniqueConstraint) ConstraintName() string     { return c.Name }
func (c ForeignKeyConstraint) ConstraintName() string { return c.Name }
func (c CheckConstraint) ConstraintName() string      { return c.Name }

// DecodeConstraint decodes a constraint object tagged by "type":
// PRIMARY_KEY, UNIQUE, FOREIGN_KEY or CHECK.
func DecodeConstraint(data []byte) (Constraint, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	switch normalizeTag(tag.Type) {
	case "PRIMARY_KEY":
		var c PrimaryKeyConstraint
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case "UNIQUE":
		var c UniqueConstraint
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	case "FOREIGN_KEY":
		var c ForeignKeyConstraint
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		c.OnDelete = ReferentialAction(strings.ToUpper(string(c.OnDelete)))
		c.OnUpdate = ReferentialAction(strings.ToUpper(string(c.OnUpdate)))
		return c, nil
	case "CHECK":
		var c CheckConstraint
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown constraint type %q", tag.Type)
	}
}

// normalizeTag upper-cases a discriminator and folds spaces and dashes to
// underscores, so "primary key", "primary-key" and "PRIMARY_KEY" agree.
func normalizeTag(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
