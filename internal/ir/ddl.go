package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CreateTable describes CREATE TABLE.
type CreateTable struct {
	Meta
	Name        string       `json:"name"` // may be schema-qualified
	IfNotExists bool         `json:"if_not_exists,omitempty"`
	Temporary   bool         `json:"temporary,omitempty"`
	Columns     []Column     `json:"columns"`
	Constraints []Constraint `json:"-"`
	Options     TableOptions `json:"options,omitempty"`
}

// TableOptions are trailing table options. Each dialect honours a subset and
// rejects the rest.
type TableOptions struct {
	Engine       string `json:"engine,omitempty"`    // MySQL
	Charset      string `json:"charset,omitempty"`   // MySQL
	Collation    string `json:"collation,omitempty"` // MySQL
	Comment      string `json:"comment,omitempty"`   // MySQL inline, PostgreSQL COMMENT ON
	WithoutRowID bool   `json:"without_rowid,omitempty"`
	Strict       bool   `json:"strict,omitempty"`
}

// UnmarshalJSON decodes the constraint list through DecodeConstraint.
func (t *CreateTable) UnmarshalJSON(data []byte) error {
	type alias CreateTable
	aux := struct {
		*alias
		Constraints []json.RawMessage `json:"constraints"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.Constraints = nil
	for i, raw := range aux.Constraints {
		c, err := DecodeConstraint(raw)
		if err != nil {
			return fmt.Errorf("constraints[%d]: %w", i, err)
		}
		t.Constraints = append(t.Constraints, c)
	}
	return nil
}

// IndexKind is a MySQL index-type prefix.
type IndexKind string

const (
	IndexFulltext IndexKind = "FULLTEXT"
	IndexSpatial  IndexKind = "SPATIAL"
)

// CreateIndex describes CREATE INDEX.
type CreateIndex struct {
	Meta
	Name        string    `json:"name"`
	Table       string    `json:"table"`
	Columns     []string  `json:"columns"`
	Unique      bool      `json:"unique,omitempty"`
	Kind        IndexKind `json:"kind,omitempty"`
	Method      string    `json:"method,omitempty"` // btree, hash, gin, gist, brin
	IfNotExists bool      `json:"if_not_exists,omitempty"`
	Where       Condition `json:"-"` // partial index
}

// UnmarshalJSON decodes the partial-index condition.
func (x *CreateIndex) UnmarshalJSON(data []byte) error {
	type alias CreateIndex
	aux := struct {
		*alias
		Where json.RawMessage `json:"where"`
	}{alias: (*alias)(x)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	x.Kind = IndexKind(strings.ToUpper(string(x.Kind)))

	var err error
	if x.Where, err = decodeOptionalCondition(aux.Where); err != nil {
		return fmt.Errorf("where: %w", err)
	}
	return nil
}

// CheckOption is the WITH ... CHECK OPTION mode of a view.
type CheckOption string

const (
	CheckNone     CheckOption = ""
	CheckDefault  CheckOption = "DEFAULT" // WITH CHECK OPTION
	CheckLocal    CheckOption = "LOCAL"
	CheckCascaded CheckOption = "CASCADED"
)

// CreateView describes CREATE VIEW. Exactly one of Query and Definition must
// be set; Definition is trusted SQL.
type CreateView struct {
	Meta
	Name        string      `json:"name"`
	Columns     []string    `json:"columns,omitempty"`
	Query       *Select     `json:"query,omitempty"`
	Definition  string      `json:"definition,omitempty"`
	OrReplace   bool        `json:"or_replace,omitempty"`
	Temporary   bool        `json:"temporary,omitempty"`
	IfNotExists bool        `json:"if_not_exists,omitempty"`
	CheckOption CheckOption `json:"check_option,omitempty"`
}

// CreateDatabase describes CREATE DATABASE.
type CreateDatabase struct {
	Meta
	Name        string `json:"name"`
	IfNotExists bool   `json:"if_not_exists,omitempty"`
	Charset     string `json:"charset,omitempty"`   // MySQL charset, PostgreSQL encoding
	Collation   string `json:"collation,omitempty"` // MySQL collation, PostgreSQL LC_COLLATE
}

// CreateSchema describes CREATE SCHEMA.
type CreateSchema struct {
	Meta
	Name          string `json:"name"`
	IfNotExists   bool   `json:"if_not_exists,omitempty"`
	Authorization string `json:"authorization,omitempty"`
}

// CreateSequence describes CREATE SEQUENCE.
type CreateSequence struct {
	Meta
	Name        string `json:"name"`
	IfNotExists bool   `json:"if_not_exists,omitempty"`
	Start       *int64 `json:"start,omitempty"`
	Increment   *int64 `json:"increment,omitempty"`
	MinValue    *int64 `json:"min_value,omitempty"`
	MaxValue    *int64 `json:"max_value,omitempty"`
	Cache       *int64 `json:"cache,omitempty"`
	Cycle       bool   `json:"cycle,omitempty"`
}

// TriggerTiming is when a trigger fires relative to its event.
type TriggerTiming string

const (
	TimingBefore    TriggerTiming = "BEFORE"
	TimingAfter     TriggerTiming = "AFTER"
	TimingInsteadOf TriggerTiming = "INSTEAD OF"
)

// TriggerEvent is the DML event a trigger listens to.
type TriggerEvent string

const (
	EventInsert TriggerEvent = "INSERT"
	EventUpdate TriggerEvent = "UPDATE"
	EventDelete TriggerEvent = "DELETE"
)

// TriggerScope is the FOR EACH granularity.
type TriggerScope string

const (
	ForEachRow       TriggerScope = "ROW"
	ForEachStatement TriggerScope = "STATEMENT"
)

// CreateTrigger describes CREATE TRIGGER. MySQL and SQLite use Body;
// PostgreSQL calls Function.
type CreateTrigger struct {
	Meta
	Name        string        `json:"name"`
	Table       string        `json:"table"`
	Timing      TriggerTiming `json:"timing"`
	Event       TriggerEvent  `json:"event"`
	ForEach     TriggerScope  `json:"for_each,omitempty"` // default ROW
	When        Condition     `json:"-"`
	Body        string        `json:"body,omitempty"`
	Function    string        `json:"function,omitempty"`
	IfNotExists bool          `json:"if_not_exists,omitempty"`
	OrReplace   bool          `json:"or_replace,omitempty"`
}

// UnmarshalJSON decodes the WHEN condition and normalises enum spellings.
func (x *CreateTrigger) UnmarshalJSON(data []byte) error {
	type alias CreateTrigger
	aux := struct {
		*alias
		When json.RawMessage `json:"when"`
	}{alias: (*alias)(x)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	x.Timing = TriggerTiming(strings.ToUpper(strings.ReplaceAll(string(x.Timing), "_", " ")))
	x.Event = TriggerEvent(strings.ToUpper(string(x.Event)))
	x.ForEach = TriggerScope(strings.ToUpper(string(x.ForEach)))

	var err error
	if x.When, err = decodeOptionalCondition(aux.When); err != nil {
		return fmt.Errorf("when: %w", err)
	}
	return nil
}

// ParamMode is a routine parameter direction.
type ParamMode string

const (
	ParamIn    ParamMode = "IN"
	ParamOut   ParamMode = "OUT"
	ParamInOut ParamMode = "INOUT"
)

// Parameter is a routine parameter.
type Parameter struct {
	Mode ParamMode    `json:"mode,omitempty"`
	Name string       `json:"name"`
	Type AbstractType `json:"type"`
}

// CreateProcedure describes CREATE PROCEDURE. Body is trusted SQL holding the
// statements of the procedure's main block.
type CreateProcedure struct {
	Meta
	Name       string      `json:"name"`
	OrReplace  bool        `json:"or_replace,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Body       string      `json:"body"`
	Language   string      `json:"language,omitempty"` // PostgreSQL, default plpgsql
}

// CreateFunction describes CREATE FUNCTION.
type CreateFunction struct {
	Meta
	Name          string       `json:"name"`
	OrReplace     bool         `json:"or_replace,omitempty"`
	Parameters    []Parameter  `json:"parameters,omitempty"`
	Returns       AbstractType `json:"returns"`
	Body          string       `json:"body"`
	Language      string       `json:"language,omitempty"`
	Deterministic bool         `json:"deterministic,omitempty"`
}

// CreateRole describes CREATE ROLE.
type CreateRole struct {
	Meta
	Name        string `json:"name"`
	IfNotExists bool   `json:"if_not_exists,omitempty"`
	Login       bool   `json:"login,omitempty"` // PostgreSQL
}

// CreateUser describes CREATE USER.
type CreateUser struct {
	Meta
	Name        string `json:"name"`
	Host        string `json:"host,omitempty"` // MySQL account host, default '%'
	Password    string `json:"password,omitempty"`
	IfNotExists bool   `json:"if_not_exists,omitempty"`
}

// IntervalUnit is a MySQL event interval unit.
type IntervalUnit string

const (
	UnitSecond IntervalUnit = "SECOND"
	UnitMinute IntervalUnit = "MINUTE"
	UnitHour   IntervalUnit = "HOUR"
	UnitDay    IntervalUnit = "DAY"
	UnitWeek   IntervalUnit = "WEEK"
	UnitMonth  IntervalUnit = "MONTH"
	UnitYear   IntervalUnit = "YEAR"
)

// Valid reports whether u is a known unit.
func (u IntervalUnit) Valid() bool {
	switch u {
	case UnitSecond, UnitMinute, UnitHour, UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	}
	return false
}

// Schedule is when an event runs: either once At a timestamp or Every
// interval.
type Schedule struct {
	At     string       `json:"at,omitempty"`
	Every  int          `json:"every,omitempty"`
	Unit   IntervalUnit `json:"unit,omitempty"`
	Starts string       `json:"starts,omitempty"`
	Ends   string       `json:"ends,omitempty"`
}

// CreateEvent describes a MySQL scheduled event.
type CreateEvent struct {
	Meta
	Name        string   `json:"name"`
	IfNotExists bool     `json:"if_not_exists,omitempty"`
	Schedule    Schedule `json:"schedule"`
	Preserve    bool     `json:"preserve,omitempty"`
	Disabled    bool     `json:"disabled,omitempty"`
	Comment     string   `json:"comment,omitempty"`
	Body        string   `json:"body"`
}

// AlterAction is a sealed interface for ALTER TABLE actions.
type AlterAction interface {
	alterAction()
}

// AddColumn adds a column.
type AddColumn struct {
	Column Column `json:"column"`
}

// DropColumn drops a column.
type DropColumn struct {
	Name string `json:"name"`
}

// RenameColumn renames a column.
type RenameColumn struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RenameTable renames the table itself.
type RenameTable struct {
	To string `json:"to"`
}

func (AddColumn) alterAction()    {}
func (DropColumn) alterAction()   {}
func (RenameColumn) alterAction() {}
func (RenameTable) alterAction()  {}

// AlterTable describes ALTER TABLE with one or more actions.
type AlterTable struct {
	Meta
	Table   string        `json:"table"`
	Actions []AlterAction `json:"-"`
}

// UnmarshalJSON decodes the action list. Actions are tagged by "type":
// ADD_COLUMN, DROP_COLUMN, RENAME_COLUMN, RENAME_TABLE.
func (x *AlterTable) UnmarshalJSON(data []byte) error {
	type alias AlterTable
	aux := struct {
		*alias
		Actions []json.RawMessage `json:"actions"`
	}{alias: (*alias)(x)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	x.Actions = nil
	for i, raw := range aux.Actions {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}

		var (
			action AlterAction
			err    error
		)
		switch normalizeTag(tag.Type) {
		case "ADD_COLUMN":
			var a AddColumn
			err = json.Unmarshal(raw, &a)
			action = a
		case "DROP_COLUMN":
			var a DropColumn
			err = json.Unmarshal(raw, &a)
			action = a
		case "RENAME_COLUMN":
			var a RenameColumn
			err = json.Unmarshal(raw, &a)
			action = a
		case "RENAME_TABLE", "RENAME":
			var a RenameTable
			err = json.Unmarshal(raw, &a)
			action = a
		default:
			err = fmt.Errorf("unknown alter action %q", tag.Type)
		}
		if err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}
		x.Actions = append(x.Actions, action)
	}
	return nil
}

// ObjectType is the kind of object a DROP removes.
type ObjectType string

const (
	ObjectTable     ObjectType = "TABLE"
	ObjectIndex     ObjectType = "INDEX"
	ObjectView      ObjectType = "VIEW"
	ObjectDatabase  ObjectType = "DATABASE"
	ObjectSchema    ObjectType = "SCHEMA"
	ObjectSequence  ObjectType = "SEQUENCE"
	ObjectTrigger   ObjectType = "TRIGGER"
	ObjectProcedure ObjectType = "PROCEDURE"
	ObjectFunction  ObjectType = "FUNCTION"
	ObjectEvent     ObjectType = "EVENT"
)

// Drop describes DROP <object>.
type Drop struct {
	Meta
	Object   ObjectType `json:"object"`
	Name     string     `json:"name"`
	Table    string     `json:"table,omitempty"` // MySQL DROP INDEX/TRIGGER context
	IfExists bool       `json:"if_exists,omitempty"`
	Cascade  bool       `json:"cascade,omitempty"`
}

// UnmarshalJSON normalises the object type.
func (x *Drop) UnmarshalJSON(data []byte) error {
	type alias Drop
	if err := json.Unmarshal(data, (*alias)(x)); err != nil {
		return err
	}
	x.Object = ObjectType(strings.ToUpper(string(x.Object)))
	return nil
}

// Truncate describes TRUNCATE TABLE.
type Truncate struct {
	Meta
	Table string `json:"table"`
}

func (*CreateTable) Category() Category     { return DDL }
func (*CreateIndex) Category() Category     { return DDL }
func (*CreateView) Category() Category      { return DDL }
func (*CreateDatabase) Category() Category  { return DDL }
func (*CreateSchema) Category() Category    { return DDL }
func (*CreateSequence) Category() Category  { return DDL }
func (*CreateTrigger) Category() Category   { return DDL }
func (*CreateProcedure) Category() Category { return DDL }
func (*CreateFunction) Category() Category  { return DDL }
func (*CreateRole) Category() Category      { return DDL }
func (*CreateUser) Category() Category      { return DDL }
func (*CreateEvent) Category() Category     { return DDL }
func (*AlterTable) Category() Category      { return DDL }
func (*Drop) Category() Category            { return DDL }
func (*Truncate) Category() Category        { return DDL }

func (*CreateTable) Operation() Operation     { return OpCreateTable }
func (*CreateIndex) Operation() Operation     { return OpCreateIndex }
func (*CreateView) Operation() Operation      { return OpCreateView }
func (*CreateDatabase) Operation() Operation  { return OpCreateDatabase }
func (*CreateSchema) Operation() Operation    { return OpCreateSchema }
func (*CreateSequence) Operation() Operation  { return OpCreateSequence }
func (*CreateTrigger) Operation() Operation   { return OpCreateTrigger }
func (*CreateProcedure) Operation() Operation { return OpCreateProcedure }
func (*CreateFunction) Operation() Operation  { return OpCreateFunction }
func (*CreateRole) Operation() Operation      { return OpCreateRole }
func (*CreateUser) Operation() Operation      { return OpCreateUser }
func (*CreateEvent) Operation() Operation     { return OpCreateEvent }
func (*AlterTable) Operation() Operation      { return OpAlterTable }
func (*Truncate) Operation() Operation        { return OpTruncate }

// Operation includes the object type, e.g. "DROP VIEW".
func (d *Drop) Operation() Operation {
	if d.Object == "" {
		return OpDrop
	}
	return OpDrop + " " + Operation(d.Object)
}

func (*CreateTable) statement()     {}
func (*CreateIndex) statement()     {}
func (*CreateView) statement()      {}
func (*CreateDatabase) statement()  {}
func (*CreateSchema) statement()    {}
func (*CreateSequence) statement()  {}
func (*CreateTrigger) statement()   {}
func (*CreateProcedure) statement() {}
func (*CreateFunction) statement()  {}
func (*CreateRole) statement()      {}
func (*CreateUser) statement()      {}
func (*CreateEvent) statement()     {}
func (*AlterTable) statement()      {}
func (*Drop) statement()            {}
func (*Truncate) statement()        {}
