package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Aggregate is an aggregate function applied to a select column.
type Aggregate string

const (
	AggCount Aggregate = "COUNT"
	AggSum   Aggregate = "SUM"
	AggAvg   Aggregate = "AVG"
	AggMin   Aggregate = "MIN"
	AggMax   Aggregate = "MAX"
)

// Valid reports whether a is a known aggregate.
func (a Aggregate) Valid() bool {
	switch a {
	case AggCount, AggSum, AggAvg, AggMin, AggMax:
		return true
	}
	return false
}

// SelectColumn is one entry of the select list. Name may be "*", "t.*" or a
// (qualified) column.
type SelectColumn struct {
	Name      string    `json:"name"`
	Aggregate Aggregate `json:"aggregate,omitempty"`
	Alias     string    `json:"alias,omitempty"`
}

// Col builds a plain select column.
func Col(name string) SelectColumn { return SelectColumn{Name: name} }

// UnmarshalJSON accepts a bare string as shorthand for {"name": ...}.
func (c *SelectColumn) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Name)
	}
	type alias SelectColumn
	if err := json.Unmarshal(data, (*alias)(c)); err != nil {
		return err
	}
	c.Aggregate = Aggregate(strings.ToUpper(string(c.Aggregate)))
	return nil
}

// JoinType is the closed set of join kinds.
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
)

// Join is one JOIN clause. On is required except for CROSS joins.
type Join struct {
	Type  JoinType  `json:"type"`
	Table string    `json:"table"`
	Alias string    `json:"alias,omitempty"`
	On    Condition `json:"-"`
}

// UnmarshalJSON decodes the ON condition.
func (j *Join) UnmarshalJSON(data []byte) error {
	type alias Join
	aux := struct {
		*alias
		On json.RawMessage `json:"on"`
	}{alias: (*alias)(j)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	j.Type = JoinType(strings.ToUpper(string(j.Type)))
	if j.Type == "" {
		j.Type = JoinInner
	}

	var err error
	if j.On, err = decodeOptionalCondition(aux.On); err != nil {
		return fmt.Errorf("join %q on: %w", j.Table, err)
	}
	return nil
}

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// OrderBy is one ORDER BY term.
type OrderBy struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction,omitempty"`
}

// Select describes a SELECT query. Clause fields are independent; the
// generators always emit them in SQL clause order.
type Select struct {
	Meta
	Distinct bool           `json:"distinct,omitempty"`
	Columns  []SelectColumn `json:"columns,omitempty"` // empty means *
	From     string         `json:"from"`
	Alias    string         `json:"alias,omitempty"`
	Joins    []Join         `json:"joins,omitempty"`
	Where    Condition      `json:"-"`
	GroupBy  []string       `json:"group_by,omitempty"`
	Having   Condition      `json:"-"`
	OrderBy  []OrderBy      `json:"order_by,omitempty"`
	Limit    *int64         `json:"limit,omitempty"`
	Offset   *int64         `json:"offset,omitempty"`
}

// UnmarshalJSON decodes the WHERE and HAVING conditions.
func (s *Select) UnmarshalJSON(data []byte) error {
	type alias Select
	aux := struct {
		*alias
		Where  json.RawMessage `json:"where"`
		Having json.RawMessage `json:"having"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	for i := range s.OrderBy {
		s.OrderBy[i].Direction = Direction(strings.ToUpper(string(s.OrderBy[i].Direction)))
	}

	var err error
	if s.Where, err = decodeOptionalCondition(aux.Where); err != nil {
		return fmt.Errorf("where: %w", err)
	}
	if s.Having, err = decodeOptionalCondition(aux.Having); err != nil {
		return fmt.Errorf("having: %w", err)
	}
	return nil
}

func (*Select) Category() Category   { return DQL }
func (*Select) Operation() Operation { return OpSelect }
func (*Select) statement()           {}
