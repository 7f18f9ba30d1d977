package ir

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/roach88/sqlir/internal/sqlerr"
)

// Condition is a sealed interface for boolean condition trees used in WHERE,
// HAVING, JOIN ... ON and partial-index clauses.
// Only Compare, And, Or and Not implement it.
//
// Trees are finite and acyclic. Generators never mutate them.
type Condition interface {
	condition() // Sealed - only these types implement it
}

// Operator is a comparison operator. The allowed set is closed; see Valid.
type Operator string

const (
	OpEq   Operator = "="
	OpNe   Operator = "<>"
	OpLt   Operator = "<"
	OpGt   Operator = ">"
	OpLe   Operator = "<="
	OpGe   Operator = ">="
	OpIn   Operator = "IN"
	OpLike Operator = "LIKE"
)

// Operators lists the allowed comparison operators.
var Operators = []Operator{OpEq, OpNe, OpLt, OpGt, OpLe, OpGe, OpIn, OpLike}

// Valid reports whether op is in the allowed set.
func (op Operator) Valid() bool {
	for _, o := range Operators {
		if o == op {
			return true
		}
	}
	return false
}

// Compare is a leaf predicate: field operator value.
// Field may be qualified ("u.id").
type Compare struct {
	Field    string
	Operator Operator
	Value    Value
}

// And is a conjunction.
type And struct {
	Left, Right Condition
}

// Or is a disjunction.
type Or struct {
	Left, Right Condition
}

// Not negates Inner.
type Not struct {
	Inner Condition
}

func (Compare) condition() {}
func (And) condition()     {}
func (Or) condition()      {}
func (Not) condition()     {}

// Eq builds field = value.
func Eq(field string, v Value) Compare {
	return Compare{Field: field, Operator: OpEq, Value: v}
}

// In builds field IN (values...).
func In(field string, values List) Compare {
	return Compare{Field: field, Operator: OpIn, Value: values}
}

// AllOf folds conditions into a left-nested And chain. It returns nil for no
// conditions and the condition itself for one.
func AllOf(conds ...Condition) Condition {
	return fold(conds, func(l, r Condition) Condition { return And{Left: l, Right: r} })
}

// AnyOf folds conditions into a left-nested Or chain.
func AnyOf(conds ...Condition) Condition {
	return fold(conds, func(l, r Condition) Condition { return Or{Left: l, Right: r} })
}

func fold(conds []Condition, join func(l, r Condition) Condition) Condition {
	if len(conds) == 0 {
		return nil
	}
	acc := conds[0]
	for _, c := range conds[1:] {
		acc = join(acc, c)
	}
	return acc
}

// conditionJSON is the wire shape shared by every condition node.
type conditionJSON struct {
	Type     string          `json:"type"`
	Field    string          `json:"field"`
	Operator string          `json:"operator"`
	Value    json.RawMessage `json:"value"`
	Left     json.RawMessage `json:"left"`
	Right    json.RawMessage `json:"right"`
	Inner    json.RawMessage `json:"inner"`
}

// DecodeCondition decodes a condition tree. Nodes are objects tagged by
// "type"; a NOT node carries its operand in "inner" (or "left").
//
// Operators are not checked here; the renderer rejects operators outside the
// allowed set before producing any text. A node with any other tag is an
// UnsupportedConditionError.
func DecodeCondition(data []byte) (Condition, error) {
	var n conditionJSON
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}

	switch normalizeTag(n.Type) {
	case "COMPARE":
		v, err := decodeOptionalValue(n.Value)
		if err != nil {
			return nil, fmt.Errorf("compare %q value: %w", n.Field, err)
		}
		if v == nil {
			v = Null{}
		}
		return Compare{Field: n.Field, Operator: Operator(n.Operator), Value: v}, nil

	case "AND", "OR":
		left, err := decodeChild(n.Left, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeChild(n.Right, "right")
		if err != nil {
			return nil, err
		}
		if normalizeTag(n.Type) == "AND" {
			return And{Left: left, Right: right}, nil
		}
		return Or{Left: left, Right: right}, nil

	case "NOT":
		operand := n.Inner
		if len(operand) == 0 {
			operand = n.Left
		}
		inner, err := decodeChild(operand, "inner")
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil

	default:
		return nil, &sqlerr.UnsupportedConditionError{Node: strconv.Quote(n.Type)}
	}
}

func decodeChild(data json.RawMessage, name string) (Condition, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("%s: missing operand", name)
	}
	c, err := DecodeCondition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// decodeOptionalCondition decodes a condition that may be absent.
func decodeOptionalCondition(data json.RawMessage) (Condition, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return DecodeCondition(data)
}
