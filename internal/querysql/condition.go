// Package querysql renders condition trees and SELECT queries for one dialect.
//
// The Compiler is stateless apart from its dialect traits, so one Compiler
// may be shared by concurrent callers.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/quote"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// Compiler renders IR fragments for one dialect.
type Compiler struct {
	d dialect.Traits
}

// NewCompiler creates a Compiler for d.
func NewCompiler(d dialect.Traits) *Compiler {
	return &Compiler{d: d}
}

// Dialect returns the compiler's dialect traits.
func (c *Compiler) Dialect() dialect.Traits { return c.d }

// Condition validates the whole tree, then renders it. Validation runs first
// so that an operator outside the allowed set is reported before any text is
// built.
//
// Rendering:
//   - Compare  -> field op value, with "= NULL" and "<> NULL" rendered as
//     IS NULL and IS NOT NULL
//   - And, Or  -> (left AND right), (left OR right)
//   - Not      -> NOT (inner)
func (c *Compiler) Condition(cond ir.Condition) (string, error) {
	return c.ConditionAt(cond, "where")
}

// ConditionAt is Condition with an explicit path used in error messages,
// e.g. "having" or "joins[0].on".
func (c *Compiler) ConditionAt(cond ir.Condition, path string) (string, error) {
	if err := checkCondition(cond, path); err != nil {
		return "", err
	}
	return c.render(cond, path)
}

// deref normalises pointer forms of condition nodes to value forms. A nil
// pointer becomes a nil Condition.
func deref(cond ir.Condition) ir.Condition {
	switch n := cond.(type) {
	case *ir.Compare:
		if n == nil {
			return nil
		}
		return *n
	case *ir.And:
		if n == nil {
			return nil
		}
		return *n
	case *ir.Or:
		if n == nil {
			return nil
		}
		return *n
	case *ir.Not:
		if n == nil {
			return nil
		}
		return *n
	default:
		return cond
	}
}

// checkCondition walks the tree and rejects nodes outside the closed set.
func checkCondition(cond ir.Condition, path string) error {
	switch n := deref(cond).(type) {
	case nil:
		return &sqlerr.UnsupportedConditionError{Node: "<nil>", Path: path}
	case ir.Compare:
		return checkCompare(n, path)
	case ir.And:
		if err := checkCondition(n.Left, path+".left"); err != nil {
			return err
		}
		return checkCondition(n.Right, path+".right")
	case ir.Or:
		if err := checkCondition(n.Left, path+".left"); err != nil {
			return err
		}
		return checkCondition(n.Right, path+".right")
	case ir.Not:
		return checkCondition(n.Inner, path+".inner")
	default:
		return &sqlerr.UnsupportedConditionError{Node: fmt.Sprintf("%T", cond), Path: path}
	}
}

func checkCompare(n ir.Compare, path string) error {
	if !n.Operator.Valid() {
		return &sqlerr.UnsupportedConditionError{Node: "Compare", Operator: string(n.Operator), Path: path}
	}

	list, isList := n.Value.(ir.List)
	if n.Operator == ir.OpIn {
		if !isList {
			return sqlerr.Validationf(path, "IN requires a list value, got %T", n.Value)
		}
		if len(list) == 0 {
			return sqlerr.Validationf(path, "IN requires a non-empty list")
		}
		for i, v := range list {
			if _, nested := v.(ir.List); nested {
				return sqlerr.Validationf(fmt.Sprintf("%s.value[%d]", path, i), "nested lists are not allowed")
			}
		}
		return nil
	}
	if isList {
		return sqlerr.Validationf(path, "operator %s does not take a list", n.Operator)
	}
	return nil
}

func (c *Compiler) render(cond ir.Condition, path string) (string, error) {
	switch n := deref(cond).(type) {
	case ir.Compare:
		return c.renderCompare(n, path)
	case ir.And:
		return c.renderBinary("AND", n.Left, n.Right, path)
	case ir.Or:
		return c.renderBinary("OR", n.Left, n.Right, path)
	case ir.Not:
		inner, err := c.render(n.Inner, path+".inner")
		if err != nil {
			return "", err
		}
		// And/Or output is already parenthesised.
		if isComposite(n.Inner) {
			return "NOT " + inner, nil
		}
		return "NOT (" + inner + ")", nil
	default:
		// Unreachable after checkCondition.
		return "", &sqlerr.UnsupportedConditionError{Node: fmt.Sprintf("%T", cond), Path: path}
	}
}

func isComposite(cond ir.Condition) bool {
	switch deref(cond).(type) {
	case ir.And, ir.Or:
		return true
	}
	return false
}

func (c *Compiler) renderBinary(op string, left, right ir.Condition, path string) (string, error) {
	l, err := c.render(left, path+".left")
	if err != nil {
		return "", err
	}
	r, err := c.render(right, path+".right")
	if err != nil {
		return "", err
	}
	return "(" + l + " " + op + " " + r + ")", nil
}

func (c *Compiler) renderCompare(n ir.Compare, path string) (string, error) {
	field, err := quote.Qualified(n.Field, path+".field", c.d)
	if err != nil {
		return "", err
	}

	if n.Operator == ir.OpIn {
		list := n.Value.(ir.List)
		vals := make([]string, len(list))
		for i, v := range list {
			if vals[i], err = quote.Scalar(v, c.d); err != nil {
				return "", err
			}
		}
		return field + " IN (" + strings.Join(vals, ", ") + ")", nil
	}

	if isNull(n.Value) {
		switch n.Operator {
		case ir.OpEq:
			return field + " IS NULL", nil
		case ir.OpNe:
			return field + " IS NOT NULL", nil
		}
	}

	val, err := quote.Scalar(n.Value, c.d)
	if err != nil {
		return "", err
	}
	return field + " " + string(n.Operator) + " " + val, nil
}

func isNull(v ir.Value) bool {
	switch v.(type) {
	case nil, ir.Null:
		return true
	}
	return false
}
