package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sqlir/internal/ir"
	"github.com/roach88/sqlir/internal/quote"
	"github.com/roach88/sqlir/internal/sqlerr"
)

// Select renders a SELECT query without a trailing semicolon, so the result
// can be embedded in CREATE VIEW.
//
// Clauses are always emitted in SQL order regardless of which IR fields are
// set: SELECT, FROM, JOIN..., WHERE, GROUP BY, HAVING, ORDER BY, LIMIT, OFFSET.
func (c *Compiler) Select(q *ir.Select) (string, error) {
	if q == nil {
		return "", sqlerr.Validationf("select", "query is required")
	}

	cols, err := c.selectList(q.Columns)
	if err != nil {
		return "", err
	}

	from, err := c.tableRef(q.From, q.Alias, "from")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(cols)
	b.WriteString(" FROM ")
	b.WriteString(from)

	for i, j := range q.Joins {
		clause, err := c.join(j, i)
		if err != nil {
			return "", err
		}
		b.WriteString(" ")
		b.WriteString(clause)
	}

	if q.Where != nil {
		where, err := c.ConditionAt(q.Where, "where")
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if len(q.GroupBy) > 0 {
		groups := make([]string, len(q.GroupBy))
		for i, g := range q.GroupBy {
			if groups[i], err = quote.Qualified(g, fmt.Sprintf("group_by[%d]", i), c.d); err != nil {
				return "", err
			}
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(groups, ", "))
	}

	if q.Having != nil {
		having, err := c.ConditionAt(q.Having, "having")
		if err != nil {
			return "", err
		}
		b.WriteString(" HAVING ")
		b.WriteString(having)
	}

	if len(q.OrderBy) > 0 {
		terms := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			if terms[i], err = c.orderTerm(o, i); err != nil {
				return "", err
			}
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	limit, err := c.limitOffset(q.Limit, q.Offset)
	if err != nil {
		return "", err
	}
	b.WriteString(limit)

	return b.String(), nil
}

func (c *Compiler) selectList(cols []ir.SelectColumn) (string, error) {
	if len(cols) == 0 {
		return "*", nil
	}

	out := make([]string, len(cols))
	for i, col := range cols {
		field := fmt.Sprintf("columns[%d]", i)

		expr, err := c.columnRef(col.Name, field, col.Aggregate == ir.AggCount || col.Aggregate == "")
		if err != nil {
			return "", err
		}
		if col.Aggregate != "" {
			if !col.Aggregate.Valid() {
				return "", sqlerr.Validationf(field+".aggregate", "unknown aggregate %q", col.Aggregate)
			}
			expr = string(col.Aggregate) + "(" + expr + ")"
		}
		if col.Alias != "" {
			alias, err := quote.SafeIdentifier(col.Alias, field+".alias", c.d)
			if err != nil {
				return "", err
			}
			expr += " AS " + alias
		}
		out[i] = expr
	}
	return strings.Join(out, ", "), nil
}

// columnRef renders "*", "t.*" or a qualified column.
func (c *Compiler) columnRef(name, field string, starAllowed bool) (string, error) {
	if name == "*" || strings.HasSuffix(name, ".*") {
		if !starAllowed {
			return "", sqlerr.Validationf(field, "* is only allowed alone or with COUNT")
		}
		if name == "*" {
			return "*", nil
		}
		table, err := quote.Qualified(strings.TrimSuffix(name, ".*"), field, c.d)
		if err != nil {
			return "", err
		}
		return table + ".*", nil
	}
	return quote.Qualified(name, field, c.d)
}

func (c *Compiler) tableRef(table, alias, field string) (string, error) {
	ref, err := quote.Qualified(table, field, c.d)
	if err != nil {
		return "", err
	}
	if alias == "" {
		return ref, nil
	}
	a, err := quote.SafeIdentifier(alias, field+".alias", c.d)
	if err != nil {
		return "", err
	}
	return ref + " AS " + a, nil
}

func (c *Compiler) join(j ir.Join, i int) (string, error) {
	field := fmt.Sprintf("joins[%d]", i)

	var kw string
	switch j.Type {
	case ir.JoinInner, "":
		kw = "INNER JOIN"
	case ir.JoinLeft:
		kw = "LEFT JOIN"
	case ir.JoinRight:
		kw = "RIGHT JOIN"
	case ir.JoinFull:
		if !c.d.FullJoin {
			return "", &sqlerr.UnsupportedOperationError{
				Dialect: string(c.d.ID), Category: string(ir.DQL), Operation: string(ir.OpSelect), Detail: "FULL JOIN",
			}
		}
		kw = "FULL JOIN"
	case ir.JoinCross:
		kw = "CROSS JOIN"
	default:
		return "", sqlerr.Validationf(field+".type", "unknown join type %q", j.Type)
	}

	ref, err := c.tableRef(j.Table, j.Alias, field+".table")
	if err != nil {
		return "", err
	}

	if j.Type == ir.JoinCross {
		if j.On != nil {
			return "", sqlerr.Validationf(field+".on", "CROSS JOIN takes no ON condition")
		}
		return kw + " " + ref, nil
	}
	if j.On == nil {
		return "", sqlerr.Validationf(field+".on", "%s requires an ON condition", kw)
	}
	on, err := c.ConditionAt(j.On, field+".on")
	if err != nil {
		return "", err
	}
	return kw + " " + ref + " ON " + on, nil
}

func (c *Compiler) orderTerm(o ir.OrderBy, i int) (string, error) {
	field := fmt.Sprintf("order_by[%d]", i)
	col, err := quote.Qualified(o.Column, field+".column", c.d)
	if err != nil {
		return "", err
	}
	switch o.Direction {
	case "":
		return col, nil
	case ir.Asc, ir.Desc:
		return col + " " + string(o.Direction), nil
	default:
		return "", sqlerr.Validationf(field+".direction", "direction must be ASC or DESC, got %q", o.Direction)
	}
}

// limitOffset renders the LIMIT/OFFSET tail. Dialects that cannot express a
// bare OFFSET get their "no limit" sentinel.
func (c *Compiler) limitOffset(limit, offset *int64) (string, error) {
	if limit != nil && *limit < 0 {
		return "", sqlerr.Validationf("limit", "must not be negative")
	}
	if offset != nil && *offset < 0 {
		return "", sqlerr.Validationf("offset", "must not be negative")
	}

	var b strings.Builder
	switch {
	case limit != nil:
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.FormatInt(*limit, 10))
	case offset != nil && c.d.OffsetOnlyLimit != "":
		b.WriteString(" LIMIT ")
		b.WriteString(c.d.OffsetOnlyLimit)
	}
	if offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.FormatInt(*offset, 10))
	}
	return b.String(), nil
}

// Returning renders a RETURNING clause for dialects that support it.
func (c *Compiler) Returning(cols []string, category ir.Category, op ir.Operation) (string, error) {
	if len(cols) == 0 {
		return "", nil
	}
	if !c.d.Returning {
		return "", &sqlerr.UnsupportedOperationError{
			Dialect: string(c.d.ID), Category: string(category), Operation: string(op), Detail: "RETURNING",
		}
	}
	if len(cols) == 1 && cols[0] == "*" {
		return " RETURNING *", nil
	}
	list, err := quote.IdentifierList(cols, "returning", c.d)
	if err != nil {
		return "", err
	}
	return " RETURNING " + list, nil
}
