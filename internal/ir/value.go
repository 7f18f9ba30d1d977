package ir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Value is a sealed interface for literal values carried by the IR.
// Only Null, Bool, Number, String, Raw and List implement it.
//
// String is always quoted by the generators. Raw is emitted verbatim and,
// like Meta.RawSQL, must only carry trusted input.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Null is the SQL NULL literal.
type Null struct{}

func (Null) irValue() {}

// Bool is a boolean literal.
type Bool bool

func (Bool) irValue() {}

// Number is an exact numeric literal. It is backed by a decimal so that
// values such as 19.99 survive decoding without binary rounding.
type Number struct {
	Decimal decimal.Decimal
}

func (Number) irValue() {}

// String is a literal that generators quote, unless it exactly matches one of
// the allowed bare expressions (NOW(), CURRENT_TIMESTAMP, UUID()).
type String string

func (String) irValue() {}

// Raw is a bare SQL expression emitted without quoting or validation.
type Raw string

func (Raw) irValue() {}

// List is the right-hand side of an IN comparison. It is rejected anywhere
// else.
type List []Value

func (List) irValue() {}

// Int creates a Number from an integer.
func Int(n int64) Number {
	return Number{Decimal: decimal.NewFromInt(n)}
}

// Float creates a Number from a float. Prefer ParseNumber for values that
// must keep an exact decimal representation.
func Float(f float64) Number {
	return Number{Decimal: decimal.NewFromFloat(f)}
}

// MaxExponent bounds the decimal exponent ParseNumber accepts. Numbers are
// rendered as plain digits, so the exponent sets the output length.
const MaxExponent = 1000

// ParseNumber parses a decimal literal such as "42", "-3.5" or "1e3".
func ParseNumber(s string) (Number, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return Number{}, fmt.Errorf("invalid number %q: exponent out of range (max %d)", s, MaxExponent)
	}
	return Number{Decimal: d}, nil
}

// String renders the number as plain digits. ParseNumber keeps the exponent
// within MaxExponent.
func (n Number) String() string {
	return n.Decimal.String()
}

// Strings builds a List of String values.
func Strings(vals ...string) List {
	l := make(List, len(vals))
	for i, v := range vals {
		l[i] = String(v)
	}
	return l
}

// Ints builds a List of Number values.
func Ints(vals ...int64) List {
	l := make(List, len(vals))
	for i, v := range vals {
		l[i] = Int(v)
	}
	return l
}

// DecodeValue decodes a JSON value into a Value.
//
// Mapping:
//   - null          -> Null
//   - true/false    -> Bool
//   - number        -> Number (exact)
//   - "text"        -> String
//   - [a, b]        -> List
//   - {"raw": "x"}  -> Raw
func DecodeValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			return nil, fmt.Errorf("invalid JSON value %q", data)
		}
		return Null{}, nil

	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		list := make(List, len(raw))
		for i, elem := range raw {
			v, err := DecodeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			if _, nested := v.(List); nested {
				return nil, fmt.Errorf("list index %d: nested lists are not allowed", i)
			}
			list[i] = v
		}
		return list, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		rawExpr, ok := obj["raw"]
		if !ok || len(obj) != 1 {
			return nil, fmt.Errorf(`object values must have exactly one key "raw"`)
		}
		var s string
		if err := json.Unmarshal(rawExpr, &s); err != nil {
			return nil, fmt.Errorf("raw: %w", err)
		}
		return Raw(s), nil

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return ParseNumber(n.String())
	}
}

// decodeOptionalValue decodes a value that may be absent. An absent key yields
// nil, an explicit JSON null yields Null.
func decodeOptionalValue(data json.RawMessage) (Value, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return DecodeValue(data)
}
