// Package sqlerr defines the error taxonomy shared by every generator.
//
// All errors are returned synchronously at the point of violation. A
// generator that returns one of these errors never returns SQL text with it.
package sqlerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for reporting. The string values are stable and
// appear in CLI output and conformance scenarios.
type Kind string

const (
	KindValidation           Kind = "validation"
	KindUnsupportedDialect   Kind = "unsupported_dialect"
	KindUnsupportedOperation Kind = "unsupported_operation"
	KindUnsupportedCondition Kind = "unsupported_condition"
	KindOther                Kind = "other"
)

// ValidationError reports a malformed identifier, a missing required field or
// a combination of fields the target dialect cannot express.
type ValidationError struct {
	// Field names the offending IR field, e.g. "columns[2].name".
	Field string

	// Message is a human-readable description.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Validationf builds a ValidationError with a formatted message.
func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedDialectError reports a dialect identifier with no catalog entry.
type UnsupportedDialectError struct {
	Dialect string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("unsupported dialect %q", e.Dialect)
}

// UnsupportedOperationError reports an operation the dialect is known not to
// implement. Generators never fall back to another dialect's output.
type UnsupportedOperationError struct {
	Dialect   string
	Category  string
	Operation string

	// Detail narrows the failure when the operation itself is supported but
	// one of its options is not, e.g. "FULL JOIN".
	Detail string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %s is not supported by %s", e.Category, e.Operation, e.Detail, e.Dialect)
	}
	return fmt.Sprintf("%s %s is not supported by %s", e.Category, e.Operation, e.Dialect)
}

// UnsupportedConditionError reports a condition node outside the closed set:
// a nil node, an unknown node tag or an operator outside the allow-list.
type UnsupportedConditionError struct {
	// Node is the node tag or Go type that was rejected.
	Node string

	// Operator is set when the node was a comparison with a bad operator.
	Operator string

	// Path locates the node inside the tree, e.g. "where.left.right".
	Path string
}

func (e *UnsupportedConditionError) Error() string {
	loc := ""
	if e.Path != "" {
		loc = " at " + e.Path
	}
	if e.Operator != "" {
		return fmt.Sprintf("unsupported comparison operator %q%s", e.Operator, loc)
	}
	return fmt.Sprintf("unsupported condition node %s%s", e.Node, loc)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUnsupportedDialect reports whether err is or wraps an UnsupportedDialectError.
func IsUnsupportedDialect(err error) bool {
	var de *UnsupportedDialectError
	return errors.As(err, &de)
}

// IsUnsupportedOperation reports whether err is or wraps an UnsupportedOperationError.
func IsUnsupportedOperation(err error) bool {
	var oe *UnsupportedOperationError
	return errors.As(err, &oe)
}

// IsUnsupportedCondition reports whether err is or wraps an UnsupportedConditionError.
func IsUnsupportedCondition(err error) bool {
	var ce *UnsupportedConditionError
	return errors.As(err, &ce)
}

// KindOf classifies err. A nil error has no kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return KindValidation
	case IsUnsupportedDialect(err):
		return KindUnsupportedDialect
	case IsUnsupportedOperation(err):
		return KindUnsupportedOperation
	case IsUnsupportedCondition(err):
		return KindUnsupportedCondition
	default:
		return KindOther
	}
}
