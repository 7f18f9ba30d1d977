package harness

import (
	"fmt"

	"github.com/roach88/sqlir/internal/sqlerr"
)

// Outcome is the result of one case on one dialect.
type Outcome struct {
	Case      string      `json:"case"`
	Dialect   string      `json:"dialect"`
	SQL       string      `json:"sql,omitempty"`
	ErrorKind sqlerr.Kind `json:"error_kind,omitempty"`
	Error     string      `json:"error,omitempty"`
	Pass      bool        `json:"pass"`

	// Message says why the outcome failed its expectation.
	Message string `json:"message,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	Scenario string `json:"scenario"`

	// Pass indicates overall success: every outcome met its expectation.
	Pass bool `json:"pass"`

	Outcomes []Outcome `json:"outcomes"`

	// Errors contains one message per failed outcome.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// Add records an outcome and marks the result failed if it did not pass.
func (r *Result) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if !o.Pass {
		r.AddError(fmt.Sprintf("%s [%s]: %s", o.Case, o.Dialect, o.Message))
	}
}

// AddError adds an error message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Failed counts the outcomes that did not meet their expectation.
func (r *Result) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Pass {
			n++
		}
	}
	return n
}
