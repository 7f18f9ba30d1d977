package harness

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/sqlerr"
	"github.com/roach88/sqlir/internal/sqlgen"
)

// Harness is the scenario execution engine.
type Harness struct {
	logger *slog.Logger
}

// New returns a harness logging to logger. A nil logger discards output.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with logging suppressed.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run generates every case for every dialect it names and checks the output
// against the expectations. Expectation mismatches are reported in the
// result; the error is only for scenarios that cannot run at all.
//
// Dialects are visited in sorted name order so results are deterministic.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("nil scenario")
	}

	result := NewResult(scenario.Name)
	for _, c := range scenario.Cases {
		if len(c.Statements) == 0 {
			return nil, fmt.Errorf("case %q has no statements (scenarios must be loaded with LoadScenario)", c.Name)
		}

		names := make([]string, 0, len(c.Expect))
		for name := range c.Expect {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			o := h.runCase(c, name, c.Expect[name])
			result.Add(o)
		}
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"outcomes", len(result.Outcomes),
		"failed", result.Failed(),
	)
	return result, nil
}

func (h *Harness) runCase(c Case, name string, exp Expectation) Outcome {
	// Unknown names are passed through so the generator reports them.
	id, _ := dialect.Parse(name)

	sql, err := sqlgen.GenerateScript(c.Statements, id)
	o := Outcome{Case: c.Name, Dialect: name, SQL: sql}
	if err != nil {
		o.ErrorKind = sqlerr.KindOf(err)
		o.Error = err.Error()
	}

	o.Message = check(exp, sql, err)
	o.Pass = o.Message == ""

	h.logger.Debug("case generated",
		"case", c.Name,
		"dialect", name,
		"pass", o.Pass,
		"error_kind", string(o.ErrorKind),
	)
	return o
}

// check returns why the output does not meet the expectation, or "".
func check(exp Expectation, sql string, err error) string {
	if !exp.Success() {
		if err == nil {
			return fmt.Sprintf("expected %s error, got SQL: %s", exp.Error, sql)
		}
		if kind := sqlerr.KindOf(err); kind != exp.Error {
			return fmt.Sprintf("expected %s error, got %s: %v", exp.Error, kind, err)
		}
		return ""
	}

	if err != nil {
		return fmt.Sprintf("unexpected %s error: %v", sqlerr.KindOf(err), err)
	}
	if want := strings.TrimSpace(exp.SQL); want != "" && want != sql {
		return fmt.Sprintf("SQL mismatch:\n  want: %s\n  got:  %s", want, sql)
	}
	var missing []string
	for _, frag := range exp.Contains {
		if !strings.Contains(sql, frag) {
			missing = append(missing, fmt.Sprintf("%q", frag))
		}
	}
	if len(missing) > 0 {
		return fmt.Sprintf("SQL is missing %s: %s", strings.Join(missing, ", "), sql)
	}
	return ""
}
