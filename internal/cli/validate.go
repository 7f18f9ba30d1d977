package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/sqlerr"
	"github.com/roach88/sqlir/internal/sqlgen"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Dialect string // empty checks every dialect
	Jobs    int
}

// ValidationFailure is one document, dialect or statement that did not pass.
// Statement is -1 when the whole document failed to load.
type ValidationFailure struct {
	Path      string      `json:"path"`
	Dialect   string      `json:"dialect,omitempty"`
	Statement int         `json:"statement"`
	Code      string      `json:"code"`
	Kind      sqlerr.Kind `json:"kind,omitempty"`
	Message   string      `json:"message"`
}

// ValidateResult is the payload of a validate run.
type ValidateResult struct {
	Valid      bool                `json:"valid"`
	Documents  int                 `json:"documents"`
	Statements int                 `json:"statements"`
	Dialects   []string            `json:"dialects"`
	Failures   []ValidationFailure `json:"failures,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file-or-dir>...",
		Short: "Check that IR documents generate for every dialect",
		Long: `Load every IR document and generate each statement for every dialect,
or only for --dialect. All failures are reported, not just the first.

Exit codes:
  0 - All statements generate
  1 - A document failed to load or a statement failed to generate
  2 - Command error (unknown dialect, unreadable paths, etc.)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "only check this dialect")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", defaultJobs, "documents loaded in parallel")

	return cmd
}

func runValidate(opts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.logger().With("trace_id", formatter.TraceID)

	dialects := sqlgen.Dialects()
	if opts.Dialect != "" {
		id, ok := dialect.Parse(opts.Dialect)
		if !ok {
			err := &sqlerr.UnsupportedDialectError{Dialect: opts.Dialect}
			return formatter.Fail(ExitCommandError, ErrCodeUnsupportedDialect, err.Error(), nil)
		}
		dialects = []dialect.ID{id}
	}

	results, err := loadDocuments(cmd.Context(), args, LoadModeCollectAll, opts.Jobs, logger)
	if err != nil {
		return failLoad(formatter, err)
	}

	result := ValidateResult{Dialects: make([]string, len(dialects))}
	for i, id := range dialects {
		result.Dialects[i] = string(id)
	}

	for _, r := range results {
		if r.Err != nil {
			result.Failures = append(result.Failures, ValidationFailure{
				Path:      r.Path,
				Statement: -1,
				Code:      codeOf(r.Err),
				Message:   r.Err.Error(),
			})
			continue
		}
		result.Documents++
		result.Statements += len(r.Doc.Statements)

		for _, id := range dialects {
			for i, stmt := range r.Doc.Statements {
				if _, err := sqlgen.Generate(stmt, id); err != nil {
					kind := sqlerr.KindOf(err)
					logger.Debug("statement failed", "path", r.Path, "dialect", string(id), "statement", i, "kind", string(kind))
					result.Failures = append(result.Failures, ValidationFailure{
						Path:      r.Path,
						Dialect:   string(id),
						Statement: i,
						Code:      kindCode(kind),
						Kind:      kind,
						Message:   err.Error(),
					})
				}
			}
		}
	}
	result.Valid = len(result.Failures) == 0

	if formatter.Format == "json" {
		if !result.Valid {
			return formatter.Fail(ExitFailure, result.Failures[0].Code,
				fmt.Sprintf("%d validation failure(s)", len(result.Failures)), result)
		}
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	if result.Valid {
		fmt.Fprintf(w, "✓ %d document(s) valid (%d statement(s), %d dialect(s))\n",
			result.Documents, result.Statements, len(dialects))
		return nil
	}

	for _, f := range result.Failures {
		switch {
		case f.Statement < 0:
			fmt.Fprintf(w, "✗ %s: [%s] %s\n", f.Path, f.Code, f.Message)
		default:
			fmt.Fprintf(w, "✗ %s [%s] statement %d: [%s] %s\n", f.Path, f.Dialect, f.Statement, f.Code, f.Message)
		}
	}
	fmt.Fprintf(w, "\n%d failure(s)\n", len(result.Failures))
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation failure(s)", len(result.Failures)))
}
