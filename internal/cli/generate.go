package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/loader"
	"github.com/roach88/sqlir/internal/sqlerr"
	"github.com/roach88/sqlir/internal/sqlgen"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Dialect string
	Out     string // single output file
	OutDir  string // one .sql file per input
	Jobs    int
}

// GeneratedFile is the SQL generated for one input document.
type GeneratedFile struct {
	Path       string `json:"path"`
	Output     string `json:"output,omitempty"`
	Statements int    `json:"statements"`
	SQL        string `json:"sql"`
}

// GenerateResult is the payload of a successful generate run.
type GenerateResult struct {
	Dialect string          `json:"dialect"`
	Files   []GeneratedFile `json:"files"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <file-or-dir>...",
		Short: "Generate SQL for a dialect",
		Long: `Generate SQL for every statement of the given IR documents.

Documents are .json, .yaml, .yml or .cue files; directories are searched
recursively. Documents are loaded concurrently and printed in argument order.
Generation is all-or-nothing: on the first failure nothing is printed or
written.

Exit codes:
  0 - SQL generated
  1 - A document is invalid or uses an operation the dialect lacks
  2 - Command error (missing dialect, unreadable paths, etc.)

Examples:
  sqlir generate --dialect postgres schema.yaml
  sqlir generate --dialect mysql --out build/schema.sql migrations/
  sqlir generate --dialect sqlite --out-dir build/sqlite migrations/`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Dialect, "dialect", "d", "", "target dialect (mysql|postgres|sqlite)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write all SQL to this file")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "write one .sql file per input to this directory")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", defaultJobs, "documents loaded in parallel")

	return cmd
}

func runGenerate(opts *GenerateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.logger().With("trace_id", formatter.TraceID)
	cfg := opts.config()

	id, err := resolveDialect(opts.Dialect, cfg.Dialect)
	if err != nil {
		return formatter.Fail(ExitCommandError, codeOf(err), err.Error(), nil)
	}

	outDir := opts.OutDir
	if outDir == "" && opts.Out == "" {
		outDir = cfg.OutDir
	}
	if opts.Out != "" && outDir != "" {
		return formatter.Fail(ExitCommandError, ErrCodeUsage, "--out and --out-dir are mutually exclusive", nil)
	}

	results, err := loadDocuments(cmd.Context(), args, LoadModeFailFast, opts.Jobs, logger)
	if err != nil {
		return failLoad(formatter, err)
	}
	if failed := firstLoadError(results); failed != nil {
		return failLoad(formatter, failed.Err)
	}

	result := GenerateResult{Dialect: string(id), Files: make([]GeneratedFile, 0, len(results))}
	for _, r := range results {
		sql, err := sqlgen.GenerateScript(r.Doc.Statements, id)
		if err != nil {
			return failGenerate(formatter, r.Path, id, err)
		}
		logger.Debug("generated", "path", r.Path, "dialect", string(id), "statements", len(r.Doc.Statements))
		result.Files = append(result.Files, GeneratedFile{Path: r.Path, Statements: len(r.Doc.Statements), SQL: sql})
	}

	switch {
	case opts.Out != "":
		if err := writeCombined(opts.Out, result.Files); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
		for i := range result.Files {
			result.Files[i].Output = opts.Out
		}
	case outDir != "":
		if err := writePerFile(outDir, result.Files); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputGenerateText(cmd, result, opts.Out != "" || outDir != "")
}

// resolveDialect picks the flag value, falling back to the config file.
func resolveDialect(flag, fromConfig string) (dialect.ID, error) {
	name := flag
	if name == "" {
		name = fromConfig
	}
	if name == "" {
		return "", usageError("--dialect is required (or set dialect in --config)")
	}
	id, ok := dialect.Parse(name)
	if !ok {
		return "", &sqlerr.UnsupportedDialectError{Dialect: name}
	}
	return id, nil
}

type usageError string

func (e usageError) Error() string { return string(e) }

// codeOf returns the CLI error code for err.
func codeOf(err error) string {
	var le *loader.LoadError
	var ue usageError
	switch {
	case errors.As(err, &le):
		return le.Code
	case errors.As(err, &ue):
		return ErrCodeUsage
	}
	return kindCode(sqlerr.KindOf(err))
}

// failLoad reports a load failure. Unreadable inputs are command errors;
// inputs that were read but are not valid IR are failures.
func failLoad(formatter *OutputFormatter, err error) error {
	exit := ExitFailure
	var le *loader.LoadError
	if errors.As(err, &le) {
		switch le.Code {
		case loader.ErrCodeNotFound, loader.ErrCodeReadFailed, loader.ErrCodeScanError,
			loader.ErrCodeNoFiles, loader.ErrCodeUnknownFormat:
			exit = ExitCommandError
		}
	}
	return formatter.Fail(exit, codeOf(err), err.Error(), nil)
}

// generateFailure is the JSON detail of a failed generation.
type generateFailure struct {
	Path      string      `json:"path"`
	Dialect   string      `json:"dialect"`
	Statement int         `json:"statement"`
	Kind      sqlerr.Kind `json:"kind"`
}

func failGenerate(formatter *OutputFormatter, path string, id dialect.ID, err error) error {
	detail := generateFailure{Path: path, Dialect: string(id), Statement: -1, Kind: sqlerr.KindOf(err)}
	var se *sqlgen.ScriptError
	if errors.As(err, &se) {
		detail.Statement = se.Index
	}
	return formatter.Fail(ExitFailure, kindCode(detail.Kind), fmt.Sprintf("%s: %v", path, err), detail)
}

// writeCombined writes every script to one file.
func writeCombined(path string, files []GeneratedFile) error {
	parts := make([]string, len(files))
	for i, f := range files {
		parts[i] = f.SQL
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(strings.Join(parts, "\n\n")+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// writePerFile writes <dir>/<input base name>.sql for every input. Two
// inputs with the same base name are rejected before anything is written.
func writePerFile(dir string, files []GeneratedFile) error {
	seen := make(map[string]string, len(files))
	for i := range files {
		base := filepath.Base(files[i].Path)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".sql"
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s both map to %s", prev, files[i].Path, name)
		}
		seen[name] = files[i].Path
		files[i].Output = filepath.Join(dir, name)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, f := range files {
		if err := os.WriteFile(f.Output, []byte(f.SQL+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}
	return nil
}

func outputGenerateText(cmd *cobra.Command, result GenerateResult, wrote bool) error {
	w := cmd.OutOrStdout()

	if wrote {
		for _, f := range result.Files {
			fmt.Fprintf(w, "✓ %s -> %s (%d statement(s))\n", f.Path, f.Output, f.Statements)
		}
		return nil
	}

	for i, f := range result.Files {
		if len(result.Files) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "-- %s\n", f.Path)
		}
		fmt.Fprintln(w, f.SQL)
	}
	return nil
}
