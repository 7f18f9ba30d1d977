package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlir/internal/dialect"
	"github.com/roach88/sqlir/internal/sqlerr"
	"github.com/roach88/sqlir/internal/sqlgen"
)

// DialectInfo describes one supported dialect.
type DialectInfo struct {
	Name             string              `json:"name"`
	IdentQuote       string              `json:"ident_quote"`
	BackslashEscapes bool                `json:"backslash_escapes"`
	True             string              `json:"true"`
	False            string              `json:"false"`
	MaxIdentLen      int                 `json:"max_ident_len,omitempty"`
	FullJoin         bool                `json:"full_join"`
	Returning        bool                `json:"returning"`
	Capabilities     []sqlgen.Capability `json:"capabilities,omitempty"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects [dialect]",
		Short: "List supported dialects",
		Long: `List supported dialects and the lexical rules that differ between them.
With a dialect name, list which operations it can generate.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialects(rootOpts, args, cmd)
		},
	}
}

func runDialects(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	ids := sqlgen.Dialects()
	detail := len(args) == 1
	if detail {
		id, ok := dialect.Parse(args[0])
		if !ok {
			err := &sqlerr.UnsupportedDialectError{Dialect: args[0]}
			return formatter.Fail(ExitCommandError, ErrCodeUnsupportedDialect, err.Error(), nil)
		}
		ids = []dialect.ID{id}
	}

	infos := make([]DialectInfo, 0, len(ids))
	for _, id := range ids {
		t, _ := dialect.Lookup(id)
		infos = append(infos, DialectInfo{
			Name:             string(id),
			IdentQuote:       string(t.IdentQuote),
			BackslashEscapes: t.BackslashEscapes,
			True:             t.True,
			False:            t.False,
			MaxIdentLen:      t.MaxIdentLen,
			FullJoin:         t.FullJoin,
			Returning:        t.Returning,
			Capabilities:     sqlgen.Capabilities(id),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if detail {
		info := infos[0]
		fmt.Fprintf(tw, "CATEGORY\tOPERATION\t%s\n", info.Name)
		for _, c := range info.Capabilities {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Category, c.Operation, mark(c.Supported))
		}
		return tw.Flush()
	}

	fmt.Fprintln(tw, "DIALECT\tQUOTE\tBOOLEANS\tBACKSLASH\tMAX IDENT\tFULL JOIN\tRETURNING")
	for _, info := range infos {
		maxIdent := "-"
		if info.MaxIdentLen > 0 {
			maxIdent = strconv.Itoa(info.MaxIdentLen)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%s\t%s\t%s\t%s\n",
			info.Name, info.IdentQuote, info.True, info.False,
			mark(info.BackslashEscapes), maxIdent, mark(info.FullJoin), mark(info.Returning))
	}
	return tw.Flush()
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
