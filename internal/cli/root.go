// Package cli provides the command-line interface for the product catalog.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/source"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// Output formats.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	source      string
	databaseURL string
	count       int
	seed        int64
	pageSize    int
	lowStock    int
	output      string
	verbose     bool
}

// runtime is what PersistentPreRunE hands to subcommands.
type runtime struct {
	products []core.Product
	opts     *globalOptions
	logger   *slog.Logger
}

type runtimeKey struct{}

func runtimeFrom(cmd *cobra.Command) *runtime {
	rt, _ := cmd.Context().Value(runtimeKey{}).(*runtime)
	return rt
}

// NewRootCmd creates the root command. A nil src loads the catalog from the
// environment configuration, overridden by flags.
func NewRootCmd(src source.Source) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse a product catalog from the terminal",
		Long: `catalog loads a product snapshot (generated or from PostgreSQL) and
renders it the same way the web dashboard does: search, sort, paginate,
reorder columns and build a cart.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return setup(cmd, src, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.source, "source", "", "Data source: mock or postgres (default from DATA_SOURCE)")
	pf.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL connection string (default from DATABASE_URL)")
	pf.IntVar(&opts.count, "count", 0, "Number of generated products for the mock source")
	pf.Int64Var(&opts.seed, "seed", 0, "Seed for the mock source (0 picks one from the clock)")
	pf.IntVar(&opts.pageSize, "page-size", 0, "Rows per page (default from VIEW_PAGE_SIZE)")
	pf.IntVar(&opts.lowStock, "low-stock", 0, "Low stock threshold (default from VIEW_LOW_STOCK_THRESHOLD)")
	pf.StringVarP(&opts.output, "output", "o", FormatTable, "Output format (table|markdown|json)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging to stderr")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{FormatTable, FormatMarkdown, FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("source", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(source.KindMock), string(source.KindPostgres)}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newBrowseCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newCartCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// setup loads configuration and the product snapshot.
func setup(cmd *cobra.Command, src source.Source, opts *globalOptions) error {
	switch opts.output {
	case FormatTable, FormatMarkdown, FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	// stdout carries the rendered table; logs go to stderr.
	logger := logging.New(cmd.ErrOrStderr(), level, "text")
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		products []core.Product
		err      error
	)
	if src != nil {
		products, err = src.Load(ctx)
	} else {
		products, err = loadConfigured(ctx, opts, logger)
	}
	if err != nil {
		return err
	}

	rt := &runtime{products: products, opts: opts, logger: logger}
	cmd.SetContext(context.WithValue(ctx, runtimeKey{}, rt))
	return nil
}

func loadConfigured(ctx context.Context, opts *globalOptions, logger *slog.Logger) ([]core.Product, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	data := cfg.Data
	if opts.source != "" {
		data.Source = opts.source
	}
	if opts.databaseURL != "" {
		data.DatabaseURL = opts.databaseURL
	}
	if opts.count > 0 {
		data.MockCount = opts.count
	}
	if opts.seed != 0 {
		data.MockSeed = opts.seed
	}
	if opts.pageSize <= 0 {
		opts.pageSize = cfg.View.PageSize
	}
	if opts.lowStock <= 0 {
		opts.lowStock = cfg.View.LowStockThreshold
	}

	return source.LoadAll(ctx, data, logger)
}

// workspace builds a fresh workspace over the loaded snapshot.
func (rt *runtime) workspace() *core.Workspace {
	return core.NewWorkspace(rt.products, core.WorkspaceOptions{
		PageSize:          rt.opts.pageSize,
		LowStockThreshold: rt.opts.lowStock,
		Logger:            rt.logger,
	})
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "catalog v%s (commit %s)\n", Version, GitCommit)
			return err
		},
	}
}

// Execute runs the root command against the configured source.
func Execute() error {
	rootCmd := NewRootCmd(nil)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		return err
	}
	return nil
}

// describe prefers the user-facing message for engine errors.
func describe(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return err.Error()
}
