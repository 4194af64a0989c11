package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rgehrsitz/taxsim/internal/config"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/ledger"
	"github.com/rgehrsitz/taxsim/internal/output"
	"github.com/rgehrsitz/taxsim/internal/simulation"
	"github.com/rgehrsitz/taxsim/internal/transform"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taxsim %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.Main.Version
	}
	return ""
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taxsim",
		Short: "Japanese corporate tax calculator CLI",
		Long: `Calculates the annual corporate tax liability of a Japanese company from its
closing balances: corporate tax, local corporate tax, resident tax, enterprise
tax and the special local corporate tax, with per-step audit trail.

Input comes from a YAML/JSON state file or from a ledger database (--db/--pg).`,
		SilenceUsage: true,
	}

	root.PersistentFlags().Bool("debug", false, "Enable debug output for detailed calculations")
	root.PersistentFlags().String("db", "", "SQLite ledger database to read states from")
	root.PersistentFlags().String("pg", "", "Postgres DSN of the ledger database")

	root.AddCommand(
		calculateCmd(),
		validateCmd(),
		yearsCmd(),
		compareCmd(),
		breakEvenCmd(),
		importCmd(),
		exportCmd(),
		templatesCmd(),
		transformsCmd(),
		versionCmd(),
	)
	return root
}

func newSimulator(cmd *cobra.Command) *simulation.Simulator {
	sim := simulation.New()
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		sim.SetLogger(simpleCLILogger{})
	}
	return sim
}

// openStore opens the ledger named by --pg or --db. It returns a nil store
// when neither flag is set.
func openStore(ctx context.Context, cmd *cobra.Command) (ledger.Store, string, error) {
	dsn, _ := cmd.Flags().GetString("pg")
	dbPath, _ := cmd.Flags().GetString("db")

	var (
		store ledger.Store
		label string
	)
	switch {
	case dsn != "":
		pg, err := ledger.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, "", err
		}
		store, label = pg, "postgres"
	case dbPath != "":
		sq, err := ledger.OpenSQLite(dbPath)
		if err != nil {
			return nil, "", err
		}
		store, label = sq, dbPath
	default:
		return nil, "", nil
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, "", err
	}
	return store, label, nil
}

// loadInput reads the financial state from the input file argument or, when
// none is given, the year's state from the ledger.
func loadInput(ctx context.Context, cmd *cobra.Command, args []string, year string) (*domain.FinancialState, string, error) {
	if len(args) == 1 {
		state, err := config.NewInputParser().LoadFromFile(args[0])
		if err != nil {
			return nil, "", err
		}
		return state, args[0], nil
	}

	store, label, err := openStore(ctx, cmd)
	if err != nil {
		return nil, "", err
	}
	if store == nil {
		return nil, "", errors.New("an input file or --db/--pg is required")
	}
	defer store.Close()

	if year == "" {
		return nil, "", errors.New("--year is required when reading from a ledger")
	}
	state, err := store.LoadFinancialState(ctx, year)
	if err != nil {
		return nil, "", err
	}
	return state, fmt.Sprintf("%s FY%s", label, year), nil
}

// applyTransformFlag applies the --transform specs in order.
func applyTransformFlag(cmd *cobra.Command, state *domain.FinancialState) (*domain.FinancialState, error) {
	specs, _ := cmd.Flags().GetStringArray("transform")
	if len(specs) == 0 {
		return state, nil
	}
	transforms, err := transform.NewTransformRegistry().ParseTransformSpecs(specs)
	if err != nil {
		return nil, err
	}
	return transform.ApplyTransforms(state, transforms)
}

// retarget hands the state to year's rule set: a state for another year is
// recalculated under the requested year's rules.
func retarget(state *domain.FinancialState, year string) (*domain.FinancialState, string) {
	if year == "" {
		return state, state.FiscalYear
	}
	if state.FiscalYear == year {
		return state, year
	}
	c := state.DeepCopy()
	c.FiscalYear = year
	return c, year
}

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [input-file]",
		Short: "Calculate the corporate tax of one fiscal year",
		Long: `Calculate the corporate tax of one fiscal year.

Examples:
  taxsim calculate state.yaml
  taxsim calculate state.yaml --year 2025 --format audit
  taxsim calculate state.yaml --transform adjust_total:field=expenses,amount=3000000
  taxsim calculate --db ledger.db --year 2024 --format json --output reports/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			year, _ := cmd.Flags().GetString("year")

			state, _, err := loadInput(ctx, cmd, args, year)
			if err != nil {
				return err
			}
			state, err = applyTransformFlag(cmd, state)
			if err != nil {
				return err
			}
			state, year = retarget(state, year)

			report, err := newSimulator(cmd).Calculate(ctx, year, state)
			if err != nil {
				return err
			}

			outputFormat, _ := cmd.Flags().GetString("format")
			if withTrace, _ := cmd.Flags().GetBool("trace"); withTrace && output.NormalizeFormatName(outputFormat) == "console" {
				outputFormat = "audit"
			}
			f := output.GetFormatterByName(outputFormat)
			if f == nil {
				return fmt.Errorf("unknown output format: %s (valid: %s; aliases: %s)", outputFormat,
					strings.Join(output.AvailableFormatterNames(), ", "),
					strings.Join(output.AvailableFormatAliases(), ", "))
			}

			if dir, _ := cmd.Flags().GetString("output"); dir != "" {
				filename, err := output.WriteFormatted(f, report, dir, output.Extension(outputFormat))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
				return nil
			}

			data, err := f.Format(report)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().String("year", "", "Fiscal year to calculate (default: the state's own year)")
	cmd.Flags().StringP("format", "f", "console", "Output format (console, audit, csv, trace-csv, json, yaml)")
	cmd.Flags().Bool("trace", false, "Include the calculation trace in console output")
	cmd.Flags().StringArray("transform", nil, "What-if transform applied before calculating (repeatable)")
	cmd.Flags().String("output", "", "Write the report into this directory instead of stdout")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate a financial state file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputFile := args[0]
			state, err := config.NewInputParser().LoadFromFile(inputFile)
			if err != nil {
				return err
			}

			sim := newSimulator(cmd)
			if state.FiscalYear != "" {
				if _, err := sim.Params.Build(state.FiscalYear, state); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Input file %s is valid\n", inputFile)
			return nil
		},
	}
}

func yearsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "years",
		Short: "List the supported fiscal years and the years stored in the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Supported fiscal years:")
			for _, year := range newSimulator(cmd).Years() {
				start, end, err := domain.FiscalYearPeriod(year)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s  %s - %s\n", year, start.Format("2006-01-02"), end.Format("2006-01-02"))
			}

			ctx := cmd.Context()
			store, label, err := openStore(ctx, cmd)
			if err != nil || store == nil {
				return err
			}
			defer store.Close()

			stored, err := store.Years(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Stored in %s: %s\n", label, strings.Join(stored, ", "))
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [input-file]",
		Short: "Store a financial state file in the ledger database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := config.NewInputParser().LoadFromFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, label, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("--db or --pg is required")
			}
			defer store.Close()

			if err := store.SaveFinancialState(ctx, state); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported FY%s into %s\n", state.FiscalYear, label)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [output-file]",
		Short: "Write a stored financial state back to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetString("year")
			state, source, err := loadInput(cmd.Context(), cmd, nil, year)
			if err != nil {
				return err
			}
			if err := config.SaveFinancialState(state, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", source, args[0])
			return nil
		},
	}
	cmd.Flags().String("year", "", "Fiscal year to export")
	return cmd
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in what-if templates",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), transform.GetTemplateHelp(transform.CreateBuiltInTemplates()))
		},
	}
}

func transformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transforms",
		Short: "List the transforms usable with --transform",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Transforms (name:key=value,...):")
			for _, name := range transform.NewTransformRegistry().List() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintf(out, "Adjustable fields: %s\n", strings.Join(transform.AdjustableFields(), ", "))
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
