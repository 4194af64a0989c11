package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxsim/internal/breakeven"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func breakEvenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "break-even [input-file]",
		Short: "Find the smallest change of an input figure that brings a tax metric to a target",
		Long: `Solve for the adjustment of one input figure at which a tax metric first
reaches the target or goes below it.

Examples:
  taxsim break-even state.yaml --field expenses --target 5000000 --max 20000000
  taxsim break-even state.yaml --field sales --metric national_tax_due --target 0 --min -50000000 --max 0
  taxsim break-even state.yaml --field expenses --target 5000000 --max 20000000 --sweep`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			year, _ := cmd.Flags().GetString("year")
			state, _, err := loadInput(ctx, cmd, args, year)
			if err != nil {
				return err
			}
			state, year = retarget(state, year)

			field, _ := cmd.Flags().GetString("field")
			metric, _ := cmd.Flags().GetString("metric")
			target, err := decimalFlag(cmd, "target")
			if err != nil {
				return err
			}
			minAdj, err := decimalFlag(cmd, "min")
			if err != nil {
				return err
			}
			maxAdj, err := decimalFlag(cmd, "max")
			if err != nil {
				return err
			}

			req := breakeven.OptimizationRequest{
				BaseState:   state,
				Year:        year,
				Field:       field,
				Metric:      breakeven.Metric(metric),
				Target:      target,
				Constraints: breakeven.Constraints{MinAdjustment: minAdj, MaxAdjustment: maxAdj},
			}

			options := breakeven.DefaultSolverOptions()
			if steps, _ := cmd.Flags().GetInt("steps"); steps > 0 {
				options.GridResolution = steps
			}
			solver := breakeven.NewSolver(newSimulator(cmd), options)
			out := cmd.OutOrStdout()
			formatter := &breakeven.TableFormatter{}

			if sweep, _ := cmd.Flags().GetBool("sweep"); sweep {
				points, err := solver.Sweep(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatSweep(points))
				return nil
			}

			result, err := solver.Optimize(ctx, req)
			if err != nil {
				return err
			}

			outputFormat, _ := cmd.Flags().GetString("format")
			switch strings.ToLower(outputFormat) {
			case "json":
				text, err := (&breakeven.JSONFormatter{Pretty: true}).Format(result)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, text)
			case "table", "console", "":
				fmt.Fprint(out, formatter.Format(result))
			default:
				return fmt.Errorf("unknown output format: %s (valid: table, json)", outputFormat)
			}
			return nil
		},
	}

	metrics := make([]string, 0, len(breakeven.Metrics()))
	for _, m := range breakeven.Metrics() {
		metrics = append(metrics, string(m))
	}

	cmd.Flags().String("year", "", "Fiscal year to calculate (default: the state's own year)")
	cmd.Flags().String("field", "expenses", "Input figure to adjust")
	cmd.Flags().String("metric", string(breakeven.MetricTotalTax), "Metric to drive ("+strings.Join(metrics, ", ")+")")
	cmd.Flags().String("target", "0", "Target value of the metric, in yen")
	cmd.Flags().String("min", "0", "Smallest adjustment to try, in yen")
	cmd.Flags().String("max", "10000000", "Largest adjustment to try, in yen")
	cmd.Flags().Bool("sweep", false, "Tabulate the metric across the range instead of solving")
	cmd.Flags().Int("steps", 0, "Number of sweep intervals (default 10)")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	return cmd
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	v, err := decimal.NewFromString(strings.ReplaceAll(raw, "_", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s value %q: %w", name, raw, err)
	}
	return v, nil
}
