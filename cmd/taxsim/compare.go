package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/taxsim/internal/compare"
	"github.com/rgehrsitz/taxsim/internal/simulation"
	"github.com/rgehrsitz/taxsim/internal/transform"
	"github.com/spf13/cobra"
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [input-file]",
		Short: "Compare the base case against what-if templates, transforms or other fiscal years",
		Long: `Compare a base financial state against alternatives.

Examples:
  taxsim compare state.yaml --with sales_down_10pct,invoice_unregistered
  taxsim compare state.yaml --transform adjust_total:field=expenses,amount=3000000 --format csv
  taxsim compare state.yaml --years 2025,2026
  taxsim compare --list-templates
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if listTemplates, _ := cmd.Flags().GetBool("list-templates"); listTemplates {
				fmt.Fprint(cmd.OutOrStdout(), transform.GetTemplateHelp(transform.CreateBuiltInTemplates()))
				return nil
			}

			ctx := cmd.Context()
			year, _ := cmd.Flags().GetString("year")
			state, source, err := loadInput(ctx, cmd, args, year)
			if err != nil {
				return err
			}
			state, year = retarget(state, year)

			engine := compare.NewCompareEngine(newSimulator(cmd))

			templatesStr, _ := cmd.Flags().GetString("with")
			specs, _ := cmd.Flags().GetStringArray("transform")
			yearsStr, _ := cmd.Flags().GetString("years")

			var compSet *compare.ComparisonSet
			if yearsStr != "" {
				if templatesStr != "" || len(specs) > 0 {
					return fmt.Errorf("--years cannot be combined with --with or --transform")
				}
				years := transform.ParseTemplateList(yearsStr)
				compSet, err = engine.CompareYears(ctx, year, years, simulation.SameState(state))
			} else {
				templateNames := transform.ParseTemplateList(templatesStr)
				if len(templateNames) == 0 && len(specs) == 0 {
					return fmt.Errorf("--with, --transform or --years is required (use --list-templates to see available templates)")
				}
				baseName, _ := cmd.Flags().GetString("base")
				compSet, err = engine.Compare(ctx, state, compare.CompareOptions{
					Year:       year,
					Templates:  templateNames,
					Transforms: specs,
					BaseName:   baseName,
				})
			}
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}
			compSet.ConfigPath = source

			out := cmd.OutOrStdout()
			outputFormat, _ := cmd.Flags().GetString("format")
			switch strings.ToLower(outputFormat) {
			case "csv":
				formatter := &compare.CSVFormatter{}
				text, err := formatter.Format(compSet)
				if err != nil {
					return fmt.Errorf("failed to format CSV: %w", err)
				}
				fmt.Fprint(out, text)

			case "json":
				withReports, _ := cmd.Flags().GetBool("include-reports")
				formatter := &compare.JSONFormatter{Pretty: true, IncludeReports: withReports}
				text, err := formatter.Format(compSet)
				if err != nil {
					return fmt.Errorf("failed to format JSON: %w", err)
				}
				fmt.Fprintln(out, text)

			case "compact":
				formatter := &compare.TableFormatter{}
				fmt.Fprintln(out, formatter.FormatCompact(compSet))

			case "table", "console", "":
				formatter := &compare.TableFormatter{}
				fmt.Fprint(out, formatter.Format(compSet))

			default:
				return fmt.Errorf("unknown output format: %s (valid: table, compact, csv, json)", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().String("year", "", "Fiscal year to calculate (default: the state's own year)")
	cmd.Flags().String("base", "base", "Display name of the base case")
	cmd.Flags().String("with", "", "Comma-separated list of templates to compare")
	cmd.Flags().StringArray("transform", nil, "Transform spec compared as its own case (repeatable)")
	cmd.Flags().String("years", "", "Comma-separated fiscal years to compare against the base year")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, compact, csv, json)")
	cmd.Flags().Bool("include-reports", false, "Embed the full reports in JSON output")
	cmd.Flags().Bool("list-templates", false, "List all available what-if templates")
	return cmd
}
