package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceState = `fiscal_year: "2024"
totals:
  sales: 100000000
  expenses: 80000000
  previous_enterprise_tax: 500000
  national_withheld_tax: 200000
  local_withheld_tax: 100000
`

func writeState(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte(referenceState), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "taxsim", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	expected := []string{"calculate", "validate", "years", "compare", "break-even", "import", "export", "templates", "transforms", "version"}
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, expected)

	out, err := run(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")

	_, err = run(t, "invalid-command")
	assert.Error(t, err)
	_, err = run(t, "--invalid-flag")
	assert.Error(t, err)
}

func TestCalculate(t *testing.T) {
	path := writeState(t)

	out, err := run(t, "calculate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "6,122,100")
	assert.Contains(t, out, "4,066,400")
	assert.NotContains(t, out, "CALCULATION TRACE")

	out, err = run(t, "calculate", path, "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "CALCULATION TRACE")

	out, err = run(t, "calculate", path, "--transform", "adjust_total:field=expenses,amount=3000000")
	require.NoError(t, err)
	assert.Contains(t, out, "5,018,000")
}

func TestCalculateJSON(t *testing.T) {
	out, err := run(t, "calculate", writeState(t), "--format", "json")
	require.NoError(t, err)

	var report struct {
		FiscalYear string `json:"fiscalYear"`
		Lines      []struct {
			TaxName   string `json:"taxName"`
			TaxAmount int64  `json:"taxAmount"`
		} `json:"lines"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "2024", report.FiscalYear)
	require.NotEmpty(t, report.Lines)
	assert.Equal(t, "Total", report.Lines[len(report.Lines)-1].TaxName)
	assert.Equal(t, int64(6_122_100), report.Lines[len(report.Lines)-1].TaxAmount)
}

func TestCalculateOtherYear(t *testing.T) {
	out, err := run(t, "calculate", writeState(t), "--year", "2023", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, `fiscal_year: "2023"`)

	_, err = run(t, "calculate", writeState(t), "--year", "1999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported fiscal year")
}

func TestCalculateOutputDir(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "calculate", writeState(t), "--format", "csv", "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written to")

	files, err := filepath.Glob(filepath.Join(dir, "tax_report_2024_*.csv"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestCalculateErrors(t *testing.T) {
	_, err := run(t, "calculate", writeState(t), "--format", "pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format: pdf")

	_, err = run(t, "calculate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "an input file or --db/--pg is required")

	_, err = run(t, "calculate", writeState(t), "--transform", "adjust_total:field=sales")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires 'amount' parameter")
}

func TestValidate(t *testing.T) {
	path := writeState(t)
	out, err := run(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("totals:\n  sales: -1\n"), 0o644))
	_, err = run(t, "validate", bad)
	assert.Error(t, err)
}

func TestLedgerRoundTrip(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	out, err := run(t, "import", writeState(t), "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported FY2024")

	out, err = run(t, "calculate", "--db", db, "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "6,122,100")

	_, err = run(t, "calculate", "--db", db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--year is required")

	_, err = run(t, "calculate", "--db", db, "--year", "2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "financial state not found")

	out, err = run(t, "years", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2024  2024-04-01 - 2025-03-31")
	assert.Contains(t, out, "Stored in "+db+": 2024")

	exported := filepath.Join(t.TempDir(), "exported.yaml")
	_, err = run(t, "export", exported, "--db", db, "--year", "2024")
	require.NoError(t, err)
	out, err = run(t, "calculate", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "6,122,100")

	_, err = run(t, "import", writeState(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--db or --pg is required")
}

func TestCompare(t *testing.T) {
	path := writeState(t)

	out, err := run(t, "compare", path, "--with", "sales_down_10pct,expenses_up_10pct")
	require.NoError(t, err)
	assert.Contains(t, out, "CORPORATE TAX COMPARISON")
	assert.Contains(t, out, "sales_down_10pct")
	assert.Contains(t, out, "OBSERVATIONS")

	out, err = run(t, "compare", path, "--with", "sales_down_10pct", "--format", "compact")
	require.NoError(t, err)
	assert.Contains(t, out, "Base: base ¥6,122,100")

	out, err = run(t, "compare", path, "--transform", "adjust_total:field=expenses,amount=3000000", "--format", "json")
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	out, err = run(t, "compare", path, "--years", "2023,2025")
	require.NoError(t, err)
	assert.Contains(t, out, "FY2025")

	_, err = run(t, "compare", path)
	assert.Error(t, err)
	_, err = run(t, "compare", path, "--with", "no_such_template")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template no_such_template not found")

	out, err = run(t, "compare", "--list-templates")
	require.NoError(t, err)
	assert.Contains(t, out, "invoice_unregistered")
}

func TestBreakEven(t *testing.T) {
	path := writeState(t)

	out, err := run(t, "break-even", path, "--field", "expenses", "--target", "5018000", "--max", "10000000")
	require.NoError(t, err)
	assert.Contains(t, out, "BREAK-EVEN ANALYSIS")
	assert.Contains(t, out, "✓ Success")
	assert.Contains(t, out, "Base Total:   ¥6,122,100")

	out, err = run(t, "break-even", path, "--field", "expenses", "--target", "5018000", "--max", "10000000", "--sweep", "--steps", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Adjustment")

	_, err = run(t, "break-even", path, "--target", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --target value")
}

func TestListings(t *testing.T) {
	out, err := run(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "sales_up_10pct")

	out, err = run(t, "transforms")
	require.NoError(t, err)
	assert.Contains(t, out, "adjust_total")
	assert.Contains(t, out, "expenses")

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "taxsim dev")
}
