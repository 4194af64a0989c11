package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"gopkg.in/yaml.v3"
)

// JSONFormatter renders the whole report, trace included.
type JSONFormatter struct {
	Pretty bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *domain.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}
	if j.Pretty {
		return json.MarshalIndent(report, "", "  ")
	}
	return json.Marshal(report)
}

// YAMLFormatter renders the whole report as YAML.
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(report *domain.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}
	return yaml.Marshal(report)
}

// CSVFormatter writes one row per result and settlement line.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *domain.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"FiscalYear", "Section", "TaxName", "TaxAmount"}); err != nil {
		return nil, err
	}
	sections := []struct {
		name  string
		lines []domain.TaxLine
	}{
		{"result", report.Lines},
		{"settlement", report.Settlement},
	}
	for _, s := range sections {
		for _, l := range s.lines {
			if err := w.Write([]string{report.FiscalYear, s.name, l.TaxName, strconv.FormatInt(l.TaxAmount, 10)}); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// TraceCSVExporter writes the calculation trace, one row per step.
type TraceCSVExporter struct{}

func (c TraceCSVExporter) Name() string { return "trace-csv" }

func (c TraceCSVExporter) Format(report *domain.Report) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"FiscalYear", "Order", "StepID", "DisplayName", "Category", "Value", "Narrative", "Fault"}); err != nil {
		return nil, err
	}
	for i, e := range report.Trace {
		row := []string{report.FiscalYear, strconv.Itoa(i + 1), e.StepID, e.DisplayName, e.Category, e.Value.String(), e.Narrative, e.Fault}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
