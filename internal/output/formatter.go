package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/taxsim/internal/domain"
)

// Formatter defines a pluggable report formatter that returns a byte slice.
// Implementations should be pure (no side effects besides deterministic formatting).
type Formatter interface {
	Format(report *domain.Report) ([]byte, error)
	// Name returns a short identifier for logging / debugging.
	Name() string
}

// FormatterFunc adapter to allow ordinary functions to act as a Formatter.
type FormatterFunc struct {
	ID string
	F  func(*domain.Report) ([]byte, error)
}

func (ff FormatterFunc) Format(r *domain.Report) ([]byte, error) { return ff.F(r) }
func (ff FormatterFunc) Name() string                            { return ff.ID }

// WriteFormatted runs a formatter and writes the output into dir as a
// timestamped file with the given extension.
func WriteFormatted(f Formatter, report *domain.Report, dir, ext string) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to write")
	}
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("tax_report_%s_%s.%s", report.FiscalYear, time.Now().Format("20060102_150405"), ext)
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", err
	}
	return filename, nil
}

// builtInFormatters stores available formatters.
var builtInFormatters = []Formatter{
	ConsoleFormatter{},
	AuditFormatter{},
	CSVFormatter{},
	TraceCSVExporter{},
	JSONFormatter{Pretty: true},
	YAMLFormatter{},
}

// GetFormatterByName fetches a registered formatter, resolving aliases.
func GetFormatterByName(name string) Formatter {
	n := NormalizeFormatName(name)
	for _, f := range builtInFormatters {
		if f.Name() == n {
			return f
		}
	}
	return nil
}

// aliasMap provides user-friendly synonyms for format names.
var aliasMap = map[string]string{
	"table":       "console",
	"text":        "console",
	"trace":       "audit",
	"verbose":     "audit",
	"csv-summary": "csv",
	"csv-trace":   "trace-csv",
	"json-pretty": "json",
	"yml":         "yaml",
}

// NormalizeFormatName lowers and resolves aliases.
func NormalizeFormatName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if mapped, ok := aliasMap[n]; ok {
		return mapped
	}
	return n
}

// AvailableFormatterNames returns the canonical formatter names.
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(builtInFormatters))
	for _, f := range builtInFormatters {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases returns the supported alias keys.
func AvailableFormatAliases() []string {
	keys := make([]string, 0, len(aliasMap))
	for k := range aliasMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extension returns the file extension conventionally used for a format.
func Extension(name string) string {
	switch NormalizeFormatName(name) {
	case "csv", "trace-csv":
		return "csv"
	case "json":
		return "json"
	case "yaml":
		return "yaml"
	default:
		return "txt"
	}
}
