package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/pkg/yen"
	"github.com/shopspring/decimal"
)

// TemplateRegistry manages built-in what-if templates
type TemplateRegistry struct {
	templates map[string]Template
}

// Template represents a named collection of transforms
type Template struct {
	Name        string
	Description string
	Transforms  []StateTransform
}

// NewTemplateRegistry creates an empty template registry
func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]Template),
	}
}

// Register adds a template to the registry
func (tr *TemplateRegistry) Register(t Template) {
	tr.templates[strings.ToLower(t.Name)] = t
}

// Get retrieves a template by name (case-insensitive)
func (tr *TemplateRegistry) Get(name string) (Template, bool) {
	t, ok := tr.templates[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// List returns all registered template names, sorted
func (tr *TemplateRegistry) List() []string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func pct(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// CreateBuiltInTemplates creates a template registry with common what-if cases
func CreateBuiltInTemplates() *TemplateRegistry {
	registry := NewTemplateRegistry()

	for _, step := range []struct {
		label  string
		factor string
	}{
		{"up_10pct", "1.1"},
		{"down_10pct", "0.9"},
		{"down_20pct", "0.8"},
	} {
		registry.Register(Template{
			Name:        "sales_" + step.label,
			Description: fmt.Sprintf("Sales at %s of the booked amount", yen.FormatRate(pct(step.factor))),
			Transforms:  []StateTransform{&ScaleTotal{Field: "sales", Factor: pct(step.factor)}},
		})
	}

	registry.Register(Template{
		Name:        "expenses_up_10pct",
		Description: "Expenses at 110% of the booked amount",
		Transforms:  []StateTransform{&ScaleTotal{Field: "expenses", Factor: pct("1.1")}},
	})

	registry.Register(Template{
		Name:        "invoice_registered",
		Description: "Company registered as a qualified invoice issuer",
		Transforms:  []StateTransform{&SetInvoiceRegistration{Registered: true}},
	})

	registry.Register(Template{
		Name:        "invoice_unregistered",
		Description: "Company not registered as a qualified invoice issuer",
		Transforms:  []StateTransform{&SetInvoiceRegistration{Registered: false}},
	})

	registry.Register(Template{
		Name:        "no_carryforward",
		Description: "No tax loss carried forward from prior years",
		Transforms:  []StateTransform{&ScaleTotal{Field: "loss_carryforward", Factor: decimal.Zero}},
	})

	registry.Register(Template{
		Name:        "downturn",
		Description: "Sales down 20% with expenses unchanged",
		Transforms: []StateTransform{
			&ScaleTotal{Field: "sales", Factor: pct("0.8")},
		},
	})

	registry.Register(Template{
		Name:        "expansion",
		Description: "Sales up 10%, expenses up 10%, headcount above 50",
		Transforms: []StateTransform{
			&ScaleTotal{Field: "sales", Factor: pct("1.1")},
			&ScaleTotal{Field: "expenses", Factor: pct("1.1")},
			&SetEmployees{Count: 51},
		},
	})

	return registry
}

// ApplyTemplate applies a template to a base state
func ApplyTemplate(base *domain.FinancialState, template Template) (*domain.FinancialState, error) {
	return ApplyTransforms(base, template.Transforms)
}

// ParseTemplateList parses a comma-separated list of template names
func ParseTemplateList(templateList string) []string {
	if templateList == "" {
		return nil
	}

	parts := strings.Split(templateList, ",")
	templates := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			templates = append(templates, trimmed)
		}
	}
	return templates
}

// GetTemplateHelp returns formatted help text for all templates
func GetTemplateHelp(registry *TemplateRegistry) string {
	if len(registry.templates) == 0 {
		return "No templates registered"
	}

	var sb strings.Builder
	sb.WriteString("Available Templates:\n\n")
	for _, name := range registry.List() {
		t := registry.templates[name]
		sb.WriteString(fmt.Sprintf("  %-22s %s\n", t.Name, t.Description))
	}
	sb.WriteString("\nUsage:\n")
	sb.WriteString("  taxsim compare state.yaml --with sales_down_10pct,invoice_registered\n")

	return sb.String()
}
