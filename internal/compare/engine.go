package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/simulation"
	"github.com/rgehrsitz/taxsim/internal/transform"
)

// CompareEngine orchestrates what-if and year-over-year comparisons
type CompareEngine struct {
	Simulator         *simulation.Simulator
	MetricsCalculator *MetricsCalculator
	TemplateRegistry  *transform.TemplateRegistry
	TransformRegistry *transform.TransformRegistry
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(sim *simulation.Simulator) *CompareEngine {
	return &CompareEngine{
		Simulator:         sim,
		MetricsCalculator: NewMetricsCalculator(),
		TemplateRegistry:  transform.CreateBuiltInTemplates(),
		TransformRegistry: transform.NewTransformRegistry(),
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Year       string   // Fiscal year to calculate; defaults to the state's own year
	Templates  []string // Template names, one alternative each
	Transforms []string // Ad-hoc transform specs, one alternative each
	BaseName   string   // Display name of the base case
}

// Compare calculates the base state and one alternative per template or
// transform spec, in the order given. A state recorded for another fiscal
// year is calculated under options.Year's rules.
func (ce *CompareEngine) Compare(
	ctx context.Context,
	state *domain.FinancialState,
	options CompareOptions,
) (*ComparisonSet, error) {
	if state == nil {
		return nil, fmt.Errorf("base state cannot be nil")
	}
	year := options.Year
	if year == "" {
		year = state.FiscalYear
	}
	if state.FiscalYear != year {
		state = state.DeepCopy()
		state.FiscalYear = year
	}
	baseName := options.BaseName
	if baseName == "" {
		baseName = "base"
	}

	baseReport, err := ce.Simulator.Calculate(ctx, year, state)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base case: %w", err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(baseName, baseReport)

	type alternative struct {
		name        string
		description string
		transforms  []transform.StateTransform
	}
	var alts []alternative
	for _, templateName := range options.Templates {
		template, ok := ce.TemplateRegistry.Get(templateName)
		if !ok {
			return nil, fmt.Errorf("template %s not found", templateName)
		}
		alts = append(alts, alternative{template.Name, template.Description, template.Transforms})
	}
	for _, spec := range options.Transforms {
		t, err := ce.TransformRegistry.ParseTransformSpec(spec)
		if err != nil {
			return nil, err
		}
		alts = append(alts, alternative{t.Name(), t.Description(), []transform.StateTransform{t}})
	}

	alternatives := []ComparisonResult{}
	for _, alt := range alts {
		modified, err := transform.ApplyTransforms(state, alt.transforms)
		if err != nil {
			return nil, fmt.Errorf("failed to apply %s: %w", alt.name, err)
		}
		report, err := ce.Simulator.Calculate(ctx, year, modified)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate %s: %w", alt.name, err)
		}

		result := ce.MetricsCalculator.CalculateMetrics(alt.name, report)
		result.Description = alt.description
		alternatives = append(alternatives, ce.MetricsCalculator.CalculateComparison(result, baseResult))
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   baseName,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

// CompareYears calculates each fiscal year from stateFor and compares every
// year against baseYear. The years run concurrently.
func (ce *CompareEngine) CompareYears(
	ctx context.Context,
	baseYear string,
	years []string,
	stateFor simulation.StateFunc,
) (*ComparisonSet, error) {
	all := append([]string{baseYear}, years...)
	reports, err := ce.Simulator.CalculateYears(ctx, all, stateFor)
	if err != nil {
		return nil, err
	}

	baseName := "FY" + baseYear
	baseResult := ce.MetricsCalculator.CalculateMetrics(baseName, reports[0])
	baseResult.Description = fmt.Sprintf("Fiscal year %s rules", baseYear)

	alternatives := []ComparisonResult{}
	for i, year := range years {
		result := ce.MetricsCalculator.CalculateMetrics("FY"+year, reports[i+1])
		result.Description = fmt.Sprintf("Fiscal year %s rules", year)
		alternatives = append(alternatives, ce.MetricsCalculator.CalculateComparison(result, baseResult))
	}

	compSet := &ComparisonSet{
		BaseScenarioName:   baseName,
		BaseResult:         &baseResult,
		AlternativeResults: alternatives,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}
