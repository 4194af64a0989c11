package simulation

import (
	"context"
	"errors"
	"testing"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/internal/rules"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SimulatorSuite struct {
	suite.Suite
	sim   *Simulator
	state *domain.FinancialState
}

func (s *SimulatorSuite) SetupTest() {
	s.sim = New()
	s.state = &domain.FinancialState{
		FiscalYear: "2024",
		Totals: &domain.Totals{
			Sales:                 decimal.NewFromInt(100_000_000),
			Expenses:              decimal.NewFromInt(80_000_000),
			PreviousEnterpriseTax: decimal.NewFromInt(500_000),
			NationalWithheldTax:   decimal.NewFromInt(200_000),
			LocalWithheldTax:      decimal.NewFromInt(100_000),
		},
	}
}

func (s *SimulatorSuite) TestCalculate2024() {
	report, err := s.sim.Calculate(context.Background(), "2024", s.state)
	s.Require().NoError(err)

	s.Equal("2024", report.FiscalYear)
	s.Equal(int64(6_122_100), report.Total())
	s.Zero(report.Faults)

	entry, ok := report.TraceFor(domain.FieldTaxableIncome)
	s.Require().True(ok)
	s.True(entry.Value.Equal(decimal.NewFromInt(19_500_000)))
	s.Contains(entry.Narrative, "¥19,500,000")

	line, ok := report.Line(rules.LineNationalTaxDue)
	s.False(ok, "settlement lines are kept apart from the result lines")
	s.Zero(line.TaxAmount)
	s.Len(report.Settlement, 3)
}

func (s *SimulatorSuite) TestEmptyInputIsAllZero() {
	for _, year := range s.sim.Years() {
		report, err := s.sim.Calculate(context.Background(), year, nil)
		s.Require().NoError(err)
		for _, l := range report.Lines {
			s.Zero(l.TaxAmount, "%s %s", year, l.TaxName)
		}
	}
}

func (s *SimulatorSuite) TestUnsupportedYear() {
	_, err := s.sim.Calculate(context.Background(), "1999", s.state)
	s.True(errors.Is(err, domain.ErrUnsupportedFiscalYear))

	_, err = s.sim.CalculateSeed(context.Background(), "1999", nil)
	s.True(errors.Is(err, domain.ErrUnsupportedFiscalYear))
}

func (s *SimulatorSuite) TestInputErrorSurfaces() {
	_, err := s.sim.Calculate(context.Background(), "2025", s.state)
	var inputErr *domain.InputError
	s.True(errors.As(err, &inputErr))
}

func (s *SimulatorSuite) TestSeedShapeIsChecked() {
	ctx := context.Background()
	fields := mustSeedFields(s.T(), "2024")

	partial := domain.Seed{{Name: domain.FieldSales, Value: decimal.NewFromInt(50_000_000)}}
	_, err := s.sim.CalculateSeed(ctx, "2024", partial)
	var inputErr *domain.InputError
	s.Require().True(errors.As(err, &inputErr))
	s.Equal(fields[1], inputErr.Field)

	extra := append(domain.ZeroSeed(fields...), domain.SeedField{Name: "bonus", Value: decimal.Zero})
	_, err = s.sim.CalculateSeed(ctx, "2024", extra)
	s.Require().True(errors.As(err, &inputErr))
	s.Equal("bonus", inputErr.Field)

	dup := append(domain.ZeroSeed(fields...), domain.SeedField{Name: domain.FieldSales, Value: decimal.Zero})
	_, err = s.sim.CalculateSeed(ctx, "2024", dup)
	s.Require().True(errors.As(err, &inputErr))
	s.Equal(domain.FieldSales, inputErr.Field)

	report, err := s.sim.CalculateSeed(ctx, "2024", domain.ZeroSeed(fields...))
	s.Require().NoError(err)
	s.Zero(report.Faults)
}

func (s *SimulatorSuite) TestCacheReuse() {
	first, err := s.sim.Calculate(context.Background(), "2024", s.state)
	s.Require().NoError(err)
	second, err := s.sim.Calculate(context.Background(), "2024", s.state)
	s.Require().NoError(err)

	s.Equal(first.Lines, second.Lines)
	s.Equal(first.Trace, second.Trace)
	hits, misses := s.sim.Cache.Stats()
	s.Equal(1, hits)
	s.Equal(1, misses)
}

func (s *SimulatorSuite) TestCalculateYears() {
	years := []string{"2026", "2023", "2024", "2025"}
	reports, err := s.sim.CalculateYears(context.Background(), years, SameState(s.state))
	s.Require().NoError(err)
	s.Require().Len(reports, 4)
	for i, r := range reports {
		s.Equal(years[i], r.FiscalYear)
	}
	s.Equal(int64(6_122_100), reports[2].Total())
}

func (s *SimulatorSuite) TestCalculateYearsPropagatesErrors() {
	_, err := s.sim.CalculateYears(context.Background(), []string{"2024", "1999"}, SameState(s.state))
	s.True(errors.Is(err, domain.ErrUnsupportedFiscalYear))

	boom := errors.New("ledger offline")
	_, err = s.sim.CalculateYears(context.Background(), []string{"2024"},
		func(context.Context, string) (*domain.FinancialState, error) { return nil, boom })
	s.True(errors.Is(err, boom))
}

func TestSimulatorSuite(t *testing.T) {
	suite.Run(t, new(SimulatorSuite))
}

func TestSimulatorWithoutCache(t *testing.T) {
	sim := New()
	sim.Cache = nil
	sim.SetLogger(nil)

	report, err := sim.CalculateSeed(context.Background(), "2023", domain.ZeroSeed(mustSeedFields(t, "2023")...))
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Total())
	assert.IsType(t, calculation.NopLogger{}, sim.Engine.Logger)
}

func TestYears(t *testing.T) {
	assert.Equal(t, []string{"2023", "2024", "2025", "2026"}, New().Years())
}

func mustSeedFields(t *testing.T, year string) []string {
	t.Helper()
	set, err := rules.Default().Get(year)
	require.NoError(t, err)
	return set.SeedFields
}
