package rules

import (
	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	largeIncomeReducedRate = decimal.RequireFromString("0.17")
	largeIncomeThreshold   = decimal.NewFromInt(1_000_000_000)
)

// Rules2025 is the FY2025 rule set. Losses carried forward reduce taxable
// income, and the reduced rate rises to 17% above ¥1 billion of income.
func Rules2025() StepSet {
	return StepSet{
		Year:       "2025",
		SeedFields: seedFields(domain.FieldInvoiceRegistered, domain.FieldLossCarryforward),
		Steps:      carryforwardSteps(false),
		Project:    standardProjection(false),
		Settle:     settlementProjection(),
	}
}

func carryforwardSteps(withDefense bool) []calculation.Step {
	steps := []calculation.Step{
		lossCarryforwardAppliedStep(),
		taxableIncomeStep(true),
		taxableIncomeRoundedStep(),
		corporateTaxRateStep(),
		corporateTaxStep(corporateRates{
			Reduced:              reducedRate,
			LargeIncomeReduced:   largeIncomeReducedRate,
			LargeIncomeThreshold: largeIncomeThreshold,
		}),
		corporateTaxBaseStep(),
		corporateTaxCreditStep(),
		corporateTaxPayableStep(),
	}
	if withDefense {
		steps = append(steps, defenseSpecialCorporateTaxStep())
	}
	return append(steps,
		localCorporateTaxBaseStep(),
		localCorporateTaxStep(),
		residentTaxStep(),
		businessTaxBaseStep(),
		enterpriseTaxStep(),
		specialLocalCorporateTaxStep(),
		consumptionTaxStatusStep(true),
		outputConsumptionTaxStep(),
		inputConsumptionTaxStep(),
		consumptionTaxStep(),
		localConsumptionTaxStep(),
		nationalTaxDueStep(withDefense),
		localTaxDueStep(),
	)
}
