package rules

import (
	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
)

// baseSeedFields are the inputs shared by every rule set.
var baseSeedFields = []string{
	domain.FieldSales,
	domain.FieldExpenses,
	domain.FieldPreviousEnterpriseTax,
	domain.FieldNationalWithheldTax,
	domain.FieldLocalWithheldTax,
	domain.FieldCorporateTaxDeduction,
	domain.FieldPerCapitaLevy,
	domain.FieldBasePeriodSales,
	domain.FieldTaxablePurchases,
}

func seedFields(extra ...string) []string {
	return append(append([]string(nil), baseSeedFields...), extra...)
}

// Rules2023 is the FY2023 rule set. Consumption tax is either standard-method
// or exempt; the two-tenths special does not apply.
func Rules2023() StepSet {
	return StepSet{
		Year:       "2023",
		SeedFields: seedFields(),
		Steps: []calculation.Step{
			taxableIncomeStep(false),
			taxableIncomeRoundedStep(),
			corporateTaxRateStep(),
			corporateTaxStep(corporateRates{Reduced: reducedRate}),
			corporateTaxBaseStep(),
			corporateTaxCreditStep(),
			corporateTaxPayableStep(),
			localCorporateTaxBaseStep(),
			localCorporateTaxStep(),
			residentTaxStep(),
			businessTaxBaseStep(),
			enterpriseTaxStep(),
			specialLocalCorporateTaxStep(),
			consumptionTaxStatusStep(false),
			outputConsumptionTaxStep(),
			inputConsumptionTaxStep(),
			consumptionTaxStep(),
			localConsumptionTaxStep(),
			nationalTaxDueStep(false),
			localTaxDueStep(),
		},
		Project: standardProjection(false),
		Settle:  settlementProjection(),
	}
}
