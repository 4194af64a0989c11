package rules

import (
	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
)

// Rules2024 is the FY2024 rule set. Invoice-registered businesses that would
// otherwise be exempt pay 20% of output consumption tax.
func Rules2024() StepSet {
	return StepSet{
		Year:       "2024",
		SeedFields: seedFields(domain.FieldInvoiceRegistered),
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
			consumptionTaxStatusStep(true),
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
