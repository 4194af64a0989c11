package rules

import (
	"fmt"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/pkg/yen"
	"github.com/shopspring/decimal"
)

// Display categories.
const (
	CategoryCorporate   = "Corporate Tax"
	CategoryLocal       = "Local Corporate Tax"
	CategoryResident    = "Resident Tax"
	CategoryEnterprise  = "Enterprise Tax"
	CategoryConsumption = "Consumption Tax"
	CategorySettlement  = "Settlement"
)

var (
	reducedRateThreshold = decimal.NewFromInt(8_000_000)
	corporateRate        = decimal.RequireFromString("0.232")
	reducedRate          = decimal.RequireFromString("0.15")

	localCorporateRate  = decimal.RequireFromString("0.103")
	residentRate        = decimal.RequireFromString("0.07")
	specialLocalRate    = decimal.RequireFromString("0.37")
	defenseRate         = decimal.RequireFromString("0.04")
	defenseDeduction    = decimal.NewFromInt(5_000_000)
	consumptionRate     = decimal.RequireFromString("0.078")
	twoTenthsShare      = decimal.RequireFromString("0.2")
	taxableSalesLimit   = decimal.NewFromInt(10_000_000)
	grossUp             = decimal.NewFromInt(110)
	hundred             = decimal.NewFromInt(100)
	localConsumptionNum = decimal.NewFromInt(22)
	localConsumptionDen = decimal.NewFromInt(78)
)

// enterpriseBrackets are the Tokyo standard-rate brackets for ordinary
// corporations, applied to the business tax base.
var enterpriseBrackets = []struct {
	upTo decimal.Decimal
	rate decimal.Decimal
}{
	{decimal.NewFromInt(4_000_000), decimal.RequireFromString("0.035")},
	{decimal.NewFromInt(8_000_000), decimal.RequireFromString("0.053")},
	{decimal.Decimal{}, decimal.RequireFromString("0.07")},
}

// corporateRates configures the corporate tax step of one year.
type corporateRates struct {
	Reduced decimal.Decimal
	// LargeIncomeReduced replaces Reduced when taxable income exceeds
	// LargeIncomeThreshold. A zero threshold disables it.
	LargeIncomeReduced   decimal.Decimal
	LargeIncomeThreshold decimal.Decimal
}

func (c corporateRates) reducedFor(income decimal.Decimal) decimal.Decimal {
	if !c.LargeIncomeThreshold.IsZero() && income.GreaterThan(c.LargeIncomeThreshold) {
		return c.LargeIncomeReduced
	}
	return c.Reduced
}

func fmtYen(v calculation.Values, key string) string {
	return yen.FormatCurrency(v.Get(key))
}

func incomeBeforeCarryforward(v calculation.Values) decimal.Decimal {
	return v.Get(domain.FieldSales).Sub(v.Get(domain.FieldExpenses)).Sub(v.Get(domain.FieldPreviousEnterpriseTax))
}

func lossCarryforwardAppliedStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldLossCarryforwardApplied,
		DisplayName: "Loss Carry-forward Applied",
		Category:    CategoryCorporate,
		Reads:       []string{domain.FieldSales, domain.FieldExpenses, domain.FieldPreviousEnterpriseTax, domain.FieldLossCarryforward},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			available := yen.Floor(yen.Clamp0(v.Get(domain.FieldLossCarryforward)))
			return yen.Min(available, yen.Clamp0(yen.Floor(incomeBeforeCarryforward(v)))), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("Loss carry-forward used: %s of %s available",
				fmtYen(v, domain.FieldLossCarryforwardApplied), fmtYen(v, domain.FieldLossCarryforward))
		},
	}
}

func taxableIncomeStep(withCarryforward bool) calculation.Step {
	reads := []string{domain.FieldSales, domain.FieldExpenses, domain.FieldPreviousEnterpriseTax}
	if withCarryforward {
		reads = append(reads, domain.FieldLossCarryforwardApplied)
	}
	return calculation.Step{
		ID:          domain.FieldTaxableIncome,
		DisplayName: "Taxable Income",
		Category:    CategoryCorporate,
		Reads:       reads,
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			income := incomeBeforeCarryforward(v)
			if withCarryforward {
				income = income.Sub(v.Get(domain.FieldLossCarryforwardApplied))
			}
			return yen.Clamp0(yen.Floor(income)), nil
		},
		Narrate: func(v calculation.Values) string {
			s := fmt.Sprintf("Sales %s - expenses %s - prior-year enterprise tax %s",
				fmtYen(v, domain.FieldSales), fmtYen(v, domain.FieldExpenses), fmtYen(v, domain.FieldPreviousEnterpriseTax))
			if withCarryforward {
				s += fmt.Sprintf(" - loss carry-forward %s", fmtYen(v, domain.FieldLossCarryforwardApplied))
			}
			return s + " = " + fmtYen(v, domain.FieldTaxableIncome)
		},
	}
}

func taxableIncomeRoundedStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldTaxableIncomeRounded,
		DisplayName: "Taxable Income (rounded)",
		Category:    CategoryCorporate,
		Reads:       []string{domain.FieldTaxableIncome},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return yen.RoundDown1000(v.Get(domain.FieldTaxableIncome)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("%s rounded down to the nearest ¥1,000 = %s",
				fmtYen(v, domain.FieldTaxableIncome), fmtYen(v, domain.FieldTaxableIncomeRounded))
		},
	}
}

func corporateTaxRateStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldCorporateTaxRate,
		DisplayName: "Corporate Tax Rate",
		Category:    CategoryCorporate,
		Reads:       []string{domain.FieldTaxableIncomeRounded},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			if v.Get(domain.FieldTaxableIncomeRounded).GreaterThan(reducedRateThreshold) {
				return corporateRate, nil
			}
			return reducedRate, nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("Taxable income %s against the ¥8,000,000 threshold: top rate %s",
				fmtYen(v, domain.FieldTaxableIncomeRounded), yen.FormatRate(v.Get(domain.FieldCorporateTaxRate)))
		},
	}
}

func corporateTaxStep(rates corporateRates) calculation.Step {
	return calculation.Step{
		ID:          domain.FieldCorporateTax,
		DisplayName: "Corporate Tax",
		Category:    CategoryCorporate,
		Reads:       []string{domain.FieldTaxableIncomeRounded},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			income := v.Get(domain.FieldTaxableIncomeRounded)
			lower := yen.Min(income, reducedRateThreshold).Mul(rates.reducedFor(income))
			upper := yen.Clamp0(income.Sub(reducedRateThreshold)).Mul(corporateRate)
			return yen.Floor(lower.Add(upper)), nil
		},
		Narrate: func(v calculation.Values) string {
			income := v.Get(domain.FieldTaxableIncomeRounded)
			return fmt.Sprintf("%s × %s + %s × %s = %s",
				yen.FormatCurrency(yen.Min(income, reducedRateThreshold)), yen.FormatRate(rates.reducedFor(income)),
				yen.FormatCurrency(yen.Clamp0(income.Sub(reducedRateThreshold))), yen.FormatRate(corporateRate),
				fmtYen(v, domain.FieldCorporateTax))
		},
	}
}

func corporateTaxBaseStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldCorporateTaxBase,
		DisplayName: "Corporate Tax Base",
		Category:    CategoryCorporate,
		Reads:       []string{domain.FieldCorporateTax},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return yen.RoundDown1000(v.Get(domain.FieldCorporateTax)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("Corporate tax %s rounded down to the nearest ¥1,000 = %s",
				fmtYen(v, domain.FieldCorporateTax), fmtYen(v, domain.FieldCorporateTaxBase))
		},
	}
}

func corporateTaxCreditStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldCorporateTaxCredit,
		DisplayName: "Corporate Tax Credit",
		Category:    CategoryCorporate,
		Reads:       []string{domain.FieldCorporateTaxDeduction, domain.FieldCorporateTax},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return yen.Min(yen.Clamp0(v.Get(domain.FieldCorporateTaxDeduction)), v.Get(domain.FieldCorporateTax)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("Deduction %s capped at corporate tax %s = %s",
				fmtYen(v, domain.FieldCorporateTaxDeduction), fmtYen(v, domain.FieldCorporateTax), fmtYen(v, domain.FieldCorporateTaxCredit))
		},
	}
}

func corporateTaxPayableStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldCorporateTaxPayable,
		DisplayName: "Corporate Tax Payable",
		Category:    CategoryCorporate,
		Reads:       []string{domain.FieldCorporateTax, domain.FieldCorporateTaxCredit},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return yen.RoundDown100(v.Get(domain.FieldCorporateTax).Sub(v.Get(domain.FieldCorporateTaxCredit))), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("%s - credit %s, rounded down to the nearest ¥100 = %s",
				fmtYen(v, domain.FieldCorporateTax), fmtYen(v, domain.FieldCorporateTaxCredit), fmtYen(v, domain.FieldCorporateTaxPayable))
		},
	}
}

func defenseSpecialCorporateTaxStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldDefenseSpecialCorporateTax,
		DisplayName: "Defense Special Corporate Tax",
		Category:    CategoryCorporate,
		Reads:       []string{domain.FieldCorporateTaxBase},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			base := yen.RoundDown1000(yen.Clamp0(v.Get(domain.FieldCorporateTaxBase).Sub(defenseDeduction)))
			return yen.RoundDown100(base.Mul(defenseRate)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("(%s - ¥5,000,000) × %s = %s",
				fmtYen(v, domain.FieldCorporateTaxBase), yen.FormatRate(defenseRate), fmtYen(v, domain.FieldDefenseSpecialCorporateTax))
		},
	}
}

func localCorporateTaxBaseStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldLocalCorporateTaxBase,
		DisplayName: "Local Corporate Tax Base",
		Category:    CategoryLocal,
		Reads:       []string{domain.FieldCorporateTaxBase},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return v.Get(domain.FieldCorporateTaxBase), nil
		},
		Narrate: func(v calculation.Values) string {
			return "Corporate tax base " + fmtYen(v, domain.FieldLocalCorporateTaxBase)
		},
	}
}

func localCorporateTaxStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldLocalCorporateTax,
		DisplayName: "Local Corporate Tax",
		Category:    CategoryLocal,
		Reads:       []string{domain.FieldLocalCorporateTaxBase},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return yen.RoundDown100(v.Get(domain.FieldLocalCorporateTaxBase).Mul(localCorporateRate)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("%s × %s = %s",
				fmtYen(v, domain.FieldLocalCorporateTaxBase), yen.FormatRate(localCorporateRate), fmtYen(v, domain.FieldLocalCorporateTax))
		},
	}
}

func residentTaxStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldResidentTax,
		DisplayName: "Resident Tax (corporate levy)",
		Category:    CategoryResident,
		Reads:       []string{domain.FieldCorporateTaxBase},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return yen.RoundDown100(v.Get(domain.FieldCorporateTaxBase).Mul(residentRate)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("%s × %s = %s, plus per-capita levy %s",
				fmtYen(v, domain.FieldCorporateTaxBase), yen.FormatRate(residentRate), fmtYen(v, domain.FieldResidentTax),
				fmtYen(v, domain.FieldPerCapitaLevy))
		},
	}
}

func businessTaxBaseStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldBusinessTaxBase,
		DisplayName: "Business Tax Base",
		Category:    CategoryEnterprise,
		Reads:       []string{domain.FieldTaxableIncome},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return yen.RoundDown1000(v.Get(domain.FieldTaxableIncome)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("%s rounded down to the nearest ¥1,000 = %s",
				fmtYen(v, domain.FieldTaxableIncome), fmtYen(v, domain.FieldBusinessTaxBase))
		},
	}
}

func enterpriseTaxStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldEnterpriseTax,
		DisplayName: "Enterprise Tax",
		Category:    CategoryEnterprise,
		Reads:       []string{domain.FieldBusinessTaxBase},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			base := v.Get(domain.FieldBusinessTaxBase)
			tax := decimal.Zero
			lower := decimal.Zero
			for _, b := range enterpriseBrackets {
				slice := yen.Clamp0(base.Sub(lower))
				if !b.upTo.IsZero() {
					slice = yen.Min(slice, b.upTo.Sub(lower))
				}
				tax = tax.Add(slice.Mul(b.rate))
				lower = b.upTo
			}
			return yen.RoundDown100(tax), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("%s at 3.5%% up to ¥4,000,000, 5.3%% up to ¥8,000,000, 7%% above = %s",
				fmtYen(v, domain.FieldBusinessTaxBase), fmtYen(v, domain.FieldEnterpriseTax))
		},
	}
}

func specialLocalCorporateTaxStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldSpecialLocalCorporateTax,
		DisplayName: "Special Local Corporate Tax",
		Category:    CategoryEnterprise,
		Reads:       []string{domain.FieldEnterpriseTax},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return yen.RoundDown100(v.Get(domain.FieldEnterpriseTax).Mul(specialLocalRate)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("%s × %s = %s",
				fmtYen(v, domain.FieldEnterpriseTax), yen.FormatRate(specialLocalRate), fmtYen(v, domain.FieldSpecialLocalCorporateTax))
		},
	}
}

func consumptionTaxStatusStep(twoTenths bool) calculation.Step {
	reads := []string{domain.FieldBasePeriodSales}
	if twoTenths {
		reads = append(reads, domain.FieldInvoiceRegistered)
	}
	return calculation.Step{
		ID:          domain.FieldConsumptionTaxStatus,
		DisplayName: "Consumption Tax Status",
		Category:    CategoryConsumption,
		Reads:       reads,
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			switch {
			case v.Get(domain.FieldBasePeriodSales).GreaterThan(taxableSalesLimit):
				return decimal.NewFromInt(domain.ConsumptionTaxStandard), nil
			case twoTenths && v.Get(domain.FieldInvoiceRegistered).IsPositive():
				return decimal.NewFromInt(domain.ConsumptionTaxTwoTenths), nil
			default:
				return decimal.NewFromInt(domain.ConsumptionTaxExempt), nil
			}
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("Base-period sales %s: %s",
				fmtYen(v, domain.FieldBasePeriodSales), consumptionStatusLabel(v.Get(domain.FieldConsumptionTaxStatus)))
		},
	}
}

func consumptionStatusLabel(status decimal.Decimal) string {
	switch status.IntPart() {
	case domain.ConsumptionTaxStandard:
		return "taxable (standard method)"
	case domain.ConsumptionTaxTwoTenths:
		return "invoice-registered (two-tenths special)"
	default:
		return "exempt"
	}
}

func outputConsumptionTaxStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldOutputConsumptionTax,
		DisplayName: "Output Consumption Tax",
		Category:    CategoryConsumption,
		Reads:       []string{domain.FieldConsumptionTaxStatus, domain.FieldSales},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			if v.Get(domain.FieldConsumptionTaxStatus).IntPart() == domain.ConsumptionTaxExempt {
				return decimal.Zero, nil
			}
			net := yen.RoundDown1000(v.Get(domain.FieldSales).Mul(hundred).Div(grossUp))
			return yen.Floor(net.Mul(consumptionRate)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("Sales %s excluding tax × %s = %s",
				fmtYen(v, domain.FieldSales), yen.FormatRate(consumptionRate), fmtYen(v, domain.FieldOutputConsumptionTax))
		},
	}
}

func inputConsumptionTaxStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldInputConsumptionTax,
		DisplayName: "Input Consumption Tax",
		Category:    CategoryConsumption,
		Reads:       []string{domain.FieldConsumptionTaxStatus, domain.FieldTaxablePurchases},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			if v.Get(domain.FieldConsumptionTaxStatus).IntPart() != domain.ConsumptionTaxStandard {
				return decimal.Zero, nil
			}
			return yen.Floor(v.Get(domain.FieldTaxablePurchases).Mul(consumptionRate).Mul(hundred).Div(grossUp)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("Taxable purchases %s × 7.8/110 = %s",
				fmtYen(v, domain.FieldTaxablePurchases), fmtYen(v, domain.FieldInputConsumptionTax))
		},
	}
}

func consumptionTaxStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldConsumptionTax,
		DisplayName: "Consumption Tax (national)",
		Category:    CategoryConsumption,
		Reads:       []string{domain.FieldConsumptionTaxStatus, domain.FieldOutputConsumptionTax, domain.FieldInputConsumptionTax},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			output := v.Get(domain.FieldOutputConsumptionTax)
			switch v.Get(domain.FieldConsumptionTaxStatus).IntPart() {
			case domain.ConsumptionTaxStandard:
				return yen.RoundDown100(yen.Clamp0(output.Sub(v.Get(domain.FieldInputConsumptionTax)))), nil
			case domain.ConsumptionTaxTwoTenths:
				return yen.RoundDown100(output.Mul(twoTenthsShare)), nil
			default:
				return decimal.Zero, nil
			}
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("Output %s, input %s, %s = %s",
				fmtYen(v, domain.FieldOutputConsumptionTax), fmtYen(v, domain.FieldInputConsumptionTax),
				consumptionStatusLabel(v.Get(domain.FieldConsumptionTaxStatus)), fmtYen(v, domain.FieldConsumptionTax))
		},
	}
}

func localConsumptionTaxStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldLocalConsumptionTax,
		DisplayName: "Local Consumption Tax",
		Category:    CategoryConsumption,
		Reads:       []string{domain.FieldConsumptionTax},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return yen.RoundDown100(v.Get(domain.FieldConsumptionTax).Mul(localConsumptionNum).Div(localConsumptionDen)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("%s × 22/78 = %s", fmtYen(v, domain.FieldConsumptionTax), fmtYen(v, domain.FieldLocalConsumptionTax))
		},
	}
}

func nationalTaxDueStep(withDefense bool) calculation.Step {
	reads := []string{domain.FieldCorporateTaxPayable, domain.FieldLocalCorporateTax, domain.FieldNationalWithheldTax}
	if withDefense {
		reads = append(reads, domain.FieldDefenseSpecialCorporateTax)
	}
	return calculation.Step{
		ID:          domain.FieldNationalTaxDue,
		DisplayName: "National Tax Due",
		Category:    CategorySettlement,
		Reads:       reads,
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			due := v.Get(domain.FieldCorporateTaxPayable).Add(v.Get(domain.FieldLocalCorporateTax))
			if withDefense {
				due = due.Add(v.Get(domain.FieldDefenseSpecialCorporateTax))
			}
			return due.Sub(v.Get(domain.FieldNationalWithheldTax)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("National taxes less withheld %s = %s",
				fmtYen(v, domain.FieldNationalWithheldTax), fmtYen(v, domain.FieldNationalTaxDue))
		},
	}
}

func localTaxDueStep() calculation.Step {
	return calculation.Step{
		ID:          domain.FieldLocalTaxDue,
		DisplayName: "Local Tax Due",
		Category:    CategorySettlement,
		Reads: []string{domain.FieldResidentTax, domain.FieldPerCapitaLevy, domain.FieldEnterpriseTax,
			domain.FieldSpecialLocalCorporateTax, domain.FieldLocalWithheldTax},
		Compute: func(v calculation.Values) (decimal.Decimal, error) {
			return v.Get(domain.FieldResidentTax).
				Add(v.Get(domain.FieldPerCapitaLevy)).
				Add(v.Get(domain.FieldEnterpriseTax)).
				Add(v.Get(domain.FieldSpecialLocalCorporateTax)).
				Sub(v.Get(domain.FieldLocalWithheldTax)), nil
		},
		Narrate: func(v calculation.Values) string {
			return fmt.Sprintf("Local taxes less withheld %s = %s",
				fmtYen(v, domain.FieldLocalWithheldTax), fmtYen(v, domain.FieldLocalTaxDue))
		},
	}
}
