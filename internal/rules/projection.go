package rules

import (
	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/rgehrsitz/taxsim/pkg/yen"
	"github.com/shopspring/decimal"
)

// Result line names.
const (
	LineCorporateTax        = "Corporate Tax (incl. Local Corporate Tax)"
	LineCorporateTaxDefense = "Corporate Tax (incl. Local Corporate Tax and Defense Special Corporate Tax)"
	LineResidentTax         = "Resident Tax (incl. per-capita levy)"
	LineEnterpriseTax       = "Enterprise Tax (incl. Special Local Corporate Tax)"
	LineConsumptionTax      = "Consumption Tax"

	LineNationalTaxDue    = "National Tax Due"
	LineLocalTaxDue       = "Local Tax Due"
	LineConsumptionTaxDue = "Consumption Tax Due"
)

type lineSpec struct {
	name   string
	fields []string
}

func sumFields(v calculation.Values, fields []string) decimal.Decimal {
	total := decimal.Zero
	for _, f := range fields {
		total = total.Add(v.Get(f))
	}
	return total
}

// lines builds a projection from fixed line specs. When withTotal is set, a
// trailing total line holds the exact sum of the integer line amounts.
func lines(withTotal bool, specs ...lineSpec) ProjectFunc {
	return func(v calculation.Values) []domain.TaxLine {
		out := make([]domain.TaxLine, 0, len(specs)+1)
		var total int64
		for _, s := range specs {
			amount := yen.Amount(sumFields(v, s.fields))
			total += amount
			out = append(out, domain.TaxLine{TaxName: s.name, TaxAmount: amount})
		}
		if withTotal {
			out = append(out, domain.TaxLine{TaxName: domain.TotalLineName, TaxAmount: total})
		}
		return out
	}
}

func standardProjection(withDefense bool) ProjectFunc {
	corporate := lineSpec{name: LineCorporateTax, fields: []string{domain.FieldCorporateTaxPayable, domain.FieldLocalCorporateTax}}
	if withDefense {
		corporate = lineSpec{
			name:   LineCorporateTaxDefense,
			fields: []string{domain.FieldCorporateTaxPayable, domain.FieldLocalCorporateTax, domain.FieldDefenseSpecialCorporateTax},
		}
	}
	return lines(true,
		corporate,
		lineSpec{name: LineResidentTax, fields: []string{domain.FieldResidentTax, domain.FieldPerCapitaLevy}},
		lineSpec{name: LineEnterpriseTax, fields: []string{domain.FieldEnterpriseTax, domain.FieldSpecialLocalCorporateTax}},
		lineSpec{name: LineConsumptionTax, fields: []string{domain.FieldConsumptionTax, domain.FieldLocalConsumptionTax}},
	)
}

func settlementProjection() ProjectFunc {
	return lines(false,
		lineSpec{name: LineNationalTaxDue, fields: []string{domain.FieldNationalTaxDue}},
		lineSpec{name: LineLocalTaxDue, fields: []string{domain.FieldLocalTaxDue}},
		lineSpec{name: LineConsumptionTaxDue, fields: []string{domain.FieldConsumptionTax, domain.FieldLocalConsumptionTax}},
	)
}
