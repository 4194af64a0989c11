package domain

// Context field names. Seed fields come from the parameter builders; the
// remaining names are written by calculation steps and double as step IDs.
const (
	FieldSales                 = "sales"
	FieldExpenses              = "expenses"
	FieldPreviousEnterpriseTax = "previousEnterpriseTax"
	FieldNationalWithheldTax   = "nationalWithheldTax"
	FieldLocalWithheldTax      = "localWithheldTax"
	FieldCorporateTaxDeduction = "corporateTaxDeduction"
	FieldPerCapitaLevy         = "perCapitaLevy"
	FieldBasePeriodSales       = "basePeriodSales"
	FieldTaxablePurchases      = "taxablePurchases"
	FieldInvoiceRegistered     = "invoiceRegistered"
	FieldLossCarryforward      = "lossCarryforward"

	FieldLossCarryforwardApplied    = "lossCarryforwardApplied"
	FieldTaxableIncome              = "taxableIncome"
	FieldTaxableIncomeRounded       = "taxableIncomeRounded"
	FieldCorporateTaxRate           = "corporateTaxRate"
	FieldCorporateTax               = "corporateTax"
	FieldCorporateTaxBase           = "corporateTaxBase"
	FieldCorporateTaxCredit         = "corporateTaxCredit"
	FieldCorporateTaxPayable        = "corporateTaxPayable"
	FieldDefenseSpecialCorporateTax = "defenseSpecialCorporateTax"
	FieldLocalCorporateTaxBase      = "localCorporateTaxBase"
	FieldLocalCorporateTax          = "localCorporateTax"
	FieldResidentTax                = "residentTax"
	FieldBusinessTaxBase            = "businessTaxBase"
	FieldEnterpriseTax              = "enterpriseTax"
	FieldSpecialLocalCorporateTax   = "specialLocalCorporateTax"
	FieldConsumptionTaxStatus       = "consumptionTaxStatus"
	FieldOutputConsumptionTax       = "outputConsumptionTax"
	FieldInputConsumptionTax        = "inputConsumptionTax"
	FieldConsumptionTax             = "consumptionTax"
	FieldLocalConsumptionTax        = "localConsumptionTax"
	FieldNationalTaxDue             = "nationalTaxDue"
	FieldLocalTaxDue                = "localTaxDue"
)

// Consumption tax filing status values stored under FieldConsumptionTaxStatus.
const (
	ConsumptionTaxExempt    = 0
	ConsumptionTaxStandard  = 1
	ConsumptionTaxTwoTenths = 2
)
