package rules

import (
	"github.com/rgehrsitz/taxsim/internal/domain"
)

// Rules2026 is the FY2026 rule set. It adds the defense special corporate tax
// of 4% on the corporate tax base above ¥5,000,000.
func Rules2026() StepSet {
	return StepSet{
		Year:       "2026",
		SeedFields: seedFields(domain.FieldInvoiceRegistered, domain.FieldLossCarryforward),
		Steps:      carryforwardSteps(true),
		Project:    standardProjection(true),
		Settle:     settlementProjection(),
	}
}
