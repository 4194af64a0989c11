package params

import (
	"github.com/rgehrsitz/taxsim/internal/domain"
	"github.com/shopspring/decimal"
)

// levyBracket is one row of the Tokyo per-capita levy table (prefectural and
// municipal portions combined).
type levyBracket struct {
	capitalUpTo decimal.Decimal // zero means no upper bound
	small       int64           // 50 employees or fewer
	large       int64           // more than 50 employees
}

const levyEmployeeThreshold = 50

var tokyoPerCapitaLevy = []levyBracket{
	{decimal.NewFromInt(10_000_000), 70_000, 140_000},
	{decimal.NewFromInt(100_000_000), 180_000, 200_000},
	{decimal.NewFromInt(1_000_000_000), 290_000, 530_000},
	{decimal.NewFromInt(5_000_000_000), 950_000, 2_290_000},
	{decimal.Decimal{}, 1_210_000, 3_800_000},
}

// PerCapitaLevy returns the annual per-capita levy for a company. A missing
// profile yields zero.
func PerCapitaLevy(company *domain.CompanyProfile) decimal.Decimal {
	if company == nil {
		return decimal.Zero
	}
	for _, b := range tokyoPerCapitaLevy {
		if b.capitalUpTo.IsZero() || company.Capital.LessThanOrEqual(b.capitalUpTo) {
			if company.Employees > levyEmployeeThreshold {
				return decimal.NewFromInt(b.large)
			}
			return decimal.NewFromInt(b.small)
		}
	}
	return decimal.Zero
}
