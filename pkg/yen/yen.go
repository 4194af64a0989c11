// Package yen holds the statutory rounding helpers and display formatting
// used by the tax rule sets. All functions are pure.
package yen

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// Floor truncates toward zero. Tax amounts are never rounded up.
func Floor(x decimal.Decimal) decimal.Decimal {
	return x.Truncate(0)
}

// RoundDown100 truncates to the lower multiple of 100 yen.
func RoundDown100(x decimal.Decimal) decimal.Decimal {
	return truncateTo(x, hundred)
}

// RoundDown1000 truncates to the lower multiple of 1,000 yen.
func RoundDown1000(x decimal.Decimal) decimal.Decimal {
	return truncateTo(x, thousand)
}

func truncateTo(x, unit decimal.Decimal) decimal.Decimal {
	return x.Div(unit).Truncate(0).Mul(unit)
}

// Clamp0 returns x, or zero when x is negative.
func Clamp0(x decimal.Decimal) decimal.Decimal {
	if x.IsNegative() {
		return decimal.Zero
	}
	return x
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	return decimal.Min(a, b)
}

// Amount converts a yen value to an integer amount, truncating any fraction.
func Amount(x decimal.Decimal) int64 {
	return Floor(x).IntPart()
}

// printer groups digits the Japanese way. Sprintf is safe for concurrent use.
var printer = message.NewPrinter(language.Japanese)

// FormatCurrency renders an amount as "¥1,234,567" for narration and reports.
// The result is for display only and is never parsed back.
func FormatCurrency(x decimal.Decimal) string {
	n := Amount(x)
	if n < 0 {
		return "-¥" + printer.Sprintf("%d", -n)
	}
	return "¥" + printer.Sprintf("%d", n)
}

// FormatInt is FormatCurrency for integer amounts.
func FormatInt(n int64) string {
	return FormatCurrency(decimal.NewFromInt(n))
}

// FormatRate renders a rate as a percentage, e.g. 0.232 -> "23.2%".
func FormatRate(r decimal.Decimal) string {
	return r.Mul(hundred).String() + "%"
}
