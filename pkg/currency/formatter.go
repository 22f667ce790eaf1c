package currency

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Round rounds half away from zero to the given number of decimal places.
func Round(amount float64, places int32) float64 {
	return decimal.NewFromFloat(amount).Round(places).InexactFloat64()
}

func Round2(amount float64) float64 {
	return Round(amount, 2)
}

// Percent returns part/whole*100 rounded to the given places, or 0 when
// whole is zero.
func Percent(part, whole float64, places int32) float64 {
	if whole == 0 {
		return 0
	}
	p := decimal.NewFromFloat(part).Div(decimal.NewFromFloat(whole)).Mul(decimal.NewFromInt(100))
	return p.Round(places).InexactFloat64()
}

// FormatUSD renders amount as dollars and cents with comma grouping, e.g.
// "-$1,234.50".
func FormatUSD(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	if d.IsNegative() {
		return "-" + printer.Sprintf("$%.2f", d.Neg().InexactFloat64())
	}
	return printer.Sprintf("$%.2f", d.InexactFloat64())
}

// FormatInt renders n with comma thousands separators.
func FormatInt(n int) string {
	return printer.Sprintf("%d", n)
}
