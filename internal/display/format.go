// Package display formats amounts for the terminal client.
package display

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"wealthtrack/internal/models"
)

// wanThreshold is the absolute home-currency value from which amounts are
// shown in units of 万 (ten thousand).
const wanThreshold = 10000

var wan = decimal.NewFromInt(wanThreshold)

// plain groups thousands with two decimals and no currency glyph.
var plain = money.NewFormatter(2, ".", ",", "", "1")

// minorUnits rounds v to fraction decimals and returns it as an integer count
// of the smallest unit.
func minorUnits(v decimal.Decimal, fraction int) int64 {
	return v.Shift(int32(fraction)).Round(0).IntPart()
}

// FormatAmount renders amount in cur using the workspace symbol and the
// ISO fraction and separators of cur's code, falling back to two decimals for
// codes go-money does not know.
func FormatAmount(amount float64, cur models.Currency) string {
	fraction, dec, thousand := 2, ".", ","
	if known := money.GetCurrency(cur.Code); known != nil {
		fraction, dec, thousand = known.Fraction, known.Decimal, known.Thousand
	}
	symbol := cur.Symbol
	if symbol == "" {
		symbol = cur.Code
	}
	f := money.NewFormatter(fraction, dec, thousand, symbol, "$1")
	return f.Format(minorUnits(decimal.NewFromFloat(amount), fraction))
}

// FormatWan renders a home-currency value with two decimals, switching to
// units of 万 once its magnitude reaches ten thousand.
func FormatWan(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	d := decimal.NewFromFloat(v)
	if math.Abs(v) >= wanThreshold {
		return plain.Format(minorUnits(d.Div(wan), 2)) + "万"
	}
	return plain.Format(minorUnits(d, 2))
}

// FormatHome prefixes FormatWan with the home currency glyph.
func FormatHome(v float64) string {
	return "¥" + FormatWan(v)
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "-"
	}
	return decimal.NewFromFloat(p).StringFixed(2) + "%"
}

// FormatRate renders an exchange rate without trailing zeros.
func FormatRate(r float64) string {
	return decimal.NewFromFloat(r).String()
}
