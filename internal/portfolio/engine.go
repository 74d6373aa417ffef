package portfolio

import "wealthtrack/internal/models"

// ResolveCurrency looks up code in currencies. When the code is missing the
// first entry of the table is returned with ok=false; this is the documented
// fallback for dangling references and is deliberately not the home currency.
// An empty table yields a zero-rate currency.
func ResolveCurrency(code string, currencies []models.Currency) (models.Currency, bool) {
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	if len(currencies) > 0 {
		return currencies[0], false
	}
	return models.Currency{Code: code}, false
}

// ResolvePathName returns the name of the path with the given id, or
// models.UnknownPath when no such path exists.
func ResolvePathName(pathID string, paths []models.InvestmentPath) string {
	for _, p := range paths {
		if p.ID == pathID {
			return p.Name
		}
	}
	return models.UnknownPath
}

// ValueInHome converts an asset amount into the home currency.
func ValueInHome(a models.Asset, currencies []models.Currency) float64 {
	c, _ := ResolveCurrency(a.CurrencyCode, currencies)
	return a.Amount * c.RateToCNY
}

type pathBucket struct {
	value       float64
	yieldWeight float64
}

// Compute aggregates assets into PortfolioStats.
//
// Distributions keep the first-seen order of currency codes and path names
// among the assets. Negative amounts are summed algebraically. Yields are
// weighted by home-currency value; a non-positive total yields 0.
func Compute(assets []models.Asset, currencies []models.Currency, paths []models.InvestmentPath) models.PortfolioStats {
	var (
		total       float64
		weightedSum float64
	)
	currencyOrder := make([]string, 0)
	currencyTotals := make(map[string]float64)
	pathOrder := make([]string, 0)
	pathTotals := make(map[string]*pathBucket)

	for _, a := range assets {
		value := ValueInHome(a, currencies)
		total += value
		weightedSum += value * a.AnnualYield

		if _, seen := currencyTotals[a.CurrencyCode]; !seen {
			currencyOrder = append(currencyOrder, a.CurrencyCode)
		}
		currencyTotals[a.CurrencyCode] += value

		name := ResolvePathName(a.PathID, paths)
		b, seen := pathTotals[name]
		if !seen {
			b = &pathBucket{}
			pathTotals[name] = b
			pathOrder = append(pathOrder, name)
		}
		b.value += value
		b.yieldWeight += value * a.AnnualYield
	}

	stats := models.PortfolioStats{
		TotalValueCNY:        total,
		CurrencyDistribution: make([]models.CurrencySlice, 0, len(currencyOrder)),
		PathDistribution:     make([]models.PathSlice, 0, len(pathOrder)),
	}
	if total > 0 {
		stats.TotalProjectedYield = weightedSum / total
	}
	for _, code := range currencyOrder {
		stats.CurrencyDistribution = append(stats.CurrencyDistribution, models.CurrencySlice{
			Name:  code,
			Value: currencyTotals[code],
		})
	}
	for _, name := range pathOrder {
		b := pathTotals[name]
		slice := models.PathSlice{Name: name, Value: b.value}
		if b.value > 0 {
			slice.AvgYield = b.yieldWeight / b.value
		}
		stats.PathDistribution = append(stats.PathDistribution, slice)
	}
	return stats
}

// ForUser returns the assets owned by userID, preserving order.
func ForUser(assets []models.Asset, userID string) []models.Asset {
	out := make([]models.Asset, 0, len(assets))
	for _, a := range assets {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

// ProjectedIncome is the expected yearly return in home currency.
func ProjectedIncome(stats models.PortfolioStats) float64 {
	return stats.TotalValueCNY * stats.TotalProjectedYield / 100
}
