package models

// PortfolioStats is the derived valuation of one user's assets. It is never
// persisted.
type PortfolioStats struct {
	TotalValueCNY        float64         `json:"totalValueCNY"`
	TotalProjectedYield  float64         `json:"totalProjectedYield"`
	CurrencyDistribution []CurrencySlice `json:"currencyDistribution"`
	PathDistribution     []PathSlice     `json:"pathDistribution"`
}

// CurrencySlice is the home-currency value held in one currency.
type CurrencySlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// PathSlice is the home-currency value held in one investment path and its
// value-weighted average yield.
type PathSlice struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	AvgYield float64 `json:"avgYield"`
}
