package models

// Asset is a point-in-time holding owned by one user.
//
// For real estate paths AnnualYield is RentalYield + AppreciationRate, computed
// when the asset is saved. For every other path RentalYield and
// AppreciationRate are nil and AnnualYield is entered directly.
type Asset struct {
	ID               string   `json:"id"`
	UserID           string   `json:"userId"`
	Name             string   `json:"name"`
	PathID           string   `json:"pathId"`
	CurrencyCode     string   `json:"currencyCode"`
	Amount           float64  `json:"amount"`
	AnnualYield      float64  `json:"annualYield"`
	RentalYield      *float64 `json:"rentalYield,omitempty"`
	AppreciationRate *float64 `json:"appreciationRate,omitempty"`
	Note             string   `json:"note,omitempty"`
	IsDebt           bool     `json:"isDebt,omitempty"`
	CreatedAt        int64    `json:"createdAt"`
}
