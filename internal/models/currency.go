package models

// Currency is a row of the workspace exchange-rate table.
// RateToCNY is the number of home-currency units per one unit of Code.
type Currency struct {
	Code      string  `json:"code"`
	Symbol    string  `json:"symbol"`
	RateToCNY float64 `json:"rateToCNY"`
}
