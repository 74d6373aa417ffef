package workspace

import "wealthtrack/internal/models"

// Defaults used when a workspace key has never been written.
const (
	DefaultUserID   = "default"
	DefaultUserName = "My Wallet"
	DefaultPathIcon = "Target"
)

// DefaultUsers returns the single user every new workspace starts with.
func DefaultUsers(now int64) []models.User {
	return []models.User{{ID: DefaultUserID, Name: DefaultUserName, CreatedAt: now}}
}

// DefaultCurrencies returns the initial exchange-rate table.
func DefaultCurrencies() []models.Currency {
	return []models.Currency{
		{Code: "CNY", Symbol: "¥", RateToCNY: 1},
		{Code: "USD", Symbol: "$", RateToCNY: 7.23},
		{Code: "HKD", Symbol: "HK$", RateToCNY: 0.92},
	}
}

// DefaultPaths returns the initial investment path categories.
func DefaultPaths() []models.InvestmentPath {
	return []models.InvestmentPath{
		{ID: "1", Name: "Fixed Deposits", Icon: "PiggyBank"},
		{ID: "2", Name: "A-Shares", Icon: "TrendingUp"},
		{ID: "3", Name: "HK Equities", Icon: "TrendingUp"},
		{ID: "4", Name: "US Equities", Icon: "TrendingUp"},
		{ID: "5", Name: "Bond Funds", Icon: "FileText"},
		{ID: "6", Name: "Domestic Real Estate", Icon: "Home"},
		{ID: "7", Name: "Overseas Real Estate", Icon: "Building2"},
		{ID: "8", Name: "Digital Currency", Icon: "Bitcoin"},
		{ID: "9", Name: "Gold & Commodities", Icon: "Coins"},
		{ID: "10", Name: "Money Market Funds", Icon: "DollarSign"},
		{ID: "11", Name: "Loan Balance", Icon: "Minus"},
	}
}
