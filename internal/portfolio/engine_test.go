package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthtrack/internal/models"
)

var (
	testCurrencies = []models.Currency{
		{Code: "CNY", Symbol: "¥", RateToCNY: 1},
		{Code: "USD", Symbol: "$", RateToCNY: 7.23},
		{Code: "HKD", Symbol: "HK$", RateToCNY: 0.92},
	}
	testPaths = []models.InvestmentPath{
		{ID: "1", Name: "Fixed Deposits", Icon: "PiggyBank"},
		{ID: "4", Name: "US Equities", Icon: "TrendingUp"},
		{ID: "6", Name: "Real Estate", Icon: "Home"},
	}
)

func asset(id, currency, pathID string, amount, yield float64) models.Asset {
	return models.Asset{ID: id, UserID: "u1", Name: id, CurrencyCode: currency, PathID: pathID, Amount: amount, AnnualYield: yield}
}

func TestCompute_Empty(t *testing.T) {
	stats := Compute(nil, testCurrencies, testPaths)

	assert.Equal(t, 0.0, stats.TotalValueCNY)
	assert.Equal(t, 0.0, stats.TotalProjectedYield)
	assert.NotNil(t, stats.CurrencyDistribution)
	assert.Empty(t, stats.CurrencyDistribution)
	assert.NotNil(t, stats.PathDistribution)
	assert.Empty(t, stats.PathDistribution)
}

func TestCompute_EndToEndScenario(t *testing.T) {
	currencies := []models.Currency{
		{Code: "CNY", RateToCNY: 1},
		{Code: "USD", RateToCNY: 7.23},
	}
	assets := []models.Asset{
		asset("a1", "USD", "4", 1000, 5),
		asset("a2", "CNY", "1", 5000, 2),
	}

	stats := Compute(assets, currencies, testPaths)

	assert.InDelta(t, 12230, stats.TotalValueCNY, 1e-9)
	assert.InDelta(t, (7230.0*5+5000.0*2)/12230.0, stats.TotalProjectedYield, 1e-9)
	assert.InDelta(t, 3.7735, stats.TotalProjectedYield, 0.0001)
	require.Len(t, stats.CurrencyDistribution, 2)
	assert.Equal(t, "USD", stats.CurrencyDistribution[0].Name)
	assert.InDelta(t, 7230, stats.CurrencyDistribution[0].Value, 1e-9)
	assert.Equal(t, "CNY", stats.CurrencyDistribution[1].Name)
	assert.InDelta(t, 5000, stats.CurrencyDistribution[1].Value, 1e-9)
}

func TestCompute_WeightedYield(t *testing.T) {
	t.Run("equal values average the yields", func(t *testing.T) {
		stats := Compute([]models.Asset{
			asset("a", "CNY", "1", 1000, 3),
			asset("b", "CNY", "4", 1000, 7),
		}, testCurrencies, testPaths)
		assert.InDelta(t, 5.0, stats.TotalProjectedYield, 1e-9)
	})

	t.Run("unequal values weight by home value", func(t *testing.T) {
		stats := Compute([]models.Asset{
			asset("a", "CNY", "1", 3000, 2),
			asset("b", "USD", "4", 100, 10),
		}, testCurrencies, testPaths)
		v1, v2 := 3000.0, 723.0
		assert.InDelta(t, (v1*2+v2*10)/(v1+v2), stats.TotalProjectedYield, 1e-9)
	})
}

func TestCompute_DistributionsSumToTotal(t *testing.T) {
	assets := []models.Asset{
		asset("a", "HKD", "6", 250000, 4),
		asset("b", "USD", "4", 12000, 8),
		asset("c", "CNY", "1", 40000, 1.5),
		asset("d", "USD", "1", 500, 0.5),
	}

	stats := Compute(assets, testCurrencies, testPaths)

	var currencySum, pathSum float64
	for _, s := range stats.CurrencyDistribution {
		currencySum += s.Value
	}
	for _, s := range stats.PathDistribution {
		pathSum += s.Value
	}
	assert.InDelta(t, stats.TotalValueCNY, currencySum, 1e-6)
	assert.InDelta(t, stats.TotalValueCNY, pathSum, 1e-6)
}

func TestCompute_OrderIndependentTotal(t *testing.T) {
	assets := []models.Asset{
		asset("a", "HKD", "6", 250000, 4),
		asset("b", "USD", "4", 12000, 8),
		asset("c", "CNY", "1", 40000, 1.5),
	}
	reversed := []models.Asset{assets[2], assets[1], assets[0]}

	forward := Compute(assets, testCurrencies, testPaths)
	backward := Compute(reversed, testCurrencies, testPaths)

	assert.InDelta(t, forward.TotalValueCNY, backward.TotalValueCNY, 1e-6)
	assert.InDelta(t, forward.TotalProjectedYield, backward.TotalProjectedYield, 1e-9)
	assert.Equal(t, "HKD", forward.CurrencyDistribution[0].Name)
	assert.Equal(t, "CNY", backward.CurrencyDistribution[0].Name)
}

func TestCompute_PathBuckets(t *testing.T) {
	assets := []models.Asset{
		asset("a", "CNY", "4", 1000, 10),
		asset("b", "CNY", "1", 2000, 2),
		asset("c", "CNY", "4", 3000, 6),
	}

	stats := Compute(assets, testCurrencies, testPaths)

	require.Len(t, stats.PathDistribution, 2)
	assert.Equal(t, "US Equities", stats.PathDistribution[0].Name)
	assert.InDelta(t, 4000, stats.PathDistribution[0].Value, 1e-9)
	assert.InDelta(t, (1000.0*10+3000.0*6)/4000.0, stats.PathDistribution[0].AvgYield, 1e-9)
	assert.Equal(t, "Fixed Deposits", stats.PathDistribution[1].Name)
	assert.InDelta(t, 2.0, stats.PathDistribution[1].AvgYield, 1e-9)
}

func TestCompute_DanglingReferences(t *testing.T) {
	t.Run("missing currency falls back to the first table entry", func(t *testing.T) {
		currencies := []models.Currency{
			{Code: "USD", RateToCNY: 7},
			{Code: "CNY", RateToCNY: 1},
		}
		stats := Compute([]models.Asset{asset("a", "EUR", "1", 100, 1)}, currencies, testPaths)

		assert.InDelta(t, 700, stats.TotalValueCNY, 1e-9)
		require.Len(t, stats.CurrencyDistribution, 1)
		assert.Equal(t, "EUR", stats.CurrencyDistribution[0].Name)
	})

	t.Run("missing path is labelled unknown", func(t *testing.T) {
		stats := Compute([]models.Asset{
			asset("a", "CNY", "gone", 100, 1),
			asset("b", "CNY", "also-gone", 50, 1),
		}, testCurrencies, testPaths)

		require.Len(t, stats.PathDistribution, 1)
		assert.Equal(t, models.UnknownPath, stats.PathDistribution[0].Name)
		assert.InDelta(t, 150, stats.PathDistribution[0].Value, 1e-9)
	})

	t.Run("empty currency table values everything at zero", func(t *testing.T) {
		stats := Compute([]models.Asset{asset("a", "CNY", "1", 100, 1)}, nil, testPaths)

		assert.Equal(t, 0.0, stats.TotalValueCNY)
		assert.Equal(t, 0.0, stats.TotalProjectedYield)
	})
}

func TestCompute_NegativeAmounts(t *testing.T) {
	stats := Compute([]models.Asset{
		asset("house", "CNY", "6", 3000000, 4),
		asset("loan", "CNY", "1", -1000000, 3.5),
	}, testCurrencies, testPaths)

	assert.InDelta(t, 2000000, stats.TotalValueCNY, 1e-6)
	assert.InDelta(t, (3000000.0*4-1000000.0*3.5)/2000000.0, stats.TotalProjectedYield, 1e-9)

	t.Run("net liability reports zero yield", func(t *testing.T) {
		stats := Compute([]models.Asset{asset("loan", "CNY", "1", -500, 4)}, testCurrencies, testPaths)
		assert.InDelta(t, -500, stats.TotalValueCNY, 1e-9)
		assert.Equal(t, 0.0, stats.TotalProjectedYield)
		assert.Equal(t, 0.0, stats.PathDistribution[0].AvgYield)
	})
}

func TestCompute_RealEstateUsesStoredYield(t *testing.T) {
	rental, appreciation := 3.0, 2.0
	house := asset("house", "CNY", "6", 1000, 5)
	house.RentalYield = &rental
	house.AppreciationRate = &appreciation

	stats := Compute([]models.Asset{house}, testCurrencies, testPaths)
	assert.InDelta(t, 5.0, stats.TotalProjectedYield, 1e-9)

	house.AnnualYield = 9
	stats = Compute([]models.Asset{house}, testCurrencies, testPaths)
	assert.InDelta(t, 9.0, stats.TotalProjectedYield, 1e-9)
}

func TestForUser(t *testing.T) {
	a := asset("a", "CNY", "1", 1, 1)
	b := asset("b", "CNY", "1", 1, 1)
	b.UserID = "u2"
	c := asset("c", "CNY", "1", 1, 1)

	got := ForUser([]models.Asset{a, b, c}, "u1")
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Empty(t, ForUser([]models.Asset{a}, "nobody"))
}

func TestProjectedIncome(t *testing.T) {
	stats := models.PortfolioStats{TotalValueCNY: 12230, TotalProjectedYield: 4}
	assert.InDelta(t, 489.2, ProjectedIncome(stats), 1e-9)
}
