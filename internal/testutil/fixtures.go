package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"wealthtrack/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// SampleSnapshot returns a small valid workspace: one user holding a USD and
// a CNY asset. It mirrors the worked valuation example (12230 CNY total).
func SampleSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Users: []models.User{
			{ID: "default", Name: "My Wallet", CreatedAt: 1700000000000},
		},
		Assets: []models.Asset{
			{ID: "a1", UserID: "default", Name: "US Treasury", PathID: "5", CurrencyCode: "USD", Amount: 1000, AnnualYield: 5, CreatedAt: 1700000000001},
			{ID: "a2", UserID: "default", Name: "Deposit", PathID: "1", CurrencyCode: "CNY", Amount: 5000, AnnualYield: 2, CreatedAt: 1700000000002},
		},
		Currencies: []models.Currency{
			{Code: "CNY", Symbol: "¥", RateToCNY: 1},
			{Code: "USD", Symbol: "$", RateToCNY: 7.23},
		},
		Paths: []models.InvestmentPath{
			{ID: "1", Name: "Fixed Deposits", Icon: "PiggyBank"},
			{ID: "5", Name: "Bond Funds", Icon: "FileText"},
		},
		ActiveUserID: "default",
		Version:      models.SnapshotVersion,
	}
}

// SyncIdentifier returns a unique, well-formed sync identifier.
func SyncIdentifier() string {
	return fmt.Sprintf("%016x", nextID())
}

// CreateTestSnapshotRecord stores a snapshot row for id.
func CreateTestSnapshotRecord(t *testing.T, db *gorm.DB, id, document string) *models.SnapshotRecord {
	t.Helper()

	rec := &models.SnapshotRecord{
		ID:              id,
		Document:        document,
		ServerTimestamp: models.NowMillis(),
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("failed to create test snapshot record: %v", err)
	}
	return rec
}
