package testutil_test

import (
	"testing"

	"wealthtrack/internal/errors"
	"wealthtrack/internal/models"
	"wealthtrack/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)

	var count int64
	for _, table := range []string{"snapshots", "workspace_entries"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)

	id := testutil.SyncIdentifier()
	if len(id) != 16 {
		t.Fatalf("expected 16 char identifier, got %q", id)
	}
	if other := testutil.SyncIdentifier(); other == id {
		t.Fatal("identifiers should be unique")
	}

	testutil.CreateTestSnapshotRecord(t, db, id, `{"users":[]}`)
	var rec models.SnapshotRecord
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		t.Fatalf("expected stored record: %v", err)
	}
	if rec.ServerTimestamp == 0 {
		t.Error("server timestamp should be set")
	}

	snap := testutil.SampleSnapshot()
	if err := snap.Validate(); err != nil {
		t.Fatalf("sample snapshot should be valid: %v", err)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrLastUser, "LAST_USER")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrInternalServer, nil), "INTERNAL_ERROR")
}
