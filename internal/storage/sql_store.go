package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wealthtrack/internal/models"
)

// SQLStore keeps each snapshot as one row of the snapshots table.
type SQLStore struct {
	db       *gorm.DB
	location string
}

// NewSQLStore returns a store over db. location is reported by Location.
func NewSQLStore(db *gorm.DB, location string) *SQLStore {
	return &SQLStore{db: db, location: location}
}

// Save upserts the document for id.
func (s *SQLStore) Save(id string, snap *models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	rec := models.SnapshotRecord{
		ID:              id,
		Document:        string(data),
		ServerTimestamp: snap.ServerTimestamp,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "server_timestamp", "updated_at"}),
	}).Create(&rec).Error
}

// Load returns the document stored for id.
func (s *SQLStore) Load(id string) (*models.Snapshot, error) {
	var rec models.SnapshotRecord
	err := s.db.Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal([]byte(rec.Document), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &snap, nil
}

// Delete removes the row for id.
func (s *SQLStore) Delete(id string) error {
	result := s.db.Where("id = ?", id).Delete(&models.SnapshotRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored rows.
func (s *SQLStore) Count() (int, error) {
	var n int64
	if err := s.db.Model(&models.SnapshotRecord{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

// Location returns the label given at construction.
func (s *SQLStore) Location() string {
	return s.location
}
