package models

import "time"

// SnapshotRecord is the SQL row holding one uploaded snapshot document.
type SnapshotRecord struct {
	ID              string `gorm:"primaryKey;size:64"`
	Document        string `gorm:"type:text;not null"`
	ServerTimestamp int64  `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName pins the table name used by the migrations.
func (SnapshotRecord) TableName() string { return "snapshots" }

// WorkspaceEntry is one key of the client's local workspace storage.
type WorkspaceEntry struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName pins the local storage table name.
func (WorkspaceEntry) TableName() string { return "workspace_entries" }
