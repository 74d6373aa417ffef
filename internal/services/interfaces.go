package services

import (
	"time"

	"wealthtrack/internal/models"
)

// SyncStats is the operator view of the snapshot store.
type SyncStats struct {
	TotalUsers    int    `json:"totalUsers"`
	DataDirectory string `json:"dataDirectory"`
}

// SyncServicer defines the contract for the snapshot sync server.
type SyncServicer interface {
	Register(clientAddr string, now time.Time) string
	Upload(id string, snap *models.Snapshot) (int64, error)
	Download(id string) (*models.Snapshot, error)
	Delete(id string) error
	Stats() (*SyncStats, error)
}
