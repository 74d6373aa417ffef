// Package storage persists uploaded workspace snapshots, one document per
// sync identifier.
package storage

import (
	"errors"

	"wealthtrack/internal/models"
)

// ErrNotFound is returned when no document exists for an identifier.
var ErrNotFound = errors.New("storage: snapshot not found")

// Store is a full-overwrite document store keyed by sync identifier.
// Implementations do not lock; callers serialise writes per identifier.
type Store interface {
	Save(id string, snap *models.Snapshot) error
	Load(id string) (*models.Snapshot, error)
	Delete(id string) error
	Count() (int, error)
	// Location describes where documents live, for operator introspection.
	Location() string
}
