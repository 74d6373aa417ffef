package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	apperrors "wealthtrack/internal/errors"
	"wealthtrack/internal/models"
	"wealthtrack/internal/storage"
	"wealthtrack/internal/validator"
)

// syncIDLength is the number of hex characters kept from the register hash.
const syncIDLength = 16

// syncService stores one snapshot per sync identifier.
type syncService struct {
	store storage.Store
	locks *keyedMutex
	now   func() time.Time
}

// NewSyncService creates a new SyncServicer over store.
func NewSyncService(store storage.Store) SyncServicer {
	return &syncService{
		store: store,
		locks: newKeyedMutex(),
		now:   time.Now,
	}
}

// Register derives a sync identifier from the caller address and time. The
// identifier is not a secret; anyone holding it can read and overwrite the
// stored snapshot.
func (s *syncService) Register(clientAddr string, now time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s-%d", clientAddr, now.UnixMilli())))
	return hex.EncodeToString(sum[:])[:syncIDLength]
}

// Upload validates and stores snap for id, replacing any previous document.
// It returns the server timestamp stamped on the stored document.
func (s *syncService) Upload(id string, snap *models.Snapshot) (int64, error) {
	if !validator.IsSyncID(id) {
		return 0, apperrors.ErrInvalidIdentifier
	}
	if err := snap.Validate(); err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidSnapshot, err.Error())
	}

	saved := *snap
	saved.ServerTimestamp = s.now().UnixMilli()
	if saved.Version == "" {
		saved.Version = models.SnapshotVersion
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.store.Save(id, &saved); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return saved.ServerTimestamp, nil
}

// Download returns the snapshot stored for id.
func (s *syncService) Download(id string) (*models.Snapshot, error) {
	if !validator.IsSyncID(id) {
		return nil, apperrors.ErrInvalidIdentifier
	}
	snap, err := s.store.Load(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return snap, nil
}

// Delete removes the snapshot stored for id.
func (s *syncService) Delete(id string) error {
	if !validator.IsSyncID(id) {
		return apperrors.ErrInvalidIdentifier
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	err := s.store.Delete(id)
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.ErrSnapshotNotFound
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Stats reports how many identifiers have a stored snapshot.
func (s *syncService) Stats() (*SyncStats, error) {
	n, err := s.store.Count()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &SyncStats{TotalUsers: n, DataDirectory: s.store.Location()}, nil
}
