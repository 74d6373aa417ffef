package workspace

import (
	"errors"
	"slices"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wealthtrack/internal/models"
)

// ErrKeyNotFound is returned by a Persister when a key has never been saved.
var ErrKeyNotFound = errors.New("workspace: key not found")

// Persister is the durable key-value storage behind a Store.
// Save must apply every entry or none of them.
type Persister interface {
	Load(key string) ([]byte, error)
	Save(entries map[string][]byte) error
}

// GormPersister keeps workspace keys in the workspace_entries table.
type GormPersister struct {
	db *gorm.DB
}

// NewGormPersister creates a GormPersister. The workspace_entries table must
// already exist (see database.AutoMigrate).
func NewGormPersister(db *gorm.DB) *GormPersister {
	return &GormPersister{db: db}
}

// Load returns the stored value for key.
func (p *GormPersister) Load(key string) ([]byte, error) {
	var entry models.WorkspaceEntry
	err := p.db.Where(&models.WorkspaceEntry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(entry.Value), nil
}

// Save upserts all entries in a single transaction.
func (p *GormPersister) Save(entries map[string][]byte) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return p.db.Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			entry := models.WorkspaceEntry{Key: k, Value: string(entries[k])}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&entry).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// MemoryPersister is a Persister backed by a map, for tests and throwaway
// workspaces.
type MemoryPersister struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewMemoryPersister creates an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{entries: make(map[string][]byte)}
}

// Load returns the stored value for key.
func (p *MemoryPersister) Load(key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

// Save stores all entries.
func (p *MemoryPersister) Save(entries map[string][]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range entries {
		p.entries[k] = slices.Clone(v)
	}
	return nil
}
