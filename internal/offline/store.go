package offline

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/WasteWatch/WW-Client/internal/localdb"
)

// QueueStore persists pending submissions in the local SQLite database so
// they survive a client restart while offline.
type QueueStore struct {
	db *gorm.DB
}

// OpenQueueStore opens the queue database at path and migrates its schema.
func OpenQueueStore(path string) (*QueueStore, error) {
	db, err := localdb.Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Submission{}); err != nil {
		return nil, fmt.Errorf("migrate offline queue: %w", err)
	}
	return &QueueStore{db: db}, nil
}

// NewQueueStore wraps an already-open database (shared with the devstub in
// tests).
func NewQueueStore(db *gorm.DB) (*QueueStore, error) {
	if err := db.AutoMigrate(&Submission{}); err != nil {
		return nil, fmt.Errorf("migrate offline queue: %w", err)
	}
	return &QueueStore{db: db}, nil
}

// Put stores a submission.
func (s *QueueStore) Put(sub *Submission) error {
	if err := s.db.Create(sub).Error; err != nil {
		return fmt.Errorf("store submission: %w", err)
	}
	return nil
}

// Pending returns all queued submissions, oldest first.
func (s *QueueStore) Pending() ([]Submission, error) {
	var subs []Submission
	err := s.db.Where("status = ?", StatusPendingSync).
		Order("enqueued_at asc").
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("list pending submissions: %w", err)
	}
	return subs, nil
}

// Remove deletes a submission after successful replay.
func (s *QueueStore) Remove(id string) error {
	if err := s.db.Delete(&Submission{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("remove submission %s: %w", id, err)
	}
	return nil
}

// Count returns the number of queued submissions.
func (s *QueueStore) Count() (int64, error) {
	var n int64
	err := s.db.Model(&Submission{}).
		Where("status = ?", StatusPendingSync).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count pending submissions: %w", err)
	}
	return n, nil
}
