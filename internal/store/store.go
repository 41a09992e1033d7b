package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"fan-control-backend/internal/model"
)

// Store defines the interface for the dispatch journal.
type Store interface {
	RecordDispatch(ctx context.Context, entry DispatchEntry) error
	RecentDispatches(ctx context.Context, limit int) ([]model.DispatchRecord, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// RecordDispatch appends one attempt to the journal.
func (s *gormStore) RecordDispatch(ctx context.Context, entry DispatchEntry) error {
	record := model.DispatchRecord{
		Level:      entry.Level,
		Command:    entry.Command,
		Address:    entry.Address,
		OK:         entry.OK(),
		StatusCode: entry.StatusCode,
		SentAt:     entry.SentAt.UTC(),
	}
	if entry.Err != nil {
		record.Error = entry.Err.Error()
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record dispatch of %s: %w", entry.Command, err)
	}
	return nil
}

// RecentDispatches returns the newest journal entries first. The limit is
// clamped to [1, MaxRecentLimit]; non-positive values select the default.
func (s *gormStore) RecentDispatches(ctx context.Context, limit int) ([]model.DispatchRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	var records []model.DispatchRecord
	if err := s.db.WithContext(ctx).
		Order("sent_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent dispatches: %w", err)
	}
	return records, nil
}
