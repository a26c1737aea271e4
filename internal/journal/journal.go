// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package journal keeps a history of remote display sessions in SQLite
// through GORM.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gogpu/remotedisplay"
	"github.com/gogpu/remotedisplay/session"
)

// ErrNotFound is returned when a session is not in the journal.
var ErrNotFound = errors.New("journal: session not found")

// Entry is one recorded session.
type Entry struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	DisplayID   string     `gorm:"index;not null" json:"display_id"`
	DisplayName string     `json:"display_name"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	Config      string     `json:"config"`
	StartedAt   time.Time  `gorm:"index;not null" json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Frames      uint64     `json:"frames"`
	Reason      string     `json:"reason,omitempty"`
}

// TableName implements gorm's tabler.
func (Entry) TableName() string { return "sessions" }

// Store records sessions. It implements session.Recorder.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite journal at dsn.
// ":memory:" gives a private in-memory journal.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("journal: opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("journal: getting underlying sql.DB: %w", err)
	}
	// One writer; also keeps ":memory:" on a single connection.
	sqlDB.SetMaxOpenConns(1)

	return New(db)
}

// New wraps an open database, migrating the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("journal: migrating: %w", err)
	}
	return &Store{db: db}, nil
}

// SessionStarted implements session.Recorder.
func (s *Store) SessionStarted(ctx context.Context, r session.Record) error {
	e := Entry{
		ID:          r.ID,
		DisplayID:   r.DisplayID,
		DisplayName: r.DisplayName,
		Width:       r.Width,
		Height:      r.Height,
		Config:      r.Config,
		StartedAt:   r.Started.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("journal: recording start of %s: %w", r.ID, err)
	}
	remotedisplay.Logger().Debug("journal: session started", "session", r.ID)
	return nil
}

// SessionEnded implements session.Recorder. A session that was never
// recorded as started is inserted whole.
func (s *Store) SessionEnded(ctx context.Context, r session.Record) error {
	ended := r.Ended.UTC()
	res := s.db.WithContext(ctx).Model(&Entry{}).Where("id = ?", r.ID).Updates(map[string]any{
		"ended_at": ended,
		"frames":   r.Frames,
		"reason":   string(r.Reason),
	})
	if res.Error != nil {
		return fmt.Errorf("journal: recording end of %s: %w", r.ID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	e := Entry{
		ID:          r.ID,
		DisplayID:   r.DisplayID,
		DisplayName: r.DisplayName,
		Width:       r.Width,
		Height:      r.Height,
		Config:      r.Config,
		StartedAt:   r.Started.UTC(),
		EndedAt:     &ended,
		Frames:      r.Frames,
		Reason:      string(r.Reason),
	}
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("journal: recording end of %s: %w", r.ID, err)
	}
	return nil
}

// Get returns one session.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("journal: getting %s: %w", id, err)
	}
	return &e, nil
}

// List returns the most recent sessions first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	q := s.db.WithContext(ctx).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []Entry
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("journal: listing: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ session.Recorder = (*Store)(nil)
