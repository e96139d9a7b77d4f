// Package repository records completed plan runs to SQLite via GORM, the
// same storage stack (and Silent-logger-by-default configuration) the
// teacher's repository package uses for its profile/history tables.
package repository

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PlanRun is one recorded plan generation/playback: what text was typed,
// how it was configured, and how the resulting action stream measured up.
type PlanRun struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	SourceText     string    `gorm:"type:text;not null" json:"source_text"`
	WordNavProfile string    `gorm:"index;not null" json:"word_nav_profile"`
	WPMTarget      float64   `json:"wpm_target"`
	ActionCount    int       `json:"action_count"`
	KeyEventCount  int       `json:"key_event_count"`
	TotalWaitMs    uint64    `json:"total_wait_ms"`
	Backend        string    `gorm:"index" json:"backend"`
	Error          string    `gorm:"type:text" json:"error,omitempty"`
}

// Repository persists and queries PlanRun records.
type Repository interface {
	Migrate(ctx context.Context) error
	RecordRun(ctx context.Context, run *PlanRun) error
	RecentRuns(ctx context.Context, limit int) ([]*PlanRun, error)
	RunsWithErrors(ctx context.Context, limit int) ([]*PlanRun, error)
	Close() error
}

// SQLiteRepository implements Repository using SQLite via GORM.
//
// Grounded on the teacher's internal/repository.SQLiteRepository: same
// gorm.Open(sqlite.Open(path))/logger.Silent/AutoMigrate-on-construction
// shape, generalized from Profile/History to PlanRun.
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository opens (creating if needed) the SQLite database at
// dbPath and migrates its schema.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), cfg)
	if err != nil {
		return nil, err
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// Migrate runs database migrations.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&PlanRun{})
}

// RecordRun inserts run, stamping CreatedAt if unset.
func (r *SQLiteRepository) RecordRun(ctx context.Context, run *PlanRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(run).Error
}

// RecentRuns returns the most recently recorded runs, newest first.
func (r *SQLiteRepository) RecentRuns(ctx context.Context, limit int) ([]*PlanRun, error) {
	var runs []*PlanRun
	result := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&runs)
	return runs, result.Error
}

// RunsWithErrors returns the most recent runs that recorded a non-empty
// Error field, newest first.
func (r *SQLiteRepository) RunsWithErrors(ctx context.Context, limit int) ([]*PlanRun, error) {
	var runs []*PlanRun
	result := r.db.WithContext(ctx).
		Where("error IS NOT NULL AND error != ''").
		Order("created_at desc").
		Limit(limit).
		Find(&runs)
	return runs, result.Error
}

// Close closes the underlying database connection.
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
