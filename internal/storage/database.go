package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"weather-panel/internal/panel"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	db *gorm.DB
}

func NewDatabase(path string) (*Database, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&LookupRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) SaveLookup(lookup *panel.Lookup) error {
	id := lookup.ID
	if id == "" {
		id = uuid.New().String()
	}
	timestamp := lookup.StartedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	record := &LookupRecord{
		ID:         id,
		Timestamp:  timestamp,
		Place:      lookup.Place,
		Unit:       string(lookup.Unit),
		Outcome:    string(lookup.Outcome),
		Error:      lookup.Error,
		Stale:      lookup.Stale,
		DurationMs: lookup.Duration.Milliseconds(),
	}

	return d.db.Create(record).Error
}

func (d *Database) GetRecentLookups(limit int) ([]LookupRecord, error) {
	var records []LookupRecord
	result := d.db.Order("timestamp desc").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

func (d *Database) GetLookupsByRange(from, to time.Time) ([]LookupRecord, error) {
	var records []LookupRecord
	result := d.db.Where("timestamp BETWEEN ? AND ?", from, to).
		Order("timestamp desc").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}

func (d *Database) CountByOutcome() ([]OutcomeCount, error) {
	var counts []OutcomeCount
	result := d.db.Model(&LookupRecord{}).
		Select("outcome, COUNT(*) AS count").
		Group("outcome").
		Order("outcome").
		Scan(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	return counts, nil
}

// CleanOldLookups deletes entries older than olderThan and reports how many
// were removed.
func (d *Database) CleanOldLookups(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := d.db.Where("timestamp < ?", cutoff).Delete(&LookupRecord{})
	return result.RowsAffected, result.Error
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
