package storage

import (
	"time"
)

// LookupRecord is one row of the lookup log. It records that a fetch was
// attempted and how it ended, never the weather it returned.
type LookupRecord struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`

	Place string `json:"place"`
	Unit  string `json:"unit"`

	// Result
	Outcome    string `gorm:"index" json:"outcome"`
	Error      string `json:"error,omitempty"`
	Stale      bool   `json:"stale"`
	DurationMs int64  `json:"duration_ms"`
}

func (LookupRecord) TableName() string {
	return "lookups"
}

type OutcomeCount struct {
	Outcome string `json:"outcome"`
	Count   int64  `json:"count"`
}
