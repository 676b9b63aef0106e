package db

import (
	"time"

	"github.com/google/uuid"
)

// Run records one completed pipeline execution: which source was processed,
// how many rows survived and what warnings the normalizer produced.
type Run struct {
	ID           uuid.UUID `json:"id"`
	SourceKey    string    `json:"source_key"`
	RowCount     int       `json:"row_count"`
	WarningCount int       `json:"warning_count"`
	Warnings     []string  `json:"warnings"`
	FetchedAt    time.Time `json:"fetched_at"`
	CreatedAt    time.Time `json:"created_at"`
}
