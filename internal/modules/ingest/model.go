package ingest

import (
	"time"

	"github.com/google/uuid"
)

// Status tracks the lifecycle of one photo/document processing attempt.
type Status string

const (
	StatusPending Status = "pending"
	// StatusProcessed means every extracted line resolved and was merged.
	StatusProcessed Status = "processed"
	// StatusProcessedWithMissing means resolved lines were merged but some
	// names did not resolve to a product.
	StatusProcessedWithMissing Status = "processed_with_missing"
	StatusFailed               Status = "failed"
)

// Record is the audit row for one media message, written whether or not the
// extraction resolves cleanly. Kept for debugging and retries.
type Record struct {
	ID           uuid.UUID `json:"id"`
	ChatID       int64     `json:"chat_id"`
	Mode         string    `json:"mode"`
	FileID       string    `json:"file_id"`
	FileUniqueID string    `json:"file_unique_id"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
