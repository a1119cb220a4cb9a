package checks

import (
	"time"

	"padhaihub-backend/internal/aicheck"
)

// Status is the terminal state of a check.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Check is one AI check of an uploaded submission. Records are written once,
// when the check finishes either way.
type Check struct {
	ID               string
	UserID           string
	FileName         string
	MimeType         string
	SizeBytes        int64
	StorageKey       string
	ExtractedTextKey string
	ExtractedChars   int
	ExtractionMethod string
	Status           Status
	// AnalysisText is the model output verbatim. It is kept even when no label parsed.
	AnalysisText string
	Fields       *aicheck.Fields
	Band         aicheck.Band
	ErrorCode    string
	ErrorMessage string
	Provider     string
	Model        string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}
