package checks

import (
	"time"

	"padhaihub-backend/internal/aicheck"
)

// CheckResponse is the outward-facing representation of a check.
type CheckResponse struct {
	CheckID          string          `json:"checkId"`
	Status           Status          `json:"status"`
	FileName         string          `json:"fileName"`
	MimeType         string          `json:"mimeType"`
	SizeBytes        int64           `json:"sizeBytes"`
	ExtractedChars   int             `json:"extractedChars"`
	ExtractionMethod string          `json:"extractionMethod,omitempty"`
	Analysis         string          `json:"analysis"`
	Fields           *aicheck.Fields `json:"fields"`
	Band             aicheck.Band    `json:"band"`
	Error            *CheckError     `json:"error,omitempty"`
	Provider         string          `json:"provider,omitempty"`
	Model            string          `json:"model,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

// CheckError describes why a check failed.
type CheckError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CheckSummary is a history row.
type CheckSummary struct {
	CheckID   string       `json:"checkId"`
	Status    Status       `json:"status"`
	FileName  string       `json:"fileName"`
	Band      aicheck.Band `json:"band"`
	CreatedAt time.Time    `json:"createdAt"`
}

func toResponse(c Check) CheckResponse {
	resp := CheckResponse{
		CheckID:          c.ID,
		Status:           c.Status,
		FileName:         c.FileName,
		MimeType:         c.MimeType,
		SizeBytes:        c.SizeBytes,
		ExtractedChars:   c.ExtractedChars,
		ExtractionMethod: c.ExtractionMethod,
		Analysis:         c.AnalysisText,
		Fields:           c.Fields,
		Band:             c.Band,
		Provider:         c.Provider,
		Model:            c.Model,
		CreatedAt:        c.CreatedAt,
		CompletedAt:      c.CompletedAt,
	}
	if c.Status == StatusFailed {
		resp.Error = &CheckError{Code: c.ErrorCode, Message: c.ErrorMessage}
	}
	return resp
}

func toSummary(c Check) CheckSummary {
	return CheckSummary{
		CheckID:   c.ID,
		Status:    c.Status,
		FileName:  c.FileName,
		Band:      c.Band,
		CreatedAt: c.CreatedAt,
	}
}
