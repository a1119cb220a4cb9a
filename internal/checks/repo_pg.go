package checks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"padhaihub-backend/internal/aicheck"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const checkColumns = `id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text_key,
    extracted_chars, extraction_method, status, analysis_text, fields, band, error_code,
    error_message, provider, model, created_at, completed_at`

// Create inserts a finished check.
func (r *PGRepo) Create(ctx context.Context, c Check) error {
	const query = `
INSERT INTO checks (
    id,
    user_id,
    file_name,
    mime_type,
    size_bytes,
    storage_key,
    extracted_text_key,
    extracted_chars,
    extraction_method,
    status,
    analysis_text,
    fields,
    band,
    error_code,
    error_message,
    provider,
    model,
    created_at,
    completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

	var fields []byte
	if c.Fields != nil {
		raw, err := json.Marshal(c.Fields)
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		fields = raw
	}
	var completedAt sql.NullTime
	if c.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *c.CompletedAt, Valid: true}
	}
	band := c.Band.Level
	if band == "" {
		band = aicheck.LevelUnknown
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		c.ID,
		c.UserID,
		c.FileName,
		c.MimeType,
		c.SizeBytes,
		c.StorageKey,
		c.ExtractedTextKey,
		c.ExtractedChars,
		c.ExtractionMethod,
		string(c.Status),
		c.AnalysisText,
		fields,
		string(band),
		c.ErrorCode,
		c.ErrorMessage,
		c.Provider,
		c.Model,
		c.CreatedAt,
		completedAt,
	)
	return err
}

// Get fetches a check by ID for a user.
func (r *PGRepo) Get(ctx context.Context, userID, id string) (Check, error) {
	query := `SELECT ` + checkColumns + `
FROM checks
WHERE user_id = $1 AND id = $2
LIMIT 1`
	c, err := scanCheck(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Check{}, ErrNotFound
		}
		return Check{}, err
	}
	return c, nil
}

// ListByUser lists checks ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Check, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset = max(offset, 0)
	query := `SELECT ` + checkColumns + `
FROM checks
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Check{}
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanCheck rebuilds the band from the stored score so its presentation always
// follows the current thresholds.
func scanCheck(row rowScanner) (Check, error) {
	var c Check
	var status, band string
	var fields []byte
	var completedAt sql.NullTime
	if err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.FileName,
		&c.MimeType,
		&c.SizeBytes,
		&c.StorageKey,
		&c.ExtractedTextKey,
		&c.ExtractedChars,
		&c.ExtractionMethod,
		&status,
		&c.AnalysisText,
		&fields,
		&band,
		&c.ErrorCode,
		&c.ErrorMessage,
		&c.Provider,
		&c.Model,
		&c.CreatedAt,
		&completedAt,
	); err != nil {
		return Check{}, err
	}
	c.Status = Status(status)
	if len(fields) > 0 {
		var f aicheck.Fields
		if err := json.Unmarshal(fields, &f); err != nil {
			return Check{}, fmt.Errorf("decode fields for check %s: %w", c.ID, err)
		}
		c.Fields = &f
	}
	if c.Fields.Score() != "" {
		c.Band = aicheck.Classify(c.Fields.Score())
	} else {
		c.Band = aicheck.BandFor(aicheck.Level(band))
	}
	if completedAt.Valid {
		t := completedAt.Time
		c.CompletedAt = &t
	}
	return c, nil
}

var _ Repo = (*PGRepo)(nil)
