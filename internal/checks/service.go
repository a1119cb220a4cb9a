package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"padhaihub-backend/internal/aicheck"
	"padhaihub-backend/internal/extract"
	"padhaihub-backend/internal/llm"
	"padhaihub-backend/internal/shared/metrics"
	"padhaihub-backend/internal/shared/storage/object"
	"padhaihub-backend/internal/shared/telemetry"
)

// DefaultMaxPromptChars bounds how much document text is sent to the model.
const DefaultMaxPromptChars = 12000

// Service runs AI checks on uploaded documents.
type Service struct {
	Store     object.ObjectStore
	Repo      Repo
	Extractor extract.Extractor
	LLM       llm.Client
	Provider  string
	Model     string
	// LLMTimeout bounds a single model call, retries included. Zero means no
	// extra bound beyond the client's own.
	LLMTimeout     time.Duration
	MaxPromptChars int
	// KeepExtracted stores the recovered text next to the upload.
	KeepExtracted bool

	now func() time.Time
}

// RunInput is one uploaded file to check.
type RunInput struct {
	UserID       string
	FileName     string
	DeclaredType string
	Body         io.Reader
	RequestID    string
}

// Run stores the upload, extracts its text, asks the model for an analysis and
// records the outcome. Failed checks are recorded too and returned alongside
// the error so callers can reference them.
func (s *Service) Run(ctx context.Context, in RunInput) (Check, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.FileName = strings.TrimSpace(in.FileName)
	if in.UserID == "" || in.FileName == "" || in.Body == nil {
		return Check{}, ErrInvalidInput
	}

	start := s.clock()
	metrics.IncCheckStarted()
	check := Check{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		FileName:  in.FileName,
		MimeType:  in.DeclaredType,
		Provider:  s.Provider,
		Model:     s.Model,
		CreatedAt: start,
	}
	run := &checkRun{svc: s, check: check, requestID: in.RequestID, start: start}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return Check{}, fmt.Errorf("%w: read upload: %v", ErrInvalidInput, err)
	}

	obj, err := s.Store.Save(ctx, in.UserID, in.FileName, in.DeclaredType, bytes.NewReader(data))
	if err != nil {
		return run.fail(ctx, CodeStorage, err, ErrStorage)
	}
	run.check.StorageKey = obj.Key
	run.check.SizeBytes = obj.Size
	if run.check.MimeType == "" {
		run.check.MimeType = obj.MimeType
	}
	run.check.MimeType = extract.NormalizeMimeType(run.check.MimeType, in.FileName, data)

	res, err := s.Extractor.FromBytes(ctx, data, run.check.MimeType, in.FileName)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrNoTextFound):
			return run.fail(ctx, CodeNoTextFound, err, ErrNoText)
		case errors.Is(err, extract.ErrEmptyDocument):
			return run.fail(ctx, CodeEmptyDocument, err, ErrEmptyDocument)
		case errors.Is(err, extract.ErrUnsupportedType):
			return run.fail(ctx, CodeUnsupportedType, err, ErrUnsupportedType)
		case ctx.Err() != nil:
			return Check{}, ctx.Err()
		default:
			return run.fail(ctx, CodeExtractFailed, err, ErrExtractFailed)
		}
	}
	run.check.ExtractedChars = utf8.RuneCountInString(res.Text)
	run.check.ExtractionMethod = res.Method
	metrics.IncExtraction(res.Method)
	s.keepExtracted(ctx, &run.check, res.Text)

	analysis, err := s.analyze(ctx, res.Text)
	if err != nil {
		code, sentinel := classifyLLMError(err)
		return run.fail(ctx, code, err, sentinel)
	}

	result := aicheck.NewResult(analysis)
	return run.complete(ctx, result)
}

// Get returns one of the user's checks.
func (s *Service) Get(ctx context.Context, userID, id string) (Check, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return Check{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, userID, id)
}

// List returns the user's checks, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Check, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) analyze(ctx context.Context, text string) (string, error) {
	if s.LLM == nil {
		return "", llm.ErrNotConfigured
	}
	if s.LLMTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.LLMTimeout)
		defer cancel()
	}

	limit := s.MaxPromptChars
	if limit <= 0 {
		limit = DefaultMaxPromptChars
	}
	prompt := aicheck.BuildPrompt(TruncateRunes(text, limit))

	llmStart := time.Now()
	out, err := s.LLM.Analyze(ctx, llm.AnalyzeInput{SystemPrompt: prompt.System, UserPrompt: prompt.User})
	metrics.ObserveLLMDurationMs(float64(time.Since(llmStart).Milliseconds()))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", llm.ErrEmptyResponse
	}
	return out, nil
}

func (s *Service) keepExtracted(ctx context.Context, c *Check, text string) {
	if !s.KeepExtracted || c.StorageKey == "" {
		return
	}
	key := object.ExtractedTextKey(c.StorageKey)
	if _, err := s.Store.SaveWithKey(ctx, key, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		telemetry.Warn("check.extracted_save_failed", map[string]any{
			"check_id": c.ID,
			"error":    err,
		})
		return
	}
	c.ExtractedTextKey = key
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

func classifyLLMError(err error) (string, error) {
	var statusErr *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return CodeLLMTimeout, ErrAITimeout
	case errors.Is(err, llm.ErrEmptyResponse):
		return CodeLLMEmpty, ErrAIUnavailable
	case errors.As(err, &statusErr) && statusErr.RateLimited():
		return CodeLLMRateLimited, ErrAIUnavailable
	default:
		return CodeLLMUnavailable, ErrAIUnavailable
	}
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

type checkRun struct {
	svc       *Service
	check     Check
	requestID string
	start     time.Time
}

func (r *checkRun) fail(ctx context.Context, code string, cause error, sentinel error) (Check, error) {
	done := r.svc.clock()
	r.check.Status = StatusFailed
	r.check.Band = aicheck.BandFor(aicheck.LevelUnknown)
	r.check.ErrorCode = code
	r.check.ErrorMessage = cause.Error()
	r.check.CompletedAt = &done

	metrics.IncCheckFailed(code)
	r.finish(ctx, done)
	return r.check, fmt.Errorf("%w: %w", sentinel, cause)
}

func (r *checkRun) complete(ctx context.Context, result aicheck.Result) (Check, error) {
	done := r.svc.clock()
	r.check.Status = StatusCompleted
	r.check.AnalysisText = result.AnalysisText
	r.check.Fields = result.Fields
	r.check.Band = result.Band
	r.check.CompletedAt = &done

	if err := r.finish(ctx, done); err != nil {
		return Check{}, fmt.Errorf("save check: %w", err)
	}
	metrics.IncCheckCompleted(string(result.Band.Level))
	return r.check, nil
}

// finish persists the check even when the request context was cancelled.
func (r *checkRun) finish(ctx context.Context, done time.Time) error {
	elapsed := done.Sub(r.start)
	metrics.ObserveCheckDurationMs(float64(elapsed.Milliseconds()))

	fields := map[string]any{
		"request_id":  r.requestID,
		"user_id":     r.check.UserID,
		"check_id":    r.check.ID,
		"status":      string(r.check.Status),
		"mime_type":   r.check.MimeType,
		"method":      r.check.ExtractionMethod,
		"chars":       r.check.ExtractedChars,
		"band":        string(r.check.Band.Level),
		"duration_ms": elapsed.Milliseconds(),
	}
	if r.check.ErrorCode != "" {
		fields["error_code"] = r.check.ErrorCode
		fields["error"] = r.check.ErrorMessage
	}
	if r.check.Status == StatusCompleted && r.check.Fields.Empty() {
		fields["unparsed"] = true
	}
	telemetry.Info("check.status", fields)

	if err := r.svc.Repo.Create(context.WithoutCancel(ctx), r.check); err != nil {
		telemetry.Error("check.save_failed", map[string]any{
			"check_id": r.check.ID,
			"error":    err,
		})
		return err
	}
	return nil
}
