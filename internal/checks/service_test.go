package checks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padhaihub-backend/internal/aicheck"
	"padhaihub-backend/internal/extract"
	"padhaihub-backend/internal/llm"
	localstore "padhaihub-backend/internal/shared/storage/object/local"
)

type fakeLLM struct {
	out   string
	err   error
	calls int
	last  llm.AnalyzeInput
	wait  time.Duration
}

func (f *fakeLLM) Analyze(ctx context.Context, input llm.AnalyzeInput) (string, error) {
	f.calls++
	f.last = input
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", llm.ErrTimeout, ctx.Err())
		}
	}
	return f.out, f.err
}

func newTestService(t *testing.T, client llm.Client) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	fixed := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	return &Service{
		Store:     localstore.New(t.TempDir()),
		Repo:      repo,
		Extractor: extract.Extractor{},
		LLM:       client,
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		now:       func() time.Time { return fixed },
	}, repo
}

const sampleAnalysis = "AI Detection Score: 72%\nConfidence Level: High\nOriginality Assessment: Mostly generic phrasing\nWriting Quality Evaluation: Fluent"

func TestRunCompletesTextUpload(t *testing.T) {
	client := &fakeLLM{out: sampleAnalysis}
	svc, repo := newTestService(t, client)

	check, err := svc.Run(context.Background(), RunInput{
		UserID:       "student-1",
		FileName:     "essay.txt",
		DeclaredType: "text/plain",
		Body:         strings.NewReader("Rivers shape the land over many thousands of years."),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, check.Status)
	assert.Equal(t, sampleAnalysis, check.AnalysisText)
	require.NotNil(t, check.Fields)
	assert.Equal(t, "72%", *check.Fields.AIScore)
	assert.Equal(t, aicheck.LevelHigh, check.Band.Level)
	assert.Equal(t, "red", check.Band.Color)
	assert.Equal(t, extract.MethodText, check.ExtractionMethod)
	assert.Equal(t, "text/plain", check.MimeType)
	assert.NotEmpty(t, check.StorageKey)
	assert.NotNil(t, check.CompletedAt)
	assert.Contains(t, client.last.UserPrompt, "Rivers shape the land")

	stored, err := repo.Get(context.Background(), "student-1", check.ID)
	require.NoError(t, err)
	assert.Equal(t, check.ID, stored.ID)
}

func TestRunPDFUsesHeuristicExtractor(t *testing.T) {
	client := &fakeLLM{out: "AI Detection Score: 55"}
	svc, _ := newTestService(t, client)

	pdf := "%PDF-1.4\n1 0 obj << /Title (Photosynthesis Report) >>\nBT /F1 12 Tf (Plants convert sunlight into energy) Tj ET\n%%EOF"
	check, err := svc.Run(context.Background(), RunInput{
		UserID:   "student-1",
		FileName: "report.pdf",
		Body:     strings.NewReader(pdf),
	})
	require.NoError(t, err)
	assert.Equal(t, "pdf-simple", check.ExtractionMethod)
	assert.Equal(t, extract.MimePDF, check.MimeType)
	assert.Equal(t, aicheck.LevelModerate, check.Band.Level)
	assert.Contains(t, client.last.UserPrompt, "Plants convert sunlight into energy")
}

func TestRunKeepsUnparsedAnalysis(t *testing.T) {
	svc, _ := newTestService(t, &fakeLLM{out: "I cannot determine this."})

	check, err := svc.Run(context.Background(), RunInput{
		UserID: "u", FileName: "a.txt", DeclaredType: "text/plain",
		Body: strings.NewReader("Some essay text here"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, check.Status)
	assert.Equal(t, "I cannot determine this.", check.AnalysisText)
	assert.True(t, check.Fields.Empty())
	assert.Equal(t, aicheck.LevelUnknown, check.Band.Level)
}

func TestRunNoTextRecordsFailure(t *testing.T) {
	client := &fakeLLM{out: sampleAnalysis}
	svc, repo := newTestService(t, client)

	check, err := svc.Run(context.Background(), RunInput{
		UserID:   "u",
		FileName: "scan.pdf",
		Body:     strings.NewReader("%PDF-1.4\x00\x00\x00\x00\x00"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoText))
	assert.True(t, errors.Is(err, extract.ErrNoTextFound))
	assert.Equal(t, 0, client.calls)

	assert.Equal(t, StatusFailed, check.Status)
	assert.Equal(t, CodeNoTextFound, check.ErrorCode)
	stored, err := repo.Get(context.Background(), "u", check.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, stored.Status)
}

func TestRunCorruptDocxIsExtractFailure(t *testing.T) {
	client := &fakeLLM{out: sampleAnalysis}
	svc, _ := newTestService(t, client)

	check, err := svc.Run(context.Background(), RunInput{
		UserID: "u", FileName: "essay.docx", DeclaredType: extract.MimeDOCX,
		Body: strings.NewReader("PK\x03\x04 truncated archive"),
	})
	assert.True(t, errors.Is(err, ErrExtractFailed), "got %v", err)
	assert.False(t, errors.Is(err, ErrNoText))
	assert.Equal(t, CodeExtractFailed, check.ErrorCode)
	assert.Equal(t, StatusFailed, check.Status)
	assert.Equal(t, 0, client.calls)
}

func TestRunEmptyTextUpload(t *testing.T) {
	svc, _ := newTestService(t, &fakeLLM{out: sampleAnalysis})

	check, err := svc.Run(context.Background(), RunInput{
		UserID: "u", FileName: "blank.txt", DeclaredType: "text/plain",
		Body: strings.NewReader("  \n\t "),
	})
	assert.True(t, errors.Is(err, ErrEmptyDocument))
	assert.Equal(t, CodeEmptyDocument, check.ErrorCode)
}

func TestRunMapsLLMErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{name: "timeout", err: fmt.Errorf("%w: deadline", llm.ErrTimeout), sentinel: ErrAITimeout, code: CodeLLMTimeout},
		{name: "rate limited", err: &llm.StatusError{StatusCode: 429}, sentinel: ErrAIUnavailable, code: CodeLLMRateLimited},
		{name: "server error", err: &llm.StatusError{StatusCode: 500}, sentinel: ErrAIUnavailable, code: CodeLLMUnavailable},
		{name: "empty", err: llm.ErrEmptyResponse, sentinel: ErrAIUnavailable, code: CodeLLMEmpty},
		{name: "not configured", err: llm.ErrNotConfigured, sentinel: ErrAIUnavailable, code: CodeLLMUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, &fakeLLM{err: tt.err})
			check, err := svc.Run(context.Background(), RunInput{
				UserID: "u", FileName: "a.txt", DeclaredType: "text/plain",
				Body: strings.NewReader("An essay about volcanoes"),
			})
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.Equal(t, tt.code, check.ErrorCode)
			assert.Equal(t, StatusFailed, check.Status)
			assert.Equal(t, aicheck.LevelUnknown, check.Band.Level)
		})
	}
}

func TestRunWhitespaceAnalysisIsEmptyResponse(t *testing.T) {
	svc, _ := newTestService(t, &fakeLLM{out: "   \n"})
	check, err := svc.Run(context.Background(), RunInput{
		UserID: "u", FileName: "a.txt", DeclaredType: "text/plain",
		Body: strings.NewReader("An essay about volcanoes"),
	})
	assert.True(t, errors.Is(err, ErrAIUnavailable))
	assert.Equal(t, CodeLLMEmpty, check.ErrorCode)
}

func TestRunAppliesLLMTimeout(t *testing.T) {
	svc, _ := newTestService(t, &fakeLLM{out: sampleAnalysis, wait: time.Second})
	svc.LLMTimeout = 20 * time.Millisecond

	_, err := svc.Run(context.Background(), RunInput{
		UserID: "u", FileName: "a.txt", DeclaredType: "text/plain",
		Body: strings.NewReader("An essay about volcanoes"),
	})
	assert.True(t, errors.Is(err, ErrAITimeout), "got %v", err)
}

func TestRunTruncatesPrompt(t *testing.T) {
	client := &fakeLLM{out: sampleAnalysis}
	svc, _ := newTestService(t, client)
	svc.MaxPromptChars = 10

	_, err := svc.Run(context.Background(), RunInput{
		UserID: "u", FileName: "a.txt", DeclaredType: "text/plain",
		Body: strings.NewReader("ABCDEFGHIJKLMNOPQRSTUVWXYZ"),
	})
	require.NoError(t, err)
	assert.Contains(t, client.last.UserPrompt, "ABCDEFGHIJ")
	assert.NotContains(t, client.last.UserPrompt, "ABCDEFGHIJK")
}

func TestRunKeepsExtractedText(t *testing.T) {
	svc, _ := newTestService(t, &fakeLLM{out: sampleAnalysis})
	svc.KeepExtracted = true

	check, err := svc.Run(context.Background(), RunInput{
		UserID: "u", FileName: "a.txt", DeclaredType: "text/plain",
		Body: strings.NewReader("  An essay about volcanoes  "),
	})
	require.NoError(t, err)
	require.Equal(t, check.StorageKey+".extracted.txt", check.ExtractedTextKey)

	rc, err := svc.Store.Open(context.Background(), check.ExtractedTextKey)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "An essay about volcanoes", string(data))
}

func TestRunRejectsMissingInput(t *testing.T) {
	svc, _ := newTestService(t, &fakeLLM{})
	_, err := svc.Run(context.Background(), RunInput{FileName: "a.txt", Body: strings.NewReader("x")})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = svc.Run(context.Background(), RunInput{UserID: "u", Body: strings.NewReader("x")})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestListNewestFirst(t *testing.T) {
	svc, repo := newTestService(t, &fakeLLM{})
	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), Check{
			ID: fmt.Sprintf("c%d", i), UserID: "u", CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(context.Background(), Check{ID: "other", UserID: "v", CreatedAt: base}))

	items, err := svc.List(context.Background(), "u", 2, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c2", items[0].ID)
	assert.Equal(t, "c1", items[1].ID)

	items, err = svc.List(context.Background(), "u", 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c0", items[0].ID)

	_, err = svc.Get(context.Background(), "v", "c0")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 5))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 0))
}
