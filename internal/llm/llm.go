package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Client abstracts chat-completion providers used for document checks.
type Client interface {
	Analyze(ctx context.Context, input AnalyzeInput) (string, error)
}

// AnalyzeInput is a single system/user prompt pair.
type AnalyzeInput struct {
	SystemPrompt string
	UserPrompt   string
}

var (
	// ErrTimeout is returned when the provider did not answer within the client timeout.
	ErrTimeout = errors.New("llm request timed out")
	// ErrEmptyResponse is returned when the provider answered without any content.
	ErrEmptyResponse = errors.New("llm response empty")
	// ErrNotConfigured is returned by PlaceholderClient.
	ErrNotConfigured = errors.New("llm provider not configured")
)

// StatusError is a non-2xx answer from the provider.
type StatusError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
}

func (e *StatusError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("llm http status %d (%s): %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("llm http status %d: %s", e.StatusCode, msg)
}

// RateLimited reports whether the provider asked us to slow down.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

// PlaceholderClient is used when no provider key is configured.
type PlaceholderClient struct{}

// Analyze returns ErrNotConfigured.
func (PlaceholderClient) Analyze(ctx context.Context, input AnalyzeInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotConfigured
}
