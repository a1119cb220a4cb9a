package checks

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNoText          = errors.New("no text found")
	ErrEmptyDocument   = errors.New("empty document")
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrExtractFailed   = errors.New("document could not be read")
	ErrAITimeout       = errors.New("ai service timed out")
	ErrAIUnavailable   = errors.New("ai service unavailable")
	ErrStorage         = errors.New("storage failure")
)

// Error codes recorded on failed checks.
const (
	CodeNoTextFound     = "NO_TEXT_FOUND"
	CodeEmptyDocument   = "EMPTY_DOCUMENT"
	CodeUnsupportedType = "UNSUPPORTED_TYPE"
	CodeExtractFailed   = "EXTRACT_FAILED"
	CodeLLMTimeout      = "LLM_TIMEOUT"
	CodeLLMEmpty        = "LLM_EMPTY_RESPONSE"
	CodeLLMRateLimited  = "LLM_RATE_LIMITED"
	CodeLLMUnavailable  = "LLM_UNAVAILABLE"
	CodeStorage         = "STORAGE_ERROR"
)
