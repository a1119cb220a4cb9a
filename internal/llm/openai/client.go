package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"padhaihub-backend/internal/llm"
	"padhaihub-backend/internal/shared/telemetry"
)

const (
	// DefaultAPIURL is the OpenAI chat completions endpoint. Any compatible
	// endpoint (Groq, OpenRouter, a local gateway) can be configured instead.
	DefaultAPIURL  = "https://api.openai.com/v1/chat/completions"
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// Options configures a Client.
type Options struct {
	APIKey  string
	Model   string
	APIURL  string
	Timeout time.Duration
	// Transport is the base round tripper under the auth transport.
	Transport http.RoundTripper
}

// Client implements llm.Client against an OpenAI-compatible chat completions API.
type Client struct {
	apiURL     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a Client. The API key is attached as a bearer token by an
// oauth2 transport.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	apiURL := strings.TrimSpace(opts.APIURL)
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: strings.TrimSpace(opts.APIKey), TokenType: "Bearer"})
	return &Client{
		apiURL: apiURL,
		model:  strings.TrimSpace(opts.Model),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &oauth2.Transport{Source: tokens, Base: base},
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

// Analyze sends one chat completion and returns the assistant text verbatim.
func (c *Client) Analyze(ctx context.Context, input llm.AnalyzeInput) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(input.SystemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: input.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: input.UserPrompt})

	reqBody := chatRequest{Model: c.model, Messages: messages}
	if supportsTemperature(c.model) {
		temp := float32(0.2)
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %s", llm.ErrTimeout, err.Error())
		}
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("%w: %s", llm.ErrTimeout, err.Error())
		}
		return "", fmt.Errorf("llm read response: %w", err)
	}

	var parsed chatResponse
	parseErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode/100 != 2 {
		statusErr := &llm.StatusError{StatusCode: resp.StatusCode}
		if parseErr == nil && parsed.Error != nil {
			statusErr.Message = parsed.Error.Message
			statusErr.Type = parsed.Error.Type
			statusErr.Code = codeString(parsed.Error.Code)
		}
		return "", statusErr
	}
	if parseErr != nil {
		return "", fmt.Errorf("llm response parse: %w", parseErr)
	}
	if parsed.Error != nil {
		return "", &llm.StatusError{
			StatusCode: resp.StatusCode,
			Message:    parsed.Error.Message,
			Type:       parsed.Error.Type,
			Code:       codeString(parsed.Error.Code),
		}
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", llm.ErrEmptyResponse)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", llm.ErrEmptyResponse
	}
	logUsage(c.model, &parsed, time.Since(start))
	return content, nil
}

func logUsage(model string, parsed *chatResponse, elapsed time.Duration) {
	fields := map[string]any{
		"model":      model,
		"elapsed_ms": elapsed.Milliseconds(),
	}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
		fields["total_tokens"] = parsed.Usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func codeString(code any) string {
	switch v := code.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%d", int64(v))
	default:
		return fmt.Sprint(v)
	}
}

// supportsTemperature reports false for model families that reject a custom
// temperature, plus anything listed in LLM_NO_TEMPERATURE_MODELS.
func supportsTemperature(model string) bool {
	if isGPT5(model) {
		return false
	}
	for _, m := range strings.Split(os.Getenv("LLM_NO_TEMPERATURE_MODELS"), ",") {
		if strings.EqualFold(strings.TrimSpace(m), strings.TrimSpace(model)) && strings.TrimSpace(m) != "" {
			return false
		}
	}
	return true
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Client = (*Client)(nil)
