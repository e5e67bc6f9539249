package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-chapters/internal/lang"
)

// DefaultOpenAIModel is the hosted transcription model used unless the
// profile overrides it.
const DefaultOpenAIModel = openai.Whisper1

// audioTranscriber is the slice of *openai.Client we call.
// Allows injecting mocks in tests.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAITranscriber transcribes snippets through OpenAI's transcription
// API with exponential backoff on transient errors. Snippets are a few
// seconds long, so each call is cheap and fast.
type OpenAITranscriber struct {
	client  audioTranscriber
	profile Profile
	retry   RetryConfig
}

// OpenAIOption configures an OpenAITranscriber.
type OpenAIOption func(*OpenAITranscriber)

// WithRetryConfig overrides the backoff parameters.
func WithRetryConfig(cfg RetryConfig) OpenAIOption {
	return func(t *OpenAITranscriber) { t.retry = cfg }
}

// NewOpenAITranscriber creates a transcriber backed by the given client.
func NewOpenAITranscriber(client *openai.Client, profile Profile, opts ...OpenAIOption) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client:  client,
		profile: profile.WithDefaults(),
		retry:   DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe sends one snippet to the API, retrying transient failures.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	model := t.profile.Model
	if model == "" || model == DefaultModel {
		// Local whisper model names mean nothing to the API.
		model = DefaultOpenAIModel
	}

	language := ""
	if t.profile.Language != "" {
		language = lang.BaseCode(t.profile.Language)
	}

	req := openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatJSON,
		Prompt:   t.profile.Prompt,
		Language: language, // OpenAI only accepts ISO 639-1 base codes
	}

	text, err := retryWithBackoff(ctx, t.retry, isRetryableError, func() (string, error) {
		resp, err := t.client.CreateTranscription(ctx, req)
		if err != nil {
			return "", classifyError(err)
		}
		return resp.Text, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	raw := strings.TrimSpace(text)
	return Result{Raw: raw, Normalized: Normalize(raw)}, nil
}

// Close is a no-op; the API client holds no run-scoped resources.
func (t *OpenAITranscriber) Close() error { return nil }

// classifyError maps OpenAI API errors to sentinel errors.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// Quota exhaustion looks like a rate limit but requires user
			// action, so it must not be retried.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, ErrRateLimit)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrTimeout)
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrBadRequest)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ErrTimeout)
	}

	return err
}

// isRetryableError determines if an error is transient and should be retried.
func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	return false
}
