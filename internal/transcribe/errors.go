package transcribe

import "errors"

// ErrTranscriptionFailed indicates the backend could not transcribe a snippet.
// Non-fatal to the run: the snippet is treated as "no match".
var ErrTranscriptionFailed = errors.New("transcription failed")

// ErrWhisperNotFound indicates the whisper CLI binary could not be located.
var ErrWhisperNotFound = errors.New("whisper binary not found")

// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
var ErrRateLimit = errors.New("rate limit exceeded")

// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
var ErrQuotaExceeded = errors.New("quota exceeded")

// ErrTimeout indicates a request timed out.
var ErrTimeout = errors.New("request timeout")

// ErrAuthFailed indicates API authentication failed (invalid key).
var ErrAuthFailed = errors.New("authentication failed")

// ErrBadRequest indicates the API rejected the request (not retryable).
var ErrBadRequest = errors.New("bad request")
