// Package transcribe converts audio snippets to normalized text using a
// speech-recognition backend. The backend is acquired once per run and
// released through Close on every exit path.
package transcribe

import (
	"context"
	"strings"
	"unicode"
)

// Backend names accepted in a Profile.
const (
	// ProviderWhisper runs a local faster-whisper CLI subprocess.
	ProviderWhisper = "whisper"
	// ProviderOpenAI uses the hosted OpenAI transcription API.
	ProviderOpenAI = "openai"
)

// Default whisper profile values, chosen for speed over accuracy:
// snippets are a few seconds of clearly narrated speech.
const (
	DefaultModel       = "tiny.en"
	DefaultDevice      = "cpu"
	DefaultComputeType = "int8"
)

// Profile selects the recognition model and its runtime trade-offs.
// Resolved once at startup and immutable for the rest of the run.
type Profile struct {
	Provider    string // whisper (default) or openai.
	Model       string // Model name, e.g. "tiny.en"; for openai an API model override.
	Device      string // cpu or cuda (whisper only).
	ComputeType string // Numeric precision, e.g. int8, float16 (whisper only).
	ModelDir    string // Local model download/cache directory (whisper only).
	Prompt      string // Optional free-text hint guiding recognition.
	Language    string // ISO 639-1 code; empty means auto-detect.
}

// WithDefaults fills unset fields with the package defaults.
func (p Profile) WithDefaults() Profile {
	if p.Provider == "" {
		p.Provider = ProviderWhisper
	}
	if p.Model == "" {
		p.Model = DefaultModel
	}
	if p.Device == "" {
		p.Device = DefaultDevice
	}
	if p.ComputeType == "" {
		p.ComputeType = DefaultComputeType
	}
	return p
}

// Result holds one snippet's transcription.
type Result struct {
	Raw        string // Text as returned by the model.
	Normalized string // Case-folded, punctuation-stripped, single-spaced.
}

// Transcriber converts a single audio file to text.
// Implementations hold run-scoped resources; callers must Close.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
	Close() error
}

// Normalize prepares raw model output for matching: lower-case,
// apostrophes removed, every other non-alphanumeric rune treated as a
// word break, internal whitespace collapsed to single spaces. Hyphenated
// compounds like "thirty-two" become two words, which is what the
// spoken-number grammar expects.
func Normalize(raw string) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r == '\'' || r == '’':
			// Drop so "it's" stays one word.
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
