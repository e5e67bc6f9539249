package cli

import "errors"

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

	// ErrUnsupportedFormat indicates an audio file has an unsupported extension.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedProvider indicates an unknown transcription provider.
	ErrUnsupportedProvider = errors.New("unsupported provider (use whisper or openai)")

	// ErrNoMatchTarget indicates keyword mode was requested without phrases.
	ErrNoMatchTarget = errors.New("no match target: pass --word or --numbers-only")

	// ErrInvalidFlag indicates a flag value outside its valid range.
	ErrInvalidFlag = errors.New("invalid flag value")
)
