package transcribe

// Test-only constructors and exports.
//
// These expose internal seams so external tests (transcribe_test package)
// can inject mocks without widening the public API.

// NewTestOpenAITranscriber creates an OpenAITranscriber with a mock audioTranscriber.
func NewTestOpenAITranscriber(client audioTranscriber, profile Profile, opts ...OpenAIOption) *OpenAITranscriber {
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

// NewTestWhisperTranscriber creates a WhisperTranscriber with mock seams
// and a fixed scratch directory, skipping real directory creation.
func NewTestWhisperTranscriber(binPath, workDir string, profile Profile, runner commandRunner, files fileAccessor) *WhisperTranscriber {
	return &WhisperTranscriber{
		binPath: binPath,
		profile: profile.WithDefaults(),
		workDir: workDir,
		runner:  runner,
		files:   files,
	}
}

// Function exports for unit testing internal logic.
var (
	ClassifyError    = classifyError
	IsRetryableError = isRetryableError
)

// BuildWhisperArgs exposes argument assembly for assertion.
func (w *WhisperTranscriber) BuildWhisperArgs(audioPath string) []string {
	return w.buildArgs(audioPath)
}
