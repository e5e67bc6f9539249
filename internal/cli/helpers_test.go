package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-chapters/internal/audio"
	"github.com/alnah/go-chapters/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	ffmpegResolver *mockFFmpegResolver
	configLoader   *mockConfigLoader
	audioFactory   *mockAudioFactory
	transcriber    *mockTranscriberFactory
}

func newTestMocks() *testMocks {
	return &testMocks{
		ffmpegResolver: &mockFFmpegResolver{},
		configLoader:   &mockConfigLoader{},
		audioFactory:   newMockAudioFactory(),
		transcriber:    newMockTranscriberFactory(),
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(mocks *testMocks) (*Env, *syncBuffer) {
	stderr := &syncBuffer{}
	env := &Env{
		Stdout:             &syncBuffer{},
		Stderr:             stderr,
		Getenv:             defaultTestEnv,
		LookPath:           func(string) (string, error) { return "", os.ErrNotExist },
		Now:                fixedTime(time.Date(2026, 8, 25, 14, 30, 52, 0, time.UTC)),
		FFmpegResolver:     mocks.ffmpegResolver,
		ConfigLoader:       mocks.configLoader,
		AudioFactory:       mocks.audioFactory,
		TranscriberFactory: mocks.transcriber,
	}
	return env, stderr
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// defaultTestEnv returns an API key for OpenAI and nothing else.
func defaultTestEnv(key string) string {
	if key == EnvOpenAIAPIKey {
		return "test-openai-key"
	}
	return ""
}

// createTestAudioFile creates a temporary audio file for testing.
// Returns the file path. The file is automatically cleaned up after the test.
func createTestAudioFile(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte("fake audio content"), 0644); err != nil {
		t.Fatalf("failed to create test audio file: %v", err)
	}
	return path
}

// createDetectCmd creates a cobra.Command for testing runDetect.
// runDetect reads its context from the command.
func createDetectCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	return cmd
}

// testDetectOptions returns detect options that pass validation:
// whisper provider with an explicit binary and one keyword.
func testDetectOptions() detectOptions {
	return detectOptions{
		SilenceThreshold: audio.DefaultSilenceThresholdDB,
		SilenceDuration:  audio.DefaultMinSilence,
		SnippetDuration:  audio.DefaultSnippetLength,
		LeadIn:           audio.DefaultLeadIn,
		Words:            []string{"chapter"},
		Provider:         ProviderWhisper,
		WhisperBin:       "/opt/whisper/bin/whisper-ctranslate2",
		TestRunLength:    audio.DefaultTestRunLength,
		LogLevel:         "error",
		NoColor:          true,
	}
}

// configWith returns a ConfigLoader that returns the given config.
func configWith(cfg config.Config) *mockConfigLoader {
	return &mockConfigLoader{
		LoadFunc: func() (config.Config, error) { return cfg, nil },
	}
}
