package cli

import (
	"context"
	"sync"
	"time"

	"github.com/alnah/go-chapters/internal/audio"
	"github.com/alnah/go-chapters/internal/chapter"
	"github.com/alnah/go-chapters/internal/config"
	"github.com/alnah/go-chapters/internal/pipeline"
	"github.com/alnah/go-chapters/internal/transcribe"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc      func(ctx context.Context) (string, error)
	CheckVersionFunc func(ctx context.Context, ffmpegPath string)

	mu           sync.Mutex
	resolveCalls int
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	if m.CheckVersionFunc != nil {
		m.CheckVersionFunc(ctx, ffmpegPath)
	}
}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

// ---------------------------------------------------------------------------
// Mock AudioFactory + collaborators
// ---------------------------------------------------------------------------

type mockAudioFactory struct {
	prober    *mockProber
	scanner   *mockScanner
	extractor *mockExtractor
	truncator *mockTruncator
}

func newMockAudioFactory() *mockAudioFactory {
	return &mockAudioFactory{
		prober:    &mockProber{},
		scanner:   &mockScanner{},
		extractor: &mockExtractor{},
		truncator: &mockTruncator{},
	}
}

func (m *mockAudioFactory) NewProber(string) (pipeline.Prober, error) {
	return m.prober, nil
}

func (m *mockAudioFactory) NewScanner(string, ...audio.ScannerOption) (pipeline.Scanner, error) {
	return m.scanner, nil
}

func (m *mockAudioFactory) NewExtractor(string, ...audio.ExtractorOption) (pipeline.Extractor, error) {
	return m.extractor, nil
}

func (m *mockAudioFactory) NewTruncator(string) (Truncator, error) {
	return m.truncator, nil
}

type mockProber struct {
	DurationFunc func(ctx context.Context, audioPath string) (time.Duration, error)
}

func (m *mockProber) Duration(ctx context.Context, audioPath string) (time.Duration, error) {
	if m.DurationFunc != nil {
		return m.DurationFunc(ctx, audioPath)
	}
	return time.Hour, nil
}

type mockScanner struct {
	ScanFunc func(ctx context.Context, audioPath string, total time.Duration) ([]chapter.Interval, error)
}

func (m *mockScanner) Scan(ctx context.Context, audioPath string, total time.Duration) ([]chapter.Interval, error) {
	if m.ScanFunc != nil {
		return m.ScanFunc(ctx, audioPath, total)
	}
	return []chapter.Interval{
		{Start: 10 * time.Second, End: 14 * time.Second},
		{Start: 100 * time.Second, End: 104 * time.Second},
	}, nil
}

type mockExtractor struct {
	ExtractFunc func(ctx context.Context, audioPath string, index int, silenceEnd, total time.Duration) (audio.Snippet, error)

	mu           sync.Mutex
	removeCalls  int
	cleanupCalls int
}

func (m *mockExtractor) Extract(ctx context.Context, audioPath string, index int, silenceEnd, total time.Duration) (audio.Snippet, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, audioPath, index, silenceEnd, total)
	}
	return audio.Snippet{
		Index:  index,
		Anchor: silenceEnd,
		Path:   "snippet.wav",
	}, nil
}

func (m *mockExtractor) Remove(audio.Snippet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls++
	return nil
}

func (m *mockExtractor) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupCalls++
	return nil
}

func (m *mockExtractor) CleanupCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanupCalls
}

type mockTruncator struct {
	CreateFunc func(ctx context.Context, sourcePath string, length time.Duration, force bool) (string, bool, error)

	mu          sync.Mutex
	createCalls int
}

func (m *mockTruncator) Create(ctx context.Context, sourcePath string, length time.Duration, force bool) (string, bool, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, sourcePath, length, force)
	}
	return sourcePath, false, nil
}

func (m *mockTruncator) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createCalls
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory + Transcriber
// ---------------------------------------------------------------------------

type mockTranscriberFactory struct {
	transcriber *mockTranscriber

	mu           sync.Mutex
	whisperCalls []string // bin paths passed
	openaiCalls  []string // API keys passed
	lastProfile  transcribe.Profile
}

func newMockTranscriberFactory(texts ...string) *mockTranscriberFactory {
	return &mockTranscriberFactory{transcriber: &mockTranscriber{texts: texts}}
}

func (m *mockTranscriberFactory) NewWhisper(binPath string, profile transcribe.Profile) (transcribe.Transcriber, error) {
	m.mu.Lock()
	m.whisperCalls = append(m.whisperCalls, binPath)
	m.lastProfile = profile
	m.mu.Unlock()
	return m.transcriber, nil
}

func (m *mockTranscriberFactory) NewOpenAI(apiKey string, profile transcribe.Profile) (transcribe.Transcriber, error) {
	m.mu.Lock()
	m.openaiCalls = append(m.openaiCalls, apiKey)
	m.lastProfile = profile
	m.mu.Unlock()
	return m.transcriber, nil
}

func (m *mockTranscriberFactory) WhisperCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.whisperCalls...)
}

func (m *mockTranscriberFactory) OpenAICalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.openaiCalls...)
}

func (m *mockTranscriberFactory) LastProfile() transcribe.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastProfile
}

// mockTranscriber returns configured texts in sequence, then empty text.
type mockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audioPath string) (transcribe.Result, error)

	mu         sync.Mutex
	texts      []string
	calls      int
	closeCalls int
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string) (transcribe.Result, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var raw string
	if m.calls < len(m.texts) {
		raw = m.texts[m.calls]
	}
	m.calls++
	return transcribe.Result{Raw: raw, Normalized: transcribe.Normalize(raw)}, nil
}

func (m *mockTranscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalls++
	return nil
}

func (m *mockTranscriber) CloseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalls
}

// Compile-time interface checks.
var (
	_ FFmpegResolver         = (*mockFFmpegResolver)(nil)
	_ ConfigLoader           = (*mockConfigLoader)(nil)
	_ AudioFactory           = (*mockAudioFactory)(nil)
	_ TranscriberFactory     = (*mockTranscriberFactory)(nil)
	_ transcribe.Transcriber = (*mockTranscriber)(nil)
)
