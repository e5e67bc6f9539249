package cli

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-chapters/internal/audio"
	"github.com/alnah/go-chapters/internal/config"
	"github.com/alnah/go-chapters/internal/ffmpeg"
	"github.com/alnah/go-chapters/internal/pipeline"
	"github.com/alnah/go-chapters/internal/transcribe"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdout   io.Writer
	Stderr   io.Writer
	Getenv   func(string) string
	LookPath func(string) (string, error)
	Now      func() time.Time

	// Factories for domain objects
	FFmpegResolver     FFmpegResolver
	ConfigLoader       ConfigLoader
	AudioFactory       AudioFactory
	TranscriberFactory TranscriberFactory
}

// FFmpegResolver resolves the path to the FFmpeg binary.
type FFmpegResolver interface {
	Resolve(ctx context.Context) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string)
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// Truncator creates shortened test-run copies of a source file.
type Truncator interface {
	Create(ctx context.Context, sourcePath string, length time.Duration, force bool) (path string, reused bool, err error)
}

// AudioFactory creates the FFmpeg-backed pipeline collaborators.
type AudioFactory interface {
	NewProber(ffmpegPath string) (pipeline.Prober, error)
	NewScanner(ffmpegPath string, opts ...audio.ScannerOption) (pipeline.Scanner, error)
	NewExtractor(ffmpegPath string, opts ...audio.ExtractorOption) (pipeline.Extractor, error)
	NewTruncator(ffmpegPath string) (Truncator, error)
}

// TranscriberFactory creates transcription backends.
type TranscriberFactory interface {
	NewWhisper(binPath string, profile transcribe.Profile) (transcribe.Transcriber, error)
	NewOpenAI(apiKey string, profile transcribe.Profile) (transcribe.Transcriber, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) { e.Getenv = fn }
}

// WithLookPath sets the PATH lookup function.
func WithLookPath(fn func(string) (string, error)) EnvOption {
	return func(e *Env) { e.LookPath = fn }
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) { e.FFmpegResolver = r }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithAudioFactory sets the audio factory.
func WithAudioFactory(f AudioFactory) EnvOption {
	return func(e *Env) { e.AudioFactory = f }
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) { e.TranscriberFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:             os.Stdout,
		Stderr:             os.Stderr,
		Getenv:             os.Getenv,
		LookPath:           exec.LookPath,
		Now:                time.Now,
		FFmpegResolver:     &defaultFFmpegResolver{},
		ConfigLoader:       &defaultConfigLoader{},
		AudioFactory:       &defaultAudioFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultFFmpegResolver implements FFmpegResolver using the ffmpeg package.
type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context) (string, error) {
	return ffmpeg.Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) {
	ffmpeg.NewVersionChecker().Check(ctx, ffmpegPath)
}

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultAudioFactory implements AudioFactory using the audio package.
type defaultAudioFactory struct{}

func (defaultAudioFactory) NewProber(ffmpegPath string) (pipeline.Prober, error) {
	return audio.NewProber(ffmpegPath)
}

func (defaultAudioFactory) NewScanner(ffmpegPath string, opts ...audio.ScannerOption) (pipeline.Scanner, error) {
	return audio.NewScanner(ffmpegPath, opts...)
}

func (defaultAudioFactory) NewExtractor(ffmpegPath string, opts ...audio.ExtractorOption) (pipeline.Extractor, error) {
	return audio.NewExtractor(ffmpegPath, opts...)
}

func (defaultAudioFactory) NewTruncator(ffmpegPath string) (Truncator, error) {
	return audio.NewTruncator(ffmpegPath)
}

// defaultTranscriberFactory implements TranscriberFactory.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewWhisper(binPath string, profile transcribe.Profile) (transcribe.Transcriber, error) {
	return transcribe.NewWhisperTranscriber(binPath, profile)
}

func (defaultTranscriberFactory) NewOpenAI(apiKey string, profile transcribe.Profile) (transcribe.Transcriber, error) {
	client := openai.NewClient(apiKey)
	return transcribe.NewOpenAITranscriber(client, profile), nil
}

// Compile-time interface verification.
var (
	_ FFmpegResolver     = (*defaultFFmpegResolver)(nil)
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ AudioFactory       = (*defaultAudioFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
)
