package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// whisperResult mirrors the JSON file the whisper CLI writes next to
// each transcribed input.
type whisperResult struct {
	Segments []struct {
		Text string `json:"text"`
	} `json:"segments"`
	Language string `json:"language"`
}

// WhisperTranscriber runs a local faster-whisper CLI as a subprocess.
// The scratch directory holding JSON results lives until Close.
type WhisperTranscriber struct {
	binPath string
	profile Profile
	workDir string

	runner commandRunner
	files  fileAccessor
}

// Compile-time interface check.
var _ Transcriber = (*WhisperTranscriber)(nil)

// WhisperOption configures a WhisperTranscriber.
type WhisperOption func(*WhisperTranscriber)

// WithWhisperRunner overrides the subprocess runner (used in tests).
func WithWhisperRunner(r commandRunner) WhisperOption {
	return func(w *WhisperTranscriber) { w.runner = r }
}

// WithWhisperFiles overrides filesystem access (used in tests).
func WithWhisperFiles(f fileAccessor) WhisperOption {
	return func(w *WhisperTranscriber) { w.files = f }
}

// NewWhisperTranscriber builds a transcriber around the CLI at binPath.
// binPath must already be resolved (see cli provider wiring); the scratch
// directory for JSON results is created up front so the first snippet
// does not pay for setup.
func NewWhisperTranscriber(binPath string, profile Profile, opts ...WhisperOption) (*WhisperTranscriber, error) {
	if binPath == "" {
		return nil, ErrWhisperNotFound
	}

	w := &WhisperTranscriber{
		binPath: binPath,
		profile: profile.WithDefaults(),
		runner:  osCommandRunner{},
		files:   osFileAccessor{},
	}
	for _, opt := range opts {
		opt(w)
	}

	dir, err := osTempDirCreator{}.MkdirTemp("", "go-chapters-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create whisper scratch directory: %w", err)
	}
	w.workDir = dir
	return w, nil
}

// Transcribe runs the CLI against one snippet and reads back the JSON
// result file. The result file is removed after parsing; the snippet
// itself belongs to the extractor and is left alone.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	args := w.buildArgs(audioPath)

	out, err := w.runner.CombinedOutput(ctx, w.binPath, args)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: %v: %s", ErrTranscriptionFailed, err, truncateOutput(out))
	}

	resultPath := w.resultPath(audioPath)
	data, err := w.files.ReadFile(resultPath)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read result %s: %v", ErrTranscriptionFailed, resultPath, err)
	}
	defer func() { _ = w.files.Remove(resultPath) }()

	var parsed whisperResult
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Result{}, fmt.Errorf("%w: decode result: %v", ErrTranscriptionFailed, err)
	}

	var sb strings.Builder
	for _, seg := range parsed.Segments {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimSpace(seg.Text))
	}
	raw := strings.TrimSpace(sb.String())
	return Result{Raw: raw, Normalized: Normalize(raw)}, nil
}

// buildArgs assembles the CLI invocation for one snippet.
func (w *WhisperTranscriber) buildArgs(audioPath string) []string {
	p := w.profile
	args := []string{
		audioPath,
		"--model", p.Model,
		"--device", p.Device,
		"--compute_type", p.ComputeType,
		"--output_format", "json",
		"--output_dir", w.workDir,
		"--verbose", "False",
	}
	if p.ModelDir != "" {
		args = append(args, "--model_directory", p.ModelDir)
	}
	if p.Language != "" {
		args = append(args, "--language", p.Language)
	}
	if p.Prompt != "" {
		args = append(args, "--initial_prompt", p.Prompt)
	}
	return args
}

// resultPath is where the CLI writes the JSON for a given input file.
func (w *WhisperTranscriber) resultPath(audioPath string) string {
	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(w.workDir, stem+".json")
}

// Close removes the scratch directory.
func (w *WhisperTranscriber) Close() error {
	if w.workDir == "" {
		return nil
	}
	err := w.files.RemoveAll(w.workDir)
	w.workDir = ""
	return err
}

// truncateOutput keeps subprocess output readable in error messages.
func truncateOutput(out []byte) string {
	const limit = 500
	s := strings.TrimSpace(string(out))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
