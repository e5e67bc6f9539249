package audio

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/alnah/go-chapters/internal/ffmpeg"
	"github.com/alnah/go-chapters/internal/format"
)

// Default extraction parameters.
const (
	// DefaultSnippetLength is how much audio to transcribe after each
	// silence. Long enough to capture a spoken heading, short enough to
	// keep per-snippet transcription fast.
	DefaultSnippetLength = 5 * time.Second

	// DefaultLeadIn is subtracted from the silence end so the very first
	// word is not clipped by the detector's edge.
	DefaultLeadIn = 1 * time.Second
)

// Snippet is a short clip extracted after a silence, ready for
// transcription. Paths live in the extractor's scratch directory until
// Cleanup.
type Snippet struct {
	Index  int           // Zero-based, ordered by position in the source.
	Anchor time.Duration // The silence end this clip follows; mark timestamp.
	Length time.Duration // Actual clip length after clamping.
	Path   string        // Absolute path to the 16kHz mono wav file.
}

// String returns a human-readable representation for logging.
func (s Snippet) String() string {
	return fmt.Sprintf("snippet %d @ %s", s.Index, format.Timestamp(s.Anchor))
}

// Extractor cuts snippets out of the source file, re-encoded to the
// 16kHz mono PCM layout speech models expect.
type Extractor struct {
	ffmpegPath string
	length     time.Duration
	leadIn     time.Duration
	workDir    string

	cmd     commandRunner
	tempDir tempDirCreator
	files   fileRemover
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithSnippetLength sets the clip length.
func WithSnippetLength(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d > 0 {
			e.length = d
		}
	}
}

// WithLeadIn sets how far before the silence end each clip starts.
func WithLeadIn(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		if d >= 0 {
			e.leadIn = d
		}
	}
}

// WithExtractorCommandRunner sets the command runner (for testing).
func WithExtractorCommandRunner(r commandRunner) ExtractorOption {
	return func(e *Extractor) { e.cmd = r }
}

// WithExtractorTempDir sets the temp directory creator (for testing).
func WithExtractorTempDir(t tempDirCreator) ExtractorOption {
	return func(e *Extractor) { e.tempDir = t }
}

// WithExtractorFileRemover sets the file remover (for testing).
func WithExtractorFileRemover(f fileRemover) ExtractorOption {
	return func(e *Extractor) { e.files = f }
}

// NewExtractor creates an Extractor. The scratch directory is created
// lazily on first use, so a run with zero silences touches nothing.
func NewExtractor(ffmpegPath string, opts ...ExtractorOption) (*Extractor, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	e := &Extractor{
		ffmpegPath: ffmpegPath,
		length:     DefaultSnippetLength,
		leadIn:     DefaultLeadIn,
		cmd:        osCommandRunner{},
		tempDir:    osTempDirCreator{},
		files:      osFileRemover{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract cuts the snippet following silenceEnd out of audioPath.
// The clip starts leadIn before the silence end (clamped to the start of
// the file) and is shortened when it would run past totalDuration. The
// returned Anchor is silenceEnd itself, so marks built from snippets line
// up with the silence ends in the interval list; leadIn only moves the
// clip start, never the anchor.
func (e *Extractor) Extract(ctx context.Context, audioPath string, index int, silenceEnd, totalDuration time.Duration) (Snippet, error) {
	start := silenceEnd - e.leadIn
	if start < 0 {
		start = 0
	}

	length := e.length
	if totalDuration > 0 {
		if start >= totalDuration {
			return Snippet{}, fmt.Errorf("%w: clip start %s beyond end of audio %s",
				ErrExtractionFailed, format.Timestamp(start), format.Timestamp(totalDuration))
		}
		if start+length > totalDuration {
			length = totalDuration - start
		}
	}

	if e.workDir == "" {
		dir, err := e.tempDir.MkdirTemp("", "go-chapters-*")
		if err != nil {
			return Snippet{}, fmt.Errorf("%w: create temp directory: %v", ErrExtractionFailed, err)
		}
		e.workDir = dir
	}

	snippetPath := filepath.Join(e.workDir, fmt.Sprintf("snippet_%04d.wav", index))

	// 16kHz mono PCM is what speech models want; re-encoding also
	// produces a valid clip even from slightly corrupted sources.
	args := []string{
		"-y",
		"-ss", formatFFmpegTime(start),
		"-i", audioPath,
		"-t", formatFFmpegTime(length),
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		snippetPath,
	}

	output, err := e.cmd.CombinedOutput(ctx, e.ffmpegPath, args)
	if err != nil {
		if ctx.Err() != nil {
			return Snippet{}, ctx.Err()
		}
		return Snippet{}, fmt.Errorf("%w: %v\nOutput: %s", ErrExtractionFailed, err, string(output))
	}

	return Snippet{
		Index:  index,
		Anchor: silenceEnd,
		Length: length,
		Path:   snippetPath,
	}, nil
}

// Remove deletes one snippet file after it has been transcribed.
func (e *Extractor) Remove(s Snippet) error {
	if s.Path == "" {
		return nil
	}
	return e.files.Remove(s.Path)
}

// Cleanup removes the scratch directory and everything in it.
// Safe to call when nothing was extracted.
func (e *Extractor) Cleanup() error {
	if e.workDir == "" {
		return nil
	}
	err := e.files.RemoveAll(e.workDir)
	e.workDir = ""
	return err
}
