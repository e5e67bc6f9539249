package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-chapters/internal/ffmpeg"
)

// DefaultTestRunLength is how much of the source a test run keeps.
// Thirty minutes covers the opening chapters of most books.
const DefaultTestRunLength = 30 * time.Minute

// Truncator produces shortened copies of a source file for quick
// parameter tuning before committing to a full multi-hour scan.
type Truncator struct {
	ffmpegPath string

	cmd     commandRunner
	statter fileStatter
}

// TruncatorOption configures a Truncator.
type TruncatorOption func(*Truncator)

// WithTruncatorCommandRunner sets the command runner (for testing).
func WithTruncatorCommandRunner(r commandRunner) TruncatorOption {
	return func(t *Truncator) { t.cmd = r }
}

// WithTruncatorFileStatter sets the file statter (for testing).
func WithTruncatorFileStatter(s fileStatter) TruncatorOption {
	return func(t *Truncator) { t.statter = s }
}

// NewTruncator creates a Truncator using the given FFmpeg binary.
func NewTruncator(ffmpegPath string, opts ...TruncatorOption) (*Truncator, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	t := &Truncator{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
		statter:    osFileStatter{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// TestRunPath returns where the truncated copy of sourcePath lives.
// "book.mp3" becomes "book_testrun.mp3" next to the source.
func TestRunPath(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	base := strings.TrimSuffix(sourcePath, ext)
	return base + "_testrun" + ext
}

// Create produces a truncated copy of sourcePath and returns its path.
// An existing copy is reused unless force is set; reused reports which
// happened. Stream copy keeps this nearly instant even on large files.
func (t *Truncator) Create(ctx context.Context, sourcePath string, length time.Duration, force bool) (path string, reused bool, err error) {
	if _, err := t.statter.Stat(sourcePath); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}

	dest := TestRunPath(sourcePath)
	if !force {
		if _, err := t.statter.Stat(dest); err == nil {
			return dest, true, nil
		} else if !os.IsNotExist(err) {
			return "", false, fmt.Errorf("%w: %v", ErrTruncationFailed, err)
		}
	}

	if length <= 0 {
		length = DefaultTestRunLength
	}

	args := []string{
		"-y",
		"-i", sourcePath,
		"-t", formatFFmpegTime(length),
		"-c", "copy",
		dest,
	}

	output, err := t.cmd.CombinedOutput(ctx, t.ffmpegPath, args)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, fmt.Errorf("%w: %v\nOutput: %s", ErrTruncationFailed, err, string(output))
	}

	return dest, false, nil
}
