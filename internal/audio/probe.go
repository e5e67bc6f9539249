// Package audio drives FFmpeg: probing source duration, streaming
// silence detection, snippet extraction, and test-run truncation.
package audio

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/alnah/go-chapters/internal/ffmpeg"
)

// Prober determines the duration of an audio file.
type Prober struct {
	ffmpegPath string
	cmd        commandRunner
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProberCommandRunner sets the command runner (for testing).
func WithProberCommandRunner(r commandRunner) ProberOption {
	return func(p *Prober) { p.cmd = r }
}

// NewProber creates a Prober using the given FFmpeg binary.
func NewProber(ffmpegPath string, opts ...ProberOption) (*Prober, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	p := &Prober{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Duration returns the duration of an audio file.
// Uses ffmpeg rather than ffprobe, which may not be installed alongside.
func (p *Prober) Duration(ctx context.Context, audioPath string) (time.Duration, error) {
	// The -i flag with a null sink prints file info including duration.
	args := []string{
		"-i", audioPath,
		"-f", "null", "-",
	}
	output, err := p.cmd.CombinedOutput(ctx, p.ffmpegPath, args)
	if err != nil {
		// FFmpeg returns non-zero even when it successfully reads file info,
		// so we try to parse the output anyway.
		if len(output) == 0 {
			return 0, fmt.Errorf("%w: %v", ErrNoDuration, err)
		}
	}

	return parseDurationFromFFmpegOutput(string(output))
}

// parseDurationFromFFmpegOutput extracts duration from FFmpeg stderr.
// Looks for: "Duration: HH:MM:SS.ms" or "time=HH:MM:SS.ms"
func parseDurationFromFFmpegOutput(output string) (time.Duration, error) {
	// Pattern: Duration: 00:05:23.45
	durationRe := regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	if matches := durationRe.FindStringSubmatch(output); matches != nil {
		return parseTimeComponents(matches[1], matches[2], matches[3], matches[4])
	}

	// Fallback pattern: time=00:05:23.45 (from progress output)
	timeRe := regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
	// Find all matches and use the last one (final time).
	allMatches := timeRe.FindAllStringSubmatch(output, -1)
	if len(allMatches) > 0 {
		matches := allMatches[len(allMatches)-1]
		return parseTimeComponents(matches[1], matches[2], matches[3], matches[4])
	}

	return 0, ErrNoDuration
}

// parseTimeComponents converts HH:MM:SS.ms strings to Duration.
func parseTimeComponents(hours, minutes, seconds, fractional string) (time.Duration, error) {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)

	// Normalize fractional part to milliseconds.
	// Input may be 1-6+ digits (e.g., ".4", ".45", ".456", ".456789").
	frac, _ := strconv.Atoi(fractional)
	ms := frac
	switch n := len(fractional); {
	case n == 1:
		ms = frac * 100
	case n == 2:
		ms = frac * 10
	case n == 3:
		// Already milliseconds.
	case n > 3:
		// Truncate excess precision by dividing.
		for i := n; i > 3; i-- {
			ms /= 10
		}
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// formatFFmpegTime formats a duration for FFmpeg -ss/-t/-to arguments.
func formatFFmpegTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}
