package audio

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/alnah/go-chapters/internal/chapter"
	"github.com/alnah/go-chapters/internal/ffmpeg"
)

// Default silence detection parameters.
const (
	// DefaultSilenceThresholdDB is the silence detection threshold.
	// -30dB suits audiobook narration with typical mastering noise floors.
	DefaultSilenceThresholdDB = -30.0

	// DefaultMinSilence is the minimum gap length reported as silence.
	// Chapter breaks in audiobooks pause for several seconds; 3s skips
	// ordinary sentence pauses.
	DefaultMinSilence = 3 * time.Second
)

// Progress reports scan position. Derived marks estimates computed from
// the latest silence timestamp instead of FFmpeg's own progress line,
// which stalls on some inputs.
type Progress struct {
	Position time.Duration
	Fraction float64 // 0..1; zero when total duration is unknown.
	Derived  bool
}

// ProgressFunc receives scan progress updates. May be nil.
type ProgressFunc func(Progress)

// Scanner runs FFmpeg silencedetect over a source file and collects
// silence intervals as they are reported.
type Scanner struct {
	ffmpegPath  string
	thresholdDB float64
	minSilence  time.Duration
	progress    ProgressFunc

	streamer lineStreamer
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithThresholdDB sets the silence detection threshold in dB.
// Lower values (more negative) require quieter audio to count as silence.
func WithThresholdDB(db float64) ScannerOption {
	return func(s *Scanner) { s.thresholdDB = db }
}

// WithMinSilence sets the minimum silence duration to detect.
func WithMinSilence(d time.Duration) ScannerOption {
	return func(s *Scanner) { s.minSilence = d }
}

// WithProgress sets a progress callback.
func WithProgress(fn ProgressFunc) ScannerOption {
	return func(s *Scanner) { s.progress = fn }
}

// WithLineStreamer sets the process streamer (for testing).
func WithLineStreamer(ls lineStreamer) ScannerOption {
	return func(s *Scanner) { s.streamer = ls }
}

// NewScanner creates a Scanner with the given options.
func NewScanner(ffmpegPath string, opts ...ScannerOption) (*Scanner, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}
	s := &Scanner{
		ffmpegPath:  ffmpegPath,
		thresholdDB: DefaultSilenceThresholdDB,
		minSilence:  DefaultMinSilence,
		streamer:    osLineStreamer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Regex patterns for silencedetect output - tolerant of format variations.
// FFmpeg emits lines like:
//
//	[silencedetect @ 0x...] silence_start: 42.123
//	[silencedetect @ 0x...] silence_end: 43.456 | silence_duration: 1.333
//	size=N/A time=00:05:23.45 bitrate=N/A speed=...
var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*([\d.]+)`)
	progressTimeRe = regexp.MustCompile(`time=(\d+):(\d+):(\d+)\.(\d+)`)
)

// Scan runs silence detection over the whole file and returns detected
// intervals ordered by position. totalDuration is used for progress
// estimation; pass zero when unknown.
//
// On process failure the intervals collected so far are returned along
// with the error, so callers can decide whether partial results are
// worth keeping.
func (s *Scanner) Scan(ctx context.Context, audioPath string, totalDuration time.Duration) ([]chapter.Interval, error) {
	args := []string{
		"-i", audioPath,
		"-af", fmt.Sprintf("silencedetect=noise=%gdB:d=%.2f",
			s.thresholdDB,
			s.minSilence.Seconds()),
		"-f", "null",
		"-",
	}

	var (
		intervals    []chapter.Interval
		currentStart time.Duration
		hasStart     bool
		lastNative   time.Duration
	)

	onLine := func(line string) {
		if matches := silenceStartRe.FindStringSubmatch(line); matches != nil {
			seconds, err := strconv.ParseFloat(matches[1], 64)
			if err == nil {
				if seconds < 0 {
					// silencedetect reports small negative starts for
					// leading silence.
					seconds = 0
				}
				currentStart = time.Duration(seconds * float64(time.Second))
				hasStart = true
			}
			return
		}

		if matches := silenceEndRe.FindStringSubmatch(line); matches != nil && hasStart {
			seconds, err := strconv.ParseFloat(matches[1], 64)
			if err == nil {
				iv := chapter.Interval{
					Start: currentStart,
					End:   time.Duration(seconds * float64(time.Second)),
				}
				hasStart = false
				if iv.Valid() {
					intervals = append(intervals, iv)
					// Native progress stalls on some containers; when it
					// lags behind the filter, estimate from the silence
					// position instead.
					if iv.End > lastNative {
						s.report(Progress{Position: iv.End, Fraction: fraction(iv.End, totalDuration), Derived: true})
					}
				}
			}
			return
		}

		if matches := progressTimeRe.FindStringSubmatch(line); matches != nil {
			pos, err := parseTimeComponents(matches[1], matches[2], matches[3], matches[4])
			if err == nil && pos > lastNative {
				lastNative = pos
				s.report(Progress{Position: pos, Fraction: fraction(pos, totalDuration)})
			}
		}
	}

	if err := s.streamer.Stream(ctx, s.ffmpegPath, args, onLine); err != nil {
		if ctx.Err() != nil {
			return intervals, ctx.Err()
		}
		return intervals, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	s.report(Progress{Position: totalDuration, Fraction: fraction(totalDuration, totalDuration)})
	return intervals, nil
}

// report invokes the progress callback when one is set.
func (s *Scanner) report(p Progress) {
	if s.progress != nil {
		s.progress(p)
	}
}

// fraction computes pos/total clamped to 0..1; zero when total unknown.
func fraction(pos, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	f := float64(pos) / float64(total)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}
