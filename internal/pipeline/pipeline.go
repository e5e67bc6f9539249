// Package pipeline orchestrates a chapter-detection run: probe the
// source, scan it for silences, then extract, transcribe, and match a
// snippet after each silence. Snippets are processed strictly in order
// so chapter marks come out sorted without a final sort.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alnah/go-chapters/internal/audio"
	"github.com/alnah/go-chapters/internal/chapter"
	"github.com/alnah/go-chapters/internal/format"
	"github.com/alnah/go-chapters/internal/match"
	"github.com/alnah/go-chapters/internal/transcribe"
)

// State tracks run progress. Transitions only move forward:
// Init -> Scanning -> Processing -> Finalized, with Failed reachable
// from any active state.
type State int

const (
	StateInit State = iota
	StateScanning
	StateProcessing
	StateFinalized
	StateFailed
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateScanning:
		return "scanning"
	case StateProcessing:
		return "processing"
	case StateFinalized:
		return "finalized"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Prober determines the source duration.
type Prober interface {
	Duration(ctx context.Context, audioPath string) (time.Duration, error)
}

// Scanner detects silence intervals across the whole source.
type Scanner interface {
	Scan(ctx context.Context, audioPath string, totalDuration time.Duration) ([]chapter.Interval, error)
}

// Extractor cuts one snippet per silence and owns the scratch space.
type Extractor interface {
	Extract(ctx context.Context, audioPath string, index int, silenceEnd, totalDuration time.Duration) (audio.Snippet, error)
	Remove(s audio.Snippet) error
	Cleanup() error
}

// Matcher decides whether normalized snippet text marks a chapter.
type Matcher interface {
	Evaluate(text string) (match.Result, bool)
}

// Deps are the run's collaborators. The transcriber is owned by the
// caller, who must Close it; everything else is used only during Run.
type Deps struct {
	Prober      Prober
	Scanner     Scanner
	Extractor   Extractor
	Transcriber transcribe.Transcriber
	Matcher     Matcher
}

// Result is what a run produced, including partial artifacts when the
// run failed or was canceled partway.
type Result struct {
	RunID    string
	Source   string
	Duration time.Duration
	State    State

	Silences []chapter.Interval
	Marks    []chapter.Mark

	Snippets    int // Snippets extracted.
	Transcribed int // Snippets successfully transcribed.
	Skipped     int // Silences skipped after recoverable errors.
}

// Runner executes one detection run. Not safe for concurrent use; make
// a new Runner per run.
type Runner struct {
	deps  Deps
	log   zerolog.Logger
	state State
	runID string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// NewRunner creates a Runner over the given collaborators.
func NewRunner(deps Deps, opts ...Option) *Runner {
	r := &Runner{
		deps:  deps,
		log:   zerolog.Nop(),
		state: StateInit,
		runID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.With().Str("run_id", r.runID).Logger()
	return r
}

// State returns the current run state.
func (r *Runner) State() State { return r.state }

// Run executes the full pipeline against audioPath. On failure the
// returned Result still carries everything collected up to that point;
// callers decide whether to persist partial artifacts.
func (r *Runner) Run(ctx context.Context, audioPath string) (*Result, error) {
	res := &Result{
		RunID:  r.runID,
		Source: audioPath,
	}
	defer func() {
		res.State = r.state
		if err := r.deps.Extractor.Cleanup(); err != nil {
			r.log.Warn().Err(err).Msg("scratch cleanup failed")
		}
	}()

	total, err := r.deps.Prober.Duration(ctx, audioPath)
	if err != nil {
		r.fail("probe", err)
		return res, fmt.Errorf("probe source: %w", err)
	}
	res.Duration = total
	r.log.Info().
		Str("source", audioPath).
		Str("duration", format.Timestamp(total)).
		Msg("run started")

	r.state = StateScanning
	silences, err := r.deps.Scanner.Scan(ctx, audioPath, total)
	res.Silences = silences
	if err != nil {
		r.fail("scan", err)
		return res, fmt.Errorf("scan source: %w", err)
	}
	r.log.Info().Int("silences", len(silences)).Msg("scan complete")

	r.state = StateProcessing
	agg := chapter.NewAggregator()
	for i, iv := range silences {
		if err := ctx.Err(); err != nil {
			res.Marks = agg.Marks()
			r.fail("canceled", err)
			return res, err
		}

		if err := r.processSilence(ctx, audioPath, i, iv, total, agg); err != nil {
			if ctx.Err() != nil {
				res.Marks = agg.Marks()
				r.fail("canceled", ctx.Err())
				return res, ctx.Err()
			}
			// Recoverable: this silence yields no mark, the run goes on.
			res.Skipped++
			r.log.Warn().Err(err).Int("silence", i).Msg("silence skipped")
			continue
		}
		res.Snippets++
		res.Transcribed++
	}
	res.Marks = agg.Marks()

	r.state = StateFinalized
	r.log.Info().
		Int("chapters", len(res.Marks)).
		Int("skipped", res.Skipped).
		Msg("run finalized")
	return res, nil
}

// processSilence handles one silence end to end: extract, transcribe,
// match, record. Extraction and transcription errors are recoverable
// and reported to the caller for counting.
func (r *Runner) processSilence(ctx context.Context, audioPath string, index int, iv chapter.Interval, total time.Duration, agg *chapter.Aggregator) error {
	snip, err := r.deps.Extractor.Extract(ctx, audioPath, index, iv.End, total)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	defer func() {
		if err := r.deps.Extractor.Remove(snip); err != nil {
			r.log.Debug().Err(err).Str("snippet", snip.Path).Msg("snippet removal failed")
		}
	}()

	tr, err := r.deps.Transcriber.Transcribe(ctx, snip.Path)
	if err != nil {
		return fmt.Errorf("transcribe: %w", err)
	}

	result, ok := r.deps.Matcher.Evaluate(tr.Normalized)
	if !ok {
		r.log.Debug().
			Int("silence", index).
			Str("text", tr.Normalized).
			Msg("no match")
		return nil
	}

	if agg.Add(snip.Anchor, result.Token, tr.Raw) {
		r.log.Info().
			Str("at", format.Timestamp(snip.Anchor)).
			Str("token", result.Token).
			Msg("chapter mark")
	} else {
		r.log.Debug().
			Str("at", format.Timestamp(snip.Anchor)).
			Msg("duplicate mark dropped")
	}
	return nil
}

// fail records the terminal failure state.
func (r *Runner) fail(stage string, err error) {
	r.state = StateFailed
	r.log.Error().Err(err).Str("stage", stage).Msg("run failed")
}
