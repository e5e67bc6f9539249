package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alnah/go-chapters/internal/audio"
	"github.com/alnah/go-chapters/internal/chapter"
	"github.com/alnah/go-chapters/internal/match"
	"github.com/alnah/go-chapters/internal/pipeline"
	"github.com/alnah/go-chapters/internal/transcribe"
)

// =============================================================================
// Mocks
// =============================================================================

type mockProber struct {
	duration time.Duration
	err      error
}

func (m *mockProber) Duration(_ context.Context, _ string) (time.Duration, error) {
	return m.duration, m.err
}

type mockScanner struct {
	intervals []chapter.Interval
	err       error
}

func (m *mockScanner) Scan(_ context.Context, _ string, _ time.Duration) ([]chapter.Interval, error) {
	return m.intervals, m.err
}

type mockExtractor struct {
	failAt     map[int]error // index -> error
	extracted  []int
	removed    []string
	cleanedUp  bool
	cancelAtIx int // cancel the run's context at this index; -1 disables
	cancel     context.CancelFunc
}

func (m *mockExtractor) Extract(_ context.Context, _ string, index int, silenceEnd, _ time.Duration) (audio.Snippet, error) {
	if m.cancel != nil && index == m.cancelAtIx {
		m.cancel()
	}
	if err := m.failAt[index]; err != nil {
		return audio.Snippet{}, err
	}
	m.extracted = append(m.extracted, index)
	return audio.Snippet{
		Index:  index,
		Anchor: silenceEnd,
		Length: 5 * time.Second,
		Path:   "/scratch/snippet.wav",
	}, nil
}

func (m *mockExtractor) Remove(s audio.Snippet) error {
	m.removed = append(m.removed, s.Path)
	return nil
}

func (m *mockExtractor) Cleanup() error {
	m.cleanedUp = true
	return nil
}

type mockTranscriber struct {
	texts  []string // one per call, last repeats
	failAt map[int]error
	calls  int
	closed bool
}

func (m *mockTranscriber) Transcribe(ctx context.Context, _ string) (transcribe.Result, error) {
	idx := m.calls
	m.calls++
	if err := ctx.Err(); err != nil {
		return transcribe.Result{}, err
	}
	if err := m.failAt[idx]; err != nil {
		return transcribe.Result{}, err
	}
	i := idx
	if i >= len(m.texts) {
		i = len(m.texts) - 1
	}
	raw := m.texts[i]
	return transcribe.Result{Raw: raw, Normalized: transcribe.Normalize(raw)}, nil
}

func (m *mockTranscriber) Close() error {
	m.closed = true
	return nil
}

func newKeywordMatcher(t *testing.T, phrases ...string) pipeline.Matcher {
	t.Helper()
	m, err := match.New(match.Config{
		Mode:          match.ModeKeywords,
		Phrases:       phrases,
		FirstWordOnly: true,
	})
	if err != nil {
		t.Fatalf("match.New() error = %v", err)
	}
	return m
}

func silencesAt(ends ...time.Duration) []chapter.Interval {
	ivs := make([]chapter.Interval, len(ends))
	for i, end := range ends {
		ivs[i] = chapter.Interval{Start: end - 3*time.Second, End: end}
	}
	return ivs
}

// =============================================================================
// Runner
// =============================================================================

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	ext := &mockExtractor{cancelAtIx: -1}
	deps := pipeline.Deps{
		Prober:    &mockProber{duration: time.Hour},
		Scanner:   &mockScanner{intervals: silencesAt(2*time.Minute, 20*time.Minute, 40*time.Minute)},
		Extractor: ext,
		Transcriber: &mockTranscriber{texts: []string{
			"Chapter One. It begins.",
			"and the rain kept falling",
			"Chapter Two. The storm.",
		}},
		Matcher: newKeywordMatcher(t, "chapter"),
	}

	r := pipeline.NewRunner(deps)
	res, err := r.Run(context.Background(), "book.mp3")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.State != pipeline.StateFinalized {
		t.Errorf("State = %v, want finalized", res.State)
	}
	if res.RunID == "" {
		t.Error("RunID empty")
	}
	if res.Duration != time.Hour {
		t.Errorf("Duration = %v", res.Duration)
	}
	if len(res.Silences) != 3 {
		t.Errorf("Silences = %d, want 3", len(res.Silences))
	}
	if len(res.Marks) != 2 {
		t.Fatalf("Marks = %d, want 2 (middle snippet has no heading): %v", len(res.Marks), res.Marks)
	}
	// Marks are stamped at the matching silence ends.
	if res.Marks[0].Timestamp != 2*time.Minute {
		t.Errorf("first mark at %v", res.Marks[0].Timestamp)
	}
	if res.Marks[1].Timestamp != 40*time.Minute {
		t.Errorf("second mark at %v", res.Marks[1].Timestamp)
	}
	if res.Marks[0].Text != "Chapter One. It begins." {
		t.Errorf("mark text = %q", res.Marks[0].Text)
	}
	if res.Skipped != 0 {
		t.Errorf("Skipped = %d", res.Skipped)
	}
	if !ext.cleanedUp {
		t.Error("extractor scratch not cleaned up")
	}
	if len(ext.removed) != 3 {
		t.Errorf("removed %d snippets, want 3", len(ext.removed))
	}
}

// Both reports describe the same positions: every mark timestamp must be
// one of the silence ends, so a reader can line the chapter list up
// against the silence list.
func TestRunner_Run_MarksAreSilenceEnds(t *testing.T) {
	t.Parallel()

	intervals := []chapter.Interval{
		{Start: 117 * time.Second, End: 2 * time.Minute},
		{Start: 10 * time.Minute, End: 10*time.Minute + 4*time.Second},
	}
	deps := pipeline.Deps{
		Prober:      &mockProber{duration: time.Hour},
		Scanner:     &mockScanner{intervals: intervals},
		Extractor:   &mockExtractor{cancelAtIx: -1},
		Transcriber: &mockTranscriber{texts: []string{"Chapter One.", "Chapter Two."}},
		Matcher:     newKeywordMatcher(t, "chapter"),
	}

	res, err := pipeline.NewRunner(deps).Run(context.Background(), "book.mp3")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	ends := make(map[time.Duration]bool, len(res.Silences))
	for _, iv := range res.Silences {
		ends[iv.End] = true
	}
	for _, m := range res.Marks {
		if !ends[m.Timestamp] {
			t.Errorf("mark at %v is not a silence end (silences: %v)", m.Timestamp, res.Silences)
		}
	}
	if len(res.Marks) != 2 || res.Marks[0].Timestamp != 2*time.Minute {
		t.Errorf("Marks = %v, want first at 2m0s", res.Marks)
	}
}

func TestRunner_Run_ZeroSilences(t *testing.T) {
	t.Parallel()

	ext := &mockExtractor{cancelAtIx: -1}
	deps := pipeline.Deps{
		Prober:      &mockProber{duration: time.Hour},
		Scanner:     &mockScanner{},
		Extractor:   ext,
		Transcriber: &mockTranscriber{texts: []string{""}},
		Matcher:     newKeywordMatcher(t, "chapter"),
	}

	res, err := pipeline.NewRunner(deps).Run(context.Background(), "book.mp3")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.State != pipeline.StateFinalized {
		t.Errorf("State = %v, want finalized", res.State)
	}
	if len(res.Marks) != 0 || len(res.Silences) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
	if len(ext.extracted) != 0 {
		t.Errorf("extracted %v with zero silences", ext.extracted)
	}
	if !ext.cleanedUp {
		t.Error("cleanup skipped")
	}
}

func TestRunner_Run_ProbeFailureIsFatal(t *testing.T) {
	t.Parallel()

	deps := pipeline.Deps{
		Prober:      &mockProber{err: audio.ErrNoDuration},
		Scanner:     &mockScanner{},
		Extractor:   &mockExtractor{cancelAtIx: -1},
		Transcriber: &mockTranscriber{texts: []string{""}},
		Matcher:     newKeywordMatcher(t, "chapter"),
	}

	res, err := pipeline.NewRunner(deps).Run(context.Background(), "book.mp3")
	if !errors.Is(err, audio.ErrNoDuration) {
		t.Fatalf("Run() error = %v, want ErrNoDuration", err)
	}
	if res.State != pipeline.StateFailed {
		t.Errorf("State = %v, want failed", res.State)
	}
}

func TestRunner_Run_ScanFailurePreservesPartials(t *testing.T) {
	t.Parallel()

	partial := silencesAt(5 * time.Minute)
	deps := pipeline.Deps{
		Prober:      &mockProber{duration: time.Hour},
		Scanner:     &mockScanner{intervals: partial, err: audio.ErrScanFailed},
		Extractor:   &mockExtractor{cancelAtIx: -1},
		Transcriber: &mockTranscriber{texts: []string{""}},
		Matcher:     newKeywordMatcher(t, "chapter"),
	}

	res, err := pipeline.NewRunner(deps).Run(context.Background(), "book.mp3")
	if !errors.Is(err, audio.ErrScanFailed) {
		t.Fatalf("Run() error = %v, want ErrScanFailed", err)
	}
	if res.State != pipeline.StateFailed {
		t.Errorf("State = %v, want failed", res.State)
	}
	if len(res.Silences) != 1 {
		t.Errorf("partial silences lost: %v", res.Silences)
	}
}

func TestRunner_Run_RecoverableFailuresSkipSilence(t *testing.T) {
	t.Parallel()

	t.Run("extraction failure", func(t *testing.T) {
		t.Parallel()

		ext := &mockExtractor{
			cancelAtIx: -1,
			failAt:     map[int]error{0: audio.ErrExtractionFailed},
		}
		deps := pipeline.Deps{
			Prober:      &mockProber{duration: time.Hour},
			Scanner:     &mockScanner{intervals: silencesAt(2*time.Minute, 20*time.Minute)},
			Extractor:   ext,
			Transcriber: &mockTranscriber{texts: []string{"Chapter Nine."}},
			Matcher:     newKeywordMatcher(t, "chapter"),
		}

		res, err := pipeline.NewRunner(deps).Run(context.Background(), "book.mp3")
		if err != nil {
			t.Fatalf("Run() error = %v (recoverable errors must not fail the run)", err)
		}
		if res.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", res.Skipped)
		}
		if len(res.Marks) != 1 {
			t.Errorf("Marks = %v, want one from the surviving silence", res.Marks)
		}
	})

	t.Run("transcription failure", func(t *testing.T) {
		t.Parallel()

		deps := pipeline.Deps{
			Prober:    &mockProber{duration: time.Hour},
			Scanner:   &mockScanner{intervals: silencesAt(2*time.Minute, 20*time.Minute)},
			Extractor: &mockExtractor{cancelAtIx: -1},
			Transcriber: &mockTranscriber{
				texts:  []string{"Chapter Nine.", "Chapter Ten."},
				failAt: map[int]error{0: transcribe.ErrTranscriptionFailed},
			},
			Matcher: newKeywordMatcher(t, "chapter"),
		}

		res, err := pipeline.NewRunner(deps).Run(context.Background(), "book.mp3")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if res.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", res.Skipped)
		}
		if len(res.Marks) != 1 {
			t.Errorf("Marks = %v", res.Marks)
		}
		if res.State != pipeline.StateFinalized {
			t.Errorf("State = %v, want finalized", res.State)
		}
	})
}

func TestRunner_Run_CancellationPreservesMarks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	ext := &mockExtractor{cancelAtIx: 1, cancel: cancel}

	deps := pipeline.Deps{
		Prober:      &mockProber{duration: time.Hour},
		Scanner:     &mockScanner{intervals: silencesAt(2*time.Minute, 20*time.Minute, 40*time.Minute)},
		Extractor:   ext,
		Transcriber: &mockTranscriber{texts: []string{"Chapter One."}},
		Matcher:     newKeywordMatcher(t, "chapter"),
	}

	res, err := pipeline.NewRunner(deps).Run(ctx, "book.mp3")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if res.State != pipeline.StateFailed {
		t.Errorf("State = %v, want failed", res.State)
	}
	if len(res.Marks) != 1 {
		t.Errorf("marks collected before cancel lost: %v", res.Marks)
	}
	if !ext.cleanedUp {
		t.Error("cleanup skipped on cancel")
	}
}

func TestRunner_Run_Deterministic(t *testing.T) {
	t.Parallel()

	run := func() []chapter.Mark {
		deps := pipeline.Deps{
			Prober:      &mockProber{duration: time.Hour},
			Scanner:     &mockScanner{intervals: silencesAt(2*time.Minute, 20*time.Minute)},
			Extractor:   &mockExtractor{cancelAtIx: -1},
			Transcriber: &mockTranscriber{texts: []string{"Chapter One.", "Chapter Two."}},
			Matcher:     newKeywordMatcher(t, "chapter"),
		}
		res, err := pipeline.NewRunner(deps).Run(context.Background(), "book.mp3")
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		return res.Marks
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("mark %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state pipeline.State
		want  string
	}{
		{pipeline.StateInit, "init"},
		{pipeline.StateScanning, "scanning"},
		{pipeline.StateProcessing, "processing"},
		{pipeline.StateFinalized, "finalized"},
		{pipeline.StateFailed, "failed"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State.String() = %q, want %q", got, tt.want)
		}
	}
}
