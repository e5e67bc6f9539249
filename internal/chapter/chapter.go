package chapter

import (
	"fmt"
	"time"

	"github.com/alnah/go-chapters/internal/format"
)

// Interval is a detected span of near-silence in the source recording.
// Intervals are produced by the silence scanner in non-decreasing Start
// order and are immutable once emitted.
type Interval struct {
	Start time.Duration // Offset of the silence onset from the recording origin.
	End   time.Duration // Offset where audio resumes.
}

// Valid reports whether the interval is well-formed (End > Start, Start >= 0).
func (i Interval) Valid() bool {
	return i.Start >= 0 && i.End > i.Start
}

// Duration returns the length of the silence.
func (i Interval) Duration() time.Duration {
	return i.End - i.Start
}

// String returns a human-readable representation for logging.
func (i Interval) String() string {
	return fmt.Sprintf("silence %s-%s", format.Timestamp(i.Start), format.Timestamp(i.End))
}

// Mark is a confirmed chapter boundary.
// Marks are uniquely identified by Timestamp; the Aggregator guarantees
// the final list is strictly increasing and duplicate-free.
type Mark struct {
	Timestamp time.Duration // End of the silence interval that triggered the match.
	Text      string        // Transcribed snippet text (possibly fixed up); may be empty.
	Token     string        // The matched word sequence, e.g. "chapter" or "thirty two".
}

// String returns the report line form: "Text<TAB>HH:MM:SS".
func (m Mark) String() string {
	return fmt.Sprintf("%s\t%s", m.Text, format.Timestamp(m.Timestamp))
}
