package chapter

import "time"

// Aggregator accumulates confirmed matches into an ordered chapter list.
//
// Anchors must be fed in the order their silence intervals were processed,
// which is chronological. The aggregator enforces the output invariant:
// timestamps are strictly increasing and duplicate-free. When two anchors
// carry the same timestamp (pathological zero-length gaps), the first wins.
type Aggregator struct {
	marks []Mark
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add records a chapter mark for the given anchor if token is non-empty.
// An empty token means the anchor's snippet did not match; it is ignored.
// Returns true if a mark was appended.
func (a *Aggregator) Add(anchor time.Duration, token, text string) bool {
	if token == "" {
		return false
	}
	if len(a.marks) > 0 && anchor <= a.marks[len(a.marks)-1].Timestamp {
		// Duplicate or out-of-order anchor; keep the first occurrence.
		return false
	}
	a.marks = append(a.marks, Mark{Timestamp: anchor, Text: text, Token: token})
	return true
}

// Marks returns the accumulated chapter list in chronological order.
// The returned slice is a copy; the aggregator can keep accumulating.
func (a *Aggregator) Marks() []Mark {
	out := make([]Mark, len(a.marks))
	copy(out, a.marks)
	return out
}

// Len returns the number of accumulated marks.
func (a *Aggregator) Len() int {
	return len(a.marks)
}
