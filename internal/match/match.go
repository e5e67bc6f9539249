// Package match decides whether a transcribed snippet signals a new
// section. Input text must already be normalized: lower-case, punctuation
// stripped, single spaces (see transcribe.Normalize).
package match

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the matching grammar for a run.
type Mode int

const (
	// ModeKeywords matches configured keyword phrases.
	ModeKeywords Mode = iota
	// ModeNumbers matches spoken or digit cardinal numbers.
	// Takes priority over keyword phrases when both are configured.
	ModeNumbers
)

// String returns the mode name for logs and errors.
func (m Mode) String() string {
	switch m {
	case ModeKeywords:
		return "keywords"
	case ModeNumbers:
		return "numbers"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Config is the immutable matching configuration resolved once per run.
type Config struct {
	Mode          Mode
	Phrases       []string // Keyword phrases in priority order; ignored in ModeNumbers.
	FirstWordOnly bool     // Require the match to start at the text's first word.
}

// Result describes a confirmed match.
type Result struct {
	Token  string // Matched word sequence as it appeared in the text.
	Phrase string // Configured phrase that matched (ModeKeywords only).
	Number int    // Recognized value (ModeNumbers only).
}

// ErrNoPhrases indicates keyword mode was selected without any phrases.
var ErrNoPhrases = errors.New("keyword mode requires at least one phrase")

// Matcher evaluates normalized text against one matching mode.
// Safe for reuse across snippets; holds no per-snippet state.
type Matcher struct {
	mode          Mode
	phrases       [][]string // Phrase word sequences, normalized.
	raw           []string   // Original phrase strings, same order.
	firstWordOnly bool
}

// New builds a Matcher from config. Phrases are case-folded and
// whitespace-normalized here so Evaluate can compare words directly.
// Empty phrases are dropped; keyword mode with no usable phrase is an error.
func New(cfg Config) (*Matcher, error) {
	m := &Matcher{mode: cfg.Mode, firstWordOnly: cfg.FirstWordOnly}

	if cfg.Mode == ModeNumbers {
		return m, nil
	}

	for _, p := range cfg.Phrases {
		words := strings.Fields(strings.ToLower(p))
		if len(words) == 0 {
			continue
		}
		m.phrases = append(m.phrases, words)
		m.raw = append(m.raw, p)
	}
	if len(m.phrases) == 0 {
		return nil, ErrNoPhrases
	}
	return m, nil
}

// Evaluate tests normalized text against the configured grammar.
// No match is the expected outcome for most snippets, not an error.
func (m *Matcher) Evaluate(text string) (Result, bool) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return Result{}, false
	}

	if m.mode == ModeNumbers {
		return m.evaluateNumber(words)
	}
	return m.evaluateKeywords(words)
}

// evaluateKeywords tries phrases in configured order; the first phrase
// that matches wins regardless of its position in the text.
func (m *Matcher) evaluateKeywords(words []string) (Result, bool) {
	for i, phrase := range m.phrases {
		if pos, ok := findPhrase(words, phrase, m.firstWordOnly); ok {
			return Result{
				Token:  strings.Join(words[pos:pos+len(phrase)], " "),
				Phrase: m.raw[i],
			}, true
		}
	}
	return Result{}, false
}

// findPhrase locates phrase as a contiguous word sequence in words.
// With firstWordOnly the phrase must start at word zero.
func findPhrase(words, phrase []string, firstWordOnly bool) (int, bool) {
	limit := len(words) - len(phrase)
	if limit < 0 {
		return 0, false
	}
	if firstWordOnly {
		limit = 0
	}
	for start := 0; start <= limit; start++ {
		matched := true
		for j, pw := range phrase {
			if words[start+j] != pw {
				matched = false
				break
			}
		}
		if matched {
			return start, true
		}
	}
	return 0, false
}

// evaluateNumber recognizes a cardinal number in the text.
// With firstWordOnly only the leading one or two words are considered,
// which caps word-form recognition at 0-99; without it the whole text
// is scanned and hundreds-magnitude compounds are permitted.
func (m *Matcher) evaluateNumber(words []string) (Result, bool) {
	if m.firstWordOnly {
		value, consumed, ok := parseNumber(words, 0, false)
		if !ok {
			return Result{}, false
		}
		return Result{
			Token:  strings.Join(words[:consumed], " "),
			Number: value,
		}, true
	}

	for start := range words {
		value, consumed, ok := parseNumber(words, start, true)
		if !ok {
			continue
		}
		return Result{
			Token:  strings.Join(words[start:start+consumed], " "),
			Number: value,
		}, true
	}
	return Result{}, false
}
