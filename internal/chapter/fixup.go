package chapter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// headingRe recognizes transcribed section headings like
// "Chapter 1. The Beginning" or "Part Two, In Which".
// Group 1 = prefix, 2 = number (digits or small word), 3 = title remainder.
var headingRe = regexp.MustCompile(
	`^(?i)(Chapter|Section|Part)\s+(\d+|One|Two|Three|Four|Five|Six|Seven|Eight|Nine|Ten)[.,]?\s*(.*?)[.,]?$`)

// TitleCase capitalizes the first letter of each space-separated word.
// Transcripts carry accented names, so the first rune is decoded rather
// than byte-sliced.
func TitleCase(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Fixup normalizes a transcribed heading for report output.
// The text is title-cased, then headings of the form
// "Chapter 1. Title" or "Part Two, Title" are standardized to
// "Chapter 1: Title". Non-heading text just loses trailing punctuation.
func Fixup(text string) string {
	text = TitleCase(text)

	if m := headingRe.FindStringSubmatch(text); m != nil {
		prefix, number, title := m[1], m[2], m[3]
		title = strings.TrimRight(title, ".,")
		if title == "" {
			return prefix + " " + number
		}
		return prefix + " " + number + ": " + title
	}
	return strings.TrimRight(text, ".,")
}
