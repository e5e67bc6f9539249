package match

import "strconv"

// English cardinal word tables. Hyphenated compounds like "thirty-two"
// arrive as two words because normalization splits on hyphens.
var (
	unitWords = map[string]int{
		"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
		"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	}
	teenWords = map[string]int{
		"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13,
		"fourteen": 14, "fifteen": 15, "sixteen": 16, "seventeen": 17,
		"eighteen": 18, "nineteen": 19,
	}
	tensWords = map[string]int{
		"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
		"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	}
)

// parseNumber recognizes a cardinal number starting at words[start].
// It returns the value, the number of words consumed, and whether a
// number was recognized.
//
// Accepted forms: digit tokens ("5", "132"), units/teens/tens words,
// tens+unit compounds ("thirty two"), and, only when allowHundreds is
// set, hundred compounds ("one hundred", "a hundred", "one hundred
// thirty two"). Without allowHundreds a word followed by "hundred" is
// declined entirely rather than misread as its unit value.
func parseNumber(words []string, start int, allowHundreds bool) (value, consumed int, ok bool) {
	if start >= len(words) {
		return 0, 0, false
	}
	w := words[start]

	// Digit form.
	if n, err := strconv.Atoi(w); err == nil && n >= 0 {
		return n, 1, true
	}

	next := ""
	if start+1 < len(words) {
		next = words[start+1]
	}

	// Hundred compounds: "<unit> hundred [remainder]", "a hundred [remainder]".
	if next == "hundred" {
		if !allowHundreds {
			return 0, 0, false
		}
		base := 0
		if w == "a" {
			base = 100
		} else if u, isUnit := unitWords[w]; isUnit && u > 0 {
			base = u * 100
		} else {
			return 0, 0, false
		}
		rem, remConsumed := parseBelowHundred(words, start+2)
		return base + rem, 2 + remConsumed, true
	}

	if v, n := parseBelowHundred(words, start); n > 0 {
		return v, n, true
	}
	return 0, 0, false
}

// parseBelowHundred recognizes a 0-99 word form at words[start].
// Returns (0, 0) when no number word is present.
func parseBelowHundred(words []string, start int) (value, consumed int) {
	if start >= len(words) {
		return 0, 0
	}
	w := words[start]

	if v, ok := unitWords[w]; ok {
		return v, 1
	}
	if v, ok := teenWords[w]; ok {
		return v, 1
	}
	if v, ok := tensWords[w]; ok {
		if start+1 < len(words) {
			if u, isUnit := unitWords[words[start+1]]; isUnit && u > 0 {
				return v + u, 2
			}
		}
		return v, 1
	}
	return 0, 0
}
