package tokenize

import (
	"unicode"

	"github.com/rivo/uniseg"
)

type segmentTokenizer struct{}

// Segment returns a tokenizer based on Unicode (UAX #29) word boundaries.
// Segments made only of spaces or punctuation are not counted, and
// contractions such as "can't" stay a single word.
func Segment() Tokenizer {
	return segmentTokenizer{}
}

func (segmentTokenizer) CountWords(text string) int {
	count := 0
	state := -1
	var word string
	for len(text) > 0 {
		word, text, state = uniseg.FirstWordInString(text, state)
		if isWordSegment(word) {
			count++
		}
	}
	return count
}

func isWordSegment(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
