package tokenize

import (
	"unicode"
	"unicode/utf8"
)

// wordClasses are the Unicode word characters: alphabetic code points
// (letters, letter-numbers and Other_Alphabetic such as circled letters),
// combining marks, decimal digits, connector punctuation and the join
// controls ZWNJ and ZWJ. Go's regexp \w is ASCII-only.
var wordClasses = []*unicode.RangeTable{
	unicode.L,
	unicode.Nl,
	unicode.Other_Alphabetic,
	unicode.M,
	unicode.Nd,
	unicode.Pc,
	unicode.Join_Control,
}

// isWordRune reports whether r is a word character.
func isWordRune(r rune) bool {
	return unicode.In(r, wordClasses...)
}

type wordTokenizer struct{}

// Word returns the default tokenizer. Hyphenated or punctuation-joined
// tokens count as separate words: "hello-world" is 2.
func Word() Tokenizer {
	return wordTokenizer{}
}

func (wordTokenizer) CountWords(text string) int {
	n := 0
	inWord := false
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		w := r != utf8.RuneError && isWordRune(r)
		if w && !inWord {
			n++
		}
		inWord = w
	}
	return n
}
