// Package concept pulls candidate terms out of free text.
package concept

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxConcepts caps the number of concepts returned for one document.
	MaxConcepts = 15
	// minSentenceWords: sentences with this many words or fewer are skipped.
	minSentenceWords = 3
	// longWordLen: words longer than this qualify regardless of case.
	longWordLen = 7
)

// Extract returns candidate concepts in first-seen order, de-duplicated and
// capped at MaxConcepts. It is deterministic; empty input yields nil.
func Extract(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, sentence := range splitSentences(text) {
		words := strings.Fields(sentence)
		if len(words) <= minSentenceWords {
			continue
		}
		for _, w := range words {
			clean := stripPunct(w)
			if !qualifies(clean) {
				continue
			}
			if _, ok := seen[clean]; ok {
				continue
			}
			seen[clean] = struct{}{}
			out = append(out, clean)
		}
	}
	if len(out) > MaxConcepts {
		out = out[:MaxConcepts]
	}
	return out
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}

// stripPunct keeps word characters (letters, numbers, underscore) only.
// Combining marks are dropped, so decomposed "E\u0301lan" becomes "Elan".
func stripPunct(w string) string {
	return strings.Map(func(r rune) rune {
		if isWordRune(r) {
			return r
		}
		return -1
	}, w)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.In(r, unicode.L, unicode.N)
}

func qualifies(w string) bool {
	if w == "" {
		return false
	}
	return isTitle(w) || utf8.RuneCountInString(w) > longWordLen
}

// isTitle reports whether every cased run starts with an upper-case letter
// followed only by lower-case letters ("Python", "Rust2Go"), requiring at
// least one cased letter.
func isTitle(w string) bool {
	cased := false
	prevCased := false
	for _, r := range w {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}
