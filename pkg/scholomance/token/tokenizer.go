// Package token splits editor text into word tokens with byte spans and
// gives every word a single normalized identity used for cache keys and
// dictionary lookups.
package token

import (
	"strings"
	"unicode/utf8"
)

// Token is one word of the input text.
type Token struct {
	Raw        string // Text exactly as it appears in the input
	Normalized string // Uppercase letters and straight apostrophes only
	Start      int    // Byte offset in the input (inclusive)
	End        int    // Byte offset in the input (exclusive)
}

// isLetter reports ASCII letters only. Accented letters are separators,
// matching Normalize which would strip them anyway.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’' || r == '‘'
}

func isWordRune(r rune) bool {
	return isLetter(r) || isApostrophe(r)
}

// Tokenize splits text on every rune that is not a letter or apostrophe.
// Runs without a letter (a lone apostrophe) are dropped.
func Tokenize(text string) []Token {
	if text == "" {
		return nil
	}

	var tokens []Token
	i := 0
	for i < len(text) {
		// Skip separators
		for i < len(text) {
			r, w := utf8.DecodeRuneInString(text[i:])
			if isWordRune(r) {
				break
			}
			i += w
		}
		start := i

		// Consume the word run
		for i < len(text) {
			r, w := utf8.DecodeRuneInString(text[i:])
			if !isWordRune(r) {
				break
			}
			i += w
		}

		if start < i {
			raw := text[start:i]
			if norm := Normalize(raw); IsWord(norm) {
				tokens = append(tokens, Token{Raw: raw, Normalized: norm, Start: start, End: i})
			}
		}
	}

	return tokens
}

// Normalize folds curly apostrophes to straight ones, drops every rune that
// is not an ASCII letter or apostrophe and uppercases the rest.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(word string) string {
	if word == "" {
		return ""
	}

	var out strings.Builder
	out.Grow(len(word))
	for _, r := range word {
		switch {
		case isApostrophe(r):
			out.WriteByte('\'')
		case r >= 'a' && r <= 'z':
			out.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z':
			out.WriteRune(r)
		}
	}
	return out.String()
}

// IsWord reports whether a normalized token holds at least one letter.
// Apostrophe-only runs are not words.
func IsWord(normalized string) bool {
	return strings.Trim(normalized, "'") != ""
}
