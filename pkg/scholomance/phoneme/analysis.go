// Package phoneme holds the phonetic dictionary capability the classifier
// depends on, its empty implementation and the spelling-based fallback
// analysis.
package phoneme

import (
	"strings"

	"github.com/cognicore/scholomance/pkg/scholomance/token"
)

// Analysis is the phonetic breakdown of one word.
type Analysis struct {
	VowelFamily string
	Phonemes    []string
	Coda        string // "" for an open syllable
	RhymeKey    string
}

// Dictionary is the capability the classifier consults. Implementations
// must be safe for concurrent readers and must not change once shared.
type Dictionary interface {
	// Analyze returns the analysis for a normalized word, or false when the
	// dictionary has nothing to say about it.
	Analyze(word string) (Analysis, bool)
	// IsKnown reports whether the word is a recognized dictionary entry.
	IsKnown(word string) bool
	// CodaGroupsOf lists, in sorted order, every consonant-equivalence
	// group that contains coda.
	CodaGroupsOf(coda string) []string
}

// None is the dictionary used when no phonetic data is loaded.
type None struct{}

func (None) Analyze(string) (Analysis, bool) { return Analysis{}, false }
func (None) IsKnown(string) bool             { return false }
func (None) CodaGroupsOf(string) []string    { return nil }

// RhymeKey builds "<family>-<coda>", using "open" for a missing coda.
func RhymeKey(vowelFamily, coda string) string {
	if coda == "" {
		coda = "open"
	}
	return vowelFamily + "-" + coda
}

var vowelFamilyGuess = map[string]string{
	"A":  "A",
	"E":  "EH",
	"I":  "IH",
	"O":  "OH",
	"U":  "UH",
	"AI": "AY",
	"AY": "AY",
	"EE": "IY",
	"EA": "IY",
	"OO": "UW",
	"OU": "AW",
	"OW": "OW",
	"OI": "OY",
	"OY": "OY",
}

// GuessVowelFamily maps a vowel spelling to a family code: exact match,
// then first letter, then UH.
func GuessVowelFamily(vowel string) string {
	if fam, ok := vowelFamilyGuess[vowel]; ok {
		return fam
	}
	if vowel != "" {
		if fam, ok := vowelFamilyGuess[vowel[:1]]; ok {
			return fam
		}
	}
	return "UH"
}

func isVowel(b byte) bool {
	switch b {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}

// letters keeps the A-Z bytes of a normalized word.
func letters(word string) string {
	upper := token.Normalize(word)
	return strings.ReplaceAll(upper, "'", "")
}

// Guess derives an analysis from spelling alone. It is deterministic and
// never fails; a word without vowels gets family UH and no coda.
func Guess(word string) Analysis {
	w := letters(word)

	var runs []string
	for i := 0; i < len(w); {
		if !isVowel(w[i]) {
			i++
			continue
		}
		j := i
		for j < len(w) && isVowel(w[j]) {
			j++
		}
		runs = append(runs, w[i:j])
		i = j
	}

	if len(runs) == 0 {
		phonemes := make([]string, 0, len(w))
		for i := 0; i < len(w); i++ {
			phonemes = append(phonemes, w[i:i+1])
		}
		return Analysis{
			VowelFamily: "UH",
			Phonemes:    phonemes,
			RhymeKey:    RhymeKey("UH", ""),
		}
	}

	family := GuessVowelFamily(runs[len(runs)-1])
	coda := ExtractCoda(w)
	return Analysis{
		VowelFamily: family,
		Phonemes:    SplitPhonemes(w),
		Coda:        coda,
		RhymeKey:    RhymeKey(family, coda),
	}
}

// ExtractCoda returns the trailing consonant run, or "" when the word ends
// in a vowel.
func ExtractCoda(word string) string {
	i := len(word)
	for i > 0 && !isVowel(word[i-1]) {
		i--
	}
	return word[i:]
}

// SplitPhonemes splits an uppercase word into single consonants and
// one- or two-letter vowel groups.
func SplitPhonemes(word string) []string {
	var out []string
	for i := 0; i < len(word); {
		c := word[i]
		switch {
		case isVowel(c):
			if i+1 < len(word) && isVowel(word[i+1]) {
				out = append(out, word[i:i+2])
				i += 2
			} else {
				out = append(out, word[i:i+1])
				i++
			}
		case c >= 'A' && c <= 'Z':
			out = append(out, word[i:i+1])
			i++
		default:
			i++
		}
	}
	return out
}
