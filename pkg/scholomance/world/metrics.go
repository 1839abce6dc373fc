// Package world turns a scroll of text into a small deterministic
// dungeon: metrics are derived from the text, the metrics seed a
// generator, and a pure reducer plays the result.
package world

import (
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"

	"github.com/cognicore/scholomance/pkg/scholomance/classify"
	"github.com/cognicore/scholomance/pkg/scholomance/result"
)

// Scroll is the text a world is generated from.
type Scroll struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Metrics summarizes a scroll. Seed drives every random choice made by
// Generate.
type Metrics struct {
	Seed        uint32  `json:"seed"`
	TokenCount  int     `json:"tokenCount"`
	UniqueCount int     `json:"uniqueCount"`
	LineCount   int     `json:"lineCount"`
	Volatility  float64 `json:"volatility"`
	Complexity  int     `json:"complexity"`
}

const minComplexity = 10

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	wordSplitRe   = regexp.MustCompile(`[^a-z0-9']+`)
	punctuationRe = regexp.MustCompile(`[!?.,;:]`)
)

func normalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func words(text string) []string {
	parts := wordSplitRe.Split(strings.ToLower(normalizeText(text)), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Seed hashes the scroll identity and its normalized text with 32-bit
// FNV-1a.
func Seed(s Scroll) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s", s.ID, s.Title, normalizeText(s.Text))
	return h.Sum32()
}

// ComputeMetrics derives the generation metrics for a scroll.
func ComputeMetrics(s Scroll) Metrics {
	tokens := words(s.Text)
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}

	lines := 0
	for _, l := range strings.Split(s.Text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines++
		}
	}

	var volatility float64
	if len(tokens) > 0 {
		volatility = float64(len(punctuationRe.FindAllStringIndex(s.Text, -1))) / float64(len(tokens))
	}

	raw := float64(len(tokens))*0.6 + float64(len(unique))*1.2 + float64(lines)*3 + volatility*200
	complexity := int(math.Floor(raw))
	if complexity < minComplexity {
		complexity = minComplexity
	}

	return Metrics{
		Seed:        Seed(s),
		TokenCount:  len(tokens),
		UniqueCount: len(unique),
		LineCount:   lines,
		Volatility:  volatility,
		Complexity:  complexity,
	}
}

var english = stopwords.MustGet("en")

// Keywords returns up to n of the most frequent content words in text,
// most frequent first. Ties keep the order of first appearance.
func Keywords(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	counts := make(map[string]int)
	var order []string
	for _, w := range words(text) {
		w = strings.Trim(w, "'")
		if len(w) < 3 || english.Contains(w) || strings.Trim(w, "0123456789") == "" {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

var feelMatcher = sync.OnceValues(func() (*feelScanner, error) {
	patterns := classify.FeelWords()
	ac, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build feel automaton: %w", err)
	}
	return &feelScanner{ac: ac, patterns: patterns}, nil
})

type feelScanner struct {
	ac       *ahocorasick.Automaton
	patterns []string
}

func isWordByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '\''
}

func upperASCII(text string) []byte {
	b := []byte(text)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return b
}

// Mood counts whole-word hits of the affect lexicon in text, by feel.
// Feels with no hits are absent from the map.
func Mood(text string) map[result.Feel]int {
	hits := make(map[result.Feel]int)
	scanner, err := feelMatcher()
	if err != nil || text == "" {
		return hits
	}
	haystack := upperASCII(text)
	for _, m := range scanner.ac.FindAllOverlapping(haystack) {
		if m.Start > 0 && isWordByte(haystack[m.Start-1]) {
			continue
		}
		if m.End < len(haystack) && isWordByte(haystack[m.End]) {
			continue
		}
		hits[classify.FeelOf(scanner.patterns[m.PatternID])]++
	}
	return hits
}

// DominantFeel returns the feel with the most hits. Ties resolve in
// result.Feels order; no hits yields FeelUnknown.
func DominantFeel(hits map[result.Feel]int) result.Feel {
	best, bestCount := result.FeelUnknown, 0
	for _, f := range result.Feels {
		if hits[f] > bestCount {
			best, bestCount = f, hits[f]
		}
	}
	return best
}
