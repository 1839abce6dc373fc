package phoneme

import (
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/scholomance/pkg/scholomance/token"
)

// DefaultWordCacheSize bounds the per-word analysis cache.
const DefaultWordCacheSize = 5000

// CMUEntry is one word of the compact CMU pronouncing dictionary:
// phonemes, the vowel families in order and the coda consonants.
type CMUEntry struct {
	Ph []string `json:"ph"`
	VF []string `json:"vf"`
	CD []string `json:"cd"`
}

// V2Entry is one word of the vowel-family dictionary.
type V2Entry struct {
	VowelFamily string   `json:"vowelFamily"`
	Phonemes    []string `json:"phonemes"`
	Coda        *string  `json:"coda"`
}

// V2Dict is the vowel-family dictionary file.
type V2Dict struct {
	VowelFamilies   []string           `json:"vowel_families"`
	Words           map[string]V2Entry `json:"words"`
	ConsonantGroups struct {
		CodaGroups map[string][]string `json:"coda_groups"`
	} `json:"consonant_groups"`
}

// LexiconOptions configures a Lexicon. Every field is optional.
type LexiconOptions struct {
	V2         *V2Dict
	CMU        map[string]CMUEntry
	CodaGroups map[string][]string // replaces the V2 coda groups when set
	CacheSize  int
}

// Lexicon is the data-backed Dictionary: CMU entries first, then the
// vowel-family dictionary, then a spelling guess. It is read-only after
// construction and safe for concurrent use.
type Lexicon struct {
	cmu        map[string]CMUEntry
	v2         map[string]V2Entry
	families   []string
	codaGroups map[string][]string
	// coda -> sorted group names
	codaIndex map[string][]string
	cache     *lru.Cache[string, Analysis]
}

// NewLexicon builds a Lexicon from loaded dictionary data.
func NewLexicon(opts LexiconOptions) *Lexicon {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultWordCacheSize
	}
	cache, _ := lru.New[string, Analysis](size)

	l := &Lexicon{
		cmu:        make(map[string]CMUEntry, len(opts.CMU)),
		v2:         make(map[string]V2Entry),
		codaGroups: make(map[string][]string),
		codaIndex:  make(map[string][]string),
		cache:      cache,
	}

	for word, entry := range opts.CMU {
		l.cmu[strings.ToUpper(word)] = entry
	}

	groups := opts.CodaGroups
	if opts.V2 != nil {
		for word, entry := range opts.V2.Words {
			l.v2[strings.ToUpper(word)] = entry
		}
		l.families = append(l.families, opts.V2.VowelFamilies...)
		if groups == nil {
			groups = opts.V2.ConsonantGroups.CodaGroups
		}
	}

	for group, members := range groups {
		l.codaGroups[group] = append([]string(nil), members...)
		for _, coda := range members {
			l.codaIndex[coda] = append(l.codaIndex[coda], group)
		}
	}
	for coda := range l.codaIndex {
		sort.Strings(l.codaIndex[coda])
	}

	return l
}

// Analyze implements Dictionary. Unknown words still get a spelling guess;
// only empty or letter-free input reports false.
func (l *Lexicon) Analyze(word string) (Analysis, bool) {
	upper := token.Normalize(word)
	if upper == "" || letters(upper) == "" {
		return Analysis{}, false
	}

	if cached, ok := l.cache.Get(upper); ok {
		return cached, true
	}

	var result Analysis
	if entry, ok := l.cmu[upper]; ok {
		family := "UH"
		if len(entry.VF) > 0 {
			family = entry.VF[len(entry.VF)-1]
		}
		coda := strings.Join(entry.CD, "")
		result = Analysis{
			VowelFamily: family,
			Phonemes:    append([]string(nil), entry.Ph...),
			Coda:        coda,
			RhymeKey:    RhymeKey(family, coda),
		}
	} else if entry, ok := l.v2[upper]; ok {
		coda := ""
		if entry.Coda != nil {
			coda = *entry.Coda
		}
		result = Analysis{
			VowelFamily: entry.VowelFamily,
			Phonemes:    append([]string(nil), entry.Phonemes...),
			Coda:        coda,
			RhymeKey:    RhymeKey(entry.VowelFamily, coda),
		}
	} else {
		result = Guess(upper)
	}

	l.cache.Add(upper, result)
	return result, true
}

// IsKnown implements Dictionary.
func (l *Lexicon) IsKnown(word string) bool {
	upper := token.Normalize(word)
	if _, ok := l.cmu[upper]; ok {
		return true
	}
	_, ok := l.v2[upper]
	return ok
}

// CodaGroupsOf implements Dictionary.
func (l *Lexicon) CodaGroupsOf(coda string) []string {
	if coda == "" {
		return nil
	}
	return append([]string(nil), l.codaIndex[coda]...)
}

// CheckCodaMutation reports whether two codas belong to a common group,
// i.e. whether swapping one for the other still counts as a slant rhyme.
func (l *Lexicon) CheckCodaMutation(codaA, codaB string) bool {
	for _, members := range l.codaGroups {
		var hasA, hasB bool
		for _, m := range members {
			if m == codaA {
				hasA = true
			}
			if m == codaB {
				hasB = true
			}
		}
		if hasA && hasB {
			return true
		}
	}
	return false
}

// Stats returns statistics about the loaded data.
func (l *Lexicon) Stats() LexiconStats {
	return LexiconStats{
		CMUWords:      len(l.cmu),
		V2Words:       len(l.v2),
		VowelFamilies: len(l.families),
		CodaGroups:    len(l.codaGroups),
		CachedWords:   l.cache.Len(),
	}
}

// LexiconStats holds statistics about lexicon contents.
type LexiconStats struct {
	CMUWords      int
	V2Words       int
	VowelFamilies int
	CodaGroups    int
	CachedWords   int
}

var _ Dictionary = (*Lexicon)(nil)
var _ Dictionary = None{}
