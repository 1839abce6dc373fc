// Package classify computes the synchronous fast-pass annotation of a
// normalized token.
package classify

import (
	"strings"

	"github.com/cognicore/scholomance/pkg/scholomance/phoneme"
	"github.com/cognicore/scholomance/pkg/scholomance/result"
)

// DefaultVersion tags results produced by this classifier.
const DefaultVersion = "color-engine@1"

// Confidence tiers for the school and rune chips.
const (
	ConfidenceKnown   = 0.86 // dictionary analysis of a recognized word
	ConfidenceHeard   = 0.62 // dictionary analysis of an unrecognized word
	ConfidenceSpelled = 0.28 // no dictionary analysis, spelling only

	ConfidenceFeelMatched = 0.6
	ConfidenceFeelUnknown = 0.2
)

// Classify builds the fast result for a normalized token. It is total
// and deterministic for a given dictionary; a nil dictionary behaves
// like phoneme.None.
func Classify(token string, dict phoneme.Dictionary, version string) result.Result {
	if dict == nil {
		dict = phoneme.None{}
	}
	if version == "" {
		version = DefaultVersion
	}

	analysis, ok := dict.Analyze(token)
	confidence := ConfidenceSpelled
	if ok {
		confidence = ConfidenceHeard
		if dict.IsKnown(token) {
			confidence = ConfidenceKnown
		}
	} else {
		analysis = phoneme.Guess(token)
	}

	family := analysis.VowelFamily
	if family == "" {
		family = "UH"
	}
	school := SchoolOf(family)
	runeClass := vowelClass(family)

	feel := FeelOf(token)
	feelClass := feelChannelClass(feel)
	feelConfidence := ConfidenceFeelUnknown
	if feel != result.FeelUnknown {
		feelConfidence = ConfidenceFeelMatched
	}

	evidence := make([]result.Evidence, 0, 6)
	if len(analysis.Phonemes) > 0 {
		evidence = append(evidence, fast(result.EvidencePhoneme, strings.Join(analysis.Phonemes, " ")))
	}
	if analysis.RhymeKey != "" {
		evidence = append(evidence, fast(result.EvidenceRhyme, analysis.RhymeKey))
	}
	if analysis.Coda != "" {
		evidence = append(evidence, fast(result.EvidencePhoneme, "coda:"+analysis.Coda))
	}
	evidence = append(evidence, fast(result.EvidenceUsage, "vowel:"+family))
	if analysis.Coda != "" {
		for _, group := range dict.CodaGroupsOf(analysis.Coda) {
			evidence = append(evidence, fast(result.EvidenceUsage, "coda-group:"+group))
		}
	}

	return result.Result{
		Version: version,
		Token:   token,
		Classes: []string{"editor-word"},
		Channels: result.Channels{
			Text:   result.Channel{Source: result.ChannelFromRune, ClassName: runeClass},
			Accent: result.Channel{Source: result.ChannelFromFeel, ClassName: feelClass},
			Border: result.Channel{Source: result.ChannelFromFeel, ClassName: feelClass},
			Glow:   result.Channel{Source: result.ChannelFromFeel, ClassName: feelClass},
		},
		Chips: []result.Chip{
			{Type: result.ChipSchool, Label: string(school), ClassName: schoolClass(school), Confidence: confidence, Source: result.SourceFast},
			{Type: result.ChipRune, Label: RuneLabel(family), ClassName: runeClass, Confidence: confidence, Source: result.SourceFast},
			{Type: result.ChipFeel, Label: string(feel), ClassName: feelChipClass(feel), Confidence: feelConfidence, Source: result.SourceFast},
		},
		Evidence:   evidence,
		Confidence: confidence,
	}
}

func fast(t result.EvidenceType, value string) result.Evidence {
	return result.Evidence{Type: t, Value: value, Source: result.SourceFast}
}
