// Package result defines the annotation data model shared by the
// classifier, the enrichment pipeline and the engine, along with the
// merge and change-detection rules that govern enrichment.
package result

import (
	"strconv"
	"strings"
)

// School is a thematic category derived from a vowel family.
type School string

const (
	SchoolVoid    School = "VOID"
	SchoolPsychic School = "PSYCHIC"
	SchoolAlchemy School = "ALCHEMY"
	SchoolWill    School = "WILL"
	SchoolSonic   School = "SONIC"
)

// Schools lists every school in declaration order.
var Schools = []School{SchoolVoid, SchoolPsychic, SchoolAlchemy, SchoolWill, SchoolSonic}

// Feel is an affect category assigned by exact lexicon match.
type Feel string

const (
	FeelUnknown Feel = "Unknown"
	FeelNeutral Feel = "Neutral"
	FeelJoy     Feel = "Joy"
	FeelSorrow  Feel = "Sorrow"
	FeelRage    Feel = "Rage"
	FeelFear    Feel = "Fear"
	FeelAwe     Feel = "Awe"
	FeelDesire  Feel = "Desire"
)

// Feels lists every feel in declaration order.
var Feels = []Feel{FeelUnknown, FeelNeutral, FeelJoy, FeelSorrow, FeelRage, FeelFear, FeelAwe, FeelDesire}

// ChipType identifies what a chip describes.
type ChipType string

const (
	ChipSchool ChipType = "school"
	ChipRune   ChipType = "rune"
	ChipFeel   ChipType = "feel"
)

// EvidenceType identifies what an evidence entry records.
type EvidenceType string

const (
	EvidencePhoneme    EvidenceType = "phoneme"
	EvidenceRhyme      EvidenceType = "rhyme"
	EvidenceUsage      EvidenceType = "usage"
	EvidenceDefinition EvidenceType = "definition"
)

// Source says which pass produced a chip or evidence entry.
type Source string

const (
	SourceFast     Source = "fast"
	SourceEnriched Source = "enriched"
)

// ChannelSource says which classification a display channel derives from.
type ChannelSource string

const (
	ChannelFromSchool ChannelSource = "school"
	ChannelFromRune   ChannelSource = "rune"
	ChannelFromFeel   ChannelSource = "feel"
)

// Channel is one display slot assignment.
type Channel struct {
	Source    ChannelSource `json:"source"`
	ClassName string        `json:"className"`
}

// Channels holds the four display slots. They are assigned once by the
// fast pass and never change afterwards.
type Channels struct {
	Text   Channel `json:"text"`
	Accent Channel `json:"accent"`
	Border Channel `json:"border"`
	Glow   Channel `json:"glow"`
}

// Chip is a labelled classification with its confidence.
type Chip struct {
	Type       ChipType `json:"type"`
	Label      string   `json:"label"`
	ClassName  string   `json:"className"`
	Confidence float64  `json:"confidence"`
	Source     Source   `json:"source"`
}

// Evidence is one fact supporting a classification.
type Evidence struct {
	Type   EvidenceType `json:"type"`
	Value  string       `json:"value"`
	Source Source       `json:"source"`
}

// Result is the full annotation of one normalized token.
type Result struct {
	Version    string     `json:"version"`
	Token      string     `json:"token"`
	Classes    []string   `json:"classes"`
	Channels   Channels   `json:"channels"`
	Chips      []Chip     `json:"chips"`
	Evidence   []Evidence `json:"evidence"`
	Confidence float64    `json:"confidence"`
	Enriched   bool       `json:"enriched"`
}

// Patch is an enrichment contribution, consumed once by Merge.
// A nil IsValid means validity is inferred from the evidence it carries.
type Patch struct {
	Chips           []Chip
	Evidence        []Evidence
	ConfidenceBoost float64
	Enriched        bool
	IsValid         *bool
}

// Valid returns a pointer to v, for Patch.IsValid literals.
func Valid(v bool) *bool { return &v }

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	out := r
	out.Classes = append([]string(nil), r.Classes...)
	out.Chips = append([]Chip(nil), r.Chips...)
	out.Evidence = append([]Evidence(nil), r.Evidence...)
	return out
}

// EvidenceValue returns the value of the first evidence entry of type t.
func (r Result) EvidenceValue(t EvidenceType) (string, bool) {
	for _, e := range r.Evidence {
		if e.Type == t && e.Value != "" {
			return e.Value, true
		}
	}
	return "", false
}

// Chip returns the first chip of type t.
func (r Result) Chip(t ChipType) (Chip, bool) {
	for _, c := range r.Chips {
		if c.Type == t {
			return c, true
		}
	}
	return Chip{}, false
}

// Merge combines base with an enrichment patch into a new Result. Chips
// and evidence are unioned by identity, confidence never decreases and
// is capped at 1, enrichment is sticky, and channels are copied as is.
// base is never modified.
func Merge(base Result, p Patch) Result {
	out := base.Clone()

	for _, chip := range p.Chips {
		exists := false
		for _, c := range out.Chips {
			if c.Type == chip.Type && c.Label == chip.Label && c.Source == chip.Source {
				exists = true
				break
			}
		}
		if !exists {
			out.Chips = append(out.Chips, chip)
		}
	}

	for _, item := range p.Evidence {
		exists := false
		for _, e := range out.Evidence {
			if e.Type == item.Type && e.Value == item.Value && e.Source == item.Source {
				exists = true
				break
			}
		}
		if !exists {
			out.Evidence = append(out.Evidence, item)
		}
	}

	out.Confidence = min(1, max(base.Confidence, base.Confidence+p.ConfidenceBoost))
	out.Enriched = base.Enriched || p.Enriched
	return out
}

// Signature encodes the mutable parts of r for change detection:
// "<enriched>-<confidence>-<chips>-<evidence>".
func Signature(r Result) string {
	var b strings.Builder
	b.WriteString(strconv.FormatBool(r.Enriched))
	b.WriteByte('-')
	b.WriteString(formatNumber(r.Confidence))
	b.WriteByte('-')
	for i, c := range r.Chips {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(string(c.Type))
		b.WriteByte(':')
		b.WriteString(c.Label)
		b.WriteByte(':')
		b.WriteString(formatNumber(c.Confidence))
		b.WriteByte(':')
		b.WriteString(string(c.Source))
		b.WriteByte(':')
		b.WriteString(c.ClassName)
	}
	b.WriteByte('-')
	for i, e := range r.Evidence {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(string(e.Type))
		b.WriteByte(':')
		b.WriteString(e.Value)
		b.WriteByte(':')
		b.WriteString(string(e.Source))
	}
	return b.String()
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
