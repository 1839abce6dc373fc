package result

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleResult() Result {
	return Result{
		Version: "color-engine@1",
		Token:   "TEST",
		Classes: []string{"editor-word"},
		Channels: Channels{
			Text:   Channel{Source: ChannelFromRune, ClassName: "vowel-eh"},
			Accent: Channel{Source: ChannelFromFeel, ClassName: ""},
			Border: Channel{Source: ChannelFromFeel, ClassName: ""},
			Glow:   Channel{Source: ChannelFromFeel, ClassName: ""},
		},
		Chips: []Chip{
			{Type: ChipSchool, Label: "SONIC", ClassName: "school-sonic", Confidence: 0.86, Source: SourceFast},
			{Type: ChipRune, Label: "Echo Rune", ClassName: "vowel-eh", Confidence: 0.86, Source: SourceFast},
			{Type: ChipFeel, Label: "Unknown", ClassName: "feel-unknown", Confidence: 0.2, Source: SourceFast},
		},
		Evidence: []Evidence{
			{Type: EvidencePhoneme, Value: "T EH S T", Source: SourceFast},
			{Type: EvidenceRhyme, Value: "EH-ST", Source: SourceFast},
		},
		Confidence: 0.86,
	}
}

func definitionPatch() Patch {
	return Patch{
		Evidence:        []Evidence{{Type: EvidenceDefinition, Value: "a sample definition", Source: SourceEnriched}},
		ConfidenceBoost: 0.2,
		Enriched:        true,
		IsValid:         Valid(true),
	}
}

func TestMergeKeepsChannels(t *testing.T) {
	base := sampleResult()
	patches := []Patch{
		{},
		definitionPatch(),
		{Chips: []Chip{{Type: ChipFeel, Label: "Fear", ClassName: "feel-fear", Confidence: 0.9, Source: SourceEnriched}}},
		{ConfidenceBoost: -0.5},
	}
	for i, p := range patches {
		merged := Merge(base, p)
		if merged.Channels != base.Channels {
			t.Errorf("patch %d changed channels: %+v", i, merged.Channels)
		}
	}
}

func TestMergeConfidenceMonotonic(t *testing.T) {
	base := sampleResult()
	tests := []struct {
		boost float64
		want  float64
	}{
		{0, 0.86},
		{-0.3, 0.86},
		{0.1, 0.96},
		{0.2, 1},
		{5, 1},
	}
	for _, tt := range tests {
		got := Merge(base, Patch{ConfidenceBoost: tt.boost}).Confidence
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("boost %v: confidence = %v, want %v", tt.boost, got, tt.want)
		}
		if got < base.Confidence || got > 1 {
			t.Errorf("boost %v: confidence %v out of range", tt.boost, got)
		}
	}
}

func TestMergeDeduplicates(t *testing.T) {
	base := sampleResult()
	p := definitionPatch()
	p.Chips = []Chip{{Type: ChipSchool, Label: "SONIC", Source: SourceFast, Confidence: 0.1}}
	p.Evidence = append(p.Evidence, Evidence{Type: EvidenceRhyme, Value: "EH-ST", Source: SourceFast})

	once := Merge(base, p)
	twice := Merge(once, p)

	if len(once.Chips) != len(base.Chips) {
		t.Errorf("duplicate chip appended: %d chips", len(once.Chips))
	}
	if len(once.Evidence) != len(base.Evidence)+1 {
		t.Errorf("expected exactly one new evidence entry, got %d", len(once.Evidence))
	}
	if diff := cmp.Diff(once.Evidence, twice.Evidence); diff != "" {
		t.Errorf("second merge changed evidence (-once +twice):\n%s", diff)
	}
}

func TestMergeSameValueDifferentSourceIsDistinct(t *testing.T) {
	base := sampleResult()
	merged := Merge(base, Patch{Evidence: []Evidence{{Type: EvidenceRhyme, Value: "EH-ST", Source: SourceEnriched}}})
	if len(merged.Evidence) != len(base.Evidence)+1 {
		t.Errorf("evidence from another source should be kept, got %d entries", len(merged.Evidence))
	}
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := sampleResult()
	snapshot := base.Clone()

	merged := Merge(base, definitionPatch())
	merged.Evidence[0].Value = "changed"
	merged.Classes[0] = "changed"

	if diff := cmp.Diff(snapshot, base); diff != "" {
		t.Errorf("base mutated (-want +got):\n%s", diff)
	}
}

func TestMergeEnrichedSticky(t *testing.T) {
	base := sampleResult()
	base.Enriched = true
	if !Merge(base, Patch{Enriched: false}).Enriched {
		t.Error("enriched must stay true")
	}
	base.Enriched = false
	if !Merge(base, Patch{Enriched: true}).Enriched {
		t.Error("patch should set enriched")
	}
}

func TestMergeScenario(t *testing.T) {
	base := sampleResult()
	merged := Merge(base, definitionPatch())

	if merged.Confidence != 1 {
		t.Errorf("confidence = %v, want 1", merged.Confidence)
	}
	if !merged.Enriched {
		t.Error("expected enriched")
	}
	def, ok := merged.EvidenceValue(EvidenceDefinition)
	if !ok || def != "a sample definition" {
		t.Errorf("definition evidence = %q, %v", def, ok)
	}
	if rhyme, _ := merged.EvidenceValue(EvidenceRhyme); rhyme != "EH-ST" {
		t.Errorf("original evidence lost, rhyme = %q", rhyme)
	}
}

func TestSignature(t *testing.T) {
	r := Result{
		Confidence: 0.62,
		Chips: []Chip{
			{Type: ChipSchool, Label: "WILL", ClassName: "school-will", Confidence: 0.62, Source: SourceFast},
			{Type: ChipFeel, Label: "Unknown", ClassName: "feel-unknown", Confidence: 0.2, Source: SourceFast},
		},
		Evidence: []Evidence{
			{Type: EvidenceRhyme, Value: "A-open", Source: SourceFast},
			{Type: EvidenceUsage, Value: "vowel:A", Source: SourceFast},
		},
	}
	want := "false-0.62-school:WILL:0.62:fast:school-will|feel:Unknown:0.2:fast:feel-unknown-rhyme:A-open:fast|usage:vowel:A:fast"
	if got := Signature(r); got != want {
		t.Errorf("Signature =\n%q\nwant\n%q", got, want)
	}

	r.Confidence = 1
	r.Enriched = true
	if got := Signature(r); got[:7] != "true-1-" {
		t.Errorf("unexpected prefix: %q", got)
	}
}

func TestSignatureDetectsChange(t *testing.T) {
	base := sampleResult()
	merged := Merge(base, definitionPatch())
	if Signature(base) == Signature(merged) {
		t.Error("merge with new evidence should change the signature")
	}
	if Signature(merged) != Signature(Merge(merged, definitionPatch())) {
		t.Error("re-merging the same patch should not change the signature")
	}
}

func TestChipLookup(t *testing.T) {
	r := sampleResult()
	c, ok := r.Chip(ChipRune)
	if !ok || c.Label != "Echo Rune" {
		t.Errorf("Chip(rune) = %+v, %v", c, ok)
	}
	if _, ok := (Result{}).Chip(ChipFeel); ok {
		t.Error("empty result has no chips")
	}
	if _, ok := (Result{}).EvidenceValue(EvidenceRhyme); ok {
		t.Error("empty result has no evidence")
	}
}
