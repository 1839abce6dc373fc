package classify

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cognicore/scholomance/pkg/scholomance/phoneme"
	"github.com/cognicore/scholomance/pkg/scholomance/result"
)

type stubDict struct {
	analyses map[string]phoneme.Analysis
	known    map[string]bool
	groups   map[string][]string
}

func (d stubDict) Analyze(w string) (phoneme.Analysis, bool) {
	a, ok := d.analyses[w]
	return a, ok
}
func (d stubDict) IsKnown(w string) bool          { return d.known[w] }
func (d stubDict) CodaGroupsOf(c string) []string { return d.groups[c] }

func testDict() stubDict {
	return stubDict{
		analyses: map[string]phoneme.Analysis{
			"TEST": {VowelFamily: "EH", Phonemes: []string{"T", "EH", "S", "T"}, Coda: "ST", RhymeKey: "EH-ST"},
			"FEAR": {VowelFamily: "IY", Phonemes: []string{"F", "IY", "R"}, Coda: "R", RhymeKey: "IY-R"},
			"ZORB": {VowelFamily: "ZZ", Phonemes: []string{"Z", "ZZ", "RB"}, Coda: "RB", RhymeKey: "ZZ-RB"},
		},
		known:  map[string]bool{"TEST": true, "FEAR": true},
		groups: map[string][]string{"ST": {"sibilant", "stop"}},
	}
}

func TestClassifyKnownWord(t *testing.T) {
	r := Classify("TEST", testDict(), "")

	if r.Version != DefaultVersion || r.Token != "TEST" {
		t.Errorf("unexpected identity: %q %q", r.Version, r.Token)
	}
	if r.Confidence != ConfidenceKnown {
		t.Errorf("confidence = %v, want %v", r.Confidence, ConfidenceKnown)
	}

	wantChips := []result.Chip{
		{Type: result.ChipSchool, Label: "SONIC", ClassName: "school-sonic", Confidence: 0.86, Source: result.SourceFast},
		{Type: result.ChipRune, Label: "Echo Rune", ClassName: "vowel-eh", Confidence: 0.86, Source: result.SourceFast},
		{Type: result.ChipFeel, Label: "Unknown", ClassName: "feel-unknown", Confidence: 0.2, Source: result.SourceFast},
	}
	if diff := cmp.Diff(wantChips, r.Chips); diff != "" {
		t.Errorf("chips mismatch (-want +got):\n%s", diff)
	}

	wantEvidence := []result.Evidence{
		{Type: result.EvidencePhoneme, Value: "T EH S T", Source: result.SourceFast},
		{Type: result.EvidenceRhyme, Value: "EH-ST", Source: result.SourceFast},
		{Type: result.EvidencePhoneme, Value: "coda:ST", Source: result.SourceFast},
		{Type: result.EvidenceUsage, Value: "vowel:EH", Source: result.SourceFast},
		{Type: result.EvidenceUsage, Value: "coda-group:sibilant", Source: result.SourceFast},
		{Type: result.EvidenceUsage, Value: "coda-group:stop", Source: result.SourceFast},
	}
	if diff := cmp.Diff(wantEvidence, r.Evidence); diff != "" {
		t.Errorf("evidence mismatch (-want +got):\n%s", diff)
	}

	wantChannels := result.Channels{
		Text:   result.Channel{Source: result.ChannelFromRune, ClassName: "vowel-eh"},
		Accent: result.Channel{Source: result.ChannelFromFeel},
		Border: result.Channel{Source: result.ChannelFromFeel},
		Glow:   result.Channel{Source: result.ChannelFromFeel},
	}
	if r.Channels != wantChannels {
		t.Errorf("channels = %+v", r.Channels)
	}
	if diff := cmp.Diff([]string{"editor-word"}, r.Classes); diff != "" {
		t.Errorf("classes mismatch:\n%s", diff)
	}
}

func TestClassifyFeelWord(t *testing.T) {
	r := Classify("FEAR", testDict(), "v2")
	if r.Version != "v2" {
		t.Errorf("version = %q", r.Version)
	}
	if r.Channels.Accent.ClassName != "feel-fear" || r.Channels.Glow.ClassName != "feel-fear" {
		t.Errorf("feel channels = %+v", r.Channels)
	}
	feel, _ := r.Chip(result.ChipFeel)
	if feel.Label != "Fear" || feel.Confidence != ConfidenceFeelMatched {
		t.Errorf("feel chip = %+v", feel)
	}
	school, _ := r.Chip(result.ChipSchool)
	if school.Label != "SONIC" {
		t.Errorf("IY should map to SONIC, got %s", school.Label)
	}
}

func TestClassifyUnknownWordWithDictionary(t *testing.T) {
	lex := phoneme.NewLexicon(phoneme.LexiconOptions{})
	r := Classify("MAGIC", lex, "")
	if r.Confidence != ConfidenceHeard {
		t.Errorf("confidence = %v, want %v", r.Confidence, ConfidenceHeard)
	}
	school, _ := r.Chip(result.ChipSchool)
	if school.Label != "SONIC" {
		t.Errorf("MAGIC guesses IH, want SONIC, got %s", school.Label)
	}
	if rhyme, _ := r.EvidenceValue(result.EvidenceRhyme); rhyme != "IH-C" {
		t.Errorf("rhyme = %q", rhyme)
	}
}

func TestClassifyWithoutDictionary(t *testing.T) {
	for _, dict := range []phoneme.Dictionary{nil, phoneme.None{}} {
		r := Classify("QUOKKA", dict, "")
		if r.Confidence != ConfidenceSpelled {
			t.Errorf("confidence = %v, want %v", r.Confidence, ConfidenceSpelled)
		}
		rhyme, ok := r.EvidenceValue(result.EvidenceRhyme)
		if !ok || rhyme != "A-open" {
			t.Errorf("rhyme = %q, %v", rhyme, ok)
		}
		runeChip, _ := r.Chip(result.ChipRune)
		if runeChip.Label != "Ash Rune" || runeChip.ClassName != "vowel-a" {
			t.Errorf("rune chip = %+v", runeChip)
		}
	}
}

func TestClassifyUnknownFamilyFallsBack(t *testing.T) {
	r := Classify("ZORB", testDict(), "")
	if r.Channels.Text.ClassName != "vowel-uh" {
		t.Errorf("unknown family should use the UH class, got %q", r.Channels.Text.ClassName)
	}
	school, _ := r.Chip(result.ChipSchool)
	runeChip, _ := r.Chip(result.ChipRune)
	if school.Label != "VOID" || runeChip.Label != "ZZ Rune" {
		t.Errorf("school=%s rune=%s", school.Label, runeChip.Label)
	}
}

func TestClassifyDegenerateTokens(t *testing.T) {
	for _, tok := range []string{"", "'", "RHYTHM"} {
		r := Classify(tok, nil, "")
		if len(r.Chips) != 3 {
			t.Errorf("%q: expected three chips, got %d", tok, len(r.Chips))
		}
		if v, _ := r.EvidenceValue(result.EvidenceUsage); v != "vowel:UH" {
			t.Errorf("%q: usage = %q", tok, v)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	dict := testDict()
	for _, tok := range []string{"TEST", "FEAR", "QUOKKA", "LANTERN", ""} {
		a := Classify(tok, dict, "")
		b := Classify(tok, dict, "")
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("%q not deterministic:\n%s", tok, diff)
		}
	}
}

func TestSchoolOf(t *testing.T) {
	tests := map[string]result.School{
		"A": result.SchoolWill, "AE": result.SchoolPsychic, "AO": result.SchoolAlchemy,
		"EH": result.SchoolSonic, "ER": result.SchoolVoid, "OY": result.SchoolPsychic,
		"UW": result.SchoolVoid, "XX": result.SchoolVoid, "": result.SchoolVoid,
	}
	for fam, want := range tests {
		if got := SchoolOf(fam); got != want {
			t.Errorf("SchoolOf(%q) = %s, want %s", fam, got, want)
		}
	}
}

func TestFeelLexiconIsCopy(t *testing.T) {
	lex := FeelLexicon()
	lex[result.FeelJoy][0] = "MUTATED"
	if FeelOf("JOY") != result.FeelJoy {
		t.Error("mutating the returned lexicon must not affect lookups")
	}
	if FeelOf("MUTATED") != result.FeelUnknown {
		t.Error("mutation leaked into lookups")
	}
	if len(FeelWords()) != 36 {
		t.Errorf("expected 36 lexicon words, got %d", len(FeelWords()))
	}
}

func TestBlendSchoolColor(t *testing.T) {
	if got := BlendSchoolColor(nil); got != SchoolColor(result.SchoolVoid) {
		t.Errorf("empty blend = %v", got)
	}
	if got := BlendSchoolColor(map[result.School]float64{result.SchoolWill: 3}); got != (RGB{255, 138, 0}) {
		t.Errorf("single school blend = %v", got)
	}
	got := BlendSchoolColor(map[result.School]float64{result.SchoolPsychic: 1, result.SchoolWill: 1})
	if got != (RGB{128, 184, 128}) {
		t.Errorf("even blend = %v", got)
	}
	if got := SchoolColor("NOPE"); got != SchoolColor(result.SchoolVoid) {
		t.Errorf("unknown school color = %v", got)
	}
}
