package phoneme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strPtr(s string) *string { return &s }

func testLexicon(t *testing.T) *Lexicon {
	t.Helper()
	v2 := &V2Dict{
		VowelFamilies: []string{"A", "IY"},
		Words: map[string]V2Entry{
			"TEST":  {VowelFamily: "EH", Phonemes: []string{"T", "EH", "S", "T"}, Coda: strPtr("ST")},
			"HELLO": {VowelFamily: "OH", Phonemes: []string{"H", "E", "L", "OW"}, Coda: strPtr("L-OW")},
			"GLOW":  {VowelFamily: "OW", Phonemes: []string{"G", "L", "OW"}},
		},
	}
	v2.ConsonantGroups.CodaGroups = map[string][]string{
		"sibilant": {"ST", "SK"},
		"stop":     {"ST", "T", "K"},
	}
	cmu := map[string]CMUEntry{
		"COMPUTER": {
			Ph: []string{"K", "AH", "M", "P", "Y", "UW", "T", "ER"},
			VF: []string{"AH", "UW", "ER"},
			CD: []string{"T", "ER"},
		},
	}
	return NewLexicon(LexiconOptions{V2: v2, CMU: cmu})
}

func TestLexiconPrefersCMU(t *testing.T) {
	lex := testLexicon(t)
	got, ok := lex.Analyze("computer")
	if !ok {
		t.Fatal("expected analysis for COMPUTER")
	}
	want := Analysis{
		VowelFamily: "ER",
		Phonemes:    []string{"K", "AH", "M", "P", "Y", "UW", "T", "ER"},
		Coda:        "TER",
		RhymeKey:    "ER-TER",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CMU analysis mismatch (-want +got):\n%s", diff)
	}
}

func TestLexiconFallsBackToV2(t *testing.T) {
	lex := testLexicon(t)
	got, ok := lex.Analyze("HELLO")
	if !ok {
		t.Fatal("expected analysis for HELLO")
	}
	if got.VowelFamily != "OH" || got.Coda != "L-OW" || got.RhymeKey != "OH-L-OW" {
		t.Errorf("unexpected V2 analysis: %+v", got)
	}

	open, _ := lex.Analyze("GLOW")
	if open.RhymeKey != "OW-open" {
		t.Errorf("null coda should give an open rhyme key, got %q", open.RhymeKey)
	}
}

func TestLexiconGuessesUnknownWords(t *testing.T) {
	lex := testLexicon(t)
	got, ok := lex.Analyze("QUOKKA")
	if !ok {
		t.Fatal("unknown words should still be analyzed")
	}
	if got.VowelFamily != "A" {
		t.Errorf("expected family A from trailing vowel, got %q", got.VowelFamily)
	}
	if got.Coda != "" {
		t.Errorf("expected open syllable, got coda %q", got.Coda)
	}
	if got.RhymeKey != "A-open" {
		t.Errorf("expected A-open, got %q", got.RhymeKey)
	}
	if lex.IsKnown("QUOKKA") {
		t.Error("guessed words must not count as known")
	}
}

func TestLexiconRejectsEmptyInput(t *testing.T) {
	lex := testLexicon(t)
	for _, in := range []string{"", "123", "'"} {
		if _, ok := lex.Analyze(in); ok {
			t.Errorf("Analyze(%q) should report false", in)
		}
	}
}

func TestLexiconCachesAnalyses(t *testing.T) {
	lex := NewLexicon(LexiconOptions{CacheSize: 2})
	lex.Analyze("ONE")
	lex.Analyze("TWO")
	lex.Analyze("ONE")
	lex.Analyze("THREE")

	if got := lex.Stats().CachedWords; got != 2 {
		t.Errorf("cache should be bounded at 2, got %d", got)
	}
}

func TestLexiconIsKnown(t *testing.T) {
	lex := testLexicon(t)
	if !lex.IsKnown("test") || !lex.IsKnown("COMPUTER") {
		t.Error("dictionary words should be known")
	}
	if lex.IsKnown("ZEBRA") {
		t.Error("ZEBRA is not in either dictionary")
	}
}

func TestCodaGroupsSortedAndCopied(t *testing.T) {
	lex := testLexicon(t)
	got := lex.CodaGroupsOf("ST")
	if diff := cmp.Diff([]string{"sibilant", "stop"}, got); diff != "" {
		t.Errorf("CodaGroupsOf mismatch (-want +got):\n%s", diff)
	}
	got[0] = "mutated"
	if lex.CodaGroupsOf("ST")[0] != "sibilant" {
		t.Error("CodaGroupsOf must return a copy")
	}
	if lex.CodaGroupsOf("") != nil {
		t.Error("empty coda has no groups")
	}
}

func TestCheckCodaMutation(t *testing.T) {
	lex := testLexicon(t)
	if !lex.CheckCodaMutation("ST", "SK") {
		t.Error("ST and SK share the sibilant group")
	}
	if lex.CheckCodaMutation("SK", "T") {
		t.Error("SK and T share no group")
	}
}

func TestCodaGroupsOverride(t *testing.T) {
	v2 := &V2Dict{}
	v2.ConsonantGroups.CodaGroups = map[string][]string{"old": {"ST"}}
	lex := NewLexicon(LexiconOptions{V2: v2, CodaGroups: map[string][]string{"nasal": {"NG"}}})

	if len(lex.CodaGroupsOf("ST")) != 0 {
		t.Error("override should replace V2 groups")
	}
	if diff := cmp.Diff([]string{"nasal"}, lex.CodaGroupsOf("NG")); diff != "" {
		t.Errorf("override groups mismatch:\n%s", diff)
	}
}

func TestGuess(t *testing.T) {
	tests := []struct {
		word string
		want Analysis
	}{
		{"MAGIC", Analysis{VowelFamily: "IH", Phonemes: []string{"M", "A", "G", "I", "C"}, Coda: "C", RhymeKey: "IH-C"}},
		{"RAIN", Analysis{VowelFamily: "AY", Phonemes: []string{"R", "AI", "N"}, Coda: "N", RhymeKey: "AY-N"}},
		{"MOON", Analysis{VowelFamily: "UW", Phonemes: []string{"M", "OO", "N"}, Coda: "N", RhymeKey: "UW-N"}},
		{"QUEUE", Analysis{VowelFamily: "UH", Phonemes: []string{"Q", "UE", "UE"}, RhymeKey: "UH-open"}},
		{"RHYTHM", Analysis{VowelFamily: "UH", Phonemes: []string{"R", "H", "Y", "T", "H", "M"}, RhymeKey: "UH-open"}},
		{"don't", Analysis{VowelFamily: "OH", Phonemes: []string{"D", "O", "N", "T"}, Coda: "NT", RhymeKey: "OH-NT"}},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Guess(tt.word)); diff != "" {
				t.Errorf("Guess(%q) mismatch (-want +got):\n%s", tt.word, diff)
			}
		})
	}
}

func TestGuessDeterministic(t *testing.T) {
	a := Guess("LANTERN")
	b := Guess("LANTERN")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("Guess not deterministic:\n%s", diff)
	}
}

func TestNone(t *testing.T) {
	var d Dictionary = None{}
	if _, ok := d.Analyze("TEST"); ok {
		t.Error("None never analyzes")
	}
	if d.IsKnown("TEST") || d.CodaGroupsOf("ST") != nil {
		t.Error("None knows nothing")
	}
}

func TestLoaders(t *testing.T) {
	dir := t.TempDir()

	v2Path := filepath.Join(dir, "v2.json")
	os.WriteFile(v2Path, []byte(`{
		"vowel_families": ["EH"],
		"words": {"TEST": {"vowelFamily": "EH", "phonemes": ["T","EH","S","T"], "coda": "ST"}},
		"consonant_groups": {"coda_groups": {"sibilant": ["ST"]}}
	}`), 0644)

	cmuPath := filepath.Join(dir, "cmu.json")
	os.WriteFile(cmuPath, []byte(`{"FEAR": {"ph": ["F","IY","R"], "vf": ["IY"], "cd": ["R"]}}`), 0644)

	groupsPath := filepath.Join(dir, "groups.yaml")
	os.WriteFile(groupsPath, []byte("coda_groups:\n  liquid: [R, L]\n"), 0644)

	v2, err := LoadV2(v2Path)
	if err != nil {
		t.Fatalf("LoadV2: %v", err)
	}
	if v2.Words["TEST"].Coda == nil || *v2.Words["TEST"].Coda != "ST" {
		t.Errorf("unexpected V2 entry: %+v", v2.Words["TEST"])
	}

	cmu, err := LoadCMU(cmuPath)
	if err != nil {
		t.Fatalf("LoadCMU: %v", err)
	}
	if len(cmu["FEAR"].Ph) != 3 {
		t.Errorf("unexpected CMU entry: %+v", cmu["FEAR"])
	}

	groups, err := LoadCodaGroups(groupsPath)
	if err != nil {
		t.Fatalf("LoadCodaGroups: %v", err)
	}
	if diff := cmp.Diff([]string{"R", "L"}, groups["liquid"]); diff != "" {
		t.Errorf("coda groups mismatch:\n%s", diff)
	}

	if _, err := LoadV2(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should error")
	}
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	if _, err := LoadCMU(bad); err == nil {
		t.Error("malformed JSON should error")
	}
}
