package classify

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/scholomance/pkg/scholomance/result"
)

var vowelToSchool = map[string]result.School{
	"A":  result.SchoolWill,
	"AA": result.SchoolWill,
	"AH": result.SchoolWill,
	"AE": result.SchoolPsychic,
	"AO": result.SchoolAlchemy,
	"AW": result.SchoolWill,
	"AY": result.SchoolPsychic,
	"EH": result.SchoolSonic,
	"ER": result.SchoolVoid,
	"EY": result.SchoolSonic,
	"IH": result.SchoolSonic,
	"IY": result.SchoolSonic,
	"OH": result.SchoolAlchemy,
	"OW": result.SchoolAlchemy,
	"OY": result.SchoolPsychic,
	"UH": result.SchoolVoid,
	"UW": result.SchoolVoid,
}

var runeLabels = map[string]string{
	"A":  "Ash",
	"AE": "Aether",
	"AO": "Omen",
	"AW": "Wyrd",
	"AY": "Aegis",
	"EH": "Echo",
	"ER": "Elder",
	"EY": "Eidolon",
	"IH": "Ichor",
	"IY": "Eon",
	"OH": "Oath",
	"OW": "Owl",
	"OY": "Oracle",
	"UH": "Umbral",
	"UW": "Umber",
}

// RGB is an 8-bit color triple.
type RGB [3]int

var schoolColors = map[result.School]RGB{
	result.SchoolVoid:    {161, 161, 170},
	result.SchoolPsychic: {0, 229, 255},
	result.SchoolAlchemy: {213, 0, 249},
	result.SchoolWill:    {255, 138, 0},
	result.SchoolSonic:   {101, 31, 255},
}

var feelLexicon = map[result.Feel][]string{
	result.FeelJoy:    {"JOY", "DELIGHT", "LOVE", "HAPPY", "GLAD", "BRIGHT"},
	result.FeelSorrow: {"SAD", "SORROW", "GRIEF", "MOURN", "TEAR", "WEEP"},
	result.FeelRage:   {"RAGE", "FURY", "ANGER", "WRATH", "HATE", "BLOOD"},
	result.FeelFear:   {"FEAR", "DREAD", "PANIC", "TERROR", "SHADE", "CHILL"},
	result.FeelAwe:    {"AWE", "WONDER", "MAJESTY", "VISION", "EPIC", "RELIC"},
	result.FeelDesire: {"DESIRE", "CRAVE", "HUNGER", "YEARN", "BURN", "LONG"},
}

var feelLookup = func() map[string]result.Feel {
	m := make(map[string]result.Feel)
	for feel, words := range feelLexicon {
		for _, w := range words {
			m[w] = feel
		}
	}
	return m
}()

// SchoolOf maps a vowel family to its school; unknown families are VOID.
func SchoolOf(vowelFamily string) result.School {
	if s, ok := vowelToSchool[vowelFamily]; ok {
		return s
	}
	return result.SchoolVoid
}

// FeelOf looks a normalized token up in the affect lexicon.
func FeelOf(token string) result.Feel {
	if f, ok := feelLookup[token]; ok {
		return f
	}
	return result.FeelUnknown
}

// FeelLexicon returns a copy of the affect lexicon.
func FeelLexicon() map[result.Feel][]string {
	out := make(map[result.Feel][]string, len(feelLexicon))
	for feel, words := range feelLexicon {
		out[feel] = append([]string(nil), words...)
	}
	return out
}

// FeelWords returns every lexicon word, sorted.
func FeelWords() []string {
	words := make([]string, 0, len(feelLookup))
	for w := range feelLookup {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// RuneLabel returns the display label for a vowel family, e.g. "Echo Rune".
func RuneLabel(vowelFamily string) string {
	if vowelFamily == "" {
		return "Rune"
	}
	if label, ok := runeLabels[vowelFamily]; ok {
		return label + " Rune"
	}
	return vowelFamily + " Rune"
}

// SchoolColor returns the base color of a school; unknown schools get
// the VOID color.
func SchoolColor(s result.School) RGB {
	if c, ok := schoolColors[s]; ok {
		return c
	}
	return schoolColors[result.SchoolVoid]
}

// BlendSchoolColor averages school colors by weight. Unknown schools and
// zero weights are ignored; an empty blend is VOID.
func BlendSchoolColor(weights map[result.School]float64) RGB {
	var total, r, g, b float64
	for _, s := range result.Schools {
		w := weights[s]
		if w == 0 {
			continue
		}
		c := schoolColors[s]
		total += w
		r += float64(c[0]) * w
		g += float64(c[1]) * w
		b += float64(c[2]) * w
	}
	if total == 0 {
		return schoolColors[result.SchoolVoid]
	}
	return RGB{int(math.Round(r / total)), int(math.Round(g / total)), int(math.Round(b / total))}
}

func vowelClass(vowelFamily string) string {
	if _, ok := vowelToSchool[vowelFamily]; !ok {
		vowelFamily = "UH"
	}
	return "vowel-" + strings.ToLower(vowelFamily)
}

func schoolClass(s result.School) string {
	return "school-" + strings.ToLower(string(s))
}

func feelChannelClass(f result.Feel) string {
	if f == result.FeelUnknown {
		return ""
	}
	return feelChipClass(f)
}

func feelChipClass(f result.Feel) string {
	return "feel-" + strings.ToLower(string(f))
}
