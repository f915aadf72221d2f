package normalizer

import (
	"testing"

	"golang-mca-analytics/internal/models"
)

func createTestNormalizer() *Normalizer {
	return New(&ReferenceData{
		MasterList: []string{"AFN", "CAPITAL GURUS", "GLAZER/SAMSON", "FORWARD FINANCING", "RAPID ADVANCE"},
		Aliases: map[string]string{
			"CAPTIAL GURUS": "CAPITAL GURUS",
			"FWD FINANCING": "FORWARD FINANCING",
		},
	})
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"AFN", "ANF", 2},
		{"CAPITAL", "CAPTIAL", 2},
		{"GURU", "GURUS", 1},
	}

	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.expected {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestNormalizeEmpty(t *testing.T) {
	n := createTestNormalizer()

	for _, raw := range []string{"", "   ", "\t"} {
		if got := n.Normalize(raw); got != models.UnknownPartner {
			t.Errorf("Normalize(%q) = %q, want %q", raw, got, models.UnknownPartner)
		}
	}
}

func TestNormalizeCleanup(t *testing.T) {
	n := createTestNormalizer()

	tests := []struct {
		raw      string
		expected string
	}{
		{"AFN", "AFN"},
		{"  afn  ", "AFN"},
		{"capital   gurus", "CAPITAL GURUS"},
		{"Capital Gurús", "CAPITAL GURUS"},
	}

	for _, tt := range tests {
		if got := n.Normalize(tt.raw); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}

func TestNormalizeAlias(t *testing.T) {
	n := createTestNormalizer()

	// Known misspelling maps through the alias table, whatever the casing
	if got := n.Normalize(" captial gurus "); got != "CAPITAL GURUS" {
		t.Errorf("alias lookup = %q, want CAPITAL GURUS", got)
	}
	if got := n.Normalize("FWD Financing"); got != "FORWARD FINANCING" {
		t.Errorf("alias lookup = %q, want FORWARD FINANCING", got)
	}
}

func TestNormalizeFuzzySnap(t *testing.T) {
	n := createTestNormalizer()

	tests := []struct {
		raw      string
		expected string
	}{
		{"AFNN", "AFN"},                    // distance 1
		{"CAPITAL GURU", "CAPITAL GURUS"},  // distance 1
		{"RAPID ADVANCEE", "RAPID ADVANCE"}, // distance 1
	}

	for _, tt := range tests {
		if got := n.Normalize(tt.raw); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}

	// Beyond the snap distance the cleaned input stands as a new name
	if got := n.Normalize("TOTALLY DIFFERENT CO"); got != "TOTALLY DIFFERENT CO" {
		t.Errorf("distant name snapped unexpectedly: %q", got)
	}
}

func TestNormalizeFuzzyTieBreak(t *testing.T) {
	n := New(&ReferenceData{
		MasterList: []string{"ABD", "ABC"},
	})

	// "ABE" is distance 1 from both; the first entry in sorted order wins
	if got := n.Normalize("ABE"); got != "ABC" {
		t.Errorf("tie-break = %q, want ABC", got)
	}
}

func TestNormalizeSlashReorder(t *testing.T) {
	n := createTestNormalizer()

	a := n.Normalize("GLAZER/SAMSON")
	b := n.Normalize("SAMSON/GLAZER")
	if a != b {
		t.Errorf("slash pair orderings diverge: %q vs %q", a, b)
	}
	if a != "GLAZER/SAMSON" {
		t.Errorf("slash pair = %q, want GLAZER/SAMSON", a)
	}

	// Whitespace around the slash collapses too
	if got := n.Normalize("samson / glazer"); got != "GLAZER/SAMSON" {
		t.Errorf("spaced slash pair = %q, want GLAZER/SAMSON", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := createTestNormalizer()

	inputs := []string{
		"AFN", "  afn ", "captial gurus", "SAMSON/GLAZER",
		"AFNN", "NEW PARTNER LLC", "", "Capital Gurús",
	}

	for _, raw := range inputs {
		once := n.Normalize(raw)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeMergeGroups(t *testing.T) {
	n := createTestNormalizer()
	n.SetMergeGroups(map[string][]string{
		"AFN": {"RAPID ADVANCE"},
	})

	if got := n.Normalize("Rapid Advance"); got != "AFN" {
		t.Errorf("merge group = %q, want AFN", got)
	}
	if got := n.Normalize("AFN"); got != "AFN" {
		t.Errorf("merge target = %q, want AFN", got)
	}
}

func TestCorrectionsRecorded(t *testing.T) {
	n := createTestNormalizer()
	n.ResetCorrections()

	n.Normalize("AFN")            // no correction
	n.Normalize(" captial gurus ") // alias
	n.Normalize("AFNN")            // fuzzy

	corrections := n.Corrections()
	if len(corrections) != 2 {
		t.Fatalf("expected 2 corrections, got %d", len(corrections))
	}

	found := map[CorrectionReason]bool{}
	for _, c := range corrections {
		found[c.Reason] = true
	}
	if !found[ReasonAlias] {
		t.Error("expected an alias correction")
	}
	if !found[ReasonFuzzy] {
		t.Error("expected a fuzzy correction")
	}

	n.ResetCorrections()
	if len(n.Corrections()) != 0 {
		t.Error("expected corrections cleared after reset")
	}
}

func TestLoadReferenceDataMissingFile(t *testing.T) {
	ref, err := LoadReferenceData("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ref.MasterList) == 0 {
		t.Error("expected default master list")
	}
	if ref.Aliases["CAPTIAL GURUS"] != "CAPITAL GURUS" {
		t.Error("expected default alias table")
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"  hello  world  ", "HELLO WORLD"},
		{"Café", "CAFE"},
		{"ALREADY CLEAN", "ALREADY CLEAN"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Clean(tt.raw); got != tt.expected {
			t.Errorf("Clean(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}
