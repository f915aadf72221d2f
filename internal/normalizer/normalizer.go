// Package normalizer canonicalizes free-text partner and ISO names.
//
// Spreadsheet exports carry the same partner under many spellings: extra
// whitespace, typos, reordered "A/B" co-broker pairs. The normalizer maps all
// of them onto a closed vocabulary so grouping and matching downstream operate
// on consistent identities.
//
// The algorithm, in order:
//  1. Empty input collapses to the UNKNOWN sentinel.
//  2. Cleanup: trim, uppercase, strip diacritics, collapse whitespace.
//  3. A single "A/B" pair is reordered alphabetically so both orderings
//     normalize identically.
//  4. Alias-table lookup replaces known misspellings with their canonical form.
//  5. Anything still outside the master list snaps to the nearest master entry
//     within Levenshtein distance 2; otherwise the cleaned text stands as a
//     new canonical name.
//
// Every correction is recorded for the audit-trail view.
package normalizer

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"golang-mca-analytics/internal/models"
)

// MaxSnapDistance is the largest edit distance at which a cleaned name snaps
// to a master-list entry.
const MaxSnapDistance = 2

// CorrectionReason identifies which normalization step changed a name
type CorrectionReason string

const (
	ReasonCleaned CorrectionReason = "cleaned"
	ReasonSlash   CorrectionReason = "slash_reorder"
	ReasonAlias   CorrectionReason = "alias"
	ReasonFuzzy   CorrectionReason = "fuzzy"
	ReasonMerge   CorrectionReason = "merge_group"
)

// Correction records one original-to-normalized mapping for the audit trail
type Correction struct {
	Original   string           `json:"original"`
	Normalized string           `json:"normalized"`
	Reason     CorrectionReason `json:"reason"`
}

// Normalizer canonicalizes names against a master list and alias table.
// Safe for concurrent Normalize calls; the corrections log is mutex-guarded.
type Normalizer struct {
	masterList []string
	masterSet  map[string]bool
	aliases    map[string]string
	merges     map[string]string

	mu          sync.Mutex
	corrections []Correction
}

// New creates a Normalizer from reference data. The master list is cleaned,
// deduplicated, and sorted at construction; sorting fixes the tie-break order
// when two master entries are equidistant from an input (lowest index wins).
func New(ref *ReferenceData) *Normalizer {
	if ref == nil {
		ref = DefaultReferenceData()
	}

	seen := make(map[string]bool)
	var master []string
	for _, name := range ref.MasterList {
		cleaned := Clean(name)
		if cleaned == "" || cleaned == models.UnknownPartner || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		master = append(master, cleaned)
	}
	sort.Strings(master)

	aliases := make(map[string]string, len(ref.Aliases))
	for from, to := range ref.Aliases {
		aliases[Clean(from)] = Clean(to)
	}

	return &Normalizer{
		masterList: master,
		masterSet:  seen,
		aliases:    aliases,
		merges:     make(map[string]string),
	}
}

// SetMergeGroups installs caller-supplied partner merge groupings
// (canonical name -> raw names to combine). Groupings are supplied wholesale
// on each call; previous groupings are discarded.
func (n *Normalizer) SetMergeGroups(groups map[string][]string) {
	merges := make(map[string]string)
	for canonical, raws := range groups {
		target := Clean(canonical)
		if target == "" {
			continue
		}
		for _, raw := range raws {
			if cleaned := Clean(raw); cleaned != "" {
				merges[cleaned] = target
			}
		}
	}
	n.merges = merges
}

// Normalize canonicalizes a raw partner/ISO name. It never fails: unmatched
// input survives as its cleaned form, and empty input becomes UNKNOWN.
// Idempotent for any string that survives the fuzzy step unchanged.
func (n *Normalizer) Normalize(raw string) string {
	cleaned := Clean(raw)
	if cleaned == "" {
		return models.UnknownPartner
	}

	result := cleaned
	reason := ReasonCleaned

	if reordered := reorderSlashPair(result); reordered != result {
		result = reordered
		reason = ReasonSlash
	}

	if merged, ok := n.merges[result]; ok {
		result = merged
		reason = ReasonMerge
	} else if alias, ok := n.aliases[result]; ok {
		result = alias
		reason = ReasonAlias
	} else if !n.masterSet[result] {
		if snapped, ok := n.snapToMaster(result); ok {
			result = snapped
			reason = ReasonFuzzy
		}
	}

	if result != strings.TrimSpace(raw) {
		n.record(Correction{Original: raw, Normalized: result, Reason: reason})
	}

	return result
}

// snapToMaster finds the master entry with minimum edit distance. Ties keep
// the first entry in sorted list order.
func (n *Normalizer) snapToMaster(name string) (string, bool) {
	best := ""
	bestDistance := MaxSnapDistance + 1

	for _, candidate := range n.masterList {
		if d := Levenshtein(name, candidate); d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}

	if bestDistance <= MaxSnapDistance {
		return best, true
	}
	return "", false
}

// Corrections returns a copy of the recorded audit trail
func (n *Normalizer) Corrections() []Correction {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Correction, len(n.corrections))
	copy(out, n.corrections)
	return out
}

// ResetCorrections clears the audit trail, typically between analysis runs
func (n *Normalizer) ResetCorrections() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.corrections = nil
}

// MasterList returns the sorted canonical vocabulary
func (n *Normalizer) MasterList() []string {
	out := make([]string, len(n.masterList))
	copy(out, n.masterList)
	return out
}

func (n *Normalizer) record(c Correction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.corrections = append(n.corrections, c)
}

// Clean trims, uppercases, strips diacritics, and collapses internal
// whitespace runs to single spaces
func Clean(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = stripDiacritics(s)
	return strings.Join(strings.Fields(s), " ")
}

// stripDiacritics removes combining marks after NFD decomposition, so
// "Peña" and "Pena" clean to the same form
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// reorderSlashPair normalizes a single "A/B" co-broker pair: spaces around the
// slash are removed and the two sides are ordered alphabetically, so "A / B"
// and "B/A" produce the same name. Names with more than one slash are left
// alone.
func reorderSlashPair(name string) string {
	if strings.Count(name, "/") != 1 {
		return name
	}

	parts := strings.SplitN(name, "/", 2)
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])
	if left == "" || right == "" {
		return name
	}

	if right < left {
		left, right = right, left
	}
	return left + "/" + right
}
