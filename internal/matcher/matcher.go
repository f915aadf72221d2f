package matcher

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"golang-mca-analytics/internal/models"
	"golang-mca-analytics/internal/normalizer"
)

// Engine performs submission-to-funding-record matching
type Engine struct {
	Config *Config
}

// Match pairs one submission with the funding record it consumed
type Match struct {
	Submission models.Submission     `json:"submission"`
	Record     *models.FundingRecord `json:"record"`
	Tier       Tier                  `json:"tier"`
	Confidence float64               `json:"confidence"`
	Distance   int                   `json:"distance,omitempty"`
}

// Candidate is a ranked funding record offered for manual review
type Candidate struct {
	Record     *models.FundingRecord `json:"record"`
	Tier       Tier                  `json:"tier"`
	Confidence float64               `json:"confidence"`
	Distance   int                   `json:"distance,omitempty"`
}

// ReviewItem is an eligible submission that found no acceptable match,
// annotated with ranked candidates to support a human override
type ReviewItem struct {
	Submission models.Submission `json:"submission"`
	Candidates []Candidate       `json:"candidates"`
}

// Overrides carries caller-supplied manual decisions. Bound submissions are
// force-matched to the named funding record; skipped submissions bypass
// automatic matching entirely. Both are keyed by submission name and supplied
// wholesale on each run.
type Overrides struct {
	Bind map[string]string `json:"bind"`
	Skip map[string]bool   `json:"skip"`
}

// Result is the complete outcome of a matching pass
type Result struct {
	// Enriched holds every input submission, in input order, with funding
	// fields populated where a match landed
	Enriched []models.EnrichedSubmission `json:"enriched"`

	Matches       []Match                 `json:"matches"`
	Unmatched     []ReviewItem            `json:"unmatched"`
	UnusedRecords []*models.FundingRecord `json:"unusedRecords"`
	Summary       Summary                 `json:"summary"`
}

// Summary provides aggregate statistics about a matching pass
type Summary struct {
	TotalSubmissions   int             `json:"totalSubmissions"`
	TotalRecords       int             `json:"totalRecords"`
	Eligible           int             `json:"eligible"`
	Matched            int             `json:"matched"`
	Unmatched          int             `json:"unmatched"`
	Skipped            int             `json:"skipped"`
	ByTier             map[string]int  `json:"byTier"`
	TotalMatchedAmount decimal.Decimal `json:"totalMatchedAmount"`
}

// NewEngine creates a matching engine with the specified configuration
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{Config: config}
}

// MatchAll matches submissions against funding records. Only Offered and
// Funded stages are eligible; earlier-stage submissions pass through enriched
// but are never matched and never reported as unmatched.
//
// Assignment is greedy in submission input order: when several near-duplicate
// submissions could claim one funding record, the first one processed wins.
// Callers needing a different resolution reorder the input or use Overrides.
func (e *Engine) MatchAll(subs []models.Submission, records []models.FundingRecord, overrides *Overrides) *Result {
	pool := make([]*poolEntry, len(records))
	for i := range records {
		pool[i] = &poolEntry{
			record:  &records[i],
			cleaned: CleanMatchName(records[i].DealName),
		}
	}

	result := &Result{
		Enriched: make([]models.EnrichedSubmission, 0, len(subs)),
		Summary: Summary{
			TotalSubmissions:   len(subs),
			TotalRecords:       len(records),
			ByTier:             make(map[string]int),
			TotalMatchedAmount: decimal.Zero,
		},
	}

	for _, sub := range subs {
		if overrides != nil && overrides.Skip[sub.Name] {
			result.Summary.Skipped++
			result.Enriched = append(result.Enriched, models.Enrich(sub, nil))
			continue
		}

		if overrides != nil {
			if target, ok := overrides.Bind[sub.Name]; ok {
				// Bound submissions count toward Eligible so Matched
				// can never exceed it.
				result.Summary.Eligible++
				e.applyBind(result, sub, target, pool)
				continue
			}
		}

		if !sub.StageCategory.MatchEligible() {
			result.Enriched = append(result.Enriched, models.Enrich(sub, nil))
			continue
		}

		result.Summary.Eligible++
		cleaned := CleanMatchName(sub.Name)

		if best := e.bestMatch(cleaned, pool, e.Config.FuzzyMaxDistance, e.Config.MinConfidence); best != nil {
			best.entry.consumed = true
			match := Match{
				Submission: sub,
				Record:     best.entry.record,
				Tier:       best.tier,
				Confidence: best.confidence,
				Distance:   best.distance,
			}
			e.recordMatch(result, match)
			continue
		}

		result.Summary.Unmatched++
		result.Unmatched = append(result.Unmatched, ReviewItem{
			Submission: sub,
			Candidates: e.rankCandidates(cleaned, pool),
		})
		result.Enriched = append(result.Enriched, models.Enrich(sub, nil))
	}

	for _, entry := range pool {
		if !entry.consumed {
			result.UnusedRecords = append(result.UnusedRecords, entry.record)
		}
	}

	return result
}

type poolEntry struct {
	record   *models.FundingRecord
	cleaned  string
	consumed bool
}

type scored struct {
	entry      *poolEntry
	tier       Tier
	confidence float64
	distance   int
}

// applyBind force-matches a submission to the named funding record. The bind
// consumes the record when it is still available; otherwise the submission
// passes through unenriched, since the human decision trumps re-running the
// automatic tiers.
func (e *Engine) applyBind(result *Result, sub models.Submission, target string, pool []*poolEntry) {
	cleanedTarget := CleanMatchName(target)

	for _, entry := range pool {
		if entry.consumed || entry.cleaned != cleanedTarget {
			continue
		}

		entry.consumed = true
		e.recordMatch(result, Match{
			Submission: sub,
			Record:     entry.record,
			Tier:       TierOverride,
			Confidence: ConfidenceExact,
		})
		return
	}

	result.Enriched = append(result.Enriched, models.Enrich(sub, nil))
}

func (e *Engine) recordMatch(result *Result, match Match) {
	result.Matches = append(result.Matches, match)
	result.Enriched = append(result.Enriched, models.Enrich(match.Submission, match.Record))
	result.Summary.Matched++
	result.Summary.ByTier[match.Tier.String()]++
	result.Summary.TotalMatchedAmount = result.Summary.TotalMatchedAmount.Add(match.Record.FundedAmount)
}

// bestMatch tries tiers in strict priority order against the unconsumed pool;
// the first tier that produces a hit wins. Within a tier, pool order decides.
func (e *Engine) bestMatch(cleaned string, pool []*poolEntry, maxDistance int, minConfidence float64) *scored {
	if cleaned == "" {
		return nil
	}

	for _, entry := range pool {
		if !entry.consumed && entry.cleaned == cleaned {
			return &scored{entry: entry, tier: TierExact, confidence: ConfidenceExact}
		}
	}

	for _, entry := range pool {
		if !entry.consumed && isPrefixPair(cleaned, entry.cleaned) {
			return &scored{entry: entry, tier: TierPrefix, confidence: ConfidencePrefix}
		}
	}

	for _, entry := range pool {
		if !entry.consumed && isSubstringPair(cleaned, entry.cleaned) {
			return &scored{entry: entry, tier: TierSubstring, confidence: ConfidenceSubstring}
		}
	}

	var best *scored
	for _, entry := range pool {
		if entry.consumed {
			continue
		}

		d := normalizer.Levenshtein(cleaned, entry.cleaned)
		if d > maxDistance {
			continue
		}

		if best == nil || d < best.distance {
			best = &scored{entry: entry, tier: TierFuzzy, confidence: fuzzyConfidence(d), distance: d}
		}
	}

	if best != nil && best.confidence >= minConfidence {
		return best
	}
	return nil
}

// rankCandidates scores the unconsumed pool with the looser review thresholds
// and returns the top candidates for a human to consider
func (e *Engine) rankCandidates(cleaned string, pool []*poolEntry) []Candidate {
	var candidates []Candidate

	for _, entry := range pool {
		if entry.consumed {
			continue
		}

		var c Candidate
		switch {
		case entry.cleaned == cleaned && cleaned != "":
			c = Candidate{Record: entry.record, Tier: TierExact, Confidence: ConfidenceExact}
		case isPrefixPair(cleaned, entry.cleaned):
			c = Candidate{Record: entry.record, Tier: TierPrefix, Confidence: ConfidencePrefix}
		case isSubstringPair(cleaned, entry.cleaned):
			c = Candidate{Record: entry.record, Tier: TierSubstring, Confidence: ConfidenceSubstring}
		default:
			d := normalizer.Levenshtein(cleaned, entry.cleaned)
			if d > e.Config.CandidateMaxDistance {
				continue
			}
			score := 100 - 10*float64(d)
			if score < e.Config.CandidateFloor {
				score = e.Config.CandidateFloor
			}
			c = Candidate{Record: entry.record, Tier: TierFuzzy, Confidence: score, Distance: d}
		}

		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	if len(candidates) > e.Config.MaxCandidates {
		candidates = candidates[:e.Config.MaxCandidates]
	}
	return candidates
}

// fuzzyConfidence maps edit distance to a confidence score, floored at 50
func fuzzyConfidence(distance int) float64 {
	score := 100 - 10*float64(distance)
	if score < 50 {
		return 50
	}
	return score
}

func isPrefixPair(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

func isSubstringPair(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

var (
	percentSuffixRe  = regexp.MustCompile(`\s*-?\s*\d+(\.\d+)?\s*%\s*$`)
	nonAlphanumericRe = regexp.MustCompile(`[^A-Z0-9 ]+`)
)

// CleanMatchName prepares a business name for comparison: uppercase, trailing
// fee-percent annotations removed ("Acme Corp - 2.0%" and "Acme Corp" clean
// identically), punctuation stripped, whitespace collapsed.
func CleanMatchName(name string) string {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = percentSuffixRe.ReplaceAllString(s, "")
	s = nonAlphanumericRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
