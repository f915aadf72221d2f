// Package matcher joins pipeline submissions to funding-ledger records by
// business name.
//
// Submission boards and funding ledgers are maintained by different people and
// rarely agree on exact naming, so matching runs through tiered string
// heuristics, strongest first:
//  1. Exact: cleaned names equal
//  2. Prefix: one cleaned name is a prefix of the other
//  3. Substring: one cleaned name contains the other
//  4. Fuzzy: smallest Levenshtein distance within the configured ceiling
//
// Assignment is greedy and one-to-one: each funding record is consumed by the
// first submission that claims it, in submission input order. Near-duplicate
// submissions can therefore contend for the same record and resolve by order;
// that nondeterminism is intentional and documented on Engine.MatchAll.
//
// Example usage:
//
//	engine := matcher.NewEngine(matcher.DefaultConfig())
//	result := engine.MatchAll(submissions, fundingRecords, nil)
package matcher

import (
	"fmt"
)

// Tier identifies which heuristic produced a match, in priority order
type Tier int

const (
	// TierOverride marks a manual force-bind supplied by the caller
	TierOverride Tier = iota

	// TierExact means the cleaned names were equal
	TierExact

	// TierPrefix means one cleaned name was a prefix of the other
	TierPrefix

	// TierSubstring means one cleaned name contained the other
	TierSubstring

	// TierFuzzy means the names were within the edit-distance ceiling
	TierFuzzy

	// TierNone means no heuristic produced an acceptable match
	TierNone
)

// String returns the string representation of Tier
func (t Tier) String() string {
	switch t {
	case TierOverride:
		return "Override"
	case TierExact:
		return "Exact"
	case TierPrefix:
		return "Prefix"
	case TierSubstring:
		return "Substring"
	case TierFuzzy:
		return "Fuzzy"
	default:
		return "None"
	}
}

// Confidence scores assigned by the non-fuzzy tiers
const (
	ConfidenceExact     = 100.0
	ConfidencePrefix    = 90.0
	ConfidenceSubstring = 75.0
)

// Config holds the thresholds controlling automatic matching and the looser
// candidate ranking used for manual review
type Config struct {
	// MinConfidence is the floor below which a match is rejected
	MinConfidence float64 `json:"min_confidence"`

	// FuzzyMaxDistance caps edit distance for the automatic fuzzy tier
	FuzzyMaxDistance int `json:"fuzzy_max_distance"`

	// CandidateMaxDistance caps edit distance when ranking review candidates
	CandidateMaxDistance int `json:"candidate_max_distance"`

	// CandidateFloor is the minimum score a review candidate may carry
	CandidateFloor float64 `json:"candidate_floor"`

	// MaxCandidates limits how many ranked candidates annotate a review item
	MaxCandidates int `json:"max_candidates"`
}

// DefaultConfig returns the thresholds used in production
func DefaultConfig() *Config {
	return &Config{
		MinConfidence:        50.0,
		FuzzyMaxDistance:     5,
		CandidateMaxDistance: 10,
		CandidateFloor:       20.0,
		MaxCandidates:        5,
	}
}

// Validate checks if the matching configuration is valid
func (c *Config) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return fmt.Errorf("min confidence must be between 0 and 100: %f", c.MinConfidence)
	}

	if c.FuzzyMaxDistance < 0 {
		return fmt.Errorf("fuzzy max distance cannot be negative: %d", c.FuzzyMaxDistance)
	}

	if c.CandidateMaxDistance < c.FuzzyMaxDistance {
		return fmt.Errorf("candidate max distance %d cannot be tighter than fuzzy max distance %d",
			c.CandidateMaxDistance, c.FuzzyMaxDistance)
	}

	if c.CandidateFloor < 0 || c.CandidateFloor > 100 {
		return fmt.Errorf("candidate floor must be between 0 and 100: %f", c.CandidateFloor)
	}

	if c.MaxCandidates <= 0 {
		return fmt.Errorf("max candidates must be positive: %d", c.MaxCandidates)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// String returns a human-readable description of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{MinConfidence: %.0f, FuzzyMaxDistance: %d, Candidates: %d within %d}",
		c.MinConfidence, c.FuzzyMaxDistance, c.MaxCandidates, c.CandidateMaxDistance)
}
