package address

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/parcelgraph/internal/debug"
	"github.com/parcelgraph/internal/normalize"
)

// FuzzyThreshold is the similarity a fuzzy candidate must strictly exceed
// to be accepted.
const FuzzyThreshold = 0.85

// Method records how a candidate was selected.
type Method string

const (
	MethodExact    Method = "exact"
	MethodFuzzy    Method = "fuzzy"
	MethodFallback Method = "fallback"
)

// Match is the single winning candidate with its selection method and,
// for fuzzy matches, the similarity score.
type Match struct {
	Candidate Candidate
	Method    Method
	Score     float64
}

// Matcher resolves a parsed address against geocoded candidates.
type Matcher struct {
	Threshold float64
	Debug     bool
}

// NewMatcher returns a matcher with the default fuzzy threshold.
func NewMatcher() *Matcher {
	return &Matcher{Threshold: FuzzyThreshold}
}

// Resolve returns the best candidate or nil, trying stages in order:
// exact component equality, fuzzy similarity above the threshold, then
// first-candidate fallback. Candidates are always visited in input order
// so results stay deterministic; a fuzzy tie keeps the first-seen
// maximum. Nil means the candidate list was empty and the parcel's
// address-dependent processing should be skipped.
func (m *Matcher) Resolve(parsed Parsed, candidates []Candidate) *Match {
	if len(candidates) == 0 {
		return nil
	}

	// Stage 1: exact match on number, normalized street, and unit.
	for _, cand := range candidates {
		if cand.Number.String() == parsed.Number &&
			streetNorm(cand.Street) == streetNorm(parsed.Street) &&
			(parsed.Unit == "" || strings.EqualFold(cand.Unit.String(), parsed.Unit)) {
			debug.Output(m.Debug, "exact match: %s %s", cand.Number, cand.Street)
			return &Match{Candidate: cand, Method: MethodExact, Score: 1.0}
		}
	}

	// Stage 2: fuzzy match over "number street unit" on both sides.
	// Strictly-greater comparisons keep the first-seen maximum on ties
	// and reject anything at or below the threshold.
	var best *Match
	want := fuzzyKey(parsed.Number, parsed.Street, parsed.Unit)
	for _, cand := range candidates {
		score := Similarity(fuzzyKey(cand.Number.String(), cand.Street, cand.Unit.String()), want)
		debug.Output(m.Debug, "fuzzy %.3f: %s %s", score, cand.Number, cand.Street)
		if score > m.Threshold && (best == nil || score > best.Score) {
			best = &Match{Candidate: cand, Method: MethodFuzzy, Score: score}
		}
	}
	if best != nil {
		return best
	}

	// Stage 3: last-resort fallback, mostly for single-candidate lists.
	// No scoring guarantee.
	debug.Output(m.Debug, "fallback to first candidate")
	return &Match{Candidate: candidates[0], Method: MethodFallback}
}

// Similarity is the normalized sequence-match ratio between two strings,
// case-insensitive.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runes(strings.ToLower(a)), runes(strings.ToLower(b))).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func fuzzyKey(number, street, unit string) string {
	return fmt.Sprintf("%s %s %s", number, street, unit)
}

// streetNorm strips periods and commas, collapses whitespace, and
// lowercases, matching the exact-stage comparison contract.
func streetNorm(s string) string {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.ToLower(normalize.CollapseSpaces(s))
}
