package address

import (
	"testing"
)

func TestResolveExact(t *testing.T) {
	parsed := Parse("1605 S US HIGHWAY 1 3E")
	candidates := []Candidate{
		{Number: "1605", Street: "US HIGHWAY 1", Unit: "3E"},
	}

	m := NewMatcher().Resolve(parsed, candidates)
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Method != MethodExact {
		t.Errorf("method = %s, want exact", m.Method)
	}
}

func TestResolveExactNormalization(t *testing.T) {
	// "90-A" misses the grammar, so the fallback split leaves
	// "CLEMATIS ST." verbatim in the street. Punctuation and case on
	// either side must not break exact equality.
	parsed := Parse("90-A CLEMATIS ST.")
	candidates := []Candidate{
		{Number: "90-A", Street: "Clematis,  St"},
	}

	m := NewMatcher().Resolve(parsed, candidates)
	if m == nil || m.Method != MethodExact {
		t.Fatalf("normalized street should match exactly, got %+v", m)
	}
}

func TestExactWinsOverFuzzy(t *testing.T) {
	parsed := Parse("214 OCEAN BLVD")
	// The near-identical candidate comes first; the exact one last.
	// Exact matching must still win regardless of candidate order.
	candidates := []Candidate{
		{Number: "214", Street: "OCEANA"},
		{Number: "214", Street: "OCEAN"},
	}

	m := NewMatcher().Resolve(parsed, candidates)
	if m == nil || m.Method != MethodExact {
		t.Fatalf("exact candidate should win, got %+v", m)
	}
	if m.Candidate.Street != "OCEAN" {
		t.Errorf("wrong candidate chosen: %s", m.Candidate.Street)
	}
}

func TestResolveFuzzy(t *testing.T) {
	parsed := Parse("1605 S US HIGHWAY 1 3E")
	candidates := []Candidate{
		{Number: "9999", Street: "TOTALLY DIFFERENT RD", Unit: ""},
		{Number: "1605", Street: "US HIGHWAY 1 N", Unit: "3E"},
	}

	m := NewMatcher().Resolve(parsed, candidates)
	if m == nil {
		t.Fatal("expected a match")
	}
	if m.Method != MethodFuzzy {
		t.Fatalf("method = %s, want fuzzy", m.Method)
	}
	if m.Candidate.Number != "1605" {
		t.Errorf("wrong candidate: %+v", m.Candidate)
	}
	if m.Score <= FuzzyThreshold {
		t.Errorf("fuzzy score %.3f should strictly exceed %.2f", m.Score, FuzzyThreshold)
	}
}

func TestFuzzyNeverBelowThreshold(t *testing.T) {
	parsed := Parse("1605 S US HIGHWAY 1 3E")
	candidates := []Candidate{
		{Number: "22", Street: "BANYAN BLVD"},
		{Number: "710", Street: "ROSEMARY AVE"},
	}

	m := NewMatcher().Resolve(parsed, candidates)
	if m == nil {
		t.Fatal("non-empty candidate list should still fall back")
	}
	// Nothing scores above 0.85 here, so the fallback stage takes over.
	if m.Method != MethodFallback {
		t.Errorf("method = %s, want fallback", m.Method)
	}
	if m.Candidate.Number != "22" {
		t.Errorf("fallback should pick the first candidate in input order, got %+v", m.Candidate)
	}
}

func TestFuzzyTieKeepsFirstSeen(t *testing.T) {
	// Both candidates build the identical fuzzy key and therefore the
	// identical score; they differ only in a field outside the key. The
	// first-seen maximum must win. The "-X" number keeps the exact
	// stage out of the way while scoring well above the threshold.
	parsed := Parse("1605-X US HIGHWAY 1")
	candidates := []Candidate{
		{Number: "1605", Street: "US HIGHWAY 1", City: "FIRST"},
		{Number: "1605", Street: "US HIGHWAY 1", City: "SECOND"},
	}

	m := NewMatcher().Resolve(parsed, candidates)
	if m == nil || m.Method != MethodFuzzy {
		t.Fatalf("expected a fuzzy match, got %+v", m)
	}
	if m.Candidate.City.String() != "FIRST" {
		t.Errorf("tie should keep the first-seen maximum, got %s", m.Candidate.City)
	}
}

func TestResolveEmptyCandidates(t *testing.T) {
	if m := NewMatcher().Resolve(Parse("1 ANY ST"), nil); m != nil {
		t.Errorf("empty candidate list must resolve to nil, got %+v", m)
	}
}

func TestSimilarityCaseInsensitive(t *testing.T) {
	if got := Similarity("ABC", "abc"); got != 1.0 {
		t.Errorf("Similarity should be case-insensitive, got %.3f", got)
	}
	if got := Similarity("abc", "xyz"); got != 0.0 {
		t.Errorf("disjoint strings should score 0, got %.3f", got)
	}
}
