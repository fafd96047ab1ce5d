package address

import (
	"regexp"
	"strings"
)

// Directional vocabulary for pre- and post-directionals. Two-letter forms
// must come first so the alternation never stops at a one-letter prefix.
const directionalPattern = `NE|NW|SE|SW|N|S|E|W`

// Street suffix vocabulary, long and abbreviated forms. Long forms first
// for the same reason.
var suffixForms = []string{
	"AVENUE", "BOULEVARD", "CIRCLE", "COURT", "DRIVE", "HIGHWAY",
	"LANE", "PARKWAY", "PLACE", "PLAZA", "ROAD", "STREET", "TERRACE",
	"TRAIL", "AVE", "BLVD", "CIR", "CT", "DR", "HWY", "LN", "PKWY",
	"PL", "PLZ", "RD", "ST", "TER", "TRL", "WAY",
}

// Grammar: NUMBER [PRE_DIR] STREET_NAME [SUFFIX] [POST_DIR] [UNIT].
// The street name is non-greedy so trailing suffix/directional/unit
// tokens are claimed by their own groups.
var grammar = regexp.MustCompile(
	`(?i)^(\d+)\s+((?:` + directionalPattern + `)\s+)?([A-Za-z0-9\s]+?)` +
		`(?:\s+(` + strings.Join(suffixForms, "|") + `))?` +
		`(?:\s+(` + directionalPattern + `))?` +
		`(?:\s+(\w+))?$`)

var directionalSet = map[string]bool{
	"N": true, "S": true, "E": true, "W": true,
	"NE": true, "NW": true, "SE": true, "SW": true,
}

var suffixSet = func() map[string]bool {
	set := make(map[string]bool, len(suffixForms))
	for _, s := range suffixForms {
		set[s] = true
	}
	return set
}()

// Parse tokenizes a free-text address string into structured components.
// When the grammar does not match it degrades to a best-effort split on
// the first whitespace: first token becomes the number and the remainder
// the street name. Parse never fails.
func Parse(raw string) Parsed {
	s := strings.TrimSpace(raw)
	m := grammar.FindStringSubmatch(s)
	if m == nil {
		parts := strings.SplitN(s, " ", 2)
		p := Parsed{Number: parts[0]}
		if len(parts) > 1 {
			p.Street = parts[1]
		}
		return p
	}
	return Parsed{
		Number:          m[1],
		PreDirectional:  strings.TrimSpace(m[2]),
		Street:          strings.TrimSpace(m[3]),
		Suffix:          m[4],
		PostDirectional: m[5],
		Unit:            m[6],
	}
}

// DecomposeStreet splits a candidate's street text into directional,
// name, and suffix components. The candidate's text is the source of
// truth once a match is chosen, so its decomposition (not the originally
// parsed fields) feeds the resolved address record.
func DecomposeStreet(street string) (preDir, name, suffix, postDir string) {
	tokens := strings.Fields(strings.ToUpper(street))
	if len(tokens) > 1 && directionalSet[tokens[0]] {
		preDir = tokens[0]
		tokens = tokens[1:]
	}
	if len(tokens) > 1 && directionalSet[tokens[len(tokens)-1]] {
		postDir = tokens[len(tokens)-1]
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) > 1 && suffixSet[tokens[len(tokens)-1]] {
		suffix = tokens[len(tokens)-1]
		tokens = tokens[:len(tokens)-1]
	}
	name = strings.Join(tokens, " ")
	return preDir, name, suffix, postDir
}
