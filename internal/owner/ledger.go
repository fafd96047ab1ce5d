package owner

import (
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Origin names the document region a raw owner mention came from.
type Origin string

const (
	OriginCurrent    Origin = "current"
	OriginHistorical Origin = "historical"
	OriginExemption  Origin = "exemption"
)

// Mention is one unclassified name string pulled from a document region.
// Multiple mentions may refer to the same real owner; no identity is
// assumed across mentions.
type Mention struct {
	Name   string
	Origin Origin
	Date   string
}

// SaleRow is the owner-bearing slice of one sales-history row.
type SaleRow struct {
	Date  string
	Owner string
}

// Regions carries every owner-bearing region of one document.
type Regions struct {
	CurrentOwners    []string
	Sales            []SaleRow
	PortabilityOwner string
	ExemptionNames   []string
	// SaleDate is the parcel's single recorded sale date from the
	// property-detail block; it dates the current-owner mentions. When
	// absent, current owners stay out of the ledger.
	SaleDate string
}

// Ledger is the date-keyed ownership history of one parcel. Dates keep
// their insertion order so downstream numbering stays stable.
type Ledger struct {
	byDate *orderedmap.OrderedMap[string, []string]
}

// Dates returns the ledger's date keys in insertion order.
func (l *Ledger) Dates() []string {
	out := make([]string, 0, l.byDate.Len())
	for pair := l.byDate.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Owners returns the names recorded for a date, in list order.
func (l *Ledger) Owners(date string) []string {
	names, _ := l.byDate.Get(date)
	return names
}

// Len returns the number of date entries.
func (l *Ledger) Len() int { return l.byDate.Len() }

var reAmpersand = regexp.MustCompile(`\s*&\s*`)

// SplitJoint splits a raw name on "&" into independent mentions. Joint
// ownership is never modeled as a single compound name.
func SplitJoint(name string) []string {
	var out []string
	for _, part := range reAmpersand.Split(name, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BuildLedger aggregates the owner-bearing regions of one document into
// a date-keyed ledger plus the flat mention list in extraction order.
//
// Rules: sales rows are dated by their own transfer date; current-owner
// and portability mentions are dated by the parcel's recorded sale date
// (no date, no ledger entry); portability and exemption names already
// mentioned anywhere are not re-added; after assembly, blank names are
// dropped and dates whose list becomes empty are removed entirely.
func BuildLedger(r Regions) (*Ledger, []Mention) {
	byDate := orderedmap.New[string, []string]()
	var mentions []Mention

	seen := func(name string) bool {
		for _, m := range mentions {
			if m.Name == name {
				return true
			}
		}
		return false
	}

	for _, raw := range r.CurrentOwners {
		for _, n := range SplitJoint(raw) {
			mentions = append(mentions, Mention{Name: n, Origin: OriginCurrent})
		}
	}

	for _, row := range r.Sales {
		if row.Owner == "" {
			continue
		}
		for _, n := range SplitJoint(row.Owner) {
			mentions = append(mentions, Mention{Name: n, Origin: OriginHistorical, Date: row.Date})
			names, _ := byDate.Get(row.Date)
			byDate.Set(row.Date, append(names, n))
		}
	}

	// The portability calculator repeats the current owner; only a name
	// not yet mentioned is worth keeping. Comparison happens before the
	// "&" split, mirroring how the region is written.
	if r.PortabilityOwner != "" && !seen(r.PortabilityOwner) {
		for _, n := range SplitJoint(r.PortabilityOwner) {
			mentions = append(mentions, Mention{Name: n, Origin: OriginCurrent})
		}
	}

	for _, name := range r.ExemptionNames {
		if name == "" || seen(name) {
			continue
		}
		for _, n := range SplitJoint(name) {
			mentions = append(mentions, Mention{Name: n, Origin: OriginExemption})
		}
	}

	// Date the current-owner snapshot with the recorded sale date. This
	// replaces any historical entry already present at that date: the
	// current-owner block is the authoritative record for it.
	if r.SaleDate != "" {
		var current []string
		for _, m := range mentions {
			if m.Origin == OriginCurrent {
				current = append(current, m.Name)
			}
		}
		if len(current) > 0 {
			byDate.Set(r.SaleDate, current)
		}
	}

	// Final sweep: drop blank names, then drop dates left empty.
	for _, date := range keys(byDate) {
		names, _ := byDate.Get(date)
		kept := names[:0]
		for _, n := range names {
			if strings.TrimSpace(n) != "" {
				kept = append(kept, n)
			}
		}
		if len(kept) == 0 {
			byDate.Delete(date)
		} else {
			byDate.Set(date, kept)
		}
	}

	return &Ledger{byDate: byDate}, mentions
}

func keys(m *orderedmap.OrderedMap[string, []string]) []string {
	out := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
