package owner

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/parcelgraph/internal/normalize"
)

// Kind discriminates the two owner entity types.
type Kind string

const (
	KindPerson  Kind = "person"
	KindCompany Kind = "company"
)

// PersonName holds the decomposed components of a person's name. Empty
// string means the component is absent.
type PersonName struct {
	First  string
	Middle string
	Last   string
}

// Classified is one owner after classification: either a person with a
// decomposed name or a company with its styled name.
type Classified struct {
	Kind    Kind
	Person  PersonName
	Company string
}

// DefaultCompanyKeywords is the compiled-in classification policy:
// entity suffixes plus the charity and veteran-organization terms seen
// in this document corpus. Containment is substring-based on the
// uppercased name, so short keywords like CO and TR deliberately cast a
// wide net.
var DefaultCompanyKeywords = []string{
	"INC", "LLC", "LTD", "CORP", "CO", "FOUNDATION", "ALLIANCE",
	"RESCUE", "MISSION", "SOLUTIONS", "SERVICES", "SYSTEMS", "COUNCIL",
	"VETERANS", "FIRST RESPONDERS", "HEROES", "INITIATIVE",
	"ASSOCIATION", "GROUP", "TRUST", "TR",
}

// Classifier decides Person versus Company for raw ownership names.
// The keyword table is data, not control flow, so the policy can be
// swapped per run.
type Classifier struct {
	keywords []string
}

// NewClassifier returns a classifier with the default keyword set.
func NewClassifier() *Classifier {
	return &Classifier{keywords: DefaultCompanyKeywords}
}

// NewClassifierWithKeywords returns a classifier using the given
// keywords, uppercased.
func NewClassifierWithKeywords(keywords []string) *Classifier {
	upper := make([]string, len(keywords))
	for i, kw := range keywords {
		upper[i] = strings.ToUpper(kw)
	}
	return &Classifier{keywords: upper}
}

type keywordFile struct {
	CompanyKeywords []string `yaml:"company_keywords"`
}

// LoadClassifier reads a YAML keyword file and builds a classifier from
// it. An empty path returns the default classifier.
func LoadClassifier(path string) (*Classifier, error) {
	if path == "" {
		return NewClassifier(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("owner: read keywords: %w", err)
	}
	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("owner: parse keywords: %w", err)
	}
	if len(kf.CompanyKeywords) == 0 {
		return nil, fmt.Errorf("owner: keyword file %s defines no company_keywords", path)
	}
	return NewClassifierWithKeywords(kf.CompanyKeywords), nil
}

// IsCompany reports whether the raw name denotes a company: the
// uppercased name contains a policy keyword, or it ends with a trailing
// "&" (an artifact of truncated joint-ownership strings). Names matching
// no keyword default to Person; nothing is ever left unclassified.
func (c *Classifier) IsCompany(name string) bool {
	if name == "" {
		return false
	}
	upper := strings.ToUpper(name)
	for _, kw := range c.keywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return strings.HasSuffix(strings.TrimSpace(upper), "&")
}

// Classify turns one raw name into a Classified owner. Company names are
// title-cased; person names are decomposed via ParsePersonName.
func (c *Classifier) Classify(name string) Classified {
	if c.IsCompany(name) {
		return Classified{Kind: KindCompany, Company: normalize.TitleCase(name)}
	}
	return Classified{Kind: KindPerson, Person: ParsePersonName(name)}
}

// ParsePersonName decomposes a raw person name. The document convention
// is surname-first: two tokens mean LAST FIRST, three or more mean
// LAST FIRST MIDDLE..., and a single token is a first name only. All
// output tokens are title-cased.
func ParsePersonName(name string) PersonName {
	name = strings.TrimSpace(strings.ReplaceAll(name, "&", ""))
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return PersonName{}
	case 1:
		return PersonName{First: normalize.TitleCase(parts[0])}
	case 2:
		return PersonName{Last: normalize.TitleCase(parts[0]), First: normalize.TitleCase(parts[1])}
	default:
		middle := make([]string, 0, len(parts)-2)
		for _, p := range parts[2:] {
			middle = append(middle, normalize.TitleCase(p))
		}
		return PersonName{
			Last:   normalize.TitleCase(parts[0]),
			First:  normalize.TitleCase(parts[1]),
			Middle: strings.Join(middle, " "),
		}
	}
}
