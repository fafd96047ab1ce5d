package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Currency strings in the source tables carry dollar signs and thousands
// separators ("$1,250,000"). Anything that still fails to parse after
// stripping those becomes nil rather than an error.
func ParseCurrency(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// NonZeroAmount maps a zero monetary value to nil. The source tables use
// zero to mean "not reported", so downstream records carry null instead.
func NonZeroAmount(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}

var (
	reUSDate  = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ISODate converts document-native MM/DD/YYYY dates to YYYY-MM-DD.
// Dates already in ISO form pass through; anything else is returned
// verbatim so callers can still compare raw strings for equality.
func ISODate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if m := reUSDate.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[1] + "-" + m[2]
	}
	if reISODate.MatchString(s) {
		return s
	}
	return s
}

// SameDate reports whether two date strings refer to the same day after
// both sides pass through the identical ISODate normalization.
func SameDate(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return ISODate(a) == ISODate(b)
}

// TitleCase uppercases the first letter of every run of letters and
// lowercases the rest, so "SMITH-JONES" becomes "Smith-Jones" and
// "O'BRIEN" becomes "O'Brien".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}

// CollapseSpaces trims the string and folds internal whitespace runs to
// single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
