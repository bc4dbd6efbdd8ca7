package teams

import (
	"sort"
	"strings"
)

// Team pairs an upstream team id with its tricode (e.g. 1610612738 / BOS).
type Team struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
}

// Normalize upper-cases and trims a tricode so comparisons ignore case.
func Normalize(abbr string) string {
	return strings.ToUpper(strings.TrimSpace(abbr))
}

// Set is a collection of normalized team abbreviations.
type Set map[string]struct{}

// NewSet builds a Set, skipping blank abbreviations.
func NewSet(abbrs ...string) Set {
	s := Set{}
	for _, abbr := range abbrs {
		s.Add(abbr)
	}
	return s
}

func (s Set) Add(abbr string) {
	if norm := Normalize(abbr); norm != "" {
		s[norm] = struct{}{}
	}
}

func (s Set) Has(abbr string) bool {
	_, ok := s[Normalize(abbr)]
	return ok
}

// Sorted returns the abbreviations in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for abbr := range s {
		out = append(out, abbr)
	}
	sort.Strings(out)
	return out
}
