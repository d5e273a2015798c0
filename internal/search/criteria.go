package search

import (
	"strings"
	"unicode"
)

// Criteria is one combination of keyword and facet selections.
// Empty Category or Date means the facet is unset.
type Criteria struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// NewCriteria builds criteria from raw control values. The keyword is
// normalized; facet values are kept exactly as given.
func NewCriteria(keyword, category, date string) Criteria {
	return Criteria{
		Keyword:  NormalizeKeyword(keyword),
		Category: category,
		Date:     date,
	}
}

// IsEmpty reports whether no keyword and no facet is set.
func (c Criteria) IsEmpty() bool {
	return NormalizeKeyword(c.Keyword) == "" && c.Category == "" && c.Date == ""
}

// NormalizeKeyword lowercases s and removes every whitespace character,
// including ideographic spaces and stray byte order marks.
func NormalizeKeyword(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\uFEFF' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
