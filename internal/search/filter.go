package search

import (
	"strings"

	"github.com/david/volunteer-board/internal/models"
)

// Haystack is the text a keyword is matched against: title, description,
// place, category and target concatenated in that order, normalized like
// the keyword.
func Haystack(ev models.EventRecord) string {
	return NormalizeKeyword(ev.Title + ev.Description + ev.Place + ev.Category + ev.Target)
}

// Matches reports whether ev satisfies every part of c.
func Matches(ev models.EventRecord, c Criteria) bool {
	if kw := NormalizeKeyword(c.Keyword); kw != "" && !strings.Contains(Haystack(ev), kw) {
		return false
	}
	if c.Category != "" && ev.Category != c.Category {
		return false
	}
	if c.Date != "" && ev.Date != c.Date {
		return false
	}
	return true
}

// Filter returns the records matching c in their original order. The
// result never shares a backing array with records and is non-nil even
// when nothing matches.
func Filter(records []models.EventRecord, c Criteria) []models.EventRecord {
	out := make([]models.EventRecord, 0, len(records))
	for _, ev := range records {
		if Matches(ev, c) {
			out = append(out, ev)
		}
	}
	return out
}
