package search

import (
	"sort"
	"strings"

	"github.com/david/volunteer-board/internal/models"
)

// Field names an EventRecord field a facet can be drawn from.
type Field string

const (
	FieldTitle    Field = "title"
	FieldDate     Field = "date"
	FieldTime     Field = "time"
	FieldPlace    Field = "place"
	FieldTarget   Field = "target"
	FieldCategory Field = "category"
	FieldCapacity Field = "capacity"
	FieldDeadline Field = "deadline"
)

// Value returns the raw value of field f on ev, or "" for an unknown field.
func (f Field) Value(ev models.EventRecord) string {
	switch f {
	case FieldTitle:
		return ev.Title
	case FieldDate:
		return ev.Date
	case FieldTime:
		return ev.Time
	case FieldPlace:
		return ev.Place
	case FieldTarget:
		return ev.Target
	case FieldCategory:
		return ev.Category
	case FieldCapacity:
		return ev.Capacity
	case FieldDeadline:
		return ev.Deadline
	}
	return ""
}

// FacetSet holds the filter options derived from a full record set.
type FacetSet struct {
	Categories []string `json:"categories"`
	Dates      []string `json:"dates"`
}

// ExtractFacets returns the distinct, trimmed, non-empty values of field
// across records in byte-wise ascending order. Dates therefore sort
// chronologically only when written zero-padded, e.g. 2024-03-01.
func ExtractFacets(records []models.EventRecord, field Field) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, ev := range records {
		v := strings.TrimSpace(field.Value(ev))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// BuildFacetSet derives category and date facets from the full record set.
func BuildFacetSet(records []models.EventRecord) FacetSet {
	return FacetSet{
		Categories: ExtractFacets(records, FieldCategory),
		Dates:      ExtractFacets(records, FieldDate),
	}
}
