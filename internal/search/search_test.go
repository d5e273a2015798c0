package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/david/volunteer-board/internal/models"
)

func scenarioFeed() []models.EventRecord {
	return []models.EventRecord{
		{Title: "Beach Cleanup", Category: "Environment", Date: "2024-04-01"},
		{Title: "Library Help", Category: "Education", Date: "2024-04-02"},
	}
}

func sampleEvents() []models.EventRecord {
	return []models.EventRecord{
		{Title: "Food Bank Sorting", Description: "Pack boxes", Place: "Town Hall", Category: "Community", Target: "Grade 7", Date: "2024-03-10"},
		{Title: "Park Planting", Description: "Plant tulips", Place: "North Park", Category: "Environment", Target: "All", Date: "2024-03-11"},
		{Title: "Reading Buddies", Description: "Read with kids at the food bank café", Place: "Library", Category: "Education", Target: "Grade 8", Date: "2024-03-10"},
		{Title: "Arts Fair", Category: "Arts ", Date: "2024-03-12"},
		{Title: "Mural", Category: "Arts", Date: "2024-03-12"},
	}
}

func titles(records []models.EventRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Title)
	}
	return out
}

func TestFilter_EmptyCriteriaIsIdentity(t *testing.T) {
	records := sampleEvents()

	got := Filter(records, Criteria{})
	assert.Equal(t, records, got)

	got = Filter(records, NewCriteria("   ", "", ""))
	assert.Equal(t, records, got)
}

func TestFilter_IsOrderPreservingSubset(t *testing.T) {
	records := sampleEvents()

	got := Filter(records, NewCriteria("", "", "2024-03-10"))
	assert.Equal(t, []string{"Food Bank Sorting", "Reading Buddies"}, titles(got))

	// every result appears in the input, in increasing input position
	last := -1
	for _, ev := range got {
		idx := -1
		for i, in := range records {
			if in == ev && i > last {
				idx = i
				break
			}
		}
		require.NotEqual(t, -1, idx, "record %q not found after position %d", ev.Title, last)
		last = idx
	}
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	records := sampleEvents()

	got := Filter(records, Criteria{})
	got[0].Title = "changed"
	assert.Equal(t, "Food Bank Sorting", records[0].Title)
}

func TestFilter_KeywordIsCaseAndWhitespaceInsensitive(t *testing.T) {
	records := sampleEvents()

	spaced := Filter(records, NewCriteria("Food Bank", "", ""))
	joined := Filter(records, NewCriteria("foodbank", "", ""))
	upper := Filter(records, NewCriteria("FOODBANK", "", ""))

	assert.Equal(t, []string{"Food Bank Sorting", "Reading Buddies"}, titles(spaced))
	assert.Equal(t, spaced, joined)
	assert.Equal(t, spaced, upper)
}

func TestFilter_KeywordSearchesConcatenatedFields(t *testing.T) {
	records := sampleEvents()

	tests := []struct {
		name     string
		keyword  string
		expected []string
	}{
		{"Title", "planting", []string{"Park Planting"}},
		{"Description", "tulips", []string{"Park Planting"}},
		{"Place", "townhall", []string{"Food Bank Sorting"}},
		{"Category", "education", []string{"Reading Buddies"}},
		{"Target", "grade8", []string{"Reading Buddies"}},
		{"Across field boundary", "hallcommunity", []string{"Food Bank Sorting"}},
		{"Full-width space is whitespace", "food　bank", []string{"Food Bank Sorting", "Reading Buddies"}},
		{"No match", "skydiving", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, NewCriteria(tt.keyword, "", ""))
			assert.Equal(t, tt.expected, titles(got))
		})
	}
}

func TestFilter_FacetsAreExactCaseSensitiveUntrimmed(t *testing.T) {
	records := sampleEvents()

	assert.Equal(t, []string{"Mural"}, titles(Filter(records, NewCriteria("", "Arts", ""))))
	assert.Equal(t, []string{"Arts Fair"}, titles(Filter(records, NewCriteria("", "Arts ", ""))))
	assert.Empty(t, Filter(records, NewCriteria("", "arts", "")))
	assert.Empty(t, Filter(records, NewCriteria("", "", " 2024-03-12")))
}

func TestFilter_ConjunctionOfAllParts(t *testing.T) {
	records := sampleEvents()

	got := Filter(records, NewCriteria("food", "Education", "2024-03-10"))
	assert.Equal(t, []string{"Reading Buddies"}, titles(got))

	got = Filter(records, NewCriteria("food", "Education", "2024-03-11"))
	assert.Empty(t, got)
}

func TestFilter_EmptyResultIsNonNil(t *testing.T) {
	got := Filter(sampleEvents(), NewCriteria("nothing-matches", "", ""))
	require.NotNil(t, got)
	assert.Len(t, got, 0)

	got = Filter(nil, Criteria{})
	require.NotNil(t, got)
}

func TestScenarioA_Facets(t *testing.T) {
	facets := BuildFacetSet(scenarioFeed())

	assert.Equal(t, []string{"Education", "Environment"}, facets.Categories)
	assert.Equal(t, []string{"2024-04-01", "2024-04-02"}, facets.Dates)
}

func TestScenarioB_KeywordBeach(t *testing.T) {
	got := Filter(scenarioFeed(), NewCriteria("beach", "", ""))
	assert.Equal(t, []string{"Beach Cleanup"}, titles(got))
}

func TestScenarioC_CategoryExcludesKeywordMatch(t *testing.T) {
	got := Filter(scenarioFeed(), NewCriteria("beach", "Education", ""))
	assert.Empty(t, got)
}

func TestExtractFacets(t *testing.T) {
	records := []models.EventRecord{
		{Category: "Sports", Date: "2024-10-01"},
		{Category: "  Arts", Date: "2024-02-01"},
		{Category: "", Date: "   "},
		{Category: "Sports", Date: "2024-10-01"},
		{Category: "Arts ", Date: "2024-9-30"},
		{Category: "arts"},
	}

	assert.Equal(t, []string{"Arts", "Sports", "arts"}, ExtractFacets(records, FieldCategory))
	// lexical, not chronological
	assert.Equal(t, []string{"2024-02-01", "2024-10-01", "2024-9-30"}, ExtractFacets(records, FieldDate))
}

func TestExtractFacets_NoDuplicatesOrEmpties(t *testing.T) {
	records := sampleEvents()
	for _, field := range []Field{FieldTitle, FieldCategory, FieldDate, FieldPlace, FieldTarget, FieldTime} {
		got := ExtractFacets(records, field)
		require.NotNil(t, got)

		seen := map[string]bool{}
		for i, v := range got {
			assert.NotEmpty(t, v, "field %s", field)
			assert.False(t, seen[v], "duplicate %q in field %s", v, field)
			seen[v] = true
			if i > 0 {
				assert.Less(t, got[i-1], v, "field %s not ascending", field)
			}
		}
	}
}

func TestNormalizeKeyword(t *testing.T) {
	assert.Equal(t, "foodbank", NormalizeKeyword(" Food\tBank\n"))
	assert.Equal(t, "", NormalizeKeyword(" 　 "))
	assert.True(t, NewCriteria(" ", "", "").IsEmpty())
	assert.False(t, NewCriteria("", "", "2024-03-10").IsEmpty())
}
