package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFilterSelection_IsUnrestricted(t *testing.T) {
	assert.True(t, FilterSelection{}.IsUnrestricted())

	from := day(2024, 1, 1)
	tests := []FilterSelection{
		{Categories: []string{"Furniture"}},
		{SubCategories: []string{"Chairs"}},
		{Regions: []string{"West"}},
		{Segments: []string{"Consumer"}},
		{CustomerSearch: "gute"},
		{From: &from},
		{To: &from},
	}
	for _, sel := range tests {
		assert.False(t, sel.IsUnrestricted())
	}
}

func TestFilterSelection_Matches(t *testing.T) {
	record := SalesRecord{
		OrderDate:   day(2024, 3, 15),
		Category:    "Furniture",
		SubCategory: "Chairs",
		Region:      "West",
		Segment:     "Consumer",
	}

	from := day(2024, 3, 15)
	to := day(2024, 3, 15)
	before := day(2024, 3, 14)
	after := day(2024, 3, 16)

	tests := []struct {
		name string
		sel  FilterSelection
		want bool
	}{
		{"unrestricted", FilterSelection{}, true},
		{"matching category", FilterSelection{Categories: []string{"Furniture"}}, true},
		{"wrong category", FilterSelection{Categories: []string{"Technology"}}, false},
		{"one of several", FilterSelection{Regions: []string{"East", "West"}}, true},
		{"all dimensions", FilterSelection{
			Categories:    []string{"Furniture"},
			SubCategories: []string{"Chairs"},
			Regions:       []string{"West"},
			Segments:      []string{"Consumer"},
		}, true},
		{"one dimension fails", FilterSelection{
			Categories: []string{"Furniture"},
			Regions:    []string{"East"},
		}, false},
		{"case sensitive", FilterSelection{Categories: []string{"furniture"}}, false},
		{"range includes boundary", FilterSelection{From: &from, To: &to}, true},
		{"from after record", FilterSelection{From: &after}, false},
		{"to before record", FilterSelection{To: &before}, false},
		{"open-ended from", FilterSelection{From: &before}, true},
		{"open-ended to", FilterSelection{To: &after}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.Matches(record))
		})
	}
}

func TestFilterSelection_Matches_CustomerSearch(t *testing.T) {
	record := SalesRecord{
		OrderDate:    day(2024, 3, 15),
		Category:     "Furniture",
		CustomerID:   "CG-12520",
		CustomerName: "Claire Gute",
	}

	tests := []struct {
		name   string
		search string
		want   bool
	}{
		{"empty search is unrestricted", "", true},
		{"name substring", "gute", true},
		{"name substring mixed case", "CLAIRE", true},
		{"id substring", "12520", true},
		{"id prefix mixed case", "cg-", true},
		{"no match", "darrin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := FilterSelection{CustomerSearch: tt.search}
			assert.Equal(t, tt.want, sel.Matches(record))
		})
	}

	// The search composes with the other dimensions.
	sel := FilterSelection{Categories: []string{"Technology"}, CustomerSearch: "claire"}
	assert.False(t, sel.Matches(record))
}

func TestFilterSelection_Matches_CustomerSearchBlankColumns(t *testing.T) {
	record := SalesRecord{OrderDate: day(2024, 3, 15), Category: "Furniture"}

	assert.True(t, FilterSelection{}.Matches(record))
	assert.False(t, FilterSelection{CustomerSearch: "anyone"}.Matches(record),
		"a search term excludes rows without customer identity")
}

func TestSalesRecord_ProfitMargin(t *testing.T) {
	assert.InDelta(t, 0.25, SalesRecord{Sales: 100, Profit: 25}.ProfitMargin(), 1e-9)
	assert.InDelta(t, -0.1, SalesRecord{Sales: 100, Profit: -10}.ProfitMargin(), 1e-9)
	assert.Zero(t, SalesRecord{Sales: 0, Profit: 10}.ProfitMargin())
}
