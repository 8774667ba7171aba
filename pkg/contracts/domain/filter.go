package domain

import (
	"strings"
	"time"
)

// FilterSelection carries the user-chosen constraints for one filter
// evaluation. An empty slice leaves that dimension unrestricted; nil From/To
// leave the date range open on that end. The range is inclusive on both ends.
// CustomerSearch is a free-text search matched case-insensitively against the
// customer ID or name; empty means no customer restriction.
type FilterSelection struct {
	Categories     []string   `json:"categories"`
	SubCategories  []string   `json:"sub_categories"`
	Regions        []string   `json:"regions"`
	Segments       []string   `json:"segments"`
	CustomerSearch string     `json:"customer_search,omitempty"`
	From           *time.Time `json:"from,omitempty"`
	To             *time.Time `json:"to,omitempty"`
}

// IsUnrestricted reports whether the selection passes every row through.
func (s FilterSelection) IsUnrestricted() bool {
	return len(s.Categories) == 0 &&
		len(s.SubCategories) == 0 &&
		len(s.Regions) == 0 &&
		len(s.Segments) == 0 &&
		s.CustomerSearch == "" &&
		s.From == nil && s.To == nil
}

// Matches reports whether a record satisfies every active restriction.
func (s FilterSelection) Matches(r SalesRecord) bool {
	if !memberOf(s.Categories, r.Category) {
		return false
	}
	if !memberOf(s.SubCategories, r.SubCategory) {
		return false
	}
	if !memberOf(s.Regions, r.Region) {
		return false
	}
	if !memberOf(s.Segments, r.Segment) {
		return false
	}
	if !matchesCustomer(s.CustomerSearch, r) {
		return false
	}
	if s.From != nil && r.OrderDate.Before(*s.From) {
		return false
	}
	if s.To != nil && r.OrderDate.After(*s.To) {
		return false
	}
	return true
}

// matchesCustomer reports whether the search term is a case-insensitive
// substring of the record's customer ID or customer name.
func matchesCustomer(search string, r SalesRecord) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(r.CustomerID), q) ||
		strings.Contains(strings.ToLower(r.CustomerName), q)
}

// memberOf treats an empty accepted list as "no restriction".
func memberOf(accepted []string, value string) bool {
	if len(accepted) == 0 {
		return true
	}
	for _, v := range accepted {
		if v == value {
			return true
		}
	}
	return false
}
