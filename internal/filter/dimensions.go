package filter

import (
	"sort"

	"salespulse/pkg/contracts/domain"
)

// Dimensions lists the distinct values of every filterable attribute plus
// the dataset's date span. The UI builds its filter widgets from this.
type Dimensions struct {
	Categories    []string `json:"categories"`
	SubCategories []string `json:"sub_categories"`
	Regions       []string `json:"regions"`
	Segments      []string `json:"segments"`
	MinDate       string   `json:"min_date,omitempty"`
	MaxDate       string   `json:"max_date,omitempty"`
}

// Dimensions extracts the distinct, sorted value set per dimension.
func (e *Engine) Dimensions(rows []domain.SalesRecord) Dimensions {
	categories := make(map[string]struct{})
	subCategories := make(map[string]struct{})
	regions := make(map[string]struct{})
	segments := make(map[string]struct{})

	for _, r := range rows {
		categories[r.Category] = struct{}{}
		subCategories[r.SubCategory] = struct{}{}
		regions[r.Region] = struct{}{}
		segments[r.Segment] = struct{}{}
	}

	d := Dimensions{
		Categories:    sortedKeys(categories),
		SubCategories: sortedKeys(subCategories),
		Regions:       sortedKeys(regions),
		Segments:      sortedKeys(segments),
	}

	for i, r := range rows {
		if i == 0 {
			d.MinDate = r.OrderDate.Format(e.dateFormat)
			d.MaxDate = r.OrderDate.Format(e.dateFormat)
			continue
		}
		if s := r.OrderDate.Format(e.dateFormat); s < d.MinDate {
			d.MinDate = s
		}
		if s := r.OrderDate.Format(e.dateFormat); s > d.MaxDate {
			d.MaxDate = s
		}
	}
	return d
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
