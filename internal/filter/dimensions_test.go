package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"salespulse/pkg/contracts/domain"
)

func TestEngine_Dimensions(t *testing.T) {
	e := NewEngine(DefaultConfig())

	dims := e.Dimensions(sampleRows())

	assert.Equal(t, []string{"Furniture", "Technology"}, dims.Categories)
	assert.Equal(t, []string{"Chairs", "Phones", "Tables"}, dims.SubCategories)
	assert.Equal(t, []string{"East", "South", "West"}, dims.Regions)
	assert.Equal(t, []string{"Consumer", "Corporate", "Home Office"}, dims.Segments)
	assert.Equal(t, "2024-01-10", dims.MinDate)
	assert.Equal(t, "2024-03-20", dims.MaxDate)
}

func TestEngine_Dimensions_SkipsEmptyValues(t *testing.T) {
	e := NewEngine(DefaultConfig())
	rows := []domain.SalesRecord{
		{OrderDate: date(2024, 1, 1), Category: "Furniture", Region: ""},
		{OrderDate: date(2024, 1, 2), Category: "", Region: "West"},
	}

	dims := e.Dimensions(rows)

	assert.Equal(t, []string{"Furniture"}, dims.Categories)
	assert.Equal(t, []string{"West"}, dims.Regions)
}

func TestEngine_Dimensions_Empty(t *testing.T) {
	e := NewEngine(DefaultConfig())

	dims := e.Dimensions(nil)

	assert.Empty(t, dims.Categories)
	assert.Empty(t, dims.MinDate)
	assert.Empty(t, dims.MaxDate)
}
