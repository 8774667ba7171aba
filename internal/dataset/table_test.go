package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func TestTable_Len(t *testing.T) {
	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
	assert.Equal(t, 0, (&Table{}).Len())
	assert.Equal(t, 1, (&Table{Records: []domain.SalesRecord{testutil.Record(nil)}}).Len())
}

func TestTable_DateSpan(t *testing.T) {
	table := &Table{Records: []domain.SalesRecord{
		testutil.Record(func(r *domain.SalesRecord) { r.OrderDate = testutil.Date(2024, time.March, 10) }),
		testutil.Record(func(r *domain.SalesRecord) { r.OrderDate = testutil.Date(2024, time.January, 2) }),
		testutil.Record(func(r *domain.SalesRecord) { r.OrderDate = testutil.Date(2024, time.June, 30) }),
	}}

	min, max, ok := table.DateSpan()
	require.True(t, ok)
	assert.Equal(t, testutil.Date(2024, time.January, 2), min)
	assert.Equal(t, testutil.Date(2024, time.June, 30), max)

	_, _, ok = (&Table{}).DateSpan()
	assert.False(t, ok)
}

func TestFingerprintOf(t *testing.T) {
	path := testutil.WriteSalesCSV(t,
		"2024-03-15,Furniture,Chairs,West,Consumer,Chair,100,20,0.1,2",
	)

	fp, err := FingerprintOf(path)
	require.NoError(t, err)
	assert.NotZero(t, fp.Size)
	assert.False(t, fp.ModTime.IsZero())

	_, err = FingerprintOf(path + ".missing")
	assert.Error(t, err)
}
