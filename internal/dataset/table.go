// Package dataset turns the raw retail sales CSV into the canonical
// in-memory table every filter evaluation reads from. Parsing and cleaning
// happen exactly once here; downstream packages receive well-typed records
// and never re-check column types.
package dataset

import (
	"os"
	"time"

	"salespulse/pkg/contracts/domain"
)

// Table is the cleaned, deduplicated, type-correct dataset. It is immutable
// once built: refreshes produce a new Table and swap the pointer, so a Table
// held by a reader never changes underneath it.
type Table struct {
	Records     []domain.SalesRecord
	Source      string
	LoadedAt    time.Time
	Fingerprint Fingerprint

	// Cleaning counters, for log visibility into silent data loss.
	DroppedDates int
	Duplicates   int
}

// Len returns the number of canonical rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// DateSpan returns the earliest and latest order dates in the table.
// ok is false for an empty table.
func (t *Table) DateSpan() (min, max time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = t.Records[0].OrderDate, t.Records[0].OrderDate
	for _, r := range t.Records[1:] {
		if r.OrderDate.Before(min) {
			min = r.OrderDate
		}
		if r.OrderDate.After(max) {
			max = r.OrderDate
		}
	}
	return min, max, true
}

// Fingerprint identifies a source file revision. The cache reloads when the
// fingerprint of the file on disk no longer matches the loaded table's.
type Fingerprint struct {
	ModTime time.Time
	Size    int64
}

// FingerprintOf stats the source file and returns its current fingerprint.
func FingerprintOf(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint{ModTime: info.ModTime(), Size: info.Size()}, nil
}
