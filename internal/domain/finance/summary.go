package finance

import (
	"sort"
	"time"

	"github.com/ferreteria/backend/internal/domain/shared"
	"github.com/ferreteria/backend/internal/domain/shared/valueobject"
)

// Granularity buckets a ledger series
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// ParseGranularity validates a bucket size; empty means day
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case "":
		return GranularityDay, nil
	case GranularityDay, GranularityMonth, GranularityYear:
		return g, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", "Granularity must be day, month or year")
}

// Truncate returns the start of the bucket containing t
func (g Granularity) Truncate(t time.Time) time.Time {
	switch g {
	case GranularityYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

// Totals aggregates income and expense
type Totals struct {
	Income  valueobject.Money
	Expense valueobject.Money
	Net     valueobject.Money
}

// Add folds one entry into the totals
func (t *Totals) Add(e LedgerEntry) {
	switch e.Type {
	case EntryTypeIncome:
		t.Income = t.Income.Add(e.Amount)
	case EntryTypeExpense:
		t.Expense = t.Expense.Add(e.Amount)
	}
	t.Net = t.Income.Subtract(t.Expense)
}

// Summarize totals every entry
func Summarize(entries []LedgerEntry) Totals {
	t := Totals{Income: valueobject.ZeroMoney(), Expense: valueobject.ZeroMoney(), Net: valueobject.ZeroMoney()}
	for _, e := range entries {
		t.Add(e)
	}
	return t
}

// SeriesPoint is the totals of one bucket
type SeriesPoint struct {
	Period time.Time
	Totals
}

// BuildSeries buckets entries by period in loc, ascending. Empty buckets are
// omitted.
func BuildSeries(entries []LedgerEntry, g Granularity, loc *time.Location) []SeriesPoint {
	buckets := make(map[time.Time][]LedgerEntry)
	for _, e := range entries {
		key := g.Truncate(e.OccurredAt.In(loc))
		buckets[key] = append(buckets[key], e)
	}
	points := make([]SeriesPoint, 0, len(buckets))
	for period, es := range buckets {
		points = append(points, SeriesPoint{Period: period, Totals: Summarize(es)})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Period.Before(points[j].Period)
	})
	return points
}
