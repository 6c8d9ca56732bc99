package filter

import (
	"time"

	"github.com/rpattn/fishql/internal/dates"
	"github.com/rpattn/fishql/internal/model"
)

// DateRange is a period criterion. The start is inclusive, the end covers
// the whole end day: [StartDate, EndDate+1day).
type DateRange struct {
	StartDate *time.Time
	EndDate   *time.Time
}

func readDateRange(src model.Object) DateRange {
	return DateRange{
		StartDate: src.Date("startDate"),
		EndDate:   src.Date("endDate"),
	}
}

func (r DateRange) writeTo(target model.Object) {
	target.SetDate("startDate", r.StartDate)
	target.SetDate("endDate", r.EndDate)
}

// Equal compares both bounds with same-instant semantics.
func (r DateRange) Equal(other DateRange) bool {
	return dates.IsSame(r.StartDate, other.StartDate) && dates.IsSame(r.EndDate, other.EndDate)
}

// DateRangePredicates builds the period predicates. An entity spans
// [from, to]; for a point in time pass the same accessor twice. The start
// bound checks `to`, the end bound checks `from`, so an entity overlapping
// the range is kept. Entities missing the inspected date are rejected.
func DateRangePredicates[E any](r DateRange, from, to func(E) *time.Time) []Predicate[E] {
	var predicates []Predicate[E]
	if r.StartDate != nil {
		start := *r.StartDate
		predicates = append(predicates, guard(func(e E) bool {
			t := to(e)
			return t != nil && !start.After(*t)
		}))
	}
	if r.EndDate != nil {
		limit := dates.NextDay(*r.EndDate)
		predicates = append(predicates, guard(func(e E) bool {
			t := from(e)
			return t != nil && limit.After(*t)
		}))
	}
	return predicates
}
