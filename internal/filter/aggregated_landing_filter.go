package filter

import (
	"github.com/rpattn/fishql/internal/dates"
	"github.com/rpattn/fishql/internal/model"
)

// AggregatedLandingFilter searches aggregated landings. It is flat: the
// backend input already takes bare ids and labels.
type AggregatedLandingFilter struct {
	DateRange
	ProgramLabel       string
	LocationID         *int
	ObservedLocationID *int
}

// AggregatedLandingFilterFromObject reads an aggregated landing filter. A
// nested location is accepted in place of locationId.
func AggregatedLandingFilterFromObject(src model.Object) *AggregatedLandingFilter {
	f := &AggregatedLandingFilter{
		DateRange:          readDateRange(src),
		ProgramLabel:       src.String("programLabel"),
		LocationID:         src.Int("locationId"),
		ObservedLocationID: src.Int("observedLocationId"),
	}
	if f.LocationID == nil {
		f.LocationID = model.RefID(model.ReferentialRefFromObject(src.Child("location")))
	}
	return f
}

// AsObject implements Filter. Both forms are the same.
func (f *AggregatedLandingFilter) AsObject(opts model.AsObjectOptions) model.Object {
	target := model.Object{}
	f.DateRange.writeTo(target)
	target.SetString("programLabel", f.ProgramLabel)
	target.SetInt("locationId", f.LocationID)
	target.SetInt("observedLocationId", f.ObservedLocationID)
	return target
}

// Equals compares the filters field by field. Dates are compared as
// instants and two absent dates are equal.
func (f *AggregatedLandingFilter) Equals(other *AggregatedLandingFilter) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.ProgramLabel == other.ProgramLabel &&
		model.SameInt(f.LocationID, other.LocationID) &&
		model.SameInt(f.ObservedLocationID, other.ObservedLocationID) &&
		f.DateRange.Equal(other.DateRange)
}

// BuildFilter implements Filter. The date range keeps aggregated landings
// with at least one activity in the period.
func (f *AggregatedLandingFilter) BuildFilter() []Predicate[*model.AggregatedLanding] {
	var predicates []Predicate[*model.AggregatedLanding]
	if f.ProgramLabel != "" {
		label := f.ProgramLabel
		predicates = append(predicates, guard(func(a *model.AggregatedLanding) bool {
			return model.LabelOf(a.Program) == label
		}))
	}
	if f.LocationID != nil {
		id := *f.LocationID
		predicates = append(predicates, guard(func(a *model.AggregatedLanding) bool {
			return model.IntEquals(model.RefID(a.Location), id)
		}))
	}
	if f.ObservedLocationID != nil {
		id := *f.ObservedLocationID
		predicates = append(predicates, guard(func(a *model.AggregatedLanding) bool {
			return model.IntEquals(a.ObservedLocationID, id)
		}))
	}
	if f.StartDate != nil || f.EndDate != nil {
		start := dates.Clone(f.StartDate)
		end := dates.Clone(f.EndDate)
		predicates = append(predicates, guard(func(a *model.AggregatedLanding) bool {
			for _, activity := range a.Activities {
				if activity.Date == nil {
					continue
				}
				if start != nil && activity.Date.Before(*start) {
					continue
				}
				if end != nil && !activity.Date.Before(dates.NextDay(*end)) {
					continue
				}
				return true
			}
			return false
		}))
	}
	return predicates
}

// IsEmpty implements Filter.
func (f *AggregatedLandingFilter) IsEmpty() bool {
	return len(f.BuildFilter()) == 0
}
