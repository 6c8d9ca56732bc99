package filter

import (
	"time"

	"github.com/rpattn/fishql/internal/model"
)

// LandingFilter searches landings.
type LandingFilter struct {
	RootDataCriteria
	DateRange
	Location           *model.ReferentialRef
	Vessel             *model.VesselSnapshot
	ExcludeVesselIDs   []int
	ObservedLocationID *int
	TripID             *int
	StrategyLabels     []string
}

// LandingFilterFromObject reads a landing filter.
func LandingFilterFromObject(src model.Object) *LandingFilter {
	return &LandingFilter{
		RootDataCriteria:   readRootDataCriteria(src),
		DateRange:          readDateRange(src),
		Location:           readRefCriterion(src, "location", "locationId", ""),
		Vessel:             readVesselCriterion(src),
		ExcludeVesselIDs:   src.Ints("excludeVesselIds"),
		ObservedLocationID: src.Int("observedLocationId"),
		TripID:             src.Int("tripId"),
		StrategyLabels:     src.Strings("strategyLabels"),
	}
}

// AsObject implements Filter.
func (f *LandingFilter) AsObject(opts model.AsObjectOptions) model.Object {
	target := model.Object{}
	f.RootDataCriteria.writeTo(target, opts)
	f.DateRange.writeTo(target)
	writeRefCriterion(target, f.Location, "location", "locationId", opts)
	writeVesselCriterion(target, f.Vessel, opts)
	target.SetInts("excludeVesselIds", f.ExcludeVesselIDs)
	target.SetInt("observedLocationId", f.ObservedLocationID)
	target.SetInt("tripId", f.TripID)
	target.SetStrings("strategyLabels", f.StrategyLabels)
	return target
}

// BuildFilter implements Filter.
func (f *LandingFilter) BuildFilter() []Predicate[*model.Landing] {
	predicates := RootDataPredicates(f.RootDataCriteria, func(l *model.Landing) *model.RootDataFields {
		return &l.RootDataFields
	})
	if f.ObservedLocationID != nil {
		id := *f.ObservedLocationID
		predicates = append(predicates, guard(func(l *model.Landing) bool {
			return model.IntEquals(l.ObservedLocationID, id)
		}))
	}
	if f.TripID != nil {
		id := *f.TripID
		predicates = append(predicates, guard(func(l *model.Landing) bool {
			return model.IntEquals(l.TripID, id)
		}))
	}
	if model.IsNotEmptyRef(f.Location) {
		id := *f.Location.ID
		predicates = append(predicates, guard(func(l *model.Landing) bool {
			return model.IntEquals(model.RefID(l.Location), id)
		}))
	}
	if vesselID := model.VesselID(f.Vessel); vesselID != nil {
		id := *vesselID
		predicates = append(predicates, guard(func(l *model.Landing) bool {
			return model.IntEquals(model.VesselID(l.Vessel), id)
		}))
	}
	if len(f.ExcludeVesselIDs) > 0 {
		excluded := append([]int(nil), f.ExcludeVesselIDs...)
		predicates = append(predicates, guard(func(l *model.Landing) bool {
			return !containsInt(excluded, model.VesselID(l.Vessel))
		}))
	}
	if len(f.StrategyLabels) > 0 {
		labels := append([]string(nil), f.StrategyLabels...)
		predicates = append(predicates, guard(func(l *model.Landing) bool {
			return containsString(labels, l.StrategyLabel())
		}))
	}
	dateTime := func(l *model.Landing) *time.Time { return l.DateTime }
	return append(predicates, DateRangePredicates(f.DateRange, dateTime, dateTime)...)
}

// IsEmpty implements Filter.
func (f *LandingFilter) IsEmpty() bool {
	return len(f.BuildFilter()) == 0
}
