package filter

import (
	"time"

	"github.com/rpattn/fishql/internal/model"
)

// TripFilter searches trips. The location matches the departure or the
// return location.
type TripFilter struct {
	RootDataCriteria
	DateRange
	Vessel   *model.VesselSnapshot
	Location *model.ReferentialRef
}

// TripFilterFromObject reads a trip filter.
func TripFilterFromObject(src model.Object) *TripFilter {
	return &TripFilter{
		RootDataCriteria: readRootDataCriteria(src),
		DateRange:        readDateRange(src),
		Vessel:           readVesselCriterion(src),
		Location:         readRefCriterion(src, "location", "locationId", ""),
	}
}

// AsObject implements Filter.
func (f *TripFilter) AsObject(opts model.AsObjectOptions) model.Object {
	target := model.Object{}
	f.RootDataCriteria.writeTo(target, opts)
	f.DateRange.writeTo(target)
	writeVesselCriterion(target, f.Vessel, opts)
	writeRefCriterion(target, f.Location, "location", "locationId", opts)
	return target
}

// BuildFilter implements Filter.
func (f *TripFilter) BuildFilter() []Predicate[*model.Trip] {
	predicates := RootDataPredicates(f.RootDataCriteria, func(t *model.Trip) *model.RootDataFields {
		return &t.RootDataFields
	})
	if vesselID := model.VesselID(f.Vessel); vesselID != nil {
		id := *vesselID
		predicates = append(predicates, guard(func(t *model.Trip) bool {
			return model.IntEquals(model.VesselID(t.Vessel), id)
		}))
	}
	if model.IsNotEmptyRef(f.Location) {
		id := *f.Location.ID
		predicates = append(predicates, guard(func(t *model.Trip) bool {
			return model.IntEquals(model.RefID(t.DepartureLocation), id) ||
				model.IntEquals(model.RefID(t.ReturnLocation), id)
		}))
	}
	return append(predicates, DateRangePredicates(f.DateRange, tripDeparture, tripReturn)...)
}

// IsEmpty implements Filter.
func (f *TripFilter) IsEmpty() bool {
	return len(f.BuildFilter()) == 0
}

func tripDeparture(t *model.Trip) *time.Time {
	return t.DepartureDateTime
}

// tripReturn is the return date, the departure while the trip is at sea.
func tripReturn(t *model.Trip) *time.Time {
	if t.ReturnDateTime != nil {
		return t.ReturnDateTime
	}
	return t.DepartureDateTime
}
