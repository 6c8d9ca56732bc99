package filter

import (
	"time"

	"github.com/rpattn/fishql/internal/model"
)

// SaleFilter searches sales.
type SaleFilter struct {
	RootDataCriteria
	DateRange
	ObservedLocationID *int
	TripID             *int
	Vessel             *model.VesselSnapshot
}

// SaleFilterFromObject reads a sale filter.
func SaleFilterFromObject(src model.Object) *SaleFilter {
	return &SaleFilter{
		RootDataCriteria:   readRootDataCriteria(src),
		DateRange:          readDateRange(src),
		ObservedLocationID: src.Int("observedLocationId"),
		TripID:             src.Int("tripId"),
		Vessel:             readVesselCriterion(src),
	}
}

// AsObject implements Filter.
func (f *SaleFilter) AsObject(opts model.AsObjectOptions) model.Object {
	target := model.Object{}
	f.RootDataCriteria.writeTo(target, opts)
	f.DateRange.writeTo(target)
	target.SetInt("observedLocationId", f.ObservedLocationID)
	target.SetInt("tripId", f.TripID)
	writeVesselCriterion(target, f.Vessel, opts)
	return target
}

// BuildFilter implements Filter.
func (f *SaleFilter) BuildFilter() []Predicate[*model.Sale] {
	predicates := RootDataPredicates(f.RootDataCriteria, func(s *model.Sale) *model.RootDataFields {
		return &s.RootDataFields
	})
	if f.ObservedLocationID != nil {
		id := *f.ObservedLocationID
		predicates = append(predicates, guard(func(s *model.Sale) bool {
			return model.IntEquals(s.ObservedLocationID, id)
		}))
	}
	if f.TripID != nil {
		id := *f.TripID
		predicates = append(predicates, guard(func(s *model.Sale) bool {
			return model.IntEquals(s.TripID, id)
		}))
	}
	if vesselID := model.VesselID(f.Vessel); vesselID != nil {
		id := *vesselID
		predicates = append(predicates, guard(func(s *model.Sale) bool {
			return model.IntEquals(model.VesselID(s.Vessel), id)
		}))
	}
	return append(predicates, DateRangePredicates(f.DateRange, saleStart, saleEnd)...)
}

// IsEmpty implements Filter.
func (f *SaleFilter) IsEmpty() bool {
	return len(f.BuildFilter()) == 0
}

func saleStart(s *model.Sale) *time.Time {
	return s.StartDateTime
}

func saleEnd(s *model.Sale) *time.Time {
	if s.EndDateTime != nil {
		return s.EndDateTime
	}
	return s.StartDateTime
}
