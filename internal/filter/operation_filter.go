package filter

import (
	"time"

	"github.com/rpattn/fishql/internal/model"
)

// OperationFilter searches the fishing operations of a trip.
type OperationFilter struct {
	DataCriteria
	DateRange
	TripID           *int
	ExcludeID        *int
	IncludedIDs      []int
	ExcludedIDs      []int
	GearIDs          []int
	TaxonGroupLabels []string
}

// OperationFilterFromObject reads an operation filter.
func OperationFilterFromObject(src model.Object) *OperationFilter {
	return &OperationFilter{
		DataCriteria:     readDataCriteria(src),
		DateRange:        readDateRange(src),
		TripID:           src.Int("tripId"),
		ExcludeID:        src.Int("excludeId"),
		IncludedIDs:      src.Ints("includedIds"),
		ExcludedIDs:      src.Ints("excludedIds"),
		GearIDs:          src.Ints("gearIds"),
		TaxonGroupLabels: src.Strings("taxonGroupLabels"),
	}
}

// AsObject implements Filter.
func (f *OperationFilter) AsObject(opts model.AsObjectOptions) model.Object {
	target := model.Object{}
	f.DataCriteria.writeTo(target, opts)
	f.DateRange.writeTo(target)
	target.SetInt("tripId", f.TripID)
	target.SetInt("excludeId", f.ExcludeID)
	target.SetInts("includedIds", f.IncludedIDs)
	target.SetInts("excludedIds", f.ExcludedIDs)
	target.SetInts("gearIds", f.GearIDs)
	target.SetStrings("taxonGroupLabels", f.TaxonGroupLabels)
	return target
}

// BuildFilter implements Filter.
func (f *OperationFilter) BuildFilter() []Predicate[*model.Operation] {
	predicates := DataPredicates(f.DataCriteria, func(o *model.Operation) *model.DataFields {
		return &o.DataFields
	})
	if f.TripID != nil {
		id := *f.TripID
		predicates = append(predicates, guard(func(o *model.Operation) bool {
			return model.IntEquals(o.TripID, id)
		}))
	}
	if f.ExcludeID != nil {
		id := *f.ExcludeID
		predicates = append(predicates, guard(func(o *model.Operation) bool {
			return !model.IntEquals(o.ID, id)
		}))
	}
	if len(f.IncludedIDs) > 0 {
		included := append([]int(nil), f.IncludedIDs...)
		predicates = append(predicates, guard(func(o *model.Operation) bool {
			return containsInt(included, o.ID)
		}))
	}
	if len(f.ExcludedIDs) > 0 {
		excluded := append([]int(nil), f.ExcludedIDs...)
		predicates = append(predicates, guard(func(o *model.Operation) bool {
			return !containsInt(excluded, o.ID)
		}))
	}
	if len(f.GearIDs) > 0 {
		gearIDs := append([]int(nil), f.GearIDs...)
		predicates = append(predicates, guard(func(o *model.Operation) bool {
			return o.Metier != nil && containsInt(gearIDs, model.RefID(o.Metier.Gear))
		}))
	}
	if len(f.TaxonGroupLabels) > 0 {
		labels := append([]string(nil), f.TaxonGroupLabels...)
		predicates = append(predicates, guard(func(o *model.Operation) bool {
			return o.Metier != nil && containsString(labels, model.LabelOf(o.Metier.TaxonGroup))
		}))
	}
	return append(predicates, DateRangePredicates(f.DateRange, operationStart, operationEnd)...)
}

// IsEmpty implements Filter.
func (f *OperationFilter) IsEmpty() bool {
	return len(f.BuildFilter()) == 0
}

func operationStart(o *model.Operation) *time.Time {
	return o.StartDateTime
}

// operationEnd is the end of an operation, its start while it is running.
func operationEnd(o *model.Operation) *time.Time {
	switch {
	case o.EndDateTime != nil:
		return o.EndDateTime
	case o.FishingEndDateTime != nil:
		return o.FishingEndDateTime
	}
	return o.StartDateTime
}
