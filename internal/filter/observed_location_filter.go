package filter

import (
	"time"

	"github.com/rpattn/fishql/internal/model"
)

// ObservedLocationFilter searches observation sessions.
type ObservedLocationFilter struct {
	RootDataCriteria
	DateRange
	Location  *model.ReferentialRef
	Observers []*model.Person
}

// ObservedLocationFilterFromObject reads an observed location filter.
func ObservedLocationFilterFromObject(src model.Object) *ObservedLocationFilter {
	f := &ObservedLocationFilter{
		RootDataCriteria: readRootDataCriteria(src),
		DateRange:        readDateRange(src),
		Location:         readRefCriterion(src, "location", "locationId", "locationIds"),
	}
	for _, child := range src.Children("observers") {
		if p := model.PersonFromObject(child); p != nil {
			f.Observers = append(f.Observers, p)
		}
	}
	if len(f.Observers) == 0 {
		for _, id := range src.Ints("observerPersonIds") {
			f.Observers = append(f.Observers, &model.Person{EntityBase: model.EntityBase{ID: model.IntPtr(id)}})
		}
	}
	return f
}

// ObserverIDs returns the ids of the observers criterion.
func (f *ObservedLocationFilter) ObserverIDs() []int {
	var ids []int
	for _, p := range f.Observers {
		ids = appendID(ids, model.PersonID(p))
	}
	return ids
}

// AsObject implements Filter.
func (f *ObservedLocationFilter) AsObject(opts model.AsObjectOptions) model.Object {
	target := model.Object{}
	f.RootDataCriteria.writeTo(target, opts)
	f.DateRange.writeTo(target)
	writeRefCriterion(target, f.Location, "location", "locationId", opts)
	if opts.Minify {
		target.SetInts("observerPersonIds", f.ObserverIDs())
		return target
	}
	if len(f.Observers) > 0 {
		observers := make([]model.Object, 0, len(f.Observers))
		for _, p := range f.Observers {
			if obj := p.AsObject(opts); len(obj) > 0 {
				observers = append(observers, obj)
			}
		}
		target.SetObjects("observers", observers)
	}
	return target
}

// BuildFilter implements Filter.
func (f *ObservedLocationFilter) BuildFilter() []Predicate[*model.ObservedLocation] {
	predicates := RootDataPredicates(f.RootDataCriteria, func(o *model.ObservedLocation) *model.RootDataFields {
		return &o.RootDataFields
	})
	if model.IsNotEmptyRef(f.Location) {
		id := *f.Location.ID
		predicates = append(predicates, guard(func(o *model.ObservedLocation) bool {
			return model.IntEquals(model.RefID(o.Location), id)
		}))
	}
	if observerIDs := f.ObserverIDs(); len(observerIDs) > 0 {
		predicates = append(predicates, guard(func(o *model.ObservedLocation) bool {
			for _, p := range o.Observers {
				if containsInt(observerIDs, model.PersonID(p)) {
					return true
				}
			}
			return false
		}))
	}
	return append(predicates, DateRangePredicates(f.DateRange, observedLocationStart, observedLocationEnd)...)
}

// IsEmpty implements Filter.
func (f *ObservedLocationFilter) IsEmpty() bool {
	return len(f.BuildFilter()) == 0
}

func observedLocationStart(o *model.ObservedLocation) *time.Time {
	return o.StartDateTime
}

func observedLocationEnd(o *model.ObservedLocation) *time.Time {
	if o.EndDateTime != nil {
		return o.EndDateTime
	}
	return o.StartDateTime
}
