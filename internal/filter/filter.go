// Package filter holds the search criteria of each entity type. A filter has
// two faces: a wire object sent as a GraphQL variable (minified to foreign
// keys) and a list of predicates used to filter already loaded entities.
package filter

import (
	"reflect"

	"github.com/rpattn/fishql/internal/model"
)

// Predicate is one search criterion applied to a loaded entity.
type Predicate[E any] func(E) bool

// Filter is a set of optional criteria over entities of type E.
//
// BuildFilter must be pure: it reads the filter fields only and the returned
// predicates are ANDed. An unset criterion contributes no predicate.
type Filter[E any] interface {
	AsObject(opts model.AsObjectOptions) model.Object
	BuildFilter() []Predicate[E]
	IsEmpty() bool
}

var (
	_ Filter[*model.ReferentialRef]    = (*ReferentialFilter)(nil)
	_ Filter[*model.Strategy]          = (*StrategyFilter)(nil)
	_ Filter[*model.TaxonName]         = (*TaxonNameFilter)(nil)
	_ Filter[*model.Landing]           = (*LandingFilter)(nil)
	_ Filter[*model.Operation]         = (*OperationFilter)(nil)
	_ Filter[*model.ObservedLocation]  = (*ObservedLocationFilter)(nil)
	_ Filter[*model.Sale]              = (*SaleFilter)(nil)
	_ Filter[*model.AggregatedLanding] = (*AggregatedLandingFilter)(nil)
	_ Filter[*model.Trip]              = (*TripFilter)(nil)
)

// Compile folds predicates into one. An empty list accepts everything.
func Compile[E any](predicates []Predicate[E]) Predicate[E] {
	ps := append([]Predicate[E](nil), predicates...)
	return func(e E) bool {
		for _, p := range ps {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Apply returns the items accepted by f, in their original order.
func Apply[E any](f Filter[E], items []E) []E {
	match := Compile(f.BuildFilter())
	out := make([]E, 0, len(items))
	for _, item := range items {
		if match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Count returns how many items f accepts.
func Count[E any](f Filter[E], items []E) int {
	match := Compile(f.BuildFilter())
	n := 0
	for _, item := range items {
		if match(item) {
			n++
		}
	}
	return n
}

// guard rejects nil entities before p inspects them.
func guard[E any](p Predicate[E]) Predicate[E] {
	return func(e E) bool {
		return !isNil(e) && p(e)
	}
}

func isNil[E any](e E) bool {
	v := reflect.ValueOf(any(e))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func containsInt(values []int, v *int) bool {
	if v == nil {
		return false
	}
	for _, candidate := range values {
		if candidate == *v {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// appendID adds id to ids unless it is nil or already present.
func appendID(ids []int, id *int) []int {
	if id == nil || containsInt(ids, id) {
		return ids
	}
	return append(ids, *id)
}

// appendLabel adds label to labels unless it is blank or already present.
func appendLabel(labels []string, label string) []string {
	if label == "" || containsString(labels, label) {
		return labels
	}
	return append(labels, label)
}

func refObject(r *model.ReferentialRef, opts model.AsObjectOptions) model.Object {
	if r == nil {
		return nil
	}
	return r.AsObject(opts)
}

// readRefCriterion reads a reference criterion under key, falling back to
// the flat id under idKey, or to the first id of idsKey.
func readRefCriterion(src model.Object, key, idKey, idsKey string) *model.ReferentialRef {
	if r := model.ReferentialRefFromObject(src.Child(key)); r != nil {
		return r
	}
	id := src.Int(idKey)
	if id == nil && idsKey != "" {
		if ids := src.Ints(idsKey); len(ids) > 0 {
			id = &ids[0]
		}
	}
	if id == nil {
		return nil
	}
	return &model.ReferentialRef{EntityBase: model.EntityBase{ID: id}}
}

// writeRefCriterion writes r in full under key, or its id under idKey when
// minified. A reference without id is left out of minified objects.
func writeRefCriterion(target model.Object, r *model.ReferentialRef, key, idKey string, opts model.AsObjectOptions) {
	if r == nil {
		return
	}
	if opts.Minify {
		if model.IsNotEmptyRef(r) {
			target.SetInt(idKey, r.ID)
		}
		return
	}
	target.SetObject(key, r.AsObject(opts))
}

// writeRefIDsCriterion is writeRefCriterion for backend inputs taking an id
// array: the minified form is a one element array under idsKey.
func writeRefIDsCriterion(target model.Object, r *model.ReferentialRef, key, idsKey string, opts model.AsObjectOptions) {
	if r == nil {
		return
	}
	if opts.Minify {
		if model.IsNotEmptyRef(r) {
			target.SetInts(idsKey, []int{*r.ID})
		}
		return
	}
	target.SetObject(key, r.AsObject(opts))
}

func readVesselCriterion(src model.Object) *model.VesselSnapshot {
	if v := model.VesselSnapshotFromObject(src.Child("vesselSnapshot")); v != nil {
		return v
	}
	if id := src.Int("vesselId"); id != nil {
		return &model.VesselSnapshot{EntityBase: model.EntityBase{ID: id}}
	}
	return nil
}

func writeVesselCriterion(target model.Object, v *model.VesselSnapshot, opts model.AsObjectOptions) {
	if v == nil {
		return
	}
	if opts.Minify {
		target.SetInt("vesselId", v.ID)
		return
	}
	target.SetObject("vesselSnapshot", v.AsObject(opts))
}

