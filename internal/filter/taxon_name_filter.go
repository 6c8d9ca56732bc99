package filter

import "github.com/rpattn/fishql/internal/model"

// TaxonNameFilter searches scientific names.
type TaxonNameFilter struct {
	ReferentialCriteria
	WithSynonyms      *bool
	TaxonGroupIDs     []int
	ReferenceTaxonIDs []int
}

// TaxonNameFilterFromObject reads a taxon name filter.
func TaxonNameFilterFromObject(src model.Object) *TaxonNameFilter {
	f := &TaxonNameFilter{
		ReferentialCriteria: readReferentialCriteria(src),
		WithSynonyms:        src.Bool("withSynonyms"),
		TaxonGroupIDs:       src.Ints("taxonGroupIds"),
		ReferenceTaxonIDs:   src.Ints("referenceTaxonIds"),
	}
	f.TaxonGroupIDs = appendID(f.TaxonGroupIDs, src.Int("taxonGroupId"))
	return f
}

// AsObject implements Filter.
func (f *TaxonNameFilter) AsObject(opts model.AsObjectOptions) model.Object {
	target := model.Object{}
	f.ReferentialCriteria.writeTo(target, opts)
	target.SetBool("withSynonyms", f.WithSynonyms)
	target.SetInts("taxonGroupIds", f.TaxonGroupIDs)
	target.SetInts("referenceTaxonIds", f.ReferenceTaxonIDs)
	return target
}

// BuildFilter implements Filter. Synonyms are kept unless withSynonyms is
// explicitly false.
func (f *TaxonNameFilter) BuildFilter() []Predicate[*model.TaxonName] {
	predicates := ReferentialPredicates[*model.TaxonName](f.ReferentialCriteria)
	if f.WithSynonyms != nil && !*f.WithSynonyms {
		predicates = append(predicates, guard(func(t *model.TaxonName) bool {
			return t.IsReferent
		}))
	}
	if len(f.TaxonGroupIDs) > 0 {
		groupIDs := append([]int(nil), f.TaxonGroupIDs...)
		predicates = append(predicates, guard(func(t *model.TaxonName) bool {
			for i := range t.TaxonGroupIDs {
				if containsInt(groupIDs, &t.TaxonGroupIDs[i]) {
					return true
				}
			}
			return false
		}))
	}
	if len(f.ReferenceTaxonIDs) > 0 {
		taxonIDs := append([]int(nil), f.ReferenceTaxonIDs...)
		predicates = append(predicates, guard(func(t *model.TaxonName) bool {
			return containsInt(taxonIDs, t.ReferenceTaxonID)
		}))
	}
	return predicates
}

// IsEmpty implements Filter.
func (f *TaxonNameFilter) IsEmpty() bool {
	return len(f.BuildFilter()) == 0
}
