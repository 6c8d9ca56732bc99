package filter

import (
	"time"

	"github.com/rpattn/fishql/internal/dates"
	"github.com/rpattn/fishql/internal/model"
)

// StrategyFilter searches the strategies of a program. The program is the
// level of a strategy, so programId is an alias of levelId.
type StrategyFilter struct {
	ReferentialCriteria
	DateRange
	ProgramID         *int
	Department        *model.ReferentialRef
	Location          *model.ReferentialRef
	TaxonName         *model.TaxonName
	AnalyticReference *model.ReferentialRef
	ReferenceTaxonIDs []int
}

// StrategyFilterFromObject reads a strategy filter, from its full or its
// minified form.
func StrategyFilterFromObject(src model.Object) *StrategyFilter {
	f := &StrategyFilter{
		ReferentialCriteria: readReferentialCriteria(src),
		DateRange:           readDateRange(src),
		ProgramID:           src.Int("programId"),
		Department:          readRefCriterion(src, "department", "departmentId", "departmentIds"),
		Location:            readRefCriterion(src, "location", "locationId", "locationIds"),
		TaxonName:           model.TaxonNameFromObject(src.Child("taxonName")),
		AnalyticReference:   model.ReferentialRefFromObject(src.Child("analyticReference")),
	}
	if f.AnalyticReference == nil {
		if labels := src.Strings("analyticReferences"); len(labels) > 0 {
			f.AnalyticReference = &model.ReferentialRef{Label: labels[0]}
		}
	}
	f.ReferenceTaxonIDs = src.Ints("referenceTaxonIds")
	return f
}

// EffectiveLevelIDs resolves the programId alias: when set, the program id
// replaces any level id.
func (f *StrategyFilter) EffectiveLevelIDs() []int {
	if f.ProgramID != nil {
		return []int{*f.ProgramID}
	}
	return f.LevelIDs
}

// EffectiveReferenceTaxonIDs merges the taxon name criterion with the
// reference taxon ids.
func (f *StrategyFilter) EffectiveReferenceTaxonIDs() []int {
	var ids []int
	if f.TaxonName != nil {
		ids = appendID(ids, f.TaxonName.ReferenceTaxonID)
	}
	for i := range f.ReferenceTaxonIDs {
		ids = appendID(ids, &f.ReferenceTaxonIDs[i])
	}
	return ids
}

// AsObject implements Filter. The minified form uses the id arrays accepted
// by the backend, and programId is sent as levelIds.
func (f *StrategyFilter) AsObject(opts model.AsObjectOptions) model.Object {
	target := model.Object{}
	criteria := f.ReferentialCriteria
	if opts.Minify {
		criteria.LevelIDs = f.EffectiveLevelIDs()
	}
	criteria.writeTo(target, opts)
	f.DateRange.writeTo(target)
	writeRefIDsCriterion(target, f.Department, "department", "departmentIds", opts)
	writeRefIDsCriterion(target, f.Location, "location", "locationIds", opts)
	if opts.Minify {
		target.SetInts("referenceTaxonIds", f.EffectiveReferenceTaxonIDs())
		if label := model.LabelOf(f.AnalyticReference); label != "" {
			target.SetStrings("analyticReferences", []string{label})
		}
		return target
	}
	target.SetInt("programId", f.ProgramID)
	if f.TaxonName != nil {
		target.SetObject("taxonName", f.TaxonName.AsObject(opts))
	}
	target.SetObject("analyticReference", refObject(f.AnalyticReference, opts))
	target.SetInts("referenceTaxonIds", f.ReferenceTaxonIDs)
	return target
}

// BuildFilter implements Filter. The programId alias is resolved before the
// referential predicates are built.
func (f *StrategyFilter) BuildFilter() []Predicate[*model.Strategy] {
	criteria := f.ReferentialCriteria
	criteria.LevelIDs = f.EffectiveLevelIDs()
	predicates := ReferentialPredicates[*model.Strategy](criteria)

	if model.IsNotEmptyRef(f.Department) {
		departmentID := *f.Department.ID
		predicates = append(predicates, guard(func(s *model.Strategy) bool {
			return anyRef(s.Departments, departmentID)
		}))
	}
	if model.IsNotEmptyRef(f.Location) {
		locationID := *f.Location.ID
		predicates = append(predicates, guard(func(s *model.Strategy) bool {
			return anyRef(s.AppliedLocations, locationID)
		}))
	}
	if taxonIDs := f.EffectiveReferenceTaxonIDs(); len(taxonIDs) > 0 {
		predicates = append(predicates, guard(func(s *model.Strategy) bool {
			for _, t := range s.TaxonNames {
				if t != nil && containsInt(taxonIDs, t.ReferenceTaxonID) {
					return true
				}
			}
			return false
		}))
	}
	if label := model.LabelOf(f.AnalyticReference); label != "" {
		predicates = append(predicates, guard(func(s *model.Strategy) bool {
			return s.AnalyticReference == label
		}))
	}
	if f.StartDate != nil || f.EndDate != nil {
		start := dates.Clone(f.StartDate)
		var limit *time.Time
		if f.EndDate != nil {
			next := dates.NextDay(*f.EndDate)
			limit = &next
		}
		predicates = append(predicates, guard(func(s *model.Strategy) bool {
			for _, p := range s.AppliedPeriods {
				if periodOverlaps(p, start, limit) {
					return true
				}
			}
			return false
		}))
	}
	return predicates
}

// IsEmpty implements Filter.
func (f *StrategyFilter) IsEmpty() bool {
	return len(f.BuildFilter()) == 0
}

// periodOverlaps reports whether p intersects [start, limit). An open
// period end means the period is still running.
func periodOverlaps(p model.AppliedPeriod, start, limit *time.Time) bool {
	if start != nil && p.EndDate != nil && p.EndDate.Before(*start) {
		return false
	}
	if limit != nil && (p.StartDate == nil || !p.StartDate.Before(*limit)) {
		return false
	}
	return true
}

func anyRef(refs []*model.ReferentialRef, id int) bool {
	for _, r := range refs {
		if r != nil && model.IntEquals(r.ID, id) {
			return true
		}
	}
	return false
}
