package filter

import "github.com/rpattn/fishql/internal/model"

// ReferentialFilter searches referential references of one entity name.
type ReferentialFilter struct {
	ReferentialCriteria
}

// ReferentialFilterFromObject reads a referential filter. Unknown keys are
// ignored.
func ReferentialFilterFromObject(src model.Object) *ReferentialFilter {
	return &ReferentialFilter{ReferentialCriteria: readReferentialCriteria(src)}
}

// AsObject implements Filter.
func (f *ReferentialFilter) AsObject(opts model.AsObjectOptions) model.Object {
	target := model.Object{}
	f.ReferentialCriteria.writeTo(target, opts)
	return target
}

// BuildFilter implements Filter.
func (f *ReferentialFilter) BuildFilter() []Predicate[*model.ReferentialRef] {
	return ReferentialPredicates[*model.ReferentialRef](f.ReferentialCriteria)
}

// IsEmpty implements Filter.
func (f *ReferentialFilter) IsEmpty() bool {
	return len(f.BuildFilter()) == 0
}
