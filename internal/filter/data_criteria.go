package filter

import (
	"github.com/rpattn/fishql/internal/model"
)

// DataCriteria are the criteria shared by every data filter.
type DataCriteria struct {
	RecorderDepartment *model.ReferentialRef
	DataQualityStatus  string
	QualityFlagID      *int
}

func readDataCriteria(src model.Object) DataCriteria {
	c := DataCriteria{
		RecorderDepartment: model.ReferentialRefFromObject(src.Child("recorderDepartment")),
		DataQualityStatus:  src.String("dataQualityStatus"),
		QualityFlagID:      src.Int("qualityFlagId"),
	}
	if c.RecorderDepartment == nil {
		if id := src.Int("recorderDepartmentId"); id != nil {
			c.RecorderDepartment = &model.ReferentialRef{EntityBase: model.EntityBase{ID: id}}
		}
	}
	return c
}

func (c DataCriteria) writeTo(target model.Object, opts model.AsObjectOptions) {
	if opts.Minify {
		if model.IsNotEmptyRef(c.RecorderDepartment) {
			target.SetInt("recorderDepartmentId", c.RecorderDepartment.ID)
		}
	} else {
		target.SetObject("recorderDepartment", refObject(c.RecorderDepartment, opts))
	}
	target.SetString("dataQualityStatus", c.DataQualityStatus)
	target.SetInt("qualityFlagId", c.QualityFlagID)
}

// DataPredicates builds the data predicates. dataOf returns nil for an
// entity without data fields.
func DataPredicates[E any](c DataCriteria, dataOf func(E) *model.DataFields) []Predicate[E] {
	var predicates []Predicate[E]
	if model.IsNotEmptyRef(c.RecorderDepartment) {
		departmentID := c.RecorderDepartment.ID
		predicates = append(predicates, guard(func(e E) bool {
			d := dataOf(e)
			return d != nil && d.RecorderDepartment != nil && model.SameInt(d.RecorderDepartment.ID, departmentID)
		}))
	}
	if c.DataQualityStatus != "" {
		status := c.DataQualityStatus
		predicates = append(predicates, guard(func(e E) bool {
			d := dataOf(e)
			return d != nil && d.QualityStatus() == status
		}))
	}
	if c.QualityFlagID != nil {
		flag := *c.QualityFlagID
		predicates = append(predicates, guard(func(e E) bool {
			d := dataOf(e)
			return d != nil && model.IntEquals(d.QualityFlagID, flag)
		}))
	}
	return predicates
}

// RootDataCriteria extend DataCriteria for root data filters.
type RootDataCriteria struct {
	DataCriteria
	Program               *model.ReferentialRef
	RecorderPerson        *model.Person
	SynchronizationStatus string
}

func readRootDataCriteria(src model.Object) RootDataCriteria {
	c := RootDataCriteria{
		DataCriteria:          readDataCriteria(src),
		Program:               model.ReferentialRefFromObject(src.Child("program")),
		RecorderPerson:        model.PersonFromObject(src.Child("recorderPerson")),
		SynchronizationStatus: src.String("synchronizationStatus"),
	}
	if c.Program == nil {
		if label := src.String("programLabel"); label != "" {
			c.Program = &model.ReferentialRef{Label: label}
		}
	}
	if c.RecorderPerson == nil {
		if id := src.Int("recorderPersonId"); id != nil {
			c.RecorderPerson = &model.Person{EntityBase: model.EntityBase{ID: id}}
		}
	}
	return c
}

// writeTo writes the root criteria. Programs are filtered by label on the
// backend. The synchronization status only drives local filtering.
func (c RootDataCriteria) writeTo(target model.Object, opts model.AsObjectOptions) {
	c.DataCriteria.writeTo(target, opts)
	if opts.Minify {
		target.SetString("programLabel", model.LabelOf(c.Program))
		target.SetInt("recorderPersonId", model.PersonID(c.RecorderPerson))
		return
	}
	target.SetObject("program", refObject(c.Program, opts))
	if c.RecorderPerson != nil {
		target.SetObject("recorderPerson", c.RecorderPerson.AsObject(opts))
	}
	target.SetString("synchronizationStatus", c.SynchronizationStatus)
}

// RootDataPredicates builds the data and root data predicates. rootOf
// returns nil for an entity without root data fields.
func RootDataPredicates[E any](c RootDataCriteria, rootOf func(E) *model.RootDataFields) []Predicate[E] {
	predicates := DataPredicates(c.DataCriteria, func(e E) *model.DataFields {
		r := rootOf(e)
		if r == nil {
			return nil
		}
		return &r.DataFields
	})
	if c.Program != nil && (c.Program.ID != nil || c.Program.Label != "") {
		program := *c.Program
		predicates = append(predicates, guard(func(e E) bool {
			r := rootOf(e)
			if r == nil || r.Program == nil {
				return false
			}
			if program.ID != nil && r.Program.ID != nil {
				return *program.ID == *r.Program.ID
			}
			return program.Label != "" && program.Label == r.Program.Label
		}))
	}
	if personID := model.PersonID(c.RecorderPerson); personID != nil {
		id := *personID
		predicates = append(predicates, guard(func(e E) bool {
			r := rootOf(e)
			return r != nil && model.IntEquals(model.PersonID(r.RecorderPerson), id)
		}))
	}
	if c.SynchronizationStatus != "" {
		status := c.SynchronizationStatus
		predicates = append(predicates, guard(func(e E) bool {
			r := rootOf(e)
			if r == nil {
				return false
			}
			return MatchSynchronizationStatus(status, r.ID, r.SynchronizationStatus)
		}))
	}
	return predicates
}

// MatchSynchronizationStatus reports whether an entity with the given id and
// status is selected by want. SYNC selects persisted entities. DIRTY and
// READY_TO_SYNC select local entities carrying that exact status.
func MatchSynchronizationStatus(want string, id *int, status string) bool {
	if want == model.SyncStatusSync {
		return status == model.SyncStatusSync || (status == "" && id != nil && *id >= 0)
	}
	local := id == nil || *id < 0
	return local && status == want
}
