package model

import "time"

// Data quality statuses, from least to most checked.
const (
	QualityStatusModified   = "MODIFIED"
	QualityStatusControlled = "CONTROLLED"
	QualityStatusValidated  = "VALIDATED"
	QualityStatusQualified  = "QUALIFIED"
)

// DataFields are carried by every data entity.
type DataFields struct {
	EntityBase
	RecorderDepartment *ReferentialRef
	ControlDate        *time.Time
	ValidationDate     *time.Time
	QualificationDate  *time.Time
	QualityFlagID      *int
}

// Data returns the shared data fields.
func (d *DataFields) Data() *DataFields {
	return d
}

// QualityStatus derives the data quality status from the check dates.
func (d *DataFields) QualityStatus() string {
	switch {
	case d.QualificationDate != nil:
		return QualityStatusQualified
	case d.ValidationDate != nil:
		return QualityStatusValidated
	case d.ControlDate != nil:
		return QualityStatusControlled
	default:
		return QualityStatusModified
	}
}

func readData(src Object) DataFields {
	return DataFields{
		EntityBase:         readBase(src),
		RecorderDepartment: readRef(src, "recorderDepartment", "recorderDepartmentId"),
		ControlDate:        src.Date("controlDate"),
		ValidationDate:     src.Date("validationDate"),
		QualificationDate:  src.Date("qualificationDate"),
		QualityFlagID:      src.Int("qualityFlagId"),
	}
}

func (d *DataFields) writeData(target Object, typename string, opts AsObjectOptions) {
	d.EntityBase.writeTo(target, typename, opts)
	writeRef(target, d.RecorderDepartment, "recorderDepartment", "recorderDepartmentId", opts)
	target.SetDate("controlDate", d.ControlDate)
	target.SetDate("validationDate", d.ValidationDate)
	target.SetDate("qualificationDate", d.QualificationDate)
	target.SetInt("qualityFlagId", d.QualityFlagID)
}

// RootDataFields are carried by data entities at the root of a
// synchronization unit (trip, observed location, landing...).
type RootDataFields struct {
	DataFields
	Program               *ReferentialRef
	RecorderPerson        *Person
	SynchronizationStatus string
	CreationDate          *time.Time
	Comments              string
}

// RootData returns the shared root data fields.
func (r *RootDataFields) RootData() *RootDataFields {
	return r
}

func readRootData(src Object) RootDataFields {
	r := RootDataFields{
		DataFields:            readData(src),
		Program:               readRef(src, "program", "programId"),
		RecorderPerson:        PersonFromObject(src.Child("recorderPerson")),
		SynchronizationStatus: src.String("synchronizationStatus"),
		CreationDate:          src.Date("creationDate"),
		Comments:              src.String("comments"),
	}
	if r.RecorderPerson == nil {
		if id := src.Int("recorderPersonId"); id != nil {
			r.RecorderPerson = &Person{EntityBase: EntityBase{ID: id}}
		}
	}
	return r
}

// writeRootData writes the root fields. The synchronization status is local
// state and is left out of minified objects.
func (r *RootDataFields) writeRootData(target Object, typename string, opts AsObjectOptions) {
	r.writeData(target, typename, opts)
	writeRef(target, r.Program, "program", "programId", opts)
	if r.RecorderPerson != nil {
		if opts.Minify {
			target.SetInt("recorderPersonId", r.RecorderPerson.ID)
		} else {
			target.SetObject("recorderPerson", r.RecorderPerson.AsObject(opts))
		}
	}
	if !opts.Minify {
		target.SetString("synchronizationStatus", r.SynchronizationStatus)
	}
	target.SetDate("creationDate", r.CreationDate)
	target.SetString("comments", r.Comments)
}
