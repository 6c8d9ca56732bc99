package model

import (
	"strings"
	"time"
)

// Typenames of the referential types.
const (
	TypenameReferential    = "ReferentialVO"
	TypenameMetier         = "MetierVO"
	TypenamePerson         = "PersonVO"
	TypenameVesselSnapshot = "VesselSnapshotVO"
)

// ReferentialRef is a lightweight pointer to a shared reference-data row
// (location, gear, taxon group, status...).
type ReferentialRef struct {
	EntityBase
	Label      string
	Name       string
	EntityName string
	StatusID   *int
	LevelID    *int
	LevelLabel string
}

// ReferentialRefFromObject hydrates a reference. It returns nil for an
// empty source.
func ReferentialRefFromObject(src Object) *ReferentialRef {
	if len(src) == 0 {
		return nil
	}
	return &ReferentialRef{
		EntityBase: readBase(src),
		Label:      src.String("label"),
		Name:       src.String("name"),
		EntityName: src.String("entityName"),
		StatusID:   src.Int("statusId"),
		LevelID:    src.Int("levelId"),
		LevelLabel: src.String("levelLabel"),
	}
}

func refsFromObjects(src []Object) []*ReferentialRef {
	if len(src) == 0 {
		return nil
	}
	out := make([]*ReferentialRef, 0, len(src))
	for _, child := range src {
		if ref := ReferentialRefFromObject(child); ref != nil {
			out = append(out, ref)
		}
	}
	return out
}

// Typename implements Entity.
func (r *ReferentialRef) Typename() string { return TypenameReferential }

// AsObject implements Entity. Minified output drops entityName unless
// KeepEntityName is set.
func (r *ReferentialRef) AsObject(opts AsObjectOptions) Object {
	if r == nil {
		return nil
	}
	target := Object{}
	r.writeTo(target, TypenameReferential, opts)
	target.SetString("label", r.Label)
	target.SetString("name", r.Name)
	target.SetInt("statusId", r.StatusID)
	target.SetInt("levelId", r.LevelID)
	if !opts.Minify {
		target.SetString("levelLabel", r.LevelLabel)
	}
	if !opts.Minify || opts.KeepEntityName {
		target.SetString("entityName", r.EntityName)
	}
	return target
}

// IsNotEmptyRef reports whether r points at a persisted row.
func IsNotEmptyRef(r *ReferentialRef) bool {
	return r != nil && r.ID != nil
}

// RefID returns the id of r, nil when r is nil.
func RefID(r *ReferentialRef) *int {
	if r == nil {
		return nil
	}
	return r.ID
}

// LabelOf returns the label of r, "" when r is nil.
func LabelOf(r *ReferentialRef) string {
	if r == nil {
		return ""
	}
	return r.Label
}

func refsAsObjects(refs []*ReferentialRef, opts AsObjectOptions) []Object {
	if len(refs) == 0 {
		return nil
	}
	out := make([]Object, 0, len(refs))
	for _, ref := range refs {
		if obj := ref.AsObject(opts); len(obj) > 0 {
			out = append(out, obj)
		}
	}
	return out
}

// readRef reads a nested reference under key, falling back to a bare id
// under idKey as found in minified objects.
func readRef(src Object, key, idKey string) *ReferentialRef {
	if ref := ReferentialRefFromObject(src.Child(key)); ref != nil {
		return ref
	}
	if id := src.Int(idKey); id != nil {
		return &ReferentialRef{EntityBase: EntityBase{ID: id}}
	}
	return nil
}

// writeRef writes r in full under key, or its id under idKey when minified.
func writeRef(target Object, r *ReferentialRef, key, idKey string, opts AsObjectOptions) {
	if r == nil {
		return
	}
	if opts.Minify {
		target.SetInt(idKey, r.ID)
		return
	}
	target.SetObject(key, r.AsObject(opts))
}

// ReferentialLike is the read surface shared by referential rows, used by
// referential criteria.
type ReferentialLike interface {
	EntityID() *int
	RefLabel() string
	RefName() string
	RefStatusID() *int
	RefLevelID() *int
	RefLevelLabel() string
}

// RefLabel implements ReferentialLike.
func (r *ReferentialRef) RefLabel() string { return r.Label }

// RefName implements ReferentialLike.
func (r *ReferentialRef) RefName() string { return r.Name }

// RefStatusID implements ReferentialLike.
func (r *ReferentialRef) RefStatusID() *int { return r.StatusID }

// RefLevelID implements ReferentialLike.
func (r *ReferentialRef) RefLevelID() *int { return r.LevelID }

// RefLevelLabel implements ReferentialLike.
func (r *ReferentialRef) RefLevelLabel() string { return r.LevelLabel }

// Referential is a full reference-data row.
type Referential struct {
	EntityBase
	Label        string
	Name         string
	Description  string
	Comments     string
	EntityName   string
	CreationDate *time.Time
	Level        *ReferentialRef
	Status       *ReferentialRef
	Parent       *Referential
}

// ReferentialFromObject hydrates a full referential row.
func ReferentialFromObject(src Object) *Referential {
	if len(src) == 0 {
		return nil
	}
	r := readReferential(src)
	return &r
}

func readReferential(src Object) Referential {
	r := Referential{
		EntityBase:   readBase(src),
		Label:        src.String("label"),
		Name:         src.String("name"),
		Description:  src.String("description"),
		Comments:     src.String("comments"),
		EntityName:   src.String("entityName"),
		CreationDate: src.Date("creationDate"),
		Level:        readRef(src, "level", "levelId"),
		Status:       readRef(src, "status", "statusId"),
		Parent:       ReferentialFromObject(src.Child("parent")),
	}
	if r.Parent == nil {
		if id := src.Int("parentId"); id != nil {
			r.Parent = &Referential{EntityBase: EntityBase{ID: id}}
		}
	}
	return r
}

// Typename implements Entity.
func (r *Referential) Typename() string { return TypenameReferential }

// AsObject implements Entity. The full form embeds level, status and parent;
// the minified form replaces them with levelId, statusId and parentId.
func (r *Referential) AsObject(opts AsObjectOptions) Object {
	if r == nil {
		return nil
	}
	target := Object{}
	r.writeTo(target, TypenameReferential, opts)
	return target
}

func (r *Referential) writeTo(target Object, typename string, opts AsObjectOptions) {
	r.EntityBase.writeTo(target, typename, opts)
	target.SetString("label", r.Label)
	target.SetString("name", r.Name)
	target.SetString("description", r.Description)
	target.SetString("comments", r.Comments)
	target.SetDate("creationDate", r.CreationDate)
	if !opts.Minify || opts.KeepEntityName {
		target.SetString("entityName", r.EntityName)
	}
	writeRef(target, r.Level, "level", "levelId", opts)
	writeRef(target, r.Status, "status", "statusId", opts)
	if r.Parent != nil {
		if opts.Minify {
			target.SetInt("parentId", r.Parent.ID)
		} else {
			target.SetObject("parent", r.Parent.AsObject(opts))
		}
	}
}

// AsRef returns the lightweight reference of r.
func (r *Referential) AsRef() *ReferentialRef {
	if r == nil {
		return nil
	}
	return &ReferentialRef{
		EntityBase: r.EntityBase,
		Label:      r.Label,
		Name:       r.Name,
		EntityName: r.EntityName,
		StatusID:   RefID(r.Status),
		LevelID:    RefID(r.Level),
		LevelLabel: LabelOf(r.Level),
	}
}

// RefLabel implements ReferentialLike.
func (r *Referential) RefLabel() string { return r.Label }

// RefName implements ReferentialLike.
func (r *Referential) RefName() string { return r.Name }

// RefStatusID implements ReferentialLike.
func (r *Referential) RefStatusID() *int { return RefID(r.Status) }

// RefLevelID implements ReferentialLike.
func (r *Referential) RefLevelID() *int { return RefID(r.Level) }

// RefLevelLabel implements ReferentialLike.
func (r *Referential) RefLevelLabel() string { return LabelOf(r.Level) }

// Metier is a fishing activity: a gear used on a target taxon group.
type Metier struct {
	Referential
	Gear       *ReferentialRef
	TaxonGroup *ReferentialRef
}

// MetierFromObject hydrates a metier.
func MetierFromObject(src Object) *Metier {
	if len(src) == 0 {
		return nil
	}
	return &Metier{
		Referential: readReferential(src),
		Gear:        readRef(src, "gear", "gearId"),
		TaxonGroup:  readRef(src, "taxonGroup", "taxonGroupId"),
	}
}

// Typename implements Entity.
func (m *Metier) Typename() string { return TypenameMetier }

// AsObject implements Entity.
func (m *Metier) AsObject(opts AsObjectOptions) Object {
	if m == nil {
		return nil
	}
	target := Object{}
	m.Referential.writeTo(target, TypenameMetier, opts)
	writeRef(target, m.Gear, "gear", "gearId", opts)
	writeRef(target, m.TaxonGroup, "taxonGroup", "taxonGroupId", opts)
	return target
}

// Person is a user of the system: observer, recorder.
type Person struct {
	EntityBase
	FirstName  string
	LastName   string
	Email      string
	Pubkey     string
	Department *ReferentialRef
}

// PersonFromObject hydrates a person.
func PersonFromObject(src Object) *Person {
	if len(src) == 0 {
		return nil
	}
	return &Person{
		EntityBase: readBase(src),
		FirstName:  src.String("firstName"),
		LastName:   src.String("lastName"),
		Email:      src.String("email"),
		Pubkey:     src.String("pubkey"),
		Department: readRef(src, "department", "departmentId"),
	}
}

func personsFromObjects(src []Object) []*Person {
	if len(src) == 0 {
		return nil
	}
	out := make([]*Person, 0, len(src))
	for _, child := range src {
		if p := PersonFromObject(child); p != nil {
			out = append(out, p)
		}
	}
	return out
}

func personsAsObjects(persons []*Person, opts AsObjectOptions) []Object {
	if len(persons) == 0 {
		return nil
	}
	out := make([]Object, 0, len(persons))
	for _, p := range persons {
		if obj := p.AsObject(opts); len(obj) > 0 {
			out = append(out, obj)
		}
	}
	return out
}

// Typename implements Entity.
func (p *Person) Typename() string { return TypenamePerson }

// AsObject implements Entity.
func (p *Person) AsObject(opts AsObjectOptions) Object {
	if p == nil {
		return nil
	}
	target := Object{}
	p.writeTo(target, TypenamePerson, opts)
	target.SetString("firstName", p.FirstName)
	target.SetString("lastName", p.LastName)
	target.SetString("email", p.Email)
	target.SetString("pubkey", p.Pubkey)
	writeRef(target, p.Department, "department", "departmentId", opts)
	return target
}

// FullName returns "LASTNAME Firstname".
func (p *Person) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(strings.ToUpper(p.LastName) + " " + p.FirstName)
}

// PersonID returns the id of p, nil when p is nil.
func PersonID(p *Person) *int {
	if p == nil {
		return nil
	}
	return p.ID
}

// VesselSnapshot is the state of a vessel at a given date.
type VesselSnapshot struct {
	EntityBase
	Name             string
	ExteriorMarking  string
	RegistrationCode string
	VesselType       *ReferentialRef
	BasePortLocation *ReferentialRef
}

// VesselSnapshotFromObject hydrates a vessel snapshot.
func VesselSnapshotFromObject(src Object) *VesselSnapshot {
	if len(src) == 0 {
		return nil
	}
	return &VesselSnapshot{
		EntityBase:       readBase(src),
		Name:             src.String("name"),
		ExteriorMarking:  src.String("exteriorMarking"),
		RegistrationCode: src.String("registrationCode"),
		VesselType:       readRef(src, "vesselType", "vesselTypeId"),
		BasePortLocation: readRef(src, "basePortLocation", "basePortLocationId"),
	}
}

// Typename implements Entity.
func (v *VesselSnapshot) Typename() string { return TypenameVesselSnapshot }

// AsObject implements Entity.
func (v *VesselSnapshot) AsObject(opts AsObjectOptions) Object {
	if v == nil {
		return nil
	}
	target := Object{}
	v.writeTo(target, TypenameVesselSnapshot, opts)
	target.SetString("name", v.Name)
	target.SetString("exteriorMarking", v.ExteriorMarking)
	target.SetString("registrationCode", v.RegistrationCode)
	writeRef(target, v.VesselType, "vesselType", "vesselTypeId", opts)
	writeRef(target, v.BasePortLocation, "basePortLocation", "basePortLocationId", opts)
	return target
}

// VesselID returns the id of v, nil when v is nil.
func VesselID(v *VesselSnapshot) *int {
	if v == nil {
		return nil
	}
	return v.ID
}

// readVessel reads vesselSnapshot, falling back to a bare vesselId.
func readVessel(src Object) *VesselSnapshot {
	if v := VesselSnapshotFromObject(src.Child("vesselSnapshot")); v != nil {
		return v
	}
	if id := src.Int("vesselId"); id != nil {
		return &VesselSnapshot{EntityBase: EntityBase{ID: id}}
	}
	return nil
}

func writeVessel(target Object, v *VesselSnapshot, opts AsObjectOptions) {
	if v == nil {
		return
	}
	if opts.Minify {
		target.SetInt("vesselId", v.ID)
		return
	}
	target.SetObject("vesselSnapshot", v.AsObject(opts))
}
