package model

import "time"

// TypenameObservedLocation is the discriminator of ObservedLocation.
const TypenameObservedLocation = "ObservedLocationVO"

// ObservedLocation is an observation session at a port or auction.
type ObservedLocation struct {
	RootDataFields
	StartDateTime *time.Time
	EndDateTime   *time.Time
	Location      *ReferentialRef
	Observers     []*Person
}

// ObservedLocationFromObject hydrates an observed location.
func ObservedLocationFromObject(src Object) *ObservedLocation {
	if len(src) == 0 {
		return nil
	}
	return &ObservedLocation{
		RootDataFields: readRootData(src),
		StartDateTime:  src.Date("startDateTime"),
		EndDateTime:    src.Date("endDateTime"),
		Location:       readRef(src, "location", "locationId"),
		Observers:      personsFromObjects(src.Children("observers")),
	}
}

// Typename implements Entity.
func (o *ObservedLocation) Typename() string { return TypenameObservedLocation }

// AsObject implements Entity.
func (o *ObservedLocation) AsObject(opts AsObjectOptions) Object {
	if o == nil {
		return nil
	}
	target := Object{}
	o.writeRootData(target, TypenameObservedLocation, opts)
	target.SetDate("startDateTime", o.StartDateTime)
	target.SetDate("endDateTime", o.EndDateTime)
	writeRef(target, o.Location, "location", "locationId", opts)
	target.SetObjects("observers", personsAsObjects(o.Observers, opts))
	return target
}
