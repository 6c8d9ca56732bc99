package model

import "time"

// TypenameTrip is the discriminator of Trip.
const TypenameTrip = "TripVO"

// Trip is a fishing trip, from departure to return.
type Trip struct {
	RootDataFields
	Vessel             *VesselSnapshot
	DepartureDateTime  *time.Time
	ReturnDateTime     *time.Time
	DepartureLocation  *ReferentialRef
	ReturnLocation     *ReferentialRef
	ObservedLocationID *int
}

// TripFromObject hydrates a trip.
func TripFromObject(src Object) *Trip {
	if len(src) == 0 {
		return nil
	}
	return &Trip{
		RootDataFields:     readRootData(src),
		Vessel:             readVessel(src),
		DepartureDateTime:  src.Date("departureDateTime"),
		ReturnDateTime:     src.Date("returnDateTime"),
		DepartureLocation:  readRef(src, "departureLocation", "departureLocationId"),
		ReturnLocation:     readRef(src, "returnLocation", "returnLocationId"),
		ObservedLocationID: src.Int("observedLocationId"),
	}
}

// Typename implements Entity.
func (t *Trip) Typename() string { return TypenameTrip }

// AsObject implements Entity.
func (t *Trip) AsObject(opts AsObjectOptions) Object {
	if t == nil {
		return nil
	}
	target := Object{}
	t.writeRootData(target, TypenameTrip, opts)
	writeVessel(target, t.Vessel, opts)
	target.SetDate("departureDateTime", t.DepartureDateTime)
	target.SetDate("returnDateTime", t.ReturnDateTime)
	writeRef(target, t.DepartureLocation, "departureLocation", "departureLocationId", opts)
	writeRef(target, t.ReturnLocation, "returnLocation", "returnLocationId", opts)
	target.SetInt("observedLocationId", t.ObservedLocationID)
	return target
}
