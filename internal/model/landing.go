package model

import "time"

// TypenameLanding is the discriminator of Landing.
const TypenameLanding = "LandingVO"

// PmfmStrategyLabel is the measurement key holding the sampling strategy label.
const PmfmStrategyLabel = "359"

// Landing records a vessel unloading its catch at a location.
type Landing struct {
	RootDataFields
	DateTime           *time.Time
	Location           *ReferentialRef
	Vessel             *VesselSnapshot
	ObservedLocationID *int
	TripID             *int
	RankOrder          *int
	Observers          []*Person
	MeasurementValues  map[string]string
}

// LandingFromObject hydrates a landing.
func LandingFromObject(src Object) *Landing {
	if len(src) == 0 {
		return nil
	}
	return &Landing{
		RootDataFields:     readRootData(src),
		DateTime:           src.Date("dateTime"),
		Location:           readRef(src, "location", "locationId"),
		Vessel:             readVessel(src),
		ObservedLocationID: src.Int("observedLocationId"),
		TripID:             src.Int("tripId"),
		RankOrder:          src.Int("rankOrder"),
		Observers:          personsFromObjects(src.Children("observers")),
		MeasurementValues:  src.StringMap("measurementValues"),
	}
}

// Typename implements Entity.
func (l *Landing) Typename() string { return TypenameLanding }

// AsObject implements Entity.
func (l *Landing) AsObject(opts AsObjectOptions) Object {
	if l == nil {
		return nil
	}
	target := Object{}
	l.writeRootData(target, TypenameLanding, opts)
	target.SetDate("dateTime", l.DateTime)
	writeRef(target, l.Location, "location", "locationId", opts)
	writeVessel(target, l.Vessel, opts)
	target.SetInt("observedLocationId", l.ObservedLocationID)
	target.SetInt("tripId", l.TripID)
	target.SetInt("rankOrder", l.RankOrder)
	target.SetObjects("observers", personsAsObjects(l.Observers, opts))
	target.SetStringMap("measurementValues", l.MeasurementValues)
	return target
}

// StrategyLabel returns the sampling strategy label measured on the landing.
func (l *Landing) StrategyLabel() string {
	return l.MeasurementValues[PmfmStrategyLabel]
}
