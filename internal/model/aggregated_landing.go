package model

import "time"

// TypenameAggregatedLanding is the discriminator of AggregatedLanding.
const TypenameAggregatedLanding = "AggregatedLandingVO"

// VesselActivity is one day of activity of a vessel in an aggregated landing.
type VesselActivity struct {
	Date               *time.Time
	RankOrder          *int
	Comments           string
	ObservedLocationID *int
	LandingID          *int
	TripID             *int
	Metiers            []*ReferentialRef
}

func vesselActivityFromObject(src Object) VesselActivity {
	return VesselActivity{
		Date:               src.Date("date"),
		RankOrder:          src.Int("rankOrder"),
		Comments:           src.String("comments"),
		ObservedLocationID: src.Int("observedLocationId"),
		LandingID:          src.Int("landingId"),
		TripID:             src.Int("tripId"),
		Metiers:            refsFromObjects(src.Children("metiers")),
	}
}

func (a VesselActivity) asObject(opts AsObjectOptions) Object {
	target := Object{}
	target.SetDate("date", a.Date)
	target.SetInt("rankOrder", a.RankOrder)
	target.SetString("comments", a.Comments)
	target.SetInt("observedLocationId", a.ObservedLocationID)
	target.SetInt("landingId", a.LandingID)
	target.SetInt("tripId", a.TripID)
	target.SetObjects("metiers", refsAsObjects(a.Metiers, opts))
	return target
}

// AggregatedLanding summarizes the daily activity of one vessel over a period.
type AggregatedLanding struct {
	EntityBase
	Program            *ReferentialRef
	Location           *ReferentialRef
	Vessel             *VesselSnapshot
	ObservedLocationID *int
	Activities         []VesselActivity
}

// AggregatedLandingFromObject hydrates an aggregated landing.
func AggregatedLandingFromObject(src Object) *AggregatedLanding {
	if len(src) == 0 {
		return nil
	}
	a := &AggregatedLanding{
		EntityBase:         readBase(src),
		Program:            readRef(src, "program", "programId"),
		Location:           readRef(src, "location", "locationId"),
		Vessel:             readVessel(src),
		ObservedLocationID: src.Int("observedLocationId"),
	}
	for _, child := range src.Children("vesselActivities") {
		a.Activities = append(a.Activities, vesselActivityFromObject(child))
	}
	return a
}

// Typename implements Entity.
func (a *AggregatedLanding) Typename() string { return TypenameAggregatedLanding }

// AsObject implements Entity.
func (a *AggregatedLanding) AsObject(opts AsObjectOptions) Object {
	if a == nil {
		return nil
	}
	target := Object{}
	a.writeTo(target, TypenameAggregatedLanding, opts)
	writeRef(target, a.Program, "program", "programId", opts)
	writeRef(target, a.Location, "location", "locationId", opts)
	writeVessel(target, a.Vessel, opts)
	target.SetInt("observedLocationId", a.ObservedLocationID)
	if len(a.Activities) > 0 {
		activities := make([]Object, 0, len(a.Activities))
		for _, activity := range a.Activities {
			activities = append(activities, activity.asObject(opts))
		}
		target.SetObjects("vesselActivities", activities)
	}
	return target
}
