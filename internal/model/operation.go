package model

import "time"

// TypenameOperation is the discriminator of Operation.
const TypenameOperation = "OperationVO"

// Operation is a fishing operation carried out during a trip.
type Operation struct {
	DataFields
	TripID               *int
	RankOrderOnPeriod    *int
	StartDateTime        *time.Time
	EndDateTime          *time.Time
	FishingStartDateTime *time.Time
	FishingEndDateTime   *time.Time
	Metier               *Metier
	PhysicalGearID       *int
	Comments             string
}

// OperationFromObject hydrates an operation.
func OperationFromObject(src Object) *Operation {
	if len(src) == 0 {
		return nil
	}
	op := &Operation{
		DataFields:           readData(src),
		TripID:               src.Int("tripId"),
		RankOrderOnPeriod:    src.Int("rankOrderOnPeriod"),
		StartDateTime:        src.Date("startDateTime"),
		EndDateTime:          src.Date("endDateTime"),
		FishingStartDateTime: src.Date("fishingStartDateTime"),
		FishingEndDateTime:   src.Date("fishingEndDateTime"),
		Metier:               MetierFromObject(src.Child("metier")),
		PhysicalGearID:       src.Int("physicalGearId"),
		Comments:             src.String("comments"),
	}
	if op.Metier == nil {
		if id := src.Int("metierId"); id != nil {
			op.Metier = &Metier{Referential: Referential{EntityBase: EntityBase{ID: id}}}
		}
	}
	return op
}

// Typename implements Entity.
func (o *Operation) Typename() string { return TypenameOperation }

// AsObject implements Entity.
func (o *Operation) AsObject(opts AsObjectOptions) Object {
	if o == nil {
		return nil
	}
	target := Object{}
	o.writeData(target, TypenameOperation, opts)
	target.SetInt("tripId", o.TripID)
	target.SetInt("rankOrderOnPeriod", o.RankOrderOnPeriod)
	target.SetDate("startDateTime", o.StartDateTime)
	target.SetDate("endDateTime", o.EndDateTime)
	target.SetDate("fishingStartDateTime", o.FishingStartDateTime)
	target.SetDate("fishingEndDateTime", o.FishingEndDateTime)
	if o.Metier != nil {
		if opts.Minify {
			target.SetInt("metierId", o.Metier.ID)
		} else {
			target.SetObject("metier", o.Metier.AsObject(opts))
		}
	}
	target.SetInt("physicalGearId", o.PhysicalGearID)
	target.SetString("comments", o.Comments)
	return target
}

// FishingDate returns the best known start of the fishing activity.
func (o *Operation) FishingDate() *time.Time {
	if o.FishingStartDateTime != nil {
		return o.FishingStartDateTime
	}
	return o.StartDateTime
}
