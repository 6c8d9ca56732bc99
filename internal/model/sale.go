package model

import "time"

// TypenameSale is the discriminator of Sale.
const TypenameSale = "SaleVO"

// Sale records the sale of a catch, linked to a trip or an observed location.
type Sale struct {
	RootDataFields
	StartDateTime      *time.Time
	EndDateTime        *time.Time
	SaleLocation       *ReferentialRef
	SaleType           *ReferentialRef
	Vessel             *VesselSnapshot
	ObservedLocationID *int
	TripID             *int
	RankOrder          *int
}

// SaleFromObject hydrates a sale.
func SaleFromObject(src Object) *Sale {
	if len(src) == 0 {
		return nil
	}
	return &Sale{
		RootDataFields:     readRootData(src),
		StartDateTime:      src.Date("startDateTime"),
		EndDateTime:        src.Date("endDateTime"),
		SaleLocation:       readRef(src, "saleLocation", "saleLocationId"),
		SaleType:           readRef(src, "saleType", "saleTypeId"),
		Vessel:             readVessel(src),
		ObservedLocationID: src.Int("observedLocationId"),
		TripID:             src.Int("tripId"),
		RankOrder:          src.Int("rankOrder"),
	}
}

// Typename implements Entity.
func (s *Sale) Typename() string { return TypenameSale }

// AsObject implements Entity.
func (s *Sale) AsObject(opts AsObjectOptions) Object {
	if s == nil {
		return nil
	}
	target := Object{}
	s.writeRootData(target, TypenameSale, opts)
	target.SetDate("startDateTime", s.StartDateTime)
	target.SetDate("endDateTime", s.EndDateTime)
	writeRef(target, s.SaleLocation, "saleLocation", "saleLocationId", opts)
	writeRef(target, s.SaleType, "saleType", "saleTypeId", opts)
	writeVessel(target, s.Vessel, opts)
	target.SetInt("observedLocationId", s.ObservedLocationID)
	target.SetInt("tripId", s.TripID)
	target.SetInt("rankOrder", s.RankOrder)
	return target
}
