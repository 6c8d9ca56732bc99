package model

import (
	"time"

	"github.com/rpattn/fishql/internal/dates"
)

func date(s string) *time.Time {
	return dates.Parse(s)
}

func ref(id int, label string) *ReferentialRef {
	return &ReferentialRef{EntityBase: EntityBase{ID: IntPtr(id)}, Label: label, Name: label + " name", EntityName: "Location"}
}

func person(id int) *Person {
	return &Person{
		EntityBase: EntityBase{ID: IntPtr(id)},
		FirstName:  "Jane",
		LastName:   "Doe",
		Department: ref(7, "DEP"),
	}
}

func vessel(id int) *VesselSnapshot {
	return &VesselSnapshot{
		EntityBase:       EntityBase{ID: IntPtr(id)},
		Name:             "Marie-Galante",
		ExteriorMarking:  "GV123",
		RegistrationCode: "FRA000123",
		VesselType:       ref(1, "FISHING"),
		BasePortLocation: ref(10, "XBL"),
	}
}

func rootData(id int) RootDataFields {
	return RootDataFields{
		DataFields: DataFields{
			EntityBase:         EntityBase{ID: IntPtr(id), UpdateDate: date("2024-05-01T08:00:00Z")},
			RecorderDepartment: ref(7, "DEP"),
			ControlDate:        date("2024-05-02T08:00:00Z"),
			QualityFlagID:      IntPtr(0),
		},
		Program:               ref(11, "SIH-OBSMER"),
		RecorderPerson:        person(3),
		SynchronizationStatus: SyncStatusSync,
		CreationDate:          date("2024-04-30T08:00:00Z"),
		Comments:              "checked",
	}
}

func sampleLanding() *Landing {
	return &Landing{
		RootDataFields:     rootData(100),
		DateTime:           date("2024-05-01T06:30:00Z"),
		Location:           ref(3, "XBL"),
		Vessel:             vessel(20),
		ObservedLocationID: IntPtr(55),
		RankOrder:          IntPtr(1),
		Observers:          []*Person{person(3), person(4)},
		MeasurementValues:  map[string]string{PmfmStrategyLabel: "24LEUCCIR001"},
	}
}

func sampleMetier() *Metier {
	return &Metier{
		Referential: Referential{
			EntityBase: EntityBase{ID: IntPtr(40)},
			Label:      "OTB_DEF",
			Name:       "Bottom otter trawl",
			EntityName: "Metier",
			Status:     ref(1, "ENABLE"),
			Parent: &Referential{
				EntityBase: EntityBase{ID: IntPtr(39)},
				Label:      "OTB",
				Level:      ref(2, "LEVEL-4"),
			},
		},
		Gear:       ref(5, "OTB"),
		TaxonGroup: ref(6, "DEF"),
	}
}

func sampleStrategy() *Strategy {
	return &Strategy{
		Referential: Referential{
			EntityBase: EntityBase{ID: IntPtr(30)},
			Label:      "24LEUCCIR001",
			Name:       "Leucoraja circularis 2024",
			Status:     ref(1, "ENABLE"),
		},
		ProgramID:         IntPtr(5),
		AnalyticReference: "P101-0001-01-DF",
		Departments:       []*ReferentialRef{ref(7, "DEP")},
		AppliedLocations:  []*ReferentialRef{ref(3, "XBL")},
		AppliedPeriods: []AppliedPeriod{
			{StartDate: date("2024-01-01"), EndDate: date("2024-03-31")},
		},
		TaxonNames: []*TaxonName{
			{Referential: Referential{EntityBase: EntityBase{ID: IntPtr(1001)}, Label: "LEUCCIR"}, IsReferent: true, ReferenceTaxonID: IntPtr(9001)},
		},
	}
}
