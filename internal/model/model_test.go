package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRoundTripEveryType(t *testing.T) {
	cases := map[string]struct {
		entity Entity
		from   func(Object) Entity
	}{
		"referential ref": {ref(3, "XBL"), factory(ReferentialRefFromObject)},
		"metier":          {sampleMetier(), factory(MetierFromObject)},
		"person":          {person(3), factory(PersonFromObject)},
		"vessel":          {vessel(20), factory(VesselSnapshotFromObject)},
		"strategy":        {sampleStrategy(), factory(StrategyFromObject)},
		"levelled ref": {&ReferentialRef{
			EntityBase: EntityBase{ID: IntPtr(4)}, Label: "XLR", LevelID: IntPtr(2), LevelLabel: "HARBOUR",
		}, factory(ReferentialRefFromObject)},
		"strategy with empty taxon slot": {&Strategy{
			Referential: Referential{EntityBase: EntityBase{ID: IntPtr(9)}, Label: "20LEUCCIR001"},
			TaxonNames:  []*TaxonName{nil},
		}, factory(StrategyFromObject)},
		"landing":         {sampleLanding(), factory(LandingFromObject)},
		"trip": {&Trip{
			RootDataFields:    rootData(12),
			Vessel:            vessel(20),
			DepartureDateTime: date("2024-05-01T04:00:00Z"),
			ReturnDateTime:    date("2024-05-03T18:00:00Z"),
			DepartureLocation: ref(3, "XBL"),
			ReturnLocation:    ref(4, "XLR"),
		}, factory(TripFromObject)},
		"operation": {&Operation{
			DataFields:    DataFields{EntityBase: EntityBase{ID: IntPtr(8)}, RecorderDepartment: ref(7, "DEP")},
			TripID:        IntPtr(42),
			StartDateTime: date("2024-05-01T10:00:00Z"),
			Metier:        sampleMetier(),
		}, factory(OperationFromObject)},
		"observed location": {&ObservedLocation{
			RootDataFields: rootData(55),
			StartDateTime:  date("2024-05-01T00:00:00Z"),
			Location:       ref(3, "XBL"),
			Observers:      []*Person{person(3)},
		}, factory(ObservedLocationFromObject)},
		"sale": {&Sale{
			RootDataFields: rootData(70),
			StartDateTime:  date("2024-05-02T07:00:00Z"),
			SaleLocation:   ref(3, "XBL"),
			SaleType:       ref(2, "AUCTION"),
			TripID:         IntPtr(12),
		}, factory(SaleFromObject)},
		"aggregated landing": {&AggregatedLanding{
			EntityBase:         EntityBase{ID: IntPtr(1)},
			Location:           ref(3, "XBL"),
			Vessel:             vessel(20),
			ObservedLocationID: IntPtr(55),
			Activities: []VesselActivity{
				{Date: date("2024-05-01"), RankOrder: IntPtr(1), Metiers: []*ReferentialRef{ref(40, "OTB_DEF")}},
			},
		}, factory(AggregatedLandingFromObject)},
		"peer": {&Peer{EntityBase: EntityBase{ID: IntPtr(1)}, Host: "server.example.org", Port: IntPtr(443), UseSSL: true, Pubkey: "abc"}, factory(PeerFromObject)},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if err := CheckRoundTrip(tc.entity, tc.from); err != nil {
				t.Fatalf("in-memory round trip failed: %v", err)
			}
			if err := CheckJSONRoundTrip(tc.entity, tc.from); err != nil {
				t.Fatalf("JSON round trip failed: %v", err)
			}
			if err := CheckMinified(tc.entity.AsObject(AsObjectOptions{Minify: true}), nil); err != nil {
				t.Fatalf("minified output failed: %v", err)
			}
		})
	}
}

func TestReferentialMinify(t *testing.T) {
	m := sampleMetier()

	full := m.AsObject(AsObjectOptions{})
	if _, ok := full["gear"].(Object); !ok {
		t.Fatalf("expected full gear object, got %#v", full["gear"])
	}
	parent, ok := full["parent"].(Object)
	if !ok {
		t.Fatalf("expected full parent object, got %#v", full["parent"])
	}
	if _, ok := parent["level"].(Object); !ok {
		t.Fatalf("expected parent level to stay nested in full form, got %#v", parent)
	}
	if full["entityName"] != "Metier" {
		t.Errorf("expected entityName in full form, got %#v", full["entityName"])
	}

	min := m.AsObject(AsObjectOptions{Minify: true})
	for _, key := range []string{"gear", "taxonGroup", "parent", "status"} {
		if _, present := min[key]; present {
			t.Errorf("minified metier kept %q", key)
		}
	}
	want := map[string]int{"gearId": 5, "taxonGroupId": 6, "parentId": 39, "statusId": 1}
	for key, id := range want {
		if min[key] != id {
			t.Errorf("expected %s=%d, got %#v", key, id, min[key])
		}
	}
	if _, present := min["entityName"]; present {
		t.Errorf("minified metier kept entityName")
	}

	kept := m.AsObject(AsObjectOptions{Minify: true, KeepEntityName: true})
	if kept["entityName"] != "Metier" {
		t.Errorf("expected entityName with KeepEntityName, got %#v", kept["entityName"])
	}
}

func TestRootDataMinify(t *testing.T) {
	l := sampleLanding()
	l.SynchronizationStatus = SyncStatusDirty

	min := l.AsObject(AsObjectOptions{Minify: true})
	if min["programId"] != 11 || min["recorderDepartmentId"] != 7 || min["recorderPersonId"] != 3 {
		t.Fatalf("unexpected minified root fields: %#v", min)
	}
	if min["locationId"] != 3 || min["vesselId"] != 20 {
		t.Fatalf("unexpected minified references: %#v", min)
	}
	if _, present := min["synchronizationStatus"]; present {
		t.Errorf("synchronization status must stay local")
	}

	full := l.AsObject(AsObjectOptions{})
	if full["synchronizationStatus"] != SyncStatusDirty {
		t.Errorf("expected synchronization status in full form, got %#v", full["synchronizationStatus"])
	}
}

func TestMinifiedInputHydratesReferences(t *testing.T) {
	l := LandingFromObject(Object{"id": 1, "locationId": 3, "vesselId": 20, "programId": 11})
	if RefID(l.Location) == nil || *RefID(l.Location) != 3 {
		t.Fatalf("expected location id 3, got %#v", l.Location)
	}
	if VesselID(l.Vessel) == nil || *VesselID(l.Vessel) != 20 {
		t.Fatalf("expected vessel id 20, got %#v", l.Vessel)
	}
	if err := CheckMinified(l.AsObject(AsObjectOptions{Minify: true}), nil); err != nil {
		t.Fatalf("unexpected minified output: %v", err)
	}
}

func TestFromObjectLeavesMissingReferencesNil(t *testing.T) {
	l := LandingFromObject(Object{"id": 1, "location": nil, "vesselSnapshot": "not an object"})
	if l.Location != nil {
		t.Errorf("expected nil location, got %#v", l.Location)
	}
	if l.Vessel != nil {
		t.Errorf("expected nil vessel, got %#v", l.Vessel)
	}
	if LandingFromObject(nil) != nil {
		t.Errorf("expected nil landing for empty source")
	}
}

func TestMalformedDatesDegrade(t *testing.T) {
	l := LandingFromObject(Object{"id": 1, "dateTime": "31/12/2024", "updateDate": 12})
	if l.DateTime != nil || l.UpdateDate != nil {
		t.Fatalf("expected malformed dates to read as nil, got %v and %v", l.DateTime, l.UpdateDate)
	}
	if _, present := l.AsObject(AsObjectOptions{})["dateTime"]; present {
		t.Fatalf("absent date must not be written")
	}
}

func TestTypenameAndLocalID(t *testing.T) {
	l := &Landing{RootDataFields: RootDataFields{DataFields: DataFields{EntityBase: EntityBase{ID: IntPtr(-4)}}}}

	obj := l.AsObject(AsObjectOptions{KeepTypename: true})
	if obj["__typename"] != TypenameLanding {
		t.Fatalf("expected typename, got %#v", obj["__typename"])
	}
	if obj["id"] != -4 {
		t.Fatalf("expected local id to be kept by default, got %#v", obj["id"])
	}

	obj = l.AsObject(AsObjectOptions{DropLocalID: true})
	if _, present := obj["id"]; present {
		t.Fatalf("expected local id to be dropped")
	}
	if _, present := obj["__typename"]; present {
		t.Fatalf("typename written without KeepTypename")
	}
}

func TestObjectReaders(t *testing.T) {
	var doc Object
	if err := json.Unmarshal([]byte(`{"a": 3, "b": 3.5, "c": [1, "x", 2], "d": "s", "e": {"id": 1}, "f": [{"id": 2}, 4]}`), &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := doc.Int("a"); got == nil || *got != 3 {
		t.Errorf("expected int 3, got %v", got)
	}
	if got := doc.Int("b"); got != nil {
		t.Errorf("expected non-integral number to read as absent, got %v", *got)
	}
	if got := doc.Ints("c"); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("unexpected ints %v", got)
	}
	if got := doc.Int("d"); got != nil {
		t.Errorf("expected string to read as absent int")
	}
	if got := doc.Child("e"); got.Int("id") == nil {
		t.Errorf("expected nested object, got %#v", got)
	}
	if got := doc.Children("f"); len(got) != 1 {
		t.Errorf("expected one nested object, got %#v", got)
	}
	if got := doc.Child("missing"); got != nil {
		t.Errorf("expected nil child, got %#v", got)
	}

	var nilObj Object
	if nilObj.Int("x") != nil || nilObj.String("x") != "" || nilObj.Child("x") != nil {
		t.Errorf("nil object readers must return zero values")
	}
}

func TestEquals(t *testing.T) {
	a := &Landing{RootDataFields: RootDataFields{DataFields: DataFields{EntityBase: EntityBase{ID: IntPtr(1)}}}}
	b := LandingFromObject(Object{"id": 1, "comments": "edited"})
	c := &Sale{RootDataFields: RootDataFields{DataFields: DataFields{EntityBase: EntityBase{ID: IntPtr(1)}}}}

	if !Equals(a, b) {
		t.Errorf("expected landings with same id to be equal")
	}
	if Equals(a, c) {
		t.Errorf("expected entities of different types to differ")
	}
	if Equals(&Landing{}, &Landing{}) {
		t.Errorf("expected entities without id to differ")
	}
	var nilLanding *Landing
	if Equals(a, nilLanding) || Equals(nil, a) {
		t.Errorf("expected nil entities to never be equal")
	}
}

func TestPeerEquals(t *testing.T) {
	a := &Peer{EntityBase: EntityBase{ID: IntPtr(1)}, Host: "node.example.org", Port: IntPtr(443), UseSSL: true, Pubkey: "k1"}
	b := &Peer{EntityBase: EntityBase{ID: IntPtr(2)}, Host: "node.example.org", UseSSL: true, Pubkey: "k1"}
	c := &Peer{EntityBase: EntityBase{ID: IntPtr(1)}, Host: "node.example.org", Port: IntPtr(8080), Pubkey: "k1"}

	if a.URL() != "https://node.example.org" {
		t.Fatalf("unexpected url %s", a.URL())
	}
	if !Equals(a, b) {
		t.Errorf("expected peers with same pubkey and url to be equal")
	}
	if Equals(a, c) {
		t.Errorf("expected peers with different urls to differ")
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	src := sampleLanding().AsObject(AsObjectOptions{KeepTypename: true})
	e, err := r.FromObject(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := e.(*Landing); !ok {
		t.Fatalf("expected *Landing, got %T", e)
	}

	if _, err := r.FromObject(Object{"__typename": "UnknownVO", "id": 1}); !errors.Is(err, ErrUnknownTypename) {
		t.Fatalf("expected ErrUnknownTypename, got %v", err)
	}
	if _, err := r.FromTypedObject(TypenameLanding, Object{}); err == nil {
		t.Fatalf("expected error for empty object")
	}
	if !r.Knows(TypenamePeer) || len(r.Typenames()) != 13 {
		t.Fatalf("unexpected registry content: %v", r.Typenames())
	}
}

func TestQualityStatus(t *testing.T) {
	d := DataFields{}
	if d.QualityStatus() != QualityStatusModified {
		t.Errorf("expected MODIFIED")
	}
	d.ControlDate = date("2024-01-01")
	if d.QualityStatus() != QualityStatusControlled {
		t.Errorf("expected CONTROLLED")
	}
	d.ValidationDate = date("2024-01-02")
	if d.QualityStatus() != QualityStatusValidated {
		t.Errorf("expected VALIDATED")
	}
	d.QualificationDate = date("2024-01-03")
	if d.QualityStatus() != QualityStatusQualified {
		t.Errorf("expected QUALIFIED")
	}
}
