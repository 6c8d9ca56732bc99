package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpattn/fishql/internal/model"
)

func openTestStore(t *testing.T, now func() time.Time) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "fishql.db"), WithClock(now))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fixedClock(ts string) func() time.Time {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return parsed }
}

func landingObject(id int, location int) model.Object {
	return model.Object{
		"id":       id,
		"dateTime": "2024-03-01T08:00:00.000Z",
		"location": model.Object{"id": location, "label": "XBL"},
		"program":  model.Object{"id": 10, "label": "SIH-OBSMER"},
	}
}

func TestSQLiteStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, fixedClock("2024-03-02T10:00:00Z"))

	stored, err := s.Save(ctx, model.LandingFromObject(landingObject(5, 3)))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := stored.String("updateDate"); got != "2024-03-02T10:00:00.000Z" {
		t.Fatalf("expected updateDate to be stamped, got %q", got)
	}
	if got := stored.String("__typename"); got != model.TypenameLanding {
		t.Fatalf("expected typename to be stored, got %q", got)
	}

	obj, err := s.Get(ctx, model.TypenameLanding, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	landing := model.LandingFromObject(obj)
	if !model.IntEquals(landing.ID, 5) || !model.IntEquals(model.RefID(landing.Location), 3) {
		t.Fatalf("unexpected landing read back: %#v", obj)
	}
	if err := model.CheckRoundTrip(landing, model.LandingFromObject); err != nil {
		t.Fatalf("stored landing does not round trip: %v", err)
	}
}

func TestSQLiteStoreConflict(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, fixedClock("2024-03-02T10:00:00Z"))

	first, err := s.Save(ctx, model.LandingFromObject(landingObject(5, 3)))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// a copy loaded before the first save carries no updateDate
	if _, err := s.Save(ctx, model.LandingFromObject(landingObject(5, 4))); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for a stale copy, got %v", err)
	}

	fresh := model.LandingFromObject(first)
	fresh.Location = &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(4)}}
	if _, err := s.Save(ctx, fresh); err != nil {
		t.Fatalf("expected save from the stored copy to succeed, got %v", err)
	}
}

func TestSQLiteStoreLocalIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Now)

	var ids []int
	for i := 0; i < 3; i++ {
		obj, err := s.Save(ctx, &model.Landing{})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		id := obj.Int("id")
		if id == nil {
			t.Fatalf("expected a local id, got %#v", obj)
		}
		ids = append(ids, *id)
	}
	if ids[0] != -1 || ids[1] != -2 || ids[2] != -3 {
		t.Fatalf("unexpected local ids %v", ids)
	}

	other, err := s.NextLocalID(ctx, model.TypenameOperation)
	if err != nil {
		t.Fatalf("next local id: %v", err)
	}
	if other != -1 {
		t.Fatalf("expected sequences per collection, got %d", other)
	}
}

func TestSQLiteStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, time.Now)

	for _, id := range []int{9, 2, 5} {
		if _, err := s.Save(ctx, model.LandingFromObject(landingObject(id, 3))); err != nil {
			t.Fatalf("save %d: %v", id, err)
		}
	}
	ref := &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(2)}, Label: "XBL", EntityName: "Location"}
	if _, err := s.Save(ctx, ref); err != nil {
		t.Fatalf("save referential: %v", err)
	}

	objects, err := s.List(ctx, model.TypenameLanding)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []int
	for _, obj := range objects {
		got = append(got, *obj.Int("id"))
	}
	if len(got) != 3 || got[0] != 2 || got[1] != 5 || got[2] != 9 {
		t.Fatalf("expected landings ordered by id, got %v", got)
	}

	if err := s.Delete(ctx, model.TypenameLanding, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, model.TypenameLanding, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, model.TypenameLanding, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a second delete, got %v", err)
	}

	if _, err := s.Get(ctx, ReferentialCollection(model.TypenameReferential, "Location"), 2); err != nil {
		t.Fatalf("expected referential in its own collection, got %v", err)
	}
}

func TestSQLiteStoreRejectsEmptyEntity(t *testing.T) {
	s := openTestStore(t, time.Now)
	var landing *model.Landing
	if _, err := s.Save(context.Background(), landing); !errors.Is(err, ErrEmptyEntity) {
		t.Fatalf("expected ErrEmptyEntity, got %v", err)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fishql.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Save(context.Background(), model.LandingFromObject(landingObject(1, 3))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), model.TypenameLanding, 1); err != nil {
		t.Fatalf("expected landing to survive reopening, got %v", err)
	}
}
