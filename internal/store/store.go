package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpattn/fishql/internal/dates"
	"github.com/rpattn/fishql/internal/model"
)

var (
	// ErrNotFound is returned when no row matches a collection and id.
	ErrNotFound = errors.New("entity not found")
	// ErrConflict is returned when the stored updateDate differs from the
	// one carried by the saved entity.
	ErrConflict = errors.New("entity was modified since it was loaded")
	// ErrEmptyEntity is returned when saving a nil entity.
	ErrEmptyEntity = errors.New("cannot save an empty entity")
)

// Store persists entity objects grouped by collection.
type Store interface {
	// Save writes e and returns the stored object. Entities without an id
	// get a local (negative) one.
	Save(ctx context.Context, e model.Entity) (model.Object, error)
	Get(ctx context.Context, collection string, id int) (model.Object, error)
	// List returns every object of collection ordered by id.
	List(ctx context.Context, collection string) ([]model.Object, error)
	Delete(ctx context.Context, collection string, id int) error
	// NextLocalID allocates the next local id of collection: -1, -2...
	NextLocalID(ctx context.Context, collection string) (int, error)
	Close() error
}

// CollectionOf returns the collection e is stored in. Referentials are
// split per entity name.
func CollectionOf(e model.Entity) string {
	typename := e.Typename()
	var entityName string
	switch typed := e.(type) {
	case *model.ReferentialRef:
		entityName = typed.EntityName
	case *model.Referential:
		entityName = typed.EntityName
	}
	return ReferentialCollection(typename, entityName)
}

// ReferentialCollection joins typename and entityName the way CollectionOf
// does.
func ReferentialCollection(typename, entityName string) string {
	if entityName == "" {
		return typename
	}
	return typename + "." + entityName
}

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used to stamp updateDate.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// record is an entity ready to be written.
type record struct {
	collection string
	id         int
	hasID      bool
	// expected is the updateDate the caller loaded, "" for a new entity.
	expected   string
	updateDate string
	object     model.Object
}

func newRecord(e model.Entity, now time.Time) (record, error) {
	obj := e.AsObject(model.AsObjectOptions{KeepTypename: true})
	if obj == nil {
		return record{}, ErrEmptyEntity
	}
	r := record{
		collection: CollectionOf(e),
		expected:   obj.String("updateDate"),
		object:     obj,
	}
	stamp := now.UTC().Truncate(time.Millisecond)
	r.updateDate = dates.Format(&stamp)
	obj["updateDate"] = r.updateDate
	if id := e.EntityID(); id != nil {
		r.id = *id
		r.hasID = true
	}
	return r, nil
}

// assignID sets the id of a record that had none.
func (r *record) assignID(id int) {
	r.id = id
	r.hasID = true
	r.object["id"] = id
}

func (r record) payload() ([]byte, error) {
	data, err := json.Marshal(r.object)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s %d: %w", r.collection, r.id, err)
	}
	return data, nil
}

// checkVersion compares the stored updateDate with the expected one.
func (r record) checkVersion(stored string) error {
	if stored != r.expected {
		return fmt.Errorf("%w: %s %d stored at %q, saved from %q", ErrConflict, r.collection, r.id, stored, r.expected)
	}
	return nil
}

func decodePayload(collection string, id int, payload []byte) (model.Object, error) {
	obj, err := model.ParseObject(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s %d: %w", collection, id, err)
	}
	return obj, nil
}
