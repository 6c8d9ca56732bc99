package store

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rpattn/fishql/internal/filter"
	"github.com/rpattn/fishql/internal/model"
)

// Page selects a window of a result list. A zero Size returns every row
// after Offset. Without SortBy, rows keep the store order (by id).
type Page struct {
	Offset        int
	Size          int
	SortBy        string
	SortDirection SortDirection
}

// DataSource runs the offline flow of one entity type: load the stored
// objects, hydrate them, keep the ones accepted by the filter, paginate.
type DataSource[E model.Entity] struct {
	store      Store
	collection string
	from       func(model.Object) E
}

// NewDataSource creates a data source reading collection through from.
func NewDataSource[E model.Entity](s Store, collection string, from func(model.Object) E) *DataSource[E] {
	return &DataSource[E]{store: s, collection: collection, from: from}
}

// Collection returns the collection the data source reads.
func (d *DataSource[E]) Collection() string {
	return d.collection
}

// Load returns the page of entities accepted by f and the total number of
// accepted entities. A nil filter accepts everything.
func (d *DataSource[E]) Load(ctx context.Context, f filter.Filter[E], page Page) ([]E, int, error) {
	objects, err := d.store.List(ctx, d.collection)
	if err != nil {
		return nil, 0, err
	}
	items := make([]E, 0, len(objects))
	for _, obj := range objects {
		e := d.from(obj)
		if reflect.ValueOf(e).IsNil() {
			continue
		}
		items = append(items, e)
	}
	if f != nil && !f.IsEmpty() {
		items = filter.Apply(f, items)
	}
	if page.SortBy != "" {
		sortEntities(items, page.SortBy, page.SortDirection)
	}
	return paginate(items, page), len(items), nil
}

// Get hydrates one stored entity.
func (d *DataSource[E]) Get(ctx context.Context, id int) (E, error) {
	var zero E
	obj, err := d.store.Get(ctx, d.collection, id)
	if err != nil {
		return zero, err
	}
	return d.from(obj), nil
}

// Save stores e and returns it as stored, with its id and updateDate.
func (d *DataSource[E]) Save(ctx context.Context, e E) (E, error) {
	var zero E
	if got := CollectionOf(e); got != d.collection {
		return zero, fmt.Errorf("cannot save %s into %s", got, d.collection)
	}
	obj, err := d.store.Save(ctx, e)
	if err != nil {
		return zero, err
	}
	return d.from(obj), nil
}

// Delete removes the entity with id.
func (d *DataSource[E]) Delete(ctx context.Context, id int) error {
	return d.store.Delete(ctx, d.collection, id)
}

func paginate[E any](items []E, page Page) []E {
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset >= len(items) {
		return []E{}
	}
	items = items[page.Offset:]
	if page.Size > 0 && page.Size < len(items) {
		items = items[:page.Size]
	}
	return items
}
