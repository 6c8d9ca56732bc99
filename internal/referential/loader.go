// Package referential resolves referential references by id, batching the
// lookups of one request and sharing results through a cache.
package referential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/fishql/internal/cache"
	"github.com/rpattn/fishql/internal/model"
)

// ErrNotFound is returned for an id the fetcher does not know.
var ErrNotFound = errors.New("referential not found")

// Fetcher loads references of one entity name by id. Missing ids are left
// out of the result.
type Fetcher interface {
	LoadByIDs(ctx context.Context, entityName string, ids []int) ([]*model.ReferentialRef, error)
}

// Loader batches reference lookups per entity name. A Loader memoizes what
// it loaded: create one per request.
type Loader struct {
	fetcher Fetcher
	cache   cache.Cache
	ttl     time.Duration
	wait    time.Duration

	mu      sync.Mutex
	loaders map[string]*dataloader.Loader
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache shares loaded references through c for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(l *Loader) {
		l.cache = c
		l.ttl = ttl
	}
}

// WithWait sets how long a batch collects keys before it is fetched.
func WithWait(d time.Duration) Option {
	return func(l *Loader) {
		l.wait = d
	}
}

// NewLoader creates a loader fetching through fetcher.
func NewLoader(fetcher Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		cache:   cache.NewNoop(),
		wait:    5 * time.Millisecond,
		loaders: make(map[string]*dataloader.Loader),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the reference of entityName with id.
func (l *Loader) Load(ctx context.Context, entityName string, id int) (*model.ReferentialRef, error) {
	data, err := l.loader(entityName).Load(ctx, dataloader.StringKey(strconv.Itoa(id)))()
	if err != nil {
		return nil, err
	}
	ref, _ := data.(*model.ReferentialRef)
	return ref, nil
}

// LoadMany returns the references of entityName with ids, in order. The
// first failing id aborts the lookup.
func (l *Loader) LoadMany(ctx context.Context, entityName string, ids []int) ([]*model.ReferentialRef, error) {
	keys := make(dataloader.Keys, len(ids))
	for i, id := range ids {
		keys[i] = dataloader.StringKey(strconv.Itoa(id))
	}
	data, errs := l.loader(entityName).LoadMany(ctx, keys)()
	refs := make([]*model.ReferentialRef, len(ids))
	for i := range ids {
		if i < len(errs) && errs[i] != nil {
			return nil, errs[i]
		}
		refs[i], _ = data[i].(*model.ReferentialRef)
	}
	return refs, nil
}

// Resolve completes a reference known by id only. References without id or
// entity name, and references that already carry a label, are returned as is.
func (l *Loader) Resolve(ctx context.Context, ref *model.ReferentialRef) (*model.ReferentialRef, error) {
	if !model.IsNotEmptyRef(ref) || ref.EntityName == "" || ref.Label != "" {
		return ref, nil
	}
	return l.Load(ctx, ref.EntityName, *ref.ID)
}

func (l *Loader) loader(entityName string) *dataloader.Loader {
	l.mu.Lock()
	defer l.mu.Unlock()
	if loader, ok := l.loaders[entityName]; ok {
		return loader
	}
	loader := dataloader.NewBatchedLoader(l.batchFn(entityName), dataloader.WithWait(l.wait))
	l.loaders[entityName] = loader
	return loader
}

func (l *Loader) batchFn(entityName string) dataloader.BatchFunc {
	return func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))
		positions := make(map[int][]int)
		var missing []int
		for i, key := range keys {
			id, err := strconv.Atoi(key.String())
			if err != nil {
				results[i] = &dataloader.Result{Error: fmt.Errorf("invalid referential id %q: %w", key.String(), err)}
				continue
			}
			if ref := l.cached(ctx, entityName, id); ref != nil {
				results[i] = &dataloader.Result{Data: ref}
				continue
			}
			if _, seen := positions[id]; !seen {
				missing = append(missing, id)
			}
			positions[id] = append(positions[id], i)
		}
		if len(missing) == 0 {
			return results
		}

		refs, err := l.fetcher.LoadByIDs(ctx, entityName, missing)
		if err != nil {
			err = fmt.Errorf("failed to load %s %v: %w", entityName, missing, err)
			for _, id := range missing {
				for _, i := range positions[id] {
					results[i] = &dataloader.Result{Error: err}
				}
			}
			return results
		}

		byID := make(map[int]*model.ReferentialRef, len(refs))
		for _, ref := range refs {
			if model.IsNotEmptyRef(ref) {
				if ref.EntityName == "" {
					ref.EntityName = entityName
				}
				byID[*ref.ID] = ref
			}
		}
		for _, id := range missing {
			ref, ok := byID[id]
			for _, i := range positions[id] {
				if ok {
					results[i] = &dataloader.Result{Data: ref}
				} else {
					results[i] = &dataloader.Result{Error: fmt.Errorf("%w: %s %d", ErrNotFound, entityName, id)}
				}
			}
			if ok {
				l.store(ctx, entityName, ref)
			}
		}
		return results
	}
}

// CacheKey returns the cache key of a reference.
func CacheKey(entityName string, id int) string {
	return fmt.Sprintf("referential:%s:%d", entityName, id)
}

func (l *Loader) cached(ctx context.Context, entityName string, id int) *model.ReferentialRef {
	data, ok, err := l.cache.Get(ctx, CacheKey(entityName, id))
	if err != nil {
		log.Printf("[REFERENTIAL] cache read failed for %s %d: %v", entityName, id, err)
		return nil
	}
	if !ok {
		return nil
	}
	obj, err := model.ParseObject(data)
	if err != nil {
		log.Printf("[REFERENTIAL] dropping unreadable cache entry for %s %d: %v", entityName, id, err)
		return nil
	}
	return model.ReferentialRefFromObject(obj)
}

func (l *Loader) store(ctx context.Context, entityName string, ref *model.ReferentialRef) {
	data, err := json.Marshal(ref.AsObject(model.AsObjectOptions{}))
	if err != nil {
		log.Printf("[REFERENTIAL] failed to encode %s %d: %v", entityName, *ref.ID, err)
		return
	}
	if err := l.cache.Set(ctx, CacheKey(entityName, *ref.ID), data, l.ttl); err != nil {
		log.Printf("[REFERENTIAL] cache write failed for %s %d: %v", entityName, *ref.ID, err)
	}
}
