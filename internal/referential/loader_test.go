package referential

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rpattn/fishql/internal/cache"
	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/store"
)

type fakeFetcher struct {
	mu      sync.Mutex
	batches [][]int
	rows    map[int]string
	err     error
}

func (f *fakeFetcher) LoadByIDs(ctx context.Context, entityName string, ids []int) ([]*model.ReferentialRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]int(nil), ids...))
	if f.err != nil {
		return nil, f.err
	}
	var refs []*model.ReferentialRef
	for _, id := range ids {
		if label, ok := f.rows[id]; ok {
			refs = append(refs, &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(id)}, Label: label})
		}
	}
	return refs, nil
}

func (f *fakeFetcher) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func TestLoaderBatchesConcurrentLookups(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[int]string{1: "XBL", 2: "XGV", 3: "XDZ"}}
	loader := NewLoader(fetcher, WithWait(20*time.Millisecond))
	ctx := context.Background()

	var wg sync.WaitGroup
	labels := make([]string, 4)
	errs := make([]error, 4)
	for i, id := range []int{1, 2, 3, 2} {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			ref, err := loader.Load(ctx, "Location", id)
			errs[i] = err
			if ref != nil {
				labels[i] = ref.Label
			}
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("lookup %d failed: %v", i, err)
		}
	}
	if labels[0] != "XBL" || labels[1] != "XGV" || labels[2] != "XDZ" || labels[3] != "XGV" {
		t.Fatalf("unexpected labels %v", labels)
	}
	if n := fetcher.batchCount(); n != 1 {
		t.Fatalf("expected one batch, got %d: %v", n, fetcher.batches)
	}
	if len(fetcher.batches[0]) != 3 {
		t.Fatalf("expected duplicate ids to be fetched once, got %v", fetcher.batches[0])
	}
}

func TestLoaderUsesSharedCache(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[int]string{1: "XBL"}}
	shared := cache.NewMemory()
	ctx := context.Background()

	first := NewLoader(fetcher, WithCache(shared, time.Hour), WithWait(time.Millisecond))
	ref, err := first.Load(ctx, "Location", 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ref.EntityName != "Location" {
		t.Fatalf("expected entity name to be filled in, got %q", ref.EntityName)
	}

	second := NewLoader(fetcher, WithCache(shared, time.Hour), WithWait(time.Millisecond))
	cached, err := second.Load(ctx, "Location", 1)
	if err != nil {
		t.Fatalf("load from cache: %v", err)
	}
	if cached.Label != "XBL" || cached.EntityName != "Location" {
		t.Fatalf("unexpected cached reference %#v", cached)
	}
	if n := fetcher.batchCount(); n != 1 {
		t.Fatalf("expected the second loader to hit the cache, got %d fetches", n)
	}
}

func TestLoaderErrors(t *testing.T) {
	ctx := context.Background()

	loader := NewLoader(&fakeFetcher{rows: map[int]string{}}, WithWait(time.Millisecond))
	if _, err := loader.Load(ctx, "Location", 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	boom := errors.New("backend down")
	loader = NewLoader(&fakeFetcher{err: boom}, WithWait(time.Millisecond))
	if _, err := loader.LoadMany(ctx, "Location", []int{1, 2}); !errors.Is(err, boom) {
		t.Fatalf("expected fetcher error, got %v", err)
	}
}

func TestLoaderResolve(t *testing.T) {
	fetcher := &fakeFetcher{rows: map[int]string{3: "XBL"}}
	loader := NewLoader(fetcher, WithWait(time.Millisecond))
	ctx := context.Background()

	ref := &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(3)}, EntityName: "Location"}
	resolved, err := loader.Resolve(ctx, ref)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Label != "XBL" {
		t.Fatalf("expected label to be resolved, got %#v", resolved)
	}

	complete := &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(4)}, EntityName: "Location", Label: "XGV"}
	if got, _ := loader.Resolve(ctx, complete); got != complete {
		t.Fatalf("expected complete reference to be returned as is")
	}
	if got, _ := loader.Resolve(ctx, nil); got != nil {
		t.Fatalf("expected nil reference to stay nil")
	}
	if n := fetcher.batchCount(); n != 1 {
		t.Fatalf("expected a single fetch, got %d", n)
	}
}

func TestStoreFetcherWithFallback(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "fishql.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()
	local := &model.ReferentialRef{EntityBase: model.EntityBase{ID: model.IntPtr(1)}, Label: "XBL", EntityName: "Location"}
	if _, err := s.Save(ctx, local); err != nil {
		t.Fatalf("save: %v", err)
	}

	remote := &fakeFetcher{rows: map[int]string{2: "XGV"}}
	loader := NewLoader(FallbackFetcher{Primary: NewStoreFetcher(s), Secondary: remote}, WithWait(time.Millisecond))
	refs, err := loader.LoadMany(ctx, "Location", []int{1, 2})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if refs[0].Label != "XBL" || refs[1].Label != "XGV" {
		t.Fatalf("unexpected references %#v %#v", refs[0], refs[1])
	}
	if len(remote.batches) != 1 || len(remote.batches[0]) != 1 || remote.batches[0][0] != 2 {
		t.Fatalf("expected only the missing id to reach the backend, got %v", remote.batches)
	}
}
