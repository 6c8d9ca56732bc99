package referential

import (
	"context"
	"errors"

	"github.com/rpattn/fishql/internal/model"
	"github.com/rpattn/fishql/internal/store"
)

// StoreFetcher reads references from the local store, for offline use.
type StoreFetcher struct {
	store store.Store
}

var _ Fetcher = (*StoreFetcher)(nil)

func NewStoreFetcher(s store.Store) *StoreFetcher {
	return &StoreFetcher{store: s}
}

// LoadByIDs implements Fetcher.
func (f *StoreFetcher) LoadByIDs(ctx context.Context, entityName string, ids []int) ([]*model.ReferentialRef, error) {
	collection := store.ReferentialCollection(model.TypenameReferential, entityName)
	refs := make([]*model.ReferentialRef, 0, len(ids))
	for _, id := range ids {
		obj, err := f.store.Get(ctx, collection, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		// Imported rows hold full referentials with nested status and level.
		if ref := model.ReferentialFromObject(obj).AsRef(); ref != nil {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// FallbackFetcher asks Primary first and Secondary for the ids Primary
// did not return.
type FallbackFetcher struct {
	Primary   Fetcher
	Secondary Fetcher
}

// LoadByIDs implements Fetcher. A Primary error is returned as is.
func (f FallbackFetcher) LoadByIDs(ctx context.Context, entityName string, ids []int) ([]*model.ReferentialRef, error) {
	refs, err := f.Primary.LoadByIDs(ctx, entityName, ids)
	if err != nil || f.Secondary == nil {
		return refs, err
	}
	found := make(map[int]bool, len(refs))
	for _, ref := range refs {
		if model.IsNotEmptyRef(ref) {
			found[*ref.ID] = true
		}
	}
	var missing []int
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return refs, nil
	}
	more, err := f.Secondary.LoadByIDs(ctx, entityName, missing)
	if err != nil {
		return nil, err
	}
	return append(refs, more...), nil
}
