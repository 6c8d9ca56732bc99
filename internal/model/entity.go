package model

import (
	"reflect"
	"time"
)

// Synchronization statuses of data entities.
const (
	SyncStatusDirty       = "DIRTY"
	SyncStatusReadyToSync = "READY_TO_SYNC"
	SyncStatusSync        = "SYNC"
)

// Entity is a persisted domain object exchanged with the backend.
type Entity interface {
	// Typename returns the GraphQL discriminator of the concrete type.
	Typename() string
	EntityID() *int
	AsObject(opts AsObjectOptions) Object
}

// Equaler is implemented by entities whose identity uses natural keys
// instead of, or in addition to, their id.
type Equaler interface {
	Equals(other Entity) bool
}

// EntityBase holds the identity shared by every entity.
type EntityBase struct {
	// ID is nil for new entities and negative for local-only ones.
	ID *int
	// UpdateDate is the optimistic-concurrency marker set by the server.
	UpdateDate *time.Time
}

// EntityID returns the entity id.
func (e EntityBase) EntityID() *int {
	return e.ID
}

// IsLocal reports whether the entity only exists on this device.
func (e EntityBase) IsLocal() bool {
	return e.ID != nil && *e.ID < 0
}

func readBase(src Object) EntityBase {
	return EntityBase{
		ID:         src.Int("id"),
		UpdateDate: src.Date("updateDate"),
	}
}

func (e EntityBase) writeTo(target Object, typename string, opts AsObjectOptions) {
	if !(opts.DropLocalID && e.IsLocal()) {
		target.SetInt("id", e.ID)
	}
	target.SetDate("updateDate", e.UpdateDate)
	if opts.KeepTypename && typename != "" {
		target["__typename"] = typename
	}
}

// Equals applies the identity rule: same concrete type and same non-nil id,
// unless a implements Equaler.
func Equals(a, b Entity) bool {
	if isNilEntity(a) || isNilEntity(b) {
		return false
	}
	if eq, ok := a.(Equaler); ok {
		return eq.Equals(b)
	}
	if a.Typename() != b.Typename() {
		return false
	}
	ida, idb := a.EntityID(), b.EntityID()
	return ida != nil && idb != nil && *ida == *idb
}

func isNilEntity(e Entity) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
