package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownTypename is returned when no factory is registered for a
// __typename discriminator.
var ErrUnknownTypename = errors.New("unknown typename")

// Factory builds an entity from its object form.
type Factory func(Object) Entity

// Registry maps GraphQL discriminators to entity factories. It is populated
// at startup and read-only afterwards.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates typename with f, replacing any previous factory.
func (r *Registry) Register(typename string, f Factory) {
	r.factories[typename] = f
}

// Knows reports whether typename has a factory.
func (r *Registry) Knows(typename string) bool {
	_, ok := r.factories[typename]
	return ok
}

// Typenames lists the registered discriminators in lexical order.
func (r *Registry) Typenames() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromObject hydrates src through the factory registered for its __typename.
func (r *Registry) FromObject(src Object) (Entity, error) {
	return r.FromTypedObject(src.String("__typename"), src)
}

// FromTypedObject hydrates src through the factory registered for typename.
func (r *Registry) FromTypedObject(typename string, src Object) (Entity, error) {
	f, ok := r.factories[typename]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypename, typename)
	}
	e := f(src)
	if isNilEntity(e) {
		return nil, fmt.Errorf("empty %s object", typename)
	}
	return e, nil
}

// factory adapts a typed constructor returning a pointer.
func factory[T Entity](from func(Object) T) Factory {
	return func(src Object) Entity {
		return from(src)
	}
}

// DefaultRegistry registers every entity type of the model.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypenameReferential, factory(ReferentialFromObject))
	r.Register(TypenameMetier, factory(MetierFromObject))
	r.Register(TypenamePerson, factory(PersonFromObject))
	r.Register(TypenameVesselSnapshot, factory(VesselSnapshotFromObject))
	r.Register(TypenameStrategy, factory(StrategyFromObject))
	r.Register(TypenameTaxonName, factory(TaxonNameFromObject))
	r.Register(TypenameTrip, factory(TripFromObject))
	r.Register(TypenameOperation, factory(OperationFromObject))
	r.Register(TypenameLanding, factory(LandingFromObject))
	r.Register(TypenameObservedLocation, factory(ObservedLocationFromObject))
	r.Register(TypenameSale, factory(SaleFromObject))
	r.Register(TypenameAggregatedLanding, factory(AggregatedLandingFromObject))
	r.Register(TypenamePeer, factory(PeerFromObject))
	return r
}
