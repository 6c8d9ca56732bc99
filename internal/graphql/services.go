package graphql

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rpattn/fishql/internal/filter"
	"github.com/rpattn/fishql/internal/model"
)

// Page selects and sorts a window of a result list. Zero values let the
// backend apply its defaults.
type Page struct {
	Offset        int
	Size          int
	SortBy        string
	SortDirection string
}

func (p Page) variables(vars map[string]any) map[string]any {
	vars["offset"] = p.Offset
	if p.Size > 0 {
		vars["size"] = p.Size
	}
	if p.SortBy != "" {
		vars["sortBy"] = p.SortBy
	}
	if p.SortDirection != "" {
		vars["sortDirection"] = p.SortDirection
	}
	return vars
}

type listResult struct {
	Data  []model.Object `json:"data"`
	Total *int           `json:"total"`
}

type saveResult struct {
	Data model.Object `json:"data"`
}

// filterVariable returns the minified filter, or nil for an absent one.
func filterVariable(f model.ObjectWriter) model.Object {
	if f == nil || reflect.ValueOf(f).IsNil() {
		return nil
	}
	obj := f.AsObject(model.AsObjectOptions{Minify: true})
	if len(obj) == 0 {
		return nil
	}
	return obj
}

// loadList runs a list query and hydrates its rows. When the query does not
// count, the total is the number of rows.
func loadList[E model.Entity](ctx context.Context, c *Client, req Request, from func(model.Object) E) ([]E, int, error) {
	var result listResult
	if err := c.Do(ctx, req, &result); err != nil {
		return nil, 0, err
	}
	items := make([]E, 0, len(result.Data))
	for _, obj := range result.Data {
		items = append(items, from(obj))
	}
	total := len(items)
	if result.Total != nil {
		total = *result.Total
	}
	return items, total, nil
}

// save sends the full entity and returns the server copy. Local ids are
// dropped: the backend allocates the real one.
func save[E model.Entity](ctx context.Context, c *Client, query, operation, variable string, e E, from func(model.Object) E) (E, error) {
	var zero E
	obj := e.AsObject(model.AsObjectOptions{DropLocalID: true})
	if obj == nil {
		return zero, fmt.Errorf("cannot save an empty %s", e.Typename())
	}
	var result saveResult
	err := c.Do(ctx, Request{
		Query:         query,
		OperationName: operation,
		Variables:     map[string]any{variable: obj},
	}, &result)
	if err != nil {
		return zero, err
	}
	if len(result.Data) == 0 {
		return zero, fmt.Errorf("%s returned no data", operation)
	}
	return from(result.Data), nil
}

// LandingService loads and saves landings.
type LandingService struct {
	client *Client
}

// NewLandingService returns a landing service backed by client.
func NewLandingService(client *Client) *LandingService {
	return &LandingService{client: client}
}

// Load returns the landings accepted by f, and their total count.
func (s *LandingService) Load(ctx context.Context, f *filter.LandingFilter, page Page) ([]*model.Landing, int, error) {
	req := Request{
		Query:         loadLandingsQuery,
		OperationName: "Landings",
		Variables:     page.variables(map[string]any{"filter": filterVariable(f)}),
	}
	return loadList(ctx, s.client, req, model.LandingFromObject)
}

// Save sends l to the backend and returns the stored copy.
func (s *LandingService) Save(ctx context.Context, l *model.Landing) (*model.Landing, error) {
	return save(ctx, s.client, saveLandingMutation, "SaveLanding", "landing", l, model.LandingFromObject)
}

// ObservedLocationService loads and saves observed locations.
type ObservedLocationService struct {
	client *Client
}

// NewObservedLocationService returns an observed location service backed by client.
func NewObservedLocationService(client *Client) *ObservedLocationService {
	return &ObservedLocationService{client: client}
}

// Load returns the observed locations accepted by f, and their total count.
func (s *ObservedLocationService) Load(ctx context.Context, f *filter.ObservedLocationFilter, page Page) ([]*model.ObservedLocation, int, error) {
	req := Request{
		Query:         loadObservedLocationsQuery,
		OperationName: "ObservedLocations",
		Variables:     page.variables(map[string]any{"filter": filterVariable(f)}),
	}
	return loadList(ctx, s.client, req, model.ObservedLocationFromObject)
}

// Save sends o to the backend and returns the stored copy.
func (s *ObservedLocationService) Save(ctx context.Context, o *model.ObservedLocation) (*model.ObservedLocation, error) {
	return save(ctx, s.client, saveObservedLocationMutation, "SaveObservedLocation", "observedLocation", o, model.ObservedLocationFromObject)
}

// OperationService loads and saves fishing operations.
type OperationService struct {
	client *Client
}

// NewOperationService returns an operation service backed by client.
func NewOperationService(client *Client) *OperationService {
	return &OperationService{client: client}
}

// Load returns the operations accepted by f, and their total count.
func (s *OperationService) Load(ctx context.Context, f *filter.OperationFilter, page Page) ([]*model.Operation, int, error) {
	req := Request{
		Query:         loadOperationsQuery,
		OperationName: "Operations",
		Variables:     page.variables(map[string]any{"filter": filterVariable(f)}),
	}
	return loadList(ctx, s.client, req, model.OperationFromObject)
}

// Save sends o to the backend and returns the stored copy.
func (s *OperationService) Save(ctx context.Context, o *model.Operation) (*model.Operation, error) {
	return save(ctx, s.client, saveOperationMutation, "SaveOperation", "operation", o, model.OperationFromObject)
}

// StrategyService loads sampling strategies.
type StrategyService struct {
	client *Client
}

// NewStrategyService returns a strategy service backed by client.
func NewStrategyService(client *Client) *StrategyService {
	return &StrategyService{client: client}
}

// Load returns the strategies accepted by f, and their total count.
func (s *StrategyService) Load(ctx context.Context, f *filter.StrategyFilter, page Page) ([]*model.Strategy, int, error) {
	req := Request{
		Query:         loadStrategiesQuery,
		OperationName: "Strategies",
		Variables:     page.variables(map[string]any{"filter": filterVariable(f)}),
	}
	return loadList(ctx, s.client, req, model.StrategyFromObject)
}

// ReferentialService loads reference data.
type ReferentialService struct {
	client *Client
}

// NewReferentialService returns a referential service backed by client.
func NewReferentialService(client *Client) *ReferentialService {
	return &ReferentialService{client: client}
}

// Load returns the references of the filter entity name. The entity name is
// sent as its own argument since the minified filter drops it.
func (s *ReferentialService) Load(ctx context.Context, f *filter.ReferentialFilter, page Page) ([]*model.ReferentialRef, int, error) {
	if f == nil || f.EntityName == "" {
		return nil, 0, fmt.Errorf("referential filter requires an entity name")
	}
	req := Request{
		Query:         loadReferentialsQuery,
		OperationName: "Referentials",
		Variables: page.variables(map[string]any{
			"entityName": f.EntityName,
			"filter":     filterVariable(f),
		}),
	}
	refs, total, err := loadList(ctx, s.client, req, model.ReferentialRefFromObject)
	if err != nil {
		return nil, 0, err
	}
	for _, ref := range refs {
		if ref != nil && ref.EntityName == "" {
			ref.EntityName = f.EntityName
		}
	}
	return refs, total, nil
}

// LoadByIDs returns the references of entityName with the given ids.
func (s *ReferentialService) LoadByIDs(ctx context.Context, entityName string, ids []int) ([]*model.ReferentialRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	f := &filter.ReferentialFilter{ReferentialCriteria: filter.ReferentialCriteria{
		EntityName:  entityName,
		IncludedIDs: ids,
	}}
	refs, _, err := s.Load(ctx, f, Page{Size: len(ids)})
	return refs, err
}

// LoadTaxonNames returns the taxon names accepted by f.
func (s *ReferentialService) LoadTaxonNames(ctx context.Context, f *filter.TaxonNameFilter, page Page) ([]*model.TaxonName, error) {
	req := Request{
		Query:         loadTaxonNamesQuery,
		OperationName: "TaxonNames",
		Variables:     page.variables(map[string]any{"filter": filterVariable(f)}),
	}
	names, _, err := loadList(ctx, s.client, req, model.TaxonNameFromObject)
	return names, err
}

// AggregatedLandingService loads the daily activity of vessels.
type AggregatedLandingService struct {
	client *Client
}

// NewAggregatedLandingService returns an aggregated landing service backed by client.
func NewAggregatedLandingService(client *Client) *AggregatedLandingService {
	return &AggregatedLandingService{client: client}
}

// Load returns the aggregated landings accepted by f.
func (s *AggregatedLandingService) Load(ctx context.Context, f *filter.AggregatedLandingFilter) ([]*model.AggregatedLanding, error) {
	req := Request{
		Query:         loadAggregatedLandingsQuery,
		OperationName: "AggregatedLandings",
		Variables:     map[string]any{"filter": filterVariable(f)},
	}
	landings, _, err := loadList(ctx, s.client, req, model.AggregatedLandingFromObject)
	return landings, err
}
