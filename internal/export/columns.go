package export

import (
	"strings"

	"github.com/rpattn/fishql/internal/model"
)

// Column extracts one cell of an entity row.
type Column[E any] struct {
	Header string
	Value  func(E) any
}

// BuildTable lays items out with one row per item.
func BuildTable[E any](columns []Column[E], items []E) Table {
	table := Table{Headers: make([]string, len(columns)), Rows: make([][]any, 0, len(items))}
	for i, c := range columns {
		table.Headers[i] = c.Header
	}
	for _, item := range items {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = c.Value(item)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func personNames(persons []*model.Person) []string {
	names := make([]string, 0, len(persons))
	for _, p := range persons {
		if p == nil {
			continue
		}
		name := strings.TrimSpace(p.FirstName + " " + p.LastName)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// LandingColumns is the landing export layout.
func LandingColumns() []Column[*model.Landing] {
	return []Column[*model.Landing]{
		{Header: "id", Value: func(l *model.Landing) any { return l.ID }},
		{Header: "program", Value: func(l *model.Landing) any { return model.LabelOf(l.Program) }},
		{Header: "date_time", Value: func(l *model.Landing) any { return l.DateTime }},
		{Header: "location", Value: func(l *model.Landing) any { return model.LabelOf(l.Location) }},
		{Header: "vessel_id", Value: func(l *model.Landing) any { return model.VesselID(l.Vessel) }},
		{Header: "vessel_exterior_marking", Value: func(l *model.Landing) any {
			if l.Vessel == nil {
				return ""
			}
			return l.Vessel.ExteriorMarking
		}},
		{Header: "observed_location_id", Value: func(l *model.Landing) any { return l.ObservedLocationID }},
		{Header: "trip_id", Value: func(l *model.Landing) any { return l.TripID }},
		{Header: "strategy", Value: func(l *model.Landing) any { return l.StrategyLabel() }},
		{Header: "observers", Value: func(l *model.Landing) any { return personNames(l.Observers) }},
		{Header: "quality_status", Value: func(l *model.Landing) any { return l.QualityStatus() }},
		{Header: "synchronization_status", Value: func(l *model.Landing) any { return l.SynchronizationStatus }},
	}
}

// ObservedLocationColumns is the observed location export layout.
func ObservedLocationColumns() []Column[*model.ObservedLocation] {
	return []Column[*model.ObservedLocation]{
		{Header: "id", Value: func(o *model.ObservedLocation) any { return o.ID }},
		{Header: "program", Value: func(o *model.ObservedLocation) any { return model.LabelOf(o.Program) }},
		{Header: "start_date_time", Value: func(o *model.ObservedLocation) any { return o.StartDateTime }},
		{Header: "end_date_time", Value: func(o *model.ObservedLocation) any { return o.EndDateTime }},
		{Header: "location", Value: func(o *model.ObservedLocation) any { return model.LabelOf(o.Location) }},
		{Header: "observers", Value: func(o *model.ObservedLocation) any { return personNames(o.Observers) }},
		{Header: "quality_status", Value: func(o *model.ObservedLocation) any { return o.QualityStatus() }},
		{Header: "synchronization_status", Value: func(o *model.ObservedLocation) any { return o.SynchronizationStatus }},
	}
}

// OperationColumns is the fishing operation export layout.
func OperationColumns() []Column[*model.Operation] {
	metierRef := func(o *model.Operation, pick func(*model.Metier) *model.ReferentialRef) string {
		if o.Metier == nil {
			return ""
		}
		return model.LabelOf(pick(o.Metier))
	}
	return []Column[*model.Operation]{
		{Header: "id", Value: func(o *model.Operation) any { return o.ID }},
		{Header: "trip_id", Value: func(o *model.Operation) any { return o.TripID }},
		{Header: "rank_order", Value: func(o *model.Operation) any { return o.RankOrderOnPeriod }},
		{Header: "start_date_time", Value: func(o *model.Operation) any { return o.StartDateTime }},
		{Header: "end_date_time", Value: func(o *model.Operation) any { return o.EndDateTime }},
		{Header: "fishing_start_date_time", Value: func(o *model.Operation) any { return o.FishingStartDateTime }},
		{Header: "fishing_end_date_time", Value: func(o *model.Operation) any { return o.FishingEndDateTime }},
		{Header: "metier", Value: func(o *model.Operation) any {
			if o.Metier == nil {
				return ""
			}
			return o.Metier.Label
		}},
		{Header: "gear", Value: func(o *model.Operation) any {
			return metierRef(o, func(m *model.Metier) *model.ReferentialRef { return m.Gear })
		}},
		{Header: "taxon_group", Value: func(o *model.Operation) any {
			return metierRef(o, func(m *model.Metier) *model.ReferentialRef { return m.TaxonGroup })
		}},
		{Header: "physical_gear_id", Value: func(o *model.Operation) any { return o.PhysicalGearID }},
		{Header: "quality_status", Value: func(o *model.Operation) any { return o.QualityStatus() }},
		{Header: "comments", Value: func(o *model.Operation) any { return o.Comments }},
	}
}
