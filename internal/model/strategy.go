package model

import "time"

// TypenameStrategy is the discriminator of Strategy.
const TypenameStrategy = "StrategyVO"

// AppliedPeriod is a period during which a strategy applies at a location.
type AppliedPeriod struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// Strategy is a sampling strategy of a program. In its referential form the
// program is the level of the strategy.
type Strategy struct {
	Referential
	ProgramID         *int
	AnalyticReference string
	Departments       []*ReferentialRef
	AppliedLocations  []*ReferentialRef
	AppliedPeriods    []AppliedPeriod
	TaxonNames        []*TaxonName
}

// StrategyFromObject hydrates a strategy.
func StrategyFromObject(src Object) *Strategy {
	if len(src) == 0 {
		return nil
	}
	s := &Strategy{
		Referential:       readReferential(src),
		ProgramID:         src.Int("programId"),
		AnalyticReference: src.String("analyticReference"),
		Departments:       refsFromObjects(src.Children("departments")),
		AppliedLocations:  refsFromObjects(src.Children("appliedLocations")),
	}
	for _, child := range src.Children("appliedPeriods") {
		s.AppliedPeriods = append(s.AppliedPeriods, AppliedPeriod{
			StartDate: child.Date("startDate"),
			EndDate:   child.Date("endDate"),
		})
	}
	for _, child := range src.Children("taxonNames") {
		if t := TaxonNameFromObject(child); t != nil {
			s.TaxonNames = append(s.TaxonNames, t)
		}
	}
	return s
}

// Typename implements Entity.
func (s *Strategy) Typename() string { return TypenameStrategy }

// AsObject implements Entity.
func (s *Strategy) AsObject(opts AsObjectOptions) Object {
	if s == nil {
		return nil
	}
	target := Object{}
	s.Referential.writeTo(target, TypenameStrategy, opts)
	target.SetInt("programId", s.ProgramID)
	target.SetString("analyticReference", s.AnalyticReference)
	target.SetObjects("departments", refsAsObjects(s.Departments, opts))
	target.SetObjects("appliedLocations", refsAsObjects(s.AppliedLocations, opts))
	if len(s.AppliedPeriods) > 0 {
		periods := make([]Object, 0, len(s.AppliedPeriods))
		for _, p := range s.AppliedPeriods {
			period := Object{}
			period.SetDate("startDate", p.StartDate)
			period.SetDate("endDate", p.EndDate)
			periods = append(periods, period)
		}
		target.SetObjects("appliedPeriods", periods)
	}
	if len(s.TaxonNames) > 0 {
		taxonNames := make([]Object, 0, len(s.TaxonNames))
		for _, t := range s.TaxonNames {
			if obj := t.AsObject(opts); len(obj) > 0 {
				taxonNames = append(taxonNames, obj)
			}
		}
		target.SetObjects("taxonNames", taxonNames)
	}
	return target
}

// RefLevelID implements ReferentialLike: the level of a strategy is its program.
func (s *Strategy) RefLevelID() *int {
	if s.ProgramID != nil {
		return s.ProgramID
	}
	return RefID(s.Level)
}
