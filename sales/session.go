/*
session.go - Report session orchestration

PURPOSE:
  Holds the explicit UI-session state (active period family, selected
  period, rolling anchor) and runs the report pipeline on every
  transition:

    store snapshot -> filter by period -> Aggregate -> ResolveTier

STATE MACHINE:
  - SelectFamily: re-derives the selection from the new family's periods
    (monthly -> reference month, annual/rolling -> the single entry)
  - SelectPeriod: monthly only, picks one of the 12 by title
  - SetRollingAnchor: regenerates the rolling window at the new anchor

  Session state lives in this struct and nowhere else; the last selection
  survives restarts only as a title string in the preference store,
  re-resolved against freshly generated periods on Restore.
*/
package sales

import (
	"context"
	"fmt"
)

// Preference keys for remembering the selection across sessions.
const (
	PrefLastFamily      = "report.last_family"
	PrefLastPeriodTitle = "report.last_period_title"
)

// Report is what the session surfaces to presentation after a transition.
type Report struct {
	Period ReportPeriod
	Totals Totals
	Tier   TierStatus
}

// Session orchestrates period selection, filtering, aggregation, and tier
// resolution for one project. Not safe for concurrent use: there is exactly
// one logical writer, the user serialized through the UI.
type Session struct {
	sales    SaleStore
	schedule ScheduleStore
	prefs    PreferenceStore // nil disables selection persistence

	projectID ProjectID
	reference TimePoint

	family   PeriodFamily
	selected ReportPeriod
	anchor   TimePoint
	periods  PeriodSet
}

// NewSession builds a session anchored at the reference date, starting on
// the monthly family with the reference month selected.
func NewSession(sales SaleStore, schedule ScheduleStore, prefs PreferenceStore, projectID ProjectID, reference TimePoint) *Session {
	s := &Session{
		sales:     sales,
		schedule:  schedule,
		prefs:     prefs,
		projectID: projectID,
		reference: reference,
		anchor:    reference,
	}
	s.periods = GeneratePeriodsAnchored(reference, reference)
	s.family = FamilyMonthly
	s.selected = s.defaultPeriod(FamilyMonthly)
	return s
}

func (s *Session) Family() PeriodFamily     { return s.family }
func (s *Session) Selected() ReportPeriod   { return s.selected }
func (s *Session) Periods() PeriodSet       { return s.periods }
func (s *Session) RollingAnchor() TimePoint { return s.anchor }

// defaultPeriod applies the per-family selection policy.
func (s *Session) defaultPeriod(f PeriodFamily) ReportPeriod {
	switch f {
	case FamilyAnnual:
		return s.periods.Annual[0]
	case FamilyRolling45:
		return s.periods.Rolling45
	case FamilyRolling90:
		return s.periods.Rolling90
	default:
		return s.periods.Monthly[int(s.reference.Month())-1]
	}
}

// SelectFamily switches the active family and re-derives the selection.
func (s *Session) SelectFamily(f PeriodFamily) error {
	if _, err := ParsePeriodFamily(string(f)); err != nil {
		return err
	}
	s.family = f
	s.selected = s.defaultPeriod(f)
	return nil
}

// SelectPeriod picks a monthly period by title. Only the monthly family has
// more than one period to pick from.
func (s *Session) SelectPeriod(title string) error {
	if s.family != FamilyMonthly {
		return fmt.Errorf("%w: explicit period pick applies to the monthly family", ErrInvalidPeriod)
	}
	for _, p := range s.periods.Monthly {
		if p.Title == title {
			s.selected = p
			return nil
		}
	}
	return fmt.Errorf("%w: no monthly period titled %q", ErrInvalidPeriod, title)
}

// SetRollingAnchor regenerates the rolling windows at a new start date.
// The previous rolling periods are replaced, not kept. If a rolling family
// is active the selection follows the new window.
func (s *Session) SetRollingAnchor(anchor TimePoint) {
	s.anchor = anchor
	s.periods = GeneratePeriodsAnchored(s.reference, anchor)
	if s.family == FamilyRolling45 || s.family == FamilyRolling90 {
		s.selected = s.defaultPeriod(s.family)
	}
}

// Report runs the pipeline for the current selection.
func (s *Session) Report(ctx context.Context) (Report, error) {
	all, err := s.sales.ListAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list sales: %w", err)
	}

	totals := Aggregate(FilterByPeriod(all, s.selected))

	levels, err := s.schedule.GetCommissionLevels(ctx, s.projectID)
	if err != nil {
		return Report{}, fmt.Errorf("load commission schedule: %w", err)
	}

	return Report{
		Period: s.selected,
		Totals: totals,
		Tier:   ResolveTier(levels, totals.TotalVolume),
	}, nil
}

// Remember persists the current selection as labels.
func (s *Session) Remember(ctx context.Context) error {
	if s.prefs == nil {
		return nil
	}
	if err := s.prefs.SetPreference(ctx, PrefLastFamily, string(s.family)); err != nil {
		return err
	}
	return s.prefs.SetPreference(ctx, PrefLastPeriodTitle, s.selected.Title)
}

// Restore re-resolves the remembered selection against freshly generated
// periods. A missing or stale label falls back to the family default; a
// missing family preference leaves the session untouched.
func (s *Session) Restore(ctx context.Context) error {
	if s.prefs == nil {
		return nil
	}

	family, err := s.prefs.GetPreference(ctx, PrefLastFamily)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	f, err := ParsePeriodFamily(family)
	if err != nil {
		return nil // stale preference, keep defaults
	}
	if err := s.SelectFamily(f); err != nil {
		return err
	}

	title, err := s.prefs.GetPreference(ctx, PrefLastPeriodTitle)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	s.selected = ResolvePeriodByTitle(s.periods.Family(f), title, s.defaultPeriod(f))
	return nil
}
