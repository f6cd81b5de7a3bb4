package sales

import (
	"fmt"
	"time"
)

// =============================================================================
// REPORT PERIOD - A named, closed date interval
// =============================================================================

// ReportPeriod is a closed interval [Start, End] with a human label.
// Periods are derived, never persisted: the generator recomputes them
// deterministically from a reference date each time the set is needed.
type ReportPeriod struct {
	Title string
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the day falls within [Start, End].
func (p ReportPeriod) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

func (p ReportPeriod) String() string {
	return fmt.Sprintf("%s [%s, %s]", p.Title, p.Start, p.End)
}

// PeriodFamily selects one of the four period-generation schemes.
type PeriodFamily string

const (
	FamilyMonthly   PeriodFamily = "monthly"
	FamilyAnnual    PeriodFamily = "annual"
	FamilyRolling45 PeriodFamily = "rolling45"
	FamilyRolling90 PeriodFamily = "rolling90"
)

// ParsePeriodFamily maps a wire string to a family.
func ParsePeriodFamily(s string) (PeriodFamily, error) {
	switch PeriodFamily(s) {
	case FamilyMonthly, FamilyAnnual, FamilyRolling45, FamilyRolling90:
		return PeriodFamily(s), nil
	default:
		return "", fmt.Errorf("%w: unknown period family %q", ErrInvalidPeriod, s)
	}
}

// =============================================================================
// PERIOD GENERATOR
// =============================================================================

// PeriodSet holds the four period families generated from one reference date.
// Monthly and Annual cover calendar boundaries; the rolling families hold
// exactly one period each, keyed by their anchor date. Regenerating with a
// new anchor replaces the rolling period, it is never additive.
type PeriodSet struct {
	Monthly   []ReportPeriod
	Annual    []ReportPeriod
	Rolling45 ReportPeriod
	Rolling90 ReportPeriod
}

// GeneratePeriods builds the full period set for a reference date, with the
// rolling windows anchored at the reference date itself.
func GeneratePeriods(reference TimePoint) PeriodSet {
	return GeneratePeriodsAnchored(reference, reference)
}

// GeneratePeriodsAnchored builds the period set with the rolling windows
// anchored at a caller-supplied start date.
func GeneratePeriodsAnchored(reference, rollingAnchor TimePoint) PeriodSet {
	return PeriodSet{
		Monthly:   MonthlyPeriods(reference.Year()),
		Annual:    []ReportPeriod{AnnualPeriod(reference.Year())},
		Rolling45: RollingPeriod(rollingAnchor, 45),
		Rolling90: RollingPeriod(rollingAnchor, 90),
	}
}

// Family returns the periods of one family.
func (ps PeriodSet) Family(f PeriodFamily) []ReportPeriod {
	switch f {
	case FamilyMonthly:
		return ps.Monthly
	case FamilyAnnual:
		return ps.Annual
	case FamilyRolling45:
		return []ReportPeriod{ps.Rolling45}
	case FamilyRolling90:
		return []ReportPeriod{ps.Rolling90}
	default:
		return nil
	}
}

// MonthlyPeriods returns exactly 12 periods, one per calendar month of the
// year, ordered January through December. Boundaries respect the actual
// days-in-month, leap February included.
func MonthlyPeriods(year int) []ReportPeriod {
	periods := make([]ReportPeriod, 0, 12)
	for m := time.January; m <= time.December; m++ {
		periods = append(periods, ReportPeriod{
			Title: fmt.Sprintf("%s %d", m, year),
			Start: StartOfMonth(year, m),
			End:   EndOfMonth(year, m),
		})
	}
	return periods
}

// AnnualPeriod returns the calendar year as a single period. The generator
// emits only the reference year; callers with historical data can call this
// directly for prior years.
func AnnualPeriod(year int) ReportPeriod {
	return ReportPeriod{
		Title: fmt.Sprintf("%d", year),
		Start: StartOfYear(year),
		End:   EndOfYear(year),
	}
}

// RollingPeriod returns a window of the given length anchored at start.
// Both boundaries are inclusive: End - Start == days. The title embeds the
// anchor so a stale remembered title fails to resolve once the anchor moves.
func RollingPeriod(start TimePoint, days int) ReportPeriod {
	return ReportPeriod{
		Title: fmt.Sprintf("%d-Day from %s", days, start),
		Start: start,
		End:   start.AddDays(days),
	}
}

// =============================================================================
// PERIOD RESOLUTION BY TITLE
// =============================================================================

// ResolvePeriodByTitle re-resolves a remembered period label against freshly
// generated periods. The label is a weak reference: periods are regenerated,
// never stored, so a miss falls back to the supplied default.
func ResolvePeriodByTitle(periods []ReportPeriod, title string, fallback ReportPeriod) ReportPeriod {
	for _, p := range periods {
		if p.Title == title {
			return p
		}
	}
	return fallback
}
