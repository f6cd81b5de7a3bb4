/*
commission.go - Tiered commission schedule and volume resolution

PURPOSE:
  A schedule is an ordered list of volume brackets. Each bracket adds
  percentage points on top of the project's flat base rate. Given a
  cumulative volume, the resolver finds the active bracket and how much
  more volume reaches the next one.

INVARIANTS (maintained by callers, assumed by the resolver):
  - Levels sorted by MinAmount ascending
  - Level numbers dense 1..N, renumbered after every edit
  - Adjacent levels contiguous: no volume falls between two brackets

MALFORMED SCHEDULES:
  On a gapped or overlapping schedule the resolver does a linear scan and
  the first match in sorted order wins. It never repairs invariants;
  NormalizeLevels is the repair step and runs before persisting edits.

SEE ALSO:
  - aggregate.go: Produces the TotalVolume fed into ResolveTier
*/
package sales

import "github.com/shopspring/decimal"

// =============================================================================
// COMMISSION LEVEL - One tier of the schedule
// =============================================================================

// CommissionLevel is one volume bracket. A nil MaxAmount means the bracket
// is unbounded above (the top tier).
type CommissionLevel struct {
	Level                int
	MinAmount            decimal.Decimal
	MaxAmount            *decimal.Decimal
	AdditionalCommission decimal.Decimal
}

// Contains reports whether the volume falls within [MinAmount, MaxAmount].
func (l CommissionLevel) Contains(volume decimal.Decimal) bool {
	if volume.LessThan(l.MinAmount) {
		return false
	}
	return l.MaxAmount == nil || volume.LessThanOrEqual(*l.MaxAmount)
}

// =============================================================================
// TIER RESOLUTION
// =============================================================================

// TierStatus is the outcome of resolving a volume against a schedule.
// Current is nil when the volume falls outside the schedule's overall range
// (or the schedule is empty). AmountToNext is nil at the top tier and
// whenever there is no current tier.
type TierStatus struct {
	Current      *CommissionLevel
	AmountToNext *decimal.Decimal
}

// ResolveTier finds the active level for a cumulative volume and the
// incremental volume needed to reach the next level. Levels must be sorted
// by MinAmount ascending; first match wins.
func ResolveTier(levels []CommissionLevel, volume decimal.Decimal) TierStatus {
	for i := range levels {
		if !levels[i].Contains(volume) {
			continue
		}
		status := TierStatus{Current: &levels[i]}
		if i+1 < len(levels) {
			gap := levels[i+1].MinAmount.Sub(volume)
			status.AmountToNext = &gap
		}
		return status
	}
	return TierStatus{}
}

// =============================================================================
// SCHEDULE MAINTENANCE
// =============================================================================

// NormalizeLevels sorts by MinAmount ascending and renumbers Level 1..N.
// Runs after every schedule edit, before persisting. The input is not
// modified; ties keep their relative order.
func NormalizeLevels(levels []CommissionLevel) []CommissionLevel {
	out := make([]CommissionLevel, len(levels))
	copy(out, levels)

	// Insertion sort keeps equal MinAmounts stable without a comparator alloc.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].MinAmount.LessThan(out[j-1].MinAmount); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}

	for i := range out {
		out[i].Level = i + 1
	}
	return out
}

// ValidateLevels rejects malformed bounds before they reach the resolver.
func ValidateLevels(levels []CommissionLevel) error {
	for _, l := range levels {
		if l.MinAmount.IsNegative() {
			return &ValidationError{Field: "min_amount", Reason: "must be non-negative"}
		}
		if l.MaxAmount != nil && l.MaxAmount.LessThan(l.MinAmount) {
			return &ValidationError{Field: "max_amount", Reason: "must be >= min_amount"}
		}
		if l.AdditionalCommission.IsNegative() {
			return &ValidationError{Field: "additional_commission", Reason: "must be non-negative"}
		}
	}
	return nil
}

// DefaultLevels is the schedule seeded for a new project.
func DefaultLevels() []CommissionLevel {
	max1 := decimal.NewFromInt(19999)
	max2 := decimal.NewFromInt(49999)
	return []CommissionLevel{
		{Level: 1, MinAmount: decimal.Zero, MaxAmount: &max1, AdditionalCommission: decimal.Zero},
		{Level: 2, MinAmount: decimal.NewFromInt(20000), MaxAmount: &max2, AdditionalCommission: decimal.NewFromInt(1)},
		{Level: 3, MinAmount: decimal.NewFromInt(50000), MaxAmount: nil, AdditionalCommission: decimal.NewFromInt(2)},
	}
}
