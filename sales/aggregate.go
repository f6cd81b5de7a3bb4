/*
aggregate.go - Totals computed from a filtered sale set

PURPOSE:
  Folds a slice of sales into running totals for display: volume,
  commission, tour counts, per-type counts, FDI sums, and the derived
  volume-per-tour (VPG) conversion metric.

KEY RULES:
  - Only active (non-cancelled) sales contribute to any sum.
  - Cancelled sales are counted separately, nothing else.
  - VPG = TotalVolume / TotalTours, defined as zero when there are no
    tours. This is a display metric; zero beats propagating a division
    error through the presentation layer.

PURITY:
  Aggregate is a pure fold. Every accumulator is commutative and
  associative, so shuffling the input changes nothing. There is no
  dependency on wall-clock time; period filtering happens in the caller.

SEE ALSO:
  - session.go: Filters the store snapshot by period before aggregating
  - commission.go: Consumes Totals.TotalVolume for tier resolution
*/
package sales

import "github.com/shopspring/decimal"

// =============================================================================
// TOTALS - Aggregate over a filtered sale set
// =============================================================================

// Totals is derived and ephemeral: recomputed on every filter change,
// never persisted.
type Totals struct {
	ActiveSales    int
	CancelledSales int

	TotalTours      int
	TotalVolume     decimal.Decimal
	TotalCommission decimal.Decimal

	DeedSales  int
	TrustSales int

	// VPG is volume-per-tour, zero when no tours were recorded.
	VPG decimal.Decimal

	FDIPoints      decimal.Decimal
	FDIGivenPoints decimal.Decimal
	FDICost        decimal.Decimal
}

// Aggregate folds sales into totals. Cancelled sales are excluded from every
// sum but counted in CancelledSales.
func Aggregate(sales []Sale) Totals {
	t := Totals{
		TotalVolume:     decimal.Zero,
		TotalCommission: decimal.Zero,
		VPG:             decimal.Zero,
		FDIPoints:       decimal.Zero,
		FDIGivenPoints:  decimal.Zero,
		FDICost:         decimal.Zero,
	}

	for _, s := range sales {
		if s.IsCancelled {
			t.CancelledSales++
			continue
		}

		t.ActiveSales++
		t.TotalTours += s.NumberOfTours
		t.TotalVolume = t.TotalVolume.Add(s.SaleAmount)
		t.TotalCommission = t.TotalCommission.Add(s.CommissionAmount)

		switch s.SaleType {
		case SaleDeed:
			t.DeedSales++
		case SaleTrust:
			t.TrustSales++
		}

		t.FDIPoints = t.FDIPoints.Add(s.FDIPoints)
		t.FDIGivenPoints = t.FDIGivenPoints.Add(s.FDIGivenPoints)
		t.FDICost = t.FDICost.Add(s.FDICost)
	}

	if t.TotalTours > 0 {
		t.VPG = t.TotalVolume.Div(decimal.NewFromInt(int64(t.TotalTours)))
	}

	return t
}

// FilterByPeriod returns the sales whose date falls within the period.
// Input order is preserved; the input slice is not modified.
func FilterByPeriod(sales []Sale, period ReportPeriod) []Sale {
	filtered := make([]Sale, 0, len(sales))
	for _, s := range sales {
		if period.Contains(s.Date) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
