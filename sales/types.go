/*
Package sales provides the core sales-tracking and commission-reporting engine.

PURPOSE:
  This package contains the domain types and pure algorithms for tracking
  individual sale transactions, partitioning them into reporting periods,
  folding them into aggregate totals, and resolving cumulative volume
  against a tiered commission schedule.

KEY CONCEPTS IN THIS FILE (types.go):
  - Sale: A single transaction record (volume, commission, tours, FDI metrics)
  - SaleUpdate: Partial field update applied to an existing sale
  - Project: Owner of a commission schedule, with a flat base rate
  - Sale/Project IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for all currency, never float accumulation
  2. Soft cancellation: IsCancelled toggles independently of deletion
  3. Stores own sales; the aggregation code only reads snapshots

SEE ALSO:
  - period.go: Reporting period generation
  - aggregate.go: Totals computed from a sale set
  - commission.go: Tier schedule and resolution
*/
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type SaleID string
type ProjectID string

// =============================================================================
// SALE - A single transaction record
// =============================================================================

type SaleType string

const (
	SaleDeed  SaleType = "DEED"
	SaleTrust SaleType = "TRUST"
	SaleOther SaleType = "OTHER"
)

// Sale is one recorded transaction. Identity never changes once assigned.
// Cancellation is a soft state: a cancelled sale stays in the store and is
// counted separately by the aggregator, it is not removed.
type Sale struct {
	ID               SaleID
	Date             TimePoint
	SaleAmount       decimal.Decimal
	CommissionAmount decimal.Decimal
	NumberOfTours    int
	SaleType         SaleType
	IsCancelled      bool

	// Supplemental FDI point/cost metrics, summed without interpretation.
	FDIPoints      decimal.Decimal
	FDIGivenPoints decimal.Decimal
	FDICost        decimal.Decimal

	Notes     string
	CreatedAt time.Time
}

// Validate rejects malformed input before it reaches the stores or the
// aggregation code. The pure functions in this package assume validated input.
func (s Sale) Validate() error {
	if s.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	if s.SaleAmount.IsNegative() {
		return &ValidationError{Field: "sale_amount", Reason: "must be non-negative"}
	}
	if s.NumberOfTours < 0 {
		return &ValidationError{Field: "number_of_tours", Reason: "must be non-negative"}
	}
	switch s.SaleType {
	case SaleDeed, SaleTrust, SaleOther, "":
	default:
		return &ValidationError{Field: "sale_type", Reason: "unknown sale type"}
	}
	return nil
}

// =============================================================================
// SALE UPDATE - Partial field mutation
// =============================================================================

// SaleUpdate carries a partial edit: nil fields are left untouched.
// Covers the cancellation toggle, note edits, and full edits alike.
type SaleUpdate struct {
	Date             *TimePoint
	SaleAmount       *decimal.Decimal
	CommissionAmount *decimal.Decimal
	NumberOfTours    *int
	SaleType         *SaleType
	IsCancelled      *bool
	FDIPoints        *decimal.Decimal
	FDIGivenPoints   *decimal.Decimal
	FDICost          *decimal.Decimal
	Notes            *string
}

// Apply writes the non-nil fields onto the sale. The ID is never touched.
func (u SaleUpdate) Apply(s *Sale) {
	if u.Date != nil {
		s.Date = *u.Date
	}
	if u.SaleAmount != nil {
		s.SaleAmount = *u.SaleAmount
	}
	if u.CommissionAmount != nil {
		s.CommissionAmount = *u.CommissionAmount
	}
	if u.NumberOfTours != nil {
		s.NumberOfTours = *u.NumberOfTours
	}
	if u.SaleType != nil {
		s.SaleType = *u.SaleType
	}
	if u.IsCancelled != nil {
		s.IsCancelled = *u.IsCancelled
	}
	if u.FDIPoints != nil {
		s.FDIPoints = *u.FDIPoints
	}
	if u.FDIGivenPoints != nil {
		s.FDIGivenPoints = *u.FDIGivenPoints
	}
	if u.FDICost != nil {
		s.FDICost = *u.FDICost
	}
	if u.Notes != nil {
		s.Notes = *u.Notes
	}
}

// =============================================================================
// PROJECT - Owner of a commission schedule
// =============================================================================

// Project owns an ordered commission schedule. BaseCommission is the flat
// rate the tier's AdditionalCommission is added on top of.
type Project struct {
	ID             ProjectID
	Name           string
	BaseCommission decimal.Decimal
	CreatedAt      time.Time
}
