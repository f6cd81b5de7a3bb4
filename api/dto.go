/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the wire contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ON THE WIRE:
  All currency and FDI values travel as decimal strings ("1234.56"), never
  as floats. Handlers parse them through shopspring/decimal.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/sales"
)

// =============================================================================
// SALE TYPES
// =============================================================================

// SaleDTO represents a sale in API responses.
type SaleDTO struct {
	ID               string `json:"id"`
	Date             string `json:"date"`
	SaleAmount       string `json:"sale_amount"`
	CommissionAmount string `json:"commission_amount"`
	NumberOfTours    int    `json:"number_of_tours"`
	SaleType         string `json:"sale_type"`
	IsCancelled      bool   `json:"is_cancelled"`
	FDIPoints        string `json:"fdi_points"`
	FDIGivenPoints   string `json:"fdi_given_points"`
	FDICost          string `json:"fdi_cost"`
	Notes            string `json:"notes,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`
}

// CreateSaleRequest is the request to record a sale.
type CreateSaleRequest struct {
	Date             string `json:"date"`
	SaleAmount       string `json:"sale_amount"`
	CommissionAmount string `json:"commission_amount"`
	NumberOfTours    int    `json:"number_of_tours"`
	SaleType         string `json:"sale_type"`
	FDIPoints        string `json:"fdi_points"`
	FDIGivenPoints   string `json:"fdi_given_points"`
	FDICost          string `json:"fdi_cost"`
	Notes            string `json:"notes"`
}

// UpdateSaleRequest is a partial edit: absent fields are left untouched.
type UpdateSaleRequest struct {
	Date             *string `json:"date,omitempty"`
	SaleAmount       *string `json:"sale_amount,omitempty"`
	CommissionAmount *string `json:"commission_amount,omitempty"`
	NumberOfTours    *int    `json:"number_of_tours,omitempty"`
	SaleType         *string `json:"sale_type,omitempty"`
	IsCancelled      *bool   `json:"is_cancelled,omitempty"`
	FDIPoints        *string `json:"fdi_points,omitempty"`
	FDIGivenPoints   *string `json:"fdi_given_points,omitempty"`
	FDICost          *string `json:"fdi_cost,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// =============================================================================
// PERIOD AND REPORT TYPES
// =============================================================================

// PeriodDTO represents one reporting period.
type PeriodDTO struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// PeriodSetDTO holds the four generated period families.
type PeriodSetDTO struct {
	Monthly   []PeriodDTO `json:"monthly"`
	Annual    []PeriodDTO `json:"annual"`
	Rolling45 PeriodDTO   `json:"rolling45"`
	Rolling90 PeriodDTO   `json:"rolling90"`
}

// TotalsDTO represents the aggregate over the selected period.
type TotalsDTO struct {
	ActiveSales     int    `json:"active_sales"`
	CancelledSales  int    `json:"cancelled_sales"`
	TotalTours      int    `json:"total_tours"`
	TotalVolume     string `json:"total_volume"`
	TotalCommission string `json:"total_commission"`
	DeedSales       int    `json:"deed_sales"`
	TrustSales      int    `json:"trust_sales"`
	VPG             string `json:"vpg"`
	FDIPoints       string `json:"fdi_points"`
	FDIGivenPoints  string `json:"fdi_given_points"`
	FDICost         string `json:"fdi_cost"`
}

// TierStatusDTO reports the resolved commission tier.
type TierStatusDTO struct {
	CurrentLevel *CommissionLevelDTO `json:"current_level,omitempty"`
	AmountToNext *string             `json:"amount_to_next_level,omitempty"`
}

// ReportDTO is the full report response.
type ReportDTO struct {
	Period PeriodDTO     `json:"period"`
	Totals TotalsDTO     `json:"totals"`
	Tier   TierStatusDTO `json:"tier"`
}

// =============================================================================
// SCHEDULE TYPES
// =============================================================================

// CommissionLevelDTO represents one tier of the schedule. A null max_amount
// means the tier is unbounded above.
type CommissionLevelDTO struct {
	Level                int     `json:"level"`
	MinAmount            string  `json:"min_amount"`
	MaxAmount            *string `json:"max_amount,omitempty"`
	AdditionalCommission string  `json:"additional_commission"`
}

// ProjectDTO represents a schedule owner.
type ProjectDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	BaseCommission string `json:"base_commission"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// SetLevelsRequest replaces a project's schedule. Levels are normalized
// (sorted and renumbered) server-side before persisting.
type SetLevelsRequest struct {
	Levels []CommissionLevelDTO `json:"levels"`
}

// =============================================================================
// SNAPSHOT AND MISC TYPES
// =============================================================================

// SnapshotDTO is the export/import payload: a JSON-shaped snapshot of the
// record store.
type SnapshotDTO struct {
	ExportedAt string    `json:"exported_at"`
	Sales      []SaleDTO `json:"sales"`
}

// PreferenceDTO is a single stored UI preference.
type PreferenceDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toSaleDTO(s sales.Sale) SaleDTO {
	dto := SaleDTO{
		ID:               string(s.ID),
		Date:             s.Date.String(),
		SaleAmount:       s.SaleAmount.String(),
		CommissionAmount: s.CommissionAmount.String(),
		NumberOfTours:    s.NumberOfTours,
		SaleType:         string(s.SaleType),
		IsCancelled:      s.IsCancelled,
		FDIPoints:        s.FDIPoints.String(),
		FDIGivenPoints:   s.FDIGivenPoints.String(),
		FDICost:          s.FDICost.String(),
		Notes:            s.Notes,
	}
	if !s.CreatedAt.IsZero() {
		dto.CreatedAt = s.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toSaleDTOs(ss []sales.Sale) []SaleDTO {
	dtos := make([]SaleDTO, len(ss))
	for i, s := range ss {
		dtos[i] = toSaleDTO(s)
	}
	return dtos
}

func toPeriodDTO(p sales.ReportPeriod) PeriodDTO {
	return PeriodDTO{Title: p.Title, Start: p.Start.String(), End: p.End.String()}
}

func toPeriodDTOs(ps []sales.ReportPeriod) []PeriodDTO {
	dtos := make([]PeriodDTO, len(ps))
	for i, p := range ps {
		dtos[i] = toPeriodDTO(p)
	}
	return dtos
}

func toTotalsDTO(t sales.Totals) TotalsDTO {
	return TotalsDTO{
		ActiveSales:     t.ActiveSales,
		CancelledSales:  t.CancelledSales,
		TotalTours:      t.TotalTours,
		TotalVolume:     t.TotalVolume.String(),
		TotalCommission: t.TotalCommission.String(),
		DeedSales:       t.DeedSales,
		TrustSales:      t.TrustSales,
		VPG:             t.VPG.String(),
		FDIPoints:       t.FDIPoints.String(),
		FDIGivenPoints:  t.FDIGivenPoints.String(),
		FDICost:         t.FDICost.String(),
	}
}

func toLevelDTO(l sales.CommissionLevel) CommissionLevelDTO {
	dto := CommissionLevelDTO{
		Level:                l.Level,
		MinAmount:            l.MinAmount.String(),
		AdditionalCommission: l.AdditionalCommission.String(),
	}
	if l.MaxAmount != nil {
		s := l.MaxAmount.String()
		dto.MaxAmount = &s
	}
	return dto
}

func toLevelDTOs(levels []sales.CommissionLevel) []CommissionLevelDTO {
	dtos := make([]CommissionLevelDTO, len(levels))
	for i, l := range levels {
		dtos[i] = toLevelDTO(l)
	}
	return dtos
}

func toTierDTO(t sales.TierStatus) TierStatusDTO {
	var dto TierStatusDTO
	if t.Current != nil {
		l := toLevelDTO(*t.Current)
		dto.CurrentLevel = &l
	}
	if t.AmountToNext != nil {
		s := t.AmountToNext.String()
		dto.AmountToNext = &s
	}
	return dto
}

func toProjectDTO(p sales.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:             string(p.ID),
		Name:           p.Name,
		BaseCommission: p.BaseCommission.String(),
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func fromLevelDTO(dto CommissionLevelDTO) (sales.CommissionLevel, error) {
	min, err := decimal.NewFromString(dto.MinAmount)
	if err != nil {
		return sales.CommissionLevel{}, &sales.ValidationError{Field: "min_amount", Reason: "not a number"}
	}
	add, err := decimal.NewFromString(dto.AdditionalCommission)
	if err != nil {
		return sales.CommissionLevel{}, &sales.ValidationError{Field: "additional_commission", Reason: "not a number"}
	}
	l := sales.CommissionLevel{Level: dto.Level, MinAmount: min, AdditionalCommission: add}
	if dto.MaxAmount != nil {
		max, err := decimal.NewFromString(*dto.MaxAmount)
		if err != nil {
			return sales.CommissionLevel{}, &sales.ValidationError{Field: "max_amount", Reason: "not a number"}
		}
		l.MaxAmount = &max
	}
	return l, nil
}

// parseMoney parses an optional decimal string, treating "" as zero.
func parseMoney(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &sales.ValidationError{Field: field, Reason: "not a number"}
	}
	return d, nil
}
