/*
handlers.go - HTTP API handlers for the sales tracking system

PURPOSE:
  Exposes the commission engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Sales:
    GET    /api/sales                  List all sales
    POST   /api/sales                  Record a sale
    GET    /api/sales/{id}             Get one sale
    PUT    /api/sales/{id}             Partial update (cancel toggle, edits)
    DELETE /api/sales/{id}             Delete a sale

  Reporting:
    GET    /api/periods                Generated period families
    GET    /api/report                 Totals + commission tier for a period

  Schedule:
    GET    /api/projects               List projects
    GET    /api/projects/{id}/levels   Commission schedule
    PUT    /api/projects/{id}/levels   Replace schedule (normalized first)

  Snapshot:
    GET    /api/export                 JSON snapshot of all sales
    POST   /api/import                 Replace store from snapshot

  Preferences:
    GET    /api/preferences/{key}
    PUT    /api/preferences/{key}

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (session, aggregator, resolver)
  4. Serialize response

ERROR HANDLING:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 500: Storage failures (prior state unchanged, no retry)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/commission-engine/sales"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the full persistence surface the handlers need. Both the SQLite
// store and the in-memory store satisfy it.
type Store interface {
	sales.SaleStore
	sales.ScheduleStore
	sales.PreferenceStore
	sales.SnapshotStore
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store          Store
	DefaultProject sales.ProjectID

	// Now supplies the reference date; overridable in tests.
	Now func() sales.TimePoint
}

// NewHandler creates a handler over the given store.
func NewHandler(store Store, defaultProject sales.ProjectID) *Handler {
	return &Handler{
		Store:          store,
		DefaultProject: defaultProject,
		Now:            sales.Today,
	}
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// ListSales returns all sales ordered by date.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sales", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTOs(all))
}

// CreateSale records a new sale. The store assigns the identifier.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sale, err := saleFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale", err)
		return
	}

	created, err := h.Store.Add(r.Context(), sale)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record sale", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSaleDTO(created))
}

// GetSale returns a single sale.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id := sales.SaleID(chi.URLParam(r, "id"))
	sale, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get sale", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(*sale))
}

// UpdateSale applies a partial edit: cancellation toggle, note edit, or a
// full field edit, depending on which fields the body carries.
func (h *Handler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id := sales.SaleID(chi.URLParam(r, "id"))

	var req UpdateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	update, err := updateFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid update", err)
		return
	}

	if err := h.Store.Update(r.Context(), id, update); err != nil {
		writeDomainError(w, "Failed to update sale", err)
		return
	}

	sale, err := h.Store.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to reload sale", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(*sale))
}

// DeleteSale removes a sale permanently.
func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id := sales.SaleID(chi.URLParam(r, "id"))
	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete sale", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// PERIOD AND REPORT HANDLERS
// =============================================================================

// GetPeriods returns the four period families for a reference date
// (default: today). An optional anchor shifts the rolling windows.
func (h *Handler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	ref, err := h.queryDate(r, "date", h.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	anchor, err := h.queryDate(r, "anchor", ref)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid anchor (use YYYY-MM-DD)", err)
		return
	}

	ps := sales.GeneratePeriodsAnchored(ref, anchor)
	writeJSON(w, http.StatusOK, PeriodSetDTO{
		Monthly:   toPeriodDTOs(ps.Monthly),
		Annual:    toPeriodDTOs(ps.Annual),
		Rolling45: toPeriodDTO(ps.Rolling45),
		Rolling90: toPeriodDTO(ps.Rolling90),
	})
}

// GetReport runs the report pipeline: select period, filter sales,
// aggregate, resolve the commission tier.
//
// Query parameters:
//
//	family  monthly|annual|rolling45|rolling90 (absent: restore last selection)
//	period  monthly period title, e.g. "August 2024"
//	anchor  rolling start date, YYYY-MM-DD
//	project project ID (default: the seeded project)
//	date    reference date, YYYY-MM-DD (default: today)
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ref, err := h.queryDate(r, "date", h.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	projectID := h.DefaultProject
	if p := r.URL.Query().Get("project"); p != "" {
		projectID = sales.ProjectID(p)
	}

	sess := sales.NewSession(h.Store, h.Store, h.Store, projectID, ref)

	family := r.URL.Query().Get("family")
	if family == "" {
		// No explicit selection: restore the remembered one.
		if err := sess.Restore(ctx); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to restore selection", err)
			return
		}
	} else {
		f, err := sales.ParsePeriodFamily(family)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Unknown period family", err)
			return
		}
		if err := sess.SelectFamily(f); err != nil {
			writeError(w, http.StatusBadRequest, "Unknown period family", err)
			return
		}
	}

	if anchor := r.URL.Query().Get("anchor"); anchor != "" {
		tp, err := sales.ParseTimePoint(anchor)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid anchor (use YYYY-MM-DD)", err)
			return
		}
		sess.SetRollingAnchor(tp)
	}

	if title := r.URL.Query().Get("period"); title != "" {
		if err := sess.SelectPeriod(title); err != nil {
			writeError(w, http.StatusBadRequest, "Unknown period", err)
			return
		}
	}

	report, err := sess.Report(ctx)
	if err != nil {
		writeDomainError(w, "Failed to build report", err)
		return
	}

	// Selection persistence is best effort; the report already succeeded.
	_ = sess.Remember(ctx)

	writeJSON(w, http.StatusOK, ReportDTO{
		Period: toPeriodDTO(report.Period),
		Totals: toTotalsDTO(report.Totals),
		Tier:   toTierDTO(report.Tier),
	})
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// ListProjects returns all schedule owners.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLevels returns a project's commission schedule.
func (h *Handler) GetLevels(w http.ResponseWriter, r *http.Request) {
	id := sales.ProjectID(chi.URLParam(r, "id"))
	levels, err := h.Store.GetCommissionLevels(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toLevelDTOs(levels))
}

// SetLevels replaces a project's schedule. Bounds are validated, then the
// list is normalized (sorted by min ascending, renumbered 1..N) before it
// is persisted.
func (h *Handler) SetLevels(w http.ResponseWriter, r *http.Request) {
	id := sales.ProjectID(chi.URLParam(r, "id"))

	var req SetLevelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	levels := make([]sales.CommissionLevel, 0, len(req.Levels))
	for _, dto := range req.Levels {
		l, err := fromLevelDTO(dto)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid level", err)
			return
		}
		levels = append(levels, l)
	}

	if err := sales.ValidateLevels(levels); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}

	normalized := sales.NormalizeLevels(levels)
	if err := h.Store.SetCommissionLevels(r.Context(), id, normalized); err != nil {
		writeDomainError(w, "Failed to save schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toLevelDTOs(normalized))
}

// =============================================================================
// SNAPSHOT HANDLERS
// =============================================================================

// ExportSnapshot serializes all sales as a JSON snapshot.
func (h *Handler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	all, err := h.Store.ListAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export", err)
		return
	}
	writeJSON(w, http.StatusOK, SnapshotDTO{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Sales:      toSaleDTOs(all),
	})
}

// ImportSnapshot replaces the sale store contents from a snapshot. The swap
// is atomic: on any parse failure nothing is written.
func (h *Handler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap SnapshotDTO
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid snapshot", err)
		return
	}

	imported := make([]sales.Sale, 0, len(snap.Sales))
	for _, dto := range snap.Sales {
		sale, err := saleFromRequest(CreateSaleRequest{
			Date:             dto.Date,
			SaleAmount:       dto.SaleAmount,
			CommissionAmount: dto.CommissionAmount,
			NumberOfTours:    dto.NumberOfTours,
			SaleType:         dto.SaleType,
			FDIPoints:        dto.FDIPoints,
			FDIGivenPoints:   dto.FDIGivenPoints,
			FDICost:          dto.FDICost,
			Notes:            dto.Notes,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid snapshot record", err)
			return
		}
		sale.ID = sales.SaleID(dto.ID)
		sale.IsCancelled = dto.IsCancelled
		imported = append(imported, sale)
	}

	if err := h.Store.ReplaceSales(r.Context(), imported); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to import", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": len(imported)})
}

// =============================================================================
// PREFERENCE HANDLERS
// =============================================================================

// GetPreference returns a stored UI preference.
func (h *Handler) GetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	value, err := h.Store.GetPreference(r.Context(), key)
	if err != nil {
		writeDomainError(w, "Failed to get preference", err)
		return
	}
	writeJSON(w, http.StatusOK, PreferenceDTO{Key: key, Value: value})
}

// SetPreference stores a UI preference.
func (h *Handler) SetPreference(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var pref PreferenceDTO
	if err := json.NewDecoder(r.Body).Decode(&pref); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.SetPreference(r.Context(), key, pref.Value); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to set preference", err)
		return
	}
	writeJSON(w, http.StatusOK, PreferenceDTO{Key: key, Value: pref.Value})
}

// =============================================================================
// REQUEST PARSING
// =============================================================================

func saleFromRequest(req CreateSaleRequest) (sales.Sale, error) {
	date, err := sales.ParseTimePoint(req.Date)
	if err != nil {
		return sales.Sale{}, &sales.ValidationError{Field: "date", Reason: "use YYYY-MM-DD"}
	}

	sale := sales.Sale{
		Date:          date,
		NumberOfTours: req.NumberOfTours,
		SaleType:      sales.SaleType(req.SaleType),
		Notes:         req.Notes,
	}
	if sale.SaleType == "" {
		sale.SaleType = sales.SaleOther
	}

	if sale.SaleAmount, err = parseMoney("sale_amount", req.SaleAmount); err != nil {
		return sales.Sale{}, err
	}
	if sale.CommissionAmount, err = parseMoney("commission_amount", req.CommissionAmount); err != nil {
		return sales.Sale{}, err
	}
	if sale.FDIPoints, err = parseMoney("fdi_points", req.FDIPoints); err != nil {
		return sales.Sale{}, err
	}
	if sale.FDIGivenPoints, err = parseMoney("fdi_given_points", req.FDIGivenPoints); err != nil {
		return sales.Sale{}, err
	}
	if sale.FDICost, err = parseMoney("fdi_cost", req.FDICost); err != nil {
		return sales.Sale{}, err
	}

	if err := sale.Validate(); err != nil {
		return sales.Sale{}, err
	}
	return sale, nil
}

func updateFromRequest(req UpdateSaleRequest) (sales.SaleUpdate, error) {
	var update sales.SaleUpdate

	if req.Date != nil {
		tp, err := sales.ParseTimePoint(*req.Date)
		if err != nil {
			return sales.SaleUpdate{}, &sales.ValidationError{Field: "date", Reason: "use YYYY-MM-DD"}
		}
		update.Date = &tp
	}
	if req.SaleAmount != nil {
		d, err := parseMoney("sale_amount", *req.SaleAmount)
		if err != nil {
			return sales.SaleUpdate{}, err
		}
		if d.IsNegative() {
			return sales.SaleUpdate{}, &sales.ValidationError{Field: "sale_amount", Reason: "must be non-negative"}
		}
		update.SaleAmount = &d
	}
	if req.CommissionAmount != nil {
		d, err := parseMoney("commission_amount", *req.CommissionAmount)
		if err != nil {
			return sales.SaleUpdate{}, err
		}
		update.CommissionAmount = &d
	}
	if req.NumberOfTours != nil {
		if *req.NumberOfTours < 0 {
			return sales.SaleUpdate{}, &sales.ValidationError{Field: "number_of_tours", Reason: "must be non-negative"}
		}
		update.NumberOfTours = req.NumberOfTours
	}
	if req.SaleType != nil {
		st := sales.SaleType(*req.SaleType)
		switch st {
		case sales.SaleDeed, sales.SaleTrust, sales.SaleOther:
		default:
			return sales.SaleUpdate{}, &sales.ValidationError{Field: "sale_type", Reason: "unknown sale type"}
		}
		update.SaleType = &st
	}
	update.IsCancelled = req.IsCancelled
	if req.FDIPoints != nil {
		d, err := parseMoney("fdi_points", *req.FDIPoints)
		if err != nil {
			return sales.SaleUpdate{}, err
		}
		update.FDIPoints = &d
	}
	if req.FDIGivenPoints != nil {
		d, err := parseMoney("fdi_given_points", *req.FDIGivenPoints)
		if err != nil {
			return sales.SaleUpdate{}, err
		}
		update.FDIGivenPoints = &d
	}
	if req.FDICost != nil {
		d, err := parseMoney("fdi_cost", *req.FDICost)
		if err != nil {
			return sales.SaleUpdate{}, err
		}
		update.FDICost = &d
	}
	update.Notes = req.Notes

	return update, nil
}

func (h *Handler) queryDate(r *http.Request, param string, fallback sales.TimePoint) (sales.TimePoint, error) {
	v := r.URL.Query().Get(param)
	if v == "" {
		return fallback, nil
	}
	return sales.ParseTimePoint(v)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case sales.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case sales.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
