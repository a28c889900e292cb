/*
handlers.go - HTTP API handlers for the pricing engine

PURPOSE:
  Exposes the pricing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the engine and the store.

ENDPOINTS:
  Pricing:
    POST   /api/pricing/calculate       Full price breakdown
    POST   /api/pricing/promo/validate  Standalone promo validation
    GET    /api/pricing/scenarios       Named preview scenarios
    POST   /api/pricing/preview         Run scenarios through the pipeline

  Administration:
    GET/POST          /api/rules        Rule definitions
    GET/DELETE        /api/rules/{id}
    GET/POST          /api/promos       Promotional codes
    DELETE            /api/promos/{code}
    POST              /api/promos/{code}/redeem
    GET/POST          /api/holidays     Holiday table
    DELETE            /api/holidays/{id}
    POST              /api/jobs         Seed posting records
    GET               /api/jobs/count   In-month count for a company
    POST              /api/reset        Clear all data (dev only)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 503: Pricing repositories unavailable
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/trm/pricing-engine/factory"
	"github.com/trm/pricing-engine/pricing"
	"github.com/trm/pricing-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        *sqlite.Store
	Orchestrator *pricing.Orchestrator
	Scenarios    []pricing.Scenario
}

// NewHandler creates a new handler.
func NewHandler(store *sqlite.Store, orch *pricing.Orchestrator, scenarios []pricing.Scenario) *Handler {
	return &Handler{Store: store, Orchestrator: orch, Scenarios: scenarios}
}

// =============================================================================
// PRICING HANDLERS
// =============================================================================

// Calculate returns the full price breakdown for one purchase.
// POST /api/pricing/calculate
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start := time.Now()
	breakdown, err := h.Orchestrator.CalculateJobPostingPrice(r.Context(), req.ToRequest())
	if err != nil {
		observeCalculation("error", time.Since(start))
		writePricingError(w, err)
		return
	}
	observeCalculation("ok", time.Since(start))
	writeJSON(w, http.StatusOK, breakdown)
}

// ValidatePromo validates a promotional code outside the pipeline.
// POST /api/pricing/promo/validate
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req ValidatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	result, err := h.Orchestrator.ValidatePromoCode(r.Context(), pricing.PromoValidation{
		Code:        req.Code,
		Amount:      amount,
		UserID:      pricing.UserID(req.UserID),
		CompanyID:   pricing.CompanyID(req.Company),
		ServiceType: pricing.ServiceJobPosting,
		Category:    req.Category,
	})
	if err != nil {
		writePricingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

// ListRules returns all rule definitions.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Store.ListRules(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}

	f := factory.New()
	dtos := make([]factory.RuleJSON, len(rules))
	for i, rule := range rules {
		dtos[i] = f.RuleToJSON(rule)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRule validates and stores a rule definition.
// POST /api/rules
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var rj factory.RuleJSON
	if err := json.NewDecoder(r.Body).Decode(&rj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rule, err := h.Store.SaveRule(r.Context(), rj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rule definition", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.New().RuleToJSON(*rule))
}

// GetRule returns one rule definition.
// GET /api/rules/{id}
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	id := pricing.RuleID(chi.URLParam(r, "id"))
	rule, err := h.Store.GetRule(r.Context(), id)
	if err != nil {
		if pricing.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Rule not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load rule", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.New().RuleToJSON(*rule))
}

// DeleteRule removes a rule definition.
// DELETE /api/rules/{id}
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := pricing.RuleID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteRule(r.Context(), id); err != nil {
		if pricing.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Rule not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete rule", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// PROMO HANDLERS
// =============================================================================

// ListPromos returns all promotional code definitions.
// GET /api/promos
func (h *Handler) ListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := h.Store.ListPromos(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list promos", err)
		return
	}

	f := factory.New()
	dtos := make([]factory.PromoJSON, len(promos))
	for i, promo := range promos {
		dtos[i] = f.PromoToJSON(promo)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePromo validates and stores a promotional code definition.
// POST /api/promos
func (h *Handler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var pj factory.PromoJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	promo, err := h.Store.SavePromo(r.Context(), pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid promo definition", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.New().PromoToJSON(*promo))
}

// DeletePromo removes a promotional code definition.
// DELETE /api/promos/{code}
func (h *Handler) DeletePromo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.Store.DeletePromo(r.Context(), code); err != nil {
		if pricing.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Promo not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete promo", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RedeemPromo records one redemption for usage caps. Checkout calls this
// after payment succeeds; validation never writes.
// POST /api/promos/{code}/redeem
func (h *Handler) RedeemPromo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	// An empty body is fine, user_id is optional.
	var req RedeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if _, err := h.Store.FindByCode(r.Context(), code); err != nil {
		if pricing.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Promo not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to load promo", err)
		return
	}

	if err := h.Store.RecordRedemption(r.Context(), code, pricing.UserID(req.UserID)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record redemption", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "redeemed"})
}

// =============================================================================
// JOB HANDLERS
// =============================================================================

// CreateJob records a posting, feeding volume-discount counts.
// POST /api/jobs
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CompanyID == "" {
		writeError(w, http.StatusBadRequest, "company_id is required", nil)
		return
	}

	job := sqlite.Job{
		CompanyID: pricing.CompanyID(req.CompanyID),
		Status:    req.Status,
	}
	if job.Status == "" {
		job.Status = "active"
	}
	if req.CreatedAt != "" {
		createdAt, err := time.Parse(time.RFC3339, req.CreatedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid created_at", err)
			return
		}
		job.CreatedAt = createdAt
	}

	saved, err := h.Store.SaveJob(r.Context(), job)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save job", err)
		return
	}
	writeJSON(w, http.StatusCreated, JobDTO{
		ID:        saved.ID,
		CompanyID: string(saved.CompanyID),
		Status:    saved.Status,
		CreatedAt: saved.CreatedAt.Format(time.RFC3339),
	})
}

// CountJobs returns a company's posting count for the current month.
// GET /api/jobs/count?company_id=...
func (h *Handler) CountJobs(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("company_id")
	if companyID == "" {
		writeError(w, http.StatusBadRequest, "company_id is required", nil)
		return
	}

	// Same counting window as the volume-discount stage, so the
	// reported count matches what the pipeline will use.
	since := h.Orchestrator.MonthStart()
	count, err := h.Store.CountActiveSince(r.Context(), pricing.CompanyID(companyID), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count jobs", err)
		return
	}
	writeJSON(w, http.StatusOK, JobCountDTO{
		CompanyID: companyID,
		Since:     since.Format(time.RFC3339),
		Count:     count,
	})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the maintained holiday table.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, holiday := range holidays {
		dtos[i] = HolidayDTO{
			ID:   holiday.ID,
			Date: holiday.Date.Format("2006-01-02"),
			Name: holiday.Name,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds one holiday date.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	saved, err := h.Store.SaveHoliday(r.Context(), sqlite.Holiday{Date: date, Name: req.Name})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, HolidayDTO{
		ID:   saved.ID,
		Date: date.Format("2006-01-02"),
		Name: saved.Name,
	})
}

// DeleteHoliday removes one holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// ResetDatabase clears all data. Development and demo use only.
// POST /api/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
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

// writePricingError maps engine errors to HTTP statuses. Infrastructure
// failures surface as "pricing unavailable, try again".
func writePricingError(w http.ResponseWriter, err error) {
	switch {
	case pricing.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid pricing request", err)
	case pricing.IsInfrastructure(err):
		writeError(w, http.StatusServiceUnavailable, "Pricing unavailable, try again", nil)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to calculate price", err)
	}
}
