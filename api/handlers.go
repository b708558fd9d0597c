/*
handlers.go - HTTP API handlers for the career-path and subsidy service

PURPOSE:
  Exposes facility master data, career management, wage tables and
  treatment-improvement plans via REST API. Handles HTTP request/response
  and JSON serialization, and delegates to the domain packages.

ENDPOINTS:
  Providers:
    GET    /api/providers                    List providers
    POST   /api/providers                    Create provider
    GET    /api/providers/{id}               Get provider
    GET    /api/providers/{id}/facilities    Facilities of a provider

  Facilities:
    GET    /api/facilities                   List facilities (?provider_id=)
    POST   /api/facilities                   Create facility
    GET    /api/facilities/{id}              Get facility

  Career (career.go):
    /api/facilities/{id}/positions, /staff, /training-plans, /requirements
    /api/positions/{id}, /api/staff/{id}, /api/staff/{id}/promotion-check
    /api/promotion-criteria

  Wage tables (wages.go):
    /api/facilities/{id}/wage-tables[/suggestions|/export]
    /api/positions/{id}/wage-table

  Plans (plans.go):
    /api/initiatives, /api/plans, /api/evaluate

  Scenarios (scenarios.go):
    /api/scenarios

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access
  - Plans: Plan creation and evaluation service
  - Fixtures: JSON fixture to domain conversion

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate, forbidden status change)
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/carepath/facility"
	"github.com/warp/carepath/factory"
	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/store/sqlite"
	"github.com/warp/carepath/subsidy"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Plans    *subsidy.PlanService
	Fixtures *factory.FixtureFactory
	Metrics  *Metrics

	log logrus.FieldLogger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler over store. metrics may be nil.
func NewHandler(store *sqlite.Store, log logrus.FieldLogger, metrics *Metrics) *Handler {
	plans := subsidy.NewPlanService(store, log.WithField("component", "plans"))
	if metrics != nil {
		plans.WithRecorder(metrics)
	}
	return &Handler{
		Store:    store,
		Plans:    plans,
		Fixtures: factory.NewFixtureFactory(),
		Metrics:  metrics,
		log:      log,
	}
}

// Health pings the database.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// PROVIDER HANDLERS
// =============================================================================

// ListProviders returns all providers.
func (h *Handler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := h.Store.ListProviders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list providers", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(providers))
}

// CreateProvider validates and stores a provider.
func (h *Handler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var req facility.Provider
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = ""

	p, err := facility.NewProvider(req)
	if err != nil {
		writeDomainError(w, "Invalid provider", err)
		return
	}
	if err := h.Store.SaveProvider(r.Context(), p); err != nil {
		writeDomainError(w, "Failed to save provider", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetProvider returns a single provider.
func (h *Handler) GetProvider(w http.ResponseWriter, r *http.Request) {
	id := generic.ProviderID(chi.URLParam(r, "id"))
	p, err := h.Store.GetProvider(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get provider", err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Provider not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListProviderFacilities returns the facilities of one provider.
func (h *Handler) ListProviderFacilities(w http.ResponseWriter, r *http.Request) {
	id := generic.ProviderID(chi.URLParam(r, "id"))
	ok, err := h.Store.ProviderExists(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get provider", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Provider not found", nil)
		return
	}
	h.listFacilities(w, r, id)
}

// =============================================================================
// FACILITY HANDLERS
// =============================================================================

// ListFacilities returns all facilities, optionally for one provider.
// GET /api/facilities?provider_id=...
func (h *Handler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	h.listFacilities(w, r, generic.ProviderID(r.URL.Query().Get("provider_id")))
}

func (h *Handler) listFacilities(w http.ResponseWriter, r *http.Request, providerID generic.ProviderID) {
	facilities, err := h.Store.ListFacilities(r.Context(), providerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list facilities", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(facilities))
}

// CreateFacility validates and stores a facility.
func (h *Handler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	var req facility.Facility
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = ""

	f, err := facility.NewFacility(req)
	if err != nil {
		writeDomainError(w, "Invalid facility", err)
		return
	}
	if err := h.Store.SaveFacility(r.Context(), f); err != nil {
		writeDomainError(w, "Failed to save facility", err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// GetFacility returns a single facility.
func (h *Handler) GetFacility(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// facilityFromURL loads the {id} facility, writing the error response itself.
func (h *Handler) facilityFromURL(w http.ResponseWriter, r *http.Request) (*facility.Facility, bool) {
	id := generic.FacilityID(chi.URLParam(r, "id"))
	f, err := h.Store.GetFacility(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get facility", err)
		return nil, false
	}
	if f == nil {
		writeError(w, http.StatusNotFound, "Facility not found", nil)
		return nil, false
	}
	return f, true
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

// writeDomainError picks the status and code from the error's sentinel.
// Validation errors carry their per-field messages as details.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := statusFor(err)
	resp := ErrorResponse{Error: message, Code: code, Details: err.Error()}

	var verr *generic.ValidationError
	if errors.As(err, &verr) {
		resp.Details = verr.Fields
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, generic.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, generic.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, generic.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, generic.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// decodeJSON reads the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// nonNil keeps empty lists as [] rather than null on the wire.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
