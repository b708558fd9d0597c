package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
)

// =============================================================================
// INITIATIVE HANDLERS
// =============================================================================

// ListInitiatives returns the workplace-environment catalog.
// GET /api/initiatives?category=qualification
func (h *Handler) ListInitiatives(w http.ResponseWriter, r *http.Request) {
	category := subsidy.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown category", nil)
		return
	}
	items, err := h.Store.ListInitiatives(r.Context(), category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list initiatives", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// ListPlans returns plans, optionally for one provider.
// GET /api/plans?provider_id=...
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	providerID := generic.ProviderID(r.URL.Query().Get("provider_id"))
	plans, err := h.Store.ListPlans(r.Context(), providerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list plans", err)
		return
	}
	dtos := make([]PlanDTO, len(plans))
	for i := range plans {
		dtos[i] = toPlanDTO(&plans[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePlan evaluates and stores a plan from one complete draft.
// POST /api/plans
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var draft subsidy.PlanDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	plan, err := h.Plans.CreatePlan(r.Context(), draft)
	if err != nil {
		writeDomainError(w, "Failed to create plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPlanDTO(plan))
}

// GetPlan returns a single plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id := generic.PlanID(chi.URLParam(r, "id"))
	plan, err := h.Store.GetPlan(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get plan", err)
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "Plan not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// UpdatePlan replaces an editable plan's inputs.
// PUT /api/plans/{id}
func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	var draft subsidy.PlanDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	plan, err := h.Plans.UpdatePlan(r.Context(), generic.PlanID(chi.URLParam(r, "id")), draft)
	if err != nil {
		writeDomainError(w, "Failed to update plan", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// ReevaluatePlan recomputes tier and amount from the stored inputs.
// POST /api/plans/{id}/reevaluate
func (h *Handler) ReevaluatePlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Plans.Reevaluate(r.Context(), generic.PlanID(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "Failed to re-evaluate plan", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// TransitionPlan moves a plan along draft -> submitted -> approved/rejected.
// POST /api/plans/{id}/transition
func (h *Handler) TransitionPlan(w http.ResponseWriter, r *http.Request) {
	var req TransitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := h.Plans.Transition(r.Context(), generic.PlanID(chi.URLParam(r, "id")), req.Status)
	if err != nil {
		writeDomainError(w, "Failed to change plan status", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// =============================================================================
// STATELESS EVALUATION
// =============================================================================

// Evaluate determines the tier and estimate without storing anything.
// POST /api/evaluate
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	counts := req.Counts
	if len(req.InitiativeIDs) > 0 && counts != (subsidy.InitiativeCounts{}) {
		writeDomainError(w, "Invalid evaluation request",
			generic.Invalid("counts", "give either counts or workplace_initiative_ids, not both"))
		return
	}
	if len(req.InitiativeIDs) > 0 {
		items, err := h.Store.InitiativesByID(r.Context(), req.InitiativeIDs)
		if err != nil {
			writeDomainError(w, "Failed to load initiatives", err)
			return
		}
		counts = subsidy.CountInitiatives(items)
	}
	if err := generic.ValidateStruct(req); err != nil {
		writeDomainError(w, "Invalid evaluation request", err)
		return
	}
	if err := generic.ValidateStruct(counts); err != nil {
		writeDomainError(w, "Invalid initiative counts", err)
		return
	}

	a := subsidy.Assess(req.Flags, counts)
	est := subsidy.EstimateAnnualAmount(a.Tier, req.TotalServiceUnits)
	writeJSON(w, http.StatusOK, EvaluateResponse{
		Assessment: a,
		TierLabel:  a.Tier.Label(),
		Counts:     counts,
		Rate:       est.Rate.String(),
		Amount:     toYen(est.Amount),
	})
}
