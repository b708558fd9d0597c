package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/carepath/career"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// POSITION HANDLERS
// =============================================================================

// ListPositions returns a facility's career ladder.
// GET /api/facilities/{id}/positions
func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	positions, err := h.Store.ListPositions(r.Context(), f.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list positions", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(positions))
}

// CreatePosition adds a position to a facility.
// POST /api/facilities/{id}/positions
func (h *Handler) CreatePosition(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	var req career.Position
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = ""
	req.FacilityID = f.ID

	p, err := career.NewPosition(req)
	if err != nil {
		writeDomainError(w, "Invalid position", err)
		return
	}
	if err := h.Store.SavePosition(r.Context(), p); err != nil {
		writeDomainError(w, "Failed to save position", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetPosition returns a single position.
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	p, ok := h.positionFromURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) positionFromURL(w http.ResponseWriter, r *http.Request) (*career.Position, bool) {
	id := generic.PositionID(chi.URLParam(r, "id"))
	p, err := h.Store.GetPosition(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get position", err)
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Position not found", nil)
		return nil, false
	}
	return p, true
}

// =============================================================================
// STAFF HANDLERS
// =============================================================================

// ListStaff returns a facility's staff.
// GET /api/facilities/{id}/staff?active=true
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	activeOnly := r.URL.Query().Get("active") == "true"

	staff, err := h.Store.ListStaff(r.Context(), f.ID, activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list staff", err)
		return
	}

	today := generic.Today()
	dtos := make([]StaffDTO, len(staff))
	for i, s := range staff {
		dtos[i] = toStaffDTO(s, today)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateStaff adds a staff member to a facility.
// POST /api/facilities/{id}/staff
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	var req career.StaffMember
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = ""
	req.FacilityID = f.ID
	req.Active = true

	h.saveStaff(w, r, req, http.StatusCreated)
}

// GetStaff returns a single staff member.
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	s, ok := h.staffFromURL(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toStaffDTO(*s, generic.Today()))
}

// UpdateStaff replaces a staff member's record. The facility cannot change.
// PUT /api/staff/{id}
func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.staffFromURL(w, r)
	if !ok {
		return
	}
	var req career.StaffMember
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = existing.ID
	req.FacilityID = existing.FacilityID

	h.saveStaff(w, r, req, http.StatusOK)
}

func (h *Handler) saveStaff(w http.ResponseWriter, r *http.Request, req career.StaffMember, status int) {
	if req.CurrentPositionID != nil {
		pos, err := h.Store.GetPosition(r.Context(), *req.CurrentPositionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get position", err)
			return
		}
		if pos == nil || pos.FacilityID != req.FacilityID {
			writeDomainError(w, "Invalid staff member",
				generic.Invalid("current_position_id", "position does not belong to the facility"))
			return
		}
	}

	s, err := career.NewStaffMember(req)
	if err != nil {
		writeDomainError(w, "Invalid staff member", err)
		return
	}
	if err := h.Store.SaveStaff(r.Context(), s); err != nil {
		writeDomainError(w, "Failed to save staff member", err)
		return
	}
	writeJSON(w, status, toStaffDTO(s, generic.Today()))
}

func (h *Handler) staffFromURL(w http.ResponseWriter, r *http.Request) (*career.StaffMember, bool) {
	id := generic.StaffID(chi.URLParam(r, "id"))
	s, err := h.Store.GetStaff(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get staff member", err)
		return nil, false
	}
	if s == nil {
		writeError(w, http.StatusNotFound, "Staff member not found", nil)
		return nil, false
	}
	return s, true
}

// =============================================================================
// PROMOTION HANDLERS
// =============================================================================

// CheckPromotion evaluates whether a staff member can move to a position.
// Criteria for the member's current -> target move are applied when defined.
// GET /api/staff/{id}/promotion-check?target_position_id=...&as_of=YYYY-MM-DD
func (h *Handler) CheckPromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	staff, ok := h.staffFromURL(w, r)
	if !ok {
		return
	}

	targetID := generic.PositionID(r.URL.Query().Get("target_position_id"))
	if targetID == "" {
		writeError(w, http.StatusBadRequest, "target_position_id is required", nil)
		return
	}

	asOf := generic.Today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		d, err := generic.ParseDate(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of", err)
			return
		}
		asOf = d
	}

	target, err := h.Store.GetPosition(ctx, targetID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get position", err)
		return
	}
	if target == nil {
		writeError(w, http.StatusNotFound, "Target position not found", nil)
		return
	}

	var criteria *career.PromotionCriteria
	if staff.CurrentPositionID != nil {
		criteria, err = h.Store.GetPromotionCriteria(ctx, *staff.CurrentPositionID, targetID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get promotion criteria", err)
			return
		}
	}

	eligible, issues := career.CheckPromotionEligibility(staff, target, criteria, asOf)
	writeJSON(w, http.StatusOK, PromotionCheckDTO{
		StaffID:          staff.ID,
		TargetPositionID: targetID,
		AsOf:             asOf,
		Eligible:         eligible,
		Issues:           nonNil(issues),
		HasCriteria:      criteria != nil,
	})
}

// SavePromotionCriteria defines or replaces the rules for one move.
// POST /api/promotion-criteria
func (h *Handler) SavePromotionCriteria(w http.ResponseWriter, r *http.Request) {
	var req career.PromotionCriteria
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := career.NewPromotionCriteria(req)
	if err != nil {
		writeDomainError(w, "Invalid promotion criteria", err)
		return
	}
	if err := h.Store.SavePromotionCriteria(r.Context(), c); err != nil {
		writeDomainError(w, "Failed to save promotion criteria", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// =============================================================================
// TRAINING & REQUIREMENTS HANDLERS
// =============================================================================

// ListTrainingPlans returns a facility's training plans.
// GET /api/facilities/{id}/training-plans?fiscal_year=2025
func (h *Handler) ListTrainingPlans(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}

	var year int
	if s := r.URL.Query().Get("fiscal_year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid fiscal_year", err)
			return
		}
		year = y
	}

	plans, err := h.Store.ListTrainingPlans(r.Context(), f.ID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list training plans", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(plans))
}

// CreateTrainingPlan adds a training plan to a facility.
func (h *Handler) CreateTrainingPlan(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	var req career.TrainingPlan
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = ""
	req.FacilityID = f.ID

	t, err := career.NewTrainingPlan(req)
	if err != nil {
		writeDomainError(w, "Invalid training plan", err)
		return
	}
	if err := h.Store.SaveTrainingPlan(r.Context(), t); err != nil {
		writeDomainError(w, "Failed to save training plan", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// GetRequirements summarizes the facility's career-path evidence.
// GET /api/facilities/{id}/requirements
func (h *Handler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	o, err := h.Store.RequirementsOverview(r.Context(), f.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("Failed to summarize requirements for %s", f.Name), err)
		return
	}
	writeJSON(w, http.StatusOK, RequirementsDTO{
		RequirementsOverview:   o,
		PositionsDefined:       o.PositionsDefined(),
		WageTablesComplete:     o.WageTablesComplete(),
		RequirementOneComplete: o.RequirementOneComplete(),
		TrainingPlanned:        o.TrainingPlanned(),
		SalarySystemDefined:    o.SalarySystemDefined(),
	})
}
