package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/warp/carepath/career"
	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/wage"
)

// =============================================================================
// REQUIREMENT I HANDLERS
// =============================================================================

// ListRequirementOne returns every position of a facility with its
// requirement I record, or the unsaved default where none exists.
// GET /api/facilities/{id}/requirement-one
func (h *Handler) ListRequirementOne(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}

	positions, err := h.Store.ListPositions(ctx, f.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list positions", err)
		return
	}
	saved, err := h.Store.RequirementOnesByFacility(ctx, f.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requirement one records", err)
		return
	}
	tables, err := h.Store.WageTablesByFacility(ctx, f.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load wage tables", err)
		return
	}

	out := make([]RequirementOneDTO, len(positions))
	for i, p := range positions {
		if req, ok := saved[p.ID]; ok {
			out[i] = toRequirementOneDTO(p, req, true)
			continue
		}
		var table *wage.Definition
		if def, ok := tables[p.ID]; ok {
			table = &def
		}
		out[i] = toRequirementOneDTO(p, career.DefaultRequirementOne(p, table), false)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRequirementOne returns a position's record, or the unsaved default.
// GET /api/positions/{id}/requirement-one
func (h *Handler) GetRequirementOne(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := h.positionFromURL(w, r)
	if !ok {
		return
	}

	req, err := h.Store.GetRequirementOne(ctx, p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get requirement one", err)
		return
	}
	if req != nil {
		writeJSON(w, http.StatusOK, toRequirementOneDTO(*p, *req, true))
		return
	}

	table, err := h.Store.GetWageTable(ctx, p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get wage table", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequirementOneDTO(*p, career.DefaultRequirementOne(*p, table), false))
}

// PutRequirementOne creates or replaces a position's record.
// PUT /api/positions/{id}/requirement-one
func (h *Handler) PutRequirementOne(w http.ResponseWriter, r *http.Request) {
	p, ok := h.positionFromURL(w, r)
	if !ok {
		return
	}
	var req career.RequirementOne
	if !decodeJSON(w, r, &req) {
		return
	}
	req.PositionID = p.ID
	req.FacilityID = p.FacilityID

	rec, err := career.NewRequirementOne(req)
	if err != nil {
		writeDomainError(w, "Invalid requirement one", err)
		return
	}
	if err := h.Store.SaveRequirementOne(r.Context(), rec); err != nil {
		writeDomainError(w, "Failed to save requirement one", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequirementOneDTO(*p, rec, true))
}

// =============================================================================
// REQUIREMENT III HANDLERS
// =============================================================================

// GetSalaryIncreaseSystem returns the facility's policy, or the unsaved
// default when none is defined.
// GET /api/facilities/{id}/salary-increase-system
func (h *Handler) GetSalaryIncreaseSystem(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	sys, err := h.Store.GetSalaryIncreaseSystem(r.Context(), f.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get salary increase system", err)
		return
	}
	if sys == nil {
		writeJSON(w, http.StatusOK, toSalaryIncreaseSystemDTO(career.DefaultSalaryIncreaseSystem(f.ID), false))
		return
	}
	writeJSON(w, http.StatusOK, toSalaryIncreaseSystemDTO(*sys, true))
}

// PutSalaryIncreaseSystem creates or replaces the facility's policy.
// PUT /api/facilities/{id}/salary-increase-system
func (h *Handler) PutSalaryIncreaseSystem(w http.ResponseWriter, r *http.Request) {
	f, ok := h.facilityFromURL(w, r)
	if !ok {
		return
	}
	var req career.SalaryIncreaseSystem
	if !decodeJSON(w, r, &req) {
		return
	}
	req.FacilityID = f.ID

	sys, err := career.NewSalaryIncreaseSystem(req)
	if err != nil {
		writeDomainError(w, "Invalid salary increase system", err)
		return
	}
	if err := h.Store.SaveSalaryIncreaseSystem(r.Context(), sys); err != nil {
		writeDomainError(w, "Failed to save salary increase system", err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryIncreaseSystemDTO(sys, true))
}

// =============================================================================
// EVALUATION & PROMOTION HISTORY
// =============================================================================

// ListEvaluations returns a staff member's evaluations.
// GET /api/staff/{id}/evaluations
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	s, ok := h.staffFromURL(w, r)
	if !ok {
		return
	}
	evals, err := h.Store.ListEvaluations(r.Context(), s.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list evaluations", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(evals))
}

// CreateEvaluation records an evaluation. It becomes the member's latest
// score unless a newer evaluation already exists.
// POST /api/staff/{id}/evaluations
func (h *Handler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	s, ok := h.staffFromURL(w, r)
	if !ok {
		return
	}
	var req career.StaffEvaluation
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = ""
	req.StaffID = s.ID

	e, err := career.NewStaffEvaluation(req)
	if err != nil {
		writeDomainError(w, "Invalid evaluation", err)
		return
	}
	s.ApplyEvaluation(e)
	if err := h.Store.RecordEvaluation(r.Context(), e, *s); err != nil {
		writeDomainError(w, "Failed to save evaluation", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// ListPromotions returns a staff member's promotion history.
// GET /api/staff/{id}/promotions
func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.staffFromURL(w, r)
	if !ok {
		return
	}
	records, err := h.Store.ListPromotions(r.Context(), s.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list promotions", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

// RecordPromotion moves a staff member to a position of the same facility
// and stores the move. From-position and salary-before default to the
// member's current values.
// POST /api/staff/{id}/promotions
func (h *Handler) RecordPromotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, ok := h.staffFromURL(w, r)
	if !ok {
		return
	}
	var req career.PromotionRecord
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = ""
	req.StaffID = s.ID
	if req.FromPositionID == nil {
		req.FromPositionID = s.CurrentPositionID
	}
	if req.SalaryBefore == 0 {
		req.SalaryBefore = s.CurrentBaseSalary
	}

	target, err := h.Store.GetPosition(ctx, req.ToPositionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get position", err)
		return
	}
	if target == nil || target.FacilityID != s.FacilityID {
		writeDomainError(w, "Invalid promotion",
			generic.Invalid("to_position_id", "position does not belong to the staff member's facility"))
		return
	}

	rec, err := career.NewPromotionRecord(req)
	if err != nil {
		writeDomainError(w, "Invalid promotion", err)
		return
	}
	s.ApplyPromotion(rec)
	if err := h.Store.RecordPromotion(ctx, rec, *s); err != nil {
		writeDomainError(w, "Failed to save promotion", err)
		return
	}

	h.log.WithFields(logrus.Fields{
		"staff_id":    s.ID,
		"to_position": target.Name,
		"type":        rec.PromotionType,
	}).Info("promotion recorded")
	writeJSON(w, http.StatusCreated, PromotionRecordDTO{
		PromotionRecord: rec,
		TypeName:        rec.PromotionType.Name(),
		Staff:           toStaffDTO(*s, generic.Today()),
	})
}

// =============================================================================
// TRAINING RECORDS
// =============================================================================

// ListTrainingRecords returns the sessions delivered for a training plan.
// GET /api/training-plans/{id}/records
func (h *Handler) ListTrainingRecords(w http.ResponseWriter, r *http.Request) {
	t, ok := h.trainingPlanFromURL(w, r)
	if !ok {
		return
	}
	records, err := h.Store.ListTrainingRecords(r.Context(), t.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list training records", err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

// CreateTrainingRecord stores a delivered session. Every participant must
// work at the plan's facility.
// POST /api/training-plans/{id}/records
func (h *Handler) CreateTrainingRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	t, ok := h.trainingPlanFromURL(w, r)
	if !ok {
		return
	}
	var req career.TrainingRecord
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = ""
	req.TrainingPlanID = t.ID

	rec, err := career.NewTrainingRecord(req)
	if err != nil {
		writeDomainError(w, "Invalid training record", err)
		return
	}
	for _, id := range rec.ParticipantIDs {
		m, err := h.Store.GetStaff(ctx, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get staff member", err)
			return
		}
		if m == nil || m.FacilityID != t.FacilityID {
			writeDomainError(w, "Invalid training record",
				generic.Invalid("participant_ids", "staff "+string(id)+" does not work at the facility"))
			return
		}
	}
	if err := h.Store.SaveTrainingRecord(ctx, rec); err != nil {
		writeDomainError(w, "Failed to save training record", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) trainingPlanFromURL(w http.ResponseWriter, r *http.Request) (*career.TrainingPlan, bool) {
	id := generic.TrainingPlanID(chi.URLParam(r, "id"))
	t, err := h.Store.GetTrainingPlan(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get training plan", err)
		return nil, false
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "Training plan not found", nil)
		return nil, false
	}
	return t, true
}
