/*
service.go - Plan creation and re-evaluation

PURPOSE:
  Turns a PlanDraft (every answer a user gives while filling in a plan) into
  a persisted ImprovementPlan in one call. The draft is a plain value owned
  by the caller; nothing accumulates between requests.

CREATE FLOW:
  1. Apply defaults and validate the draft
  2. Check the provider exists and owns every target facility
  3. Resolve the selected initiatives and count them per category
  4. Determine the tier and estimate the annual amount
  5. Persist, log, record metrics

SEE ALSO:
  - plan.go:         ImprovementPlan and status workflow
  - store/sqlite:    PlanStore implementation
  - store/memory:    In-memory PlanStore for tests
*/
package subsidy

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/carepath/generic"
)

// PlanDraft carries all plan inputs collected from the user.
type PlanDraft struct {
	ProviderID        generic.ProviderID     `json:"provider_id" validate:"required"`
	FiscalYear        int                    `json:"fiscal_year" validate:"gte=2000,lte=2100"`
	FacilityIDs       []generic.FacilityID   `json:"facility_ids"`
	TargetTier        Tier                   `json:"target_tier" validate:"oneof=I II III IV"`
	Flags             CareerPathFlags        `json:"career_path"`
	InitiativeIDs     []generic.InitiativeID `json:"workplace_initiative_ids"`
	TotalServiceUnits int64                  `json:"total_service_units" validate:"gte=0"`
	Allocation        Allocation             `json:"allocation"`
	Notes             string                 `json:"notes"`
}

// withDefaults fills unset fields and removes duplicate IDs.
func (d PlanDraft) withDefaults() PlanDraft {
	if d.FiscalYear == 0 {
		d.FiscalYear = DefaultFiscalYear
	}
	if d.TargetTier == TierNone {
		d.TargetTier = TierI
	}
	d.FacilityIDs = dedupe(d.FacilityIDs)
	d.InitiativeIDs = dedupe(d.InitiativeIDs)
	d.Allocation = d.Allocation.normalized()
	return d
}

func dedupe[T comparable](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[T]bool, len(in))
	out := make([]T, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// PlanStore is the persistence PlanService needs.
type PlanStore interface {
	ProviderExists(ctx context.Context, id generic.ProviderID) (bool, error)
	FacilityIDsOf(ctx context.Context, id generic.ProviderID) ([]generic.FacilityID, error)
	// InitiativesByID returns an error wrapping generic.ErrNotFound if any ID is unknown.
	InitiativesByID(ctx context.Context, ids []generic.InitiativeID) ([]WorkplaceInitiative, error)
	SavePlan(ctx context.Context, p ImprovementPlan) error
	GetPlan(ctx context.Context, id generic.PlanID) (*ImprovementPlan, error)
}

// Recorder observes evaluation outcomes (metrics).
type Recorder interface {
	RecordEvaluation(tier Tier, amount generic.Yen)
}

type nopRecorder struct{}

func (nopRecorder) RecordEvaluation(Tier, generic.Yen) {}

// PlanService creates and maintains improvement plans.
type PlanService struct {
	store    PlanStore
	log      logrus.FieldLogger
	recorder Recorder
	now      func() time.Time
}

// NewPlanService wires a service to its store and logger.
func NewPlanService(store PlanStore, log logrus.FieldLogger) *PlanService {
	return &PlanService{
		store:    store,
		log:      log,
		recorder: nopRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithRecorder sets the metrics recorder.
func (s *PlanService) WithRecorder(r Recorder) *PlanService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithClock overrides the time source.
func (s *PlanService) WithClock(now func() time.Time) *PlanService {
	s.now = now
	return s
}

// CreatePlan validates the draft, evaluates it and persists the plan.
func (s *PlanService) CreatePlan(ctx context.Context, draft PlanDraft) (*ImprovementPlan, error) {
	d, err := s.checkDraft(ctx, draft)
	if err != nil {
		return nil, err
	}

	initiatives, err := s.store.InitiativesByID(ctx, d.InitiativeIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	plan := ImprovementPlan{
		ID:        generic.PlanID(generic.NewID()),
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyDraft(&plan, d)
	est := plan.Evaluate(CountInitiatives(initiatives))

	if err := s.store.SavePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}

	s.recorder.RecordEvaluation(plan.DeterminedTier, est.Amount)
	s.log.WithFields(logrus.Fields{
		"plan_id":         plan.ID,
		"provider_id":     plan.ProviderID,
		"fiscal_year":     plan.FiscalYear,
		"target_tier":     plan.TargetTier,
		"determined_tier": plan.DeterminedTier,
		"rate":            est.Rate.String(),
		"amount":          est.Amount,
	}).Info("improvement plan created")

	return &plan, nil
}

// UpdatePlan replaces the inputs of an editable plan and re-evaluates it.
func (s *PlanService) UpdatePlan(ctx context.Context, id generic.PlanID, draft PlanDraft) (*ImprovementPlan, error) {
	plan, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.Status.Editable() {
		return nil, generic.Invalid("status", fmt.Sprintf("plan is %s and can no longer be edited", plan.Status))
	}

	d, err := s.checkDraft(ctx, draft)
	if err != nil {
		return nil, err
	}
	applyDraft(plan, d)
	return s.reevaluate(ctx, plan)
}

// Reevaluate recounts initiatives and recomputes tier and amount.
func (s *PlanService) Reevaluate(ctx context.Context, id generic.PlanID) (*ImprovementPlan, error) {
	plan, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reevaluate(ctx, plan)
}

// Transition moves a plan along the status workflow.
func (s *PlanService) Transition(ctx context.Context, id generic.PlanID, to Status) (*ImprovementPlan, error) {
	plan, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := plan.Status
	if err := plan.TransitionTo(to, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.SavePlan(ctx, *plan); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"plan_id": plan.ID,
		"from":    from,
		"to":      to,
	}).Info("improvement plan status changed")
	return plan, nil
}

func (s *PlanService) reevaluate(ctx context.Context, plan *ImprovementPlan) (*ImprovementPlan, error) {
	initiatives, err := s.store.InitiativesByID(ctx, plan.InitiativeIDs)
	if err != nil {
		return nil, err
	}
	est := plan.Evaluate(CountInitiatives(initiatives))
	plan.UpdatedAt = s.now()

	if err := s.store.SavePlan(ctx, *plan); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}
	s.recorder.RecordEvaluation(plan.DeterminedTier, est.Amount)
	s.log.WithFields(logrus.Fields{
		"plan_id":         plan.ID,
		"determined_tier": plan.DeterminedTier,
		"amount":          est.Amount,
	}).Debug("improvement plan re-evaluated")
	return plan, nil
}

func (s *PlanService) load(ctx context.Context, id generic.PlanID) (*ImprovementPlan, error) {
	plan, err := s.store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, generic.NotFound("plan", string(id))
	}
	return plan, nil
}

func (s *PlanService) checkDraft(ctx context.Context, draft PlanDraft) (PlanDraft, error) {
	d := draft.withDefaults()
	if err := generic.ValidateStruct(d); err != nil {
		return d, err
	}

	ok, err := s.store.ProviderExists(ctx, d.ProviderID)
	if err != nil {
		return d, err
	}
	if !ok {
		return d, generic.NotFound("provider", string(d.ProviderID))
	}

	if len(d.FacilityIDs) > 0 {
		owned, err := s.store.FacilityIDsOf(ctx, d.ProviderID)
		if err != nil {
			return d, err
		}
		ownedSet := make(map[generic.FacilityID]bool, len(owned))
		for _, id := range owned {
			ownedSet[id] = true
		}
		for _, id := range d.FacilityIDs {
			if !ownedSet[id] {
				return d, generic.Invalid("facility_ids",
					fmt.Sprintf("facility %q does not belong to provider %q", id, d.ProviderID))
			}
		}
	}
	return d, nil
}

func applyDraft(p *ImprovementPlan, d PlanDraft) {
	p.ProviderID = d.ProviderID
	p.FiscalYear = d.FiscalYear
	p.FacilityIDs = d.FacilityIDs
	p.TargetTier = d.TargetTier
	p.Flags = d.Flags
	p.InitiativeIDs = d.InitiativeIDs
	p.TotalServiceUnits = d.TotalServiceUnits
	p.Allocation = d.Allocation
	p.Notes = d.Notes
}
