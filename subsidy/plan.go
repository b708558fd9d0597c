package subsidy

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/carepath/generic"
)

// DefaultFiscalYear applies when a draft leaves the fiscal year unset.
const DefaultFiscalYear = 2025

// =============================================================================
// STATUS WORKFLOW
// =============================================================================

type Status string

const (
	StatusDraft     Status = "draft"     // 作成中
	StatusSubmitted Status = "submitted" // 提出済み
	StatusApproved  Status = "approved"  // 承認済み
	StatusRejected  Status = "rejected"  // 差し戻し
)

// transitions lists the statuses reachable from each status.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusRejected:  {StatusDraft},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Editable reports whether plan inputs may still change.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// =============================================================================
// ALLOCATION - How the subsidy is paid out as wage increases
// =============================================================================

type Allocation struct {
	TotalSalaryIncrease generic.Yen `json:"total_salary_increase" validate:"gte=0"`
	BaseSalaryIncrease  generic.Yen `json:"base_salary_increase" validate:"gte=0"`
	AllowanceIncrease   generic.Yen `json:"allowance_increase" validate:"gte=0"`
	BonusIncrease       generic.Yen `json:"bonus_increase" validate:"gte=0"`
}

// ComponentSum is base + allowance + bonus.
func (a Allocation) ComponentSum() generic.Yen {
	return a.BaseSalaryIncrease + a.AllowanceIncrease + a.BonusIncrease
}

// normalized fills an unset total from the components.
func (a Allocation) normalized() Allocation {
	if a.TotalSalaryIncrease == 0 {
		a.TotalSalaryIncrease = a.ComponentSum()
	}
	return a
}

// =============================================================================
// IMPROVEMENT PLAN
// =============================================================================

// ImprovementPlan is a provider's treatment-improvement plan for one fiscal year.
type ImprovementPlan struct {
	ID                generic.PlanID
	ProviderID        generic.ProviderID
	FiscalYear        int
	FacilityIDs       []generic.FacilityID
	TargetTier        Tier
	DeterminedTier    Tier
	Flags             CareerPathFlags
	InitiativeIDs     []generic.InitiativeID
	Counts            InitiativeCounts
	TotalServiceUnits int64
	AdditionRate      decimal.Decimal
	EstimatedAmount   generic.Yen
	Allocation        Allocation
	Status            Status
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	SubmittedAt       *time.Time
}

// RateTier is the tier the estimate is priced at: the determined tier, or
// the requested target when no tier was determined.
func (p *ImprovementPlan) RateTier() Tier {
	if p.DeterminedTier != TierNone {
		return p.DeterminedTier
	}
	return p.TargetTier
}

// Evaluate recomputes the determined tier, rate and estimated amount
// from the plan's flags, counts and service units.
func (p *ImprovementPlan) Evaluate(counts InitiativeCounts) Estimate {
	p.Counts = counts
	p.DeterminedTier = DetermineEligibleTier(p.Flags, counts)

	est := EstimateAnnualAmount(p.RateTier(), p.TotalServiceUnits)
	p.AdditionRate = est.Rate
	p.EstimatedAmount = est.Amount
	return est
}

// Assessment explains the plan's determined tier.
func (p *ImprovementPlan) Assessment() Assessment {
	return Assess(p.Flags, p.Counts)
}

// MeetsTarget reports whether the determined tier is at least the requested one.
func (p *ImprovementPlan) MeetsTarget() bool {
	return p.DeterminedTier != TierNone && p.DeterminedTier.AtLeast(p.TargetTier)
}

// TransitionTo moves the plan through the status workflow.
func (p *ImprovementPlan) TransitionTo(to Status, at time.Time) error {
	if !CanTransition(p.Status, to) {
		return &generic.TransitionError{From: string(p.Status), To: string(to)}
	}
	p.Status = to
	p.UpdatedAt = at
	switch to {
	case StatusSubmitted:
		t := at
		p.SubmittedAt = &t
	case StatusDraft:
		p.SubmittedAt = nil
	}
	return nil
}
