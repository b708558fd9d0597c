/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Most master data
  (providers, facilities, positions, staff, training plans) is served as
  the domain type itself, whose JSON tags are the wire contract. Types
  defined here add what the domain value does not carry: yen display
  strings, computed salary schedules and evaluation breakdowns.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Every yen amount is sent twice: as an integer and as a display string
  ("¥1,650,000") so clients never format currency themselves.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/fixture.go: Scenario fixture schema
*/
package api

import (
	"time"

	"github.com/warp/carepath/career"
	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
	"github.com/warp/carepath/wage"
)

// =============================================================================
// MONEY
// =============================================================================

// YenDTO is an amount with its display form.
type YenDTO struct {
	Amount  int64  `json:"amount"`
	Display string `json:"display"`
}

func toYen(y generic.Yen) YenDTO {
	return YenDTO{Amount: y.Int64(), Display: y.Display()}
}

// =============================================================================
// STAFF
// =============================================================================

// StaffDTO adds tenure and formatted salaries to a staff member.
type StaffDTO struct {
	career.StaffMember
	ExperienceMonths int    `json:"experience_months"`
	ExperienceYears  int    `json:"experience_years"`
	BaseSalary       YenDTO `json:"base_salary"`
	TotalSalary      YenDTO `json:"total_salary"`
}

func toStaffDTO(s career.StaffMember, asOf generic.Date) StaffDTO {
	return StaffDTO{
		StaffMember:      s,
		ExperienceMonths: s.ExperienceMonths(asOf),
		ExperienceYears:  s.ExperienceYears(asOf),
		BaseSalary:       toYen(s.CurrentBaseSalary),
		TotalSalary:      toYen(s.CurrentTotalSalary),
	}
}

// PromotionCheckDTO is the result of a promotion eligibility check.
type PromotionCheckDTO struct {
	StaffID          generic.StaffID    `json:"staff_id"`
	TargetPositionID generic.PositionID `json:"target_position_id"`
	AsOf             generic.Date       `json:"as_of"`
	Eligible         bool               `json:"eligible"`
	Issues           []string           `json:"issues"`
	HasCriteria      bool               `json:"has_criteria"`
}

// RequirementsDTO summarizes a facility's career-path evidence.
type RequirementsDTO struct {
	career.RequirementsOverview
	PositionsDefined       bool `json:"positions_defined"`
	WageTablesComplete     bool `json:"wage_tables_complete"`
	RequirementOneComplete bool `json:"requirement_one_complete"`
	TrainingPlanned        bool `json:"training_planned"`
	SalarySystemDefined    bool `json:"salary_system_defined"`
}

// RequirementOneDTO is a position's requirement I record. Saved is false
// when the record is the default that has not been stored yet.
type RequirementOneDTO struct {
	career.RequirementOne
	PositionName string `json:"position_name"`
	JobCategory  string `json:"job_category_name"`
	Level        int    `json:"level"`
	Saved        bool   `json:"saved"`
	SalaryMin    YenDTO `json:"salary_min"`
	SalaryMax    YenDTO `json:"salary_max"`
}

func toRequirementOneDTO(p career.Position, r career.RequirementOne, saved bool) RequirementOneDTO {
	return RequirementOneDTO{
		RequirementOne: r,
		PositionName:   p.Name,
		JobCategory:    p.JobCategory.Name(),
		Level:          p.Level,
		Saved:          saved,
		SalaryMin:      toYen(r.BaseSalaryMin),
		SalaryMax:      toYen(r.BaseSalaryMax),
	}
}

// SalaryIncreaseSystemDTO is a facility's requirement III policy.
type SalaryIncreaseSystemDTO struct {
	career.SalaryIncreaseSystem
	TimingName     string `json:"increase_timing_name"`
	MaxAnnualRaise YenDTO `json:"max_annual_raise"`
	Saved          bool   `json:"saved"`
}

func toSalaryIncreaseSystemDTO(s career.SalaryIncreaseSystem, saved bool) SalaryIncreaseSystemDTO {
	return SalaryIncreaseSystemDTO{
		SalaryIncreaseSystem: s,
		TimingName:           s.IncreaseTiming.Name(),
		MaxAnnualRaise:       toYen(s.MaxAnnualRaise()),
		Saved:                saved,
	}
}

// PromotionRecordDTO is a stored promotion and the staff member after it.
type PromotionRecordDTO struct {
	career.PromotionRecord
	TypeName string   `json:"promotion_type_name"`
	Staff    StaffDTO `json:"staff"`
}

// =============================================================================
// WAGE TABLES
// =============================================================================

// WageTableDTO is a wage table with its computed schedule.
type WageTableDTO struct {
	PositionID generic.PositionID `json:"position_id"`
	wage.Params
	Saved     bool    `json:"saved"`
	MaxSalary YenDTO  `json:"max_salary"`
	Schedule  []int64 `json:"schedule"`
}

func toWageTableDTO(id generic.PositionID, def wage.Definition, saved bool) WageTableDTO {
	schedule := def.Schedule()
	out := make([]int64, len(schedule))
	for i, s := range schedule {
		out[i] = s.Int64()
	}
	return WageTableDTO{
		PositionID: id,
		Params:     def.Params(),
		Saved:      saved,
		MaxSalary:  toYen(def.MaxSalary()),
		Schedule:   out,
	}
}

// WageGridLineDTO is one position row of the grid.
type WageGridLineDTO struct {
	PositionID   generic.PositionID `json:"position_id"`
	PositionName string             `json:"position_name"`
	JobCategory  string             `json:"job_category"`
	Level        int                `json:"level"`
	Saved        bool               `json:"saved"`
	Salaries     []int64            `json:"salaries"`
}

// WageGridDTO lays every position out on a common step axis.
type WageGridDTO struct {
	FacilityID generic.FacilityID `json:"facility_id"`
	Region     string             `json:"benchmark_region"`
	Benchmark  YenDTO             `json:"benchmark_care_staff_avg"`
	Steps      int                `json:"steps"`
	Lines      []WageGridLineDTO  `json:"lines"`
}

// SaveSuggestionsResponse reports how many suggested tables were persisted.
type SaveSuggestionsResponse struct {
	Saved int `json:"saved"`
}

// =============================================================================
// PLANS
// =============================================================================

// PlanDTO represents an improvement plan in API responses.
type PlanDTO struct {
	ID                generic.PlanID           `json:"id"`
	ProviderID        generic.ProviderID       `json:"provider_id"`
	FiscalYear        int                      `json:"fiscal_year"`
	FacilityIDs       []generic.FacilityID     `json:"facility_ids"`
	TargetTier        subsidy.Tier             `json:"target_tier"`
	DeterminedTier    subsidy.Tier             `json:"determined_tier"`
	DeterminedLabel   string                   `json:"determined_tier_label"`
	MeetsTarget       bool                     `json:"meets_target"`
	Flags             subsidy.CareerPathFlags  `json:"career_path"`
	InitiativeIDs     []generic.InitiativeID   `json:"workplace_initiative_ids"`
	Counts            subsidy.InitiativeCounts `json:"counts"`
	TotalServiceUnits int64                    `json:"total_service_units"`
	AdditionRate      string                   `json:"addition_rate"`
	EstimatedAmount   YenDTO                   `json:"estimated_amount"`
	Allocation        subsidy.Allocation       `json:"allocation"`
	Status            subsidy.Status           `json:"status"`
	Notes             string                   `json:"notes"`
	Assessment        subsidy.Assessment       `json:"assessment"`
	CreatedAt         string                   `json:"created_at"`
	UpdatedAt         string                   `json:"updated_at"`
	SubmittedAt       *string                  `json:"submitted_at,omitempty"`
}

func toPlanDTO(p *subsidy.ImprovementPlan) PlanDTO {
	dto := PlanDTO{
		ID:                p.ID,
		ProviderID:        p.ProviderID,
		FiscalYear:        p.FiscalYear,
		FacilityIDs:       p.FacilityIDs,
		TargetTier:        p.TargetTier,
		DeterminedTier:    p.DeterminedTier,
		DeterminedLabel:   p.DeterminedTier.Label(),
		MeetsTarget:       p.MeetsTarget(),
		Flags:             p.Flags,
		InitiativeIDs:     p.InitiativeIDs,
		Counts:            p.Counts,
		TotalServiceUnits: p.TotalServiceUnits,
		AdditionRate:      p.AdditionRate.String(),
		EstimatedAmount:   toYen(p.EstimatedAmount),
		Allocation:        p.Allocation,
		Status:            p.Status,
		Notes:             p.Notes,
		Assessment:        p.Assessment(),
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
	}
	if p.SubmittedAt != nil {
		s := p.SubmittedAt.Format(time.RFC3339)
		dto.SubmittedAt = &s
	}
	if dto.FacilityIDs == nil {
		dto.FacilityIDs = []generic.FacilityID{}
	}
	if dto.InitiativeIDs == nil {
		dto.InitiativeIDs = []generic.InitiativeID{}
	}
	return dto
}

// TransitionRequest moves a plan to a new status.
type TransitionRequest struct {
	Status subsidy.Status `json:"status"`
}

// EvaluateRequest asks for a tier and estimate without saving anything.
// Give either Counts or InitiativeIDs; counts are derived from the IDs
// when those are sent, and a request carrying both is rejected.
type EvaluateRequest struct {
	Flags             subsidy.CareerPathFlags  `json:"career_path"`
	Counts            subsidy.InitiativeCounts `json:"counts"`
	InitiativeIDs     []generic.InitiativeID   `json:"workplace_initiative_ids"`
	TotalServiceUnits int64                    `json:"total_service_units" validate:"gte=0"`
}

// EvaluateResponse is the stateless evaluation result.
type EvaluateResponse struct {
	subsidy.Assessment
	TierLabel string                   `json:"tier_label"`
	Counts    subsidy.InitiativeCounts `json:"counts"`
	Rate      string                   `json:"rate"`
	Amount    YenDTO                   `json:"estimated_amount"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ScenarioLoadedResponse reports what a scenario load created.
type ScenarioLoadedResponse struct {
	ScenarioID  string             `json:"scenario_id"`
	ProviderID  generic.ProviderID `json:"provider_id,omitempty"`
	Facilities  int                `json:"facilities"`
	Positions   int                `json:"positions"`
	Staff       int                `json:"staff"`
	Initiatives int                `json:"initiatives_added"`
	PlanID      generic.PlanID     `json:"plan_id,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
