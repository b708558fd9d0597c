package career

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/carepath/generic"
)

// TrainingType is how a training is delivered.
type TrainingType string

const (
	TrainingOJT      TrainingType = "OJT"      // 職場内研修
	TrainingOffJT    TrainingType = "OFF_JT"   // 職場外研修
	TrainingExternal TrainingType = "EXTERNAL" // 外部研修
	TrainingOnline   TrainingType = "ONLINE"   // オンライン研修
)

// TrainingPlan is a scheduled training for a fiscal year.
type TrainingPlan struct {
	ID            generic.TrainingPlanID `json:"id"`
	FacilityID    generic.FacilityID     `json:"facility_id" validate:"required"`
	FiscalYear    int                    `json:"fiscal_year" validate:"gte=2000,lte=2100"`
	Name          string                 `json:"name" validate:"required,max=200"`
	TrainingType  TrainingType           `json:"training_type" validate:"oneof=OJT OFF_JT EXTERNAL ONLINE"`
	Description   string                 `json:"description"`
	Objectives    string                 `json:"objectives"`
	ScheduledDate generic.Date           `json:"scheduled_date"`
	DurationHours decimal.Decimal        `json:"duration_hours"`
	Instructor    string                 `json:"instructor"`
	Mandatory     bool                   `json:"mandatory"`
}

// NewTrainingPlan validates t. A missing fiscal year is taken from the
// scheduled date when one is set.
func NewTrainingPlan(t TrainingPlan) (TrainingPlan, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.FiscalYear == 0 && !t.ScheduledDate.IsZero() {
		t.FiscalYear = generic.FiscalYear(t.ScheduledDate)
	}
	if err := generic.ValidateStruct(t); err != nil {
		return TrainingPlan{}, err
	}
	if t.DurationHours.IsNegative() {
		return TrainingPlan{}, generic.Invalid("duration_hours", "must be non-negative")
	}
	if t.ID == "" {
		t.ID = generic.TrainingPlanID(generic.NewID())
	}
	return t, nil
}

// =============================================================================
// REQUIREMENTS OVERVIEW
// =============================================================================

// RequirementsOverview summarises a facility's career-path evidence for
// requirements I to III.
type RequirementsOverview struct {
	FacilityID              generic.FacilityID `json:"facility_id"`
	Positions               int                `json:"positions"`
	PositionsWithWageTables int                `json:"positions_with_wage_tables"`
	RequirementOneCount     int                `json:"requirement_one_count"`
	TrainingPlans           int                `json:"training_plans"`
	HasSalarySystem         bool               `json:"has_salary_system"`
}

// PositionsDefined is the basis for requirement I (職位・職責・職務内容).
func (o RequirementsOverview) PositionsDefined() bool { return o.Positions > 0 }

// WageTablesComplete reports whether every position has a wage table.
func (o RequirementsOverview) WageTablesComplete() bool {
	return o.Positions > 0 && o.PositionsWithWageTables == o.Positions
}

// RequirementOneComplete reports whether every position has its
// appointment conditions and pay band written down.
func (o RequirementsOverview) RequirementOneComplete() bool {
	return o.Positions > 0 && o.RequirementOneCount >= o.Positions
}

// TrainingPlanned is the basis for requirement II (資質向上計画).
func (o RequirementsOverview) TrainingPlanned() bool { return o.TrainingPlans > 0 }

// SalarySystemDefined is the basis for requirement III (昇給の仕組み).
func (o RequirementsOverview) SalarySystemDefined() bool { return o.HasSalarySystem }
