/*
requirements.go - Career-path requirements I and III

PURPOSE:
  Requirement I (任用要件と賃金体系) is met by writing down, per position,
  who may hold it, what it does and how it is paid. Requirement III
  (昇給の仕組み) is met by a facility-wide salary increase system.

KEY CONCEPTS:
  RequirementOne:        Appointment conditions and pay band of one position
  SalaryIncreaseSystem:  When and by how much salaries rise (one per facility)

SEE ALSO:
  - training.go:  Requirement II (training plans) and the overview
  - wage/:        Wage tables that seed the default pay band
*/
package career

import (
	"fmt"

	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/wage"
)

// =============================================================================
// REQUIREMENT I
// =============================================================================

// Pay band used when the position has no wage table yet.
const (
	DefaultBaseSalaryMin generic.Yen = 200000
	DefaultBaseSalaryMax generic.Yen = 300000
)

const DefaultRaiseRules = "定期昇給：年1回（4月）、号級昇給"

// RequirementOne documents one position for career-path requirement I.
type RequirementOne struct {
	PositionID              generic.PositionID `json:"position_id" validate:"required"`
	FacilityID              generic.FacilityID `json:"facility_id" validate:"required"`
	RequiredQualifications  string             `json:"required_qualifications"`
	RequiredExperienceYears int                `json:"required_experience_years" validate:"gte=0"`
	RecommendedSkills       string             `json:"recommended_skills"`
	OtherRequirements       string             `json:"other_requirements"`
	JobDescription          string             `json:"job_description"`
	Responsibilities        string             `json:"responsibilities"`
	Authority               string             `json:"authority"`
	BaseSalaryMin           generic.Yen        `json:"base_salary_min" validate:"gte=0"`
	BaseSalaryMax           generic.Yen        `json:"base_salary_max" validate:"gte=0"`
	Allowances              string             `json:"allowances"`
	RaiseRules              string             `json:"raise_rules"`
}

// DefaultRequirementOne is the unsaved starting point for a position. The
// pay band follows the wage table when one exists.
func DefaultRequirementOne(p Position, table *wage.Definition) RequirementOne {
	r := RequirementOne{
		PositionID:             p.ID,
		FacilityID:             p.FacilityID,
		RequiredQualifications: p.RequiredQualifications,
		JobDescription:         p.JobDescription,
		BaseSalaryMin:          DefaultBaseSalaryMin,
		BaseSalaryMax:          DefaultBaseSalaryMax,
		RaiseRules:             DefaultRaiseRules,
	}
	if table != nil {
		r.BaseSalaryMin = table.StartSalary()
		r.BaseSalaryMax = table.MaxSalary()
	}
	return r
}

// NewRequirementOne validates r. The pay band must not be inverted.
func NewRequirementOne(r RequirementOne) (RequirementOne, error) {
	if err := generic.ValidateStruct(r); err != nil {
		return RequirementOne{}, err
	}
	if r.BaseSalaryMax < r.BaseSalaryMin {
		return RequirementOne{}, generic.Invalid("base_salary_max",
			fmt.Sprintf("must be at least base_salary_min (%d)", r.BaseSalaryMin))
	}
	return r, nil
}

// =============================================================================
// REQUIREMENT III
// =============================================================================

// IncreaseTiming is when the regular raise takes effect.
type IncreaseTiming string

const (
	TimingApril   IncreaseTiming = "APRIL"
	TimingOctober IncreaseTiming = "OCTOBER"
	TimingBoth    IncreaseTiming = "BOTH"
	TimingOther   IncreaseTiming = "OTHER"
)

var timingNames = map[IncreaseTiming]string{
	TimingApril:   "4月",
	TimingOctober: "10月",
	TimingBoth:    "4月・10月（年2回）",
	TimingOther:   "その他",
}

func (t IncreaseTiming) Name() string {
	if n, ok := timingNames[t]; ok {
		return n
	}
	return string(t)
}

func (t IncreaseTiming) Valid() bool {
	_, ok := timingNames[t]
	return ok
}

// SalaryIncreaseSystem is a facility's raise policy for requirement III.
type SalaryIncreaseSystem struct {
	FacilityID                generic.FacilityID `json:"facility_id" validate:"required"`
	HasRegularIncrease        bool               `json:"has_regular_increase"`
	IncreaseTiming            IncreaseTiming     `json:"increase_timing"`
	IncreaseAmountPerStep     generic.Yen        `json:"increase_amount_per_step" validate:"gte=0"`
	MaxStepsPerYear           int                `json:"max_steps_per_year" validate:"gte=1,lte=10"`
	HasSpecialIncrease        bool               `json:"has_special_increase"`
	SpecialIncreaseConditions string             `json:"special_increase_conditions"`
	EvaluationAffectsRaise    bool               `json:"evaluation_affects_raise"`
	EvaluationCriteria        string             `json:"evaluation_criteria"`
	Notes                     string             `json:"notes"`
}

// DefaultSalaryIncreaseSystem is the unsaved policy shown before a facility
// defines its own: yearly in April, ¥1,000 per step, up to 4 steps.
func DefaultSalaryIncreaseSystem(facilityID generic.FacilityID) SalaryIncreaseSystem {
	return SalaryIncreaseSystem{
		FacilityID:             facilityID,
		HasRegularIncrease:     true,
		IncreaseTiming:         TimingApril,
		IncreaseAmountPerStep:  1000,
		MaxStepsPerYear:        4,
		EvaluationAffectsRaise: true,
	}
}

// NewSalaryIncreaseSystem validates s. Timing defaults to April.
func NewSalaryIncreaseSystem(s SalaryIncreaseSystem) (SalaryIncreaseSystem, error) {
	if s.IncreaseTiming == "" {
		s.IncreaseTiming = TimingApril
	}
	if err := generic.ValidateStruct(s); err != nil {
		return SalaryIncreaseSystem{}, err
	}
	if !s.IncreaseTiming.Valid() {
		return SalaryIncreaseSystem{}, generic.Invalid("increase_timing", "unknown timing "+string(s.IncreaseTiming))
	}
	return s, nil
}

// MaxAnnualRaise is the largest regular raise one person can get in a year.
func (s SalaryIncreaseSystem) MaxAnnualRaise() generic.Yen {
	if !s.HasRegularIncrease {
		return 0
	}
	return s.IncreaseAmountPerStep * generic.Yen(s.MaxStepsPerYear)
}
