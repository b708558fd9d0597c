/*
types.go - Positions and staff

PURPOSE:
  A career path (キャリアパス) is the ladder of Positions defined for each
  job category in a facility. Staff members sit on a position and move up
  when they satisfy the promotion checks in promotion.go.

KEY CONCEPTS:
  JobCategory:  Which ladder (介護職, 看護職, ...)
  Position:     One rung; Level 1..10, unique per (facility, category, level)
  StaffMember:  Employee with hire date, salary, qualifications, evaluation

SEE ALSO:
  - promotion.go:  Experience and promotion eligibility
  - training.go:   Training plans (career-path requirement II evidence)
  - wage/:         Salary tables attached to positions
*/
package career

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// JOB CATEGORY
// =============================================================================

type JobCategory string

const (
	CategoryCare      JobCategory = "care"      // 介護職
	CategoryNursing   JobCategory = "nursing"   // 看護職
	CategorySupport   JobCategory = "support"   // 生活相談員
	CategoryTherapy   JobCategory = "therapy"   // 機能訓練指導員
	CategoryNutrition JobCategory = "nutrition" // 栄養士
	CategoryAdmin     JobCategory = "admin"     // 事務職
	CategoryOther     JobCategory = "other"     // その他
)

var categoryNames = map[JobCategory]string{
	CategoryCare:      "介護職",
	CategoryNursing:   "看護職",
	CategorySupport:   "生活相談員",
	CategoryTherapy:   "機能訓練指導員",
	CategoryNutrition: "栄養士",
	CategoryAdmin:     "事務職",
	CategoryOther:     "その他",
}

func (c JobCategory) Name() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return string(c)
}

func (c JobCategory) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// =============================================================================
// POSITION
// =============================================================================

const (
	MinLevel = 1
	MaxLevel = 10
)

type Position struct {
	ID                       generic.PositionID `json:"id"`
	FacilityID               generic.FacilityID `json:"facility_id" validate:"required"`
	JobCategory              JobCategory        `json:"job_category" validate:"required"`
	Name                     string             `json:"name" validate:"required,max=100"`
	Level                    int                `json:"level" validate:"gte=1,lte=10"`
	RequiredExperienceMonths int                `json:"required_experience_months" validate:"gte=0"`
	RequiredQualifications   string             `json:"required_qualifications"`
	JobDescription           string             `json:"job_description"`
}

// NewPosition validates p and assigns an ID when it has none.
func NewPosition(p Position) (Position, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := generic.ValidateStruct(p); err != nil {
		return Position{}, err
	}
	if !p.JobCategory.Valid() {
		return Position{}, generic.Invalid("job_category", "unknown job category "+string(p.JobCategory))
	}
	if p.ID == "" {
		p.ID = generic.PositionID(generic.NewID())
	}
	return p, nil
}

// =============================================================================
// STAFF MEMBER
// =============================================================================

type EmploymentStatus string

const (
	EmploymentFullTime EmploymentStatus = "full_time" // 正職員
	EmploymentPartTime EmploymentStatus = "part_time" // パート
	EmploymentContract EmploymentStatus = "contract"  // 契約職員
	EmploymentTemp     EmploymentStatus = "temp"      // 派遣
)

// CareWorkerQualification is the national certification checked on promotion.
const CareWorkerQualification = "介護福祉士"

type StaffMember struct {
	ID                    generic.StaffID     `json:"id"`
	FacilityID            generic.FacilityID  `json:"facility_id" validate:"required"`
	StaffNumber           string              `json:"staff_number" validate:"required,max=20"`
	Name                  string              `json:"name" validate:"required,max=100"`
	EmploymentStatus      EmploymentStatus    `json:"employment_status" validate:"oneof=full_time part_time contract temp"`
	HireDate              generic.Date        `json:"hire_date" validate:"required"`
	CurrentPositionID     *generic.PositionID `json:"current_position_id,omitempty"`
	CurrentBaseSalary     generic.Yen         `json:"current_base_salary" validate:"gte=0"`
	CurrentTotalSalary    generic.Yen         `json:"current_total_salary" validate:"gte=0"`
	Qualifications        []string            `json:"qualifications"`
	LatestEvaluationScore decimal.Decimal     `json:"latest_evaluation_score"`
	LatestEvaluationDate  generic.Date        `json:"latest_evaluation_date"`
	Active                bool                `json:"active"`
}

var maxEvaluationScore = decimal.NewFromInt(5)

// NewStaffMember validates s and assigns an ID when it has none.
// Employment status defaults to full time.
func NewStaffMember(s StaffMember) (StaffMember, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.EmploymentStatus == "" {
		s.EmploymentStatus = EmploymentFullTime
	}
	if err := generic.ValidateStruct(s); err != nil {
		return StaffMember{}, err
	}
	if s.LatestEvaluationScore.IsNegative() || s.LatestEvaluationScore.GreaterThan(maxEvaluationScore) {
		return StaffMember{}, generic.Invalid("latest_evaluation_score", "must be between 0 and 5")
	}
	if s.ID == "" {
		s.ID = generic.StaffID(generic.NewID())
	}
	return s, nil
}

// HasQualification reports whether any held qualification contains q.
func (s *StaffMember) HasQualification(q string) bool {
	for _, held := range s.Qualifications {
		if strings.Contains(held, q) {
			return true
		}
	}
	return false
}
