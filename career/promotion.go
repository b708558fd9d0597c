package career

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// EXPERIENCE
// =============================================================================

// ExperienceMonths counts whole calendar months from hire date to asOf.
func (s *StaffMember) ExperienceMonths(asOf generic.Date) int {
	return generic.MonthsBetween(s.HireDate, asOf)
}

// ExperienceYears is ExperienceMonths / 12, truncated.
func (s *StaffMember) ExperienceYears(asOf generic.Date) int {
	return s.ExperienceMonths(asOf) / 12
}

// =============================================================================
// PROMOTION CRITERIA
// =============================================================================

// PromotionCriteria are extra conditions for moving between two positions.
type PromotionCriteria struct {
	FromPositionID          generic.PositionID `json:"from_position_id" validate:"required"`
	ToPositionID            generic.PositionID `json:"to_position_id" validate:"required"`
	RequiredExperienceYears int                `json:"required_experience_years" validate:"gte=0"`
	RequiredQualifications  string             `json:"required_qualifications"`
	RequiredEvaluationScore *decimal.Decimal   `json:"required_evaluation_score,omitempty"`
	ReviewProcess           string             `json:"review_process"`
}

var (
	minCriteriaScore = decimal.NewFromInt(1)
	maxCriteriaScore = decimal.NewFromInt(5)
)

// NewPromotionCriteria validates c. A score threshold must lie in 1.0..5.0.
func NewPromotionCriteria(c PromotionCriteria) (PromotionCriteria, error) {
	if err := generic.ValidateStruct(c); err != nil {
		return PromotionCriteria{}, err
	}
	if c.FromPositionID == c.ToPositionID {
		return PromotionCriteria{}, generic.Invalid("to_position_id", "must differ from from_position_id")
	}
	if sc := c.RequiredEvaluationScore; sc != nil && (sc.LessThan(minCriteriaScore) || sc.GreaterThan(maxCriteriaScore)) {
		return PromotionCriteria{}, generic.Invalid("required_evaluation_score", "must be between 1.0 and 5.0")
	}
	return c, nil
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

// CheckPromotionEligibility reports whether staff can move to target as of
// asOf, and lists every unmet condition in Japanese. criteria may be nil.
// A nil target is never eligible and yields no issues.
func CheckPromotionEligibility(staff *StaffMember, target *Position, criteria *PromotionCriteria, asOf generic.Date) (bool, []string) {
	if staff == nil || target == nil {
		return false, nil
	}

	var issues []string

	required := target.RequiredExperienceMonths
	if criteria != nil && criteria.RequiredExperienceYears*12 > required {
		required = criteria.RequiredExperienceYears * 12
	}
	if months := staff.ExperienceMonths(asOf); months < required {
		issues = append(issues, fmt.Sprintf("経験年数不足（必要: %dヶ月, 現在: %dヶ月）", required, months))
	}

	if criteria != nil && criteria.RequiredEvaluationScore != nil &&
		staff.LatestEvaluationScore.LessThan(*criteria.RequiredEvaluationScore) {
		issues = append(issues, fmt.Sprintf("評価点数不足（必要: %s, 現在: %s）",
			criteria.RequiredEvaluationScore.StringFixed(1), staff.LatestEvaluationScore.StringFixed(1)))
	}

	requiredQuals := target.RequiredQualifications
	if criteria != nil {
		requiredQuals += " " + criteria.RequiredQualifications
	}
	if strings.Contains(requiredQuals, CareWorkerQualification) && !staff.HasQualification(CareWorkerQualification) {
		issues = append(issues, CareWorkerQualification+"資格が必要")
	}

	return len(issues) == 0, issues
}
