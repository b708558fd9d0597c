package career

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// STAFF EVALUATION
// =============================================================================

// StaffEvaluation is one periodic appraisal of a staff member.
type StaffEvaluation struct {
	ID               generic.EvaluationID `json:"id"`
	StaffID          generic.StaffID      `json:"staff_id" validate:"required"`
	EvaluationPeriod string               `json:"evaluation_period" validate:"required,max=20"` // e.g. 2025年上期
	EvaluationDate   generic.Date         `json:"evaluation_date" validate:"required"`
	OverallScore     decimal.Decimal      `json:"overall_score"`
	OverallComment   string               `json:"overall_comment"`
	EvaluatorName    string               `json:"evaluator_name" validate:"required,max=100"`
}

// NewStaffEvaluation validates e. The score uses the same 0..5 scale as
// StaffMember.LatestEvaluationScore, rounded to one decimal.
func NewStaffEvaluation(e StaffEvaluation) (StaffEvaluation, error) {
	e.EvaluationPeriod = strings.TrimSpace(e.EvaluationPeriod)
	e.EvaluatorName = strings.TrimSpace(e.EvaluatorName)
	if err := generic.ValidateStruct(e); err != nil {
		return StaffEvaluation{}, err
	}
	if e.OverallScore.IsNegative() || e.OverallScore.GreaterThan(maxEvaluationScore) {
		return StaffEvaluation{}, generic.Invalid("overall_score", "must be between 0 and 5")
	}
	e.OverallScore = e.OverallScore.Round(1)
	if e.ID == "" {
		e.ID = generic.EvaluationID(generic.NewID())
	}
	return e, nil
}

// ApplyEvaluation makes e the member's latest evaluation unless a newer one
// is already recorded. Reports whether s changed.
func (s *StaffMember) ApplyEvaluation(e StaffEvaluation) bool {
	if !s.LatestEvaluationDate.IsZero() && e.EvaluationDate.Before(s.LatestEvaluationDate) {
		return false
	}
	s.LatestEvaluationScore = e.OverallScore
	s.LatestEvaluationDate = e.EvaluationDate
	return true
}

// =============================================================================
// PROMOTION RECORD
// =============================================================================

type PromotionType string

const (
	PromotionRegular PromotionType = "regular" // 定期昇格
	PromotionSpecial PromotionType = "special" // 特別昇格
	PromotionLateral PromotionType = "lateral" // 配置転換
)

var promotionTypeNames = map[PromotionType]string{
	PromotionRegular: "定期昇格",
	PromotionSpecial: "特別昇格",
	PromotionLateral: "配置転換",
}

func (t PromotionType) Name() string {
	if n, ok := promotionTypeNames[t]; ok {
		return n
	}
	return string(t)
}

// PromotionRecord is a completed move of a staff member to a position.
type PromotionRecord struct {
	ID             generic.PromotionRecordID `json:"id"`
	StaffID        generic.StaffID           `json:"staff_id" validate:"required"`
	FromPositionID *generic.PositionID       `json:"from_position_id,omitempty"`
	ToPositionID   generic.PositionID        `json:"to_position_id" validate:"required"`
	PromotionDate  generic.Date              `json:"promotion_date" validate:"required"`
	PromotionType  PromotionType             `json:"promotion_type" validate:"oneof=regular special lateral"`
	SalaryBefore   generic.Yen               `json:"salary_before" validate:"gte=0"`
	SalaryAfter    generic.Yen               `json:"salary_after" validate:"gte=0"`
	Reason         string                    `json:"reason"`
	ApprovedBy     string                    `json:"approved_by" validate:"required,max=100"`
}

// NewPromotionRecord validates r. Type defaults to a regular promotion.
func NewPromotionRecord(r PromotionRecord) (PromotionRecord, error) {
	if r.PromotionType == "" {
		r.PromotionType = PromotionRegular
	}
	r.ApprovedBy = strings.TrimSpace(r.ApprovedBy)
	if err := generic.ValidateStruct(r); err != nil {
		return PromotionRecord{}, err
	}
	if r.FromPositionID != nil && *r.FromPositionID == r.ToPositionID {
		return PromotionRecord{}, generic.Invalid("to_position_id", "must differ from the current position")
	}
	if r.ID == "" {
		r.ID = generic.PromotionRecordID(generic.NewID())
	}
	return r, nil
}

// ApplyPromotion moves s to the record's position and base salary. The
// total salary shifts by the same amount as the base.
func (s *StaffMember) ApplyPromotion(r PromotionRecord) {
	to := r.ToPositionID
	s.CurrentPositionID = &to
	s.CurrentTotalSalary += r.SalaryAfter - s.CurrentBaseSalary
	if s.CurrentTotalSalary < r.SalaryAfter {
		s.CurrentTotalSalary = r.SalaryAfter
	}
	s.CurrentBaseSalary = r.SalaryAfter
}

// =============================================================================
// TRAINING RECORD
// =============================================================================

// TrainingRecord is a delivered session of a training plan.
type TrainingRecord struct {
	ID             generic.TrainingRecordID `json:"id"`
	TrainingPlanID generic.TrainingPlanID   `json:"training_plan_id" validate:"required"`
	ActualDate     generic.Date             `json:"actual_date" validate:"required"`
	ParticipantIDs []generic.StaffID        `json:"participant_ids"`
	Content        string                   `json:"content" validate:"required"`
	Evaluation     string                   `json:"evaluation"`
	Attachments    string                   `json:"attachments"`
}

// NewTrainingRecord validates r and drops duplicate participants.
func NewTrainingRecord(r TrainingRecord) (TrainingRecord, error) {
	r.Content = strings.TrimSpace(r.Content)
	if err := generic.ValidateStruct(r); err != nil {
		return TrainingRecord{}, err
	}
	seen := make(map[generic.StaffID]bool, len(r.ParticipantIDs))
	ids := make([]generic.StaffID, 0, len(r.ParticipantIDs))
	for _, id := range r.ParticipantIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	r.ParticipantIDs = ids
	if r.ID == "" {
		r.ID = generic.TrainingRecordID(generic.NewID())
	}
	return r, nil
}
