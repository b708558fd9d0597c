/*
Package generic provides the shared building blocks of the carepath service.

PURPOSE:
  Domain-agnostic types used by every domain package (facility, career, wage,
  subsidy): identifiers, yen amounts, dates, validation and the error
  vocabulary. Domain packages own their rules; this package owns nothing but
  the plumbing they share.

KEY CONCEPTS IN THIS FILE (types.go):
  - ID:  Opaque record identifier (UUID strings in practice)
  - Yen: Whole-yen monetary amount with display formatting

DESIGN PRINCIPLES:
  1. Integer money: salaries, allowances and subsidy amounts are whole yen
  2. Type safety: distinct ID types keep provider/facility/plan IDs apart
  3. Explicit construction: values are built by validated constructors

SEE ALSO:
  - errors.go:   Sentinel and structured errors
  - validate.go: Struct validation
  - time.go:     Date helpers
*/
package generic

import (
	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProviderID string
type FacilityID string
type PositionID string
type StaffID string
type PlanID string
type InitiativeID string
type TrainingPlanID string
type TrainingRecordID string
type EvaluationID string
type PromotionRecordID string

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.NewString()
}

// =============================================================================
// YEN - Whole-yen amount
// =============================================================================

// CurrencyCode is the only currency this system handles.
const CurrencyCode = money.JPY

type Yen int64

// Display renders the amount for people, e.g. "¥1,650,000".
func (y Yen) Display() string {
	return money.New(int64(y), CurrencyCode).Display()
}

func (y Yen) Int64() int64 { return int64(y) }
