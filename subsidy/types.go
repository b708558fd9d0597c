/*
Package subsidy implements treatment-improvement (処遇改善加算) plan rules.

PURPOSE:
  A care provider files an improvement plan per fiscal year. The plan's
  subsidy tier depends on which career-path requirements (I-V) it meets and
  how many workplace-environment initiatives it runs in each of three
  categories. The tier fixes a percentage rate, and the rate times the
  year's total service units gives the estimated subsidy.

TIERS (best to worst):
  I    requirements I+II+III, every initiative category covered
  II   requirements I+II,     every initiative category covered
  III  requirements I+II
  IV   requirement I or II
  none anything else

KEY TYPES:
  Tier:               Subsidy level
  CareerPathFlags:    Requirements I-V met or not
  InitiativeCounts:   Selected initiatives per category
  WorkplaceInitiative: Catalog entry (see initiatives.go)
  ImprovementPlan:    Persisted plan (see plan.go)

SEE ALSO:
  - eligibility.go: Tier determination and assessment
  - estimate.go:    Rate table and amount estimate
  - service.go:     Plan creation and re-evaluation
*/
package subsidy

import (
	"fmt"
	"strings"

	"github.com/warp/carepath/generic"
)

// =============================================================================
// TIER
// =============================================================================

type Tier string

const (
	TierNone Tier = ""
	TierI    Tier = "I"
	TierII   Tier = "II"
	TierIII  Tier = "III"
	TierIV   Tier = "IV"
)

// Tiers lists every real tier, best first.
var Tiers = []Tier{TierI, TierII, TierIII, TierIV}

// Rank orders tiers: 1 is best, TierNone and unknown values rank last.
func (t Tier) Rank() int {
	for i, tt := range Tiers {
		if t == tt {
			return i + 1
		}
	}
	return len(Tiers) + 1
}

// Valid reports whether t is one of the four tiers.
func (t Tier) Valid() bool { return t.Rank() <= len(Tiers) }

// AtLeast reports whether t is as good as or better than o.
func (t Tier) AtLeast(o Tier) bool { return t.Rank() <= o.Rank() }

// Label is the official name, e.g. "処遇改善加算I".
func (t Tier) Label() string {
	if !t.Valid() {
		return "該当なし"
	}
	return "処遇改善加算" + string(t)
}

// ParseTier accepts "I".."IV" (case-insensitive) and "" / "none".
func ParseTier(s string) (Tier, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "NONE" {
		return TierNone, nil
	}
	t := Tier(s)
	if !t.Valid() {
		return TierNone, generic.Invalid("tier", fmt.Sprintf("unknown tier %q", s))
	}
	return t, nil
}

// =============================================================================
// CAREER PATH REQUIREMENTS
// =============================================================================

// Requirement numbers the statutory career-path categories 1..5.
type Requirement int

const (
	RequirementI Requirement = iota + 1
	RequirementII
	RequirementIII
	RequirementIV
	RequirementV
)

var requirementNames = map[Requirement]string{
	RequirementI:   "キャリアパス要件I（職位・職責・職務内容等の要件）",
	RequirementII:  "キャリアパス要件II（資質向上のための計画）",
	RequirementIII: "キャリアパス要件III（経験・資格等に応じた昇給の仕組み）",
	RequirementIV:  "キャリアパス要件IV（昇給以外の処遇改善の見える化）",
	RequirementV:   "キャリアパス要件V（介護福祉士の配置等）",
}

func (r Requirement) Name() string { return requirementNames[r] }

func (r Requirement) String() string {
	if r < RequirementI || r > RequirementV {
		return fmt.Sprintf("Requirement(%d)", int(r))
	}
	return [...]string{"", "I", "II", "III", "IV", "V"}[r]
}

// CareerPathFlags records which requirements a facility meets.
type CareerPathFlags struct {
	I   bool `json:"career_path_1"`
	II  bool `json:"career_path_2"`
	III bool `json:"career_path_3"`
	IV  bool `json:"career_path_4"`
	V   bool `json:"career_path_5"`
}

// NewCareerPathFlags builds flags from the requirements that are met.
func NewCareerPathFlags(met ...Requirement) (CareerPathFlags, error) {
	var f CareerPathFlags
	for _, r := range met {
		switch r {
		case RequirementI:
			f.I = true
		case RequirementII:
			f.II = true
		case RequirementIII:
			f.III = true
		case RequirementIV:
			f.IV = true
		case RequirementV:
			f.V = true
		default:
			return CareerPathFlags{}, generic.Invalid("career_path", fmt.Sprintf("unknown requirement %d", r))
		}
	}
	return f, nil
}

// ParseFlags reads a comma-separated list such as "I,II,III".
func ParseFlags(s string) (CareerPathFlags, error) {
	var met []Requirement
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		found := false
		for r := RequirementI; r <= RequirementV; r++ {
			if r.String() == part {
				met = append(met, r)
				found = true
				break
			}
		}
		if !found {
			return CareerPathFlags{}, generic.Invalid("career_path", fmt.Sprintf("unknown requirement %q", part))
		}
	}
	return NewCareerPathFlags(met...)
}

// Met reports whether requirement r is satisfied.
func (f CareerPathFlags) Met(r Requirement) bool {
	switch r {
	case RequirementI:
		return f.I
	case RequirementII:
		return f.II
	case RequirementIII:
		return f.III
	case RequirementIV:
		return f.IV
	case RequirementV:
		return f.V
	}
	return false
}

// =============================================================================
// WORKPLACE INITIATIVES
// =============================================================================

// Category groups workplace-environment initiatives.
type Category string

const (
	CategoryQualification Category = "qualification" // 資質の向上
	CategoryWorkStyle     Category = "work_style"    // 労働環境・処遇の改善
	CategoryBalance       Category = "balance"       // やりがい・働きがいの醸成
)

// Categories in display order.
var Categories = []Category{CategoryQualification, CategoryWorkStyle, CategoryBalance}

var categoryNames = map[Category]string{
	CategoryQualification: "資質の向上",
	CategoryWorkStyle:     "労働環境・処遇の改善",
	CategoryBalance:       "やりがい・働きがいの醸成",
}

func (c Category) Name() string { return categoryNames[c] }

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// WorkplaceInitiative is one catalog item a plan can commit to.
type WorkplaceInitiative struct {
	ID          generic.InitiativeID `json:"id"`
	Category    Category             `json:"category" validate:"required,oneof=qualification work_style balance"`
	ItemNumber  string               `json:"item_number" validate:"required,max=10"`
	Description string               `json:"description" validate:"required"`
}

// InitiativeCounts is the number of selected initiatives per category.
type InitiativeCounts struct {
	Qualification int `json:"qualification_count" validate:"gte=0"`
	WorkStyle     int `json:"work_style_count" validate:"gte=0"`
	Balance       int `json:"balance_count" validate:"gte=0"`
}

// NewInitiativeCounts rejects negative counts.
func NewInitiativeCounts(qualification, workStyle, balance int) (InitiativeCounts, error) {
	c := InitiativeCounts{Qualification: qualification, WorkStyle: workStyle, Balance: balance}
	if err := generic.ValidateStruct(c); err != nil {
		return InitiativeCounts{}, err
	}
	return c, nil
}

// Of returns the count for a category.
func (c InitiativeCounts) Of(cat Category) int {
	switch cat {
	case CategoryQualification:
		return c.Qualification
	case CategoryWorkStyle:
		return c.WorkStyle
	case CategoryBalance:
		return c.Balance
	}
	return 0
}

// AllCategoriesCovered is true when each category has at least one initiative.
func (c InitiativeCounts) AllCategoriesCovered() bool {
	return c.Qualification >= 1 && c.WorkStyle >= 1 && c.Balance >= 1
}
