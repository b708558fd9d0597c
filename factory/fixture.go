/*
Package factory provides JSON to Go fixture conversion.

PURPOSE:
  Converts a JSON description of one provider (its facilities, career
  ladders, wage tables, staff, training plans and an optional improvement
  plan) into validated domain values ready to persist. Records refer to
  each other by local keys, so the JSON never carries database IDs.

JSON SCHEMA:
  {
    "provider": {"name": "...", "address": "東京都...", "phone": "..."},
    "facilities": [{
      "key": "sato",
      "name": "...",
      "service_type": "special_nursing_home",
      "facility_number": "1370000001",
      "capacity": 100,
      "positions": [{
        "key": "care-1", "job_category": "care", "name": "介護職員", "level": 1,
        "required_experience_months": 0,
        "wage_table": {"base_salary_start": 180000, "step_raise_amount": 3000, "max_steps": 20}
      }],
      "staff": [{"staff_number": "S001", "name": "...", "position": "care-1", "step": 5,
                 "hire_date": "2021-04-01", "qualifications": ["介護福祉士"],
                 "latest_evaluation_score": "3.5"}],
      "training_plans": [{"name": "...", "training_type": "OJT", "fiscal_year": 2025}],
      "promotion_criteria": [{"from": "care-1", "to": "care-2", "required_experience_years": 3}]
    }],
    "plan": {"fiscal_year": 2025, "target_tier": "I", "career_path": {...},
             "initiative_items": ["1-1", "2-1", "3-1"], "total_service_units": 7600000}
  }

KEY FEATURES:
  - Validates every record with the domain constructors
  - Resolves position keys to generated IDs
  - Rejects duplicate keys and unknown references
  - Wage tables default to wage.DefaultMaxSteps steps

USAGE:
  f := NewFixtureFactory()
  fixture, err := f.ParseFixture(SampleNursingHomeJSON())

SEE ALSO:
  - samples.go:          Bundled sample fixtures
  - api/scenarios.go:    Loads fixtures into the store
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/carepath/career"
	"github.com/warp/carepath/facility"
	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
	"github.com/warp/carepath/wage"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type FixtureJSON struct {
	Provider   facility.Provider `json:"provider"`
	Facilities []FacilityJSON    `json:"facilities"`
	Plan       *PlanJSON         `json:"plan,omitempty"`
}

type FacilityJSON struct {
	Key string `json:"key"`
	facility.Facility
	Positions         []PositionJSON `json:"positions"`
	Staff             []StaffJSON    `json:"staff"`
	TrainingPlans     []TrainingJSON `json:"training_plans"`
	PromotionCriteria []CriteriaJSON `json:"promotion_criteria"`
}

type PositionJSON struct {
	Key string `json:"key"`
	career.Position
	WageTable *wage.Params `json:"wage_table,omitempty"`
}

type StaffJSON struct {
	career.StaffMember
	Position string `json:"position"`
	// Step places the member on the position's wage table (default 1).
	Step int `json:"step"`
}

type TrainingJSON struct {
	career.TrainingPlan
}

type CriteriaJSON struct {
	From                    string           `json:"from"`
	To                      string           `json:"to"`
	RequiredExperienceYears int              `json:"required_experience_years"`
	RequiredQualifications  string           `json:"required_qualifications"`
	RequiredEvaluationScore *decimal.Decimal `json:"required_evaluation_score,omitempty"`
	ReviewProcess           string           `json:"review_process"`
}

// PlanJSON is an improvement plan whose initiatives are named by item number.
type PlanJSON struct {
	FiscalYear        int                     `json:"fiscal_year"`
	TargetTier        subsidy.Tier            `json:"target_tier"`
	Flags             subsidy.CareerPathFlags `json:"career_path"`
	InitiativeItems   []string                `json:"initiative_items"`
	TotalServiceUnits int64                   `json:"total_service_units"`
	Allocation        subsidy.Allocation      `json:"allocation"`
	Notes             string                  `json:"notes"`
}

// =============================================================================
// PARSED FIXTURE
// =============================================================================

// Fixture holds validated records in dependency order.
type Fixture struct {
	Provider          facility.Provider
	Facilities        []facility.Facility
	Positions         []career.Position
	WageTables        map[generic.PositionID]wage.Definition
	Staff             []career.StaffMember
	TrainingPlans     []career.TrainingPlan
	PromotionCriteria []career.PromotionCriteria
	Plan              *PlanJSON
}

// FixtureFactory converts fixture JSON to domain values.
type FixtureFactory struct{}

func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{}
}

// ParseFixture parses a JSON string into a Fixture.
func (f *FixtureFactory) ParseFixture(jsonStr string) (*Fixture, error) {
	var fj FixtureJSON
	if err := json.Unmarshal([]byte(jsonStr), &fj); err != nil {
		return nil, fmt.Errorf("invalid fixture JSON: %w", err)
	}
	return f.FromJSON(fj)
}

// FromJSON validates fj and assigns IDs.
func (f *FixtureFactory) FromJSON(fj FixtureJSON) (*Fixture, error) {
	provider, err := facility.NewProvider(fj.Provider)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	out := &Fixture{
		Provider:   provider,
		WageTables: make(map[generic.PositionID]wage.Definition),
		Plan:       fj.Plan,
	}

	facilityKeys := make(map[string]bool)
	for _, fjf := range fj.Facilities {
		if fjf.Key != "" {
			if facilityKeys[fjf.Key] {
				return nil, fmt.Errorf("duplicate facility key %q: %w", fjf.Key, generic.ErrInvalidInput)
			}
			facilityKeys[fjf.Key] = true
		}
		if err := f.addFacility(out, fjf); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (f *FixtureFactory) addFacility(out *Fixture, fj FacilityJSON) error {
	in := fj.Facility
	in.ProviderID = out.Provider.ID
	fac, err := facility.NewFacility(in)
	if err != nil {
		return fmt.Errorf("facility %q: %w", fj.Name, err)
	}
	out.Facilities = append(out.Facilities, fac)

	// position keys are local to a facility
	positions := make(map[string]generic.PositionID, len(fj.Positions))
	for _, pj := range fj.Positions {
		if pj.Key == "" {
			return fmt.Errorf("facility %q: position %q has no key: %w", fj.Name, pj.Name, generic.ErrInvalidInput)
		}
		if _, dup := positions[pj.Key]; dup {
			return fmt.Errorf("facility %q: duplicate position key %q: %w", fj.Name, pj.Key, generic.ErrInvalidInput)
		}

		p := pj.Position
		p.FacilityID = fac.ID
		pos, err := career.NewPosition(p)
		if err != nil {
			return fmt.Errorf("position %q: %w", pj.Key, err)
		}
		positions[pj.Key] = pos.ID
		out.Positions = append(out.Positions, pos)

		if pj.WageTable != nil {
			params := *pj.WageTable
			if params.MaxSteps == 0 {
				params.MaxSteps = wage.DefaultMaxSteps
			}
			def, err := wage.NewDefinition(params)
			if err != nil {
				return fmt.Errorf("wage table for %q: %w", pj.Key, err)
			}
			out.WageTables[pos.ID] = def
		}
	}

	resolve := func(key string) (*generic.PositionID, error) {
		if key == "" {
			return nil, nil
		}
		id, ok := positions[key]
		if !ok {
			return nil, fmt.Errorf("facility %q: unknown position key %q: %w", fj.Name, key, generic.ErrNotFound)
		}
		return &id, nil
	}

	for _, sj := range fj.Staff {
		m := sj.StaffMember
		m.FacilityID = fac.ID
		m.Active = true
		pid, err := resolve(sj.Position)
		if err != nil {
			return err
		}
		m.CurrentPositionID = pid
		if pid != nil && m.CurrentBaseSalary == 0 {
			if def, ok := out.WageTables[*pid]; ok {
				step := max(sj.Step, 1)
				m.CurrentBaseSalary = def.SalaryForStep(step)
				m.CurrentTotalSalary = def.TotalForStep(step)
			}
		}
		staff, err := career.NewStaffMember(m)
		if err != nil {
			return fmt.Errorf("staff %q: %w", sj.StaffNumber, err)
		}
		out.Staff = append(out.Staff, staff)
	}

	for _, tj := range fj.TrainingPlans {
		t := tj.TrainingPlan
		t.FacilityID = fac.ID
		plan, err := career.NewTrainingPlan(t)
		if err != nil {
			return fmt.Errorf("training plan %q: %w", tj.Name, err)
		}
		out.TrainingPlans = append(out.TrainingPlans, plan)
	}

	for _, cj := range fj.PromotionCriteria {
		from, err := resolve(cj.From)
		if err != nil {
			return err
		}
		to, err := resolve(cj.To)
		if err != nil {
			return err
		}
		if from == nil || to == nil {
			return fmt.Errorf("facility %q: promotion criteria need both from and to: %w", fj.Name, generic.ErrInvalidInput)
		}
		c, err := career.NewPromotionCriteria(career.PromotionCriteria{
			FromPositionID:          *from,
			ToPositionID:            *to,
			RequiredExperienceYears: cj.RequiredExperienceYears,
			RequiredQualifications:  cj.RequiredQualifications,
			RequiredEvaluationScore: cj.RequiredEvaluationScore,
			ReviewProcess:           cj.ReviewProcess,
		})
		if err != nil {
			return fmt.Errorf("promotion %s -> %s: %w", cj.From, cj.To, err)
		}
		out.PromotionCriteria = append(out.PromotionCriteria, c)
	}
	return nil
}

// Draft turns the fixture's plan into a PlanDraft, looking up initiative
// IDs by item number.
func (fx *Fixture) Draft(byItem map[string]generic.InitiativeID) (subsidy.PlanDraft, error) {
	if fx.Plan == nil {
		return subsidy.PlanDraft{}, fmt.Errorf("fixture has no plan: %w", generic.ErrNotFound)
	}

	ids := make([]generic.InitiativeID, 0, len(fx.Plan.InitiativeItems))
	for _, item := range fx.Plan.InitiativeItems {
		id, ok := byItem[item]
		if !ok {
			return subsidy.PlanDraft{}, generic.NotFound("initiative", item)
		}
		ids = append(ids, id)
	}

	facilities := make([]generic.FacilityID, len(fx.Facilities))
	for i, f := range fx.Facilities {
		facilities[i] = f.ID
	}

	return subsidy.PlanDraft{
		ProviderID:        fx.Provider.ID,
		FiscalYear:        fx.Plan.FiscalYear,
		FacilityIDs:       facilities,
		TargetTier:        fx.Plan.TargetTier,
		Flags:             fx.Plan.Flags,
		InitiativeIDs:     ids,
		TotalServiceUnits: fx.Plan.TotalServiceUnits,
		Allocation:        fx.Plan.Allocation,
		Notes:             fx.Plan.Notes,
	}, nil
}
