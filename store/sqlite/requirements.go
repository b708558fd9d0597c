package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/warp/carepath/career"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// REQUIREMENT I STORE
// =============================================================================

const requirementOneColumns = `position_id, facility_id, required_qualifications, required_experience_years,
	recommended_skills, other_requirements, job_description, responsibilities, authority,
	base_salary_min, base_salary_max, allowances, raise_rules`

// SaveRequirementOne sets the requirement I record of a position.
func (s *Store) SaveRequirementOne(ctx context.Context, r career.RequirementOne) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO requirement_one (` + requirementOneColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(position_id) DO UPDATE SET
			required_qualifications = excluded.required_qualifications,
			required_experience_years = excluded.required_experience_years,
			recommended_skills = excluded.recommended_skills,
			other_requirements = excluded.other_requirements,
			job_description = excluded.job_description,
			responsibilities = excluded.responsibilities,
			authority = excluded.authority,
			base_salary_min = excluded.base_salary_min,
			base_salary_max = excluded.base_salary_max,
			allowances = excluded.allowances,
			raise_rules = excluded.raise_rules
	`

	_, err := s.db.ExecContext(ctx, query,
		r.PositionID, r.FacilityID, nullString(r.RequiredQualifications), r.RequiredExperienceYears,
		nullString(r.RecommendedSkills), nullString(r.OtherRequirements), nullString(r.JobDescription),
		nullString(r.Responsibilities), nullString(r.Authority),
		r.BaseSalaryMin, r.BaseSalaryMax, nullString(r.Allowances), nullString(r.RaiseRules),
	)
	return translate(err, "requirement one")
}

// GetRequirementOne returns nil, nil when the position has no record yet.
func (s *Store) GetRequirementOne(ctx context.Context, positionID generic.PositionID) (*career.RequirementOne, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := scanRequirementOne(s.db.QueryRowContext(ctx,
		"SELECT "+requirementOneColumns+" FROM requirement_one WHERE position_id = ?", positionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// RequirementOnesByFacility returns a facility's saved records keyed by position.
func (s *Store) RequirementOnesByFacility(ctx context.Context, facilityID generic.FacilityID) (map[generic.PositionID]career.RequirementOne, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+requirementOneColumns+" FROM requirement_one WHERE facility_id = ?", facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[generic.PositionID]career.RequirementOne)
	for rows.Next() {
		r, err := scanRequirementOne(rows)
		if err != nil {
			return nil, err
		}
		out[r.PositionID] = r
	}
	return out, rows.Err()
}

func scanRequirementOne(row rowScanner) (career.RequirementOne, error) {
	var (
		r                                  career.RequirementOne
		quals, skills, other, desc, duties sql.NullString
		authority, allowances, raiseRules  sql.NullString
	)
	err := row.Scan(&r.PositionID, &r.FacilityID, &quals, &r.RequiredExperienceYears,
		&skills, &other, &desc, &duties, &authority,
		&r.BaseSalaryMin, &r.BaseSalaryMax, &allowances, &raiseRules)
	if err != nil {
		return r, err
	}
	r.RequiredQualifications = quals.String
	r.RecommendedSkills = skills.String
	r.OtherRequirements = other.String
	r.JobDescription = desc.String
	r.Responsibilities = duties.String
	r.Authority = authority.String
	r.Allowances = allowances.String
	r.RaiseRules = raiseRules.String
	return r, nil
}

// =============================================================================
// REQUIREMENT III STORE
// =============================================================================

// SaveSalaryIncreaseSystem sets a facility's salary increase system.
func (s *Store) SaveSalaryIncreaseSystem(ctx context.Context, sys career.SalaryIncreaseSystem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO salary_increase_systems
		(facility_id, has_regular_increase, increase_timing, increase_amount_per_step, max_steps_per_year,
		 has_special_increase, special_increase_conditions, evaluation_affects_raise, evaluation_criteria, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(facility_id) DO UPDATE SET
			has_regular_increase = excluded.has_regular_increase,
			increase_timing = excluded.increase_timing,
			increase_amount_per_step = excluded.increase_amount_per_step,
			max_steps_per_year = excluded.max_steps_per_year,
			has_special_increase = excluded.has_special_increase,
			special_increase_conditions = excluded.special_increase_conditions,
			evaluation_affects_raise = excluded.evaluation_affects_raise,
			evaluation_criteria = excluded.evaluation_criteria,
			notes = excluded.notes
	`

	_, err := s.db.ExecContext(ctx, query,
		sys.FacilityID, sys.HasRegularIncrease, sys.IncreaseTiming, sys.IncreaseAmountPerStep, sys.MaxStepsPerYear,
		sys.HasSpecialIncrease, nullString(sys.SpecialIncreaseConditions), sys.EvaluationAffectsRaise,
		nullString(sys.EvaluationCriteria), nullString(sys.Notes),
	)
	return translate(err, "salary increase system")
}

// GetSalaryIncreaseSystem returns nil, nil when the facility has none.
func (s *Store) GetSalaryIncreaseSystem(ctx context.Context, facilityID generic.FacilityID) (*career.SalaryIncreaseSystem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sys                         career.SalaryIncreaseSystem
		conditions, criteria, notes sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT facility_id, has_regular_increase, increase_timing, increase_amount_per_step, max_steps_per_year,
		       has_special_increase, special_increase_conditions, evaluation_affects_raise, evaluation_criteria, notes
		FROM salary_increase_systems WHERE facility_id = ?`, facilityID,
	).Scan(&sys.FacilityID, &sys.HasRegularIncrease, &sys.IncreaseTiming, &sys.IncreaseAmountPerStep,
		&sys.MaxStepsPerYear, &sys.HasSpecialIncrease, &conditions, &sys.EvaluationAffectsRaise, &criteria, &notes)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sys.SpecialIncreaseConditions = conditions.String
	sys.EvaluationCriteria = criteria.String
	sys.Notes = notes.String
	return &sys, nil
}
