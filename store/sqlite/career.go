package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/warp/carepath/career"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// POSITION STORE
// =============================================================================

const positionColumns = `id, facility_id, job_category, name, level, required_experience_months, required_qualifications, job_description`

// SavePosition inserts or updates a position. A second position with the
// same facility, category and level is a conflict.
func (s *Store) SavePosition(ctx context.Context, p career.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO positions (` + positionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			job_category = excluded.job_category,
			name = excluded.name,
			level = excluded.level,
			required_experience_months = excluded.required_experience_months,
			required_qualifications = excluded.required_qualifications,
			job_description = excluded.job_description
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.FacilityID, p.JobCategory, p.Name, p.Level, p.RequiredExperienceMonths,
		nullString(p.RequiredQualifications), nullString(p.JobDescription),
	)
	return translate(err, "position")
}

// GetPosition returns nil, nil when the position does not exist.
func (s *Store) GetPosition(ctx context.Context, id generic.PositionID) (*career.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPosition(s.db.QueryRowContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPositions returns a facility's positions by category, then level.
func (s *Store) ListPositions(ctx context.Context, facilityID generic.FacilityID) ([]career.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+positionColumns+" FROM positions WHERE facility_id = ? ORDER BY job_category, level",
		facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []career.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func scanPosition(row rowScanner) (career.Position, error) {
	var (
		p           career.Position
		quals, desc sql.NullString
	)
	err := row.Scan(&p.ID, &p.FacilityID, &p.JobCategory, &p.Name, &p.Level,
		&p.RequiredExperienceMonths, &quals, &desc)
	if err != nil {
		return p, err
	}
	p.RequiredQualifications = quals.String
	p.JobDescription = desc.String
	return p, nil
}

// =============================================================================
// STAFF STORE
// =============================================================================

const staffColumns = `id, facility_id, staff_number, name, employment_status, hire_date,
	current_position_id, current_base_salary, current_total_salary, qualifications,
	latest_evaluation_score, latest_evaluation_date, active`

// SaveStaff inserts or updates a staff member.
func (s *Store) SaveStaff(ctx context.Context, m career.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveStaff(ctx, s.db, m)
}

func saveStaff(ctx context.Context, ex execer, m career.StaffMember) error {
	quals, err := json.Marshal(m.Qualifications)
	if err != nil {
		return fmt.Errorf("encode qualifications: %w", err)
	}
	var positionID sql.NullString
	if m.CurrentPositionID != nil {
		positionID = nullString(string(*m.CurrentPositionID))
	}

	query := `
		INSERT INTO staff_members (` + staffColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			staff_number = excluded.staff_number,
			name = excluded.name,
			employment_status = excluded.employment_status,
			hire_date = excluded.hire_date,
			current_position_id = excluded.current_position_id,
			current_base_salary = excluded.current_base_salary,
			current_total_salary = excluded.current_total_salary,
			qualifications = excluded.qualifications,
			latest_evaluation_score = excluded.latest_evaluation_score,
			latest_evaluation_date = excluded.latest_evaluation_date,
			active = excluded.active
	`

	_, err = ex.ExecContext(ctx, query,
		m.ID, m.FacilityID, m.StaffNumber, m.Name, m.EmploymentStatus, m.HireDate.String(),
		positionID, m.CurrentBaseSalary, m.CurrentTotalSalary, string(quals),
		m.LatestEvaluationScore.String(), formatDate(m.LatestEvaluationDate), m.Active,
	)
	return translate(err, "staff member")
}

// GetStaff returns nil, nil when the staff member does not exist.
func (s *Store) GetStaff(ctx context.Context, id generic.StaffID) (*career.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, err := scanStaff(s.db.QueryRowContext(ctx,
		"SELECT "+staffColumns+" FROM staff_members WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListStaff returns a facility's staff ordered by staff number.
func (s *Store) ListStaff(ctx context.Context, facilityID generic.FacilityID, activeOnly bool) ([]career.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + staffColumns + " FROM staff_members WHERE facility_id = ?"
	if activeOnly {
		query += " AND active = TRUE"
	}
	query += " ORDER BY staff_number"

	rows, err := s.db.QueryContext(ctx, query, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []career.StaffMember
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, m)
	}
	return staff, rows.Err()
}

func scanStaff(row rowScanner) (career.StaffMember, error) {
	var (
		m          career.StaffMember
		hireDate   string
		positionID sql.NullString
		quals      sql.NullString
		score      string
		evalDate   sql.NullString
	)
	err := row.Scan(&m.ID, &m.FacilityID, &m.StaffNumber, &m.Name, &m.EmploymentStatus, &hireDate,
		&positionID, &m.CurrentBaseSalary, &m.CurrentTotalSalary, &quals,
		&score, &evalDate, &m.Active)
	if err != nil {
		return m, err
	}

	if m.HireDate, err = parseDate(sql.NullString{String: hireDate, Valid: true}); err != nil {
		return m, err
	}
	if positionID.Valid {
		pid := generic.PositionID(positionID.String)
		m.CurrentPositionID = &pid
	}
	if quals.Valid && quals.String != "" {
		if err := json.Unmarshal([]byte(quals.String), &m.Qualifications); err != nil {
			return m, fmt.Errorf("decode qualifications of staff %s: %w", m.ID, err)
		}
	}
	if m.LatestEvaluationScore, err = parseDecimal(score, "evaluation score"); err != nil {
		return m, err
	}
	if m.LatestEvaluationDate, err = parseDate(evalDate); err != nil {
		return m, err
	}
	return m, nil
}

// =============================================================================
// TRAINING PLAN STORE
// =============================================================================

const trainingColumns = `id, facility_id, fiscal_year, name, training_type, description, objectives,
	scheduled_date, duration_hours, instructor, mandatory`

// SaveTrainingPlan inserts or updates a training plan.
func (s *Store) SaveTrainingPlan(ctx context.Context, t career.TrainingPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO training_plans (` + trainingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fiscal_year = excluded.fiscal_year,
			name = excluded.name,
			training_type = excluded.training_type,
			description = excluded.description,
			objectives = excluded.objectives,
			scheduled_date = excluded.scheduled_date,
			duration_hours = excluded.duration_hours,
			instructor = excluded.instructor,
			mandatory = excluded.mandatory
	`

	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.FacilityID, t.FiscalYear, t.Name, t.TrainingType,
		nullString(t.Description), nullString(t.Objectives), formatDate(t.ScheduledDate),
		t.DurationHours.String(), nullString(t.Instructor), t.Mandatory,
	)
	return translate(err, "training plan")
}

// ListTrainingPlans returns a facility's plans; fiscalYear 0 means every year.
func (s *Store) ListTrainingPlans(ctx context.Context, facilityID generic.FacilityID, fiscalYear int) ([]career.TrainingPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + trainingColumns + " FROM training_plans WHERE facility_id = ?"
	args := []any{facilityID}
	if fiscalYear != 0 {
		query += " AND fiscal_year = ?"
		args = append(args, fiscalYear)
	}
	query += " ORDER BY fiscal_year, scheduled_date, name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []career.TrainingPlan
	for rows.Next() {
		t, err := scanTrainingPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, t)
	}
	return plans, rows.Err()
}

// GetTrainingPlan returns nil, nil when the plan does not exist.
func (s *Store) GetTrainingPlan(ctx context.Context, id generic.TrainingPlanID) (*career.TrainingPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := scanTrainingPlan(s.db.QueryRowContext(ctx,
		"SELECT "+trainingColumns+" FROM training_plans WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTrainingPlan(row rowScanner) (career.TrainingPlan, error) {
	var (
		t                       career.TrainingPlan
		desc, objectives, instr sql.NullString
		scheduled               sql.NullString
		hours                   string
	)
	err := row.Scan(&t.ID, &t.FacilityID, &t.FiscalYear, &t.Name, &t.TrainingType,
		&desc, &objectives, &scheduled, &hours, &instr, &t.Mandatory)
	if err != nil {
		return t, err
	}
	t.Description = desc.String
	t.Objectives = objectives.String
	if t.ScheduledDate, err = parseDate(scheduled); err != nil {
		return t, err
	}
	if t.DurationHours, err = parseDecimal(hours, "duration hours"); err != nil {
		return t, err
	}
	t.Instructor = instr.String
	return t, nil
}

// =============================================================================
// PROMOTION CRITERIA STORE
// =============================================================================

// SavePromotionCriteria inserts or replaces the criteria between two positions.
func (s *Store) SavePromotionCriteria(ctx context.Context, c career.PromotionCriteria) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var score sql.NullString
	if c.RequiredEvaluationScore != nil {
		score = nullString(c.RequiredEvaluationScore.String())
	}

	query := `
		INSERT INTO promotion_criteria
		(from_position_id, to_position_id, required_experience_years, required_qualifications,
		 required_evaluation_score, review_process)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(from_position_id, to_position_id) DO UPDATE SET
			required_experience_years = excluded.required_experience_years,
			required_qualifications = excluded.required_qualifications,
			required_evaluation_score = excluded.required_evaluation_score,
			review_process = excluded.review_process
	`

	_, err := s.db.ExecContext(ctx, query,
		c.FromPositionID, c.ToPositionID, c.RequiredExperienceYears,
		nullString(c.RequiredQualifications), score, nullString(c.ReviewProcess),
	)
	return translate(err, "promotion criteria")
}

// GetPromotionCriteria returns nil, nil when no criteria link the positions.
func (s *Store) GetPromotionCriteria(ctx context.Context, from, to generic.PositionID) (*career.PromotionCriteria, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		c                     career.PromotionCriteria
		quals, score, process sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT from_position_id, to_position_id, required_experience_years,
		       required_qualifications, required_evaluation_score, review_process
		FROM promotion_criteria
		WHERE from_position_id = ? AND to_position_id = ?`, from, to,
	).Scan(&c.FromPositionID, &c.ToPositionID, &c.RequiredExperienceYears, &quals, &score, &process)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.RequiredQualifications = quals.String
	c.ReviewProcess = process.String
	if score.Valid {
		d, err := parseDecimal(score.String, "required evaluation score")
		if err != nil {
			return nil, err
		}
		c.RequiredEvaluationScore = &d
	}
	return &c, nil
}

// =============================================================================
// REQUIREMENTS OVERVIEW
// =============================================================================

// RequirementsOverview counts a facility's career-path evidence.
func (s *Store) RequirementsOverview(ctx context.Context, facilityID generic.FacilityID) (career.RequirementsOverview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o := career.RequirementsOverview{FacilityID: facilityID}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM positions WHERE facility_id = ?),
			(SELECT COUNT(*) FROM wage_tables w JOIN positions p ON p.id = w.position_id WHERE p.facility_id = ?),
			(SELECT COUNT(*) FROM requirement_one WHERE facility_id = ?),
			(SELECT COUNT(*) FROM training_plans WHERE facility_id = ?),
			EXISTS (SELECT 1 FROM salary_increase_systems WHERE facility_id = ?)`,
		facilityID, facilityID, facilityID, facilityID, facilityID,
	).Scan(&o.Positions, &o.PositionsWithWageTables, &o.RequirementOneCount, &o.TrainingPlans, &o.HasSalarySystem)
	return o, err
}
