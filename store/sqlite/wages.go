package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/wage"
)

// =============================================================================
// WAGE TABLE STORE
// =============================================================================

// SaveWageTable sets the wage table of a position, replacing any previous one.
func (s *Store) SaveWageTable(ctx context.Context, positionID generic.PositionID, def wage.Definition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO wage_tables
		(position_id, base_salary_start, step_raise_amount, max_steps,
		 qualification_allowance, position_allowance, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(position_id) DO UPDATE SET
			base_salary_start = excluded.base_salary_start,
			step_raise_amount = excluded.step_raise_amount,
			max_steps = excluded.max_steps,
			qualification_allowance = excluded.qualification_allowance,
			position_allowance = excluded.position_allowance,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		positionID, def.StartSalary(), def.StepRaiseAmount(), def.MaxSteps(),
		def.QualificationAllowance(), def.PositionAllowance(), formatTime(time.Now()),
	)
	return translate(err, "wage table")
}

// GetWageTable returns nil, nil when the position has no wage table.
func (s *Store) GetWageTable(ctx context.Context, positionID generic.PositionID) (*wage.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p wage.Params
	err := s.db.QueryRowContext(ctx, `
		SELECT base_salary_start, step_raise_amount, max_steps, qualification_allowance, position_allowance
		FROM wage_tables WHERE position_id = ?`, positionID,
	).Scan(&p.StartSalary, &p.StepRaiseAmount, &p.MaxSteps, &p.QualificationAllowance, &p.PositionAllowance)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	def, err := wage.NewDefinition(p)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// WageTablesByFacility returns every saved wage table of a facility keyed by position.
func (s *Store) WageTablesByFacility(ctx context.Context, facilityID generic.FacilityID) (map[generic.PositionID]wage.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT w.position_id, w.base_salary_start, w.step_raise_amount, w.max_steps,
		       w.qualification_allowance, w.position_allowance
		FROM wage_tables w
		JOIN positions p ON p.id = w.position_id
		WHERE p.facility_id = ?`, facilityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make(map[generic.PositionID]wage.Definition)
	for rows.Next() {
		var (
			id generic.PositionID
			p  wage.Params
		)
		if err := rows.Scan(&id, &p.StartSalary, &p.StepRaiseAmount, &p.MaxSteps,
			&p.QualificationAllowance, &p.PositionAllowance); err != nil {
			return nil, err
		}
		def, err := wage.NewDefinition(p)
		if err != nil {
			return nil, err
		}
		tables[id] = def
	}
	return tables, rows.Err()
}
