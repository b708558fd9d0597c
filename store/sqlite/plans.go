package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
)

// =============================================================================
// WORKPLACE INITIATIVE CATALOG
// =============================================================================

// LoadStandardInitiatives seeds the catalog with the standard items that are
// not present yet (matched by item number) and returns how many were added.
func (s *Store) LoadStandardInitiatives(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, it := range subsidy.StandardInitiatives() {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO workplace_initiatives (id, category, item_number, description)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(item_number) DO NOTHING`,
			generic.NewID(), it.Category, it.ItemNumber, it.Description,
		)
		if err != nil {
			return added, fmt.Errorf("failed to seed initiative %s: %w", it.ItemNumber, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return added, fmt.Errorf("failed to seed initiative %s: %w", it.ItemNumber, err)
		}
		if n > 0 {
			added++
		}
	}
	return added, nil
}

// SaveInitiative inserts or updates a catalog item.
func (s *Store) SaveInitiative(ctx context.Context, it subsidy.WorkplaceInitiative) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workplace_initiatives (id, category, item_number, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			item_number = excluded.item_number,
			description = excluded.description`,
		it.ID, it.Category, it.ItemNumber, it.Description,
	)
	return translate(err, "initiative")
}

// ListInitiatives returns the catalog, optionally filtered by category,
// ordered by item number.
func (s *Store) ListInitiatives(ctx context.Context, category subsidy.Category) ([]subsidy.WorkplaceInitiative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, category, item_number, description FROM workplace_initiatives"
	var args []any
	if category != "" {
		query += " WHERE category = ?"
		args = append(args, category)
	}
	query += " ORDER BY item_number"

	return s.queryInitiatives(ctx, query, args...)
}

// InitiativesByID implements subsidy.PlanStore.
func (s *Store) InitiativesByID(ctx context.Context, ids []generic.InitiativeID) ([]subsidy.WorkplaceInitiative, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := "SELECT id, category, item_number, description FROM workplace_initiatives WHERE id IN (" +
		placeholders(len(ids)) + ")"

	found, err := s.queryInitiatives(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[generic.InitiativeID]subsidy.WorkplaceInitiative, len(found))
	for _, it := range found {
		byID[it.ID] = it
	}
	out := make([]subsidy.WorkplaceInitiative, 0, len(ids))
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			return nil, generic.NotFound("initiative", string(id))
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *Store) queryInitiatives(ctx context.Context, query string, args ...any) ([]subsidy.WorkplaceInitiative, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query initiatives: %w", err)
	}
	defer rows.Close()

	var items []subsidy.WorkplaceInitiative
	for rows.Next() {
		var it subsidy.WorkplaceInitiative
		if err := rows.Scan(&it.ID, &it.Category, &it.ItemNumber, &it.Description); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// =============================================================================
// IMPROVEMENT PLAN STORE (subsidy.PlanStore)
// =============================================================================

const planColumns = `id, provider_id, fiscal_year, target_tier, determined_tier,
	career_path_1, career_path_2, career_path_3, career_path_4, career_path_5,
	qualification_count, work_style_count, balance_count, total_service_units,
	addition_rate, estimated_amount,
	total_salary_increase, base_salary_increase, allowance_increase, bonus_increase,
	status, notes, created_at, updated_at, submitted_at`

// SavePlan upserts the plan and replaces its facility and initiative links
// in one transaction.
func (s *Store) SavePlan(ctx context.Context, p subsidy.ImprovementPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var submittedAt sql.NullString
	if p.SubmittedAt != nil {
		submittedAt = nullString(formatTime(*p.SubmittedAt))
	}

	query := `
		INSERT INTO improvement_plans (` + planColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider_id = excluded.provider_id,
			fiscal_year = excluded.fiscal_year,
			target_tier = excluded.target_tier,
			determined_tier = excluded.determined_tier,
			career_path_1 = excluded.career_path_1,
			career_path_2 = excluded.career_path_2,
			career_path_3 = excluded.career_path_3,
			career_path_4 = excluded.career_path_4,
			career_path_5 = excluded.career_path_5,
			qualification_count = excluded.qualification_count,
			work_style_count = excluded.work_style_count,
			balance_count = excluded.balance_count,
			total_service_units = excluded.total_service_units,
			addition_rate = excluded.addition_rate,
			estimated_amount = excluded.estimated_amount,
			total_salary_increase = excluded.total_salary_increase,
			base_salary_increase = excluded.base_salary_increase,
			allowance_increase = excluded.allowance_increase,
			bonus_increase = excluded.bonus_increase,
			status = excluded.status,
			notes = excluded.notes,
			updated_at = excluded.updated_at,
			submitted_at = excluded.submitted_at
	`

	_, err = tx.ExecContext(ctx, query,
		p.ID, p.ProviderID, p.FiscalYear, p.TargetTier, p.DeterminedTier,
		p.Flags.I, p.Flags.II, p.Flags.III, p.Flags.IV, p.Flags.V,
		p.Counts.Qualification, p.Counts.WorkStyle, p.Counts.Balance, p.TotalServiceUnits,
		p.AdditionRate.String(), p.EstimatedAmount,
		p.Allocation.TotalSalaryIncrease, p.Allocation.BaseSalaryIncrease,
		p.Allocation.AllowanceIncrease, p.Allocation.BonusIncrease,
		p.Status, nullString(p.Notes), formatTime(p.CreatedAt), formatTime(p.UpdatedAt), submittedAt,
	)
	if err != nil {
		return translate(err, "improvement plan")
	}

	if err := replaceLinks(ctx, tx, "plan_facilities", "facility_id", p.ID, toAny(p.FacilityIDs)); err != nil {
		return translate(err, "plan facilities")
	}
	if err := replaceLinks(ctx, tx, "plan_initiatives", "initiative_id", p.ID, toAny(p.InitiativeIDs)); err != nil {
		return translate(err, "plan initiatives")
	}

	return tx.Commit()
}

func replaceLinks(ctx context.Context, tx execer, table, column string, planID generic.PlanID, ids []any) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE plan_id = ?", planID); err != nil {
		return err
	}
	for i, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO "+table+" (plan_id, "+column+", position) VALUES (?, ?, ?)",
			planID, id, i); err != nil {
			return err
		}
	}
	return nil
}

// GetPlan implements subsidy.PlanStore. Returns nil, nil when missing.
func (s *Store) GetPlan(ctx context.Context, id generic.PlanID) (*subsidy.ImprovementPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanPlan(s.db.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM improvement_plans WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadLinks(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlans returns plans newest fiscal year first, optionally for one provider.
func (s *Store) ListPlans(ctx context.Context, providerID generic.ProviderID) ([]subsidy.ImprovementPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + planColumns + " FROM improvement_plans"
	var args []any
	if providerID != "" {
		query += " WHERE provider_id = ?"
		args = append(args, providerID)
	}
	query += " ORDER BY fiscal_year DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var plans []subsidy.ImprovementPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		plans = append(plans, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range plans {
		if err := s.loadLinks(ctx, &plans[i]); err != nil {
			return nil, err
		}
	}
	return plans, nil
}

func (s *Store) loadLinks(ctx context.Context, p *subsidy.ImprovementPlan) error {
	facilities, err := s.queryLinks(ctx, "plan_facilities", "facility_id", p.ID)
	if err != nil {
		return err
	}
	for _, id := range facilities {
		p.FacilityIDs = append(p.FacilityIDs, generic.FacilityID(id))
	}

	initiatives, err := s.queryLinks(ctx, "plan_initiatives", "initiative_id", p.ID)
	if err != nil {
		return err
	}
	for _, id := range initiatives {
		p.InitiativeIDs = append(p.InitiativeIDs, generic.InitiativeID(id))
	}
	return nil
}

func (s *Store) queryLinks(ctx context.Context, table, column string, planID generic.PlanID) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+column+" FROM "+table+" WHERE plan_id = ? ORDER BY position", planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanPlan(row rowScanner) (subsidy.ImprovementPlan, error) {
	var (
		p                          subsidy.ImprovementPlan
		rate, createdAt, updatedAt string
		notes, submittedAt         sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.ProviderID, &p.FiscalYear, &p.TargetTier, &p.DeterminedTier,
		&p.Flags.I, &p.Flags.II, &p.Flags.III, &p.Flags.IV, &p.Flags.V,
		&p.Counts.Qualification, &p.Counts.WorkStyle, &p.Counts.Balance, &p.TotalServiceUnits,
		&rate, &p.EstimatedAmount,
		&p.Allocation.TotalSalaryIncrease, &p.Allocation.BaseSalaryIncrease,
		&p.Allocation.AllowanceIncrease, &p.Allocation.BonusIncrease,
		&p.Status, &notes, &createdAt, &updatedAt, &submittedAt,
	)
	if err != nil {
		return p, err
	}

	if p.AdditionRate, err = parseDecimal(rate, "addition rate"); err != nil {
		return p, err
	}
	p.Notes = notes.String
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return p, err
	}
	if submittedAt.Valid {
		t, err := parseTime(submittedAt.String)
		if err != nil {
			return p, err
		}
		p.SubmittedAt = &t
	}
	return p, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func toAny[T ~string](ids []T) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
