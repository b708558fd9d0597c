package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/warp/carepath/career"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// STAFF EVALUATIONS
// =============================================================================

// RecordEvaluation stores e together with the staff member it updated.
func (s *Store) RecordEvaluation(ctx context.Context, e career.StaffEvaluation, staff career.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO staff_evaluations
		(id, staff_id, evaluation_period, evaluation_date, overall_score, overall_comment, evaluator_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.StaffID, e.EvaluationPeriod, e.EvaluationDate.String(), e.OverallScore.String(),
		nullString(e.OverallComment), e.EvaluatorName,
	)
	if err != nil {
		return translate(err, "staff evaluation")
	}
	if err := saveStaff(ctx, tx, staff); err != nil {
		return err
	}
	return tx.Commit()
}

// ListEvaluations returns a staff member's evaluations, newest first.
func (s *Store) ListEvaluations(ctx context.Context, staffID generic.StaffID) ([]career.StaffEvaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, evaluation_period, evaluation_date, overall_score, overall_comment, evaluator_name
		FROM staff_evaluations WHERE staff_id = ?
		ORDER BY evaluation_date DESC, evaluation_period DESC`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []career.StaffEvaluation
	for rows.Next() {
		var (
			e           career.StaffEvaluation
			date, score string
			comment     sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.StaffID, &e.EvaluationPeriod, &date, &score, &comment, &e.EvaluatorName); err != nil {
			return nil, err
		}
		if e.EvaluationDate, err = parseDate(sql.NullString{String: date, Valid: true}); err != nil {
			return nil, err
		}
		if e.OverallScore, err = parseDecimal(score, "overall score"); err != nil {
			return nil, err
		}
		e.OverallComment = comment.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// PROMOTION RECORDS
// =============================================================================

// RecordPromotion stores r together with the promoted staff member.
func (s *Store) RecordPromotion(ctx context.Context, r career.PromotionRecord, staff career.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var from sql.NullString
	if r.FromPositionID != nil {
		from = nullString(string(*r.FromPositionID))
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO promotion_records
		(id, staff_id, from_position_id, to_position_id, promotion_date, promotion_type,
		 salary_before, salary_after, reason, approved_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StaffID, from, r.ToPositionID, r.PromotionDate.String(), r.PromotionType,
		r.SalaryBefore, r.SalaryAfter, nullString(r.Reason), r.ApprovedBy,
	)
	if err != nil {
		return translate(err, "promotion record")
	}
	if err := saveStaff(ctx, tx, staff); err != nil {
		return err
	}
	return tx.Commit()
}

// ListPromotions returns a staff member's promotion history, newest first.
func (s *Store) ListPromotions(ctx context.Context, staffID generic.StaffID) ([]career.PromotionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, from_position_id, to_position_id, promotion_date, promotion_type,
		       salary_before, salary_after, reason, approved_by
		FROM promotion_records WHERE staff_id = ?
		ORDER BY promotion_date DESC`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []career.PromotionRecord
	for rows.Next() {
		var (
			r            career.PromotionRecord
			from, reason sql.NullString
			date         string
		)
		if err := rows.Scan(&r.ID, &r.StaffID, &from, &r.ToPositionID, &date, &r.PromotionType,
			&r.SalaryBefore, &r.SalaryAfter, &reason, &r.ApprovedBy); err != nil {
			return nil, err
		}
		if from.Valid {
			id := generic.PositionID(from.String)
			r.FromPositionID = &id
		}
		if r.PromotionDate, err = parseDate(sql.NullString{String: date, Valid: true}); err != nil {
			return nil, err
		}
		r.Reason = reason.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// TRAINING RECORDS
// =============================================================================

// SaveTrainingRecord upserts a training record and replaces its participants.
func (s *Store) SaveTrainingRecord(ctx context.Context, r career.TrainingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO training_records (id, training_plan_id, actual_date, content, evaluation, attachments)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			actual_date = excluded.actual_date,
			content = excluded.content,
			evaluation = excluded.evaluation,
			attachments = excluded.attachments`,
		r.ID, r.TrainingPlanID, r.ActualDate.String(), r.Content,
		nullString(r.Evaluation), nullString(r.Attachments),
	)
	if err != nil {
		return translate(err, "training record")
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM training_participants WHERE record_id = ?", r.ID); err != nil {
		return translate(err, "training participants")
	}
	for i, id := range r.ParticipantIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO training_participants (record_id, staff_id, position) VALUES (?, ?, ?)",
			r.ID, id, i); err != nil {
			return translate(err, "training participants")
		}
	}
	return tx.Commit()
}

// ListTrainingRecords returns the sessions delivered for a plan, newest first.
func (s *Store) ListTrainingRecords(ctx context.Context, planID generic.TrainingPlanID) ([]career.TrainingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, training_plan_id, actual_date, content, evaluation, attachments
		FROM training_records WHERE training_plan_id = ?
		ORDER BY actual_date DESC`, planID)
	if err != nil {
		return nil, err
	}

	var out []career.TrainingRecord
	for rows.Next() {
		var (
			r                       career.TrainingRecord
			date                    string
			evaluation, attachments sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.TrainingPlanID, &date, &r.Content, &evaluation, &attachments); err != nil {
			rows.Close()
			return nil, err
		}
		if r.ActualDate, err = parseDate(sql.NullString{String: date, Valid: true}); err != nil {
			rows.Close()
			return nil, err
		}
		r.Evaluation = evaluation.String
		r.Attachments = attachments.String
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		ids, err := s.participants(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].ParticipantIDs = ids
	}
	return out, nil
}

func (s *Store) participants(ctx context.Context, recordID generic.TrainingRecordID) ([]generic.StaffID, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT staff_id FROM training_participants WHERE record_id = ? ORDER BY position", recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []generic.StaffID{}
	for rows.Next() {
		var id generic.StaffID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
