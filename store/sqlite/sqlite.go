/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists providers, facilities, the career ladder (positions, staff,
  training plans, promotion criteria), career-path requirement records,
  wage tables, the workplace-initiative catalog and improvement plans. The same schema ports to PostgreSQL with
  minor dialect changes.

INTERFACES IMPLEMENTED:
  subsidy.PlanStore: Provider/facility lookups, initiatives, plans

KEY TABLES:
  providers, facilities:          Organisation
  positions, staff_members:       Career ladder and people on it
  wage_tables:                    One table per position (1:1)
  training_plans:                 Requirement II evidence
  training_records,
  training_participants:          Delivered sessions and who attended
  staff_evaluations,
  promotion_records:              Appraisal and promotion history per staff member
  requirement_one:                Requirement I, one row per position
  salary_increase_systems:        Requirement III, one row per facility
  promotion_criteria:             Extra conditions between two positions
  workplace_initiatives:          Catalog, seeded with the 14 standard items
  improvement_plans:              Plan header and evaluation result
  plan_facilities,
  plan_initiatives:               Plan membership (many-to-many)

UNIQUENESS:
  - facilities.facility_number
  - staff_members.staff_number
  - positions(facility_id, job_category, level)
  - workplace_initiatives.item_number
  - promotion_criteria(from_position_id, to_position_id)
  Violations surface as generic.ErrConflict.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/carepath.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  plans := subsidy.NewPlanService(store, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - subsidy/service.go:  PlanStore interface
  - store/memory:        In-memory PlanStore for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ subsidy.PlanStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS providers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		corporate_number TEXT,
		address TEXT,
		phone TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS facilities (
		id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL REFERENCES providers(id),
		name TEXT NOT NULL,
		service_type TEXT NOT NULL,
		facility_number TEXT NOT NULL UNIQUE,
		address TEXT,
		phone TEXT,
		capacity INTEGER NOT NULL DEFAULT 0,
		staff_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_facilities_provider
		ON facilities(provider_id);

	-- One rung of a career ladder
	CREATE TABLE IF NOT EXISTS positions (
		id TEXT PRIMARY KEY,
		facility_id TEXT NOT NULL REFERENCES facilities(id),
		job_category TEXT NOT NULL,
		name TEXT NOT NULL,
		level INTEGER NOT NULL CHECK (level BETWEEN 1 AND 10),
		required_experience_months INTEGER NOT NULL DEFAULT 0,
		required_qualifications TEXT,
		job_description TEXT,
		UNIQUE(facility_id, job_category, level)
	);

	-- 1:1 with positions
	CREATE TABLE IF NOT EXISTS wage_tables (
		position_id TEXT PRIMARY KEY REFERENCES positions(id),
		base_salary_start INTEGER NOT NULL,
		step_raise_amount INTEGER NOT NULL,
		max_steps INTEGER NOT NULL,
		qualification_allowance INTEGER NOT NULL DEFAULT 0,
		position_allowance INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS staff_members (
		id TEXT PRIMARY KEY,
		facility_id TEXT NOT NULL REFERENCES facilities(id),
		staff_number TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		employment_status TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		current_position_id TEXT REFERENCES positions(id),
		current_base_salary INTEGER NOT NULL DEFAULT 0,
		current_total_salary INTEGER NOT NULL DEFAULT 0,
		qualifications TEXT,
		latest_evaluation_score TEXT NOT NULL DEFAULT '0',
		latest_evaluation_date TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE INDEX IF NOT EXISTS idx_staff_facility
		ON staff_members(facility_id);

	CREATE TABLE IF NOT EXISTS training_plans (
		id TEXT PRIMARY KEY,
		facility_id TEXT NOT NULL REFERENCES facilities(id),
		fiscal_year INTEGER NOT NULL,
		name TEXT NOT NULL,
		training_type TEXT NOT NULL,
		description TEXT,
		objectives TEXT,
		scheduled_date TEXT,
		duration_hours TEXT NOT NULL DEFAULT '0',
		instructor TEXT,
		mandatory BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_training_facility_year
		ON training_plans(facility_id, fiscal_year);

	CREATE TABLE IF NOT EXISTS promotion_criteria (
		from_position_id TEXT NOT NULL REFERENCES positions(id),
		to_position_id TEXT NOT NULL REFERENCES positions(id),
		required_experience_years INTEGER NOT NULL DEFAULT 0,
		required_qualifications TEXT,
		required_evaluation_score TEXT,
		review_process TEXT,
		PRIMARY KEY (from_position_id, to_position_id)
	);

	CREATE TABLE IF NOT EXISTS training_records (
		id TEXT PRIMARY KEY,
		training_plan_id TEXT NOT NULL REFERENCES training_plans(id),
		actual_date TEXT NOT NULL,
		content TEXT NOT NULL,
		evaluation TEXT,
		attachments TEXT
	);

	CREATE TABLE IF NOT EXISTS training_participants (
		record_id TEXT NOT NULL REFERENCES training_records(id),
		staff_id TEXT NOT NULL REFERENCES staff_members(id),
		position INTEGER NOT NULL,
		PRIMARY KEY (record_id, staff_id)
	);

	CREATE TABLE IF NOT EXISTS staff_evaluations (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL REFERENCES staff_members(id),
		evaluation_period TEXT NOT NULL,
		evaluation_date TEXT NOT NULL,
		overall_score TEXT NOT NULL,
		overall_comment TEXT,
		evaluator_name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS promotion_records (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL REFERENCES staff_members(id),
		from_position_id TEXT REFERENCES positions(id),
		to_position_id TEXT NOT NULL REFERENCES positions(id),
		promotion_date TEXT NOT NULL,
		promotion_type TEXT NOT NULL,
		salary_before INTEGER NOT NULL DEFAULT 0,
		salary_after INTEGER NOT NULL DEFAULT 0,
		reason TEXT,
		approved_by TEXT NOT NULL
	);

	-- requirement I, 1:1 with positions
	CREATE TABLE IF NOT EXISTS requirement_one (
		position_id TEXT PRIMARY KEY REFERENCES positions(id),
		facility_id TEXT NOT NULL REFERENCES facilities(id),
		required_qualifications TEXT,
		required_experience_years INTEGER NOT NULL DEFAULT 0,
		recommended_skills TEXT,
		other_requirements TEXT,
		job_description TEXT,
		responsibilities TEXT,
		authority TEXT,
		base_salary_min INTEGER NOT NULL DEFAULT 0,
		base_salary_max INTEGER NOT NULL DEFAULT 0,
		allowances TEXT,
		raise_rules TEXT
	);

	-- requirement III, one per facility
	CREATE TABLE IF NOT EXISTS salary_increase_systems (
		facility_id TEXT PRIMARY KEY REFERENCES facilities(id),
		has_regular_increase BOOLEAN NOT NULL DEFAULT TRUE,
		increase_timing TEXT NOT NULL DEFAULT 'APRIL',
		increase_amount_per_step INTEGER NOT NULL DEFAULT 1000,
		max_steps_per_year INTEGER NOT NULL DEFAULT 4,
		has_special_increase BOOLEAN NOT NULL DEFAULT FALSE,
		special_increase_conditions TEXT,
		evaluation_affects_raise BOOLEAN NOT NULL DEFAULT TRUE,
		evaluation_criteria TEXT,
		notes TEXT
	);

	CREATE TABLE IF NOT EXISTS workplace_initiatives (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		item_number TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS improvement_plans (
		id TEXT PRIMARY KEY,
		provider_id TEXT NOT NULL REFERENCES providers(id),
		fiscal_year INTEGER NOT NULL,
		target_tier TEXT NOT NULL,
		determined_tier TEXT NOT NULL DEFAULT '',
		career_path_1 BOOLEAN NOT NULL DEFAULT FALSE,
		career_path_2 BOOLEAN NOT NULL DEFAULT FALSE,
		career_path_3 BOOLEAN NOT NULL DEFAULT FALSE,
		career_path_4 BOOLEAN NOT NULL DEFAULT FALSE,
		career_path_5 BOOLEAN NOT NULL DEFAULT FALSE,
		qualification_count INTEGER NOT NULL DEFAULT 0,
		work_style_count INTEGER NOT NULL DEFAULT 0,
		balance_count INTEGER NOT NULL DEFAULT 0,
		total_service_units INTEGER NOT NULL DEFAULT 0,
		addition_rate TEXT NOT NULL DEFAULT '0',
		estimated_amount INTEGER NOT NULL DEFAULT 0,
		total_salary_increase INTEGER NOT NULL DEFAULT 0,
		base_salary_increase INTEGER NOT NULL DEFAULT 0,
		allowance_increase INTEGER NOT NULL DEFAULT 0,
		bonus_increase INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'draft',
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		submitted_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_plans_provider_year
		ON improvement_plans(provider_id, fiscal_year);

	CREATE TABLE IF NOT EXISTS plan_facilities (
		plan_id TEXT NOT NULL REFERENCES improvement_plans(id),
		facility_id TEXT NOT NULL REFERENCES facilities(id),
		position INTEGER NOT NULL,
		PRIMARY KEY (plan_id, facility_id)
	);

	CREATE TABLE IF NOT EXISTS plan_initiatives (
		plan_id TEXT NOT NULL REFERENCES improvement_plans(id),
		initiative_id TEXT NOT NULL REFERENCES workplace_initiatives(id),
		position INTEGER NOT NULL,
		PRIMARY KEY (plan_id, initiative_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data except the initiative catalog (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// children first so foreign keys hold
	tables := []string{
		"plan_initiatives", "plan_facilities", "improvement_plans",
		"promotion_criteria", "training_participants", "training_records", "training_plans",
		"promotion_records", "staff_evaluations", "staff_members",
		"requirement_one", "wage_tables", "positions",
		"salary_increase_systems", "facilities", "providers",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func formatDate(d generic.Date) sql.NullString {
	return nullString(d.String())
}

func parseDate(ns sql.NullString) (generic.Date, error) {
	if !ns.Valid || ns.String == "" {
		return generic.Date{}, nil
	}
	d, err := generic.ParseDate(ns.String)
	if err != nil {
		return generic.Date{}, fmt.Errorf("parse date %q: %w", ns.String, err)
	}
	return d, nil
}

func parseDecimal(s, what string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", what, s, err)
	}
	return d, nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}

func isForeignKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// translate maps constraint failures onto generic sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case isUniqueConstraintError(err):
		return fmt.Errorf("%s already exists: %w", what, generic.ErrConflict)
	case isForeignKeyError(err):
		return fmt.Errorf("%s references a missing record: %w", what, generic.ErrNotFound)
	default:
		return fmt.Errorf("failed to save %s: %w", what, err)
	}
}
