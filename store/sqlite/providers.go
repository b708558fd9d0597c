package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/warp/carepath/facility"
	"github.com/warp/carepath/generic"
)

// =============================================================================
// PROVIDER STORE
// =============================================================================

// SaveProvider inserts or updates a provider.
func (s *Store) SaveProvider(ctx context.Context, p facility.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO providers (id, name, corporate_number, address, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			corporate_number = excluded.corporate_number,
			address = excluded.address,
			phone = excluded.phone
	`

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, nullString(p.CorporateNumber), nullString(p.Address), nullString(p.Phone),
		formatTime(time.Now()),
	)
	return translate(err, "provider")
}

// GetProvider returns nil, nil when the provider does not exist.
func (s *Store) GetProvider(ctx context.Context, id generic.ProviderID) (*facility.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := scanProvider(s.db.QueryRowContext(ctx,
		"SELECT id, name, corporate_number, address, phone FROM providers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProviders returns all providers ordered by name.
func (s *Store) ListProviders(ctx context.Context) ([]facility.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, corporate_number, address, phone FROM providers ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []facility.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// ProviderExists implements subsidy.PlanStore.
func (s *Store) ProviderExists(ctx context.Context, id generic.ProviderID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM providers WHERE id = ?", id).Scan(&count)
	return count > 0, err
}

func scanProvider(row rowScanner) (facility.Provider, error) {
	var (
		p                      facility.Provider
		corporate, addr, phone sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &corporate, &addr, &phone); err != nil {
		return p, err
	}
	p.CorporateNumber = corporate.String
	p.Address = addr.String
	p.Phone = phone.String
	return p, nil
}

// =============================================================================
// FACILITY STORE
// =============================================================================

const facilityColumns = `id, provider_id, name, service_type, facility_number, address, phone, capacity, staff_count`

// SaveFacility inserts or updates a facility.
func (s *Store) SaveFacility(ctx context.Context, f facility.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO facilities (` + facilityColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			service_type = excluded.service_type,
			facility_number = excluded.facility_number,
			address = excluded.address,
			phone = excluded.phone,
			capacity = excluded.capacity,
			staff_count = excluded.staff_count
	`

	_, err := s.db.ExecContext(ctx, query,
		f.ID, f.ProviderID, f.Name, f.ServiceType, f.FacilityNumber,
		nullString(f.Address), nullString(f.Phone), f.Capacity, f.StaffCount,
		formatTime(time.Now()),
	)
	return translate(err, "facility")
}

// GetFacility returns nil, nil when the facility does not exist.
func (s *Store) GetFacility(ctx context.Context, id generic.FacilityID) (*facility.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := scanFacility(s.db.QueryRowContext(ctx,
		"SELECT "+facilityColumns+" FROM facilities WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFacilities returns facilities, optionally filtered by provider.
func (s *Store) ListFacilities(ctx context.Context, providerID generic.ProviderID) ([]facility.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + facilityColumns + " FROM facilities"
	var args []any
	if providerID != "" {
		query += " WHERE provider_id = ?"
		args = append(args, providerID)
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facilities []facility.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}

// FacilityIDsOf implements subsidy.PlanStore.
func (s *Store) FacilityIDsOf(ctx context.Context, id generic.ProviderID) ([]generic.FacilityID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM facilities WHERE provider_id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []generic.FacilityID
	for rows.Next() {
		var fid generic.FacilityID
		if err := rows.Scan(&fid); err != nil {
			return nil, err
		}
		ids = append(ids, fid)
	}
	return ids, rows.Err()
}

func scanFacility(row rowScanner) (facility.Facility, error) {
	var (
		f           facility.Facility
		addr, phone sql.NullString
	)
	err := row.Scan(&f.ID, &f.ProviderID, &f.Name, &f.ServiceType, &f.FacilityNumber,
		&addr, &phone, &f.Capacity, &f.StaffCount)
	if err != nil {
		return f, err
	}
	f.Address = addr.String
	f.Phone = phone.String
	return f, nil
}
