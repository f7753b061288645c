package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/salon-booking/internal/model"
)

// CatalogRepo reads the service and specialist catalog.  The catalog is
// written only by the seed command.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// ListServices returns every service ordered by category then name.
func (r *CatalogRepo) ListServices(ctx context.Context) ([]model.Service, error) {
	const q = `SELECT id, name, price, minutes, category, description
	           FROM services
	           ORDER BY category, name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Service, 0)
	for rows.Next() {
		var s model.Service
		var desc sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.Minutes, &s.Category, &desc); err != nil {
			return nil, err
		}
		s.Description = desc.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListSpecialists returns every specialist ordered by specialties then name.
func (r *CatalogRepo) ListSpecialists(ctx context.Context) ([]model.Specialist, error) {
	const q = `SELECT id, name, name_en, specialties, rating, available
	           FROM professionals
	           ORDER BY specialties, name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Specialist, 0)
	for rows.Next() {
		sp, err := scanSpecialist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sp)
	}
	return out, rows.Err()
}

// GetServiceTx loads one service inside tx.  It returns (nil, nil) when
// the id is unknown so callers can fall back to payload values.
func (r *CatalogRepo) GetServiceTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Service, error) {
	const q = `SELECT id, name, price, minutes, category, description FROM services WHERE id = ?`
	var s model.Service
	var desc sql.NullString
	err := tx.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.Price, &s.Minutes, &s.Category, &desc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Description = desc.String
	return &s, nil
}

// GetSpecialistTx loads one specialist inside tx, returning (nil, nil)
// when the id is unknown.
func (r *CatalogRepo) GetSpecialistTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Specialist, error) {
	const q = `SELECT id, name, name_en, specialties, rating, available FROM professionals WHERE id = ?`
	sp, err := scanSpecialist(tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sp, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpecialist(row rowScanner) (*model.Specialist, error) {
	var sp model.Specialist
	var nameEn sql.NullString
	var rating sql.NullFloat64
	if err := row.Scan(&sp.ID, &sp.Name, &nameEn, &sp.Specialties, &rating, &sp.Available); err != nil {
		return nil, err
	}
	sp.NameEn = nameEn.String
	if rating.Valid {
		v := rating.Float64
		sp.Rating = &v
	}
	return &sp, nil
}

// ResetTx removes all catalog and booking rows.  Used by the seed command
// before loading fresh data.
func (r *CatalogRepo) ResetTx(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"booking_items", "bookings", "services", "professionals"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// CreateServiceTx inserts a service.  A non-zero s.ID is inserted as is;
// otherwise the generated id is stored on s.
func (r *CatalogRepo) CreateServiceTx(ctx context.Context, tx *sql.Tx, s *model.Service) error {
	const q = `INSERT INTO services (id, name, price, minutes, category, description) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, nullID(s.ID), s.Name, s.Price, s.Minutes, s.Category, s.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if s.ID == 0 {
		s.ID = uint64(id)
	}
	return nil
}

// CreateSpecialistTx inserts a specialist.  A non-zero sp.ID is inserted
// as is, which lets the seed pin the "any specialist" sentinel to id 1.
func (r *CatalogRepo) CreateSpecialistTx(ctx context.Context, tx *sql.Tx, sp *model.Specialist) error {
	const q = `INSERT INTO professionals (id, name, name_en, specialties, rating, available) VALUES (?, ?, ?, ?, ?, ?)`
	var rating any
	if sp.Rating != nil {
		rating = *sp.Rating
	}
	res, err := tx.ExecContext(ctx, q, nullID(sp.ID), sp.Name, sp.NameEn, sp.Specialties, rating, sp.Available)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if sp.ID == 0 {
		sp.ID = uint64(id)
	}
	return nil
}
