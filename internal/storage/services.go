package storage

import (
	"context"

	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

const serviceCols = `id, business_id, name, description, duration_minutes, price, staff_ids, is_active, created_at`

func scanService(row interface{ Scan(...any) error }) (model.Service, error) {
	var v model.Service
	err := row.Scan(&v.ID, &v.BusinessID, &v.Name, &v.Description,
		&v.DurationMinutes, &v.Price, &v.StaffIDs, &v.IsActive, &v.CreatedAt)
	return v, err
}

func (s *Store) CreateService(ctx context.Context, v model.Service) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO services (`+serviceCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		v.ID, v.BusinessID, v.Name, v.Description,
		v.DurationMinutes, v.Price, v.StaffIDs, v.IsActive, v.CreatedAt)
	return wrap("service", err)
}

func (s *Store) ServiceByID(ctx context.Context, id string) (model.Service, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+serviceCols+` FROM services WHERE id = $1`, id)
	v, err := scanService(row)
	return v, wrap("service", err)
}

func (s *Store) ActiveService(ctx context.Context, id string) (model.Service, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+serviceCols+` FROM services WHERE id = $1 AND is_active = TRUE`, id)
	v, err := scanService(row)
	return v, wrap("service", err)
}

func (s *Store) ListServices(ctx context.Context, q *visibility.Query) ([]model.Service, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+serviceCols+` FROM services`+q.Clause(1)+` ORDER BY created_at DESC`,
		q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Service{}
	for rows.Next() {
		v, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) UpdateService(ctx context.Context, v model.Service) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE services
		SET name = $2, description = $3, duration_minutes = $4, price = $5,
		    staff_ids = $6, is_active = $7
		WHERE id = $1`,
		v.ID, v.Name, v.Description, v.DurationMinutes, v.Price, v.StaffIDs, v.IsActive)
	if err != nil {
		return wrap("service", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("service", errNoRows)
	}
	return nil
}
