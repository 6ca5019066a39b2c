package storage

import (
	"context"

	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

const staffCols = `id, user_id, business_id, service_ids, schedule, is_active, created_at`

func scanStaff(row interface{ Scan(...any) error }) (model.Staff, error) {
	var st model.Staff
	err := row.Scan(&st.ID, &st.UserID, &st.BusinessID, &st.ServiceIDs,
		&st.Schedule, &st.IsActive, &st.CreatedAt)
	return st, err
}

func (s *Store) CreateStaff(ctx context.Context, st model.Staff) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO staff (`+staffCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		st.ID, st.UserID, st.BusinessID, st.ServiceIDs, st.Schedule, st.IsActive, st.CreatedAt)
	return wrap("staff member", err)
}

func (s *Store) StaffByID(ctx context.Context, id string) (model.Staff, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id)
	st, err := scanStaff(row)
	return st, wrap("staff member", err)
}

func (s *Store) ActiveStaff(ctx context.Context, id string) (model.Staff, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+staffCols+` FROM staff WHERE id = $1 AND is_active = TRUE`, id)
	st, err := scanStaff(row)
	return st, wrap("staff member", err)
}

func (s *Store) ListStaff(ctx context.Context, q *visibility.Query) ([]model.Staff, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+staffCols+` FROM staff`+q.Clause(1)+` ORDER BY created_at DESC`,
		q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Staff{}
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) UpdateStaff(ctx context.Context, st model.Staff) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE staff
		SET service_ids = $2, schedule = $3, is_active = $4
		WHERE id = $1`,
		st.ID, st.ServiceIDs, st.Schedule, st.IsActive)
	if err != nil {
		return wrap("staff member", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("staff member", errNoRows)
	}
	return nil
}

// StaffIDsForUser returns the staff record ids a user holds across
// businesses. Staff principals are scoped by these, not by user id.
func (s *Store) StaffIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM staff WHERE user_id = $1`, userID)
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
