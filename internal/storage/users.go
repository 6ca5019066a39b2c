package storage

import (
	"context"

	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

const userCols = `id, email, first_name, last_name, phone, role, businesses, is_active, language, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Phone,
		&u.Role, &u.Businesses, &u.IsActive, &u.Language, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u model.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (`+userCols+`)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Phone,
		u.Role, u.Businesses, u.IsActive, u.Language, u.PasswordHash, u.CreatedAt)
	return wrap("user", err)
}

func (s *Store) UserByID(ctx context.Context, id string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	return u, wrap("user", err)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = lower($1)`, email)
	u, err := scanUser(row)
	return u, wrap("user", err)
}

func (s *Store) ListUsers(ctx context.Context, q *visibility.Query) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userCols+` FROM users`+q.Clause(1)+` ORDER BY created_at DESC`,
		q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUser(ctx context.Context, u model.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET email = lower($2), first_name = $3, last_name = $4, phone = $5,
		    role = $6, businesses = $7, is_active = $8, language = $9
		WHERE id = $1`,
		u.ID, u.Email, u.FirstName, u.LastName, u.Phone,
		u.Role, u.Businesses, u.IsActive, u.Language)
	if err != nil {
		return wrap("user", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("user", errNoRows)
	}
	return nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return wrap("user", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("user", errNoRows)
	}
	return nil
}

func (s *Store) SetUserBusinesses(ctx context.Context, id string, businesses []string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET businesses = $2 WHERE id = $1`, id, businesses)
	if err != nil {
		return wrap("user", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("user", errNoRows)
	}
	return nil
}

// SuperAdminExists backs the one-shot bootstrap endpoint.
func (s *Store) SuperAdminExists(ctx context.Context) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE role = $1)`,
		string(model.RoleSuperAdmin)).Scan(&exists)
	return exists, err
}
