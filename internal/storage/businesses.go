package storage

import (
	"context"

	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

const businessCols = `id, owner_id, name, description, address, phone, email, payment_config, is_active, created_at`

func scanBusiness(row interface{ Scan(...any) error }) (model.Business, error) {
	var b model.Business
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Description, &b.Address,
		&b.Phone, &b.Email, &b.PaymentConfig, &b.IsActive, &b.CreatedAt)
	return b, err
}

func (s *Store) CreateBusiness(ctx context.Context, b model.Business) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO businesses (`+businessCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.OwnerID, b.Name, b.Description, b.Address,
		b.Phone, b.Email, b.PaymentConfig, b.IsActive, b.CreatedAt)
	return wrap("business", err)
}

func (s *Store) BusinessByID(ctx context.Context, id string) (model.Business, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+businessCols+` FROM businesses WHERE id = $1`, id)
	b, err := scanBusiness(row)
	return b, wrap("business", err)
}

// ActiveBusiness serves public traffic: inactive businesses do not exist
// as far as the booking page is concerned.
func (s *Store) ActiveBusiness(ctx context.Context, id string) (model.Business, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+businessCols+` FROM businesses WHERE id = $1 AND is_active = TRUE`, id)
	b, err := scanBusiness(row)
	return b, wrap("business", err)
}

func (s *Store) ListBusinesses(ctx context.Context, q *visibility.Query) ([]model.Business, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+businessCols+` FROM businesses`+q.Clause(1)+` ORDER BY created_at DESC`,
		q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Business{}
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) UpdateBusiness(ctx context.Context, b model.Business) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE businesses
		SET name = $2, description = $3, address = $4, phone = $5, email = $6, is_active = $7
		WHERE id = $1`,
		b.ID, b.Name, b.Description, b.Address, b.Phone, b.Email, b.IsActive)
	if err != nil {
		return wrap("business", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("business", errNoRows)
	}
	return nil
}

func (s *Store) UpdateBusinessPaymentConfig(ctx context.Context, id string, cfg map[string]any) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE businesses SET payment_config = $2 WHERE id = $1`, id, cfg)
	if err != nil {
		return wrap("business", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("business", errNoRows)
	}
	return nil
}

// BusinessOwnerIDs returns the owner ids of the given businesses, used
// to widen an admin's user listing to include the owners they manage.
func (s *Store) BusinessOwnerIDs(ctx context.Context, businessIDs []string) ([]string, error) {
	if len(businessIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT owner_id FROM businesses WHERE id = ANY($1::text[])`, businessIDs)
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
