package storage

import (
	"context"

	"github.com/agendaly/agendaly-api/internal/model"
)

const platformPaymentCols = `id, business_id, amount, method, reference, receipt_url, status, created_at`

func (s *Store) CreatePlatformPayment(ctx context.Context, p model.PlatformPayment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO platform_payments (`+platformPaymentCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.BusinessID, p.Amount, p.Method, p.Reference, p.ReceiptURL, p.Status, p.CreatedAt)
	return wrap("platform payment", err)
}

func (s *Store) ListPlatformPayments(ctx context.Context, businessIDs []string) ([]model.PlatformPayment, error) {
	query := `SELECT ` + platformPaymentCols + ` FROM platform_payments`
	var args []any
	if businessIDs != nil {
		query += ` WHERE business_id = ANY($1::text[])`
		args = append(args, businessIDs)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.PlatformPayment{}
	for rows.Next() {
		var p model.PlatformPayment
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.Amount, &p.Method,
			&p.Reference, &p.ReceiptURL, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
