package storage

import (
	"context"
	"time"

	"github.com/agendaly/agendaly-api/internal/model"
)

const paymentCols = `id, business_id, appointment_id, amount, method, status, pending_reason, reference, receipt_url, notes, validated_at, confirmed_at, created_at`

func scanPayment(row interface{ Scan(...any) error }) (model.Payment, error) {
	var p model.Payment
	var apptID *string
	err := row.Scan(&p.ID, &p.BusinessID, &apptID, &p.Amount, &p.Method, &p.Status,
		&p.PendingReason, &p.Reference, &p.ReceiptURL, &p.Notes,
		&p.ValidatedAt, &p.ConfirmedAt, &p.CreatedAt)
	if apptID != nil {
		p.AppointmentID = *apptID
	}
	return p, err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Store) CreatePayment(ctx context.Context, p model.Payment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payments (`+paymentCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.BusinessID, nullable(p.AppointmentID), p.Amount, p.Method, p.Status,
		p.PendingReason, p.Reference, p.ReceiptURL, p.Notes,
		p.ValidatedAt, p.ConfirmedAt, p.CreatedAt)
	return wrap("payment", err)
}

func (s *Store) PaymentByAppointment(ctx context.Context, appointmentID string) (model.Payment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+paymentCols+` FROM payments
		WHERE appointment_id = $1
		ORDER BY created_at DESC LIMIT 1`, appointmentID)
	p, err := scanPayment(row)
	return p, wrap("payment", err)
}

func (s *Store) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus, method string, validatedAt, confirmedAt *time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE payments
		SET status = $2,
		    method = COALESCE(NULLIF($3, ''), method),
		    validated_at = COALESCE($4, validated_at),
		    confirmed_at = COALESCE($5, confirmed_at)
		WHERE id = $1`,
		id, status, method, validatedAt, confirmedAt)
	if err != nil {
		return wrap("payment", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("payment", errNoRows)
	}
	return nil
}

func (s *Store) ListPaymentsByStatus(ctx context.Context, businessID string, status model.PaymentStatus) ([]model.Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+paymentCols+` FROM payments
		WHERE business_id = $1 AND status = $2
		ORDER BY created_at DESC`, businessID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// IncomeSummary is one bucket of the finance report.
type IncomeSummary struct {
	Completed         float64 `json:"completed"`
	PendingValidation float64 `json:"pending_validation"`
	PendingPayment    float64 `json:"pending_payment"`
	Count             int     `json:"count"`
}

// IncomeForBusiness sums payment amounts by lifecycle bucket within an
// optional date window (zero times mean unbounded).
func (s *Store) IncomeForBusiness(ctx context.Context, businessID string, from, to time.Time) (IncomeSummary, error) {
	var sum IncomeSummary
	err := s.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = $2), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = $3), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = $4), 0),
			COUNT(*)
		FROM payments
		WHERE business_id = $1
		  AND ($5::timestamptz IS NULL OR created_at >= $5)
		  AND ($6::timestamptz IS NULL OR created_at < $6)`,
		businessID,
		model.PaymentCompleted, model.PaymentPendingValidation, model.PaymentPendingPayment,
		nullTime(from), nullTime(to)).
		Scan(&sum.Completed, &sum.PendingValidation, &sum.PendingPayment, &sum.Count)
	return sum, err
}

// CompletedIncomeByBusiness aggregates settled income per business for
// the cross-tenant income report.
func (s *Store) CompletedIncomeByBusiness(ctx context.Context, businessIDs []string) (map[string]float64, error) {
	query := `SELECT business_id, COALESCE(SUM(amount), 0) FROM payments WHERE status = $1`
	args := []any{model.PaymentCompleted}
	if businessIDs != nil {
		query += ` AND business_id = ANY($2::text[])`
		args = append(args, businessIDs)
	}
	query += ` GROUP BY business_id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]float64{}
	for rows.Next() {
		var id string
		var total float64
		if err := rows.Scan(&id, &total); err != nil {
			return nil, err
		}
		out[id] = total
	}
	return out, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
