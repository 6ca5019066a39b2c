package storage

import (
	"context"
	"time"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

const appointmentCols = `id, business_id, service_id, staff_id, client_id, date, status, price_final, notes, created_at`

func scanAppointment(row interface{ Scan(...any) error }) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(&a.ID, &a.BusinessID, &a.ServiceID, &a.StaffID, &a.ClientID,
		&a.Date, &a.Status, &a.PriceFinal, &a.Notes, &a.CreatedAt)
	return a, err
}

func (s *Store) CreateAppointment(ctx context.Context, a model.Appointment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO appointments (`+appointmentCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.BusinessID, a.ServiceID, a.StaffID, a.ClientID,
		a.Date, a.Status, a.PriceFinal, a.Notes, a.CreatedAt)
	return wrap("appointment", err)
}

func (s *Store) AppointmentByID(ctx context.Context, id string) (model.Appointment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	return a, wrap("appointment", err)
}

func (s *Store) ListAppointments(ctx context.Context, q *visibility.Query) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appointmentCols+` FROM appointments`+q.Clause(1)+` ORDER BY date DESC`,
		q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) UpdateAppointment(ctx context.Context, a model.Appointment) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments
		SET date = $2, status = $3, price_final = $4, notes = $5
		WHERE id = $1`,
		a.ID, a.Date, a.Status, a.PriceFinal, a.Notes)
	if err != nil {
		return wrap("appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("appointment", errNoRows)
	}
	return nil
}

func (s *Store) DeleteAppointment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return wrap("appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return wrap("appointment", errNoRows)
	}
	return nil
}

// CompleteIfOpen flips an appointment to attended only if it is still
// open, in one statement. Two racing completion requests cannot both
// win: the loser matches zero rows and gets a conflict.
func (s *Store) CompleteIfOpen(ctx context.Context, id string, priceFinal *float64) (model.Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2, price_final = COALESCE($3, price_final)
		WHERE id = $1 AND status NOT IN ($4, $5)
		RETURNING `+appointmentCols,
		id, model.AppointmentAttended, priceFinal,
		model.AppointmentAttended, model.AppointmentCancelled)
	a, err := scanAppointment(row)
	if apperr.IsNotFound(wrap("appointment", err)) {
		// distinguish a missing row from one already closed
		if _, lookupErr := s.AppointmentByID(ctx, id); lookupErr == nil {
			return model.Appointment{}, apperr.Conflict("appointment is already closed")
		}
		return model.Appointment{}, apperr.NotFound("appointment not found")
	}
	return a, wrap("appointment", err)
}

// AppointmentsForStaffDate lists the non-cancelled appointments of one
// staff member on one calendar day, for the availability endpoint.
func (s *Store) AppointmentsForStaffDate(ctx context.Context, staffID string, day time.Time) ([]model.Appointment, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := s.pool.Query(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE staff_id = $1 AND date >= $2 AND date < $3 AND status <> $4
		ORDER BY date`,
		staffID, start, start.AddDate(0, 0, 1), model.AppointmentCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AppointmentStatusCounts aggregates appointments by status for the
// reporting endpoints, scoped by the caller's visibility predicate.
func (s *Store) AppointmentStatusCounts(ctx context.Context, q *visibility.Query) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM appointments`+q.Clause(1)+` GROUP BY status`,
		q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// DistinctClientCount counts unique clients among the visible
// appointments.
func (s *Store) DistinctClientCount(ctx context.Context, q *visibility.Query) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT client_id) FROM appointments`+q.Clause(1),
		q.Args()...).Scan(&n)
	return n, err
}
