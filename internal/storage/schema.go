package storage

import "context"

// EnsureSchema creates the tables and indexes on startup. Statements
// are idempotent so repeated boots are safe.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			phone         TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL,
			businesses    TEXT[] NOT NULL DEFAULT '{}',
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			language      TEXT NOT NULL DEFAULT 'en',
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS businesses (
			id             TEXT PRIMARY KEY,
			owner_id       TEXT NOT NULL,
			name           TEXT NOT NULL,
			description    TEXT NOT NULL DEFAULT '',
			address        TEXT NOT NULL DEFAULT '',
			phone          TEXT NOT NULL DEFAULT '',
			email          TEXT NOT NULL DEFAULT '',
			payment_config JSONB NOT NULL DEFAULT '{}',
			is_active      BOOLEAN NOT NULL DEFAULT TRUE,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS services (
			id               TEXT PRIMARY KEY,
			business_id      TEXT NOT NULL,
			name             TEXT NOT NULL,
			description      TEXT NOT NULL DEFAULT '',
			duration_minutes INTEGER NOT NULL DEFAULT 30,
			price            DOUBLE PRECISION,
			staff_ids        TEXT[] NOT NULL DEFAULT '{}',
			is_active        BOOLEAN NOT NULL DEFAULT TRUE,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS staff (
			id          TEXT PRIMARY KEY,
			user_id     TEXT NOT NULL,
			business_id TEXT NOT NULL,
			service_ids TEXT[] NOT NULL DEFAULT '{}',
			schedule    JSONB NOT NULL DEFAULT '{}',
			is_active   BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, business_id)
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id          TEXT PRIMARY KEY,
			business_id TEXT NOT NULL,
			service_id  TEXT NOT NULL,
			staff_id    TEXT NOT NULL,
			client_id   TEXT NOT NULL,
			date        TIMESTAMPTZ NOT NULL,
			status      TEXT NOT NULL DEFAULT 'pending',
			price_final DOUBLE PRECISION,
			notes       TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			type       TEXT NOT NULL DEFAULT '',
			title      TEXT NOT NULL DEFAULT '',
			message    TEXT NOT NULL DEFAULT '',
			read       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id             TEXT PRIMARY KEY,
			business_id    TEXT NOT NULL,
			appointment_id TEXT,
			amount         DOUBLE PRECISION NOT NULL,
			method         TEXT NOT NULL,
			status         TEXT NOT NULL,
			pending_reason TEXT NOT NULL DEFAULT '',
			reference      TEXT NOT NULL DEFAULT '',
			receipt_url    TEXT NOT NULL DEFAULT '',
			notes          TEXT NOT NULL DEFAULT '',
			validated_at   TIMESTAMPTZ,
			confirmed_at   TIMESTAMPTZ,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS platform_payments (
			id          TEXT PRIMARY KEY,
			business_id TEXT NOT NULL,
			amount      DOUBLE PRECISION NOT NULL,
			method      TEXT NOT NULL,
			reference   TEXT NOT NULL DEFAULT '',
			receipt_url TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'completed',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_businesses ON users USING GIN (businesses)`,
		`CREATE INDEX IF NOT EXISTS idx_services_business ON services (business_id)`,
		`CREATE INDEX IF NOT EXISTS idx_staff_business ON staff (business_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_business ON appointments (business_id)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_staff_date ON appointments (staff_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_appointments_client ON appointments (client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_business ON payments (business_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_appointment ON payments (appointment_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
