package model

import "time"

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleBusiness   Role = "business"
	RoleStaff      Role = "staff"
	RoleClient     Role = "client"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleBusiness, RoleStaff, RoleClient:
		return true
	}
	return false
}

// Principal is the identity-resolved view of a user: everything
// authorization decisions need and nothing more.
type Principal struct {
	ID         string
	Role       Role
	Businesses []string
	IsActive   bool
}

func (p Principal) MemberOf(businessID string) bool {
	for _, id := range p.Businesses {
		if id == businessID {
			return true
		}
	}
	return false
}

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
	Businesses   []string
	IsActive     bool
	Language     string
	PasswordHash string
	CreatedAt    time.Time
}

func (u User) Principal() Principal {
	return Principal{
		ID:         u.ID,
		Role:       u.Role,
		Businesses: u.Businesses,
		IsActive:   u.IsActive,
	}
}

type Business struct {
	ID            string
	OwnerID       string
	Name          string
	Description   string
	Address       string
	Phone         string
	Email         string
	PaymentConfig map[string]any
	IsActive      bool
	CreatedAt     time.Time
}

// DefaultPaymentConfig matches what a freshly created business supports:
// nothing until the owner switches a method on.
func DefaultPaymentConfig() map[string]any {
	return map[string]any{
		"card":     map[string]any{"enabled": false},
		"transfer": map[string]any{"enabled": false},
	}
}

type Service struct {
	ID              string    `json:"id"`
	BusinessID      string    `json:"business_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           *float64  `json:"price"`
	StaffIDs        []string  `json:"staff_ids"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

type DayHours struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Enabled bool   `json:"enabled"`
}

// WeekSchedule is the weekly working template keyed by lowercase weekday name.
type WeekSchedule map[string]DayHours

func DefaultWeekSchedule() WeekSchedule {
	s := WeekSchedule{}
	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		s[day] = DayHours{Start: "09:00", End: "18:00", Enabled: true}
	}
	s["saturday"] = DayHours{Start: "09:00", End: "14:00", Enabled: false}
	s["sunday"] = DayHours{Start: "09:00", End: "14:00", Enabled: false}
	return s
}

type Staff struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	BusinessID string       `json:"business_id"`
	ServiceIDs []string     `json:"service_ids"`
	Schedule   WeekSchedule `json:"schedule"`
	IsActive   bool         `json:"is_active"`
	CreatedAt  time.Time    `json:"created_at"`
}

type AppointmentStatus string

const (
	AppointmentPending     AppointmentStatus = "pending"
	AppointmentConfirmed   AppointmentStatus = "confirmed"
	AppointmentCancelled   AppointmentStatus = "cancelled"
	AppointmentRescheduled AppointmentStatus = "rescheduled"
	AppointmentAttended    AppointmentStatus = "attended"
	AppointmentNoShow      AppointmentStatus = "no_show"
)

func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled,
		AppointmentRescheduled, AppointmentAttended, AppointmentNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID         string
	BusinessID string
	ServiceID  string
	StaffID    string
	ClientID   string
	Date       time.Time
	Status     AppointmentStatus
	PriceFinal *float64
	Notes      string
	CreatedAt  time.Time
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodPending  PaymentMethod = "pending"
)

type PaymentStatus string

const (
	PaymentCompleted         PaymentStatus = "completed"
	PaymentPendingValidation PaymentStatus = "pending_validation"
	PaymentPendingPayment    PaymentStatus = "pending_payment"
	PaymentRejected          PaymentStatus = "rejected"
)

type Payment struct {
	ID            string        `json:"id"`
	BusinessID    string        `json:"business_id"`
	AppointmentID string        `json:"appointment_id,omitempty"` // empty for standalone finance entries
	Amount        float64       `json:"amount"`
	Method        string        `json:"method"`
	Status        PaymentStatus `json:"status"`
	PendingReason string        `json:"pending_reason,omitempty"`
	Reference     string        `json:"reference,omitempty"`
	ReceiptURL    string        `json:"receipt_url,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	ValidatedAt   *time.Time    `json:"validated_at,omitempty"`
	ConfirmedAt   *time.Time    `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// PlatformPayment records money a business pays to the platform itself,
// as opposed to Payment, which is a business charging its client.
type PlatformPayment struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Amount     float64   `json:"amount"`
	Method     string    `json:"method"`
	Reference  string    `json:"reference,omitempty"`
	ReceiptURL string    `json:"receipt_url,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
