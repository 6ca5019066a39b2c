package handlers

import (
	"time"

	"github.com/agendaly/agendaly-api/internal/model"
)

// userDTO is the wire shape of a user; credentials never leave the
// server.
type userDTO struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	Businesses []string  `json:"businesses"`
	IsActive   bool      `json:"is_active"`
	Language   string    `json:"language"`
	CreatedAt  time.Time `json:"created_at"`
}

func toUserDTO(u model.User) userDTO {
	businesses := u.Businesses
	if businesses == nil {
		businesses = []string{}
	}
	return userDTO{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Phone:      u.Phone,
		Role:       string(u.Role),
		Businesses: businesses,
		IsActive:   u.IsActive,
		Language:   u.Language,
		CreatedAt:  u.CreatedAt,
	}
}

func toUserDTOs(users []model.User) []userDTO {
	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out
}

type businessDTO struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Address       string         `json:"address"`
	Phone         string         `json:"phone"`
	Email         string         `json:"email"`
	PaymentConfig map[string]any `json:"payment_config,omitempty"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toBusinessDTO(b model.Business, includeConfig bool) businessDTO {
	dto := businessDTO{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		Phone:       b.Phone,
		Email:       b.Email,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
	}
	if includeConfig {
		dto.PaymentConfig = b.PaymentConfig
	}
	return dto
}

type appointmentDTO struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	ServiceID  string    `json:"service_id"`
	StaffID    string    `json:"staff_id"`
	ClientID   string    `json:"client_id"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	PriceFinal *float64  `json:"price_final"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

func toAppointmentDTO(a model.Appointment) appointmentDTO {
	return appointmentDTO{
		ID:         a.ID,
		BusinessID: a.BusinessID,
		ServiceID:  a.ServiceID,
		StaffID:    a.StaffID,
		ClientID:   a.ClientID,
		Date:       a.Date,
		Status:     string(a.Status),
		PriceFinal: a.PriceFinal,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
	}
}

func toAppointmentDTOs(appts []model.Appointment) []appointmentDTO {
	out := make([]appointmentDTO, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentDTO(a))
	}
	return out
}
