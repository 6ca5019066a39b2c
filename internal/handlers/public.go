package handlers

import (
	"net/http"
	"time"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/availability"
	"github.com/agendaly/agendaly-api/internal/booking"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

// The public surface is unauthenticated and only ever exposes the
// active catalog.

func (h *Handler) publicBusinesses(w http.ResponseWriter, r *http.Request) {
	q := visibility.NewQuery().Where("is_active = TRUE")
	businesses, err := h.store.ListBusinesses(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	out := make([]businessDTO, 0, len(businesses))
	for _, b := range businesses {
		out = append(out, toBusinessDTO(b, false))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) publicServices(w http.ResponseWriter, r *http.Request) {
	biz, err := h.store.ActiveBusiness(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	q := visibility.NewQuery().
		Where("business_id = ?", biz.ID).
		Where("is_active = TRUE")
	services, err := h.store.ListServices(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, services)
}

func (h *Handler) publicStaff(w http.ResponseWriter, r *http.Request) {
	svc, err := h.store.ActiveService(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	q := visibility.NewQuery().
		Where("business_id = ?", svc.BusinessID).
		Where("is_active = TRUE").
		Where("(service_ids @> ARRAY[?]::text[] OR id = ANY(?::text[]))", svc.ID, svc.StaffIDs)
	staff, err := h.store.ListStaff(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, staff)
}

func (h *Handler) publicAvailability(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.ActiveStaff(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	rawDate := r.URL.Query().Get("date")
	if rawDate == "" {
		h.writeErr(w, r, apperr.Validation("date is required (YYYY-MM-DD)"))
		return
	}
	day, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		h.writeErr(w, r, apperr.Validation("date must be YYYY-MM-DD"))
		return
	}

	slotMinutes := 30
	if raw := r.URL.Query().Get("service_id"); raw != "" {
		if svc, err := h.store.ActiveService(r.Context(), raw); err == nil && svc.DurationMinutes > 0 {
			slotMinutes = svc.DurationMinutes
		}
	}

	appts, err := h.store.AppointmentsForStaffDate(r.Context(), st.ID, day)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, availability.ForDay(st, day, appts, slotMinutes))
}

type publicBookRequest struct {
	BusinessID string    `json:"business_id"`
	ServiceID  string    `json:"service_id"`
	StaffID    string    `json:"staff_id"`
	Date       time.Time `json:"date"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Notes      string    `json:"notes"`
}

func (h *Handler) publicBook(w http.ResponseWriter, r *http.Request) {
	var req publicBookRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	res, err := h.booking.Book(r.Context(), booking.Request{
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		Date:       req.Date,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Notes:      req.Notes,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"appointment": toAppointmentDTO(res.Appointment),
		"new_client":  res.NewClient,
	})
}
