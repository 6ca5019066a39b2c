package handlers

import (
	"net/http"

	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

// appointmentReport aggregates visible appointments by status.
func (h *Handler) appointmentReport(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	qs := r.URL.Query()
	q, err := visibility.Appointments(p, visibility.AppointmentFilter{
		BusinessID: qs.Get("business_id"),
		DateFrom:   qs.Get("date_from"),
		DateTo:     qs.Get("date_to"),
	}, nil)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	counts, err := h.store.AppointmentStatusCounts(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":     total,
		"by_status": counts,
	})
}

// incomeReport sums settled income per visible business.
func (h *Handler) incomeReport(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	scope := platformScope(p)
	byBusiness, err := h.store.CompletedIncomeByBusiness(r.Context(), scope)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	total := 0.0
	for _, v := range byBusiness {
		total += v
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"total":       total,
		"by_business": byBusiness,
	})
}

// clientReport counts distinct clients among visible appointments.
func (h *Handler) clientReport(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	q, err := visibility.Appointments(p, visibility.AppointmentFilter{
		BusinessID: r.URL.Query().Get("business_id"),
	}, nil)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	n, err := h.store.DistinctClientCount(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"clients": n})
}
