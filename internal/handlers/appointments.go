package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/appointment"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/notify"
	"github.com/agendaly/agendaly-api/internal/payment"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

func (h *Handler) listAppointments(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	staffIDs, err := h.staffIDs(r, p)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	qs := r.URL.Query()
	q, err := visibility.Appointments(p, visibility.AppointmentFilter{
		BusinessID: qs.Get("business_id"),
		StaffID:    qs.Get("staff_id"),
		ClientID:   qs.Get("client_id"),
		Status:     model.AppointmentStatus(qs.Get("status")),
		DateFrom:   qs.Get("date_from"),
		DateTo:     qs.Get("date_to"),
	}, staffIDs)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	appts, err := h.store.ListAppointments(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toAppointmentDTOs(appts))
}

type createAppointmentRequest struct {
	BusinessID string    `json:"business_id"`
	ServiceID  string    `json:"service_id"`
	StaffID    string    `json:"staff_id"`
	ClientID   string    `json:"client_id"`
	Date       time.Time `json:"date"`
	PriceFinal *float64  `json:"price_final"`
	Notes      string    `json:"notes"`
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req createAppointmentRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.BusinessID == "" || req.ServiceID == "" || req.StaffID == "" || req.Date.IsZero() {
		h.writeErr(w, r, apperr.Validation("business_id, service_id, staff_id and date are required"))
		return
	}

	// clients book for themselves; tenant roles book on a client's behalf
	if p.Role == model.RoleClient {
		req.ClientID = p.ID
	} else {
		if err := visibility.RequireTenant(p, req.BusinessID); err != nil {
			h.writeErr(w, r, err)
			return
		}
		if req.ClientID == "" {
			h.writeErr(w, r, apperr.Validation("client_id is required"))
			return
		}
	}

	svc, err := h.store.ServiceByID(r.Context(), req.ServiceID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	st, err := h.store.StaffByID(r.Context(), req.StaffID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if svc.BusinessID != req.BusinessID || st.BusinessID != req.BusinessID {
		h.writeErr(w, r, apperr.Validation("service and staff must belong to the business"))
		return
	}

	price := req.PriceFinal
	if price == nil {
		price = svc.Price
	}
	appt := model.Appointment{
		ID:         uuid.NewString(),
		BusinessID: req.BusinessID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		ClientID:   req.ClientID,
		Date:       req.Date.UTC(),
		Status:     model.AppointmentPending,
		PriceFinal: price,
		Notes:      req.Notes,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.CreateAppointment(r.Context(), appt); err != nil {
		h.writeErr(w, r, err)
		return
	}

	clientEmail := ""
	if client, err := h.store.UserByID(r.Context(), appt.ClientID); err == nil {
		clientEmail = client.Email
	}
	creationNotices(h.notifier, h.mailer, appt, st.UserID, clientEmail, p.ID)
	h.events.Publish(r.Context(), "appointment.created", appt.ID, map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
		"client_id":      appt.ClientID,
	})
	h.writeJSON(w, http.StatusCreated, toAppointmentDTO(appt))
}

func (h *Handler) getAppointment(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	staffIDs, err := h.staffIDs(r, p)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	appt, err := h.store.AppointmentByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanViewAppointment(p, appt, staffIDs); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toAppointmentDTO(appt))
}

type updateAppointmentRequest struct {
	Date       *time.Time `json:"date"`
	Status     *string    `json:"status"`
	PriceFinal *float64   `json:"price_final"`
	Notes      *string    `json:"notes"`
}

func (h *Handler) updateAppointment(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	staffIDs, err := h.staffIDs(r, p)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateAppointmentRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	appt, err := h.store.AppointmentByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanMutateAppointment(p, appt, staffIDs); err != nil {
		h.writeErr(w, r, err)
		return
	}

	upd := appointment.Update{
		Date:       req.Date,
		PriceFinal: req.PriceFinal,
		Notes:      req.Notes,
	}
	if req.Status != nil {
		s := model.AppointmentStatus(*req.Status)
		upd.Status = &s
	}

	// clients may move or cancel their own appointment, nothing else
	if p.Role == model.RoleClient {
		if req.PriceFinal != nil || req.Notes != nil {
			h.writeErr(w, r, apperr.Forbidden("clients may only reschedule or cancel"))
			return
		}
		if upd.Status != nil && *upd.Status != model.AppointmentCancelled {
			h.writeErr(w, r, apperr.Forbidden("clients may only reschedule or cancel"))
			return
		}
	}

	newStatus, statusChanged, err := appointment.Resolve(appt.Status, upd)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	oldDate := appt.Date
	appt.Status = newStatus
	if req.Date != nil {
		appt.Date = req.Date.UTC()
	}
	if req.PriceFinal != nil {
		appt.PriceFinal = req.PriceFinal
	}
	if req.Notes != nil {
		appt.Notes = *req.Notes
	}

	if err := h.store.UpdateAppointment(r.Context(), appt); err != nil {
		h.writeErr(w, r, err)
		return
	}

	// a date move on an already-rescheduled appointment changes no
	// status but still warrants the reschedule notices
	if statusChanged || !appt.Date.Equal(oldDate) {
		h.notifyStatusChange(r, appt, p)
	}
	h.events.Publish(r.Context(), "appointment.updated", appt.ID, map[string]any{
		"appointment_id": appt.ID,
		"status":         string(appt.Status),
	})
	h.writeJSON(w, http.StatusOK, toAppointmentDTO(appt))
}

type notifySender interface {
	Send(userID, typ, title, message string)
}

type mailEnqueuer interface {
	Enqueue(e notify.Email)
}

// creationNotices fans out the notices for a newly scheduled
// appointment: the client hears in-app and by email, the assigned staff
// member in-app unless they scheduled it themselves.
func creationNotices(n notifySender, m mailEnqueuer, appt model.Appointment, staffUserID, clientEmail, actorID string) {
	when := appt.Date.Format("2006-01-02 15:04")
	n.Send(appt.ClientID, "appointment_created", "Appointment scheduled",
		fmt.Sprintf("Your appointment on %s is pending confirmation", when))
	if staffUserID != "" && staffUserID != actorID {
		n.Send(staffUserID, "appointment_created", "New appointment",
			fmt.Sprintf("A new appointment was scheduled for %s", when))
	}
	if clientEmail != "" {
		m.Enqueue(notify.Email{
			To:      clientEmail,
			Subject: "Appointment scheduled",
			HTML:    fmt.Sprintf("<p>Your appointment on %s is pending confirmation.</p>", when),
		})
	}
}

// completionNotices tells the client and the assigned staff member that
// the appointment was marked attended.
func completionNotices(n notifySender, appt model.Appointment, staffUserID, actorID string) {
	n.Send(appt.ClientID, "appointment_attended", "Thanks for coming",
		"Your appointment was marked as attended")
	if staffUserID != "" && staffUserID != actorID {
		n.Send(staffUserID, "appointment_attended", "Appointment completed",
			fmt.Sprintf("The appointment on %s was marked as attended", appt.Date.Format("2006-01-02 15:04")))
	}
}

func (h *Handler) notifyStatusChange(r *http.Request, appt model.Appointment, actor model.Principal) {
	when := appt.Date.Format("2006-01-02 15:04")
	switch appt.Status {
	case model.AppointmentConfirmed:
		h.notifier.Send(appt.ClientID, "appointment_confirmed", "Appointment confirmed",
			fmt.Sprintf("Your appointment on %s is confirmed", when))
	case model.AppointmentCancelled:
		h.notifier.Send(appt.ClientID, "appointment_cancelled", "Appointment cancelled",
			fmt.Sprintf("Your appointment on %s was cancelled", when))
	case model.AppointmentRescheduled:
		h.notifier.Send(appt.ClientID, "appointment_rescheduled", "Appointment rescheduled",
			fmt.Sprintf("Your appointment moved to %s", when))
	case model.AppointmentNoShow:
		h.notifier.Send(appt.ClientID, "appointment_no_show", "Missed appointment",
			fmt.Sprintf("You missed your appointment on %s", when))
	}

	// the assigned staff member hears about every status change
	if st, err := h.store.StaffByID(r.Context(), appt.StaffID); err == nil && st.UserID != actor.ID {
		h.notifier.Send(st.UserID, "appointment_"+string(appt.Status), "Appointment update",
			fmt.Sprintf("An appointment on %s is now %s", when, appt.Status))
	}

	// confirmations, cancellations and reschedules also go out by email
	switch appt.Status {
	case model.AppointmentConfirmed, model.AppointmentCancelled, model.AppointmentRescheduled:
		if client, err := h.store.UserByID(r.Context(), appt.ClientID); err == nil {
			h.mailer.Enqueue(notify.Email{
				To:      client.Email,
				Subject: fmt.Sprintf("Appointment %s", appt.Status),
				HTML:    fmt.Sprintf("<p>Your appointment on %s is now %s.</p>", when, appt.Status),
			})
		}
	}

	// the business hears about client-driven changes
	if actor.Role == model.RoleClient {
		if biz, err := h.store.BusinessByID(r.Context(), appt.BusinessID); err == nil {
			h.notifier.Send(biz.OwnerID, "appointment_"+string(appt.Status), "Appointment update",
				fmt.Sprintf("A client changed an appointment on %s to %s", when, appt.Status))
		}
	}
}

func (h *Handler) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	appt, err := h.store.AppointmentByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanMutateAppointment(p, appt, nil); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.store.DeleteAppointment(r.Context(), appt.ID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.events.Publish(r.Context(), "appointment.deleted", appt.ID, map[string]any{
		"appointment_id": appt.ID,
	})
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type completeRequest struct {
	PriceFinal    *float64 `json:"price_final"`
	PaymentMethod string   `json:"payment_method"`
	PendingReason string   `json:"pending_reason"`
	Reference     string   `json:"reference"`
	Notes         string   `json:"notes"`
}

// completionPayment resolves the payment a completion request records.
// The method is mandatory: every attended appointment settles or defers
// exactly one payment.
func completionPayment(req completeRequest) (model.PaymentStatus, string, error) {
	if req.PaymentMethod == "" {
		return "", "", apperr.Validation("payment_method is required")
	}
	return payment.Initial(model.PaymentMethod(req.PaymentMethod), req.PendingReason)
}

// completeAppointment marks attendance and records the payment in one
// request. The payment is validated before the status flip, which is
// irreversible, and the flip itself is conditional in the store, so
// concurrent completions cannot double-charge.
func (h *Handler) completeAppointment(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness, model.RoleStaff)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	staffIDs, err := h.staffIDs(r, p)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req completeRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	payStatus, payReason, err := completionPayment(req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	appt, err := h.store.AppointmentByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanMutateAppointment(p, appt, staffIDs); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := appointment.CanComplete(appt.Status); err != nil {
		h.writeErr(w, r, err)
		return
	}

	appt, err = h.store.CompleteIfOpen(r.Context(), appt.ID, req.PriceFinal)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	amount := 0.0
	if appt.PriceFinal != nil {
		amount = *appt.PriceFinal
	}
	pm := model.Payment{
		ID:            uuid.NewString(),
		BusinessID:    appt.BusinessID,
		AppointmentID: appt.ID,
		Amount:        amount,
		Method:        req.PaymentMethod,
		Status:        payStatus,
		PendingReason: payReason,
		Reference:     req.Reference,
		Notes:         req.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.store.CreatePayment(r.Context(), pm); err != nil {
		// the appointment is already closed; surface the payment
		// failure without undoing attendance
		h.writeErr(w, r, err)
		return
	}

	staffUserID := ""
	if st, err := h.store.StaffByID(r.Context(), appt.StaffID); err == nil {
		staffUserID = st.UserID
	}
	completionNotices(h.notifier, appt, staffUserID, p.ID)
	h.events.Publish(r.Context(), "appointment.completed", appt.ID, map[string]any{
		"appointment_id": appt.ID,
		"business_id":    appt.BusinessID,
	})

	h.writeJSON(w, http.StatusOK, map[string]any{
		"appointment": toAppointmentDTO(appt),
		"payment":     pm,
	})
}

// validatePayment settles a transfer receipt under review.
func (h *Handler) validatePayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req struct {
		Approved bool `json:"approved"`
	}
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	appt, err := h.store.AppointmentByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.RequireTenant(p, appt.BusinessID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	pm, err := h.store.PaymentByAppointment(r.Context(), appt.ID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	newStatus, err := payment.ResolveValidation(pm.Status, req.Approved)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	now := time.Now().UTC()
	if err := h.store.UpdatePaymentStatus(r.Context(), pm.ID, newStatus, "", &now, nil); err != nil {
		h.writeErr(w, r, err)
		return
	}
	pm.Status = newStatus
	pm.ValidatedAt = &now

	if req.Approved {
		h.notifier.Send(appt.ClientID, "payment_validated", "Payment confirmed",
			"Your payment was validated")
	} else {
		h.notifier.Send(appt.ClientID, "payment_rejected", "Payment rejected",
			"Your payment could not be validated, please contact the business")
	}
	h.events.Publish(r.Context(), "payment.validated", pm.ID, map[string]any{
		"payment_id":     pm.ID,
		"appointment_id": appt.ID,
		"status":         string(newStatus),
	})
	h.writeJSON(w, http.StatusOK, pm)
}

// confirmPayment records how a deferred payment was finally made.
func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness, model.RoleStaff)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	staffIDs, err := h.staffIDs(r, p)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req struct {
		Method string `json:"method"`
	}
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	appt, err := h.store.AppointmentByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanMutateAppointment(p, appt, staffIDs); err != nil {
		h.writeErr(w, r, err)
		return
	}

	pm, err := h.store.PaymentByAppointment(r.Context(), appt.ID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	newStatus, err := payment.ResolveConfirmation(pm.Status, model.PaymentMethod(req.Method))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	now := time.Now().UTC()
	if err := h.store.UpdatePaymentStatus(r.Context(), pm.ID, newStatus, req.Method, nil, &now); err != nil {
		h.writeErr(w, r, err)
		return
	}
	pm.Status = newStatus
	pm.Method = req.Method
	pm.ConfirmedAt = &now

	h.notifier.Send(appt.ClientID, "payment_confirmed", "Payment received",
		"Your payment was recorded")
	h.events.Publish(r.Context(), "payment.confirmed", pm.ID, map[string]any{
		"payment_id":     pm.ID,
		"appointment_id": appt.ID,
		"status":         string(newStatus),
	})
	h.writeJSON(w, http.StatusOK, pm)
}
