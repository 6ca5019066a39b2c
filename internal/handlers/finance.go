package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/payment"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperr.Validation("dates must be YYYY-MM-DD")
	}
	return t, nil
}

func (h *Handler) income(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	businessID := r.PathValue("businessID")
	if err := visibility.RequireTenant(p, businessID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	from, err := parseDateParam(r.URL.Query().Get("from"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1) // inclusive end date
	}

	sum, err := h.store.IncomeForBusiness(r.Context(), businessID, from, to)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) pendingValidation(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	businessID := r.PathValue("businessID")
	if err := visibility.RequireTenant(p, businessID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	payments, err := h.store.ListPaymentsByStatus(r.Context(), businessID, model.PaymentPendingValidation)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payments)
}

type recordPaymentRequest struct {
	BusinessID    string  `json:"business_id"`
	AppointmentID string  `json:"appointment_id"`
	Amount        float64 `json:"amount"`
	Method        string  `json:"method"`
	PendingReason string  `json:"pending_reason"`
	Reference     string  `json:"reference"`
	ReceiptURL    string  `json:"receipt_url"`
	Notes         string  `json:"notes"`
}

// recordPayment books a manual income entry. Known methods go through
// the normal lifecycle; anything else is treated as settled.
func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req recordPaymentRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.BusinessID == "" {
		h.writeErr(w, r, apperr.Validation("business_id is required"))
		return
	}
	if req.Amount <= 0 {
		h.writeErr(w, r, apperr.Validation("amount must be positive"))
		return
	}
	if req.Method == "" {
		h.writeErr(w, r, apperr.Validation("method is required"))
		return
	}
	if err := visibility.RequireTenant(p, req.BusinessID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.AppointmentID != "" {
		appt, err := h.store.AppointmentByID(r.Context(), req.AppointmentID)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
		if appt.BusinessID != req.BusinessID {
			h.writeErr(w, r, apperr.Validation("appointment belongs to another business"))
			return
		}
	}

	status, reason, err := payment.Initial(model.PaymentMethod(req.Method), req.PendingReason)
	if err != nil {
		// unrecognized methods are recorded as settled income
		status, reason = model.PaymentCompleted, ""
	}

	pm := model.Payment{
		ID:            uuid.NewString(),
		BusinessID:    req.BusinessID,
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		Method:        req.Method,
		Status:        status,
		PendingReason: reason,
		Reference:     req.Reference,
		ReceiptURL:    req.ReceiptURL,
		Notes:         req.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.store.CreatePayment(r.Context(), pm); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, pm)
}

// platformScope resolves which businesses the caller may inspect in
// platform billing: nil means all (super admin only).
func platformScope(p model.Principal) []string {
	if p.Role == model.RoleSuperAdmin {
		return nil
	}
	if len(p.Businesses) == 0 {
		return []string{}
	}
	return p.Businesses
}

func (h *Handler) listPlatformPayments(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	out, err := h.store.ListPlatformPayments(r.Context(), platformScope(p))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

type platformPaymentRequest struct {
	BusinessID string  `json:"business_id"`
	Amount     float64 `json:"amount"`
	Method     string  `json:"method"`
	Reference  string  `json:"reference"`
	ReceiptURL string  `json:"receipt_url"`
}

func (h *Handler) recordPlatformPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req platformPaymentRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.BusinessID == "" || req.Amount <= 0 || req.Method == "" {
		h.writeErr(w, r, apperr.Validation("business_id, amount and method are required"))
		return
	}
	if err := visibility.RequireTenant(p, req.BusinessID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	// manual transfers wait for back-office validation
	status := "completed"
	if model.PaymentMethod(req.Method) == model.PaymentMethodTransfer {
		status = string(model.PaymentPendingValidation)
	}
	pp := model.PlatformPayment{
		ID:         uuid.NewString(),
		BusinessID: req.BusinessID,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		ReceiptURL: req.ReceiptURL,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.CreatePlatformPayment(r.Context(), pp); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, pp)
}

// stripeWebhook records card payments to the platform. The signature
// check makes the endpoint safe to expose without auth.
func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	if h.stripeWebhookSecret == "" {
		h.writeErr(w, r, apperr.NotFound("stripe is not configured"))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		h.writeErr(w, r, apperr.Validation("unreadable payload"))
		return
	}
	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.stripeWebhookSecret)
	if err != nil {
		h.writeErr(w, r, apperr.Wrap(apperr.KindValidation, "signature verification failed", err))
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			h.writeErr(w, r, apperr.Wrap(apperr.KindValidation, "malformed event payload", err))
			return
		}
		businessID := session.ClientReferenceID
		if businessID == "" {
			h.log.Warn("stripe session without business reference", "session_id", session.ID)
			break
		}
		pp := model.PlatformPayment{
			ID:         uuid.NewString(),
			BusinessID: businessID,
			Amount:     float64(session.AmountTotal) / 100,
			Method:     "card",
			Reference:  session.ID,
			Status:     "completed",
			CreatedAt:  time.Now().UTC(),
		}
		if err := h.store.CreatePlatformPayment(r.Context(), pp); err != nil {
			h.writeErr(w, r, err)
			return
		}
		h.events.Publish(r.Context(), "platform.payment.received", pp.ID, map[string]any{
			"platform_payment_id": pp.ID,
			"business_id":         businessID,
			"amount":              pp.Amount,
		})
	default:
		h.log.Info("ignoring stripe event", "type", event.Type)
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
