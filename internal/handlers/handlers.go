// Package handlers is the HTTP surface of the API. Handlers stay thin:
// they decode, resolve the principal, delegate to domain and storage
// code, and translate taxonomy errors to status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/booking"
	"github.com/agendaly/agendaly-api/internal/events"
	"github.com/agendaly/agendaly-api/internal/identity"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/notify"
	"github.com/agendaly/agendaly-api/internal/storage"
)

type Handler struct {
	store               *storage.Store
	resolver            *identity.Resolver
	notifier            *notify.Notifier
	mailer              *notify.Mailer
	events              *events.Publisher
	booking             *booking.Orchestrator
	stripeWebhookSecret string
	log                 *slog.Logger
}

func New(store *storage.Store, resolver *identity.Resolver, notifier *notify.Notifier,
	mailer *notify.Mailer, ev *events.Publisher, orch *booking.Orchestrator,
	stripeWebhookSecret string, log *slog.Logger) *Handler {
	return &Handler{
		store:               store,
		resolver:            resolver,
		notifier:            notifier,
		mailer:              mailer,
		events:              ev,
		booking:             orch,
		stripeWebhookSecret: stripeWebhookSecret,
		log:                 log,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			h.log.Error("response encode failed", "error", err)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindAccountDisabled, apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		h.writeJSON(w, status, errorBody{Error: "internal error", Code: kind.String()})
		return
	}
	h.writeJSON(w, status, errorBody{Error: err.Error(), Code: kind.String()})
}

func decode(r *http.Request, dst any) error {
	defer io.Copy(io.Discard, r.Body)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request body", err)
	}
	return nil
}

var errNoBearer = errors.New("missing bearer token")

func bearerToken(r *http.Request) (string, error) {
	raw := r.Header.Get("Authorization")
	if raw == "" {
		return "", errNoBearer
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errNoBearer
	}
	return parts[1], nil
}

// principal authenticates the request and, when roles are given,
// requires one of them. Super admins pass any role requirement.
func (h *Handler) principal(r *http.Request, roles ...model.Role) (model.Principal, error) {
	token, err := bearerToken(r)
	if err != nil {
		return model.Principal{}, apperr.Unauthenticated("missing bearer token")
	}
	p, err := h.resolver.Resolve(r.Context(), token)
	if err != nil {
		return model.Principal{}, err
	}
	if len(roles) > 0 {
		if err := identity.Require(p, roles...); err != nil {
			return model.Principal{}, err
		}
	}
	return p, nil
}

// staffIDs loads the staff record ids backing a staff principal; other
// roles never need them.
func (h *Handler) staffIDs(r *http.Request, p model.Principal) ([]string, error) {
	if p.Role != model.RoleStaff {
		return nil, nil
	}
	return h.store.StaffIDsForUser(r.Context(), p.ID)
}
