package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/identity"
	"github.com/agendaly/agendaly-api/internal/model"
)

type setupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// setupSuperAdmin bootstraps the very first super admin. It works
// exactly once: as soon as any super admin exists the endpoint refuses.
func (h *Handler) setupSuperAdmin(w http.ResponseWriter, r *http.Request) {
	var req setupRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		h.writeErr(w, r, apperr.Validation("a valid email is required"))
		return
	}

	exists, err := h.store.SuperAdminExists(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if exists {
		h.writeErr(w, r, apperr.Conflict("setup already completed"))
		return
	}

	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	u := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleSuperAdmin,
		IsActive:     true,
		Language:     "en",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		h.writeErr(w, r, err)
		return
	}

	token, err := h.resolver.Issue(u)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.log.Info("super admin bootstrapped", "user_id", u.ID)
	h.writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserDTO(u)})
}
