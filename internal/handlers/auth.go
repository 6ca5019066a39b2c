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

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Language  string `json:"language"`
}

type authResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

// register self-serves a client account. Privileged roles are only ever
// granted through the user management endpoints.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		h.writeErr(w, r, apperr.Validation("a valid email is required"))
		return
	}
	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	u := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         model.RoleClient,
		IsActive:     true,
		Language:     req.Language,
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
	h.writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserDTO(u)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	u, err := h.store.UserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil || !identity.VerifyPassword(u.PasswordHash, req.Password) {
		// same answer for unknown email and wrong password
		h.writeErr(w, r, apperr.Unauthenticated("invalid credentials"))
		return
	}
	if !u.IsActive {
		h.writeErr(w, r, apperr.AccountDisabled("account is disabled"))
		return
	}

	token, err := h.resolver.Issue(u)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserDTO(u)})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	u, err := h.store.UserByID(r.Context(), p.ID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserDTO(u))
}

type updateMeRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateMeRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	u, err := h.store.UserByID(r.Context(), p.ID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if err := h.store.UpdateUser(r.Context(), u); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserDTO(u))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req changePasswordRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	u, err := h.store.UserByID(r.Context(), p.ID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !identity.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		h.writeErr(w, r, apperr.Unauthenticated("current password is incorrect"))
		return
	}
	hash, err := identity.HashPassword(req.NewPassword)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), u.ID, hash); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

var supportedLanguages = map[string]bool{"en": true, "es": true}

func (h *Handler) updateLanguage(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req struct {
		Language string `json:"language"`
	}
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !supportedLanguages[req.Language] {
		h.writeErr(w, r, apperr.Validation("unsupported language"))
		return
	}

	u, err := h.store.UserByID(r.Context(), p.ID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	u.Language = req.Language
	if err := h.store.UpdateUser(r.Context(), u); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserDTO(u))
}
