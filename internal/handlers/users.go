package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/identity"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

func parseBoolFilter(raw string) (*bool, error) {
	switch raw {
	case "":
		return nil, nil
	case "true", "1":
		v := true
		return &v, nil
	case "false", "0":
		v := false
		return &v, nil
	default:
		return nil, apperr.Validation("is_active must be true or false")
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	isActive, err := parseBoolFilter(r.URL.Query().Get("is_active"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	filter := visibility.UserFilter{
		Role:       model.Role(r.URL.Query().Get("role")),
		BusinessID: r.URL.Query().Get("business_id"),
		IsActive:   isActive,
	}

	// admins also see the owners of the businesses they manage
	var ownerIDs []string
	if p.Role == model.RoleAdmin && len(p.Businesses) > 0 {
		ownerIDs, err = h.store.BusinessOwnerIDs(r.Context(), p.Businesses)
		if err != nil {
			h.writeErr(w, r, err)
			return
		}
	}

	q, err := visibility.Users(p, filter, ownerIDs)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	users, err := h.store.ListUsers(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserDTOs(users))
}

type createUserRequest struct {
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Phone      string   `json:"phone"`
	Role       string   `json:"role"`
	Businesses []string `json:"businesses"`
	Language   string   `json:"language"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness, model.RoleStaff)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req createUserRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		h.writeErr(w, r, apperr.Validation("a valid email is required"))
		return
	}

	role := model.Role(req.Role)
	if role == "" {
		role = model.RoleClient
	}
	if !model.ValidRole(role) {
		h.writeErr(w, r, apperr.Validation("invalid role"))
		return
	}
	if err := canCreateRole(p, role); err != nil {
		h.writeErr(w, r, err)
		return
	}
	for _, b := range req.Businesses {
		if err := visibility.RequireTenant(p, b); err != nil {
			h.writeErr(w, r, err)
			return
		}
	}
	req.Businesses = defaultTenants(p, role, req.Businesses)

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
		Role:         role,
		Businesses:   req.Businesses,
		IsActive:     true,
		Language:     req.Language,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toUserDTO(u))
}

// canCreateRole enforces who may hand out which role: staff are limited
// to registering clients, and admin or super_admin accounts can only be
// minted by a super admin.
func canCreateRole(p model.Principal, role model.Role) error {
	if p.Role == model.RoleStaff && role != model.RoleClient {
		return apperr.Forbidden("staff may only create client accounts")
	}
	if p.Role != model.RoleSuperAdmin &&
		(role == model.RoleAdmin || role == model.RoleSuperAdmin) {
		return apperr.Forbidden("insufficient privileges for this role")
	}
	return nil
}

// defaultTenants fills in the creator's primary tenant when a client is
// registered without one, so the new account stays visible to whoever
// created it.
func defaultTenants(p model.Principal, role model.Role, businesses []string) []string {
	if len(businesses) > 0 || role != model.RoleClient {
		return businesses
	}
	if p.Role == model.RoleSuperAdmin || len(p.Businesses) == 0 {
		return businesses
	}
	return p.Businesses[:1]
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	u, err := h.store.UserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanViewUser(p, u); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toUserDTO(u))
}

type updateUserRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateUserRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	u, err := h.store.UserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanMutateUser(p, u); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if req.Role != nil {
		newRole := model.Role(*req.Role)
		if err := visibility.ValidateRoleChange(p, u, newRole); err != nil {
			h.writeErr(w, r, err)
			return
		}
		u.Role = newRole
	}
	if req.IsActive != nil {
		if p.ID == u.ID && !*req.IsActive {
			h.writeErr(w, r, apperr.Forbidden("cannot disable your own account"))
			return
		}
		if p.Role == model.RoleClient || p.Role == model.RoleStaff {
			h.writeErr(w, r, apperr.Forbidden("cannot change account status"))
			return
		}
		u.IsActive = *req.IsActive
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

// setUserBusinesses replaces a user's tenant memberships. Non-super
// callers may only hand out memberships they themselves hold.
func (h *Handler) setUserBusinesses(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req struct {
		Businesses []string `json:"businesses"`
	}
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	u, err := h.store.UserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanMutateUser(p, u); err != nil {
		h.writeErr(w, r, err)
		return
	}
	for _, b := range req.Businesses {
		if err := visibility.RequireTenant(p, b); err != nil {
			h.writeErr(w, r, err)
			return
		}
	}
	if req.Businesses == nil {
		req.Businesses = []string{}
	}

	if err := h.store.SetUserBusinesses(r.Context(), u.ID, req.Businesses); err != nil {
		h.writeErr(w, r, err)
		return
	}
	u.Businesses = req.Businesses
	h.writeJSON(w, http.StatusOK, toUserDTO(u))
}
