package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

func (h *Handler) listStaff(w http.ResponseWriter, r *http.Request) {
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
	q, err := visibility.Staffs(p, visibility.CatalogFilter{
		BusinessID: r.URL.Query().Get("business_id"),
		ServiceID:  r.URL.Query().Get("service_id"),
		IsActive:   isActive,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	staff, err := h.store.ListStaff(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, staff)
}

type createStaffRequest struct {
	UserID     string             `json:"user_id"`
	BusinessID string             `json:"business_id"`
	ServiceIDs []string           `json:"service_ids"`
	Schedule   model.WeekSchedule `json:"schedule"`
}

func (h *Handler) createStaff(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req createStaffRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.UserID == "" || req.BusinessID == "" {
		h.writeErr(w, r, apperr.Validation("user_id and business_id are required"))
		return
	}
	if err := visibility.RequireTenant(p, req.BusinessID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	u, err := h.store.UserByID(r.Context(), req.UserID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanMutateUser(p, u); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if req.ServiceIDs == nil {
		req.ServiceIDs = []string{}
	}
	if req.Schedule == nil {
		req.Schedule = model.DefaultWeekSchedule()
	}

	st := model.Staff{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		BusinessID: req.BusinessID,
		ServiceIDs: req.ServiceIDs,
		Schedule:   req.Schedule,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.CreateStaff(r.Context(), st); err != nil {
		h.writeErr(w, r, err)
		return
	}

	// joining a team grants membership, and clients become staff
	changed := false
	if !u.Principal().MemberOf(req.BusinessID) {
		u.Businesses = append(u.Businesses, req.BusinessID)
		changed = true
	}
	if u.Role == model.RoleClient {
		u.Role = model.RoleStaff
		changed = true
	}
	if changed {
		if err := h.store.UpdateUser(r.Context(), u); err != nil {
			h.log.Error("staff user update failed", "user_id", u.ID, "error", err)
		}
	}

	h.notifier.Send(u.ID, "staff_added", "Added to a team",
		"You were added as a staff member")
	h.writeJSON(w, http.StatusCreated, st)
}

func (h *Handler) getStaff(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	st, err := h.store.StaffByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if p.Role == model.RoleClient && !st.IsActive {
		h.writeErr(w, r, apperr.NotFound("staff member not found"))
		return
	}
	if p.Role != model.RoleClient {
		if err := visibility.RequireTenant(p, st.BusinessID); err != nil {
			h.writeErr(w, r, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, st)
}

type updateStaffRequest struct {
	ServiceIDs []string           `json:"service_ids"`
	Schedule   model.WeekSchedule `json:"schedule"`
	IsActive   *bool              `json:"is_active"`
}

func (h *Handler) updateStaff(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness, model.RoleStaff)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateStaffRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	st, err := h.store.StaffByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	// staff may edit their own record only
	if p.Role == model.RoleStaff && st.UserID != p.ID {
		h.writeErr(w, r, apperr.Forbidden("cannot modify another staff member"))
		return
	}
	if err := visibility.RequireTenant(p, st.BusinessID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if req.ServiceIDs != nil {
		st.ServiceIDs = req.ServiceIDs
	}
	if req.Schedule != nil {
		st.Schedule = req.Schedule
	}
	if req.IsActive != nil {
		if p.Role == model.RoleStaff {
			h.writeErr(w, r, apperr.Forbidden("cannot change your own availability status"))
			return
		}
		st.IsActive = *req.IsActive
	}

	if err := h.store.UpdateStaff(r.Context(), st); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, st)
}
