package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
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
	q, err := visibility.Services(p, visibility.CatalogFilter{
		BusinessID: r.URL.Query().Get("business_id"),
		IsActive:   isActive,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	services, err := h.store.ListServices(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, services)
}

type createServiceRequest struct {
	BusinessID      string   `json:"business_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	DurationMinutes int      `json:"duration_minutes"`
	Price           *float64 `json:"price"`
	StaffIDs        []string `json:"staff_ids"`
}

func (h *Handler) createService(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req createServiceRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.BusinessID == "" || req.Name == "" {
		h.writeErr(w, r, apperr.Validation("business_id and name are required"))
		return
	}
	if err := visibility.RequireTenant(p, req.BusinessID); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 30
	}
	if req.Price != nil && *req.Price < 0 {
		h.writeErr(w, r, apperr.Validation("price cannot be negative"))
		return
	}
	if req.StaffIDs == nil {
		req.StaffIDs = []string{}
	}

	svc := model.Service{
		ID:              uuid.NewString(),
		BusinessID:      req.BusinessID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		StaffIDs:        req.StaffIDs,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}
	if err := h.store.CreateService(r.Context(), svc); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, svc)
}

func (h *Handler) getService(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	svc, err := h.store.ServiceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	// clients only see the active catalog
	if p.Role == model.RoleClient && !svc.IsActive {
		h.writeErr(w, r, apperr.NotFound("service not found"))
		return
	}
	if p.Role != model.RoleClient {
		if err := visibility.RequireTenant(p, svc.BusinessID); err != nil {
			h.writeErr(w, r, err)
			return
		}
	}
	h.writeJSON(w, http.StatusOK, svc)
}

type updateServiceRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	DurationMinutes *int     `json:"duration_minutes"`
	Price           *float64 `json:"price"`
	StaffIDs        []string `json:"staff_ids"`
	IsActive        *bool    `json:"is_active"`
}

func (h *Handler) updateService(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateServiceRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	svc, err := h.store.ServiceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.RequireTenant(p, svc.BusinessID); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			h.writeErr(w, r, apperr.Validation("name cannot be empty"))
			return
		}
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			h.writeErr(w, r, apperr.Validation("duration must be positive"))
			return
		}
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		if *req.Price < 0 {
			h.writeErr(w, r, apperr.Validation("price cannot be negative"))
			return
		}
		svc.Price = req.Price
	}
	if req.StaffIDs != nil {
		svc.StaffIDs = req.StaffIDs
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := h.store.UpdateService(r.Context(), svc); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, svc)
}
