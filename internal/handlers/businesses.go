package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/visibility"
)

func (h *Handler) listBusinesses(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	q := visibility.Businesses(p)
	businesses, err := h.store.ListBusinesses(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}

	includeConfig := p.Role != model.RoleClient
	out := make([]businessDTO, 0, len(businesses))
	for _, b := range businesses {
		out = append(out, toBusinessDTO(b, includeConfig))
	}
	h.writeJSON(w, http.StatusOK, out)
}

type createBusinessRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	OwnerID     string `json:"owner_id"`
}

func (h *Handler) createBusiness(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req createBusinessRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.Name == "" {
		h.writeErr(w, r, apperr.Validation("name is required"))
		return
	}

	ownerID := p.ID
	// only super admins create businesses on someone else's behalf
	if req.OwnerID != "" && req.OwnerID != p.ID {
		if p.Role != model.RoleSuperAdmin {
			h.writeErr(w, r, apperr.Forbidden("cannot assign another owner"))
			return
		}
		if _, err := h.store.UserByID(r.Context(), req.OwnerID); err != nil {
			h.writeErr(w, r, err)
			return
		}
		ownerID = req.OwnerID
	}

	b := model.Business{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Name:          req.Name,
		Description:   req.Description,
		Address:       req.Address,
		Phone:         req.Phone,
		Email:         req.Email,
		PaymentConfig: model.DefaultPaymentConfig(),
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.store.CreateBusiness(r.Context(), b); err != nil {
		h.writeErr(w, r, err)
		return
	}

	// the owner becomes a member of the new business so tenant scoping
	// picks it up immediately
	owner, err := h.store.UserByID(r.Context(), ownerID)
	if err == nil && !owner.Principal().MemberOf(b.ID) {
		memberships := append(owner.Businesses, b.ID)
		if err := h.store.SetUserBusinesses(r.Context(), ownerID, memberships); err != nil {
			h.log.Error("owner membership update failed", "business_id", b.ID, "error", err)
		}
	}

	h.events.Publish(r.Context(), "business.created", b.ID, map[string]any{
		"business_id": b.ID,
		"owner_id":    ownerID,
		"name":        b.Name,
	})
	h.writeJSON(w, http.StatusCreated, toBusinessDTO(b, true))
}

func (h *Handler) getBusiness(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	b, err := h.store.BusinessByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanViewBusiness(p, b); err != nil {
		h.writeErr(w, r, err)
		return
	}
	includeConfig := visibility.CanMutateBusiness(p, b) == nil
	h.writeJSON(w, http.StatusOK, toBusinessDTO(b, includeConfig))
}

type updateBusinessRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	IsActive    *bool   `json:"is_active"`
}

func (h *Handler) updateBusiness(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req updateBusinessRequest
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}

	b, err := h.store.BusinessByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanMutateBusiness(p, b); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			h.writeErr(w, r, apperr.Validation("name cannot be empty"))
			return
		}
		b.Name = *req.Name
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Address != nil {
		b.Address = *req.Address
	}
	if req.Phone != nil {
		b.Phone = *req.Phone
	}
	if req.Email != nil {
		b.Email = *req.Email
	}
	if req.IsActive != nil {
		b.IsActive = *req.IsActive
	}

	if err := h.store.UpdateBusiness(r.Context(), b); err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toBusinessDTO(b, true))
}

func (h *Handler) updatePaymentConfig(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r, model.RoleAdmin, model.RoleBusiness)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	var req struct {
		PaymentConfig map[string]any `json:"payment_config"`
	}
	if err := decode(r, &req); err != nil {
		h.writeErr(w, r, err)
		return
	}
	if req.PaymentConfig == nil {
		h.writeErr(w, r, apperr.Validation("payment_config is required"))
		return
	}

	b, err := h.store.BusinessByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if err := visibility.CanMutateBusiness(p, b); err != nil {
		h.writeErr(w, r, err)
		return
	}

	if err := h.store.UpdateBusinessPaymentConfig(r.Context(), b.ID, req.PaymentConfig); err != nil {
		h.writeErr(w, r, err)
		return
	}
	b.PaymentConfig = req.PaymentConfig
	h.writeJSON(w, http.StatusOK, toBusinessDTO(b, true))
}
