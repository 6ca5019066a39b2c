package visibility

import (
	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
)

// UserFilter narrows a user listing. Zero values mean "no filter".
type UserFilter struct {
	Role       model.Role
	BusinessID string
	IsActive   *bool
}

// Users builds the visibility predicate for listing users as p.
// Super admin accounts never appear in listings made by anyone else,
// including explicit role=super_admin filters, which simply match nothing.
func Users(p model.Principal, f UserFilter, ownedBusinessOwnerIDs []string) (*Query, error) {
	q := NewQuery()

	if p.Role != model.RoleSuperAdmin {
		q.Where("role <> ?", string(model.RoleSuperAdmin))
		if f.Role == model.RoleSuperAdmin {
			return q.Deny(), nil
		}
	}

	if f.BusinessID != "" {
		if p.Role != model.RoleSuperAdmin && !p.MemberOf(f.BusinessID) {
			return nil, apperr.Forbidden("business outside your scope")
		}
		q.Where("businesses @> ARRAY[?]::text[]", f.BusinessID)
	}

	switch p.Role {
	case model.RoleSuperAdmin:
		// unrestricted
	case model.RoleAdmin:
		if len(p.Businesses) == 0 {
			q.Where("id = ?", p.ID)
			break
		}
		// admins also see the owners of the businesses they manage,
		// even when those owners are not members themselves
		if len(ownedBusinessOwnerIDs) > 0 {
			q.Where("(businesses && ?::text[] OR id = ANY(?::text[]))", p.Businesses, ownedBusinessOwnerIDs)
		} else {
			q.Where("businesses && ?::text[]", p.Businesses)
		}
	case model.RoleBusiness, model.RoleStaff:
		if len(p.Businesses) == 0 {
			q.Where("id = ?", p.ID)
			break
		}
		q.Where("businesses && ?::text[]", p.Businesses)
	default:
		q.Where("id = ?", p.ID)
	}

	if f.Role != "" && !(p.Role != model.RoleSuperAdmin && f.Role == model.RoleSuperAdmin) {
		q.Where("role = ?", string(f.Role))
	}
	if f.IsActive != nil {
		q.Where("is_active = ?", *f.IsActive)
	}
	return q, nil
}

// CanViewUser reports whether p may read target. A hidden super admin
// looks exactly like a missing document to everyone below super admin;
// an ordinary out-of-tenant user is plain Forbidden, not disguised.
func CanViewUser(p model.Principal, target model.User) error {
	if p.Role == model.RoleSuperAdmin {
		return nil
	}
	if target.Role == model.RoleSuperAdmin {
		return apperr.NotFound("user not found")
	}
	if p.ID == target.ID {
		return nil
	}
	switch p.Role {
	case model.RoleAdmin, model.RoleBusiness, model.RoleStaff:
		for _, b := range target.Businesses {
			if p.MemberOf(b) {
				return nil
			}
		}
	}
	return apperr.Forbidden("no access to this user")
}

// CanMutateUser gates updates. Concealment of super admins holds on
// writes too: a non-super caller gets NotFound, never Forbidden, so the
// response does not reveal the account exists.
func CanMutateUser(p model.Principal, target model.User) error {
	if p.Role == model.RoleSuperAdmin {
		return nil
	}
	if target.Role == model.RoleSuperAdmin {
		return apperr.NotFound("user not found")
	}
	if p.ID == target.ID {
		return nil
	}
	switch p.Role {
	case model.RoleAdmin, model.RoleBusiness:
		for _, b := range target.Businesses {
			if p.MemberOf(b) {
				return nil
			}
		}
		return apperr.Forbidden("no access to this user")
	default:
		return apperr.Forbidden("cannot modify other users")
	}
}

// ValidateRoleChange enforces the escalation rules: nobody changes their
// own role, and only a super admin may grant admin or super_admin.
func ValidateRoleChange(p model.Principal, target model.User, newRole model.Role) error {
	if newRole == target.Role {
		return nil
	}
	if !model.ValidRole(newRole) {
		return apperr.Validation("invalid role")
	}
	if p.ID == target.ID {
		return apperr.Forbidden("cannot change your own role")
	}
	if p.Role != model.RoleSuperAdmin &&
		(newRole == model.RoleAdmin || newRole == model.RoleSuperAdmin) {
		return apperr.Forbidden("insufficient privileges for role change")
	}
	return nil
}

// RequireTenant verifies p may act within businessID.
func RequireTenant(p model.Principal, businessID string) error {
	if p.Role == model.RoleSuperAdmin {
		return nil
	}
	if !p.MemberOf(businessID) {
		return apperr.Forbidden("business outside your scope")
	}
	return nil
}

// Businesses scopes a business listing. Tenant roles see the businesses
// they own or belong to; clients and anonymous catalog consumers see
// only active ones.
func Businesses(p model.Principal) *Query {
	q := NewQuery()
	switch p.Role {
	case model.RoleSuperAdmin:
		// unrestricted
	case model.RoleAdmin, model.RoleBusiness:
		if len(p.Businesses) == 0 {
			q.Where("owner_id = ?", p.ID)
			break
		}
		q.Where("(owner_id = ? OR id = ANY(?::text[]))", p.ID, p.Businesses)
	case model.RoleStaff:
		if len(p.Businesses) == 0 {
			return q.Deny()
		}
		q.Where("id = ANY(?::text[])", p.Businesses)
	default:
		q.Where("is_active = TRUE")
	}
	return q
}

func CanViewBusiness(p model.Principal, b model.Business) error {
	switch p.Role {
	case model.RoleSuperAdmin:
		return nil
	case model.RoleAdmin, model.RoleBusiness, model.RoleStaff:
		if b.OwnerID == p.ID || p.MemberOf(b.ID) {
			return nil
		}
	}
	if b.IsActive {
		return nil
	}
	return apperr.NotFound("business not found")
}

func CanMutateBusiness(p model.Principal, b model.Business) error {
	switch p.Role {
	case model.RoleSuperAdmin:
		return nil
	case model.RoleAdmin, model.RoleBusiness:
		if b.OwnerID == p.ID || p.MemberOf(b.ID) {
			return nil
		}
	}
	return apperr.Forbidden("cannot modify this business")
}

// CatalogFilter narrows service and staff listings.
type CatalogFilter struct {
	BusinessID string
	ServiceID  string
	IsActive   *bool
}

// Services scopes a service listing. Clients browse the active catalog
// across all businesses; tenant roles are confined to their own.
func Services(p model.Principal, f CatalogFilter) (*Query, error) {
	q := NewQuery()
	switch p.Role {
	case model.RoleSuperAdmin:
	case model.RoleAdmin, model.RoleBusiness, model.RoleStaff:
		if len(p.Businesses) == 0 {
			return q.Deny(), nil
		}
		q.Where("business_id = ANY(?::text[])", p.Businesses)
	default:
		q.Where("is_active = TRUE")
	}
	if f.BusinessID != "" {
		q.Where("business_id = ?", f.BusinessID)
	}
	if f.IsActive != nil {
		q.Where("is_active = ?", *f.IsActive)
	}
	return q, nil
}

// Staffs scopes a staff listing the same way Services does, with an
// optional filter for members assigned to one service.
func Staffs(p model.Principal, f CatalogFilter) (*Query, error) {
	q := NewQuery()
	switch p.Role {
	case model.RoleSuperAdmin:
	case model.RoleAdmin, model.RoleBusiness, model.RoleStaff:
		if len(p.Businesses) == 0 {
			return q.Deny(), nil
		}
		q.Where("business_id = ANY(?::text[])", p.Businesses)
	default:
		q.Where("is_active = TRUE")
	}
	if f.BusinessID != "" {
		q.Where("business_id = ?", f.BusinessID)
	}
	if f.ServiceID != "" {
		q.Where("service_ids @> ARRAY[?]::text[]", f.ServiceID)
	}
	if f.IsActive != nil {
		q.Where("is_active = ?", *f.IsActive)
	}
	return q, nil
}

// AppointmentFilter narrows an appointment listing.
type AppointmentFilter struct {
	BusinessID string
	StaffID    string
	ClientID   string
	Status     model.AppointmentStatus
	DateFrom   string // YYYY-MM-DD, inclusive
	DateTo     string // YYYY-MM-DD, inclusive
}

// Appointments scopes an appointment listing. callerStaffIDs are the
// staff records belonging to p when p is a staff member.
func Appointments(p model.Principal, f AppointmentFilter, callerStaffIDs []string) (*Query, error) {
	q := NewQuery()
	switch p.Role {
	case model.RoleSuperAdmin:
	case model.RoleAdmin, model.RoleBusiness:
		if len(p.Businesses) == 0 {
			return q.Deny(), nil
		}
		q.Where("business_id = ANY(?::text[])", p.Businesses)
	case model.RoleStaff:
		if len(callerStaffIDs) == 0 {
			return q.Deny(), nil
		}
		q.Where("staff_id = ANY(?::text[])", callerStaffIDs)
	default:
		q.Where("client_id = ?", p.ID)
	}

	if f.BusinessID != "" {
		if err := RequireTenant(p, f.BusinessID); err != nil && p.Role != model.RoleClient {
			return nil, err
		}
		q.Where("business_id = ?", f.BusinessID)
	}
	if f.StaffID != "" {
		q.Where("staff_id = ?", f.StaffID)
	}
	if f.ClientID != "" {
		q.Where("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		if !model.ValidAppointmentStatus(f.Status) {
			return nil, apperr.Validation("invalid status filter")
		}
		q.Where("status = ?", string(f.Status))
	}
	if f.DateFrom != "" {
		q.Where("date >= ?::date", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Where("date < ?::date + INTERVAL '1 day'", f.DateTo)
	}
	return q, nil
}

// CanViewAppointment reports whether p may read a. callerStaffIDs as in
// Appointments. Out-of-tenant access is Forbidden: appointments are not
// concealed, only unreachable.
func CanViewAppointment(p model.Principal, a model.Appointment, callerStaffIDs []string) error {
	switch p.Role {
	case model.RoleSuperAdmin:
		return nil
	case model.RoleAdmin, model.RoleBusiness:
		if p.MemberOf(a.BusinessID) {
			return nil
		}
	case model.RoleStaff:
		for _, id := range callerStaffIDs {
			if id == a.StaffID {
				return nil
			}
		}
	default:
		if a.ClientID == p.ID {
			return nil
		}
	}
	return apperr.Forbidden("no access to this appointment")
}

// CanMutateAppointment gates updates. Clients may touch only their own
// appointments, and only to move or cancel them; the handler enforces
// the field restriction, this check covers reachability.
func CanMutateAppointment(p model.Principal, a model.Appointment, callerStaffIDs []string) error {
	return CanViewAppointment(p, a, callerStaffIDs)
}
