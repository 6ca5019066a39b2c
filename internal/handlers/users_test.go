package handlers

import (
	"testing"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
)

func TestCanCreateRole(t *testing.T) {
	admin := model.Principal{ID: "u1", Role: model.RoleAdmin, Businesses: []string{"b1"}}
	staff := model.Principal{ID: "u2", Role: model.RoleStaff, Businesses: []string{"b1"}}
	super := model.Principal{ID: "s1", Role: model.RoleSuperAdmin}

	cases := []struct {
		name string
		p    model.Principal
		role model.Role
		ok   bool
	}{
		{"admin creates client", admin, model.RoleClient, true},
		{"admin creates staff", admin, model.RoleStaff, true},
		{"admin creates admin", admin, model.RoleAdmin, false},
		{"staff creates client", staff, model.RoleClient, true},
		{"staff creates staff", staff, model.RoleStaff, false},
		{"staff creates business", staff, model.RoleBusiness, false},
		{"super creates admin", super, model.RoleAdmin, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := canCreateRole(tc.p, tc.role)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !apperr.IsForbidden(err) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		})
	}
}

func TestDefaultTenants(t *testing.T) {
	owner := model.Principal{ID: "u1", Role: model.RoleBusiness, Businesses: []string{"b1", "b2"}}

	// a client created without a tenant lands in the creator's first one
	got := defaultTenants(owner, model.RoleClient, nil)
	if len(got) != 1 || got[0] != "b1" {
		t.Fatalf("expected [b1], got %v", got)
	}

	// an explicit tenant list is left alone
	got = defaultTenants(owner, model.RoleClient, []string{"b2"})
	if len(got) != 1 || got[0] != "b2" {
		t.Fatalf("explicit list must win, got %v", got)
	}

	// only client creations are defaulted
	if got = defaultTenants(owner, model.RoleStaff, nil); len(got) != 0 {
		t.Fatalf("staff creation should stay tenantless, got %v", got)
	}

	// super admins create unscoped accounts on purpose
	super := model.Principal{ID: "s1", Role: model.RoleSuperAdmin, Businesses: []string{"b9"}}
	if got = defaultTenants(super, model.RoleClient, nil); len(got) != 0 {
		t.Fatalf("super admin creation should stay tenantless, got %v", got)
	}

	// a creator with no memberships has nothing to default to
	lonely := model.Principal{ID: "u3", Role: model.RoleAdmin}
	if got = defaultTenants(lonely, model.RoleClient, nil); len(got) != 0 {
		t.Fatalf("expected no default, got %v", got)
	}
}
