package visibility

import (
	"strings"
	"testing"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
)

func TestQueryClausePlaceholders(t *testing.T) {
	q := NewQuery().
		Where("role <> ?", "super_admin").
		Where("businesses && ?::text[]", []string{"b1"})

	clause := q.Clause(1)
	if clause != " WHERE role <> $1 AND businesses && $2::text[]" {
		t.Fatalf("unexpected clause: %q", clause)
	}
	if len(q.Args()) != 2 {
		t.Fatalf("expected 2 args, got %d", len(q.Args()))
	}

	if got := NewQuery().Clause(1); got != "" {
		t.Fatalf("empty query should render no clause, got %q", got)
	}

	if got := NewQuery().Where("id = ?", "x").Clause(3); got != " WHERE id = $3" {
		t.Fatalf("offset numbering broken: %q", got)
	}
}

func TestUsersHidesSuperAdmins(t *testing.T) {
	admin := model.Principal{ID: "u1", Role: model.RoleAdmin, Businesses: []string{"b1"}}

	q, err := Users(admin, UserFilter{}, nil)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if !strings.Contains(q.Clause(1), "role <> $1") {
		t.Fatalf("expected super admin exclusion in clause: %q", q.Clause(1))
	}

	// explicit role=super_admin filter matches nothing rather than erroring
	q, err = Users(admin, UserFilter{Role: model.RoleSuperAdmin}, nil)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if !strings.Contains(q.Clause(1), "FALSE") {
		t.Fatalf("expected denied query, got %q", q.Clause(1))
	}

	super := model.Principal{ID: "s1", Role: model.RoleSuperAdmin}
	q, err = Users(super, UserFilter{}, nil)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if strings.Contains(q.Clause(1), "role <>") {
		t.Fatalf("super admin listing should be unrestricted, got %q", q.Clause(1))
	}
}

func TestUsersTenantScoping(t *testing.T) {
	business := model.Principal{ID: "u2", Role: model.RoleBusiness, Businesses: []string{"b1", "b2"}}

	q, err := Users(business, UserFilter{}, nil)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if !strings.Contains(q.Clause(1), "businesses && $2::text[]") {
		t.Fatalf("expected membership overlap predicate: %q", q.Clause(1))
	}

	// requesting a business outside the caller's tenants is an error,
	// not an empty result: the caller named a scope it does not hold
	if _, err := Users(business, UserFilter{BusinessID: "b9"}, nil); !apperr.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// no memberships collapses the listing to the caller itself
	lonely := model.Principal{ID: "u3", Role: model.RoleStaff}
	q, err = Users(lonely, UserFilter{}, nil)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if !strings.Contains(q.Clause(1), "id = $2") {
		t.Fatalf("expected self-only predicate: %q", q.Clause(1))
	}
}

func TestCanViewUserConcealment(t *testing.T) {
	hidden := model.User{ID: "root", Role: model.RoleSuperAdmin}
	admin := model.Principal{ID: "u1", Role: model.RoleAdmin, Businesses: []string{"b1"}}

	if err := CanViewUser(admin, hidden); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for hidden account, got %v", err)
	}
	if err := CanMutateUser(admin, hidden); !apperr.IsNotFound(err) {
		t.Fatalf("mutation must disguise the same way, got %v", err)
	}

	super := model.Principal{ID: "s1", Role: model.RoleSuperAdmin}
	if err := CanViewUser(super, hidden); err != nil {
		t.Fatalf("super admin sees everything: %v", err)
	}

	peer := model.User{ID: "u5", Role: model.RoleClient, Businesses: []string{"b1"}}
	if err := CanViewUser(admin, peer); err != nil {
		t.Fatalf("tenant member should be visible: %v", err)
	}
	// only super admins are concealed; an ordinary user in a foreign
	// tenant is a plain authorization failure
	outsider := model.User{ID: "u6", Role: model.RoleClient, Businesses: []string{"b9"}}
	if err := CanViewUser(admin, outsider); !apperr.IsForbidden(err) {
		t.Fatalf("outsider access must be forbidden, got %v", err)
	}
	if err := CanMutateUser(admin, outsider); !apperr.IsForbidden(err) {
		t.Fatalf("outsider mutation must be forbidden, got %v", err)
	}
}

func TestValidateRoleChange(t *testing.T) {
	admin := model.Principal{ID: "u1", Role: model.RoleAdmin, Businesses: []string{"b1"}}
	super := model.Principal{ID: "s1", Role: model.RoleSuperAdmin}
	target := model.User{ID: "u5", Role: model.RoleClient, Businesses: []string{"b1"}}

	if err := ValidateRoleChange(admin, target, model.RoleStaff); err != nil {
		t.Fatalf("admin may promote within tenant roles: %v", err)
	}
	if err := ValidateRoleChange(admin, target, model.RoleAdmin); !apperr.IsForbidden(err) {
		t.Fatalf("escalation to admin needs super admin, got %v", err)
	}
	if err := ValidateRoleChange(super, target, model.RoleAdmin); err != nil {
		t.Fatalf("super admin may grant admin: %v", err)
	}

	self := model.User{ID: "u1", Role: model.RoleAdmin}
	if err := ValidateRoleChange(admin, self, model.RoleClient); !apperr.IsForbidden(err) {
		t.Fatalf("self role change must be refused, got %v", err)
	}
	if err := ValidateRoleChange(admin, target, model.Role("owner")); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("unknown role is a validation error, got %v", err)
	}
	// no-op changes pass regardless of privileges
	if err := ValidateRoleChange(admin, target, target.Role); err != nil {
		t.Fatalf("no-op change: %v", err)
	}
}

func TestAppointmentsScopes(t *testing.T) {
	staff := model.Principal{ID: "u7", Role: model.RoleStaff, Businesses: []string{"b1"}}

	q, err := Appointments(staff, AppointmentFilter{}, []string{"st1", "st2"})
	if err != nil {
		t.Fatalf("Appointments: %v", err)
	}
	if !strings.Contains(q.Clause(1), "staff_id = ANY($1::text[])") {
		t.Fatalf("staff scoping missing: %q", q.Clause(1))
	}

	// staff user with no staff records sees nothing
	q, err = Appointments(staff, AppointmentFilter{}, nil)
	if err != nil {
		t.Fatalf("Appointments: %v", err)
	}
	if !strings.Contains(q.Clause(1), "FALSE") {
		t.Fatalf("expected denied query, got %q", q.Clause(1))
	}

	client := model.Principal{ID: "c1", Role: model.RoleClient}
	q, err = Appointments(client, AppointmentFilter{Status: model.AppointmentPending}, nil)
	if err != nil {
		t.Fatalf("Appointments: %v", err)
	}
	clause := q.Clause(1)
	if !strings.Contains(clause, "client_id = $1") || !strings.Contains(clause, "status = $2") {
		t.Fatalf("client scoping or status filter missing: %q", clause)
	}

	if _, err := Appointments(client, AppointmentFilter{Status: "done"}, nil); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("bad status filter should fail validation, got %v", err)
	}
}

func TestCanViewAppointment(t *testing.T) {
	appt := model.Appointment{ID: "a1", BusinessID: "b1", StaffID: "st1", ClientID: "c1"}

	cases := []struct {
		name     string
		p        model.Principal
		staffIDs []string
		wantErr  bool
	}{
		{"owner business", model.Principal{ID: "u1", Role: model.RoleBusiness, Businesses: []string{"b1"}}, nil, false},
		{"other business", model.Principal{ID: "u2", Role: model.RoleBusiness, Businesses: []string{"b2"}}, nil, true},
		{"assigned staff", model.Principal{ID: "u3", Role: model.RoleStaff, Businesses: []string{"b1"}}, []string{"st1"}, false},
		{"other staff", model.Principal{ID: "u4", Role: model.RoleStaff, Businesses: []string{"b1"}}, []string{"st9"}, true},
		{"own client", model.Principal{ID: "c1", Role: model.RoleClient}, nil, false},
		{"other client", model.Principal{ID: "c2", Role: model.RoleClient}, nil, true},
		{"super admin", model.Principal{ID: "s1", Role: model.RoleSuperAdmin}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CanViewAppointment(tc.p, appt, tc.staffIDs)
			if tc.wantErr && !apperr.IsForbidden(err) {
				t.Fatalf("expected forbidden, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// mutation reachability mirrors visibility
			if merr := CanMutateAppointment(tc.p, appt, tc.staffIDs); (merr != nil) != tc.wantErr {
				t.Fatalf("mutate disagrees with view: %v", merr)
			}
		})
	}
}
