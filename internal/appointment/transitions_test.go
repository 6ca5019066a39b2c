package appointment

import (
	"testing"
	"time"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.AppointmentStatus
		want     bool
	}{
		{model.AppointmentPending, model.AppointmentConfirmed, true},
		{model.AppointmentPending, model.AppointmentAttended, true},
		{model.AppointmentConfirmed, model.AppointmentNoShow, true},
		{model.AppointmentRescheduled, model.AppointmentConfirmed, true},
		{model.AppointmentNoShow, model.AppointmentAttended, true},
		{model.AppointmentNoShow, model.AppointmentConfirmed, false},
		{model.AppointmentAttended, model.AppointmentCancelled, false},
		{model.AppointmentCancelled, model.AppointmentPending, false},
		{model.AppointmentAttended, model.AppointmentPending, false},
		{model.AppointmentConfirmed, model.AppointmentPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestResolveDateChangeImpliesRescheduled(t *testing.T) {
	date := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	next, changed, err := Resolve(model.AppointmentConfirmed, Update{Date: &date})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if next != model.AppointmentRescheduled || !changed {
		t.Fatalf("date change should reschedule, got %s (changed=%v)", next, changed)
	}

	// an explicit status in the same update wins over the implied one
	st := model.AppointmentCancelled
	next, changed, err = Resolve(model.AppointmentConfirmed, Update{Date: &date, Status: &st})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if next != model.AppointmentCancelled || !changed {
		t.Fatalf("explicit status should win, got %s", next)
	}
}

func TestResolveRejectsClosedAppointments(t *testing.T) {
	date := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	for _, closed := range []model.AppointmentStatus{model.AppointmentAttended, model.AppointmentCancelled} {
		if _, _, err := Resolve(closed, Update{Date: &date}); !apperr.IsConflict(err) {
			t.Fatalf("rescheduling %s should conflict, got %v", closed, err)
		}
	}

	st := model.AppointmentConfirmed
	if _, _, err := Resolve(model.AppointmentAttended, Update{Status: &st}); !apperr.IsConflict(err) {
		t.Fatal("expected conflict reopening an attended appointment")
	}

	bad := model.AppointmentStatus("done")
	if _, _, err := Resolve(model.AppointmentPending, Update{Status: &bad}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatal("expected validation error for unknown status")
	}
}

func TestResolveNoChange(t *testing.T) {
	notes := "bring documents"
	next, changed, err := Resolve(model.AppointmentPending, Update{Notes: &notes})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if changed || next != model.AppointmentPending {
		t.Fatalf("notes-only update must not touch status, got %s (changed=%v)", next, changed)
	}

	same := model.AppointmentPending
	_, changed, err = Resolve(model.AppointmentPending, Update{Status: &same})
	if err != nil || changed {
		t.Fatalf("same-status update should be a no-op, changed=%v err=%v", changed, err)
	}
}

func TestCanComplete(t *testing.T) {
	for _, open := range []model.AppointmentStatus{
		model.AppointmentPending, model.AppointmentConfirmed,
		model.AppointmentRescheduled, model.AppointmentNoShow,
	} {
		if err := CanComplete(open); err != nil {
			t.Fatalf("completion from %s should be allowed: %v", open, err)
		}
	}
	for _, closed := range []model.AppointmentStatus{model.AppointmentAttended, model.AppointmentCancelled} {
		if err := CanComplete(closed); !apperr.IsConflict(err) {
			t.Fatalf("completion from %s should conflict, got %v", closed, err)
		}
	}
}
