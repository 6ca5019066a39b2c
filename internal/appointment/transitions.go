// Package appointment holds the appointment lifecycle rules: which
// status moves are legal, what a date change implies, and when an
// appointment may still be completed.
package appointment

import (
	"time"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
)

// transitions lists the legal next statuses per current status.
// attended and cancelled are terminal; no_show keeps a narrow escape
// hatch for late corrections.
var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentPending: {
		model.AppointmentConfirmed, model.AppointmentCancelled,
		model.AppointmentRescheduled, model.AppointmentAttended, model.AppointmentNoShow,
	},
	model.AppointmentConfirmed: {
		model.AppointmentCancelled, model.AppointmentRescheduled,
		model.AppointmentAttended, model.AppointmentNoShow,
	},
	model.AppointmentRescheduled: {
		model.AppointmentConfirmed, model.AppointmentCancelled,
		model.AppointmentAttended, model.AppointmentNoShow,
	},
	model.AppointmentNoShow: {
		model.AppointmentAttended, model.AppointmentCancelled,
	},
}

func CanTransition(from, to model.AppointmentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func Terminal(s model.AppointmentStatus) bool {
	return s == model.AppointmentAttended || s == model.AppointmentCancelled
}

// Update carries the mutable appointment fields; nil means unchanged.
type Update struct {
	Date       *time.Time
	Status     *model.AppointmentStatus
	PriceFinal *float64
	Notes      *string
}

// Resolve computes the status an update leaves the appointment in.
// Moving the date of a live appointment marks it rescheduled, even when
// the caller did not ask for a status change. The returned bool is true
// when the status differs from current.
func Resolve(current model.AppointmentStatus, upd Update) (model.AppointmentStatus, bool, error) {
	next := current

	if upd.Status != nil {
		s := *upd.Status
		if !model.ValidAppointmentStatus(s) {
			return current, false, apperr.Validation("invalid appointment status")
		}
		if s != current {
			if !CanTransition(current, s) {
				return current, false, apperr.Newf(apperr.KindConflict,
					"cannot move appointment from %s to %s", current, s)
			}
			next = s
		}
	}

	if upd.Date != nil {
		if Terminal(current) {
			return current, false, apperr.Conflict("cannot reschedule a closed appointment")
		}
		// an explicit status in the same request wins over the implied one
		if upd.Status == nil || *upd.Status == current {
			next = model.AppointmentRescheduled
		}
	}

	return next, next != current, nil
}

// CanComplete reports whether completion may start from this status.
// The store re-checks the same condition atomically when it writes.
func CanComplete(current model.AppointmentStatus) error {
	if Terminal(current) {
		return apperr.Conflict("appointment is already closed")
	}
	return nil
}
