package handlers

import (
	"testing"
	"time"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/notify"
)

type fakeSender struct{ sent []string }

func (f *fakeSender) Send(userID, typ, _, _ string) {
	f.sent = append(f.sent, userID+":"+typ)
}

type fakeEnqueuer struct{ mails []notify.Email }

func (f *fakeEnqueuer) Enqueue(e notify.Email) { f.mails = append(f.mails, e) }

func TestCompletionPayment(t *testing.T) {
	// completion always settles or defers a payment, so the method is
	// checked before anything irreversible happens
	if _, _, err := completionPayment(completeRequest{}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("missing method must fail validation, got %v", err)
	}
	if _, _, err := completionPayment(completeRequest{PaymentMethod: "card"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("unknown method must fail validation, got %v", err)
	}

	status, reason, err := completionPayment(completeRequest{PaymentMethod: string(model.PaymentMethodCash)})
	if err != nil || status != model.PaymentCompleted || reason != "" {
		t.Fatalf("cash should complete immediately, got (%s, %q, %v)", status, reason, err)
	}

	status, reason, err = completionPayment(completeRequest{PaymentMethod: string(model.PaymentMethodPending)})
	if err != nil || status != model.PaymentPendingPayment || reason == "" {
		t.Fatalf("deferred payment should carry a reason, got (%s, %q, %v)", status, reason, err)
	}
}

func apptFixture() model.Appointment {
	return model.Appointment{
		ID:       "a1",
		ClientID: "c1",
		StaffID:  "st1",
		Date:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreationNotices(t *testing.T) {
	n := &fakeSender{}
	m := &fakeEnqueuer{}

	creationNotices(n, m, apptFixture(), "staffuser1", "dana@example.com", "owner1")
	if len(n.sent) != 2 || n.sent[0] != "c1:appointment_created" || n.sent[1] != "staffuser1:appointment_created" {
		t.Fatalf("unexpected notices: %v", n.sent)
	}
	if len(m.mails) != 1 || m.mails[0].To != "dana@example.com" {
		t.Fatalf("unexpected mails: %+v", m.mails)
	}

	// the staff member scheduling their own appointment is not told twice
	n = &fakeSender{}
	m = &fakeEnqueuer{}
	creationNotices(n, m, apptFixture(), "staffuser1", "", "staffuser1")
	if len(n.sent) != 1 || n.sent[0] != "c1:appointment_created" {
		t.Fatalf("unexpected notices: %v", n.sent)
	}
	if len(m.mails) != 0 {
		t.Fatalf("no address, no mail: %+v", m.mails)
	}
}

func TestCompletionNotices(t *testing.T) {
	n := &fakeSender{}
	completionNotices(n, apptFixture(), "staffuser1", "owner1")
	if len(n.sent) != 2 || n.sent[0] != "c1:appointment_attended" || n.sent[1] != "staffuser1:appointment_attended" {
		t.Fatalf("unexpected notices: %v", n.sent)
	}

	// completing your own appointment sends only the client notice
	n = &fakeSender{}
	completionNotices(n, apptFixture(), "staffuser1", "staffuser1")
	if len(n.sent) != 1 {
		t.Fatalf("unexpected notices: %v", n.sent)
	}
}
