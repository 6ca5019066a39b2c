package payment

import (
	"testing"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
)

func TestInitial(t *testing.T) {
	cases := []struct {
		method     model.PaymentMethod
		reason     string
		wantStatus model.PaymentStatus
		wantReason string
	}{
		{model.PaymentMethodCash, "", model.PaymentCompleted, ""},
		{model.PaymentMethodTransfer, "", model.PaymentPendingValidation, ""},
		{model.PaymentMethodPending, "", model.PaymentPendingPayment, DefaultPendingReason},
		{model.PaymentMethodPending, "pays next visit", model.PaymentPendingPayment, "pays next visit"},
	}
	for _, tc := range cases {
		status, reason, err := Initial(tc.method, tc.reason)
		if err != nil {
			t.Fatalf("Initial(%s): %v", tc.method, err)
		}
		if status != tc.wantStatus || reason != tc.wantReason {
			t.Fatalf("Initial(%s) = (%s, %q), want (%s, %q)",
				tc.method, status, reason, tc.wantStatus, tc.wantReason)
		}
	}

	if _, _, err := Initial("card", ""); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("unknown method should fail validation, got %v", err)
	}
}

func TestResolveValidation(t *testing.T) {
	if got, err := ResolveValidation(model.PaymentPendingValidation, true); err != nil || got != model.PaymentCompleted {
		t.Fatalf("approve = (%s, %v)", got, err)
	}
	if got, err := ResolveValidation(model.PaymentPendingValidation, false); err != nil || got != model.PaymentRejected {
		t.Fatalf("reject = (%s, %v)", got, err)
	}

	for _, s := range []model.PaymentStatus{model.PaymentCompleted, model.PaymentPendingPayment, model.PaymentRejected} {
		if _, err := ResolveValidation(s, true); !apperr.IsConflict(err) {
			t.Fatalf("validating a %s payment should conflict, got %v", s, err)
		}
	}
}

func TestResolveConfirmation(t *testing.T) {
	if got, err := ResolveConfirmation(model.PaymentPendingPayment, model.PaymentMethodCash); err != nil || got != model.PaymentCompleted {
		t.Fatalf("cash confirmation = (%s, %v)", got, err)
	}
	// a transfer is never trusted outright: it still passes through validation
	if got, err := ResolveConfirmation(model.PaymentPendingPayment, model.PaymentMethodTransfer); err != nil || got != model.PaymentPendingValidation {
		t.Fatalf("transfer confirmation = (%s, %v)", got, err)
	}

	if _, err := ResolveConfirmation(model.PaymentCompleted, model.PaymentMethodCash); !apperr.IsConflict(err) {
		t.Fatalf("confirming a settled payment should conflict, got %v", err)
	}
	if _, err := ResolveConfirmation(model.PaymentPendingPayment, "card"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("unknown method should fail validation, got %v", err)
	}
}
