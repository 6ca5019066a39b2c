// Package payment maps payment methods to lifecycle statuses and
// validates the status moves the back office may perform.
package payment

import (
	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
)

const DefaultPendingReason = "Payment pending"

// Initial derives the status a newly recorded payment starts in from
// its method. Cash settles on the spot, transfers wait for receipt
// validation, and "pending" means the client has not paid yet.
func Initial(method model.PaymentMethod, pendingReason string) (model.PaymentStatus, string, error) {
	switch method {
	case model.PaymentMethodCash:
		return model.PaymentCompleted, "", nil
	case model.PaymentMethodTransfer:
		return model.PaymentPendingValidation, "", nil
	case model.PaymentMethodPending:
		if pendingReason == "" {
			pendingReason = DefaultPendingReason
		}
		return model.PaymentPendingPayment, pendingReason, nil
	default:
		return "", "", apperr.Newf(apperr.KindValidation, "unknown payment method %q", method)
	}
}

// ResolveValidation settles a transfer under review. Only payments
// waiting for validation can be approved or rejected.
func ResolveValidation(current model.PaymentStatus, approved bool) (model.PaymentStatus, error) {
	if current != model.PaymentPendingValidation {
		return current, apperr.Conflict("payment is not awaiting validation")
	}
	if approved {
		return model.PaymentCompleted, nil
	}
	return model.PaymentRejected, nil
}

// ResolveConfirmation records how a deferred payment was finally made.
// Cash closes it immediately; a transfer still needs its receipt
// validated, so it moves to pending_validation instead.
func ResolveConfirmation(current model.PaymentStatus, method model.PaymentMethod) (model.PaymentStatus, error) {
	if current != model.PaymentPendingPayment {
		return current, apperr.Conflict("payment is not awaiting confirmation")
	}
	switch method {
	case model.PaymentMethodCash:
		return model.PaymentCompleted, nil
	case model.PaymentMethodTransfer:
		return model.PaymentPendingValidation, nil
	default:
		return current, apperr.Newf(apperr.KindValidation, "unknown payment method %q", method)
	}
}
