// Package booking orchestrates the public, unauthenticated booking
// flow: resolve the catalog chain, find or create the client account,
// and create the pending appointment. Side effects (notifications,
// email, events) are best effort and never roll back the booking.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/identity"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/notify"
)

type Store interface {
	ActiveBusiness(ctx context.Context, id string) (model.Business, error)
	ActiveService(ctx context.Context, id string) (model.Service, error)
	ActiveStaff(ctx context.Context, id string) (model.Staff, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	CreateUser(ctx context.Context, u model.User) error
	CreateAppointment(ctx context.Context, a model.Appointment) error
}

type Notifier interface {
	Send(userID, typ, title, message string)
}

type Mailer interface {
	Enqueue(e notify.Email)
}

type Events interface {
	Publish(ctx context.Context, eventType, key string, payload map[string]any)
}

type Request struct {
	BusinessID string
	ServiceID  string
	StaffID    string
	Date       time.Time
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Notes      string
}

type Result struct {
	Appointment model.Appointment
	ClientID    string
	NewClient   bool
}

type Orchestrator struct {
	store    Store
	notifier Notifier
	mailer   Mailer
	events   Events
	password func(int) (string, error)
}

func NewOrchestrator(store Store, notifier Notifier, mailer Mailer, events Events, password func(int) (string, error)) *Orchestrator {
	return &Orchestrator{
		store:    store,
		notifier: notifier,
		mailer:   mailer,
		events:   events,
		password: password,
	}
}

// Book runs the whole flow. The catalog chain must be active and
// consistent: the staff member must belong to the business and offer
// the service. An existing account with the same email is reused no
// matter its role, so returning clients keep their history.
func (o *Orchestrator) Book(ctx context.Context, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	biz, err := o.store.ActiveBusiness(ctx, req.BusinessID)
	if err != nil {
		return Result{}, err
	}
	svc, err := o.store.ActiveService(ctx, req.ServiceID)
	if err != nil {
		return Result{}, err
	}
	if svc.BusinessID != biz.ID {
		return Result{}, apperr.NotFound("service not found")
	}
	st, err := o.store.ActiveStaff(ctx, req.StaffID)
	if err != nil {
		return Result{}, err
	}
	if st.BusinessID != biz.ID {
		return Result{}, apperr.NotFound("staff member not found")
	}
	if !offersService(st, svc) {
		return Result{}, apperr.Validation("staff member does not offer this service")
	}

	client, created, password, err := o.findOrCreateClient(ctx, req)
	if err != nil {
		return Result{}, err
	}

	appt := model.Appointment{
		ID:         uuid.NewString(),
		BusinessID: biz.ID,
		ServiceID:  svc.ID,
		StaffID:    st.ID,
		ClientID:   client.ID,
		Date:       req.Date.UTC(),
		Status:     model.AppointmentPending,
		PriceFinal: svc.Price,
		Notes:      req.Notes,
		CreatedAt:  time.Now().UTC(),
	}
	if err := o.store.CreateAppointment(ctx, appt); err != nil {
		return Result{}, err
	}

	when := appt.Date.Format("2006-01-02 15:04")
	o.notifier.Send(biz.OwnerID, "appointment_booked", "New booking",
		fmt.Sprintf("%s %s booked %s on %s", client.FirstName, client.LastName, svc.Name, when))
	if st.UserID != "" && st.UserID != biz.OwnerID {
		o.notifier.Send(st.UserID, "appointment_booked", "New booking",
			fmt.Sprintf("%s %s booked %s with you on %s", client.FirstName, client.LastName, svc.Name, when))
	}
	o.notifier.Send(client.ID, "appointment_booked", "Booking received",
		fmt.Sprintf("Your booking for %s at %s on %s is pending confirmation", svc.Name, biz.Name, when))

	if created {
		o.mailer.Enqueue(notify.Email{
			To:      client.Email,
			Subject: "Welcome to " + biz.Name,
			HTML: fmt.Sprintf(
				"<p>Hi %s,</p><p>An account was created for you to manage your bookings.</p><p>Temporary password: <b>%s</b></p>",
				client.FirstName, password),
		})
	}
	o.mailer.Enqueue(notify.Email{
		To:      client.Email,
		Subject: "Booking received",
		HTML: fmt.Sprintf("<p>Your booking for %s at %s on %s is pending confirmation.</p>",
			svc.Name, biz.Name, when),
	})

	o.events.Publish(ctx, "appointment.booked", appt.ID, map[string]any{
		"appointment_id": appt.ID,
		"business_id":    biz.ID,
		"service_id":     svc.ID,
		"staff_id":       st.ID,
		"client_id":      client.ID,
		"date":           appt.Date.Format(time.RFC3339),
	})

	return Result{Appointment: appt, ClientID: client.ID, NewClient: created}, nil
}

func (o *Orchestrator) findOrCreateClient(ctx context.Context, req Request) (model.User, bool, string, error) {
	existing, err := o.store.UserByEmail(ctx, req.Email)
	if err == nil {
		return existing, false, "", nil
	}
	if !apperr.IsNotFound(err) {
		return model.User{}, false, "", err
	}

	password, err := o.password(12)
	if err != nil {
		return model.User{}, false, "", err
	}
	hash, err := identity.HashPassword(password)
	if err != nil {
		return model.User{}, false, "", err
	}
	client := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         model.RoleClient,
		IsActive:     true,
		Language:     "en",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := o.store.CreateUser(ctx, client); err != nil {
		// lost a race with a concurrent booking for the same email
		if apperr.IsConflict(err) {
			existing, lookupErr := o.store.UserByEmail(ctx, req.Email)
			if lookupErr == nil {
				return existing, false, "", nil
			}
		}
		return model.User{}, false, "", err
	}
	return client, true, password, nil
}

func offersService(st model.Staff, svc model.Service) bool {
	for _, id := range st.ServiceIDs {
		if id == svc.ID {
			return true
		}
	}
	for _, id := range svc.StaffIDs {
		if id == st.ID {
			return true
		}
	}
	return false
}

func validate(req Request) error {
	switch {
	case req.BusinessID == "" || req.ServiceID == "" || req.StaffID == "":
		return apperr.Validation("business, service and staff are required")
	case req.Email == "":
		return apperr.Validation("email is required")
	case req.FirstName == "":
		return apperr.Validation("first name is required")
	case req.Date.IsZero():
		return apperr.Validation("date is required")
	}
	return nil
}
