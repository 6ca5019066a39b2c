package booking

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/agendaly/agendaly-api/internal/apperr"
	"github.com/agendaly/agendaly-api/internal/model"
	"github.com/agendaly/agendaly-api/internal/notify"
)

type fakeStore struct {
	businesses   map[string]model.Business
	services     map[string]model.Service
	staff        map[string]model.Staff
	usersByEmail map[string]model.User
	appointments []model.Appointment
	createdUsers []model.User
}

func (f *fakeStore) ActiveBusiness(_ context.Context, id string) (model.Business, error) {
	b, ok := f.businesses[id]
	if !ok || !b.IsActive {
		return model.Business{}, apperr.NotFound("business not found")
	}
	return b, nil
}

func (f *fakeStore) ActiveService(_ context.Context, id string) (model.Service, error) {
	s, ok := f.services[id]
	if !ok || !s.IsActive {
		return model.Service{}, apperr.NotFound("service not found")
	}
	return s, nil
}

func (f *fakeStore) ActiveStaff(_ context.Context, id string) (model.Staff, error) {
	s, ok := f.staff[id]
	if !ok || !s.IsActive {
		return model.Staff{}, apperr.NotFound("staff member not found")
	}
	return s, nil
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.usersByEmail[strings.ToLower(email)]
	if !ok {
		return model.User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeStore) CreateUser(_ context.Context, u model.User) error {
	key := strings.ToLower(u.Email)
	if _, ok := f.usersByEmail[key]; ok {
		return apperr.Conflict("user already exists")
	}
	f.usersByEmail[key] = u
	f.createdUsers = append(f.createdUsers, u)
	return nil
}

func (f *fakeStore) CreateAppointment(_ context.Context, a model.Appointment) error {
	f.appointments = append(f.appointments, a)
	return nil
}

type fakeNotifier struct{ sent []string }

func (f *fakeNotifier) Send(userID, typ, _, _ string) {
	f.sent = append(f.sent, userID+":"+typ)
}

type fakeMailer struct{ mails []notify.Email }

func (f *fakeMailer) Enqueue(e notify.Email) { f.mails = append(f.mails, e) }

type fakeEvents struct{ types []string }

func (f *fakeEvents) Publish(_ context.Context, eventType, _ string, _ map[string]any) {
	f.types = append(f.types, eventType)
}

func fixedPassword(int) (string, error) { return "temp-pass-123", nil }

func newFixture() (*fakeStore, *fakeNotifier, *fakeMailer, *fakeEvents, *Orchestrator) {
	price := 50.0
	store := &fakeStore{
		businesses: map[string]model.Business{
			"b1": {ID: "b1", OwnerID: "owner1", Name: "Cortex Salon", IsActive: true},
		},
		services: map[string]model.Service{
			"svc1": {ID: "svc1", BusinessID: "b1", Name: "Haircut", Price: &price, IsActive: true},
		},
		staff: map[string]model.Staff{
			"st1": {ID: "st1", UserID: "staffuser1", BusinessID: "b1", ServiceIDs: []string{"svc1"}, IsActive: true},
		},
		usersByEmail: map[string]model.User{},
	}
	notifier := &fakeNotifier{}
	mailer := &fakeMailer{}
	ev := &fakeEvents{}
	return store, notifier, mailer, ev, NewOrchestrator(store, notifier, mailer, ev, fixedPassword)
}

func baseRequest() Request {
	return Request{
		BusinessID: "b1",
		ServiceID:  "svc1",
		StaffID:    "st1",
		Date:       time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		FirstName:  "Dana",
		LastName:   "Reyes",
		Email:      "dana@example.com",
		Phone:      "555-0101",
	}
}

func TestBookCreatesClientAndAppointment(t *testing.T) {
	store, notifier, mailer, ev, o := newFixture()

	res, err := o.Book(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if !res.NewClient {
		t.Fatal("expected a new client account")
	}
	if len(store.createdUsers) != 1 || store.createdUsers[0].Role != model.RoleClient {
		t.Fatalf("expected one client account, got %+v", store.createdUsers)
	}
	if len(store.appointments) != 1 {
		t.Fatalf("expected one appointment, got %d", len(store.appointments))
	}
	appt := store.appointments[0]
	if appt.Status != model.AppointmentPending {
		t.Fatalf("new booking must be pending, got %s", appt.Status)
	}
	if appt.PriceFinal == nil || *appt.PriceFinal != 50.0 {
		t.Fatalf("price should default from the service, got %v", appt.PriceFinal)
	}

	// owner, assigned staff member and client are all notified
	if len(notifier.sent) != 3 || notifier.sent[0] != "owner1:appointment_booked" {
		t.Fatalf("unexpected notifications: %v", notifier.sent)
	}
	if notifier.sent[1] != "staffuser1:appointment_booked" {
		t.Fatalf("assigned staff member not notified: %v", notifier.sent)
	}
	// new clients get a welcome mail with credentials plus the confirmation
	if len(mailer.mails) != 2 || !strings.Contains(mailer.mails[0].HTML, "temp-pass-123") {
		t.Fatalf("unexpected mails: %+v", mailer.mails)
	}
	if len(ev.types) != 1 || ev.types[0] != "appointment.booked" {
		t.Fatalf("unexpected events: %v", ev.types)
	}
}

func TestBookOwnerDoublingAsStaffNotifiedOnce(t *testing.T) {
	store, notifier, _, _, o := newFixture()
	st := store.staff["st1"]
	st.UserID = "owner1"
	store.staff["st1"] = st

	if _, err := o.Book(context.Background(), baseRequest()); err != nil {
		t.Fatalf("Book: %v", err)
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("expected owner and client notices only, got %v", notifier.sent)
	}
}

func TestBookReusesExistingAccount(t *testing.T) {
	store, _, mailer, _, o := newFixture()
	store.usersByEmail["dana@example.com"] = model.User{
		ID: "u9", Email: "dana@example.com", Role: model.RoleClient, IsActive: true,
	}

	res, err := o.Book(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if res.NewClient || res.ClientID != "u9" {
		t.Fatalf("expected reuse of u9, got %+v", res)
	}
	if len(store.createdUsers) != 0 {
		t.Fatal("no account should be created")
	}
	// returning clients get only the confirmation mail
	if len(mailer.mails) != 1 {
		t.Fatalf("expected one mail, got %d", len(mailer.mails))
	}
}

func TestBookRejectsInconsistentCatalog(t *testing.T) {
	store, _, _, _, o := newFixture()

	req := baseRequest()
	req.ServiceID = "missing"
	if _, err := o.Book(context.Background(), req); !apperr.IsNotFound(err) {
		t.Fatalf("missing service: %v", err)
	}

	store.businesses["b1"] = model.Business{ID: "b1", OwnerID: "owner1", IsActive: false}
	if _, err := o.Book(context.Background(), baseRequest()); !apperr.IsNotFound(err) {
		t.Fatalf("inactive business must read as missing: %v", err)
	}
	store.businesses["b1"] = model.Business{ID: "b1", OwnerID: "owner1", IsActive: true}

	// staff from another business
	store.staff["st1"] = model.Staff{ID: "st1", BusinessID: "b2", ServiceIDs: []string{"svc1"}, IsActive: true}
	if _, err := o.Book(context.Background(), baseRequest()); !apperr.IsNotFound(err) {
		t.Fatalf("cross-business staff must read as missing: %v", err)
	}

	// staff not offering the service
	store.staff["st1"] = model.Staff{ID: "st1", BusinessID: "b1", IsActive: true}
	if _, err := o.Book(context.Background(), baseRequest()); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("unoffered service should fail validation: %v", err)
	}
}

func TestBookValidation(t *testing.T) {
	_, _, _, _, o := newFixture()

	req := baseRequest()
	req.Email = ""
	if _, err := o.Book(context.Background(), req); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("missing email: %v", err)
	}

	req = baseRequest()
	req.Date = time.Time{}
	if _, err := o.Book(context.Background(), req); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("missing date: %v", err)
	}
}
