package handlers

import "net/http"

// Routes mounts every API endpoint on mux using Go 1.22 method
// patterns.
func (h *Handler) Routes(mux *http.ServeMux) {
	// authentication and own profile
	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("GET /api/auth/me", h.me)
	mux.HandleFunc("PUT /api/auth/me", h.updateMe)
	mux.HandleFunc("PUT /api/auth/me/language", h.updateLanguage)
	mux.HandleFunc("PUT /api/auth/me/password", h.changePassword)

	// users
	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("POST /api/users", h.createUser)
	mux.HandleFunc("GET /api/users/{id}", h.getUser)
	mux.HandleFunc("PUT /api/users/{id}", h.updateUser)
	mux.HandleFunc("PUT /api/users/{id}/businesses", h.setUserBusinesses)

	// businesses
	mux.HandleFunc("GET /api/businesses", h.listBusinesses)
	mux.HandleFunc("POST /api/businesses", h.createBusiness)
	mux.HandleFunc("GET /api/businesses/{id}", h.getBusiness)
	mux.HandleFunc("PUT /api/businesses/{id}", h.updateBusiness)
	mux.HandleFunc("PUT /api/businesses/{id}/payment-config", h.updatePaymentConfig)

	// catalog
	mux.HandleFunc("GET /api/services", h.listServices)
	mux.HandleFunc("POST /api/services", h.createService)
	mux.HandleFunc("GET /api/services/{id}", h.getService)
	mux.HandleFunc("PUT /api/services/{id}", h.updateService)
	mux.HandleFunc("GET /api/staff", h.listStaff)
	mux.HandleFunc("POST /api/staff", h.createStaff)
	mux.HandleFunc("GET /api/staff/{id}", h.getStaff)
	mux.HandleFunc("PUT /api/staff/{id}", h.updateStaff)

	// appointments
	mux.HandleFunc("GET /api/appointments", h.listAppointments)
	mux.HandleFunc("POST /api/appointments", h.createAppointment)
	mux.HandleFunc("GET /api/appointments/{id}", h.getAppointment)
	mux.HandleFunc("PUT /api/appointments/{id}", h.updateAppointment)
	mux.HandleFunc("DELETE /api/appointments/{id}", h.deleteAppointment)
	mux.HandleFunc("POST /api/appointments/{id}/complete", h.completeAppointment)
	mux.HandleFunc("POST /api/appointments/{id}/validate-payment", h.validatePayment)
	mux.HandleFunc("POST /api/appointments/{id}/confirm-payment", h.confirmPayment)

	// notifications
	mux.HandleFunc("GET /api/notifications", h.listNotifications)
	mux.HandleFunc("PUT /api/notifications/{id}/read", h.markNotificationRead)
	mux.HandleFunc("PUT /api/notifications/read-all", h.markAllNotificationsRead)

	// finance
	mux.HandleFunc("GET /api/finance/income/{businessID}", h.income)
	mux.HandleFunc("GET /api/finance/pending-validation/{businessID}", h.pendingValidation)
	mux.HandleFunc("POST /api/finance/payment", h.recordPayment)
	mux.HandleFunc("GET /api/finance/platform", h.listPlatformPayments)
	mux.HandleFunc("POST /api/finance/platform/payment", h.recordPlatformPayment)
	mux.HandleFunc("POST /api/finance/platform/stripe-webhook", h.stripeWebhook)

	// reports
	mux.HandleFunc("GET /api/reports/appointments", h.appointmentReport)
	mux.HandleFunc("GET /api/reports/income", h.incomeReport)
	mux.HandleFunc("GET /api/reports/clients", h.clientReport)

	// public booking surface
	mux.HandleFunc("GET /api/public/businesses", h.publicBusinesses)
	mux.HandleFunc("GET /api/public/businesses/{id}/services", h.publicServices)
	mux.HandleFunc("GET /api/public/services/{id}/staff", h.publicStaff)
	mux.HandleFunc("GET /api/public/staff/{id}/availability", h.publicAvailability)
	mux.HandleFunc("POST /api/public/book", h.publicBook)

	// one-shot bootstrap
	mux.HandleFunc("POST /api/setup/super-admin", h.setupSuperAdmin)
}
