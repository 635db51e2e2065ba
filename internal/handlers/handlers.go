package handlers

import (
	"github.com/shgbook/shgbook-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Borrower     *BorrowerHandler
	Loan         *LoanHandler
	Payment      *PaymentHandler
	Reminder     *ReminderHandler
	Notification *NotificationHandler
	Settings     *SettingsHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Borrower:     NewBorrowerHandler(svcs.Borrower, svcs.Loan),
		Loan:         NewLoanHandler(svcs.Loan, svcs.Payment),
		Payment:      NewPaymentHandler(svcs.Payment, svcs.Reminder),
		Reminder:     NewReminderHandler(svcs.Reminder, svcs.Settings, svcs.Scheduler),
		Notification: NewNotificationHandler(svcs.Notification, svcs.Reminder),
		Settings:     NewSettingsHandler(svcs.Settings),
		Job:          NewJobHandler(svcs.Job),
	}
}
