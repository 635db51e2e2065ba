package services

import (
	"github.com/shgbook/shgbook-api/internal/jobs"
	"github.com/shgbook/shgbook-api/internal/notifier"
	"github.com/shgbook/shgbook-api/internal/repository"
	"github.com/shgbook/shgbook-api/internal/settings"
)

// Services holds all service instances
type Services struct {
	Borrower     *BorrowerService
	Loan         *LoanService
	Payment      *PaymentService
	Reminder     *ReminderService
	Notification *NotificationService
	Settings     *SettingsService
	Scheduler    *ReminderScheduler
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, gateways *notifier.Gateways, store settings.Store) *Services {
	settingsSvc := NewSettingsService(store)
	reminderSvc := NewReminderService(repos.Payment, repos.NotificationLog, gateways, settingsSvc)
	scheduler := NewReminderScheduler(reminderSvc.ProcessAutoReminders)
	settingsSvc.AttachScheduler(scheduler)

	return &Services{
		Borrower:     NewBorrowerService(repos.Borrower, repos.Loan, repos.Payment, repos.NotificationLog),
		Loan:         NewLoanService(repos.Loan, repos.Borrower, repos.Payment),
		Payment:      NewPaymentService(repos.Payment, repos.Loan),
		Reminder:     reminderSvc,
		Notification: NewNotificationService(repos.NotificationLog),
		Settings:     settingsSvc,
		Scheduler:    scheduler,
		Job:          NewJobService(worker, scheduler),
	}
}
