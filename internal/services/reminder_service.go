package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/notifier"
	"github.com/shgbook/shgbook-api/internal/repository"
	"github.com/shgbook/shgbook-api/pkg/logger"
)

// ReminderRunResult is the outcome of one processing run
type ReminderRunResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// ReminderStats summarizes the reminders currently due
type ReminderStats struct {
	TotalReminders    int `json:"total_reminders"`
	OverdueReminders  int `json:"overdue_reminders"`
	UpcomingReminders int `json:"upcoming_reminders"`
	DueToday          int `json:"due_today"`
}

// NotificationStats summarizes recent dispatch attempts per channel
type NotificationStats struct {
	TotalSent    int                      `json:"total_sent"`
	TotalFailed  int                      `json:"total_failed"`
	SMSSent      int                      `json:"sms_sent"`
	EmailSent    int                      `json:"email_sent"`
	WhatsAppSent int                      `json:"whatsapp_sent"`
	PushSent     int                      `json:"push_sent"`
	RecentLogs   []models.NotificationLog `json:"recent_logs"`
}

// ReminderService decides which payments warrant a reminder, composes the
// message and fans it out across the configured channels.
type ReminderService struct {
	paymentRepo repository.PaymentRepository
	logRepo     repository.NotificationLogRepository
	gateways    *notifier.Gateways
	settings    *SettingsService
	now         func() time.Time
}

func NewReminderService(
	paymentRepo repository.PaymentRepository,
	logRepo repository.NotificationLogRepository,
	gateways *notifier.Gateways,
	settings *SettingsService,
) *ReminderService {
	return &ReminderService{
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
		gateways:    gateways,
		settings:    settings,
		now:         time.Now,
	}
}

// daysBetween returns the signed number of calendar days from one date to
// another, ignoring the time of day.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// formatAmount renders a rupee amount with thousands separators, keeping two
// decimals only when the amount is not whole.
func formatAmount(amount float64) string {
	cents := int64(math.Round(amount * 100))
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 && d != '-' {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if frac != 0 {
		return fmt.Sprintf("%s.%02d", b.String(), frac)
	}
	return b.String()
}

// shouldRemind applies the selection rule for a single unpaid payment.
// Overdue payments fire on every Nth day past due; upcoming payments fire
// inside the days-before-due window, including the due date itself.
func shouldRemind(daysUntilDue int, isOverdue bool, settings models.ReminderSettings) bool {
	if isOverdue {
		if !settings.EnableOverdueReminders || settings.OverdueReminderInterval <= 0 {
			return false
		}
		overdueDays := -daysUntilDue
		return overdueDays%settings.OverdueReminderInterval == 0
	}
	return daysUntilDue >= 0 && daysUntilDue <= settings.DaysBeforeDue
}

// DueReminders scans unpaid payments and returns one reminder per payment
// that currently warrants a notification. Each reminder is bound to the
// payment's own borrower; payments whose borrower no longer resolves are
// skipped.
func (s *ReminderService) DueReminders(ctx context.Context) ([]models.PaymentReminder, error) {
	settings := s.settings.Load(ctx)

	payments, err := s.paymentRepo.FindUnpaid(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now()
	reminders := make([]models.PaymentReminder, 0)
	for i := range payments {
		payment := &payments[i]

		daysUntilDue := daysBetween(today, payment.DueDate)
		isOverdue := daysUntilDue < 0

		if !shouldRemind(daysUntilDue, isOverdue, settings) {
			continue
		}
		if payment.Borrower.ID == 0 {
			logger.Debug(fmt.Sprintf("Skipping reminder for payment %d: borrower %d not found", payment.ID, payment.BorrowerID))
			continue
		}

		reminders = append(reminders, models.PaymentReminder{
			ID:           fmt.Sprintf("reminder_%d", payment.ID),
			PaymentID:    payment.ID,
			LoanID:       payment.LoanID,
			BorrowerID:   payment.BorrowerID,
			DueDate:      payment.DueDate,
			Amount:       payment.Amount,
			BorrowerName: payment.Borrower.Name,
			Phone:        payment.Borrower.Phone,
			Email:        payment.Borrower.Email,
			DaysUntilDue: daysUntilDue,
			IsOverdue:    isOverdue,
		})
	}

	return reminders, nil
}

// ComposeReminderMessage builds the notification text for a reminder. It is
// a pure function of its input.
func ComposeReminderMessage(r models.PaymentReminder) string {
	dueDate := r.DueDate.Format("02 Jan 2006")
	amount := "₹" + formatAmount(r.Amount)

	if r.IsOverdue {
		overdueDays := -r.DaysUntilDue
		return fmt.Sprintf(
			"Dear %s, your loan payment of %s was due on %s (%d days ago). Please make the payment immediately to avoid additional charges.",
			r.BorrowerName, amount, dueDate, overdueDays,
		)
	}
	return fmt.Sprintf(
		"Dear %s, your loan payment of %s is due on %s (in %d days). Please ensure timely payment.",
		r.BorrowerName, amount, dueDate, r.DaysUntilDue,
	)
}

// Dispatch sends one reminder across all configured channels concurrently and
// writes one notification log row per attempt. It returns true only when
// every attempted channel succeeded.
func (s *ReminderService) Dispatch(ctx context.Context, reminder models.PaymentReminder, settings models.ReminderSettings) (success bool) {
	logID := reminder.ID
	if logID == "" {
		logID = "temp_" + uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Reminder dispatch panic for %s: %v", logID, r))
			errMsg := fmt.Sprintf("panic: %v", r)
			s.logAttempt(ctx, logID, reminder, models.ChannelSMS, false, "Failed to process reminder", &errMsg)
			success = false
		}
	}()

	message := ComposeReminderMessage(reminder)

	var wg sync.WaitGroup
	var mu sync.Mutex
	overall := true

	record := func(channel, loggedMessage string, err error) {
		mu.Lock()
		if err != nil {
			overall = false
		}
		mu.Unlock()

		var errMsg *string
		if err != nil {
			m := err.Error()
			errMsg = &m
		}
		s.logAttempt(ctx, logID, reminder, channel, err == nil, loggedMessage, errMsg)
	}

	if settings.EnableSMS && reminder.Phone != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.gateways.SMS.SendSMS(ctx, reminder.Phone, message)
			record(models.ChannelSMS, message, err)
		}()
	}

	if settings.EnableEmail && reminder.Email != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			subject := "Payment Due Reminder"
			if reminder.IsOverdue {
				subject = "Overdue Payment Reminder"
			}
			err := s.gateways.Email.SendEmail(ctx, reminder.Email, subject, message)
			record(models.ChannelEmail, subject+": "+message, err)
		}()
	}

	if settings.EnableWhatsApp && reminder.Phone != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.gateways.WhatsApp.SendWhatsApp(ctx, reminder.Phone, message, settings.WhatsAppAPIKey, settings.WhatsAppFromNumber)
			record(models.ChannelWhatsApp, message, err)
		}()
	}

	// Push is always attempted
	wg.Add(1)
	go func() {
		defer wg.Done()
		title := "Payment Reminder"
		state := "due soon"
		if reminder.IsOverdue {
			title = "Payment Overdue"
			state = "overdue"
		}
		body := fmt.Sprintf("Your payment of ₹%s is %s", formatAmount(reminder.Amount), state)
		err := s.gateways.Push.SendPush(ctx, reminder.BorrowerID, title, body)
		record(models.ChannelPush, title+": "+body, err)
	}()

	wg.Wait()
	return overall
}

func (s *ReminderService) logAttempt(ctx context.Context, logID string, reminder models.PaymentReminder, channel string, sent bool, message string, errMsg *string) {
	status := models.NotificationStatusSent
	if !sent {
		status = models.NotificationStatusFailed
	}
	entry := &models.NotificationLog{
		ReminderID:   logID,
		BorrowerID:   reminder.BorrowerID,
		LoanID:       reminder.LoanID,
		Channel:      channel,
		Status:       status,
		Message:      message,
		ErrorMessage: errMsg,
		SentAt:       s.now(),
	}
	if err := s.logRepo.Create(ctx, entry); err != nil {
		logger.Error(fmt.Sprintf("Failed to write notification log for %s/%s: %v", logID, channel, err))
	}
}

// SendPaymentReminder dispatches a reminder for a single payment right now,
// regardless of the selection rules. Paid payments are rejected.
func (s *ReminderService) SendPaymentReminder(ctx context.Context, paymentID uint) (bool, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return false, err
	}
	if payment.IsPaid {
		return false, ErrAlreadyPaid
	}
	if payment.Borrower.ID == 0 {
		return false, ErrNotFound
	}

	daysUntilDue := daysBetween(s.now(), payment.DueDate)
	reminder := models.PaymentReminder{
		ID:           fmt.Sprintf("reminder_%d", payment.ID),
		PaymentID:    payment.ID,
		LoanID:       payment.LoanID,
		BorrowerID:   payment.BorrowerID,
		DueDate:      payment.DueDate,
		Amount:       payment.Amount,
		BorrowerName: payment.Borrower.Name,
		Phone:        payment.Borrower.Phone,
		Email:        payment.Borrower.Email,
		DaysUntilDue: daysUntilDue,
		IsOverdue:    daysUntilDue < 0,
	}

	settings := s.settings.Load(ctx)
	success := s.Dispatch(ctx, reminder, settings)
	if success {
		if err := s.paymentRepo.MarkReminderSent(ctx, []uint{payment.ID}); err != nil {
			logger.Error(fmt.Sprintf("Failed to flag payment %d as reminded: %v", payment.ID, err))
		}
	}
	return success, nil
}

// ProcessReminders runs the full pipeline once: select due reminders, dispatch
// each one and report how many fully succeeded.
func (s *ReminderService) ProcessReminders(ctx context.Context) (ReminderRunResult, error) {
	reminders, err := s.DueReminders(ctx)
	if err != nil {
		return ReminderRunResult{}, err
	}

	settings := s.settings.Load(ctx)
	result := ReminderRunResult{}
	var sentPayments []uint

	for _, reminder := range reminders {
		if s.Dispatch(ctx, reminder, settings) {
			result.Success++
			sentPayments = append(sentPayments, reminder.PaymentID)
		} else {
			result.Failed++
		}
	}

	if len(sentPayments) > 0 {
		if err := s.paymentRepo.MarkReminderSent(ctx, sentPayments); err != nil {
			logger.Error(fmt.Sprintf("Failed to flag %d payments as reminded: %v", len(sentPayments), err))
		}
	}

	logger.Info(fmt.Sprintf("Reminder run finished: %d sent, %d failed", result.Success, result.Failed))
	return result, nil
}

// ProcessAutoReminders is the scheduled entry point. It honors the auto
// reminder toggle, records the check time and never returns an error: a
// failed run is reported as skipped so the timer keeps going.
func (s *ReminderService) ProcessAutoReminders(ctx context.Context) ReminderRunResult {
	settings := s.settings.Load(ctx)
	if !settings.EnableAutoReminders {
		logger.Debug("Auto reminders are disabled, skipping run")
		return ReminderRunResult{}
	}

	result, err := s.ProcessReminders(ctx)
	if err != nil {
		logger.Error(fmt.Sprintf("Auto reminder run failed: %v", err))
		return ReminderRunResult{Skipped: 1}
	}

	if err := s.settings.RecordAutoCheck(ctx, s.now()); err != nil {
		logger.Error(fmt.Sprintf("Failed to record auto reminder check time: %v", err))
	}
	return result
}

// GetReminderStats summarizes the reminders that are currently due
func (s *ReminderService) GetReminderStats(ctx context.Context) (*ReminderStats, error) {
	reminders, err := s.DueReminders(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ReminderStats{TotalReminders: len(reminders)}
	for _, r := range reminders {
		if r.IsOverdue {
			stats.OverdueReminders++
		} else {
			stats.UpcomingReminders++
		}
		if r.DaysUntilDue == 0 {
			stats.DueToday++
		}
	}
	return stats, nil
}

// GetNotificationStats summarizes dispatch attempts over the past N hours
func (s *ReminderService) GetNotificationStats(ctx context.Context, hours int) (*NotificationStats, error) {
	if hours <= 0 {
		hours = 24
	}
	since := s.now().Add(-time.Duration(hours) * time.Hour)
	logs, err := s.logRepo.FindRecent(ctx, since)
	if err != nil {
		return nil, err
	}

	stats := &NotificationStats{}
	for _, log := range logs {
		switch log.Status {
		case models.NotificationStatusSent:
			stats.TotalSent++
			switch log.Channel {
			case models.ChannelSMS:
				stats.SMSSent++
			case models.ChannelEmail:
				stats.EmailSent++
			case models.ChannelWhatsApp:
				stats.WhatsAppSent++
			case models.ChannelPush:
				stats.PushSent++
			}
		case models.NotificationStatusFailed:
			stats.TotalFailed++
		}
	}

	if len(logs) > 10 {
		logs = logs[:10]
	}
	stats.RecentLogs = logs
	return stats, nil
}
