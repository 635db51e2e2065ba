package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/notifier"
	"github.com/stretchr/testify/assert"
)

type reminderFixture struct {
	service  *ReminderService
	settings *SettingsService
	store    *memStore
	payments *mockPaymentRepository
	logs     *mockLogRepository
	sms      *fakeSMS
	email    *fakeEmail
	whatsapp *fakeWhatsApp
	push     *fakePush
}

func newReminderFixture(now time.Time) *reminderFixture {
	f := &reminderFixture{
		store:    &memStore{},
		payments: &mockPaymentRepository{},
		logs:     &mockLogRepository{},
		sms:      &fakeSMS{},
		email:    &fakeEmail{},
		whatsapp: &fakeWhatsApp{},
		push:     &fakePush{},
	}
	f.settings = NewSettingsService(f.store)
	gateways := &notifier.Gateways{
		SMS:      f.sms,
		Email:    f.email,
		WhatsApp: f.whatsapp,
		Push:     f.push,
	}
	f.service = NewReminderService(f.payments, f.logs, gateways, f.settings)
	f.service.now = func() time.Time { return now }
	return f
}

func (f *reminderFixture) storeSettings(t *testing.T, s models.ReminderSettings) {
	blob, err := json.Marshal(s)
	assert.NoError(t, err)
	assert.NoError(t, f.store.Put(context.Background(), blob))
}

func unpaidPayment(id, borrowerID uint, dueDate time.Time, amount float64) models.Payment {
	return models.Payment{
		ID:         id,
		LoanID:     1,
		BorrowerID: borrowerID,
		Amount:     amount,
		DueDate:    dueDate,
		Borrower: models.Borrower{
			ID:    borrowerID,
			Name:  "Lakshmi Devi",
			Phone: "9876543210",
			Email: "lakshmi@example.com",
		},
	}
}

func TestDueRemindersUpcomingWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	f := newReminderFixture(now)

	f.payments.mockFindUnpaid = func(ctx context.Context) ([]models.Payment, error) {
		return []models.Payment{
			unpaidPayment(1, 10, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 1000), // due today
			unpaidPayment(2, 10, time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), 1000), // in 3 days
			unpaidPayment(3, 10, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), 1000), // in 4 days, outside window
		}, nil
	}

	reminders, err := f.service.DueReminders(context.Background())
	assert.NoError(t, err)
	assert.Len(t, reminders, 2)

	assert.Equal(t, "reminder_1", reminders[0].ID)
	assert.Equal(t, 0, reminders[0].DaysUntilDue)
	assert.False(t, reminders[0].IsOverdue)

	assert.Equal(t, "reminder_2", reminders[1].ID)
	assert.Equal(t, 3, reminders[1].DaysUntilDue)
}

func TestDueRemindersOverdueInterval(t *testing.T) {
	now := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	f.payments.mockFindUnpaid = func(ctx context.Context) ([]models.Payment, error) {
		return []models.Payment{
			unpaidPayment(1, 10, time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), 1000), // 7 days overdue
			unpaidPayment(2, 10, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), 1000), // 8 days overdue
			unpaidPayment(3, 10, time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC), 1000),  // 14 days overdue
		}, nil
	}

	reminders, err := f.service.DueReminders(context.Background())
	assert.NoError(t, err)
	assert.Len(t, reminders, 2)
	assert.Equal(t, "reminder_1", reminders[0].ID)
	assert.True(t, reminders[0].IsOverdue)
	assert.Equal(t, -7, reminders[0].DaysUntilDue)
	assert.Equal(t, "reminder_3", reminders[1].ID)
	assert.Equal(t, -14, reminders[1].DaysUntilDue)
}

func TestDueRemindersOverdueDisabled(t *testing.T) {
	now := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	custom := models.DefaultReminderSettings()
	custom.EnableOverdueReminders = false
	f.storeSettings(t, custom)

	f.payments.mockFindUnpaid = func(ctx context.Context) ([]models.Payment, error) {
		return []models.Payment{
			unpaidPayment(1, 10, time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), 1000),
		}, nil
	}

	reminders, err := f.service.DueReminders(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestDueRemindersSkipsUnresolvedBorrower(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	f.payments.mockFindUnpaid = func(ctx context.Context) ([]models.Payment, error) {
		orphan := models.Payment{
			ID:         1,
			LoanID:     1,
			BorrowerID: 99,
			Amount:     1000,
			DueDate:    now,
		}
		return []models.Payment{orphan}, nil
	}

	reminders, err := f.service.DueReminders(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, reminders)
}

func TestDueRemindersBindToPaymentBorrower(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	first := unpaidPayment(1, 10, now, 1000)
	second := unpaidPayment(2, 20, now, 2000)
	second.Borrower.Name = "Radha Kumari"
	second.Borrower.Phone = "9123456780"

	f.payments.mockFindUnpaid = func(ctx context.Context) ([]models.Payment, error) {
		return []models.Payment{first, second}, nil
	}

	reminders, err := f.service.DueReminders(context.Background())
	assert.NoError(t, err)
	assert.Len(t, reminders, 2)
	assert.Equal(t, uint(10), reminders[0].BorrowerID)
	assert.Equal(t, "Lakshmi Devi", reminders[0].BorrowerName)
	assert.Equal(t, uint(20), reminders[1].BorrowerID)
	assert.Equal(t, "Radha Kumari", reminders[1].BorrowerName)
	assert.Equal(t, "9123456780", reminders[1].Phone)
}

func TestComposeReminderMessageUpcoming(t *testing.T) {
	reminder := models.PaymentReminder{
		BorrowerName: "Lakshmi Devi",
		Amount:       1000,
		DueDate:      time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		DaysUntilDue: 3,
		IsOverdue:    false,
	}

	msg := ComposeReminderMessage(reminder)
	assert.Equal(t, "Dear Lakshmi Devi, your loan payment of ₹1,000 is due on 15 Mar 2025 (in 3 days). Please ensure timely payment.", msg)

	// Pure function: same input, same output
	assert.Equal(t, msg, ComposeReminderMessage(reminder))
}

func TestComposeReminderMessageOverdue(t *testing.T) {
	reminder := models.PaymentReminder{
		BorrowerName: "Radha Kumari",
		Amount:       2500.5,
		DueDate:      time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		DaysUntilDue: -5,
		IsOverdue:    true,
	}

	msg := ComposeReminderMessage(reminder)
	assert.Equal(t, "Dear Radha Kumari, your loan payment of ₹2,500.50 was due on 28 Feb 2025 (5 days ago). Please make the payment immediately to avoid additional charges.", msg)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "100", formatAmount(100))
	assert.Equal(t, "1,000", formatAmount(1000))
	assert.Equal(t, "25,000", formatAmount(25000))
	assert.Equal(t, "123,456,789", formatAmount(123456789))
	assert.Equal(t, "1,000.50", formatAmount(1000.5))
	assert.Equal(t, "2,500.75", formatAmount(2500.75))
	// rounding at the cent boundary carries into the rupees
	assert.Equal(t, "1,000", formatAmount(999.996))
	assert.Equal(t, "999.99", formatAmount(999.994))
}

func TestDispatchAllChannels(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	reminder := models.PaymentReminder{
		ID:           "reminder_1",
		PaymentID:    1,
		LoanID:       1,
		BorrowerID:   10,
		BorrowerName: "Lakshmi Devi",
		Phone:        "9876543210",
		Email:        "lakshmi@example.com",
		Amount:       1000,
		DueDate:      time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		DaysUntilDue: 3,
	}

	success := f.service.Dispatch(context.Background(), reminder, models.DefaultReminderSettings())
	assert.True(t, success)

	// SMS, email and push; WhatsApp is off by default
	entries := f.logs.all()
	assert.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, models.NotificationStatusSent, e.Status)
		assert.Equal(t, "reminder_1", e.ReminderID)
		assert.Equal(t, uint(10), e.BorrowerID)
	}
	assert.Equal(t, 1, f.sms.calls)
	assert.Equal(t, 1, f.email.calls)
	assert.Equal(t, 0, f.whatsapp.calls)
	assert.Equal(t, 1, f.push.calls)
	assert.Equal(t, []string{"Payment Due Reminder"}, f.email.subjects)
	assert.Equal(t, []string{"Payment Reminder"}, f.push.titles)
}

func TestDispatchPartialFailure(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)
	f.email.err = assert.AnError

	reminder := models.PaymentReminder{
		ID:           "reminder_1",
		PaymentID:    1,
		LoanID:       1,
		BorrowerID:   10,
		BorrowerName: "Lakshmi Devi",
		Phone:        "9876543210",
		Email:        "lakshmi@example.com",
		Amount:       1000,
		DueDate:      now,
	}

	success := f.service.Dispatch(context.Background(), reminder, models.DefaultReminderSettings())
	assert.False(t, success)

	assert.Len(t, f.logs.all(), 3)
	failed := f.logs.byChannel(models.ChannelEmail)
	assert.Len(t, failed, 1)
	assert.Equal(t, models.NotificationStatusFailed, failed[0].Status)
	assert.NotNil(t, failed[0].ErrorMessage)

	sent := f.logs.byChannel(models.ChannelSMS)
	assert.Len(t, sent, 1)
	assert.Equal(t, models.NotificationStatusSent, sent[0].Status)
}

func TestDispatchWhatsAppWithoutAPIKey(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	// Use the real gateway: without an API key it must fail without calling out
	f.service.gateways.WhatsApp = notifier.NewWhatsAppGateway()

	settings := models.DefaultReminderSettings()
	settings.EnableSMS = false
	settings.EnableEmail = false
	settings.EnableWhatsApp = true
	settings.WhatsAppAPIKey = ""

	reminder := models.PaymentReminder{
		ID:         "reminder_1",
		PaymentID:  1,
		LoanID:     1,
		BorrowerID: 10,
		Phone:      "9876543210",
		Amount:     1000,
		DueDate:    now,
	}

	success := f.service.Dispatch(context.Background(), reminder, settings)
	assert.False(t, success)

	entries := f.logs.byChannel(models.ChannelWhatsApp)
	assert.Len(t, entries, 1)
	assert.Equal(t, models.NotificationStatusFailed, entries[0].Status)
}

func TestDispatchSkipsChannelsWithoutContact(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	reminder := models.PaymentReminder{
		ID:         "reminder_1",
		PaymentID:  1,
		LoanID:     1,
		BorrowerID: 10,
		Amount:     1000,
		DueDate:    now,
	}

	success := f.service.Dispatch(context.Background(), reminder, models.DefaultReminderSettings())
	assert.True(t, success)

	// Only push was attempted
	assert.Len(t, f.logs.all(), 1)
	assert.Equal(t, models.ChannelPush, f.logs.all()[0].Channel)
	assert.Equal(t, 0, f.sms.calls)
	assert.Equal(t, 0, f.email.calls)
}

func TestDispatchOverduePushTitle(t *testing.T) {
	now := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	reminder := models.PaymentReminder{
		ID:           "reminder_1",
		PaymentID:    1,
		LoanID:       1,
		BorrowerID:   10,
		Amount:       1000,
		DueDate:      time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		DaysUntilDue: -7,
		IsOverdue:    true,
	}

	settings := models.DefaultReminderSettings()
	settings.EnableSMS = false
	settings.EnableEmail = false

	f.service.Dispatch(context.Background(), reminder, settings)
	assert.Equal(t, []string{"Payment Overdue"}, f.push.titles)
}

func TestProcessReminders(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	f.payments.mockFindUnpaid = func(ctx context.Context) ([]models.Payment, error) {
		return []models.Payment{
			unpaidPayment(1, 10, now, 1000),
			unpaidPayment(2, 20, now, 2000),
		}, nil
	}

	var flagged []uint
	f.payments.mockMarkReminderSent = func(ctx context.Context, ids []uint) error {
		flagged = ids
		return nil
	}

	result, err := f.service.ProcessReminders(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, []uint{1, 2}, flagged)
}

func TestProcessRemindersCountsFailures(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)
	f.sms.err = assert.AnError

	f.payments.mockFindUnpaid = func(ctx context.Context) ([]models.Payment, error) {
		return []models.Payment{unpaidPayment(1, 10, now, 1000)}, nil
	}

	result, err := f.service.ProcessReminders(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Success)
	assert.Equal(t, 1, result.Failed)
}

func TestProcessAutoRemindersDisabled(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	custom := models.DefaultReminderSettings()
	custom.EnableAutoReminders = false
	f.storeSettings(t, custom)

	result := f.service.ProcessAutoReminders(context.Background())
	assert.Equal(t, ReminderRunResult{}, result)
	assert.Equal(t, 0, f.push.calls)
}

func TestProcessAutoRemindersRecordsCheckTime(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	f.payments.mockFindUnpaid = func(ctx context.Context) ([]models.Payment, error) {
		return nil, nil
	}

	f.service.ProcessAutoReminders(context.Background())

	stored := f.settings.Load(context.Background())
	assert.True(t, stored.LastAutoReminderCheck.Equal(now))
}

func TestSendPaymentReminderRejectsPaid(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	f.payments.mockFindByID = func(ctx context.Context, id uint) (*models.Payment, error) {
		p := unpaidPayment(id, 10, now, 1000)
		p.IsPaid = true
		return &p, nil
	}

	_, err := f.service.SendPaymentReminder(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestGetReminderStats(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	f.payments.mockFindUnpaid = func(ctx context.Context) ([]models.Payment, error) {
		return []models.Payment{
			unpaidPayment(1, 10, now, 1000),                                          // due today
			unpaidPayment(2, 10, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), 1000), // upcoming
			unpaidPayment(3, 10, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), 1000),  // 7 days overdue
		}, nil
	}

	stats, err := f.service.GetReminderStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.TotalReminders)
	assert.Equal(t, 1, stats.OverdueReminders)
	assert.Equal(t, 2, stats.UpcomingReminders)
	assert.Equal(t, 1, stats.DueToday)
}

func TestGetNotificationStats(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f := newReminderFixture(now)

	f.logs.mockFindRecent = func(ctx context.Context, since time.Time) ([]models.NotificationLog, error) {
		return []models.NotificationLog{
			{Channel: models.ChannelSMS, Status: models.NotificationStatusSent},
			{Channel: models.ChannelEmail, Status: models.NotificationStatusSent},
			{Channel: models.ChannelEmail, Status: models.NotificationStatusFailed},
			{Channel: models.ChannelPush, Status: models.NotificationStatusSent},
		}, nil
	}

	stats, err := f.service.GetNotificationStats(context.Background(), 24)
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.TotalSent)
	assert.Equal(t, 1, stats.TotalFailed)
	assert.Equal(t, 1, stats.SMSSent)
	assert.Equal(t, 1, stats.EmailSent)
	assert.Equal(t, 0, stats.WhatsAppSent)
	assert.Equal(t, 1, stats.PushSent)
	assert.Len(t, stats.RecentLogs, 4)
}
