package models

import (
	"time"
)

// Notification channel constants
const (
	ChannelSMS      = "sms"
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
	ChannelPush     = "push"
)

// Notification status constants
const (
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
	NotificationStatusPending = "pending"
)

// NotificationLog is one row per dispatch attempt. Append-only.
type NotificationLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReminderID   string    `gorm:"not null;index" json:"reminder_id"`
	BorrowerID   uint      `gorm:"not null;index" json:"borrower_id"`
	LoanID       uint      `gorm:"not null;index" json:"loan_id"`
	Channel      string    `gorm:"not null;index" json:"channel"`
	Status       string    `gorm:"not null;index" json:"status"`
	Message      string    `gorm:"type:text;not null" json:"message"`
	ErrorMessage *string   `gorm:"type:text" json:"error_message,omitempty"`
	SentAt       time.Time `gorm:"not null;index" json:"sent_at"`
}

// TableName specifies the table name for NotificationLog
func (NotificationLog) TableName() string {
	return "notification_logs"
}

// PaymentReminder is a derived fact: this unpaid payment currently warrants
// a notification. It is computed on demand and never persisted.
type PaymentReminder struct {
	ID           string    `json:"id"`
	PaymentID    uint      `json:"payment_id"`
	LoanID       uint      `json:"loan_id"`
	BorrowerID   uint      `json:"borrower_id"`
	DueDate      time.Time `json:"due_date"`
	Amount       float64   `json:"amount"`
	BorrowerName string    `json:"borrower_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	DaysUntilDue int       `json:"days_until_due"`
	IsOverdue    bool      `json:"is_overdue"`
}

// ReminderSettings is process-wide reminder configuration, persisted as a
// JSON blob in the key-value store and merged over defaults on load.
type ReminderSettings struct {
	DaysBeforeDue           int       `json:"days_before_due"`
	EnableSMS               bool      `json:"enable_sms"`
	EnableEmail             bool      `json:"enable_email"`
	EnableWhatsApp          bool      `json:"enable_whatsapp"`
	WhatsAppAPIKey          string    `json:"whatsapp_api_key,omitempty"`
	WhatsAppFromNumber      string    `json:"whatsapp_from_number,omitempty"`
	ReminderTime            string    `json:"reminder_time"` // HH:MM
	EnableOverdueReminders  bool      `json:"enable_overdue_reminders"`
	OverdueReminderInterval int       `json:"overdue_reminder_interval"` // days
	EnableAutoReminders     bool      `json:"enable_auto_reminders"`
	AutoReminderInterval    int       `json:"auto_reminder_interval"` // minutes
	LastAutoReminderCheck   time.Time `json:"last_auto_reminder_check"`
}

// ReminderSettingsPatch is a partial update; nil fields are left unchanged
type ReminderSettingsPatch struct {
	DaysBeforeDue           *int    `json:"days_before_due"`
	EnableSMS               *bool   `json:"enable_sms"`
	EnableEmail             *bool   `json:"enable_email"`
	EnableWhatsApp          *bool   `json:"enable_whatsapp"`
	WhatsAppAPIKey          *string `json:"whatsapp_api_key"`
	WhatsAppFromNumber      *string `json:"whatsapp_from_number"`
	ReminderTime            *string `json:"reminder_time"`
	EnableOverdueReminders  *bool   `json:"enable_overdue_reminders"`
	OverdueReminderInterval *int    `json:"overdue_reminder_interval"`
	EnableAutoReminders     *bool   `json:"enable_auto_reminders"`
	AutoReminderInterval    *int    `json:"auto_reminder_interval"`
}

// Apply merges the patch onto s and reports whether a field relevant to the
// auto-reminder timer (enable flag or interval) changed.
func (p *ReminderSettingsPatch) Apply(s *ReminderSettings) (timerChanged bool) {
	if p.DaysBeforeDue != nil {
		s.DaysBeforeDue = *p.DaysBeforeDue
	}
	if p.EnableSMS != nil {
		s.EnableSMS = *p.EnableSMS
	}
	if p.EnableEmail != nil {
		s.EnableEmail = *p.EnableEmail
	}
	if p.EnableWhatsApp != nil {
		s.EnableWhatsApp = *p.EnableWhatsApp
	}
	if p.WhatsAppAPIKey != nil {
		s.WhatsAppAPIKey = *p.WhatsAppAPIKey
	}
	if p.WhatsAppFromNumber != nil {
		s.WhatsAppFromNumber = *p.WhatsAppFromNumber
	}
	if p.ReminderTime != nil {
		s.ReminderTime = *p.ReminderTime
	}
	if p.EnableOverdueReminders != nil {
		s.EnableOverdueReminders = *p.EnableOverdueReminders
	}
	if p.OverdueReminderInterval != nil {
		s.OverdueReminderInterval = *p.OverdueReminderInterval
	}
	if p.EnableAutoReminders != nil {
		if s.EnableAutoReminders != *p.EnableAutoReminders {
			timerChanged = true
		}
		s.EnableAutoReminders = *p.EnableAutoReminders
	}
	if p.AutoReminderInterval != nil {
		if s.AutoReminderInterval != *p.AutoReminderInterval {
			timerChanged = true
		}
		s.AutoReminderInterval = *p.AutoReminderInterval
	}
	return timerChanged
}

// DefaultReminderSettings returns the hard-coded defaults applied before any
// persisted overrides.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		DaysBeforeDue:           3,
		EnableSMS:               true,
		EnableEmail:             true,
		EnableWhatsApp:          false,
		ReminderTime:            "09:00",
		EnableOverdueReminders:  true,
		OverdueReminderInterval: 7,
		EnableAutoReminders:     true,
		AutoReminderInterval:    60,
	}
}
