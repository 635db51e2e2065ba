package repository

import (
	"context"
	"time"

	"github.com/shgbook/shgbook-api/internal/models"
	"gorm.io/gorm"
)

// NotificationLogRepository records dispatch outcomes. The log is
// append-only: entries are created and queried, never updated.
type NotificationLogRepository interface {
	Create(ctx context.Context, log *models.NotificationLog) error
	FindByReminder(ctx context.Context, reminderID string) ([]models.NotificationLog, error)
	FindRecent(ctx context.Context, since time.Time) ([]models.NotificationLog, error)
	DeleteByLoan(ctx context.Context, loanID uint) error
	DeleteByBorrower(ctx context.Context, borrowerID uint) error
}

type notificationLogRepository struct {
	db *gorm.DB
}

// NewNotificationLogRepository creates a new notification log repository
func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Create(ctx context.Context, log *models.NotificationLog) error {
	if log.SentAt.IsZero() {
		log.SentAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *notificationLogRepository) FindByReminder(ctx context.Context, reminderID string) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	err := r.db.WithContext(ctx).
		Where("reminder_id = ?", reminderID).
		Order("sent_at DESC").
		Find(&logs).Error
	return logs, err
}

func (r *notificationLogRepository) FindRecent(ctx context.Context, since time.Time) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	err := r.db.WithContext(ctx).
		Where("sent_at >= ?", since).
		Order("sent_at DESC").
		Find(&logs).Error
	return logs, err
}

func (r *notificationLogRepository) DeleteByLoan(ctx context.Context, loanID uint) error {
	return r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Delete(&models.NotificationLog{}).Error
}

func (r *notificationLogRepository) DeleteByBorrower(ctx context.Context, borrowerID uint) error {
	return r.db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Delete(&models.NotificationLog{}).Error
}
