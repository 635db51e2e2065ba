package services

import (
	"context"
	"time"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/repository"
)

// NotificationService exposes the append-only dispatch history
type NotificationService struct {
	repo repository.NotificationLogRepository
}

func NewNotificationService(repo repository.NotificationLogRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) LogsByReminder(ctx context.Context, reminderID string) ([]models.NotificationLog, error) {
	return s.repo.FindByReminder(ctx, reminderID)
}

// RecentLogs returns dispatch attempts from the past N hours, newest first
func (s *NotificationService) RecentLogs(ctx context.Context, hours int) ([]models.NotificationLog, error) {
	if hours <= 0 {
		hours = 24
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	return s.repo.FindRecent(ctx, since)
}
