package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/internal/settings"
	"github.com/shgbook/shgbook-api/pkg/logger"
)

// SettingsService persists reminder settings as a JSON blob in the key-value
// store. Loading always succeeds: corrupt or missing data falls back to the
// defaults.
type SettingsService struct {
	store     settings.Store
	scheduler *ReminderScheduler
}

func NewSettingsService(store settings.Store) *SettingsService {
	return &SettingsService{store: store}
}

// AttachScheduler hooks up the auto reminder timer so settings updates can
// restart it. Called once during wiring.
func (s *SettingsService) AttachScheduler(scheduler *ReminderScheduler) {
	s.scheduler = scheduler
}

// Load returns the current settings, merging any persisted overrides over the
// defaults. It never fails; store errors are logged and the defaults win.
func (s *SettingsService) Load(ctx context.Context) models.ReminderSettings {
	defaults := models.DefaultReminderSettings()

	blob, err := s.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, settings.ErrNotFound) {
			logger.Error(fmt.Sprintf("Failed to load reminder settings: %v", err))
		}
		return defaults
	}

	merged := defaults
	if err := json.Unmarshal(blob, &merged); err != nil {
		logger.Error(fmt.Sprintf("Failed to parse stored reminder settings: %v", err))
		return defaults
	}
	return merged
}

// Update applies a partial update and persists the result. When the auto
// reminder toggle or interval changed, the timer is restarted (or stopped)
// under the new settings.
func (s *SettingsService) Update(ctx context.Context, patch *models.ReminderSettingsPatch) (*models.ReminderSettings, error) {
	current := s.Load(ctx)
	timerChanged := patch.Apply(&current)

	if err := s.persist(ctx, current); err != nil {
		return nil, err
	}

	if timerChanged && s.scheduler != nil {
		if current.EnableAutoReminders {
			s.scheduler.Start(current)
		} else {
			s.scheduler.Stop()
		}
	}

	logger.Info("Reminder settings updated")
	return &current, nil
}

// RecordAutoCheck stores the time of the last automatic reminder run without
// touching the timer.
func (s *SettingsService) RecordAutoCheck(ctx context.Context, t time.Time) error {
	current := s.Load(ctx)
	current.LastAutoReminderCheck = t
	return s.persist(ctx, current)
}

func (s *SettingsService) persist(ctx context.Context, current models.ReminderSettings) error {
	blob, err := json.Marshal(current)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, blob); err != nil {
		return fmt.Errorf("saving reminder settings: %w", err)
	}
	return nil
}
