package services

import (
	"context"
	"testing"
	"time"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSettingsLoadDefaultsWhenEmpty(t *testing.T) {
	svc := NewSettingsService(&memStore{})

	settings := svc.Load(context.Background())
	assert.Equal(t, models.DefaultReminderSettings(), settings)
}

func TestSettingsLoadMergesStoredOverrides(t *testing.T) {
	store := &memStore{}
	assert.NoError(t, store.Put(context.Background(), []byte(`{"days_before_due":5,"enable_whatsapp":true}`)))
	svc := NewSettingsService(store)

	settings := svc.Load(context.Background())
	assert.Equal(t, 5, settings.DaysBeforeDue)
	assert.True(t, settings.EnableWhatsApp)
	// Untouched fields keep their defaults
	assert.True(t, settings.EnableSMS)
	assert.Equal(t, "09:00", settings.ReminderTime)
	assert.Equal(t, 7, settings.OverdueReminderInterval)
}

func TestSettingsLoadFallsBackOnCorruptData(t *testing.T) {
	store := &memStore{}
	assert.NoError(t, store.Put(context.Background(), []byte("{not json")))
	svc := NewSettingsService(store)

	settings := svc.Load(context.Background())
	assert.Equal(t, models.DefaultReminderSettings(), settings)
}

func TestSettingsUpdatePersists(t *testing.T) {
	store := &memStore{}
	svc := NewSettingsService(store)

	days := 5
	updated, err := svc.Update(context.Background(), &models.ReminderSettingsPatch{DaysBeforeDue: &days})
	assert.NoError(t, err)
	assert.Equal(t, 5, updated.DaysBeforeDue)

	reloaded := svc.Load(context.Background())
	assert.Equal(t, 5, reloaded.DaysBeforeDue)
}

func TestSettingsUpdatePropagatesStoreError(t *testing.T) {
	store := &memStore{putErr: assert.AnError}
	svc := NewSettingsService(store)

	days := 5
	_, err := svc.Update(context.Background(), &models.ReminderSettingsPatch{DaysBeforeDue: &days})
	assert.Error(t, err)
}

func TestSettingsUpdateRestartsSchedulerOnTimerChange(t *testing.T) {
	svc := NewSettingsService(&memStore{})
	scheduler := NewReminderScheduler(func(ctx context.Context) ReminderRunResult {
		return ReminderRunResult{}
	})
	svc.AttachScheduler(scheduler)
	defer scheduler.Stop()

	interval := 30
	_, err := svc.Update(context.Background(), &models.ReminderSettingsPatch{AutoReminderInterval: &interval})
	assert.NoError(t, err)
	assert.True(t, scheduler.Running())
	assert.Equal(t, 30, scheduler.Stats().IntervalMinutes)

	disabled := false
	_, err = svc.Update(context.Background(), &models.ReminderSettingsPatch{EnableAutoReminders: &disabled})
	assert.NoError(t, err)
	assert.False(t, scheduler.Running())
}

func TestSettingsUpdateLeavesSchedulerAloneOtherwise(t *testing.T) {
	svc := NewSettingsService(&memStore{})
	scheduler := NewReminderScheduler(func(ctx context.Context) ReminderRunResult {
		return ReminderRunResult{}
	})
	svc.AttachScheduler(scheduler)

	days := 7
	_, err := svc.Update(context.Background(), &models.ReminderSettingsPatch{DaysBeforeDue: &days})
	assert.NoError(t, err)
	assert.False(t, scheduler.Running())
}

func TestSettingsRecordAutoCheck(t *testing.T) {
	svc := NewSettingsService(&memStore{})

	when := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, svc.RecordAutoCheck(context.Background(), when))

	settings := svc.Load(context.Background())
	assert.True(t, settings.LastAutoReminderCheck.Equal(when))
}
