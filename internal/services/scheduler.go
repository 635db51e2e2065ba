package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shgbook/shgbook-api/internal/models"
	"github.com/shgbook/shgbook-api/pkg/logger"
)

// SchedulerStats holds cumulative counters for the auto reminder timer
type SchedulerStats struct {
	Running         bool      `json:"running"`
	IntervalMinutes int       `json:"interval_minutes"`
	TotalRuns       int64     `json:"total_runs"`
	TotalSuccess    int64     `json:"total_success"`
	TotalFailed     int64     `json:"total_failed"`
	TotalSkipped    int64     `json:"total_skipped"`
	LastRunAt       time.Time `json:"last_run_at"`
}

// ReminderScheduler owns the single auto reminder timer. Start replaces any
// running timer, so at most one exists at a time.
type ReminderScheduler struct {
	run func(ctx context.Context) ReminderRunResult

	// opMu serializes Start and Stop so a replace is atomic; mu guards the
	// fields and is safe to take from a running tick.
	opMu sync.Mutex

	mu       sync.Mutex
	cron     *cron.Cron
	interval int
	stats    SchedulerStats
}

func NewReminderScheduler(run func(ctx context.Context) ReminderRunResult) *ReminderScheduler {
	return &ReminderScheduler{run: run}
}

// Start configures the timer from the given settings. Any existing timer is
// stopped first. When auto reminders are disabled the scheduler stays
// stopped. The first run happens immediately, then every interval.
func (s *ReminderScheduler) Start(settings models.ReminderSettings) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.halt()

	if !settings.EnableAutoReminders {
		logger.Info("Auto reminder scheduler not started: auto reminders are disabled")
		return
	}

	interval := settings.AutoReminderInterval
	if interval < 1 {
		interval = 1
	}

	s.mu.Lock()
	s.cron = cron.New()
	s.interval = interval
	s.cron.Schedule(cron.Every(time.Duration(interval)*time.Minute), cron.FuncJob(s.tick))
	s.cron.Start()
	s.mu.Unlock()

	logger.Info(fmt.Sprintf("Auto reminder scheduler started with %d minute interval", interval))
	go s.tick()
}

// Stop halts the timer. Calling Stop on a stopped scheduler is a no-op.
func (s *ReminderScheduler) Stop() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.halt()
}

// halt stops the current cron, waiting for in-flight jobs. Callers hold opMu.
func (s *ReminderScheduler) halt() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.interval = 0
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		logger.Info("Auto reminder scheduler stopped")
	}
}

// Running reports whether the timer is active
func (s *ReminderScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// Stats returns a snapshot of the cumulative run counters
func (s *ReminderScheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	stats.Running = s.cron != nil
	stats.IntervalMinutes = s.interval
	return stats
}

func (s *ReminderScheduler) tick() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("Auto reminder tick panic: %v", r))
		}
	}()

	result := s.run(context.Background())

	s.mu.Lock()
	s.stats.TotalRuns++
	s.stats.TotalSuccess += int64(result.Success)
	s.stats.TotalFailed += int64(result.Failed)
	s.stats.TotalSkipped += int64(result.Skipped)
	s.stats.LastRunAt = time.Now()
	s.mu.Unlock()
}
