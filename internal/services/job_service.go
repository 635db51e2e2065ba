package services

import (
	"github.com/shgbook/shgbook-api/internal/jobs"
)

type JobService struct {
	worker    *jobs.Worker
	scheduler *ReminderScheduler
}

func NewJobService(worker *jobs.Worker, scheduler *ReminderScheduler) *JobService {
	return &JobService{
		worker:    worker,
		scheduler: scheduler,
	}
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()
	return map[string]interface{}{
		"active_jobs":    stats.ActiveJobs,
		"completed_jobs": stats.CompletedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"max_concurrent": stats.MaxConcurrent,
		"auto_reminders": s.scheduler.Stats(),
	}
}
