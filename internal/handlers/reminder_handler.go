package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shgbook/shgbook-api/internal/services"
)

type ReminderHandler struct {
	reminderService *services.ReminderService
	settingsService *services.SettingsService
	scheduler       *services.ReminderScheduler
}

func NewReminderHandler(
	reminderService *services.ReminderService,
	settingsService *services.SettingsService,
	scheduler *services.ReminderScheduler,
) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		settingsService: settingsService,
		scheduler:       scheduler,
	}
}

// Due lists the reminders that currently warrant a notification
func (h *ReminderHandler) Due(c *gin.Context) {
	reminders, err := h.reminderService.DueReminders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reminders": reminders,
		"count":     len(reminders),
	})
}

// Process runs the full reminder pipeline once
func (h *ReminderHandler) Process(c *gin.Context) {
	result, err := h.reminderService.ProcessReminders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Stats summarizes reminders currently due
func (h *ReminderHandler) Stats(c *gin.Context) {
	stats, err := h.reminderService.GetReminderStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StartScheduler (re)starts the auto reminder timer with the stored settings
func (h *ReminderHandler) StartScheduler(c *gin.Context) {
	settings := h.settingsService.Load(c.Request.Context())
	h.scheduler.Start(settings)
	c.JSON(http.StatusOK, h.scheduler.Stats())
}

// StopScheduler halts the auto reminder timer
func (h *ReminderHandler) StopScheduler(c *gin.Context) {
	h.scheduler.Stop()
	c.JSON(http.StatusOK, h.scheduler.Stats())
}

// SchedulerStatus reports the timer state and cumulative counters
func (h *ReminderHandler) SchedulerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.Stats())
}
