package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shgbook/shgbook-api/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	reminderService     *services.ReminderService
}

func NewNotificationHandler(notificationService *services.NotificationService, reminderService *services.ReminderService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		reminderService:     reminderService,
	}
}

// Logs lists recent dispatch attempts, newest first
func (h *NotificationHandler) Logs(c *gin.Context) {
	hours, _ := strconv.Atoi(c.DefaultQuery("hours", "24"))
	logs, err := h.notificationService.RecentLogs(c.Request.Context(), hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// LogsByReminder lists all dispatch attempts for one reminder
func (h *NotificationHandler) LogsByReminder(c *gin.Context) {
	reminderID := c.Param("reminder_id")
	logs, err := h.notificationService.LogsByReminder(c.Request.Context(), reminderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// Stats summarizes dispatch attempts per channel over the past N hours
func (h *NotificationHandler) Stats(c *gin.Context) {
	hours, _ := strconv.Atoi(c.DefaultQuery("hours", "24"))
	stats, err := h.reminderService.GetNotificationStats(c.Request.Context(), hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
