package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpaljob/harpaljob-api/internal/dtos"
	"github.com/harpaljob/harpaljob-api/internal/services"
)

// NotificationHandler exposes the admin-only scheduler surface: manual
// triggers, the smoke-test push, status and restart.
//
// The triggers run synchronously, so the HTTP caller waits for the full
// handler run. Fine for low-frequency admin operations.
type NotificationHandler struct {
	Scheduler *services.SchedulerService
}

func NewNotificationHandler(scheduler *services.SchedulerService) *NotificationHandler {
	return &NotificationHandler{Scheduler: scheduler}
}

// TriggerDailyJobs is POST /admin/notifications/daily-jobs.
func (h *NotificationHandler) TriggerDailyJobs(c *gin.Context) {
	summary, err := h.Scheduler.TriggerDailyJobsNotification(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// TriggerTokenCleanup is POST /admin/notifications/token-cleanup.
func (h *NotificationHandler) TriggerTokenCleanup(c *gin.Context) {
	cleaned, err := h.Scheduler.TriggerTokenCleanup(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleaned": cleaned})
}

// SendTest is POST /admin/notifications/test.
func (h *NotificationHandler) SendTest(c *gin.Context) {
	var req dtos.TestNotificationRequest
	// Body is optional: no body means broadcast.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	result, err := h.Scheduler.SendTestNotification(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Status is GET /admin/notifications/status.
func (h *NotificationHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.Scheduler.Status())
}

// Restart is POST /admin/notifications/scheduler/restart.
func (h *NotificationHandler) Restart(c *gin.Context) {
	if err := h.Scheduler.Restart(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Scheduler.Status())
}
