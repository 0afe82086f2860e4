package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpaljob/harpaljob-api/internal/auth"
	"github.com/harpaljob/harpaljob-api/internal/dtos"
	"github.com/harpaljob/harpaljob-api/internal/services"
)

type ApplicationHandler struct {
	Applications *services.ApplicationService
}

func NewApplicationHandler(applications *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{Applications: applications}
}

// Apply is POST /jobs/:id/apply (jobseeker only).
func (h *ApplicationHandler) Apply(c *gin.Context) {
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dtos.ApplicationCreateRequest
	// Cover letter and resume link are optional, so the body may be absent.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	application, err := h.Applications.Apply(c.Request.Context(), jobID, auth.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, application)
}

// Mine is GET /applications/mine.
func (h *ApplicationHandler) Mine(c *gin.Context) {
	applications, err := h.Applications.ListForUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, applications)
}

// ListForJob is GET /jobs/:id/applications (owning employer only).
func (h *ApplicationHandler) ListForJob(c *gin.Context) {
	jobID, ok := idParam(c, "id")
	if !ok {
		return
	}
	applications, err := h.Applications.ListForJob(c.Request.Context(), jobID, auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, applications)
}

// UpdateStatus is PUT /applications/:id/status (owning employer only).
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dtos.ApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	application, err := h.Applications.UpdateStatus(c.Request.Context(), id, auth.UserID(c), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, application)
}
