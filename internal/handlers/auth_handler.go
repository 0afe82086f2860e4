package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harpaljob/harpaljob-api/internal/auth"
	"github.com/harpaljob/harpaljob-api/internal/dtos"
	"github.com/harpaljob/harpaljob-api/internal/services"
)

type AuthHandler struct {
	Users         *services.UserService
	Notifications *services.NotificationService
	Tokens        *auth.Manager
}

func NewAuthHandler(users *services.UserService, notifications *services.NotificationService, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{Users: users, Notifications: notifications, Tokens: tokens}
}

// Register is POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.Users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	// Best effort; most fresh accounts have no push token yet.
	h.Notifications.SendWelcomeNotification(c.Request.Context(), user.ID, user.FirstName)

	c.JSON(http.StatusCreated, dtos.AuthResponse{Token: token, User: user})
}

// Login is POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dtos.AuthResponse{Token: token, User: user})
}

// Me is GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.Users.GetByID(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetFCMToken is PUT /auth/fcm-token. An empty token opts out.
func (h *AuthHandler) SetFCMToken(c *gin.Context) {
	var req dtos.FCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := h.Users.SetFCMToken(c.Request.Context(), auth.UserID(c), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
