package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Controller handles authentication HTTP endpoints: session login/logout and
// API token management.
type Controller struct {
	service        *Service
	sessionManager *SessionManager
}

// NewController creates a new auth controller.
func NewController(service *Service, sessionManager *SessionManager) *Controller {
	return &Controller{
		service:        service,
		sessionManager: sessionManager,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates credentials and starts a cookie session.
// POST /api/auth/login
func (ac *Controller) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

// Logout destroys the current session.
// POST /api/auth/logout
func (ac *Controller) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to destroy session"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GenerateToken issues a fresh API token for the authenticated user. The
// plaintext is returned once and never stored.
// POST /api/auth/token
func (ac *Controller) GenerateToken(c *gin.Context) {
	userID := GetUserID(c)

	token, err := ac.service.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// RevokeToken invalidates the authenticated user's API token.
// DELETE /api/auth/token
func (ac *Controller) RevokeToken(c *gin.Context) {
	userID := GetUserID(c)

	if err := ac.service.RevokeToken(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}
