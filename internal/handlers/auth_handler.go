package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/collegetransit/bus-pass-backend/internal/config"
	"github.com/collegetransit/bus-pass-backend/internal/models"
	"github.com/collegetransit/bus-pass-backend/pkg/jwt"
)

// AuthHandler handles admin authentication
type AuthHandler struct {
	jwtService *jwt.Service
	adminCfg   config.AdminConfig
	logger     logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(jwtService *jwt.Service, adminCfg config.AdminConfig, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		adminCfg:   adminCfg,
		logger:     logger,
	}
}

// Login verifies the admin credential and issues an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Username != h.adminCfg.Username ||
		bcrypt.CompareHashAndPassword([]byte(h.adminCfg.PasswordHash), []byte(req.Password)) != nil {
		h.logger.WithFields(logrus.Fields{
			"username": req.Username,
			"ip":       c.ClientIP(),
		}).Warn("Admin login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.jwtService.GenerateAccessToken(req.Username)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate admin token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, models.AdminLoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: int64(h.jwtService.AccessTokenExpiry().Seconds()),
	})
}
