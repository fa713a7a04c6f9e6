package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kristinefung/personal-website-server/internal/infra/logger"
	"github.com/kristinefung/personal-website-server/internal/infra/security"
	"github.com/kristinefung/personal-website-server/internal/transport/http/middleware"
	"github.com/kristinefung/personal-website-server/internal/usecase"
)

// AuthHandler serves the login and logout endpoints.
type AuthHandler struct {
	auth    *usecase.AuthService
	metrics *middleware.HTTPMetrics
	logger  *zap.Logger
}

// NewAuthHandler wires the authentication endpoints. Metrics may be nil.
func NewAuthHandler(auth *usecase.AuthService, metrics *middleware.HTTPMetrics, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}

	return &AuthHandler{
		auth:    auth,
		metrics: metrics,
		logger:  log,
	}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse(c, "invalid request body"))
		return
	}

	meta := usecase.LoginMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, meta)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAccountLocked):
			h.observeLogin("locked")
			c.JSON(http.StatusLocked, newErrorResponse(c, err.Error()))
		case errors.Is(err, usecase.ErrInvalidCredentials):
			h.observeLogin("rejected")
			c.JSON(http.StatusUnauthorized, newErrorResponse(c, err.Error()))
		default:
			h.observeLogin("error")
			h.logger.Error("login failed",
				zap.String("email", logger.MaskEmail(req.Email)),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, newErrorResponse(c, "login failed"))
		}
		return
	}

	h.observeLogin("accepted")
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(security.SessionTokenTTL.Seconds()),
	})
}

// Logout handles POST /api/v1/auth/logout. Revoking an unknown or already
// revoked token still returns 204 so the endpoint stays idempotent.
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.auth.Logout(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil && !errors.Is(err, usecase.ErrUnauthorized) {
		h.logger.Error("logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, newErrorResponse(c, "logout failed"))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) observeLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveLogin(outcome)
	}
}
