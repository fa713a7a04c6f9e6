package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
	"github.com/kristinefung/personal-website-server/internal/infra/security"
	"github.com/kristinefung/personal-website-server/internal/transport/http/middleware"
	"github.com/kristinefung/personal-website-server/internal/usecase"
)

// UserHandler serves the user directory endpoints.
type UserHandler struct {
	users  *usecase.UserService
	logger *zap.Logger
}

func NewUserHandler(users *usecase.UserService, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}

	return &UserHandler{
		users:  users,
		logger: log,
	}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse(c, "invalid request body"))
		return
	}

	input := usecase.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}

	actingUserID, _ := middleware.GetAuthenticatedUserID(c)

	user, err := h.users.CreateUser(c.Request.Context(), input, actingUserID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailTaken):
			c.JSON(http.StatusConflict, newErrorResponse(c, err.Error()))
		case errors.Is(err, usecase.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, newErrorResponse(c, err.Error()))
		case errors.Is(err, security.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, newErrorResponse(c, err.Error()))
		default:
			h.logger.Error("create user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, newErrorResponse(c, "create user failed"))
		}
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, newErrorResponse(c, err.Error()))
			return
		}
		h.logger.Error("get user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, newErrorResponse(c, "get user failed"))
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, newErrorResponse(c, "list users failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": toUserResponses(users)})
}

// Update handles PUT /api/v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse(c, "invalid request body"))
		return
	}

	input := usecase.UpdateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	actingUserID, _ := middleware.GetAuthenticatedUserID(c)

	user, err := h.users.UpdateUser(c.Request.Context(), c.Param("id"), input, actingUserID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, newErrorResponse(c, err.Error()))
		case errors.Is(err, usecase.ErrEmailTaken):
			c.JSON(http.StatusConflict, newErrorResponse(c, err.Error()))
		case errors.Is(err, usecase.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, newErrorResponse(c, err.Error()))
		case errors.Is(err, security.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, newErrorResponse(c, err.Error()))
		default:
			h.logger.Error("update user failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, newErrorResponse(c, "update user failed"))
		}
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /api/v1/users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	actingUserID, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.users.DeleteUser(c.Request.Context(), c.Param("id"), actingUserID); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, newErrorResponse(c, err.Error()))
			return
		}
		h.logger.Error("delete user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, newErrorResponse(c, "delete user failed"))
		return
	}

	c.Status(http.StatusNoContent)
}
