package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
	"github.com/kristinefung/personal-website-server/internal/usecase"
)

// UserIDKey is the gin context key holding the acting user id.
const UserIDKey = "user_id"

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: c.Writer.Header().Get(requestIDHeader),
	}
}

// RequireAuth validates the Authorization header and stores the acting user id
// on the context. When roles are supplied, the authenticated user must hold
// one of them. Authorization failures are reported with a single generic
// message regardless of cause.
func RequireAuth(auth *usecase.AuthService, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actingUserID, err := auth.Authorize(c.Request.Context(), roles, c.GetHeader("Authorization"))
		if err != nil {
			if errors.Is(err, usecase.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "unauthorized"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		c.Set(UserIDKey, actingUserID)
		c.Next()
	}
}

// GetAuthenticatedUserID retrieves the acting user id from context.
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := value.(string); ok {
		return id, true
	}

	return "", false
}
