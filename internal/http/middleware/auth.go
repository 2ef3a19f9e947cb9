package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradematch.app/linkup/common/logger"
	"tradematch.app/linkup/internal/http/dto"
	"tradematch.app/linkup/internal/model"
	"tradematch.app/linkup/internal/service"
)

type contextKey string

const (
	SessionCookieName = "linkup_session"
	SessionHeader     = "X-Session-ID"

	userContextKey contextKey = "user"
)

// RequireAuth resolves the caller before any handler runs and aborts with 401
// when there is none.
func RequireAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		user, err := authService.Resolve(ctx, credentials(c))
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
					Error:     "not authenticated",
					Code:      dto.CodeUnauthorized,
					RequestID: GetRequestID(ctx),
				})
				return
			}
			slog.ErrorContext(ctx, "failed to resolve caller", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				Error:     "failed to resolve caller",
				Code:      dto.CodeInternal,
				RequestID: GetRequestID(ctx),
			})
			return
		}

		ctx = context.WithValue(ctx, userContextKey, user)
		ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Ptr(user.ID)})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

func credentials(c *gin.Context) service.Credentials {
	var creds service.Credentials

	if auth := c.GetHeader("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			creds.BearerToken = strings.TrimSpace(token)
		}
	}

	creds.SessionID = c.GetHeader(SessionHeader)
	if creds.SessionID == "" {
		if cookie, err := c.Cookie(SessionCookieName); err == nil {
			creds.SessionID = cookie
		}
	}
	return creds
}
