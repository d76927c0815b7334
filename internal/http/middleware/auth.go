package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"editflow.app/server/common/logger"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/service"
)

type contextKey string

const (
	SessionIDHeader   = "X-Session-ID"
	AdminAPIKeyHeader = "X-Admin-API-Key"

	sessionCookieName              = "editflow_session"
	userContextKey      contextKey = "user"
	sessionIDContextKey contextKey = "session_id"
)

// RequireAuth resolves the login session from the X-Session-ID header (or the
// session cookie) and attaches the user to the request context.
func RequireAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := getSessionID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "code": "unauthenticated"})
			return
		}

		ctx := c.Request.Context()
		user, err := authService.ValidateSession(ctx, sessionID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionExpired), errors.Is(err, service.ErrUserNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired", "code": "session_expired"})
			case errors.Is(err, service.ErrUserSuspended):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account suspended", "code": "suspended"})
			default:
				slog.ErrorContext(ctx, "failed to validate session", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate session", "code": "internal"})
			}
			return
		}

		ctx = context.WithValue(ctx, userContextKey, user)
		ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
		ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Ptr(user.ID)})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireSuper must run after RequireAuth.
func RequireSuper() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c.Request.Context())
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "code": "unauthenticated"})
			return
		}
		if !user.IsSuper() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "superuser role required", "code": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAdminAPIKey guards endpoints called by the external auth provider,
// such as user registration.
func RequireAdminAPIKey(adminAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminAPIKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin API not configured", "code": "unavailable"})
			return
		}

		apiKey := c.GetHeader(AdminAPIKeyHeader)
		if apiKey == "" {
			apiKey = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(adminAPIKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing API key", "code": "unauthenticated"})
			return
		}

		c.Next()
	}
}

func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

func GetSessionID(ctx context.Context) int64 {
	sessionID, _ := ctx.Value(sessionIDContextKey).(int64)
	return sessionID
}

func getSessionID(c *gin.Context) (int64, error) {
	raw := c.GetHeader(SessionIDHeader)
	if raw == "" {
		cookie, err := c.Cookie(sessionCookieName)
		if err != nil {
			return 0, err
		}
		raw = cookie
	}
	return strconv.ParseInt(raw, 10, 64)
}
