package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pesobook/backend/internal/infrastructure/logger"
	"github.com/pesobook/backend/internal/interfaces/http/dto"
)

// Context keys set by the auth context middleware
const (
	UserIDContextKey   = "user_id"
	EntityIDContextKey = "entity_id"
)

// AuthContextConfig configures the owner scope middleware
type AuthContextConfig struct {
	// SkipPaths are exact paths that do not require an owner scope
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that do not require an owner scope
	SkipPathPrefixes []string
}

// AuthContext resolves the owner scope for each request from the
// X-User-ID and X-Entity-ID headers. Every ledger operation is scoped to
// a (user, entity) pair; requests without a valid user ID are rejected.
// The gateway in front of this service is expected to authenticate the
// caller and inject the headers.
func AuthContext() gin.HandlerFunc {
	return AuthContextWithConfig(AuthContextConfig{})
}

// AuthContextWithConfig returns an owner scope middleware with custom configuration
func AuthContextWithConfig(cfg AuthContextConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		userIDStr := c.GetHeader("X-User-ID")
		if userIDStr == "" {
			abortUnauthorized(c, "Missing X-User-ID header")
			return
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			abortUnauthorized(c, "Invalid X-User-ID header")
			return
		}

		c.Set(UserIDContextKey, userID.String())

		ctx := logger.WithUserID(c.Request.Context(), userID.String())

		// Entity scope is optional here. Handlers that operate on
		// entity-scoped resources require it themselves.
		if entityIDStr := c.GetHeader("X-Entity-ID"); entityIDStr != "" {
			entityID, err := uuid.Parse(entityIDStr)
			if err != nil {
				abortUnauthorized(c, "Invalid X-Entity-ID header")
				return
			}
			c.Set(EntityIDContextKey, entityID.String())
			ctx = logger.WithEntityID(ctx, entityID.String())
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, requestID))
}
