package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"todohub/internal/ratelimit"
	"todohub/internal/transport/http/response"
)

// RateLimit enforces the per-user fixed-window limit. It must run after
// AuthJWT so the user ID is in the context; limiter backend failures let
// the request through rather than taking the API down with Redis.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDAny, exists := c.Get(ContextUserIDKey)
		if !exists {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in token")
			c.Abort()
			return
		}
		userID, ok := userIDAny.(uint)
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
			c.Abort()
			return
		}

		result, err := limiter.Allow(c.Request.Context(), userID)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", int(result.ResetIn.Seconds())))

		if !result.Allowed {
			response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited,
				fmt.Sprintf("rate limit exceeded, try again in %d seconds", int(result.ResetIn.Seconds())))
			c.Abort()
			return
		}

		c.Next()
	}
}
