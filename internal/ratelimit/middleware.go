package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sahajbiz/voucherd/internal/config"
)

// GinMiddleware throttles a route group per org. Limits come from the
// hot-reloaded tunables so operators can adjust them without restarts.
func GinMiddleware(bucket *TokenBucket, holder *config.TunablesHolder, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tunables := holder.Current()
		orgID := c.GetString("org_id")
		key := fmt.Sprintf("ratelimit:%s:%s", scope, orgID)

		res, err := bucket.Allow(c.Request.Context(), key,
			float64(tunables.LookupRatePerSecond), tunables.LookupBurst)
		if err != nil {
			// Limiter failure never blocks traffic.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate_limited",
			})
			return
		}
		c.Next()
	}
}
