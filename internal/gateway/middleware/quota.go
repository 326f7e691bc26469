package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeassist/internal/gateway/repository/usage"
)

// Allowance is what Quota observed for the caller before the handler ran.
// Limited callers must claim their slot with usage.Store.Reserve.
type Allowance struct {
	Period  string
	Used    int
	Limit   int
	Limited bool
}

// Quota rejects free-tier callers whose usage this month has reached limit.
// It must run after Identity. The check is advisory; handlers reserve the
// slot atomically once the request has passed validation.
func Quota(store usage.Store, limit int, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized to access this route",
			})
			return
		}
		period := usage.Period(now())
		count, err := store.Get(c.Request.Context(), caller.UserID, period)
		if err != nil {
			log.Printf("quota: usage lookup for %s failed: %v", caller.UserID, err)
			AbortQuotaError(c)
			return
		}
		limited := !caller.Tier.Unlimited()
		if limited && count >= limit {
			AbortLimitExceeded(c, count, limit)
			return
		}
		c.Set(allowanceKey, Allowance{Period: period, Used: count, Limit: limit, Limited: limited})
		c.Next()
	}
}

// AllowanceFrom returns the allowance stored by Quota.
func AllowanceFrom(c *gin.Context) (Allowance, bool) {
	v, ok := c.Get(allowanceKey)
	if !ok {
		return Allowance{}, false
	}
	a, ok := v.(Allowance)
	return a, ok
}

func AbortLimitExceeded(c *gin.Context, used, limit int) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"success":      false,
		"message":      "API limit exceeded. Please upgrade your plan.",
		"currentUsage": used,
		"limit":        limit,
	})
}

func AbortQuotaError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": "Server error checking API limits",
	})
}
