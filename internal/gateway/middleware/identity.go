package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Headers set by the authenticating proxy in front of the gateway.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserTier = "X-User-Tier"
)

type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Unlimited reports whether the tier has no monthly cap.
func (t Tier) Unlimited() bool {
	return t == TierPro || t == TierEnterprise
}

func parseTier(raw string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierPro:
		return TierPro
	case TierEnterprise:
		return TierEnterprise
	default:
		return TierFree
	}
}

// Caller identifies the user on whose behalf a request runs.
type Caller struct {
	UserID string
	Tier   Tier
}

const (
	callerKey    = "codeassist_caller"
	allowanceKey = "codeassist_allowance"
)

func SetCaller(c *gin.Context, caller Caller) {
	c.Set(callerKey, caller)
}

// CallerFrom returns the caller stored by Identity.
func CallerFrom(c *gin.Context) (Caller, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return Caller{}, false
	}
	caller, ok := v.(Caller)
	return caller, ok && caller.UserID != ""
}

// Identity reads the caller from the proxy headers and rejects anonymous
// requests with 401.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized to access this route",
			})
			return
		}
		SetCaller(c, Caller{UserID: userID, Tier: parseTier(c.GetHeader(HeaderUserTier))})
		c.Next()
	}
}
