package server

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/foodbridge/foodbridge/internal/observability/obscontext"
	"github.com/gin-gonic/gin"
)

const (
	contextOrgIDKey      = "org_id"
	contextAdminIDKey    = "admin_id"
	contextAdminNameKey  = "admin_username"
	loginRatePerSecond   = 0.5
	loginBurst           = 5
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthRequired authenticates the caller's session token and stashes the
// organization id on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authSvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextOrgIDKey, session.OrgID)
		ctx := obscontext.WithOrgID(c.Request.Context(), session.OrgID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminRequired verifies the admin bearer token.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.authSvc.VerifyAdminToken(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextAdminIDKey, claims.AdminID)
		c.Set(contextAdminNameKey, claims.Username)
		ctx := obscontext.WithActor(c.Request.Context(), "admin", claims.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func orgIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	v, ok := c.Get(contextOrgIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(snowflake.ID)
	return id, ok
}

func adminIDFromContext(c *gin.Context) string {
	return c.GetString(contextAdminIDKey)
}

// LoginRateLimit throttles credential guessing per client address. With no
// limiter configured it is a no-op.
func (s *Server) LoginRateLimit(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", endpoint, c.ClientIP())
		res, err := s.limiter.Allow(c.Request.Context(), key, loginRatePerSecond, loginBurst)
		if err != nil {
			// limiter trouble must not lock users out
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), endpoint, "limiter_error")
			c.Next()
			return
		}
		if !res.Allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), endpoint, "bucket_empty")
			c.Header("Retry-After", fmt.Sprintf("%d", int(res.RetryAfter.Seconds())+1))
			AbortWithError(c, ErrTooManyLogins)
			return
		}

		s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), endpoint)
		c.Next()
	}
}
