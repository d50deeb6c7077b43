package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	limit "github.com/yangxikun/gin-limit-by-key"
	"golang.org/x/time/rate"

	"github.com/hfi/message-encryptor/internal/audit"
)

const requestIDHeader = "X-Request-ID"

// requestID tags each request with an id and attaches it, with the client
// address, to the request context for audit events.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Header(requestIDHeader, id)
		c.Set("request_id", id)

		ctx := audit.WithRequest(c.Request.Context(), audit.RequestInfo{
			RequestID: id,
			Source:    "web",
			ClientIP:  c.ClientIP(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func accessLog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Debug()
		if status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

// rateLimit keeps one token bucket per client address. Buckets live in a
// cache shared by every limiter in the process, so keys carry prefix.
func rateLimit(cfg Config, prefix string) gin.HandlerFunc {
	ttl := cfg.LimiterTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return limit.NewRateLimiter(
		func(c *gin.Context) string {
			return prefix + "|" + c.ClientIP()
		},
		func(c *gin.Context) (*rate.Limiter, time.Duration) {
			return rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst), ttl
		},
		func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		},
	)
}
