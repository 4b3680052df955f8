package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/auth"
	"github.com/cybersturmer/pmdragon-core-api/internal/metrics"
)

const personIDKey = "person_id"

// requireAuth validates the bearer token and stores the caller's
// person ID on the request context.
func requireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		personID, err := auth.ParseToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(personIDKey, personID)
		c.Next()
	}
}

func callerID(c *gin.Context) int64 {
	return c.GetInt64(personIDKey)
}

func requestLog(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		log.Info().
			Str("m", c.Request.Method).
			Str("p", c.FullPath()).
			Int("s", c.Writer.Status()).
			Dur("d", elapsed).
			Msg("http")
		metrics.RecordHTTPRequestDuration(c.Request.Method, c.FullPath(),
			strconv.Itoa(c.Writer.Status()), elapsed)
	}
}
