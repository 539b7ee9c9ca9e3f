package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// scrubHeaders redacts anything that may carry a credential.
func scrubHeaders(h http.Header) http.Header {
	clone := h.Clone()
	for k := range clone {
		lower := strings.ToLower(k)
		if strings.Contains(lower, "authorization") ||
			strings.Contains(lower, "cookie") ||
			strings.Contains(lower, "csrf") {
			clone[k] = []string{"[redacted]"}
		}
	}
	return clone
}

// RequestLogger logs every request with its status and latency.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		if ce := log.Check(zap.DebugLevel, "incoming request"); ce != nil {
			hdr, _ := json.Marshal(scrubHeaders(c.Request.Header))
			ce.Write(
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("origin", c.GetHeader("Origin")),
				zap.ByteString("hdr", hdr),
			)
		}

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		}

		for _, e := range c.Errors {
			log.Debug("handler error", append(fields, zap.Error(e.Err))...)
		}

		if c.IsAborted() {
			log.Warn("aborted", fields...)
			return
		}
		log.Info("completed", fields...)
	}
}
