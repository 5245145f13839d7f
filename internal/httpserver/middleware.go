package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/ratelimit"
)

// RequestLogger logs one line per request.
func RequestLogger(log logger.LoggerInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error(c.Request.Context(), "http request", args...)
		case status >= http.StatusBadRequest:
			log.Warn(c.Request.Context(), "http request", args...)
		default:
			log.Debug(c.Request.Context(), "http request", args...)
		}
	}
}

// RateLimit rejects clients that exceed their token bucket with 429.
func RateLimit(limiter *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			RespondError(c, apperror.New(apperror.CodeRateLimitExceeded))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CORS allows the configured origins. "*" allows any.
func CORS(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RespondError writes err as the JSON error envelope with its mapped status.
func RespondError(c *gin.Context, err error) {
	appErr := apperror.Wrap(err, apperror.CodeInternalError, "")

	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.HasTraceID() {
		appErr = appErr.WithTraceID(sc.TraceID().String())
	}

	_ = c.Error(appErr)
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
