package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-ID"

var redactedFields = []string{"password", "new_password", "admin_key"}

// RequestID assigns a request id, reusing a well-formed incoming one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestDumpMiddleware logs method, path, status, latency and the JSON body
// at debug level with credentials redacted.
func RequestDumpMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		start := time.Now()
		c.Next()

		logger.Debug("request",
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"body", RedactBody(bodyBytes),
		)
	}
}

// RedactBody masks credential fields of a JSON object body. Non-JSON bodies
// are reported by size only.
func RedactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return "<" + strconv.Itoa(len(body)) + " bytes>"
	}
	for _, k := range redactedFields {
		if _, ok := fields[k]; ok {
			fields[k] = "***"
		}
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(out)
}

