package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/halls510/developerstore-sales-api-sub001/internal/logging"
)

const (
	reqBodyLimit  = 8 * 1024
	respBodyLimit = 8 * 1024
)

type bodyLogWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bodyLogWriter) Write(b []byte) (int, error) {
	if w.buf != nil && w.buf.Len() < respBodyLimit {
		remain := respBodyLimit - w.buf.Len()
		if len(b) > remain {
			w.buf.Write(b[:remain])
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var m any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw // not JSON
	}
	var scrub func(any) any
	scrub = func(x any) any {
		switch v := x.(type) {
		case map[string]any:
			for k, val := range v {
				switch strings.ToLower(k) {
				case "password", "authorization", "token", "secret", "client_secret":
					v[k] = "***redacted***"
				default:
					v[k] = scrub(val)
				}
			}
			return v
		case []any:
			for i := range v {
				v[i] = scrub(v[i])
			}
			return v
		default:
			return v
		}
	}
	out := scrub(m)
	b, err := json.Marshal(out)
	if err != nil {
		return raw
	}
	return b
}

func readCapped(rc io.ReadCloser, n int) (body []byte, truncated bool) {
	defer rc.Close()
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, rc, int64(n+1))
	b := buf.Bytes()
	if len(b) > n {
		return b[:n], true
	}
	return b, false
}

// Logging logs the request/response pair and injects a request-scoped
// slog.Logger into the gin context.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
			c.Request.Header.Set("X-Request-Id", reqID)
		}
		c.Header("X-Request-Id", reqID)

		l := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"remote", c.ClientIP(),
		)
		logging.With(c, l)

		var reqBodyLogged string
		if strings.Contains(c.GetHeader("Content-Type"), "application/json") && c.Request.Body != nil {
			body, truncated := readCapped(c.Request.Body, reqBodyLimit)
			logged := redactJSON(body)
			if truncated {
				logged = append(logged, []byte("...truncated...")...)
			}
			reqBodyLogged = string(logged)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		blw := &bodyLogWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", c.Writer.Size(),
		}
		if reqBodyLogged != "" {
			attrs = append(attrs, "req_body", reqBodyLogged)
		}
		if strings.Contains(c.Writer.Header().Get("Content-Type"), "application/json") {
			respBody := string(redactJSON(blw.buf.Bytes()))
			if blw.buf.Len() >= respBodyLimit {
				respBody += "...truncated..."
			}
			if respBody != "" {
				attrs = append(attrs, "resp_body", respBody)
			}
		}
		if len(c.Params) > 0 {
			attrs = append(attrs, "params", c.Params)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if status >= http.StatusBadRequest {
			l.Error("http_request", attrs...)
			return
		}
		l.Info("http_request", attrs...)
	}
}
