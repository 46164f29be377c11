// Package middlewares holds the chi middleware chain.
package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Lalman888/ai-social-backend/internal/http/helpers"
	"github.com/Lalman888/ai-social-backend/internal/observability/logger"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	meKey
)

// RequestID returns the request id stored by RequestContext, or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// RequestContext assigns a request id, scopes the logger to the request and
// logs one line per request on the way out.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		log := logger.L().With(
			logger.RequestID(id),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
		)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		ctx = logger.ToContext(ctx, log)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r.WithContext(ctx))
		log.Info("request",
			logger.Status(sw.status),
			logger.Duration(time.Since(start)),
			logger.ClientIP(helpers.ClientIP(r)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
