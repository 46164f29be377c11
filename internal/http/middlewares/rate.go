package middlewares

import (
	"net/http"
	"strconv"

	httperrors "github.com/Lalman888/ai-social-backend/internal/http/errors"
	"github.com/Lalman888/ai-social-backend/internal/http/helpers"
	"github.com/Lalman888/ai-social-backend/internal/observability/logger"
	"github.com/Lalman888/ai-social-backend/internal/rate"
)

// Throttle limits requests per client IP. A broken limiter backend fails
// open: blocking all logins because Redis blinked is worse than briefly not
// throttling.
func Throttle(limiter rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			res, err := limiter.Allow(r.Context(), helpers.ClientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
				httperrors.WriteError(w, httperrors.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
