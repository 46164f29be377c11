package middlewares

import (
	"net/http"
	"runtime/debug"

	httperrors "github.com/Lalman888/ai-social-backend/internal/http/errors"
	"github.com/Lalman888/ai-social-backend/internal/observability/logger"
)

// Recover turns handler panics into a 500 instead of killing the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.From(r.Context()).Error("handler panic",
					logger.Any("panic", rec),
					logger.String("stack", string(debug.Stack())),
				)
				httperrors.WriteError(w, httperrors.ErrInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
