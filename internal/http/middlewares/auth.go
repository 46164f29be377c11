package middlewares

import (
	"context"
	"net/http"

	"github.com/Lalman888/ai-social-backend/internal/authflow"
	httperrors "github.com/Lalman888/ai-social-backend/internal/http/errors"
	"github.com/Lalman888/ai-social-backend/internal/http/helpers"
	"github.com/Lalman888/ai-social-backend/internal/observability/logger"
)

// Me returns the authenticated account stored by RequireSession, or nil.
func Me(ctx context.Context) *authflow.Me {
	v, _ := ctx.Value(meKey).(*authflow.Me)
	return v
}

// RequireSession guards protected routes. Every failure mode answers the
// same 401 so callers cannot probe whether a token is expired, tampered or
// simply absent.
func RequireSession(flow authflow.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := helpers.BearerToken(r)
			if token == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			me, err := flow.Authenticate(r.Context(), token)
			if err != nil {
				logger.From(r.Context()).Debug("session rejected", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), meKey, me)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
