package errors

import (
	stderrors "errors"

	"github.com/Lalman888/ai-social-backend/internal/authflow"
	"github.com/Lalman888/ai-social-backend/internal/oauth"
)

// FromFlow maps login-flow errors onto the catalog. Anything unrecognized
// becomes the generic internal error, cause attached for the logs.
func FromFlow(err error) *AppError {
	switch {
	case stderrors.Is(err, authflow.ErrUnknownProvider):
		return ErrUnknownProvider
	case stderrors.Is(err, authflow.ErrStateMismatch):
		return ErrStateMismatch
	case stderrors.Is(err, authflow.ErrStateExpired):
		return ErrStateExpired
	case stderrors.Is(err, oauth.ErrInvalidGrant):
		return ErrInvalidGrant
	case stderrors.Is(err, oauth.ErrUnauthorized):
		return ErrUnauthorized
	case stderrors.Is(err, oauth.ErrProviderUnavailable):
		return ErrProviderUnavailable.WithCause(err)
	case stderrors.Is(err, oauth.ErrMalformedResponse):
		return ErrProviderResponse.WithCause(err)
	default:
		return ErrInternal.WithCause(err)
	}
}
