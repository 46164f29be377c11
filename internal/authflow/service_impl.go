package authflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Lalman888/ai-social-backend/internal/identity"
	"github.com/Lalman888/ai-social-backend/internal/metrics"
	"github.com/Lalman888/ai-social-backend/internal/oauth"
	"github.com/Lalman888/ai-social-backend/internal/observability/logger"
	"github.com/Lalman888/ai-social-backend/internal/security/tokens"
	"github.com/Lalman888/ai-social-backend/internal/state"
	"github.com/Lalman888/ai-social-backend/internal/store/core"
	"github.com/Lalman888/ai-social-backend/internal/util"
)

// stateTokenBytes gives 256 bits of entropy per state.
const stateTokenBytes = 32

type service struct {
	d   Deps
	now func() time.Time
}

func (s *service) StartLogin(ctx context.Context, provider string) (string, error) {
	log := logger.From(ctx).With(logger.Layer("authflow"), logger.Op("start_login"), logger.Provider(provider))

	adapter, ok := s.d.Providers.Lookup(provider)
	if !ok {
		return "", ErrUnknownProvider
	}

	token, err := tokens.GenerateOpaqueToken(stateTokenBytes)
	if err != nil {
		return "", fmt.Errorf("authflow: generate state: %w", err)
	}
	now := s.now()
	if err := s.d.States.Save(ctx, &state.Auth{
		Token:     token,
		Provider:  provider,
		CreatedAt: now,
		ExpiresAt: now.Add(s.d.StateTTL),
	}); err != nil {
		return "", fmt.Errorf("authflow: save state: %w", err)
	}

	metrics.LoginStarts.WithLabelValues(provider).Inc()
	log.Info("login started")
	return adapter.BuildAuthorizeURL(token), nil
}

func (s *service) HandleCallback(ctx context.Context, provider, code, stateToken string) (*Session, error) {
	log := logger.From(ctx).With(logger.Layer("authflow"), logger.Op("callback"), logger.Provider(provider))
	started := s.now()

	sess, err := s.handleCallback(ctx, provider, code, stateToken, log)

	metrics.CallbackLatency.WithLabelValues(provider).Observe(s.now().Sub(started).Seconds())
	metrics.LoginResults.WithLabelValues(provider, resultLabel(err)).Inc()
	return sess, err
}

func (s *service) handleCallback(ctx context.Context, provider, code, stateToken string, log *zap.Logger) (*Session, error) {
	adapter, ok := s.d.Providers.Lookup(provider)
	if !ok {
		return nil, ErrUnknownProvider
	}
	if stateToken == "" {
		return nil, ErrStateMismatch
	}

	// Consume first. From here on the state is burned no matter what the
	// provider answers; a failed exchange never re-arms it.
	st, err := s.d.States.Consume(ctx, stateToken)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			log.Warn("state unknown or already consumed")
			return nil, ErrStateMismatch
		}
		return nil, fmt.Errorf("authflow: consume state: %w", err)
	}
	if st.Provider != provider {
		log.Warn("state bound to different provider", logger.String("state_provider", st.Provider))
		return nil, ErrStateMismatch
	}
	if st.Expired(s.now()) {
		log.Warn("state expired", logger.Duration(s.now().Sub(st.ExpiresAt)))
		return nil, ErrStateExpired
	}
	if code == "" {
		return nil, fmt.Errorf("authflow: empty code: %w", oauth.ErrInvalidGrant)
	}

	ts, err := adapter.ExchangeCode(ctx, code)
	if err != nil {
		log.Warn("code exchange failed", logger.Err(err))
		return nil, err
	}
	profile, err := adapter.FetchProfile(ctx, ts.AccessToken)
	if err != nil {
		log.Warn("profile fetch failed", logger.Err(err))
		return nil, err
	}
	if profile.Raw == nil {
		profile.Raw = map[string]any{}
	}
	if ts.ProviderUserID != "" {
		// Instagram puts the user id in the token response, not the profile.
		if _, ok := profile.Raw["id"]; !ok {
			profile.Raw["id"] = ts.ProviderUserID
		}
	}

	canonical, err := identity.Normalize(provider, profile)
	if err != nil {
		return nil, fmt.Errorf("authflow: normalize profile: %w: %w", oauth.ErrMalformedResponse, err)
	}

	user, ident, err := s.d.Users.UpsertIdentity(ctx, core.UpsertIdentityInput{
		Provider:       canonical.Provider,
		ProviderUserID: canonical.ExternalID,
		Email:          canonical.Email,
		DisplayName:    canonical.DisplayName,
		Picture:        canonical.Picture,
	})
	if err != nil {
		return nil, fmt.Errorf("authflow: upsert identity: %w", err)
	}

	tok, err := s.d.Sessions.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("authflow: issue session: %w", err)
	}

	fields := []zap.Field{logger.UserID(user.ID), logger.String("identity_id", ident.ID)}
	if canonical.Email != nil {
		fields = append(fields, logger.Email(util.MaskEmail(*canonical.Email)))
	}
	log.Info("login completed", fields...)
	return &Session{
		Token:     tok.Value,
		TokenType: "bearer",
		ExpiresIn: tok.ExpiresIn(s.now()),
		UserID:    user.ID,
	}, nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*Me, error) {
	userID, err := s.d.Sessions.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.d.Users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("authflow: session subject gone: %w", oauth.ErrUnauthorized)
		}
		return nil, fmt.Errorf("authflow: load user: %w", err)
	}
	if user.DisabledAt != nil {
		return nil, fmt.Errorf("authflow: account disabled: %w", oauth.ErrUnauthorized)
	}
	ids, err := s.d.Users.ListIdentities(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("authflow: list identities: %w", err)
	}
	return &Me{User: user, Identities: ids}, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrStateMismatch):
		return metrics.ResultStateMismatch
	case errors.Is(err, ErrStateExpired):
		return metrics.ResultStateExpired
	case errors.Is(err, oauth.ErrInvalidGrant):
		return metrics.ResultInvalidGrant
	case errors.Is(err, oauth.ErrProviderUnavailable):
		return metrics.ResultProviderDown
	case errors.Is(err, oauth.ErrMalformedResponse):
		return metrics.ResultMalformed
	case errors.Is(err, oauth.ErrUnauthorized):
		return metrics.ResultUnauthorized
	default:
		return metrics.ResultInternalError
	}
}
