// Package controllers holds the HTTP controllers.
package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lalman888/ai-social-backend/internal/authflow"
	httperrors "github.com/Lalman888/ai-social-backend/internal/http/errors"
	"github.com/Lalman888/ai-social-backend/internal/http/helpers"
	"github.com/Lalman888/ai-social-backend/internal/http/middlewares"
	"github.com/Lalman888/ai-social-backend/internal/observability/logger"
)

// AuthController serves the login flow and the profile endpoint.
type AuthController struct {
	flow authflow.Service
}

func NewAuthController(flow authflow.Service) *AuthController {
	return &AuthController{flow: flow}
}

// Register mounts the public auth routes.
func (c *AuthController) Register(r chi.Router) {
	r.Get("/auth/login/{provider}", c.Login)
	r.Get("/auth/{provider}/callback", c.Callback)
}

// RegisterProtected mounts the routes behind RequireSession.
func (c *AuthController) RegisterProtected(r chi.Router) {
	r.Get("/auth/me", c.Profile)
}

// Login answers 302 to the provider's authorization URL.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	redirect, err := c.flow.StartLogin(r.Context(), provider)
	if err != nil {
		httperrors.WriteError(w, httperrors.FromFlow(err))
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

// Callback completes the flow and answers the session token.
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()

	code := q.Get("code")
	if e := q.Get("error"); e != "" {
		// Provider-side denial. The code stays empty so the flow still burns
		// the state before reporting the rejected grant.
		logger.From(r.Context()).Info("provider returned error",
			logger.Provider(provider), logger.String("provider_error", e))
		code = ""
	}

	sess, err := c.flow.HandleCallback(r.Context(), provider, code, q.Get("state"))
	if err != nil {
		httperrors.WriteError(w, httperrors.FromFlow(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, sess)
}

// Profile answers the authenticated account.
func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	me := middlewares.Me(r.Context())
	if me == nil {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, me)
}
