package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Lalman888/ai-social-backend/internal/http/helpers"
	"github.com/Lalman888/ai-social-backend/internal/state"
	"github.com/Lalman888/ai-social-backend/internal/store/core"
)

// HealthController reports liveness and backend reachability.
type HealthController struct {
	states state.Store
	users  core.Repository
}

func NewHealthController(states state.Store, users core.Repository) *HealthController {
	return &HealthController{states: states, users: users}
}

func (c *HealthController) Register(r chi.Router) {
	r.Get("/healthz", c.Healthz)
	r.Get("/readyz", c.Readyz)
}

func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"state": "ok", "store": "ok"}
	status := http.StatusOK
	if err := c.states.Ping(ctx); err != nil {
		checks["state"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := c.users.Ping(ctx); err != nil {
		checks["store"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, checks)
}
