// Package http assembles the service's router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lalman888/ai-social-backend/internal/ai"
	"github.com/Lalman888/ai-social-backend/internal/authflow"
	"github.com/Lalman888/ai-social-backend/internal/http/controllers"
	"github.com/Lalman888/ai-social-backend/internal/http/middlewares"
	"github.com/Lalman888/ai-social-backend/internal/rate"
	"github.com/Lalman888/ai-social-backend/internal/state"
	"github.com/Lalman888/ai-social-backend/internal/store/core"
)

// RouterDeps wires everything the router mounts.
type RouterDeps struct {
	Flow    authflow.Service
	States  state.Store
	Users   core.Repository
	AI      *ai.Client   // nil disables the summarize routes
	Limiter rate.Limiter // nil disables throttling
	Metrics http.Handler // defaults to promhttp.Handler()
}

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares.RequestContext)
	r.Use(middlewares.Recover)
	r.Use(middlewares.Metrics)

	controllers.NewHealthController(d.States, d.Users).Register(r)
	if d.Metrics == nil {
		d.Metrics = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", d.Metrics)

	auth := controllers.NewAuthController(d.Flow)
	r.Group(func(r chi.Router) {
		r.Use(middlewares.Throttle(d.Limiter))
		auth.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middlewares.RequireSession(d.Flow))
		auth.RegisterProtected(r)
		if d.AI != nil {
			controllers.NewAIController(d.AI).Register(r)
		}
	})

	return r
}
