// Package router assembles the console's route tree.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ctrlauth "github.com/dropDatabas3/frontdoor/internal/http/controllers/auth"
	ctrlprompt "github.com/dropDatabas3/frontdoor/internal/http/controllers/prompt"
	"github.com/dropDatabas3/frontdoor/internal/http/middlewares"
	"github.com/dropDatabas3/frontdoor/internal/rate"
)

// Deps are the wired controllers and session config.
type Deps struct {
	Sessions middlewares.SessionConfig
	Flow     *ctrlauth.FlowController
	Callback *ctrlauth.CallbackController
	Session  *ctrlauth.SessionController
	Prompt   *ctrlprompt.Controller
	// Limiter guards the unauthenticated flow endpoints. Nil disables it.
	Limiter rate.Limiter
}

// New builds the HTTP handler.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middlewares.WithRequestID)
	r.Use(middlewares.WithLogging)
	r.Use(deps.Sessions.WithSession)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(fr chi.Router) {
		if deps.Limiter != nil {
			fr.Use(middlewares.WithRateLimit(deps.Limiter))
		}
		fr.Get("/api/get-app-login", deps.Flow.GetAppLogin)
		fr.Get("/callback/{applicationName}/{providerName}/{method}", deps.Callback.Callback)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(middlewares.RequireSession)
		pr.Get("/api/get-account", deps.Session.GetAccount)
		pr.Post("/api/logout", deps.Session.Logout)
		pr.Get("/api/prompt/{applicationName}", deps.Prompt.Page)
		pr.Post("/api/prompt/{applicationName}/field", deps.Prompt.UpdateField)
		pr.Post("/api/prompt/{applicationName}/submit", deps.Prompt.Submit)
	})

	return r
}
