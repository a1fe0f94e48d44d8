package main

import (
	"context"
	"net/http"
	"slices"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/httputil"
	"github.com/AdamBeresnev/padel-club/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/markbates/goth/gothic"
)

func newRouter(app *application) http.Handler {
	root := chi.NewRouter()
	root.Use(chimiddleware.Recoverer)
	// websocket upgrades need the raw connection, keep them off the session
	// and logging wrappers
	root.Get("/tournaments/{id}/live", app.serveLive)
	root.Mount("/", app.apiRouter())
	return root
}

func (app *application) apiRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(corsHandler(app.cfg.AllowedOrigins))
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(app.sessionManager, app.userStore))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.NotFound(w, "route not found", nil)
	})

	r.Handle("/metrics", app.metrics)

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), gothic.ProviderParamKey, provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), gothic.ProviderParamKey, provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := app.users.SignIn(r.Context(), gothUser)
		if err != nil {
			httputil.Error(w, "Failed to sign in", err)
			return
		}

		if err := app.sessionManager.RenewToken(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to renew session", err)
			return
		}
		app.sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
		httputil.WriteJSON(w, http.StatusOK, user)
	})

	if app.cfg.AllowGuestLogin {
		r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
			user, err := app.users.EnsureGuestUser(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to login as guest", err)
				return
			}

			if err := app.sessionManager.RenewToken(r.Context()); err != nil {
				httputil.InternalServerError(w, "Failed to renew session", err)
				return
			}
			app.sessionManager.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
			httputil.WriteJSON(w, http.StatusOK, user)
		})
	}

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := app.sessionManager.Destroy(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to end session", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, middleware.GetAuthenticatedUser(r.Context()))
		})

		r.Get("/tournaments", app.listTournaments)
		r.With(middleware.RequireRole(bracket.RoleOrganizer, bracket.RoleAdmin)).Post("/tournaments", app.createTournament)

		r.Route("/tournaments/{id}", func(r chi.Router) {
			r.Get("/", app.getTournament)
			r.Post("/status", app.transitionStatus)
			r.Post("/categories", app.addCategory)
			r.Post("/registrations", app.register)
			r.Post("/brackets", app.generateBrackets)
			r.Delete("/brackets", app.resetBrackets)
			r.Get("/conflicts", app.listConflicts)
		})

		r.Post("/registrations/{id}/confirm", app.confirmRegistration)

		r.Route("/matches/{id}", func(r chi.Router) {
			r.Get("/", app.getMatch)
			r.Post("/result", app.submitResult)
			r.Post("/resolve", app.resolveConflict)
		})

		r.Put("/users/{id}/role", app.setRole)
	})

	return r
}

// corsHandler only answers cross origin requests from the configured
// origins. Without any, the API is same origin only. Session cookies are
// never shared with a "*" origin.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}
	if len(origins) == 0 {
		// an empty list means any origin to the cors package
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}
	return cors.Handler(opts)
}
