package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(withGZip)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/signup", h.signup)
		r.Post("/api/auth/login/init", h.loginInit)
		r.Post("/api/auth/login/validate", h.loginValidate)
		r.Post("/api/auth/refresh", h.refresh)
		r.Get("/api/version", h.getServerVersion)
	})

	// routes that require a valid access token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/api/auth/password", h.changePassword)
		r.Post("/api/vault/push", h.vaultPush)
		r.Get("/api/vault/pull", h.vaultPull)
		r.Get("/api/vault/revisions", h.vaultRevisions)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
