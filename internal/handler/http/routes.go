package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/refresh", h.refresh)
		r.Post("/api/webauthn/authenticate/begin", h.webauthnLoginBegin)
		r.Post("/api/webauthn/authenticate/complete", h.webauthnLoginComplete)
		r.Get("/api/version", h.getServerVersion)
	})

	// routes requiring a valid access token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/api/auth/logout", h.logout)
		r.Get("/api/auth/me", h.me)
		r.Get("/api/user/profile", h.getProfile)
		r.Put("/api/user/profile", h.updateProfile)
		r.Put("/api/user/settings", h.updateSettings)
		r.Post("/api/user/password", h.changePassword)
		r.Post("/api/webauthn/register/begin", h.webauthnRegisterBegin)
		r.Post("/api/webauthn/register/complete", h.webauthnRegisterComplete)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondNotFound(w, r)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondMethodNotAllowed(w, r)
	})

	return router
}
