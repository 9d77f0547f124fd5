package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/go-rest-common/auth"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.auditor.Middleware)
	router.Use(auth.Middleware(h.tokenAuth))

	router.Get("/api/version/", h.getServerVersion)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/auth/register", h.register)
		r.Post("/api/auth/token", h.obtainToken)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Delete("/api/auth/token", h.revokeToken)
		r.Get("/api/me", h.me)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
