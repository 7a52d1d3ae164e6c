// SPDX-License-Identifier: Apache-2.0

package devserver

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

	router.Route("/records", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{recordID}", h.get)
		r.Patch("/{recordID}", h.patch)
		r.Delete("/{recordID}", h.delete)
	})

	return router
}

func recordID(r *http.Request) string {
	return chi.URLParam(r, "recordID")
}
