package tasks

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ClassTrack/CT-Backend/internal/auth"
)

func SetupRoutes(guard *auth.Guard) http.Handler {
	r := chi.NewRouter()
	h := &Handler{}

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(auth.PolicyAny))
		r.Get("/", h.ListHandler)
		r.Get("/{id}", h.GetHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(auth.PolicyTeacher))
		r.Post("/", h.CreateHandler)
		r.Patch("/{id}", h.PatchHandler)
		r.Put("/{id}", h.PutHandler)
		r.Delete("/{id}", h.DeleteHandler)
	})

	return r
}
