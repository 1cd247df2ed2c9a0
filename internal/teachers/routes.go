package teachers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ClassTrack/CT-Backend/internal/auth"
	"github.com/ClassTrack/CT-Backend/internal/middleware"
	"github.com/ClassTrack/CT-Backend/internal/users"
)

func SetupRoutes(repo *users.Repository, guard *auth.Guard, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()
	h := &Handler{repo: repo}

	r.With(limiter.Middleware).Post("/auth", h.AuthHandler)

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(auth.PolicyAny))
		r.Get("/", h.ListHandler)
		r.Get("/{id}", h.GetHandler)
	})

	// Teacher accounts are managed with the admin code (or an existing
	// teacher's credentials).
	r.Group(func(r chi.Router) {
		r.Use(guard.Require(auth.PolicyAdmin))
		r.Post("/", h.CreateHandler)
		r.Put("/{id}", h.UpdateHandler)
		r.Delete("/{id}", h.DeleteHandler)
	})

	return r
}
