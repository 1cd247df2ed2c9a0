package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ClassTrack/CT-Backend/internal/auth"
	"github.com/ClassTrack/CT-Backend/internal/users"
)

func SetupRoutes(students *users.Repository, guard *auth.Guard) http.Handler {
	r := chi.NewRouter()
	h := &Handler{students: students}

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(auth.PolicyAny))
		r.Get("/", h.ListHandler)
		r.Get("/{id}", h.GetHandler)
		r.Get("/{id}/members", h.MembersHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.Require(auth.PolicyTeacher))
		r.Post("/", h.CreateHandler)
		r.Put("/{id}", h.UpdateHandler)
		r.Delete("/{id}", h.DeleteHandler)
		r.Post("/{id}/members", h.AddMemberHandler)
		r.Delete("/{id}/members/{studentID}", h.RemoveMemberHandler)
	})

	return r
}
