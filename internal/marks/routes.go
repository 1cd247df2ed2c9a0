package marks

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ClassTrack/CT-Backend/internal/auth"
)

func SetupRoutes(guard *auth.Guard) http.Handler {
	r := chi.NewRouter()
	h := &Handler{}

	r.With(guard.Require(auth.PolicyAny)).Get("/", h.ListHandler)
	r.With(guard.Require(auth.PolicyStudent)).Post("/complete", h.CompleteHandler)
	r.With(guard.Require(auth.PolicyTeacher)).Patch("/", h.FeedbackHandler)

	return r
}
